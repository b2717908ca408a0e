package editor

import "sync"

// Generations hands out a monotonically increasing request generation per field. A
// result is committed only while its generation is still the field's latest.
type Generations struct {
	mu       sync.Mutex
	counters map[string]uint64
}

// NewGenerations returns an empty counter set.
func NewGenerations() *Generations {
	return &Generations{counters: make(map[string]uint64)}
}

// Next starts a new request for field and returns its generation.
func (g *Generations) Next(field string) uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.counters[field]++
	return g.counters[field]
}

// Current reports whether gen is the latest generation issued for field.
func (g *Generations) Current(field string, gen uint64) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.counters[field] == gen
}
