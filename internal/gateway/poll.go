package gateway

import (
	"context"
	"sync"
	"time"

	"github.com/jonathan/cv-editor/internal/logging"
)

// WaitUntilAvailable polls a capability every interval until it is available, reaches
// another terminal state, or the ceiling passes.
func WaitUntilAvailable(ctx context.Context, b Backend, c Capability, interval, ceiling time.Duration) error {
	deadline := time.NewTimer(ceiling)
	defer deadline.Stop()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		state := b.Availability(ctx, c)
		if state == Available {
			return nil
		}
		if state.Terminal() {
			return StateError(b.Name(), c, state)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-deadline.C:
			return StateError(b.Name(), c, state)
		case <-ticker.C:
		}
	}
}

// Poller refreshes backend readiness in the background on a fixed interval and stops
// once every watched capability is terminal.
type Poller struct {
	backend  Backend
	caps     []Capability
	interval time.Duration
	log      *logging.Logger

	start sync.Once
	done  chan struct{}

	mu     sync.RWMutex
	states map[Capability]Availability
}

// NewPoller creates a poller for caps on backend.
func NewPoller(b Backend, interval time.Duration, log *logging.Logger, caps ...Capability) *Poller {
	if log == nil {
		log = logging.Nop()
	}
	return &Poller{
		backend:  b,
		caps:     caps,
		interval: interval,
		log:      log.With("component", "poller", "backend", b.Name()),
		done:     make(chan struct{}),
		states:   make(map[Capability]Availability, len(caps)),
	}
}

// Start launches the polling loop. Calling it again has no effect.
func (p *Poller) Start(ctx context.Context) {
	p.start.Do(func() {
		go p.run(ctx)
	})
}

// Done is closed when polling stops.
func (p *Poller) Done() <-chan struct{} {
	return p.done
}

// Snapshot returns the last observed state of every watched capability.
func (p *Poller) Snapshot() map[Capability]Availability {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make(map[Capability]Availability, len(p.states))
	for c, a := range p.states {
		out[c] = a
	}
	return out
}

func (p *Poller) run(ctx context.Context) {
	defer close(p.done)
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		if p.pollOnce(ctx) {
			p.log.Debug("all capabilities settled", "states", p.Snapshot())
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// pollOnce refreshes every capability and reports whether all are terminal.
func (p *Poller) pollOnce(ctx context.Context) bool {
	settled := true
	for _, c := range p.caps {
		state := p.backend.Availability(ctx, c)
		p.mu.Lock()
		if prev := p.states[c]; prev != state {
			p.log.Debug("capability state changed", "capability", c, "from", prev, "to", state)
		}
		p.states[c] = state
		p.mu.Unlock()
		if !state.Terminal() {
			settled = false
		}
	}
	return settled
}
