package rulepack

import (
	"context"
	"fmt"
	"sync"

	"github.com/jonathan/cv-editor/internal/logging"
	"github.com/jonathan/cv-editor/internal/types"
	"golang.org/x/sync/singleflight"
)

// Resolver caches resolved packs for the life of the process. It never fails: when the
// remote spec cannot be fetched the built-in defaults are used.
type Resolver struct {
	fetcher Fetcher
	log     *logging.Logger

	mu    sync.RWMutex
	cache map[string]*types.RulePack
	group singleflight.Group
}

// NewResolver creates a resolver. fetcher may be nil, in which case only defaults are used.
func NewResolver(fetcher Fetcher, log *logging.Logger) *Resolver {
	if log == nil {
		log = logging.Nop()
	}
	return &Resolver{
		fetcher: fetcher,
		log:     log.With("component", "rulepack"),
		cache:   make(map[string]*types.RulePack),
	}
}

// Cached returns the resolved pack for code if one is cached, else the defaults. It
// never fetches.
func (r *Resolver) Cached(code string) *types.RulePack {
	code = NormalizeCode(code)
	r.mu.RLock()
	pack, ok := r.cache[code]
	r.mu.RUnlock()
	if ok {
		return pack.Clone()
	}
	return Default(code)
}

// Resolve returns the merged pack for code. Concurrent calls for the same code share one
// fetch. Fetch failures are logged and the defaults returned uncached, so a later call
// retries.
func (r *Resolver) Resolve(ctx context.Context, code string) *types.RulePack {
	code = NormalizeCode(code)

	r.mu.RLock()
	pack, ok := r.cache[code]
	r.mu.RUnlock()
	if ok {
		return pack.Clone()
	}
	if r.fetcher == nil {
		return Default(code)
	}

	v, _, _ := r.group.Do(code, func() (any, error) {
		return r.fetchAndMerge(ctx, code), nil
	})
	return v.(*types.RulePack).Clone()
}

func (r *Resolver) fetchAndMerge(ctx context.Context, code string) *types.RulePack {
	r.mu.RLock()
	cached, ok := r.cache[code]
	r.mu.RUnlock()
	if ok {
		return cached
	}
	base := Default(code)

	remote, err := r.fetcher.FetchCountrySpec(ctx, code)
	if err != nil {
		r.log.Warn("using built-in rule pack", "country", code, "error", fmt.Errorf("%w: %v", ErrFetchFailed, err))
		return base
	}

	merged, err := Merge(base, remote)
	if err != nil {
		r.log.Warn("remote rule pack fields ignored", "country", code, "error", err)
	}

	r.mu.Lock()
	r.cache[code] = merged
	r.mu.Unlock()
	r.log.Info("resolved rule pack", "country", code, "sections", len(merged.Sections))
	return merged
}

// Forget drops a cached pack so the next Resolve fetches again.
func (r *Resolver) Forget(code string) {
	r.mu.Lock()
	delete(r.cache, NormalizeCode(code))
	r.mu.Unlock()
}
