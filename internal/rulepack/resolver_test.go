package rulepack

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonathan/cv-editor/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type fakeFetcher struct {
	calls atomic.Int32
	delay time.Duration
	spec  *RemoteSpec
	err   error
}

func (f *fakeFetcher) FetchCountrySpec(ctx context.Context, code string) (*RemoteSpec, error) {
	f.calls.Add(1)
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	return f.spec, f.err
}

func TestResolver_MergesAndCaches(t *testing.T) {
	fetcher := &fakeFetcher{spec: &RemoteSpec{PageLimit: intPtr(2), Notes: []string{"remote"}}}
	r := NewResolver(fetcher, nil)

	pack := r.Resolve(context.Background(), "us")
	assert.Equal(t, 2, pack.PageLimit)
	assert.True(t, pack.HasSection("Publications"))

	pack.PageLimit = 1
	again := r.Resolve(context.Background(), "US")
	assert.Equal(t, 2, again.PageLimit, "cached pack is not mutated through callers")
	assert.Equal(t, int32(1), fetcher.calls.Load())
	assert.Equal(t, []string{"remote"}, r.Cached("US").Notes)
}

func TestResolver_FetchFailureKeepsDefaults(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	fetcher := &fakeFetcher{err: errors.New("proxy down")}
	r := NewResolver(fetcher, logging.FromCore(core))

	pack := r.Resolve(context.Background(), "DE")
	assert.Equal(t, Default("DE"), pack)

	require.Equal(t, 1, logs.FilterMessage("using built-in rule pack").Len())
	logged := logs.FilterMessage("using built-in rule pack").All()[0].ContextMap()["error"]
	assert.Contains(t, logged, ErrFetchFailed.Error())

	// failures are not cached
	r.Resolve(context.Background(), "DE")
	assert.Equal(t, int32(2), fetcher.calls.Load())
}

func TestResolver_ConcurrentCallsShareOneFetch(t *testing.T) {
	fetcher := &fakeFetcher{delay: 50 * time.Millisecond, spec: &RemoteSpec{}}
	r := NewResolver(fetcher, nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			pack := r.Resolve(context.Background(), "NL")
			assert.Equal(t, "NL", pack.Country)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), fetcher.calls.Load())
}

func TestResolver_NoFetcher(t *testing.T) {
	r := NewResolver(nil, nil)
	assert.Equal(t, Default("GB"), r.Resolve(context.Background(), "GB"))

	r.Forget("GB")
	assert.Equal(t, Default("GB"), r.Cached("gb"))
}
