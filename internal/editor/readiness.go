package editor

import (
	"context"
	"fmt"
	"time"

	"github.com/jonathan/cv-editor/internal/gateway"
	"github.com/jonathan/cv-editor/internal/logging"
)

// DefaultPollInterval is how often backend readiness is refreshed while a capability
// is still settling, e.g. during a model download
const DefaultPollInterval = 2 * time.Second

// readiness watches every backend of a session until its capabilities settle.
type readiness struct {
	backends []gateway.Backend
	interval time.Duration
	cancel   context.CancelFunc
	pollers  []*gateway.Poller
}

func startReadiness(backends []gateway.Backend, interval time.Duration, log *logging.Logger) *readiness {
	ctx, cancel := context.WithCancel(context.Background())
	r := &readiness{backends: backends, interval: interval, cancel: cancel}
	for _, b := range backends {
		p := gateway.NewPoller(b, interval, log, gateway.Capabilities...)
		p.Start(ctx)
		r.pollers = append(r.pollers, p)
	}
	return r
}

func (r *readiness) stop() {
	r.cancel()
}

// snapshot returns the last polled state of every capability, keyed by backend name.
func (r *readiness) snapshot() map[string]map[gateway.Capability]gateway.Availability {
	out := make(map[string]map[gateway.Capability]gateway.Availability, len(r.pollers))
	for i, p := range r.pollers {
		out[r.backends[i].Name()] = p.Snapshot()
	}
	return out
}

// wait returns once any backend can serve c. Backends that are still settling are all
// polled on every tick, so a later backend finishing its download is not held up by an
// earlier one. Gives up at ceiling, or as soon as every backend is terminal.
func (r *readiness) wait(ctx context.Context, c gateway.Capability, ceiling time.Duration) error {
	if len(r.backends) == 0 {
		return fmt.Errorf("%w: no backend configured", gateway.ErrBackendUnsupported)
	}

	deadline := time.NewTimer(ceiling)
	defer deadline.Stop()
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	settling := r.backends
	var lastErr error
	for {
		var next []gateway.Backend
		for _, b := range settling {
			state := b.Availability(ctx, c)
			if state == gateway.Available {
				return nil
			}
			lastErr = gateway.StateError(b.Name(), c, state)
			if !state.Terminal() {
				next = append(next, b)
			}
		}
		if len(next) == 0 {
			return lastErr
		}
		settling = next

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-deadline.C:
			return lastErr
		case <-ticker.C:
		}
	}
}
