// Package assist runs AI-assisted document actions against a prioritized list of backends,
// sanitizing every candidate and committing only the first acceptable one.
package assist

import (
	"context"
	"errors"

	"github.com/jonathan/cv-editor/internal/gateway"
	"github.com/jonathan/cv-editor/internal/logging"
	"github.com/jonathan/cv-editor/internal/types"
)

// Tier is one candidate source for an action's result. Invoke produces an already
// sanitized value; Accept returns nil to commit it or a rejection reason.
type Tier[T any] struct {
	Name   string
	Invoke func(ctx context.Context) (T, error)
	Accept func(T) error
}

// Run tries tiers in order and returns the first accepted value with the tier's name.
// Failures and rejections are logged and skipped; exhaustion returns a
// *NoAcceptableResultError.
func Run[T any](ctx context.Context, log *logging.Logger, action string, tiers []Tier[T]) (T, string, error) {
	var zero T
	exhausted := &NoAcceptableResultError{Action: action}

	for _, tier := range tiers {
		if err := ctx.Err(); err != nil {
			exhausted.Attempts = append(exhausted.Attempts, Attempt{Tier: tier.Name, Outcome: OutcomeFailed, Err: err})
			break
		}

		value, err := tier.Invoke(ctx)
		if err != nil {
			outcome := OutcomeFailed
			if gateway.IsSkippable(err) {
				outcome = OutcomeSkipped
			}
			exhausted.Attempts = append(exhausted.Attempts, Attempt{Tier: tier.Name, Outcome: outcome, Err: err})
			log.Debug("tier did not answer", "action", action, "tier", tier.Name, "outcome", outcome, "error", err)
			continue
		}

		if tier.Accept != nil {
			if reason := tier.Accept(value); reason != nil {
				exhausted.Attempts = append(exhausted.Attempts, Attempt{Tier: tier.Name, Outcome: OutcomeRejected, Err: reason})
				log.Debug("tier result rejected", "action", action, "tier", tier.Name, "reason", reason)
				continue
			}
		}

		log.Info("action completed", "action", action, "tier", tier.Name, "attempts", len(exhausted.Attempts)+1)
		return value, tier.Name, nil
	}

	log.Warn("no acceptable result", "action", action, "attempts", len(exhausted.Attempts))
	return zero, "", exhausted
}

// Orchestrator builds tier lists over backends in descending preference.
type Orchestrator struct {
	backends []gateway.Backend
	log      *logging.Logger
}

// New creates an orchestrator. Backends are tried in the given order, so pass the
// on-device backend first, then the proxy, then the generic writer.
func New(log *logging.Logger, backends ...gateway.Backend) *Orchestrator {
	if log == nil {
		log = logging.Nop()
	}
	return &Orchestrator{backends: backends, log: log.With("component", "assist")}
}

// Backends returns the backends in preference order.
func (o *Orchestrator) Backends() []gateway.Backend {
	return o.backends
}

// backendTiers turns every backend into a tier for req. A backend whose capability is
// not available is skipped without being invoked.
func backendTiers[T any](o *Orchestrator, req gateway.Request, convert func(*gateway.Response) T, accept func(T) error) []Tier[T] {
	tiers := make([]Tier[T], 0, len(o.backends))
	for _, b := range o.backends {
		tiers = append(tiers, Tier[T]{
			Name: b.Name(),
			Invoke: func(ctx context.Context) (T, error) {
				var zero T
				if state := b.Availability(ctx, req.Capability); state != gateway.Available {
					return zero, gateway.StateError(b.Name(), req.Capability, state)
				}
				resp, err := b.Invoke(ctx, req)
				if err != nil {
					return zero, err
				}
				return convert(resp), nil
			},
			Accept: accept,
		})
	}
	return tiers
}

// sourceOf maps the answering backend to the provenance recorded on skill groups.
func (o *Orchestrator) sourceOf(name string) types.GroupSource {
	for _, b := range o.backends {
		if b.Name() != name {
			continue
		}
		if _, ok := b.(*gateway.DeviceBackend); ok {
			return types.SourceAI
		}
		return types.SourceCloudLocal
	}
	return types.SourceHeuristic
}

// IsNoAcceptableResult reports whether err is an exhaustion error.
func IsNoAcceptableResult(err error) bool {
	var target *NoAcceptableResultError
	return errors.As(err, &target)
}
