package gateway

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/jonathan/cv-editor/internal/prompts"
)

// Session is a live model session created for one capability.
type Session interface {
	Prompt(ctx context.Context, input string, shape json.RawMessage) (string, error)
	Close() error
}

// SessionFactory creates a session for a capability.
type SessionFactory func(ctx context.Context, c Capability) (Session, error)

// Probe reports the current readiness of a capability, e.g. while a model downloads.
type Probe func(ctx context.Context, c Capability) Availability

// DeviceBackend runs capabilities on an in-process model session. Its per-capability
// availability only moves forward.
type DeviceBackend struct {
	name    string
	factory SessionFactory
	probe   Probe

	mu     sync.Mutex
	states map[Capability]Availability
}

// NewDeviceBackend creates a device backend. Capabilities missing from initial are
// unsupported. probe may be nil.
func NewDeviceBackend(name string, factory SessionFactory, initial map[Capability]Availability, probe Probe) *DeviceBackend {
	states := make(map[Capability]Availability, len(initial))
	for c, a := range initial {
		states[c] = a
	}
	return &DeviceBackend{name: name, factory: factory, probe: probe, states: states}
}

func (d *DeviceBackend) Name() string { return d.name }

// Availability returns the capability state, consulting the probe while it is not terminal.
func (d *DeviceBackend) Availability(ctx context.Context, c Capability) Availability {
	d.mu.Lock()
	state, ok := d.states[c]
	d.mu.Unlock()
	if !ok {
		return Unsupported
	}
	if d.probe == nil || state.Terminal() {
		return state
	}
	d.Advance(c, d.probe(ctx, c))
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.states[c]
}

// Advance moves a capability to next if the transition is allowed.
func (d *DeviceBackend) Advance(c Capability, next Availability) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.states[c].CanAdvanceTo(next) {
		return false
	}
	d.states[c] = next
	return true
}

// Invoke runs the request on a fresh session.
func (d *DeviceBackend) Invoke(ctx context.Context, req Request) (*Response, error) {
	if state := d.Availability(ctx, req.Capability); state != Available {
		return nil, StateError(d.name, req.Capability, state)
	}

	session, err := d.factory(ctx, req.Capability)
	if err != nil {
		return nil, &InvocationError{Backend: d.name, Capability: req.Capability, Message: "failed to create session", Cause: err}
	}
	defer session.Close()

	text, err := session.Prompt(ctx, framePrompt(req), req.Shape)
	if err != nil {
		return nil, &InvocationError{Backend: d.name, Capability: req.Capability, Message: "prompt failed", Cause: err}
	}

	resp := &Response{Text: text}
	if len(req.Shape) > 0 {
		var raw json.RawMessage
		if ParseStructured(text, &raw) == nil {
			resp.Structured = raw
		}
	}
	return resp, nil
}

func framePrompt(req Request) string {
	input := composeInput(req)
	if req.Instruction == "" {
		return input
	}
	framed, err := prompts.Render("assist.json", "frame", map[string]string{
		"Instruction": req.Instruction,
		"Input":       input,
	})
	if err != nil {
		return req.Instruction + "\n\n" + input
	}
	return framed
}
