package assist

import (
	"context"
	"encoding/json"

	"github.com/jonathan/cv-editor/internal/gateway"
)

// fakeBackend is a scripted gateway.Backend.
type fakeBackend struct {
	name       string
	state      gateway.Availability
	reply      string
	structured string
	err        error

	calls    int
	requests []gateway.Request
}

func newFake(name, reply string) *fakeBackend {
	return &fakeBackend{name: name, state: gateway.Available, reply: reply}
}

func (f *fakeBackend) Name() string { return f.name }

func (f *fakeBackend) Availability(context.Context, gateway.Capability) gateway.Availability {
	return f.state
}

func (f *fakeBackend) Invoke(_ context.Context, req gateway.Request) (*gateway.Response, error) {
	f.calls++
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	resp := &gateway.Response{Text: f.reply}
	if f.structured != "" {
		resp.Structured = json.RawMessage(f.structured)
	}
	return resp, nil
}
