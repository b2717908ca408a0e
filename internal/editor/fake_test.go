package editor

import (
	"context"
	"sync"

	"github.com/jonathan/cv-editor/internal/gateway"
)

// scriptedBackend answers every capability with the next scripted reply, repeating the
// last one. When gate is set each call waits for it after signalling started.
type scriptedBackend struct {
	mu       sync.Mutex
	replies  []string
	err      error
	requests []gateway.Request

	started chan struct{}
	gate    chan struct{}
}

func newScripted(replies ...string) *scriptedBackend {
	return &scriptedBackend{replies: replies}
}

func (b *scriptedBackend) Name() string { return "scripted" }

func (b *scriptedBackend) Availability(context.Context, gateway.Capability) gateway.Availability {
	return gateway.Available
}

func (b *scriptedBackend) Invoke(ctx context.Context, req gateway.Request) (*gateway.Response, error) {
	b.mu.Lock()
	b.requests = append(b.requests, req)
	reply := ""
	if len(b.replies) > 0 {
		reply = b.replies[0]
		if len(b.replies) > 1 {
			b.replies = b.replies[1:]
		}
	}
	err := b.err
	started, gate := b.started, b.gate
	b.mu.Unlock()

	if gate != nil {
		started <- struct{}{}
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	return &gateway.Response{Text: reply}, nil
}

func (b *scriptedBackend) calls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.requests)
}

func (b *scriptedBackend) capabilities() []gateway.Capability {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]gateway.Capability, 0, len(b.requests))
	for _, r := range b.requests {
		out = append(out, r.Capability)
	}
	return out
}
