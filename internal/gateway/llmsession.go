package gateway

import (
	"context"
	"encoding/json"

	"github.com/jonathan/cv-editor/internal/llm"
)

// LLMSession adapts an llm.Client to a Session.
type LLMSession struct {
	Client llm.Client
	Tier   llm.ModelTier
}

func (s *LLMSession) Prompt(ctx context.Context, input string, shape json.RawMessage) (string, error) {
	text, err := s.Client.Generate(ctx, llm.Request{
		Prompt: input,
		Tier:   s.Tier,
		JSON:   len(shape) > 0,
	})
	if err != nil {
		return "", err
	}
	if len(shape) > 0 {
		return llm.CleanJSONBlock(text), nil
	}
	return text, nil
}

// Close is a no-op; the client belongs to the caller.
func (s *LLMSession) Close() error { return nil }

// TierFor picks the model tier for a capability.
func TierFor(c Capability) llm.ModelTier {
	switch c {
	case CapProofread, CapDetectLanguage, CapTranslate:
		return llm.TierLite
	case CapRewrite, CapWrite:
		return llm.TierAdvanced
	default:
		return llm.TierStandard
	}
}

// LLMSessionFactory creates sessions backed by client.
func LLMSessionFactory(client llm.Client) SessionFactory {
	return func(_ context.Context, c Capability) (Session, error) {
		return &LLMSession{Client: client, Tier: TierFor(c)}, nil
	}
}

// NewLLMDeviceBackend makes every capability available on client.
func NewLLMDeviceBackend(name string, client llm.Client) *DeviceBackend {
	initial := make(map[Capability]Availability, len(Capabilities))
	for _, c := range Capabilities {
		initial[c] = Available
	}
	return NewDeviceBackend(name, LLMSessionFactory(client), initial, nil)
}
