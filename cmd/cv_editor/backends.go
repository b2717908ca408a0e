package main

import (
	"context"
	"fmt"

	"github.com/jonathan/cv-editor/internal/assist"
	"github.com/jonathan/cv-editor/internal/config"
	"github.com/jonathan/cv-editor/internal/gateway"
	"github.com/jonathan/cv-editor/internal/llm"
	"github.com/jonathan/cv-editor/internal/logging"
	"github.com/jonathan/cv-editor/internal/rulepack"
)

// llmConfig applies per-tier model overrides from the config file.
func llmConfig(cfg *config.Config) *llm.Config {
	out := llm.DefaultConfig()
	for tier, model := range cfg.Models {
		out = out.WithModel(llm.ModelTier(tier), model)
	}
	return out
}

// assistants holds the configured backends in fallback order.
type assistants struct {
	backends []gateway.Backend
	proxy    *gateway.ProxyBackend
	client   llm.Client
}

// buildAssistants wires the available tiers: the in-process model first, then the proxy's
// dedicated endpoints, then the proxy's generic writer. Either may be absent.
func buildAssistants(ctx context.Context, cfg *config.Config, log *logging.Logger) (*assistants, error) {
	a := &assistants{}
	if cfg.APIKey != "" {
		client, err := llm.NewClient(ctx, llmConfig(cfg), cfg.APIKey)
		if err != nil {
			return nil, fmt.Errorf("failed to create model client: %w", err)
		}
		a.client = client
		a.backends = append(a.backends, gateway.NewLLMDeviceBackend("gemini", client))
	}
	if cfg.ProxyURL != "" {
		a.proxy = gateway.NewProxyBackend(gateway.ProxyConfig{
			Name:    "proxy",
			BaseURL: cfg.ProxyURL,
			Token:   cfg.ProxyToken,
		}, log)
		a.backends = append(a.backends, a.proxy, gateway.NewProxyBackend(gateway.ProxyConfig{
			Name:       "proxy-writer",
			BaseURL:    cfg.ProxyURL,
			Token:      cfg.ProxyToken,
			WriterOnly: true,
		}, log))
	}
	return a, nil
}

func (a *assistants) orchestrator(log *logging.Logger) *assist.Orchestrator {
	return assist.New(log, a.backends...)
}

// resolver fetches remote country specs through the proxy when one is configured.
func (a *assistants) resolver(log *logging.Logger) *rulepack.Resolver {
	if a.proxy == nil {
		return rulepack.NewResolver(nil, log)
	}
	return rulepack.NewResolver(a.proxy, log)
}

func (a *assistants) Close() {
	if a.client != nil {
		_ = a.client.Close()
	}
}
