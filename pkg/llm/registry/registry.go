// Package registry builds a concrete ChatModel for a resolved provider
// configuration. It is the only place that knows every client package.
package registry

import (
	"context"
	"fmt"
	"net/http"

	"github.com/pavelk2v/cvforge/pkg/llm"
	"github.com/pavelk2v/cvforge/pkg/llm/anthropic"
	"github.com/pavelk2v/cvforge/pkg/llm/gemini"
	"github.com/pavelk2v/cvforge/pkg/llm/ollamalocal"
	"github.com/pavelk2v/cvforge/pkg/llm/openaicompat"
)

// Factory creates per-request clients over one shared HTTP client so the
// request timeout is enforced uniformly across providers.
type Factory struct {
	httpDo *http.Client
}

func NewFactory() *Factory {
	return &Factory{httpDo: &http.Client{Timeout: openaicompat.RequestTimeout}}
}

// Model returns a client for cfg. The browser provider has no server-side
// client: callers must check for it before asking for one.
func (f *Factory) Model(ctx context.Context, cfg llm.Config) (llm.ChatModel, error) {
	if err := llm.ValidateConfig(cfg); err != nil {
		return nil, err
	}
	switch cfg.Provider {
	case llm.ProviderOpenAI, llm.ProviderGrok:
		return openaicompat.New(cfg.Provider, cfg.Credential, cfg.Endpoint, cfg.Model, f.httpDo), nil
	case llm.ProviderAnthropic:
		return anthropic.New(cfg.Credential, cfg.Endpoint, cfg.Model, f.httpDo), nil
	case llm.ProviderGemini:
		return gemini.New(ctx, cfg.Credential, cfg.Model, f.httpDo)
	case llm.ProviderOllama:
		return ollamalocal.New(cfg.Endpoint, cfg.Model, f.httpDo)
	case llm.ProviderBrowser:
		return nil, fmt.Errorf("browser provider has no server-side client")
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
	}
}
