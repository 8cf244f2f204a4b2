package aisettings

import (
	"context"

	"github.com/google/uuid"

	"github.com/pavelk2v/cvforge/pkg/credentials"
	"github.com/pavelk2v/cvforge/pkg/llm"
)

// Resolver computes the effective provider configuration for a user by
// cascading user -> organisation -> platform default. It is read-only and
// never errors into the caller: any unusable or unreadable tier simply
// falls through to the next one.
type Resolver struct {
	settings Repository
	creds    CredentialSource
	defaults Defaults
}

func NewResolver(settings Repository, creds CredentialSource, defaults Defaults) *Resolver {
	return &Resolver{settings: settings, creds: creds, defaults: defaults}
}

// Resolve returns the configuration the given user's next AI task should
// run with. orgID may be uuid.Nil for users without an organisation.
func (r *Resolver) Resolve(ctx context.Context, userID, orgID uuid.UUID) llm.Config {
	if cfg, ok := r.tier(ctx, credentials.UserScope(userID)); ok {
		return cfg
	}
	if orgID != uuid.Nil {
		if cfg, ok := r.tier(ctx, credentials.OrgScope(orgID)); ok {
			return cfg
		}
	}
	return llm.Config{
		Provider: llm.ProviderOllama,
		Endpoint: r.defaults.OllamaEndpoint,
		Model:    r.defaults.OllamaModel,
	}
}

// tier evaluates one cascade level. A tier is usable when AI is enabled, a
// provider is selected, and - for key-based providers - a credential is on
// file. The credential is copied into the returned config so the request
// never touches shared state afterwards.
func (r *Resolver) tier(ctx context.Context, scope credentials.Scope) (llm.Config, bool) {
	rec, err := r.settings.Get(ctx, scope)
	if err != nil || !rec.Enabled || rec.Provider == "" {
		return llm.Config{}, false
	}
	cfg := llm.Config{
		Provider:  rec.Provider,
		Endpoint:  rec.Endpoint,
		Model:     rec.Model,
		ModelType: rec.ModelType,
	}
	switch {
	case rec.Provider.KeyBased():
		key, ok, err := r.creds.Get(ctx, scope, rec.Provider)
		if err != nil || !ok {
			return llm.Config{}, false
		}
		cfg.Credential = key
	case rec.Provider == llm.ProviderOllama:
		if cfg.Endpoint == "" {
			cfg.Endpoint = r.defaults.OllamaEndpoint
		}
	case rec.Provider == llm.ProviderBrowser:
		if cfg.Model == "" {
			return llm.Config{}, false
		}
	}
	return cfg, true
}
