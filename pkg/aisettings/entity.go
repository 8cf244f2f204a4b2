package aisettings

import (
	"context"
	"errors"
	"time"

	"github.com/pavelk2v/cvforge/pkg/credentials"
	"github.com/pavelk2v/cvforge/pkg/llm"
)

// Record is one tier's AI configuration (user or organisation scope).
type Record struct {
	Scope     credentials.Scope `json:"-"`
	Enabled   bool              `json:"enabled"`
	Provider  llm.Provider      `json:"provider"`
	Model     string            `json:"model"`
	Endpoint  string            `json:"endpoint,omitempty"`
	ModelType string            `json:"modelType,omitempty"`
	UpdatedAt time.Time         `json:"updatedAt"`
}

// ErrNotFound is returned by repositories when a scope has no settings row.
var ErrNotFound = errors.New("ai settings not found")

// Repository is the port to settings storage.
type Repository interface {
	Get(ctx context.Context, scope credentials.Scope) (Record, error)
	Upsert(ctx context.Context, rec Record) error
}

// CredentialSource is the slice of the credential store the resolver needs.
type CredentialSource interface {
	Get(ctx context.Context, scope credentials.Scope, provider llm.Provider) (string, bool, error)
}

// Defaults is the platform tier: used when neither the user nor their
// organisation has a usable configuration.
type Defaults struct {
	OllamaEndpoint string
	OllamaModel    string
}

// UseCase manages per-scope settings records.
type UseCase interface {
	Get(ctx context.Context, scope credentials.Scope) (Record, error)
	Put(ctx context.Context, rec Record) (Record, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) UseCase { return &service{repo: repo} }

func (s *service) Get(ctx context.Context, scope credentials.Scope) (Record, error) {
	rec, err := s.repo.Get(ctx, scope)
	if errors.Is(err, ErrNotFound) {
		return Record{Scope: scope}, nil
	}
	return rec, err
}

func (s *service) Put(ctx context.Context, rec Record) (Record, error) {
	if rec.Provider != "" {
		p, err := llm.ParseProvider(string(rec.Provider))
		if err != nil {
			return Record{}, err
		}
		rec.Provider = p
		if p == llm.ProviderOllama && rec.Endpoint != "" {
			if err := llm.ValidateOllamaEndpoint(rec.Endpoint); err != nil {
				return Record{}, err
			}
		}
	}
	rec.UpdatedAt = time.Now().UTC()
	if err := s.repo.Upsert(ctx, rec); err != nil {
		return Record{}, err
	}
	return rec, nil
}

// nil-safe helper for handlers that show whether a credential is on file.
func HasCredential(ctx context.Context, creds CredentialSource, scope credentials.Scope, p llm.Provider) bool {
	if creds == nil || !p.KeyBased() {
		return false
	}
	_, ok, err := creds.Get(ctx, scope, p)
	return err == nil && ok
}
