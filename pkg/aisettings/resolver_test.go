package aisettings

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/pavelk2v/cvforge/pkg/credentials"
	"github.com/pavelk2v/cvforge/pkg/llm"
)

type stubSettings struct {
	recs map[credentials.Scope]Record
	err  error
}

func (s *stubSettings) Get(_ context.Context, scope credentials.Scope) (Record, error) {
	if s.err != nil {
		return Record{}, s.err
	}
	rec, ok := s.recs[scope]
	if !ok {
		return Record{}, ErrNotFound
	}
	return rec, nil
}

func (s *stubSettings) Upsert(_ context.Context, rec Record) error {
	if s.recs == nil {
		s.recs = map[credentials.Scope]Record{}
	}
	s.recs[rec.Scope] = rec
	return nil
}

type stubCreds struct {
	keys map[credentials.Scope]string
}

func (s *stubCreds) Get(_ context.Context, scope credentials.Scope, _ llm.Provider) (string, bool, error) {
	key, ok := s.keys[scope]
	return key, ok, nil
}

var testDefaults = Defaults{OllamaEndpoint: "http://127.0.0.1:11434", OllamaModel: "llama3.1"}

func TestResolveUserTierWins(t *testing.T) {
	userID, orgID := uuid.New(), uuid.New()
	userScope, orgScope := credentials.UserScope(userID), credentials.OrgScope(orgID)
	settings := &stubSettings{recs: map[credentials.Scope]Record{
		userScope: {Scope: userScope, Enabled: true, Provider: llm.ProviderAnthropic, Model: "claude-sonnet-4-5"},
		orgScope:  {Scope: orgScope, Enabled: true, Provider: llm.ProviderOpenAI, Model: "gpt-4o"},
	}}
	creds := &stubCreds{keys: map[credentials.Scope]string{
		userScope: "sk-ant-api03-userkey1",
		orgScope:  "sk-proj-orgkey1234567",
	}}

	cfg := NewResolver(settings, creds, testDefaults).Resolve(context.Background(), userID, orgID)

	assert.Equal(t, llm.ProviderAnthropic, cfg.Provider)
	assert.Equal(t, "sk-ant-api03-userkey1", cfg.Credential)
}

func TestResolveFallsBackToOrgWhenUserDisabled(t *testing.T) {
	userID, orgID := uuid.New(), uuid.New()
	userScope, orgScope := credentials.UserScope(userID), credentials.OrgScope(orgID)
	settings := &stubSettings{recs: map[credentials.Scope]Record{
		userScope: {Scope: userScope, Enabled: false, Provider: llm.ProviderAnthropic},
		orgScope:  {Scope: orgScope, Enabled: true, Provider: llm.ProviderOpenAI, Model: "gpt-4o"},
	}}
	creds := &stubCreds{keys: map[credentials.Scope]string{orgScope: "sk-proj-orgkey1234567"}}

	cfg := NewResolver(settings, creds, testDefaults).Resolve(context.Background(), userID, orgID)

	assert.Equal(t, llm.ProviderOpenAI, cfg.Provider)
	assert.Equal(t, "sk-proj-orgkey1234567", cfg.Credential)
	assert.Equal(t, "gpt-4o", cfg.Model)
}

func TestResolveFallsBackWhenUserHasNoCredential(t *testing.T) {
	userID, orgID := uuid.New(), uuid.New()
	userScope := credentials.UserScope(userID)
	settings := &stubSettings{recs: map[credentials.Scope]Record{
		userScope: {Scope: userScope, Enabled: true, Provider: llm.ProviderGemini},
	}}

	cfg := NewResolver(settings, &stubCreds{}, testDefaults).Resolve(context.Background(), userID, orgID)

	assert.Equal(t, llm.ProviderOllama, cfg.Provider)
	assert.Equal(t, testDefaults.OllamaEndpoint, cfg.Endpoint)
	assert.Empty(t, cfg.Credential)
}

func TestResolveBothDisabledReturnsPlatformDefault(t *testing.T) {
	cfg := NewResolver(&stubSettings{}, &stubCreds{}, testDefaults).
		Resolve(context.Background(), uuid.New(), uuid.New())

	assert.Equal(t, llm.ProviderOllama, cfg.Provider)
	assert.Equal(t, "llama3.1", cfg.Model)
}

func TestResolveRepositoryErrorFallsThrough(t *testing.T) {
	settings := &stubSettings{err: errors.New("db down")}

	cfg := NewResolver(settings, &stubCreds{}, testDefaults).
		Resolve(context.Background(), uuid.New(), uuid.Nil)

	assert.Equal(t, llm.ProviderOllama, cfg.Provider)
}

func TestResolveBrowserTierNeedsModel(t *testing.T) {
	userID := uuid.New()
	userScope := credentials.UserScope(userID)
	settings := &stubSettings{recs: map[credentials.Scope]Record{
		userScope: {Scope: userScope, Enabled: true, Provider: llm.ProviderBrowser},
	}}

	cfg := NewResolver(settings, &stubCreds{}, testDefaults).Resolve(context.Background(), userID, uuid.Nil)
	assert.Equal(t, llm.ProviderOllama, cfg.Provider)

	settings.recs[userScope] = Record{
		Scope: userScope, Enabled: true, Provider: llm.ProviderBrowser,
		Model: "qwen2-0.5b-instruct", ModelType: "wllama",
	}
	cfg = NewResolver(settings, &stubCreds{}, testDefaults).Resolve(context.Background(), userID, uuid.Nil)
	assert.Equal(t, llm.ProviderBrowser, cfg.Provider)
	assert.Equal(t, "wllama", cfg.ModelType)
}

func TestResolveOllamaTierGetsDefaultEndpoint(t *testing.T) {
	userID := uuid.New()
	userScope := credentials.UserScope(userID)
	settings := &stubSettings{recs: map[credentials.Scope]Record{
		userScope: {Scope: userScope, Enabled: true, Provider: llm.ProviderOllama, Model: "mistral"},
	}}

	cfg := NewResolver(settings, &stubCreds{}, testDefaults).Resolve(context.Background(), userID, uuid.Nil)

	assert.Equal(t, llm.ProviderOllama, cfg.Provider)
	assert.Equal(t, "mistral", cfg.Model)
	assert.Equal(t, testDefaults.OllamaEndpoint, cfg.Endpoint)
}
