package credentials

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pavelk2v/cvforge/pkg/llm"
)

// ScopeKind distinguishes user-owned from organisation-owned credentials.
type ScopeKind string

const (
	ScopeUser ScopeKind = "user"
	ScopeOrg  ScopeKind = "org"
)

// Scope identifies one credential owner.
type Scope struct {
	Kind    ScopeKind
	OwnerID uuid.UUID
}

func UserScope(id uuid.UUID) Scope { return Scope{Kind: ScopeUser, OwnerID: id} }
func OrgScope(id uuid.UUID) Scope  { return Scope{Kind: ScopeOrg, OwnerID: id} }

// Record is a stored credential: ciphertext and nonce only, never plaintext.
type Record struct {
	Scope      Scope
	Provider   llm.Provider
	Ciphertext []byte
	Nonce      []byte
	UpdatedAt  time.Time
}

// ErrNotFound is returned by repositories when no credential exists.
var ErrNotFound = errors.New("credential not found")

// Repository is the port to credential storage.
type Repository interface {
	Get(ctx context.Context, scope Scope, provider llm.Provider) (Record, error)
	Upsert(ctx context.Context, rec Record) error
	Delete(ctx context.Context, scope Scope, provider llm.Provider) error
}

// Store encrypts and decrypts per-owner provider credentials. Plaintext keys
// exist only inside a single call; they are never stored or logged.
type Store struct {
	repo Repository
	key  []byte
}

func NewStore(repo Repository, secret, salt string) *Store {
	return &Store{repo: repo, key: DeriveKey([]byte(secret), []byte(salt))}
}

// Put validates the key shape for the provider and stores it encrypted.
func (s *Store) Put(ctx context.Context, scope Scope, provider llm.Provider, apiKey string) error {
	if err := llm.ValidateCredential(provider, apiKey); err != nil {
		return err
	}
	ciphertext, nonce, err := seal([]byte(apiKey), s.key)
	if err != nil {
		return fmt.Errorf("encrypt credential: %w", err)
	}
	return s.repo.Upsert(ctx, Record{
		Scope:      scope,
		Provider:   provider,
		Ciphertext: ciphertext,
		Nonce:      nonce,
		UpdatedAt:  time.Now().UTC(),
	})
}

// Get decrypts the stored key. "No credential" is an expected outcome and is
// reported via the boolean, not an error.
func (s *Store) Get(ctx context.Context, scope Scope, provider llm.Provider) (string, bool, error) {
	rec, err := s.repo.Get(ctx, scope, provider)
	if errors.Is(err, ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	plaintext, err := open(rec.Ciphertext, rec.Nonce, s.key)
	if err != nil {
		return "", false, fmt.Errorf("decrypt credential: %w", err)
	}
	return string(plaintext), true, nil
}

// Has reports whether a credential exists without decrypting it.
func (s *Store) Has(ctx context.Context, scope Scope, provider llm.Provider) (bool, error) {
	_, err := s.repo.Get(ctx, scope, provider)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Delete removes the credential for the scope and provider.
func (s *Store) Delete(ctx context.Context, scope Scope, provider llm.Provider) error {
	return s.repo.Delete(ctx, scope, provider)
}
