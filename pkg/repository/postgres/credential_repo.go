package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pavelk2v/cvforge/pkg/credentials"
	"github.com/pavelk2v/cvforge/pkg/llm"
)

// CredentialRepository stores encrypted provider credentials. Only the
// ciphertext and nonce ever reach this layer.
type CredentialRepository struct {
	pool *pgxpool.Pool
}

func NewCredentialRepository(pool *pgxpool.Pool) (*CredentialRepository, error) {
	r := &CredentialRepository{pool: pool}
	if err := r.ensureSchema(context.Background()); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *CredentialRepository) ensureSchema(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `
CREATE TABLE IF NOT EXISTS ai_credentials (
	scope_kind TEXT NOT NULL,
	owner_id UUID NOT NULL,
	provider TEXT NOT NULL,
	ciphertext BYTEA NOT NULL,
	nonce BYTEA NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (scope_kind, owner_id, provider)
);
`)
	return err
}

func (r *CredentialRepository) Get(ctx context.Context, scope credentials.Scope, provider llm.Provider) (credentials.Record, error) {
	row := r.pool.QueryRow(ctx, `
SELECT ciphertext, nonce, updated_at
FROM ai_credentials WHERE scope_kind = $1 AND owner_id = $2 AND provider = $3
`, string(scope.Kind), scope.OwnerID, string(provider))

	rec := credentials.Record{Scope: scope, Provider: provider}
	if err := row.Scan(&rec.Ciphertext, &rec.Nonce, &rec.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return credentials.Record{}, credentials.ErrNotFound
		}
		return credentials.Record{}, err
	}
	rec.UpdatedAt = rec.UpdatedAt.UTC()
	return rec, nil
}

func (r *CredentialRepository) Upsert(ctx context.Context, rec credentials.Record) error {
	_, err := r.pool.Exec(ctx, `
INSERT INTO ai_credentials (scope_kind, owner_id, provider, ciphertext, nonce, updated_at)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (scope_kind, owner_id, provider) DO UPDATE SET
	ciphertext = EXCLUDED.ciphertext,
	nonce = EXCLUDED.nonce,
	updated_at = EXCLUDED.updated_at
`, string(rec.Scope.Kind), rec.Scope.OwnerID, string(rec.Provider), rec.Ciphertext, rec.Nonce, rec.UpdatedAt)
	return err
}

func (r *CredentialRepository) Delete(ctx context.Context, scope credentials.Scope, provider llm.Provider) error {
	_, err := r.pool.Exec(ctx, `
DELETE FROM ai_credentials WHERE scope_kind = $1 AND owner_id = $2 AND provider = $3
`, string(scope.Kind), scope.OwnerID, string(provider))
	return err
}
