package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pavelk2v/cvforge/pkg/aisettings"
	"github.com/pavelk2v/cvforge/pkg/credentials"
	"github.com/pavelk2v/cvforge/pkg/llm"
)

// SettingsRepository stores per-scope AI settings.
type SettingsRepository struct {
	pool *pgxpool.Pool
}

func NewSettingsRepository(pool *pgxpool.Pool) (*SettingsRepository, error) {
	r := &SettingsRepository{pool: pool}
	if err := r.ensureSchema(context.Background()); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *SettingsRepository) ensureSchema(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `
CREATE TABLE IF NOT EXISTS ai_settings (
	scope_kind TEXT NOT NULL,
	owner_id UUID NOT NULL,
	enabled BOOLEAN NOT NULL DEFAULT FALSE,
	provider TEXT NOT NULL DEFAULT '',
	model TEXT NOT NULL DEFAULT '',
	endpoint TEXT NOT NULL DEFAULT '',
	model_type TEXT NOT NULL DEFAULT '',
	updated_at TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (scope_kind, owner_id)
);
`)
	return err
}

func (r *SettingsRepository) Get(ctx context.Context, scope credentials.Scope) (aisettings.Record, error) {
	row := r.pool.QueryRow(ctx, `
SELECT enabled, provider, model, endpoint, model_type, updated_at
FROM ai_settings WHERE scope_kind = $1 AND owner_id = $2
`, string(scope.Kind), scope.OwnerID)

	rec := aisettings.Record{Scope: scope}
	var provider string
	if err := row.Scan(&rec.Enabled, &provider, &rec.Model, &rec.Endpoint, &rec.ModelType, &rec.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return aisettings.Record{}, aisettings.ErrNotFound
		}
		return aisettings.Record{}, err
	}
	rec.Provider = llm.Provider(provider)
	rec.UpdatedAt = rec.UpdatedAt.UTC()
	return rec, nil
}

func (r *SettingsRepository) Upsert(ctx context.Context, rec aisettings.Record) error {
	_, err := r.pool.Exec(ctx, `
INSERT INTO ai_settings (scope_kind, owner_id, enabled, provider, model, endpoint, model_type, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (scope_kind, owner_id) DO UPDATE SET
	enabled = EXCLUDED.enabled,
	provider = EXCLUDED.provider,
	model = EXCLUDED.model,
	endpoint = EXCLUDED.endpoint,
	model_type = EXCLUDED.model_type,
	updated_at = EXCLUDED.updated_at
`, string(rec.Scope.Kind), rec.Scope.OwnerID, rec.Enabled, string(rec.Provider), rec.Model, rec.Endpoint, rec.ModelType, rec.UpdatedAt)
	return err
}
