package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pavelk2v/cvforge/pkg/cv"
)

// DocumentRepository stores CV documents and variants as JSONB.
type DocumentRepository struct {
	pool *pgxpool.Pool
}

func NewDocumentRepository(pool *pgxpool.Pool) (*DocumentRepository, error) {
	r := &DocumentRepository{pool: pool}
	if err := r.ensureSchema(context.Background()); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *DocumentRepository) ensureSchema(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `
CREATE TABLE IF NOT EXISTS cv_documents (
	id UUID PRIMARY KEY,
	owner_id UUID NOT NULL,
	source_id UUID NULL REFERENCES cv_documents(id) ON DELETE SET NULL,
	application_id UUID NULL,
	content JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS cv_documents_owner_idx ON cv_documents(owner_id);
CREATE UNIQUE INDEX IF NOT EXISTS cv_documents_application_uq
	ON cv_documents(application_id) WHERE application_id IS NOT NULL;
`)
	return err
}

func (r *DocumentRepository) Create(ctx context.Context, rec cv.Stored) error {
	content, err := json.Marshal(rec.Document)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, `
INSERT INTO cv_documents (id, owner_id, source_id, application_id, content, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
`, rec.ID, rec.OwnerID, rec.SourceID, rec.ApplicationID, content, rec.CreatedAt, rec.UpdatedAt)
	return err
}

func (r *DocumentRepository) GetForOwner(ctx context.Context, ownerID, id uuid.UUID) (cv.Stored, error) {
	row := r.pool.QueryRow(ctx, `
SELECT id, owner_id, source_id, application_id, content, created_at, updated_at
FROM cv_documents WHERE id = $1 AND owner_id = $2
`, id, ownerID)
	return scanDocument(row)
}

func (r *DocumentRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]cv.Stored, error) {
	rows, err := r.pool.Query(ctx, `
SELECT id, owner_id, source_id, application_id, content, created_at, updated_at
FROM cv_documents WHERE owner_id = $1
ORDER BY created_at DESC LIMIT $2 OFFSET $3
`, ownerID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []cv.Stored
	for rows.Next() {
		rec, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *DocumentRepository) UpdateContent(ctx context.Context, ownerID, id uuid.UUID, doc cv.Document) error {
	content, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	tag, err := r.pool.Exec(ctx, `
UPDATE cv_documents SET content = $1, updated_at = $2 WHERE id = $3 AND owner_id = $4
`, content, time.Now().UTC(), id, ownerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return cv.ErrNotFound
	}
	return nil
}

func (r *DocumentRepository) LinkApplication(ctx context.Context, ownerID, id uuid.UUID, applicationID *uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `
UPDATE cv_documents SET application_id = $1, updated_at = $2 WHERE id = $3 AND owner_id = $4
`, applicationID, time.Now().UTC(), id, ownerID)
	if err != nil {
		var pgErr *pgconn.PgError
		// unique violation: another variant already holds this application
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return cv.ErrApplicationTaken
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return cv.ErrNotFound
	}
	return nil
}

func (r *DocumentRepository) DeleteForOwner(ctx context.Context, ownerID, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM cv_documents WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return cv.ErrNotFound
	}
	return nil
}

func scanDocument(row pgx.Row) (cv.Stored, error) {
	var rec cv.Stored
	var content []byte
	if err := row.Scan(&rec.ID, &rec.OwnerID, &rec.SourceID, &rec.ApplicationID, &content, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return cv.Stored{}, cv.ErrNotFound
		}
		return cv.Stored{}, err
	}
	if err := json.Unmarshal(content, &rec.Document); err != nil {
		return cv.Stored{}, err
	}
	rec.Document.Normalize()
	rec.CreatedAt = rec.CreatedAt.UTC()
	rec.UpdatedAt = rec.UpdatedAt.UTC()
	return rec, nil
}
