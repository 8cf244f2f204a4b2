package postgres

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pavelk2v/cvforge/pkg/aitask"
)

// AssessmentRepository stores AI quality assessments per document.
type AssessmentRepository struct {
	pool *pgxpool.Pool
}

func NewAssessmentRepository(pool *pgxpool.Pool) (*AssessmentRepository, error) {
	r := &AssessmentRepository{pool: pool}
	if err := r.ensureSchema(context.Background()); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *AssessmentRepository) ensureSchema(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `
CREATE TABLE IF NOT EXISTS cv_assessments (
	id UUID PRIMARY KEY,
	document_id UUID NOT NULL REFERENCES cv_documents(id) ON DELETE CASCADE,
	owner_id UUID NOT NULL,
	model TEXT NOT NULL,
	report JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS cv_assessments_document_idx ON cv_assessments(document_id);
`)
	return err
}

func (r *AssessmentRepository) Create(ctx context.Context, a aitask.Assessment) error {
	report, err := json.Marshal(a.Report)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, `
INSERT INTO cv_assessments (id, document_id, owner_id, model, report, created_at)
VALUES ($1, $2, $3, $4, $5, $6)
`, a.ID, a.DocumentID, a.OwnerID, a.Model, report, a.CreatedAt)
	return err
}

func (r *AssessmentRepository) ListByDocument(ctx context.Context, ownerID, documentID uuid.UUID, limit, offset int) ([]aitask.Assessment, error) {
	rows, err := r.pool.Query(ctx, `
SELECT id, document_id, owner_id, model, report, created_at
FROM cv_assessments WHERE document_id = $1 AND owner_id = $2
ORDER BY created_at DESC LIMIT $3 OFFSET $4
`, documentID, ownerID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []aitask.Assessment
	for rows.Next() {
		var a aitask.Assessment
		var report []byte
		if err := rows.Scan(&a.ID, &a.DocumentID, &a.OwnerID, &a.Model, &report, &a.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(report, &a.Report); err != nil {
			return nil, err
		}
		a.CreatedAt = a.CreatedAt.UTC()
		out = append(out, a)
	}
	return out, rows.Err()
}
