package cv

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when a document does not exist or is owned by
	// someone else.
	ErrNotFound = errors.New("document not found")
	// ErrApplicationTaken is returned when a job application already has a
	// linked variant.
	ErrApplicationTaken = errors.New("application already has a linked variant")
)

// UseCase covers document and variant lifecycle.
type UseCase interface {
	Create(ctx context.Context, ownerID uuid.UUID, doc Document) (Stored, error)
	Get(ctx context.Context, ownerID, id uuid.UUID) (Stored, error)
	List(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]Stored, error)
	Update(ctx context.Context, ownerID, id uuid.UUID, doc Document) (Stored, error)
	// CloneVariant derives a new document from source (master or another
	// variant), optionally linking it to a job application.
	CloneVariant(ctx context.Context, ownerID, sourceID uuid.UUID, applicationID *uuid.UUID) (Stored, error)
	LinkApplication(ctx context.Context, ownerID, id uuid.UUID, applicationID *uuid.UUID) error
	Delete(ctx context.Context, ownerID, id uuid.UUID) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) UseCase { return &service{repo: repo} }

func (s *service) Create(ctx context.Context, ownerID uuid.UUID, doc Document) (Stored, error) {
	doc.Summary = strings.TrimSpace(doc.Summary)
	doc.Normalize()
	doc.AssignIDs()
	now := time.Now().UTC()
	rec := Stored{
		ID:        uuid.New(),
		OwnerID:   ownerID,
		Document:  doc,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, rec); err != nil {
		return Stored{}, err
	}
	return rec, nil
}

func (s *service) Get(ctx context.Context, ownerID, id uuid.UUID) (Stored, error) {
	return s.repo.GetForOwner(ctx, ownerID, id)
}

func (s *service) List(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]Stored, error) {
	return s.repo.ListByOwner(ctx, ownerID, limit, offset)
}

func (s *service) Update(ctx context.Context, ownerID, id uuid.UUID, doc Document) (Stored, error) {
	doc.Normalize()
	doc.AssignIDs()
	if err := s.repo.UpdateContent(ctx, ownerID, id, doc); err != nil {
		return Stored{}, err
	}
	return s.repo.GetForOwner(ctx, ownerID, id)
}

func (s *service) CloneVariant(ctx context.Context, ownerID, sourceID uuid.UUID, applicationID *uuid.UUID) (Stored, error) {
	src, err := s.repo.GetForOwner(ctx, ownerID, sourceID)
	if err != nil {
		return Stored{}, err
	}
	now := time.Now().UTC()
	rec := Stored{
		ID:        uuid.New(),
		OwnerID:   ownerID,
		SourceID:  &src.ID,
		Document:  src.Document,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, rec); err != nil {
		return Stored{}, err
	}
	if applicationID != nil {
		if err := s.repo.LinkApplication(ctx, ownerID, rec.ID, applicationID); err != nil {
			return Stored{}, err
		}
		rec.ApplicationID = applicationID
	}
	return rec, nil
}

func (s *service) LinkApplication(ctx context.Context, ownerID, id uuid.UUID, applicationID *uuid.UUID) error {
	return s.repo.LinkApplication(ctx, ownerID, id, applicationID)
}

func (s *service) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	return s.repo.DeleteForOwner(ctx, ownerID, id)
}
