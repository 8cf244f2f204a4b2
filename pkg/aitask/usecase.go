package aitask

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pavelk2v/cvforge/pkg/cv"
	"github.com/pavelk2v/cvforge/pkg/llm"
)

// ErrValidation marks bad task input (wrong sections, missing ids).
var ErrValidation = errors.New("invalid task request")

// SettingsResolver yields the effective provider config for a user.
type SettingsResolver interface {
	Resolve(ctx context.Context, userID, orgID uuid.UUID) llm.Config
}

// ModelFactory builds a provider client for a resolved configuration.
type ModelFactory interface {
	Model(ctx context.Context, cfg llm.Config) (llm.ChatModel, error)
}

// Request is one task invocation as it arrives from the API layer. The same
// shape serves both phases: phase two adds the browser-computed payload.
type Request struct {
	UserID            uuid.UUID
	OrgID             uuid.UUID
	Kind              Kind
	DocumentID        uuid.UUID
	Sections          []string
	JobDescription    string
	ExtraInstructions string
}

// UseCase is the execution router: it resolves settings, builds the prompt,
// runs the provider (or hands off to the browser) and applies the validated
// result. The protocol is stateless: nothing is retained between Dispatch
// returning a handoff and a later Submit.
type UseCase interface {
	Dispatch(ctx context.Context, req Request) (Envelope, error)
	// Submit resolves a previously dispatched browser task with the raw
	// model output computed client-side.
	Submit(ctx context.Context, req Request, rawPayload string) (Outcome, error)
}

type service struct {
	resolver    SettingsResolver
	models      ModelFactory
	docs        cv.Repository
	assessments AssessmentRepository
	log         *zap.Logger
}

func NewService(resolver SettingsResolver, models ModelFactory, docs cv.Repository, assessments AssessmentRepository, log *zap.Logger) UseCase {
	if log == nil {
		log = zap.NewNop()
	}
	return &service{
		resolver:    resolver,
		models:      models,
		docs:        docs,
		assessments: assessments,
		log:         log,
	}
}

func (s *service) Dispatch(ctx context.Context, req Request) (Envelope, error) {
	task, err := s.prepare(ctx, req)
	if err != nil {
		return Envelope{}, err
	}
	cfg := s.resolver.Resolve(ctx, req.UserID, req.OrgID)
	system, user := BuildPrompt(task)

	if cfg.Provider == llm.ProviderBrowser {
		s.log.Info("delegating task to browser",
			zap.String("task", string(req.Kind)),
			zap.String("model", cfg.Model))
		handoff := &Handoff{
			BrowserHandoff: llm.BrowserHandoff{
				Prompt:    system + "\n\n" + user,
				Model:     cfg.Model,
				ModelType: cfg.ModelType,
			},
			DocumentID: task.DocumentID,
			Kind:       task.Kind,
		}
		if len(task.TargetSections) > 0 {
			handoff.Sections = task.TargetSections.Names()
		}
		return Envelope{Handoff: handoff}, nil
	}

	model, err := s.models.Model(ctx, cfg)
	if err != nil {
		return Envelope{}, err
	}
	s.log.Info("executing task",
		zap.String("task", string(req.Kind)),
		zap.String("provider", string(cfg.Provider)),
		zap.String("model", cfg.Model),
		zap.String("document", task.DocumentID.String()))
	raw, err := model.Ask(ctx, system, user)
	if err != nil {
		return Envelope{}, err
	}
	out, err := s.finish(ctx, req, task, raw, cfg.Model)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{Outcome: &out}, nil
}

func (s *service) Submit(ctx context.Context, req Request, rawPayload string) (Outcome, error) {
	task, err := s.prepare(ctx, req)
	if err != nil {
		return Outcome{}, err
	}
	cfg := s.resolver.Resolve(ctx, req.UserID, req.OrgID)
	return s.finish(ctx, req, task, rawPayload, cfg.Model)
}

// prepare loads the target document and validates the request for its kind.
func (s *service) prepare(ctx context.Context, req Request) (Task, error) {
	task := Task{
		Kind:              req.Kind,
		DocumentID:        req.DocumentID,
		JobDescription:    req.JobDescription,
		ExtraInstructions: req.ExtraInstructions,
	}

	needsDocument := req.Kind != KindExtractKeywords && req.Kind != KindTemplateGenerate
	if needsDocument {
		if req.DocumentID == uuid.Nil {
			return Task{}, fmt.Errorf("%w: document id is required", ErrValidation)
		}
		rec, err := s.docs.GetForOwner(ctx, req.UserID, req.DocumentID)
		if err != nil {
			return Task{}, err
		}
		task.Document = rec.Document
	}
	if req.Kind == KindExtractKeywords || req.Kind == KindTemplateGenerate {
		if req.JobDescription == "" {
			return Task{}, fmt.Errorf("%w: job description is required", ErrValidation)
		}
	}

	if req.Kind == KindRewrite {
		if len(req.Sections) == 0 {
			task.TargetSections = cv.NewSectionSet(cv.AllSections()...)
		} else {
			for _, name := range req.Sections {
				if !cv.ValidSection(name) {
					return Task{}, fmt.Errorf("%w: unknown section %q", ErrValidation, name)
				}
			}
			task.TargetSections = cv.NewSectionSet(req.Sections...)
		}
	}
	return task, nil
}

// finish validates raw output and applies it. Validation failures abort the
// whole task: the stored document is never left partially merged.
func (s *service) finish(ctx context.Context, req Request, task Task, raw, modelName string) (Outcome, error) {
	validated, err := Normalize(task.Kind, raw)
	if err != nil {
		return Outcome{}, err
	}

	out := Outcome{Kind: task.Kind}
	switch task.Kind {
	case KindRewrite:
		merged, outOfScope := cv.Merge(task.Document, *validated.Rewrite, task.TargetSections)
		if len(outOfScope) > 0 {
			// requested scope is authoritative; the spill is dropped
			s.log.Warn("result exceeded merge scope",
				zap.String("document", task.DocumentID.String()),
				zap.Strings("ignored_sections", outOfScope))
		}
		if err := s.docs.UpdateContent(ctx, req.UserID, task.DocumentID, merged); err != nil {
			return Outcome{}, err
		}
		rec, err := s.docs.GetForOwner(ctx, req.UserID, task.DocumentID)
		if err != nil {
			return Outcome{}, err
		}
		out.Document = &rec
	case KindAssess:
		a := Assessment{
			ID:         uuid.New(),
			DocumentID: task.DocumentID,
			OwnerID:    req.UserID,
			Model:      modelName,
			Report:     *validated.Assessment,
			CreatedAt:  time.Now().UTC(),
		}
		if err := s.assessments.Create(ctx, a); err != nil {
			return Outcome{}, err
		}
		out.Assessment = &a
	case KindExtractKeywords:
		out.Keywords = validated.Keywords
	case KindCoverLetter:
		out.CoverLetter = validated.CoverLetter
	case KindTemplateGenerate:
		now := time.Now().UTC()
		rec := cv.Stored{
			ID:        uuid.New(),
			OwnerID:   req.UserID,
			Document:  *validated.Template,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.docs.Create(ctx, rec); err != nil {
			return Outcome{}, err
		}
		out.Document = &rec
	}
	return out, nil
}
