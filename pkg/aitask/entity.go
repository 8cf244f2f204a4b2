package aitask

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pavelk2v/cvforge/pkg/cv"
	"github.com/pavelk2v/cvforge/pkg/llm"
)

// Kind discriminates the supported AI content tasks.
type Kind string

const (
	KindRewrite          Kind = "rewrite"
	KindAssess           Kind = "assess"
	KindExtractKeywords  Kind = "extract_keywords"
	KindCoverLetter      Kind = "cover_letter"
	KindTemplateGenerate Kind = "template_generate"
)

// ParseKind validates a task kind coming from API input.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	switch k {
	case KindRewrite, KindAssess, KindExtractKeywords, KindCoverLetter, KindTemplateGenerate:
		return k, nil
	}
	return "", fmt.Errorf("unknown task kind %q", s)
}

// Task is one content-generation request bound to a document.
type Task struct {
	Kind              Kind
	DocumentID        uuid.UUID
	Document          cv.Document
	TargetSections    cv.SectionSet
	JobDescription    string
	ExtraInstructions string
}

// ErrInvalidShape is returned when AI output fails schema validation.
// Callers must treat it as fatal for the task: nothing is merged or saved.
var ErrInvalidShape = errors.New("ai output has invalid shape")

// AssessmentReport is the validated output of an assess task. All scores
// are clamped to 0..100 at the validation boundary.
type AssessmentReport struct {
	OverallScore    int      `json:"overall_score"`
	ContentScore    int      `json:"content_score"`
	StructureScore  int      `json:"structure_score"`
	KeywordScore    int      `json:"keyword_score"`
	LanguageScore   int      `json:"language_score"`
	Strengths       []string `json:"strengths"`
	Weaknesses      []string `json:"weaknesses"`
	Recommendations []string `json:"recommendations"`
}

// Assessment is a persisted assessment of one document.
type Assessment struct {
	ID         uuid.UUID        `json:"id"`
	DocumentID uuid.UUID        `json:"documentId"`
	OwnerID    uuid.UUID        `json:"ownerId"`
	Model      string           `json:"model"`
	Report     AssessmentReport `json:"report"`
	CreatedAt  time.Time        `json:"createdAt"`
}

// AssessmentRepository is the port for storing assessments.
type AssessmentRepository interface {
	Create(ctx context.Context, a Assessment) error
	ListByDocument(ctx context.Context, ownerID, documentID uuid.UUID, limit, offset int) ([]Assessment, error)
}

// Keyword is one extracted vacancy keyword with its relevance in 0..1.
type Keyword struct {
	Keyword   string  `json:"keyword"`
	Relevance float64 `json:"relevance"`
}

// ValidatedResult is the tagged union produced by Normalize: exactly one
// field matching the task kind is set.
type ValidatedResult struct {
	Rewrite     *cv.RewriteResult
	Assessment  *AssessmentReport
	Keywords    []Keyword
	CoverLetter string
	Template    *cv.Document
}

// Outcome is the terminal result of a resolved task.
type Outcome struct {
	Kind        Kind
	Document    *cv.Stored
	Assessment  *Assessment
	Keywords    []Keyword
	CoverLetter string
}

// Handoff is phase one of browser-delegated execution. It carries enough
// context (document id, task kind) for the client to disambiguate its later
// submission; the server keeps no state in between, so an abandoned handoff
// costs nothing and needs no expiry.
type Handoff struct {
	llm.BrowserHandoff
	DocumentID uuid.UUID
	Kind       Kind
	// Sections is the requested merge scope, echoed so the client can
	// resubmit it verbatim with the phase-two payload.
	Sections []string
}

// Envelope is the two-phase contract value: a finished Outcome for server
// execution, or a Handoff awaiting the browser result.
type Envelope struct {
	Outcome *Outcome
	Handoff *Handoff
}
