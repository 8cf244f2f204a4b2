package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/pavelk2v/cvforge/api/http/presenter"
	"github.com/pavelk2v/cvforge/pkg/aitask"
)

// TaskHandler serves the AI content endpoints. Every endpoint speaks the same
// two-phase contract: a request without browser_result is phase one and either
// returns the finished result or a browser handoff; a request carrying
// browser_result is phase two and submits the client-computed model output.
type TaskHandler struct {
	tasks aitask.UseCase
}

func NewTaskHandler(tasks aitask.UseCase) *TaskHandler { return &TaskHandler{tasks: tasks} }

type taskRequest struct {
	DocumentID        string   `json:"document_id"`
	Sections          []string `json:"sections"`
	JobDescription    string   `json:"job_description"`
	ExtraInstructions string   `json:"extra_instructions"`
	// BrowserResult carries the raw model output of a browser-delegated task.
	BrowserResult string `json:"browser_result"`
}

func (h *TaskHandler) run(c *fiber.Ctx, kind aitask.Kind) error {
	userID, orgID, err := identity(c)
	if err != nil {
		return presenter.Error(c, http.StatusUnauthorized, err.Error())
	}
	var body taskRequest
	if err := c.BodyParser(&body); err != nil {
		return presenter.Error(c, http.StatusBadRequest, "invalid task body")
	}
	req := aitask.Request{
		UserID:            userID,
		OrgID:             orgID,
		Kind:              kind,
		Sections:          body.Sections,
		JobDescription:    body.JobDescription,
		ExtraInstructions: body.ExtraInstructions,
	}
	if body.DocumentID != "" {
		id, err := uuid.Parse(body.DocumentID)
		if err != nil {
			return presenter.Error(c, http.StatusBadRequest, "invalid document_id")
		}
		req.DocumentID = id
	}

	if body.BrowserResult != "" {
		out, err := h.tasks.Submit(c.Context(), req, body.BrowserResult)
		if err != nil {
			return failure(c, err)
		}
		return respondOutcome(c, out)
	}

	env, err := h.tasks.Dispatch(c.Context(), req)
	if err != nil {
		return failure(c, err)
	}
	if env.Handoff != nil {
		payload := fiber.Map{
			"browser_execution": true,
			"prompt":            env.Handoff.Prompt,
			"model":             env.Handoff.Model,
			"model_type":        env.Handoff.ModelType,
			"document_id":       env.Handoff.DocumentID,
			"task":              env.Handoff.Kind,
		}
		if len(env.Handoff.Sections) > 0 {
			payload["sections"] = env.Handoff.Sections
		}
		return presenter.Success(c, http.StatusOK, payload)
	}
	return respondOutcome(c, *env.Outcome)
}

func respondOutcome(c *fiber.Ctx, out aitask.Outcome) error {
	switch out.Kind {
	case aitask.KindRewrite, aitask.KindTemplateGenerate:
		return presenter.Success(c, http.StatusOK, fiber.Map{"document": out.Document})
	case aitask.KindAssess:
		return presenter.Success(c, http.StatusOK, fiber.Map{"assessment": out.Assessment})
	case aitask.KindExtractKeywords:
		keywords := out.Keywords
		if keywords == nil {
			keywords = []aitask.Keyword{}
		}
		return presenter.Success(c, http.StatusOK, fiber.Map{"keywords": keywords})
	case aitask.KindCoverLetter:
		return presenter.Success(c, http.StatusOK, fiber.Map{"cover_letter": out.CoverLetter})
	}
	return presenter.Error(c, http.StatusInternalServerError, "unhandled task kind")
}

// Rewrite rewrites the requested sections of a document.
// @Summary Rewrite CV sections with AI
// @Tags    ai-tasks
// @Accept  json
// @Produce json
// @Param   body body taskRequest true "document_id required; sections default to all"
// @Security BearerAuth
// @Success 200 {object} map[string]any "Merged document, or a browser handoff"
// @Failure 422 {object} presenter.ErrorResponse "Model output failed validation"
// @Router  /ai/rewrite [post]
func (h *TaskHandler) Rewrite(c *fiber.Ctx) error {
	return h.run(c, aitask.KindRewrite)
}

// Assess scores a document and stores the assessment.
// @Summary Assess CV quality with AI
// @Tags    ai-tasks
// @Accept  json
// @Produce json
// @Param   body body taskRequest true "document_id required"
// @Security BearerAuth
// @Success 200 {object} map[string]any "Assessment, or a browser handoff"
// @Router  /ai/assess [post]
func (h *TaskHandler) Assess(c *fiber.Ctx) error {
	return h.run(c, aitask.KindAssess)
}

// Keywords extracts ranked keywords from a job description.
// @Summary Extract keywords from a job description
// @Tags    ai-tasks
// @Accept  json
// @Produce json
// @Param   body body taskRequest true "job_description required"
// @Security BearerAuth
// @Success 200 {object} map[string]any "Keywords, or a browser handoff"
// @Router  /ai/keywords [post]
func (h *TaskHandler) Keywords(c *fiber.Ctx) error {
	return h.run(c, aitask.KindExtractKeywords)
}

// CoverLetter drafts a cover letter from a document and a job description.
// @Summary Generate a cover letter
// @Tags    ai-tasks
// @Accept  json
// @Produce json
// @Param   body body taskRequest true "document_id and job_description required"
// @Security BearerAuth
// @Success 200 {object} map[string]any "Cover letter text, or a browser handoff"
// @Router  /ai/cover-letter [post]
func (h *TaskHandler) CoverLetter(c *fiber.Ctx) error {
	return h.run(c, aitask.KindCoverLetter)
}

// Template generates a starter document from a job description.
// @Summary Generate a CV template for a vacancy
// @Tags    ai-tasks
// @Accept  json
// @Produce json
// @Param   body body taskRequest true "job_description required"
// @Security BearerAuth
// @Success 200 {object} map[string]any "New document, or a browser handoff"
// @Router  /ai/template [post]
func (h *TaskHandler) Template(c *fiber.Ctx) error {
	return h.run(c, aitask.KindTemplateGenerate)
}
