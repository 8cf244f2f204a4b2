package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/pavelk2v/cvforge/api/http/presenter"
	"github.com/pavelk2v/cvforge/pkg/aitask"
	"github.com/pavelk2v/cvforge/pkg/cv"
)

// DocumentHandler serves CV document and variant lifecycle.
type DocumentHandler struct {
	svc         cv.UseCase
	assessments aitask.AssessmentRepository
}

func NewDocumentHandler(svc cv.UseCase, assessments aitask.AssessmentRepository) *DocumentHandler {
	return &DocumentHandler{svc: svc, assessments: assessments}
}

func (h *DocumentHandler) documentID(c *fiber.Ctx) (uuid.UUID, error) {
	return uuid.Parse(c.Params("id"))
}

// Create stores a new master document.
// @Summary Create a CV document
// @Tags    documents
// @Accept  json
// @Produce json
// @Param   body body cv.Document true "Document content"
// @Security BearerAuth
// @Success 201 {object} map[string]any
// @Failure 400 {object} presenter.ErrorResponse
// @Router  /documents [post]
func (h *DocumentHandler) Create(c *fiber.Ctx) error {
	userID, _, err := identity(c)
	if err != nil {
		return presenter.Error(c, http.StatusUnauthorized, err.Error())
	}
	var doc cv.Document
	if err := c.BodyParser(&doc); err != nil {
		return presenter.Error(c, http.StatusBadRequest, "invalid document body")
	}
	rec, err := h.svc.Create(c.Context(), userID, doc)
	if err != nil {
		return failure(c, err)
	}
	return presenter.Success(c, http.StatusCreated, fiber.Map{"document": rec})
}

// List returns the caller's documents, newest first.
// @Summary List CV documents
// @Tags    documents
// @Produce json
// @Param   limit  query int false "Page size (max 100)"
// @Param   offset query int false "Page offset"
// @Security BearerAuth
// @Success 200 {object} map[string]any
// @Router  /documents [get]
func (h *DocumentHandler) List(c *fiber.Ctx) error {
	userID, _, err := identity(c)
	if err != nil {
		return presenter.Error(c, http.StatusUnauthorized, err.Error())
	}
	limit, offset := parseLimitOffset(c)
	recs, err := h.svc.List(c.Context(), userID, limit, offset)
	if err != nil {
		return failure(c, err)
	}
	if recs == nil {
		recs = []cv.Stored{}
	}
	return presenter.Success(c, http.StatusOK, fiber.Map{"documents": recs})
}

// Get returns one document.
// @Summary Get a CV document
// @Tags    documents
// @Produce json
// @Param   id path string true "Document id"
// @Security BearerAuth
// @Success 200 {object} map[string]any
// @Failure 404 {object} presenter.ErrorResponse
// @Router  /documents/{id} [get]
func (h *DocumentHandler) Get(c *fiber.Ctx) error {
	userID, _, err := identity(c)
	if err != nil {
		return presenter.Error(c, http.StatusUnauthorized, err.Error())
	}
	id, err := h.documentID(c)
	if err != nil {
		return presenter.Error(c, http.StatusBadRequest, "invalid document id")
	}
	rec, err := h.svc.Get(c.Context(), userID, id)
	if err != nil {
		return failure(c, err)
	}
	return presenter.Success(c, http.StatusOK, fiber.Map{"document": rec})
}

// Update replaces the document content.
// @Summary Update a CV document
// @Tags    documents
// @Accept  json
// @Produce json
// @Param   id   path string      true "Document id"
// @Param   body body cv.Document true "New content"
// @Security BearerAuth
// @Success 200 {object} map[string]any
// @Failure 404 {object} presenter.ErrorResponse
// @Router  /documents/{id} [put]
func (h *DocumentHandler) Update(c *fiber.Ctx) error {
	userID, _, err := identity(c)
	if err != nil {
		return presenter.Error(c, http.StatusUnauthorized, err.Error())
	}
	id, err := h.documentID(c)
	if err != nil {
		return presenter.Error(c, http.StatusBadRequest, "invalid document id")
	}
	var doc cv.Document
	if err := c.BodyParser(&doc); err != nil {
		return presenter.Error(c, http.StatusBadRequest, "invalid document body")
	}
	rec, err := h.svc.Update(c.Context(), userID, id, doc)
	if err != nil {
		return failure(c, err)
	}
	return presenter.Success(c, http.StatusOK, fiber.Map{"document": rec})
}

// Delete removes the document.
// @Summary Delete a CV document
// @Tags    documents
// @Produce json
// @Param   id path string true "Document id"
// @Security BearerAuth
// @Success 200 {object} map[string]any
// @Failure 404 {object} presenter.ErrorResponse
// @Router  /documents/{id} [delete]
func (h *DocumentHandler) Delete(c *fiber.Ctx) error {
	userID, _, err := identity(c)
	if err != nil {
		return presenter.Error(c, http.StatusUnauthorized, err.Error())
	}
	id, err := h.documentID(c)
	if err != nil {
		return presenter.Error(c, http.StatusBadRequest, "invalid document id")
	}
	if err := h.svc.Delete(c.Context(), userID, id); err != nil {
		return failure(c, err)
	}
	return presenter.Success(c, http.StatusOK, nil)
}

type variantRequest struct {
	ApplicationID string `json:"application_id"`
}

// CloneVariant derives a tailored copy of a document.
// @Summary Create a variant from a document
// @Tags    documents
// @Accept  json
// @Produce json
// @Param   id   path string         true  "Source document id"
// @Param   body body variantRequest false "Optional job application to link"
// @Security BearerAuth
// @Success 201 {object} map[string]any
// @Failure 409 {object} presenter.ErrorResponse "Application already has a variant"
// @Router  /documents/{id}/variants [post]
func (h *DocumentHandler) CloneVariant(c *fiber.Ctx) error {
	userID, _, err := identity(c)
	if err != nil {
		return presenter.Error(c, http.StatusUnauthorized, err.Error())
	}
	id, err := h.documentID(c)
	if err != nil {
		return presenter.Error(c, http.StatusBadRequest, "invalid document id")
	}
	var body variantRequest
	_ = c.BodyParser(&body)
	var appID *uuid.UUID
	if body.ApplicationID != "" {
		parsed, err := uuid.Parse(body.ApplicationID)
		if err != nil {
			return presenter.Error(c, http.StatusBadRequest, "invalid application_id")
		}
		appID = &parsed
	}
	rec, err := h.svc.CloneVariant(c.Context(), userID, id, appID)
	if err != nil {
		return failure(c, err)
	}
	return presenter.Success(c, http.StatusCreated, fiber.Map{"document": rec})
}

// LinkApplication links or unlinks the variant's job application.
// @Summary Link a variant to a job application
// @Tags    documents
// @Accept  json
// @Produce json
// @Param   id   path string         true "Variant id"
// @Param   body body variantRequest true "Application id; empty unlinks"
// @Security BearerAuth
// @Success 200 {object} map[string]any
// @Failure 409 {object} presenter.ErrorResponse "Application already has a variant"
// @Router  /documents/{id}/application [put]
func (h *DocumentHandler) LinkApplication(c *fiber.Ctx) error {
	userID, _, err := identity(c)
	if err != nil {
		return presenter.Error(c, http.StatusUnauthorized, err.Error())
	}
	id, err := h.documentID(c)
	if err != nil {
		return presenter.Error(c, http.StatusBadRequest, "invalid document id")
	}
	var body variantRequest
	if err := c.BodyParser(&body); err != nil {
		return presenter.Error(c, http.StatusBadRequest, "invalid body")
	}
	var appID *uuid.UUID
	if body.ApplicationID != "" {
		parsed, err := uuid.Parse(body.ApplicationID)
		if err != nil {
			return presenter.Error(c, http.StatusBadRequest, "invalid application_id")
		}
		appID = &parsed
	}
	if err := h.svc.LinkApplication(c.Context(), userID, id, appID); err != nil {
		return failure(c, err)
	}
	return presenter.Success(c, http.StatusOK, nil)
}

// ListAssessments returns past AI assessments of a document, newest first.
// @Summary List assessments of a document
// @Tags    documents
// @Produce json
// @Param   id     path  string true  "Document id"
// @Param   limit  query int    false "Page size (max 100)"
// @Param   offset query int    false "Page offset"
// @Security BearerAuth
// @Success 200 {object} map[string]any
// @Router  /documents/{id}/assessments [get]
func (h *DocumentHandler) ListAssessments(c *fiber.Ctx) error {
	userID, _, err := identity(c)
	if err != nil {
		return presenter.Error(c, http.StatusUnauthorized, err.Error())
	}
	id, err := h.documentID(c)
	if err != nil {
		return presenter.Error(c, http.StatusBadRequest, "invalid document id")
	}
	limit, offset := parseLimitOffset(c)
	recs, err := h.assessments.ListByDocument(c.Context(), userID, id, limit, offset)
	if err != nil {
		return failure(c, err)
	}
	if recs == nil {
		recs = []aitask.Assessment{}
	}
	return presenter.Success(c, http.StatusOK, fiber.Map{"assessments": recs})
}
