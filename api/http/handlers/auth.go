package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/pavelk2v/cvforge/api/http/presenter"
	"github.com/pavelk2v/cvforge/pkg/security/jwt"
)

// AuthHandler mints development tokens for standalone runs. In production the
// platform's auth service issues tokens with the same claims; this endpoint is
// registered only when DEV_TOKEN_ENDPOINT is set.
type AuthHandler struct {
	gen *jwt.Generator
}

func NewAuthHandler(gen *jwt.Generator) *AuthHandler { return &AuthHandler{gen: gen} }

type tokenRequest struct {
	UserID string `json:"user_id"`
	OrgID  string `json:"org_id"`
}

// Token issues a signed JWT for the given identity.
// @Summary Mint a development token
// @Tags    auth
// @Accept  json
// @Produce json
// @Param   body body tokenRequest false "Identity; a fresh user id is generated when omitted"
// @Success 200 {object} map[string]any
// @Failure 400 {object} presenter.ErrorResponse
// @Router  /auth/token [post]
func (h *AuthHandler) Token(c *fiber.Ctx) error {
	var body tokenRequest
	_ = c.BodyParser(&body)

	userID := uuid.New()
	if body.UserID != "" {
		id, err := uuid.Parse(body.UserID)
		if err != nil {
			return presenter.Error(c, http.StatusBadRequest, "invalid user_id")
		}
		userID = id
	}
	orgID := uuid.Nil
	if body.OrgID != "" {
		id, err := uuid.Parse(body.OrgID)
		if err != nil {
			return presenter.Error(c, http.StatusBadRequest, "invalid org_id")
		}
		orgID = id
	}

	token, err := h.gen.Generate(c.Context(), userID, orgID)
	if err != nil {
		return presenter.Error(c, http.StatusInternalServerError, "failed to sign token")
	}
	return presenter.Success(c, http.StatusOK, fiber.Map{
		"token":   token,
		"user_id": userID.String(),
	})
}
