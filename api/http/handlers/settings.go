package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/pavelk2v/cvforge/api/http/presenter"
	"github.com/pavelk2v/cvforge/pkg/aisettings"
	"github.com/pavelk2v/cvforge/pkg/credentials"
	"github.com/pavelk2v/cvforge/pkg/llm"
)

// SettingsHandler manages per-scope AI settings and provider credentials.
// Credentials go in and are deleted; they never come back out - responses
// only ever say whether one is on file.
type SettingsHandler struct {
	settings aisettings.UseCase
	creds    *credentials.Store
}

func NewSettingsHandler(settings aisettings.UseCase, creds *credentials.Store) *SettingsHandler {
	return &SettingsHandler{settings: settings, creds: creds}
}

type settingsRequest struct {
	Enabled   bool   `json:"enabled"`
	Provider  string `json:"provider"`
	Model     string `json:"model"`
	Endpoint  string `json:"endpoint"`
	ModelType string `json:"modelType"`
}

type credentialRequest struct {
	APIKey string `json:"api_key"`
}

func (h *SettingsHandler) orgScope(c *fiber.Ctx) (credentials.Scope, error) {
	_, orgID, err := identity(c)
	if err != nil {
		return credentials.Scope{}, err
	}
	if orgID == uuid.Nil {
		return credentials.Scope{}, fiber.NewError(http.StatusForbidden, "no organisation in token")
	}
	return credentials.OrgScope(orgID), nil
}

func (h *SettingsHandler) getSettings(c *fiber.Ctx, scope credentials.Scope) error {
	rec, err := h.settings.Get(c.Context(), scope)
	if err != nil {
		return failure(c, err)
	}
	return presenter.Success(c, http.StatusOK, fiber.Map{
		"settings":      rec,
		"hasCredential": aisettings.HasCredential(c.Context(), h.creds, scope, rec.Provider),
	})
}

func (h *SettingsHandler) putSettings(c *fiber.Ctx, scope credentials.Scope) error {
	var body settingsRequest
	if err := c.BodyParser(&body); err != nil {
		return presenter.Error(c, http.StatusBadRequest, "invalid settings body")
	}
	rec, err := h.settings.Put(c.Context(), aisettings.Record{
		Scope:     scope,
		Enabled:   body.Enabled,
		Provider:  llm.Provider(body.Provider),
		Model:     body.Model,
		Endpoint:  body.Endpoint,
		ModelType: body.ModelType,
	})
	if err != nil {
		return presenter.Error(c, http.StatusBadRequest, err.Error())
	}
	return presenter.Success(c, http.StatusOK, fiber.Map{
		"settings":      rec,
		"hasCredential": aisettings.HasCredential(c.Context(), h.creds, scope, rec.Provider),
	})
}

func (h *SettingsHandler) putCredential(c *fiber.Ctx, scope credentials.Scope) error {
	provider, err := llm.ParseProvider(c.Params("provider"))
	if err != nil {
		return presenter.Error(c, http.StatusBadRequest, err.Error())
	}
	var body credentialRequest
	if err := c.BodyParser(&body); err != nil || body.APIKey == "" {
		return presenter.Error(c, http.StatusBadRequest, "api_key is required")
	}
	if err := h.creds.Put(c.Context(), scope, provider, body.APIKey); err != nil {
		return failure(c, err)
	}
	return presenter.Success(c, http.StatusOK, fiber.Map{"provider": provider})
}

func (h *SettingsHandler) deleteCredential(c *fiber.Ctx, scope credentials.Scope) error {
	provider, err := llm.ParseProvider(c.Params("provider"))
	if err != nil {
		return presenter.Error(c, http.StatusBadRequest, err.Error())
	}
	if err := h.creds.Delete(c.Context(), scope, provider); err != nil {
		return failure(c, err)
	}
	return presenter.Success(c, http.StatusOK, nil)
}

// GetUser returns the caller's AI settings.
// @Summary Get user AI settings
// @Tags    ai-settings
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]any
// @Router  /ai/settings [get]
func (h *SettingsHandler) GetUser(c *fiber.Ctx) error {
	userID, _, err := identity(c)
	if err != nil {
		return presenter.Error(c, http.StatusUnauthorized, err.Error())
	}
	return h.getSettings(c, credentials.UserScope(userID))
}

// PutUser updates the caller's AI settings.
// @Summary Update user AI settings
// @Tags    ai-settings
// @Accept  json
// @Produce json
// @Param   body body settingsRequest true "Settings"
// @Security BearerAuth
// @Success 200 {object} map[string]any
// @Failure 400 {object} presenter.ErrorResponse
// @Router  /ai/settings [put]
func (h *SettingsHandler) PutUser(c *fiber.Ctx) error {
	userID, _, err := identity(c)
	if err != nil {
		return presenter.Error(c, http.StatusUnauthorized, err.Error())
	}
	return h.putSettings(c, credentials.UserScope(userID))
}

// PutUserCredential stores an encrypted provider key for the caller.
// @Summary Store a user provider credential
// @Tags    ai-settings
// @Accept  json
// @Produce json
// @Param   provider path string            true "Provider name"
// @Param   body     body credentialRequest true "API key"
// @Security BearerAuth
// @Success 200 {object} map[string]any
// @Failure 400 {object} presenter.ErrorResponse "Malformed key shape"
// @Router  /ai/credentials/{provider} [put]
func (h *SettingsHandler) PutUserCredential(c *fiber.Ctx) error {
	userID, _, err := identity(c)
	if err != nil {
		return presenter.Error(c, http.StatusUnauthorized, err.Error())
	}
	return h.putCredential(c, credentials.UserScope(userID))
}

// DeleteUserCredential removes a stored provider key.
// @Summary Delete a user provider credential
// @Tags    ai-settings
// @Produce json
// @Param   provider path string true "Provider name"
// @Security BearerAuth
// @Success 200 {object} map[string]any
// @Router  /ai/credentials/{provider} [delete]
func (h *SettingsHandler) DeleteUserCredential(c *fiber.Ctx) error {
	userID, _, err := identity(c)
	if err != nil {
		return presenter.Error(c, http.StatusUnauthorized, err.Error())
	}
	return h.deleteCredential(c, credentials.UserScope(userID))
}

// GetOrg returns the caller's organisation AI settings.
// @Summary Get organisation AI settings
// @Tags    ai-settings
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]any
// @Failure 403 {object} presenter.ErrorResponse "Token carries no organisation"
// @Router  /org/ai/settings [get]
func (h *SettingsHandler) GetOrg(c *fiber.Ctx) error {
	scope, err := h.orgScope(c)
	if err != nil {
		return scopeError(c, err)
	}
	return h.getSettings(c, scope)
}

// PutOrg updates the caller's organisation AI settings.
// @Summary Update organisation AI settings
// @Tags    ai-settings
// @Accept  json
// @Produce json
// @Param   body body settingsRequest true "Settings"
// @Security BearerAuth
// @Success 200 {object} map[string]any
// @Failure 403 {object} presenter.ErrorResponse "Token carries no organisation"
// @Router  /org/ai/settings [put]
func (h *SettingsHandler) PutOrg(c *fiber.Ctx) error {
	scope, err := h.orgScope(c)
	if err != nil {
		return scopeError(c, err)
	}
	return h.putSettings(c, scope)
}

// PutOrgCredential stores an encrypted provider key for the organisation.
// @Summary Store an organisation provider credential
// @Tags    ai-settings
// @Accept  json
// @Produce json
// @Param   provider path string            true "Provider name"
// @Param   body     body credentialRequest true "API key"
// @Security BearerAuth
// @Success 200 {object} map[string]any
// @Router  /org/ai/credentials/{provider} [put]
func (h *SettingsHandler) PutOrgCredential(c *fiber.Ctx) error {
	scope, err := h.orgScope(c)
	if err != nil {
		return scopeError(c, err)
	}
	return h.putCredential(c, scope)
}

// DeleteOrgCredential removes a stored organisation provider key.
// @Summary Delete an organisation provider credential
// @Tags    ai-settings
// @Produce json
// @Param   provider path string true "Provider name"
// @Security BearerAuth
// @Success 200 {object} map[string]any
// @Router  /org/ai/credentials/{provider} [delete]
func (h *SettingsHandler) DeleteOrgCredential(c *fiber.Ctx) error {
	scope, err := h.orgScope(c)
	if err != nil {
		return scopeError(c, err)
	}
	return h.deleteCredential(c, scope)
}

func scopeError(c *fiber.Ctx, err error) error {
	if fe, ok := err.(*fiber.Error); ok {
		return presenter.Error(c, fe.Code, fe.Message)
	}
	return presenter.Error(c, http.StatusUnauthorized, err.Error())
}
