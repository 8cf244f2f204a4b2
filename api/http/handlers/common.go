package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/pavelk2v/cvforge/api/http/presenter"
	"github.com/pavelk2v/cvforge/pkg/aitask"
	"github.com/pavelk2v/cvforge/pkg/cv"
	"github.com/pavelk2v/cvforge/pkg/llm"
)

// identity reads the authenticated user and optional organisation from the
// Locals set by the JWT middleware.
func identity(c *fiber.Ctx) (userID, orgID uuid.UUID, err error) {
	userStr, _ := c.Locals("userId").(string)
	userID, err = uuid.Parse(userStr)
	if err != nil {
		return uuid.Nil, uuid.Nil, errors.New("missing user identity")
	}
	if orgStr, ok := c.Locals("orgId").(string); ok {
		orgID, _ = uuid.Parse(orgStr)
	}
	return userID, orgID, nil
}

func parseLimitOffset(c *fiber.Ctx) (limit, offset int) {
	limit = 20
	offset = 0
	if v, err := strconv.Atoi(c.Query("limit")); err == nil && v > 0 && v <= 100 {
		limit = v
	}
	if v, err := strconv.Atoi(c.Query("offset")); err == nil && v >= 0 {
		offset = v
	}
	return limit, offset
}

// failure maps domain errors onto HTTP statuses. Provider-side failures use
// gateway statuses so the frontend can tell them apart from session problems.
func failure(c *fiber.Ctx, err error) error {
	var unknown *llm.UnknownError
	switch {
	case errors.Is(err, cv.ErrNotFound):
		return presenter.Error(c, http.StatusNotFound, err.Error())
	case errors.Is(err, cv.ErrApplicationTaken):
		return presenter.Error(c, http.StatusConflict, err.Error())
	case errors.Is(err, aitask.ErrValidation), errors.Is(err, llm.ErrAuthInvalid):
		return presenter.Error(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, aitask.ErrInvalidShape):
		return presenter.Error(c, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, llm.ErrRateLimited):
		return presenter.Error(c, http.StatusTooManyRequests, err.Error())
	case errors.Is(err, llm.ErrTimeout):
		return presenter.Error(c, http.StatusGatewayTimeout, err.Error())
	case errors.Is(err, llm.ErrAuthRejected), errors.Is(err, llm.ErrModelUnavailable):
		return presenter.Error(c, http.StatusBadGateway, err.Error())
	case errors.As(err, &unknown):
		return presenter.Error(c, http.StatusBadGateway, err.Error())
	default:
		return presenter.Error(c, http.StatusInternalServerError, err.Error())
	}
}
