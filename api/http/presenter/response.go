package presenter

import "github.com/gofiber/fiber/v2"

// ErrorResponse is the uniform failure body: success is always false and the
// error string carries a human-readable message.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func JSON(c *fiber.Ctx, status int, v any) error {
	return c.Status(status).JSON(v)
}

// Success renders payload with the success flag every endpoint carries.
func Success(c *fiber.Ctx, status int, payload fiber.Map) error {
	if payload == nil {
		payload = fiber.Map{}
	}
	payload["success"] = true
	return JSON(c, status, payload)
}

func Error(c *fiber.Ctx, status int, message string) error {
	return JSON(c, status, ErrorResponse{Error: message})
}
