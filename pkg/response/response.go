package response

import (
	"github.com/gofiber/fiber/v2"
	"github.com/markrc139/christmas-poster-generator/internal/model"
)

// ErrorResponse is the flat error body returned by every endpoint
type ErrorResponse struct {
	Error   string      `json:"error"`
	Details interface{} `json:"details,omitempty"`
}

func Error(c *fiber.Ctx, status int, message string, details interface{}) error {
	return c.Status(status).JSON(ErrorResponse{
		Error:   message,
		Details: details,
	})
}

func ValidationError(c *fiber.Ctx, message string, details interface{}) error {
	return Error(c, fiber.StatusBadRequest, message, details)
}

func MethodNotAllowed(c *fiber.Ctx) error {
	return Error(c, fiber.StatusMethodNotAllowed, "Method not allowed", nil)
}

func ServiceError(c *fiber.Ctx, message string, details interface{}) error {
	return Error(c, fiber.StatusInternalServerError, message, details)
}

// PollFailed reports a failed poll that the caller must not retry
func PollFailed(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(model.Failed(message))
}

func OK(c *fiber.Ctx, data interface{}) error {
	return c.JSON(data)
}
