package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/markrc139/christmas-poster-generator/pkg/response"
)

const (
	allowOrigin  = "*"
	allowMethods = "POST, OPTIONS"
	allowHeaders = "Content-Type"
)

// CORS sets the cross-origin headers on every response and answers
// preflight requests with a bare 200.
func CORS() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Set(fiber.HeaderAccessControlAllowOrigin, allowOrigin)
		c.Set(fiber.HeaderAccessControlAllowMethods, allowMethods)
		c.Set(fiber.HeaderAccessControlAllowHeaders, allowHeaders)

		if c.Method() == fiber.MethodOptions {
			return c.SendStatus(fiber.StatusOK)
		}
		return c.Next()
	}
}

// MethodNotAllowed rejects anything but POST on an API route
func MethodNotAllowed() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Method() != fiber.MethodPost {
			return response.MethodNotAllowed(c)
		}
		return c.Next()
	}
}
