package handler

import (
	"errors"
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/markrc139/christmas-poster-generator/internal/client"
	"github.com/markrc139/christmas-poster-generator/internal/model"
	"github.com/markrc139/christmas-poster-generator/internal/service"
	"github.com/markrc139/christmas-poster-generator/pkg/response"
)

type PosterHandler struct {
	service   *service.PosterService
	validator *validator.Validate
}

func NewPosterHandler(svc *service.PosterService, v *validator.Validate) *PosterHandler {
	return &PosterHandler{
		service:   svc,
		validator: v,
	}
}

// Generate handles POST /api/generate-poster
// @Summary      Start poster generation
// @Description  Build the poster prompt and queue a text-to-image job
// @Tags         Poster
// @Accept       json
// @Produce      json
// @Param        request body model.GeneratePosterRequest true "Poster request"
// @Success      200 {object} model.GeneratePosterResponse
// @Failure      400 {object} response.ErrorResponse
// @Failure      405 {object} response.ErrorResponse
// @Failure      500 {object} response.ErrorResponse
// @Router       /api/generate-poster [post]
func (h *PosterHandler) Generate(c *fiber.Ctx) error {
	var req model.GeneratePosterRequest
	if err := c.BodyParser(&req); err != nil {
		return response.ValidationError(c, "Invalid request body", nil)
	}

	if err := h.validator.Struct(&req); err != nil {
		return response.ValidationError(c, "Missing required fields", formatValidationErrors(err))
	}

	result, err := h.service.Generate(c.Context(), &req)
	if err != nil {
		log.Printf("Error in generate-poster: %v", err)
		return generateError(c, err)
	}

	return response.OK(c, result)
}

func generateError(c *fiber.Ctx, err error) error {
	var statusErr *client.StatusError
	switch {
	case errors.Is(err, service.ErrPhotoRequired):
		return response.ValidationError(c, "At least one photo is required", nil)
	case errors.Is(err, service.ErrInvalidPhoto):
		return response.ValidationError(c, "Invalid photo format", nil)
	case errors.Is(err, client.ErrNoJobID):
		return response.ServiceError(c, "No request ID from Fal.ai", nil)
	case errors.As(err, &statusErr):
		return response.ServiceError(c, "Fal.ai error", statusErr.Body)
	case errors.Is(err, service.ErrGeneratorNotConfigured):
		return response.ServiceError(c, "Failed to start generation", service.ErrGeneratorNotConfigured.Error())
	default:
		return response.ServiceError(c, "Failed to start generation", err.Error())
	}
}

// formatValidationErrors formats validator errors for response
func formatValidationErrors(err error) interface{} {
	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		errors := make(map[string]string)
		for _, e := range validationErrors {
			errors[e.Field()] = e.Tag()
		}
		return errors
	}
	return nil
}
