package handler

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/markrc139/christmas-poster-generator/internal/model"
	"github.com/markrc139/christmas-poster-generator/internal/service"
	"github.com/markrc139/christmas-poster-generator/pkg/response"
)

type StatusHandler struct {
	service *service.StatusService
}

func NewStatusHandler(svc *service.StatusService) *StatusHandler {
	return &StatusHandler{service: svc}
}

// Check handles POST /api/check-status
// @Summary      Poll a poster job
// @Description  Check the job for the given step and chain the next face swap when it finishes
// @Tags         Poster
// @Accept       json
// @Produce      json
// @Param        request body model.CheckStatusRequest true "Status request"
// @Success      200 {object} model.PollResponse
// @Failure      400 {object} response.ErrorResponse
// @Failure      405 {object} response.ErrorResponse
// @Failure      500 {object} model.PollResponse
// @Router       /api/check-status [post]
func (h *StatusHandler) Check(c *fiber.Ctx) (retErr error) {
	var req model.CheckStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return response.ValidationError(c, "Invalid request body", nil)
	}

	// A panic anywhere in the poller must not break the caller's poll loop
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Error in check-status: %v", r)
			retErr = response.OK(c, service.CheckingStatus(echoStage(req.Step)))
		}
	}()

	result, err := h.service.Check(c.Context(), &req)
	switch {
	case errors.Is(err, service.ErrMissingRequestID):
		return response.ValidationError(c, "Missing requestId", nil)
	case errors.Is(err, service.ErrInvalidStep):
		return response.ValidationError(c, "Invalid step parameter", nil)
	case errors.Is(err, service.ErrMissingGeneratedImage):
		return response.ValidationError(c, "Missing generatedImageUrl", nil)
	case errors.Is(err, service.ErrConfiguration):
		return response.PollFailed(c, fiber.StatusInternalServerError, "Configuration error")
	case err != nil:
		log.Printf("Error in check-status: %v", err)
		return response.OK(c, service.CheckingStatus(echoStage(req.Step)))
	}

	return response.OK(c, result)
}

// echoStage returns the caller's stage if it is valid, otherwise no stage
func echoStage(step string) model.Stage {
	stage, err := model.ParseStage(step)
	if err != nil {
		return ""
	}
	return stage
}
