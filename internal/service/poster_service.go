package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/markrc139/christmas-poster-generator/internal/archive"
	"github.com/markrc139/christmas-poster-generator/internal/client"
	"github.com/markrc139/christmas-poster-generator/internal/model"
)

var (
	ErrPhotoRequired          = errors.New("at least one photo is required")
	ErrInvalidPhoto           = errors.New("photo is not a valid base64 image")
	ErrGeneratorNotConfigured = errors.New("FAL_KEY not configured")
)

// PosterService starts poster generation jobs
type PosterService struct {
	generator    client.ImageGenerator
	requirePhoto bool
}

// NewPosterService creates a new poster service
func NewPosterService(generator client.ImageGenerator, requirePhoto bool) *PosterService {
	return &PosterService{
		generator:    generator,
		requirePhoto: requirePhoto,
	}
}

// Generate builds the prompt and submits exactly one generation job
func (s *PosterService) Generate(ctx context.Context, req *model.GeneratePosterRequest) (*model.GeneratePosterResponse, error) {
	numPeople := req.NumPeople()
	if s.requirePhoto && numPeople == 0 {
		return nil, ErrPhotoRequired
	}
	for _, photo := range []string{req.Photo1, req.Photo2} {
		if photo != "" && !archive.IsValidImageBase64(photo) {
			return nil, ErrInvalidPhoto
		}
	}

	if s.generator == nil || !s.generator.IsConfigured() {
		return nil, ErrGeneratorNotConfigured
	}

	prompt := BuildPrompt(req)
	log.Printf("Generating poster: people=%d genre=%q", numPeople, prompt.Genre)

	reference := req.Photo1
	if reference == "" {
		reference = req.Photo2
	}

	requestID, err := s.generator.SubmitGeneration(ctx, &client.GenerationRequest{
		Prompt:         prompt.Text,
		NegativePrompt: prompt.Negative,
		ReferenceImage: reference,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start generation: %w", err)
	}

	log.Printf("Generation started, request ID: %s", requestID)

	return &model.GeneratePosterResponse{
		Success:   true,
		RequestID: requestID,
		Message:   "Poster generation started",
		NumPeople: numPeople,
	}, nil
}
