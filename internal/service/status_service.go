package service

import (
	"context"
	"errors"
	"log"

	"github.com/markrc139/christmas-poster-generator/internal/client"
	"github.com/markrc139/christmas-poster-generator/internal/model"
)

var (
	ErrMissingRequestID      = errors.New("missing requestId")
	ErrInvalidStep           = errors.New("invalid step parameter")
	ErrConfiguration         = errors.New("configuration error")
	ErrMissingGeneratedImage = errors.New("missing generatedImageUrl")
)

// User-facing progress messages
const (
	msgQueued           = "Generating your Christmas scene... 🎄"
	msgCreating         = "Creating your poster... ✨"
	msgGenerating       = "Generating scene... 🎬"
	msgPainting         = "Creating your poster... 🎨"
	msgProcessing       = "Processing your request..."
	msgChecking         = "Checking status..."
	msgAddingFirstFace  = "Adding first face to the poster... 🎭"
	msgSwappingFirst    = "Swapping first face... 🎭"
	msgAddingSecondFace = "Adding second face to the poster... 🎭"
	msgSwappingSecond   = "Swapping second face... 🎭"
	msgAddingFace       = "Adding your face to the poster... 🎭"
	msgSwappingFace     = "Swapping your face... 🎭"
	msgDetectingFaces   = "Finding the faces in your poster... 🔍"
	msgAddingBothFaces  = "Adding both faces to the poster... 🎭"
	msgSwappingFaces    = "Swapping faces... 🎭"
)

const (
	errGenerationFailed = "Poster generation failed. Please try again."
	errSwapFailed       = "Face swap failed. Please try again."
	errSecondSwapFailed = "Second face swap failed. Please try again."
	errDetectFailed     = "Face detection failed. Please try again."
)

// stageHandler polls one pipeline stage. Provider ambiguity is reported as a
// processing response; only sentinel errors are returned.
type stageHandler func(ctx context.Context, stage model.Stage, req *model.CheckStatusRequest) (*model.PollResponse, error)

// StatusService checks a job for its stage and chains the next stage when it finishes
type StatusService struct {
	generator client.ImageGenerator
	swapper   client.FaceSwapper
	handlers  map[model.Stage]stageHandler
}

// NewStatusService creates a status service. swapper may be nil.
func NewStatusService(generator client.ImageGenerator, swapper client.FaceSwapper) *StatusService {
	s := &StatusService{
		generator: generator,
		swapper:   swapper,
	}
	s.handlers = map[model.Stage]stageHandler{
		model.StageGeneration:    s.checkGeneration,
		model.StageFaceSwap:      s.checkFirstSwap,
		model.StageFaceSwap1:     s.checkFirstSwap,
		model.StageFaceSwap2:     s.checkSecondSwap,
		model.StageFaceSwapOne:   s.checkSingleSwap,
		model.StageFaceDetect:    s.checkDetect,
		model.StageFaceSwapMulti: s.checkMultiSwap,
	}
	return s
}

// Check runs one poll of the pipeline
func (s *StatusService) Check(ctx context.Context, req *model.CheckStatusRequest) (*model.PollResponse, error) {
	if req.RequestID == "" {
		return nil, ErrMissingRequestID
	}

	stage, err := model.ParseStage(req.Step)
	if err != nil {
		return nil, ErrInvalidStep
	}
	handler, ok := s.handlers[stage]
	if !ok {
		return nil, ErrInvalidStep
	}

	log.Printf("Checking status - Step: %s ID: %s", stage, req.RequestID)
	return handler(ctx, stage, req)
}

// CheckingStatus is the response used when a poll could not be evaluated
func CheckingStatus(stage model.Stage) *model.PollResponse {
	return model.Processing(stage, msgChecking)
}

func (s *StatusService) swapperReady() bool {
	return s.swapper != nil && s.swapper.IsConfigured()
}

func (s *StatusService) checkGeneration(ctx context.Context, stage model.Stage, req *model.CheckStatusRequest) (*model.PollResponse, error) {
	if s.generator == nil || !s.generator.IsConfigured() {
		log.Printf("Generation status requested but FAL_KEY is not configured")
		return nil, ErrConfiguration
	}

	result, err := s.generator.GenerationStatus(ctx, req.RequestID)
	if err != nil {
		log.Printf("Generation status check error: %v", err)
		return model.Processing(stage, msgProcessing), nil
	}

	switch result.State {
	case client.JobFailed:
		log.Printf("Generation failed with status: %s", result.Reason)
		return model.Failed(errGenerationFailed), nil
	case client.JobPending:
		return model.Processing(stage, generationMessage(result.Reason)), nil
	}

	log.Printf("Scene generated successfully: %s", result.ImageURL)
	return s.startFaceSwaps(ctx, req, result.ImageURL), nil
}

// generationMessage picks a progress message for a pending generation reason
func generationMessage(reason string) string {
	switch reason {
	case "queued":
		return msgQueued
	case "processing":
		return msgCreating
	case "in progress":
		return msgGenerating
	case "IN_PROGRESS", "IN_QUEUE", "PENDING", "PROCESSING":
		return msgPainting
	default:
		return msgProcessing
	}
}

// startFaceSwaps chains the first face-swap stage after generation. Any
// failure to start falls back to the generated image.
func (s *StatusService) startFaceSwaps(ctx context.Context, req *model.CheckStatusRequest, generatedURL string) *model.PollResponse {
	if req.Photo1 == "" && req.Photo2 == "" {
		log.Printf("No face swap needed, returning generated image")
		return model.Completed(generatedURL)
	}
	if !s.swapperReady() {
		log.Printf("Face swap provider not configured, returning generated image")
		return model.Completed(generatedURL)
	}

	if multi, ok := s.swapper.(client.MultiFaceSwapper); ok && req.Photo1 != "" && req.Photo2 != "" {
		jobID, err := multi.SubmitDetect(ctx, generatedURL)
		if err != nil {
			log.Printf("Face detection failed to start: %v", err)
			return model.Completed(generatedURL)
		}
		resp := model.Processing(model.StageFaceDetect, msgDetectingFaces)
		resp.SwapRequestID = jobID
		resp.DetectJobID = jobID
		resp.GeneratedImageURL = generatedURL
		return resp
	}

	photo := firstPhoto(req)
	if _, ok := s.swapper.(client.MultiFaceSwapper); ok {
		return s.submitSwap(ctx, model.StageFaceSwapOne, msgAddingFace, photo, generatedURL, generatedURL)
	}
	return s.submitSwap(ctx, model.StageFaceSwap1, msgAddingFirstFace, photo, generatedURL, generatedURL)
}

// submitSwap chains a single face swap. fallbackURL is returned as the
// completed image if the submission fails.
func (s *StatusService) submitSwap(ctx context.Context, next model.Stage, message, photo, targetURL, fallbackURL string) *model.PollResponse {
	jobID, err := s.swapper.SubmitSwap(ctx, &client.SwapRequest{
		SourceImage:    photo,
		TargetImageURL: targetURL,
	})
	if err != nil {
		log.Printf("%s face swap failed to start for %s: %v", s.swapper.Name(), next, err)
		return model.Completed(fallbackURL)
	}

	log.Printf("%s face swap queued for %s: %s", s.swapper.Name(), next, jobID)
	resp := model.Processing(next, message)
	resp.SwapRequestID = jobID
	return resp
}

// pollSwap runs the shared part of every face-swap stage and returns the
// finished image URL, or a response to send as-is.
func (s *StatusService) pollSwap(ctx context.Context, stage model.Stage, req *model.CheckStatusRequest, waitMsg, failMsg string) (string, *model.PollResponse, error) {
	if !s.swapperReady() {
		log.Printf("Face swap stage %s polled without a configured provider", stage)
		return "", nil, ErrConfiguration
	}

	result, err := s.swapper.SwapStatus(ctx, req.RequestID)
	if err != nil {
		log.Printf("%s status check error: %v", stage, err)
		return "", model.Processing(stage, waitMsg), nil
	}

	switch result.State {
	case client.JobFailed:
		log.Printf("%s failed: %s", stage, result.Reason)
		return "", model.Failed(failMsg), nil
	case client.JobPending:
		return "", model.Processing(stage, waitMsg), nil
	}

	log.Printf("%s complete: %s", stage, result.ImageURL)
	return result.ImageURL, nil, nil
}

func (s *StatusService) checkFirstSwap(ctx context.Context, stage model.Stage, req *model.CheckStatusRequest) (*model.PollResponse, error) {
	imageURL, resp, err := s.pollSwap(ctx, stage, req, msgSwappingFirst, errSwapFailed)
	if err != nil || resp != nil {
		return resp, err
	}

	// The first swap used photo1, so a second swap is pending only when both were given
	if req.Photo1 == "" || req.Photo2 == "" {
		return model.Completed(imageURL), nil
	}
	return s.submitSwap(ctx, model.StageFaceSwap2, msgAddingSecondFace, req.Photo2, imageURL, imageURL), nil
}

func (s *StatusService) checkSecondSwap(ctx context.Context, stage model.Stage, req *model.CheckStatusRequest) (*model.PollResponse, error) {
	imageURL, resp, err := s.pollSwap(ctx, stage, req, msgSwappingSecond, errSecondSwapFailed)
	if err != nil || resp != nil {
		return resp, err
	}
	return model.Completed(imageURL), nil
}

func (s *StatusService) checkSingleSwap(ctx context.Context, stage model.Stage, req *model.CheckStatusRequest) (*model.PollResponse, error) {
	imageURL, resp, err := s.pollSwap(ctx, stage, req, msgSwappingFace, errSwapFailed)
	if err != nil || resp != nil {
		return resp, err
	}
	return model.Completed(imageURL), nil
}

func (s *StatusService) multiSwapper(stage model.Stage) (client.MultiFaceSwapper, error) {
	if !s.swapperReady() {
		log.Printf("Face swap stage %s polled without a configured provider", stage)
		return nil, ErrConfiguration
	}
	multi, ok := s.swapper.(client.MultiFaceSwapper)
	if !ok {
		log.Printf("Face swap provider %s cannot serve stage %s", s.swapper.Name(), stage)
		return nil, ErrConfiguration
	}
	return multi, nil
}

// detectProcessing keeps the round-tripped detect state on the response
func detectProcessing(stage model.Stage, message string, req *model.CheckStatusRequest) *model.PollResponse {
	resp := model.Processing(stage, message)
	resp.DetectJobID = req.DetectJobID
	resp.GeneratedImageURL = req.GeneratedImageURL
	return resp
}

func (s *StatusService) checkDetect(ctx context.Context, stage model.Stage, req *model.CheckStatusRequest) (*model.PollResponse, error) {
	multi, err := s.multiSwapper(stage)
	if err != nil {
		return nil, err
	}
	if req.GeneratedImageURL == "" {
		return nil, ErrMissingGeneratedImage
	}

	result, err := multi.DetectStatus(ctx, req.RequestID)
	if err != nil {
		log.Printf("Face detection status check error: %v", err)
		return detectProcessing(stage, msgDetectingFaces, req), nil
	}

	switch result.State {
	case client.JobFailed:
		log.Printf("Face detection failed: %s", result.Reason)
		return model.Failed(errDetectFailed), nil
	case client.JobPending:
		return detectProcessing(stage, msgDetectingFaces, req), nil
	}

	faces := client.SortFacesLeftToRight(result.Faces)
	log.Printf("Detected %d face(s)", len(faces))

	switch {
	case len(faces) == 0:
		log.Printf("No faces detected, returning generated image")
		return model.Completed(req.GeneratedImageURL), nil
	case len(faces) == 1 || req.Photo1 == "" || req.Photo2 == "":
		return s.submitSwap(ctx, model.StageFaceSwapOne, msgAddingFace, firstPhoto(req), req.GeneratedImageURL, req.GeneratedImageURL), nil
	}

	jobID, err := multi.SubmitMultiSwap(ctx, &client.MultiSwapRequest{
		TargetImageURL: req.GeneratedImageURL,
		LeftPhoto:      req.Photo1,
		RightPhoto:     req.Photo2,
		Faces:          faces[:2],
	})
	if err != nil {
		log.Printf("Multi face swap failed to start: %v", err)
		return model.Completed(req.GeneratedImageURL), nil
	}

	detectJobID := req.DetectJobID
	if detectJobID == "" {
		detectJobID = req.RequestID
	}
	resp := model.Processing(model.StageFaceSwapMulti, msgAddingBothFaces)
	resp.SwapRequestID = jobID
	resp.DetectJobID = detectJobID
	resp.GeneratedImageURL = req.GeneratedImageURL
	return resp, nil
}

func (s *StatusService) checkMultiSwap(ctx context.Context, stage model.Stage, req *model.CheckStatusRequest) (*model.PollResponse, error) {
	if _, err := s.multiSwapper(stage); err != nil {
		return nil, err
	}

	imageURL, resp, err := s.pollSwap(ctx, stage, req, msgSwappingFaces, errSwapFailed)
	if err != nil {
		return nil, err
	}
	if resp != nil {
		if resp.Status == model.PollStatusProcessing {
			resp.DetectJobID = req.DetectJobID
			resp.GeneratedImageURL = req.GeneratedImageURL
		}
		return resp, nil
	}
	return model.Completed(imageURL), nil
}

func firstPhoto(req *model.CheckStatusRequest) string {
	if req.Photo1 != "" {
		return req.Photo1
	}
	return req.Photo2
}
