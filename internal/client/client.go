package client

import (
	"context"
	"errors"
	"fmt"
)

// JobState is the normalized state of a provider job
type JobState string

const (
	JobPending JobState = "pending"
	JobDone    JobState = "done"
	JobFailed  JobState = "failed"
)

// Face is a detected face box as reported by the provider
type Face struct {
	Landmarks string  `json:"landmarks"`
	Left      float64 `json:"left"`
}

// JobResult is the provider-independent outcome of one status check
type JobResult struct {
	State    JobState
	ImageURL string
	Reason   string
	Faces    []Face
}

func pending(reason string) *JobResult { return &JobResult{State: JobPending, Reason: reason} }
func done(imageURL string) *JobResult  { return &JobResult{State: JobDone, ImageURL: imageURL} }
func failed(reason string) *JobResult  { return &JobResult{State: JobFailed, Reason: reason} }

var (
	ErrNoJobID       = errors.New("no job id in provider response")
	ErrNotConfigured = errors.New("provider not configured")
)

// StatusError is returned for non-2xx provider responses
type StatusError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s API error (status %d): %s", e.Provider, e.StatusCode, e.Body)
}

// GenerationRequest describes a text-to-image job
type GenerationRequest struct {
	Prompt         string
	NegativePrompt string
	// ReferenceImage is sent as conditioning input when the provider supports it
	ReferenceImage string
}

// ImageGenerator submits and tracks text-to-image jobs on an async queue
type ImageGenerator interface {
	SubmitGeneration(ctx context.Context, req *GenerationRequest) (string, error)
	GenerationStatus(ctx context.Context, jobID string) (*JobResult, error)
	IsConfigured() bool
}

// SwapRequest puts SourceImage's face onto the image at TargetImageURL
type SwapRequest struct {
	SourceImage    string
	TargetImageURL string
}

// FaceSwapper submits and tracks single face-swap jobs
type FaceSwapper interface {
	Name() string
	SubmitSwap(ctx context.Context, req *SwapRequest) (string, error)
	SwapStatus(ctx context.Context, jobID string) (*JobResult, error)
	IsConfigured() bool
}

// MultiSwapRequest swaps both photos in one job. LeftPhoto lands on the
// leftmost detected face.
type MultiSwapRequest struct {
	TargetImageURL string
	LeftPhoto      string
	RightPhoto     string
	Faces          []Face
}

// MultiFaceSwapper is implemented by providers that detect faces first and
// then swap several faces in one job. Multi-swap jobs report through SwapStatus.
type MultiFaceSwapper interface {
	SubmitDetect(ctx context.Context, targetImageURL string) (string, error)
	DetectStatus(ctx context.Context, jobID string) (*JobResult, error)
	SubmitMultiSwap(ctx context.Context, req *MultiSwapRequest) (string, error)
}
