package client

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/markrc139/christmas-poster-generator/internal/config"
)

// FalClient implements ImageGenerator for the fal.ai queue (FLUX Pro)
type FalClient struct {
	rest              *restClient
	model             string
	apiKey            string
	useReferenceImage bool
}

// falGenerationPayload is the FLUX Pro request body
type falGenerationPayload struct {
	Prompt            string  `json:"prompt"`
	NegativePrompt    string  `json:"negative_prompt,omitempty"`
	NumInferenceSteps int     `json:"num_inference_steps"`
	GuidanceScale     float64 `json:"guidance_scale"`
	NumImages         int     `json:"num_images"`
	OutputFormat      string  `json:"output_format"`
	AspectRatio       string  `json:"aspect_ratio"`
	SafetyTolerance   string  `json:"safety_tolerance"`
	ImageURL          string  `json:"image_url,omitempty"`
}

// NewFalClient creates a new fal.ai queue client
func NewFalClient(cfg *config.FalConfig) *FalClient {
	apiKey := cfg.APIKey
	return &FalClient{
		rest: newRestClient("Fal", cfg.BaseURL, 60*time.Second, func(req *http.Request) {
			req.Header.Set("Authorization", "Key "+apiKey)
		}),
		model:             cfg.Model,
		apiKey:            apiKey,
		useReferenceImage: cfg.UseReferenceImage,
	}
}

// SubmitGeneration queues a text-to-image job and returns its request id
func (c *FalClient) SubmitGeneration(ctx context.Context, req *GenerationRequest) (string, error) {
	if !c.IsConfigured() {
		return "", ErrNotConfigured
	}

	payload := falGenerationPayload{
		Prompt:            req.Prompt,
		NegativePrompt:    req.NegativePrompt,
		NumInferenceSteps: 30,
		GuidanceScale:     4.0,
		NumImages:         1,
		OutputFormat:      "png",
		AspectRatio:       "2:3",
		SafetyTolerance:   "2",
	}
	if c.useReferenceImage {
		payload.ImageURL = asDataURI(req.ReferenceImage)
	}

	resp, err := c.rest.postJSON(ctx, "/"+c.model, payload)
	if err != nil {
		return "", err
	}
	if !resp.ok() {
		return "", resp.statusError("fal")
	}

	doc, err := resp.decode()
	if err != nil {
		return "", err
	}

	requestID := discoverJobID(doc)
	if requestID == "" {
		return "", ErrNoJobID
	}

	return requestID, nil
}

// GenerationStatus checks a queued job. Every non-2xx answer from the queue
// means the job is not finished yet.
func (c *FalClient) GenerationStatus(ctx context.Context, jobID string) (*JobResult, error) {
	endpoint := fmt.Sprintf("/%s/requests/%s", c.model, url.PathEscape(jobID))
	resp, err := c.rest.get(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return pending("queued"), nil
	case resp.StatusCode == http.StatusMethodNotAllowed:
		return pending("processing"), nil
	case !resp.ok():
		if bytes.Contains(resp.Body, []byte("still in progress")) || bytes.Contains(resp.Body, []byte("IN_PROGRESS")) {
			return pending("in progress"), nil
		}
		log.Printf("[Fal API] status check for %s returned %d, continuing to poll", jobID, resp.StatusCode)
		return pending(fmt.Sprintf("provider status %d", resp.StatusCode)), nil
	}

	doc, err := resp.decode()
	if err != nil {
		// An unreadable body from a 2xx is treated like an unknown status
		return pending("unreadable result"), nil
	}

	if imageURL := firstImageURL(doc, generationImageExtractors); imageURL != "" {
		return done(imageURL), nil
	}

	switch status := statusField(doc); status {
	case "IN_PROGRESS", "IN_QUEUE", "PENDING", "PROCESSING":
		return pending(status), nil
	case "FAILED", "ERROR":
		return failed(status), nil
	default:
		log.Printf("[Fal API] unknown status %q for %s, continuing to poll", status, jobID)
		return pending(status), nil
	}
}

// IsConfigured returns true if the client has valid configuration
func (c *FalClient) IsConfigured() bool {
	return c.apiKey != ""
}
