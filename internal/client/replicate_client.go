package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/markrc139/christmas-poster-generator/internal/config"
)

// ReplicateClient implements FaceSwapper using a Replicate face-swap model
type ReplicateClient struct {
	rest    *restClient
	version string
	apiKey  string
}

type replicatePredictionRequest struct {
	Version string             `json:"version"`
	Input   replicateSwapInput `json:"input"`
}

type replicateSwapInput struct {
	InputImage string `json:"input_image"`
	SwapImage  string `json:"swap_image"`
}

// NewReplicateClient creates a new Replicate predictions client
func NewReplicateClient(cfg *config.ReplicateConfig) *ReplicateClient {
	apiKey := cfg.APIKey
	return &ReplicateClient{
		rest: newRestClient("Replicate", cfg.BaseURL, 60*time.Second, func(req *http.Request) {
			req.Header.Set("Authorization", "Bearer "+apiKey)
		}),
		version: modelVersion(cfg.Version),
		apiKey:  apiKey,
	}
}

// modelVersion accepts "owner/model:hash" and returns the hash the API expects
func modelVersion(v string) string {
	if i := strings.LastIndex(v, ":"); i >= 0 {
		return v[i+1:]
	}
	return v
}

func (c *ReplicateClient) Name() string { return config.ProviderReplicate }

// SubmitSwap creates a prediction
func (c *ReplicateClient) SubmitSwap(ctx context.Context, req *SwapRequest) (string, error) {
	if !c.IsConfigured() {
		return "", ErrNotConfigured
	}

	resp, err := c.rest.postJSON(ctx, "/v1/predictions", replicatePredictionRequest{
		Version: c.version,
		Input: replicateSwapInput{
			InputImage: req.TargetImageURL,
			SwapImage:  asDataURI(req.SourceImage),
		},
	})
	if err != nil {
		return "", err
	}
	if !resp.ok() {
		return "", resp.statusError("replicate")
	}

	doc, err := resp.decode()
	if err != nil {
		return "", err
	}

	jobID := discoverJobID(doc)
	if jobID == "" {
		return "", ErrNoJobID
	}
	return jobID, nil
}

// SwapStatus reads a prediction
func (c *ReplicateClient) SwapStatus(ctx context.Context, jobID string) (*JobResult, error) {
	resp, err := c.rest.get(ctx, "/v1/predictions/"+url.PathEscape(jobID))
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusNotFound {
		return failed(fmt.Sprintf("prediction not found (status %d)", resp.StatusCode)), nil
	}
	if !resp.ok() {
		return pending(fmt.Sprintf("provider status %d", resp.StatusCode)), nil
	}

	doc, err := resp.decode()
	if err != nil {
		return nil, err
	}

	switch status := statusField(doc); status {
	case "SUCCEEDED":
		imageURL := extractOutputURL(doc["output"])
		if imageURL == "" {
			return failed("succeeded without an image"), nil
		}
		return done(imageURL), nil
	case "FAILED", "CANCELED":
		reason := status
		if msg, ok := doc["error"].(string); ok && msg != "" {
			reason = msg
		}
		return failed(reason), nil
	default:
		return pending(status), nil
	}
}

// IsConfigured returns true if the client has valid configuration
func (c *ReplicateClient) IsConfigured() bool {
	return c.apiKey != "" && c.version != ""
}

// asDataURI wraps raw base64 in a data URI. URLs and data URIs pass through.
func asDataURI(photo string) string {
	photo = strings.TrimSpace(photo)
	if photo == "" || looksLikeImage(photo) {
		return photo
	}
	return "data:image/jpeg;base64," + photo
}
