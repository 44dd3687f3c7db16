package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/markrc139/christmas-poster-generator/internal/config"
)

// SegmindClient implements FaceSwapper using a Segmind workflow
type SegmindClient struct {
	rest       *restClient
	workflowID string
	apiKey     string
}

type segmindSwapPayload struct {
	SourceFaceImage  string `json:"source_face_image"`
	TargetFacesImage string `json:"target_faces_image"`
}

// NewSegmindClient creates a new Segmind workflow client
func NewSegmindClient(cfg *config.SegmindConfig) *SegmindClient {
	apiKey := cfg.APIKey
	return &SegmindClient{
		rest: newRestClient("Segmind", cfg.BaseURL, 60*time.Second, func(req *http.Request) {
			req.Header.Set("x-api-key", apiKey)
		}),
		workflowID: cfg.WorkflowID,
		apiKey:     apiKey,
	}
}

func (c *SegmindClient) Name() string { return config.ProviderSegmind }

// SubmitSwap queues a face swap. The source photo is passed through as given.
func (c *SegmindClient) SubmitSwap(ctx context.Context, req *SwapRequest) (string, error) {
	if !c.IsConfigured() {
		return "", ErrNotConfigured
	}

	resp, err := c.rest.postJSON(ctx, "/workflows/"+c.workflowID, segmindSwapPayload{
		SourceFaceImage:  req.SourceImage,
		TargetFacesImage: req.TargetImageURL,
	})
	if err != nil {
		return "", err
	}
	if !resp.ok() {
		return "", resp.statusError("segmind")
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

// SwapStatus checks a workflow request
func (c *SegmindClient) SwapStatus(ctx context.Context, jobID string) (*JobResult, error) {
	resp, err := c.rest.get(ctx, "/workflows/request/"+url.PathEscape(jobID))
	if err != nil {
		return nil, err
	}

	// A request the workflow no longer knows about will never finish
	if resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusNotFound {
		return failed(fmt.Sprintf("request not found (status %d)", resp.StatusCode)), nil
	}
	if !resp.ok() {
		return pending(fmt.Sprintf("provider status %d", resp.StatusCode)), nil
	}

	doc, err := resp.decode()
	if err != nil {
		return nil, err
	}

	switch status := statusField(doc); status {
	case "COMPLETED":
		imageURL := extractOutputURL(doc["output"])
		if imageURL == "" {
			return failed("completed without an image"), nil
		}
		return done(imageURL), nil
	case "FAILED", "ERROR":
		return failed(status), nil
	default:
		return pending(status), nil
	}
}

// IsConfigured returns true if the client has valid configuration
func (c *SegmindClient) IsConfigured() bool {
	return c.apiKey != "" && c.workflowID != ""
}
