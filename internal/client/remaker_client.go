package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/markrc139/christmas-poster-generator/internal/archive"
	"github.com/markrc139/christmas-poster-generator/internal/config"
)

// Remaker result codes
const (
	remakerSuccess    = 100000
	remakerQueued     = 300101
	remakerProcessing = 300102
	remakerNotFound   = 300103
	remakerJobFailed  = 300104
)

// RemakerClient implements FaceSwapper and MultiFaceSwapper
type RemakerClient struct {
	rest   *restClient
	apiKey string
}

// remakerEnvelope wraps every Remaker response
type remakerEnvelope struct {
	Code    int             `json:"code"`
	Message json.RawMessage `json:"message"`
	Result  json.RawMessage `json:"result"`
}

type remakerResult struct {
	JobID          string   `json:"job_id"`
	OutputImageURL []string `json:"output_image_url"`
	LandmarksStr   any      `json:"landmarks_str"`
}

// NewRemakerClient creates a new Remaker face-swap client
func NewRemakerClient(cfg *config.RemakerConfig) *RemakerClient {
	apiKey := cfg.APIKey
	return &RemakerClient{
		rest: newRestClient("Remaker", cfg.BaseURL, 90*time.Second, func(req *http.Request) {
			req.Header.Set("Authorization", apiKey)
			req.Header.Set("accept", "application/json")
		}),
		apiKey: apiKey,
	}
}

func (c *RemakerClient) Name() string { return config.ProviderRemaker }

// IsConfigured returns true if the client has valid configuration
func (c *RemakerClient) IsConfigured() bool {
	return c.apiKey != ""
}

// SubmitSwap swaps the single source face onto the generated image
func (c *RemakerClient) SubmitSwap(ctx context.Context, req *SwapRequest) (string, error) {
	if !c.IsConfigured() {
		return "", ErrNotConfigured
	}

	target, err := c.loadImage(ctx, req.TargetImageURL)
	if err != nil {
		return "", fmt.Errorf("target image: %w", err)
	}
	swap, err := archive.DecodeImage(req.SourceImage)
	if err != nil {
		return "", fmt.Errorf("swap image: %w", err)
	}

	return c.submit(ctx, "/faceswap/create-job", nil, []formFile{
		{field: "target_image", filename: "target.jpg", contentType: "image/jpeg", data: target},
		{field: "swap_image", filename: "swap.jpg", contentType: "image/jpeg", data: swap},
	})
}

// SwapStatus reports a single or multi swap job
func (c *RemakerClient) SwapStatus(ctx context.Context, jobID string) (*JobResult, error) {
	env, result, err := c.result(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if env.Code != remakerSuccess {
		return stateForCode(env), nil
	}
	if len(result.OutputImageURL) == 0 || result.OutputImageURL[0] == "" {
		return failed("job finished without an output image"), nil
	}
	return done(result.OutputImageURL[0]), nil
}

// SubmitDetect starts face detection on the generated image
func (c *RemakerClient) SubmitDetect(ctx context.Context, targetImageURL string) (string, error) {
	if !c.IsConfigured() {
		return "", ErrNotConfigured
	}

	target, err := c.loadImage(ctx, targetImageURL)
	if err != nil {
		return "", fmt.Errorf("target image: %w", err)
	}

	return c.submit(ctx, "/faceswap/detect", nil, []formFile{
		{field: "target_image", filename: "target.jpg", contentType: "image/jpeg", data: target},
	})
}

// DetectStatus reports detection. Faces in a done result are sorted left to right.
func (c *RemakerClient) DetectStatus(ctx context.Context, jobID string) (*JobResult, error) {
	env, result, err := c.result(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if env.Code != remakerSuccess {
		return stateForCode(env), nil
	}

	faces := parseFaces(result.LandmarksStr)
	return &JobResult{State: JobDone, Faces: faces}, nil
}

// SubmitMultiSwap swaps both photos in one job. LeftPhoto lands on the
// leftmost face.
func (c *RemakerClient) SubmitMultiSwap(ctx context.Context, req *MultiSwapRequest) (string, error) {
	if !c.IsConfigured() {
		return "", ErrNotConfigured
	}
	if len(req.Faces) == 0 {
		return "", fmt.Errorf("multi swap needs detected faces")
	}

	target, err := c.loadImage(ctx, req.TargetImageURL)
	if err != nil {
		return "", fmt.Errorf("target image: %w", err)
	}
	faceZip, err := archive.CreateFaceZip(req.LeftPhoto, req.RightPhoto)
	if err != nil {
		return "", err
	}

	faces := SortFacesLeftToRight(req.Faces)
	landmarks := make([]string, 0, len(faces))
	for _, f := range faces {
		landmarks = append(landmarks, f.Landmarks)
	}
	landmarksJSON, err := json.Marshal(landmarks)
	if err != nil {
		return "", fmt.Errorf("failed to marshal landmarks: %w", err)
	}

	return c.submit(ctx, "/faceswap/create-job-multi",
		map[string]string{"landmarks": string(landmarksJSON)},
		[]formFile{
			{field: "target_image", filename: "target.jpg", contentType: "image/jpeg", data: target},
			{field: "model_face", filename: "faces.zip", contentType: "application/zip", data: faceZip},
		})
}

func (c *RemakerClient) submit(ctx context.Context, endpoint string, fields map[string]string, files []formFile) (string, error) {
	resp, err := c.rest.postMultipart(ctx, endpoint, fields, files)
	if err != nil {
		return "", err
	}
	if !resp.ok() {
		return "", resp.statusError("remaker")
	}

	env, err := decodeEnvelope(resp.Body)
	if err != nil {
		return "", err
	}
	if env.Code != remakerSuccess {
		return "", fmt.Errorf("remaker rejected job (code %d): %s", env.Code, env.message())
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

func (c *RemakerClient) result(ctx context.Context, jobID string) (*remakerEnvelope, *remakerResult, error) {
	resp, err := c.rest.get(ctx, "/faceswap/get-result/"+url.PathEscape(jobID))
	if err != nil {
		return nil, nil, err
	}
	if !resp.ok() {
		if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusBadRequest {
			return &remakerEnvelope{Code: remakerNotFound}, &remakerResult{}, nil
		}
		return &remakerEnvelope{Code: remakerProcessing}, &remakerResult{}, nil
	}

	env, err := decodeEnvelope(resp.Body)
	if err != nil {
		return nil, nil, err
	}

	var result remakerResult
	if len(env.Result) > 0 && string(env.Result) != "null" {
		if err := json.Unmarshal(env.Result, &result); err != nil {
			return nil, nil, fmt.Errorf("failed to unmarshal remaker result: %w", err)
		}
	}
	return env, &result, nil
}

// loadImage returns the bytes behind an http(s) URL or a data URI
func (c *RemakerClient) loadImage(ctx context.Context, ref string) ([]byte, error) {
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return c.rest.fetchImage(ctx, ref)
	}
	return archive.DecodeImage(ref)
}

func decodeEnvelope(body []byte) (*remakerEnvelope, error) {
	var env remakerEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return &env, nil
}

// message reads the envelope message, which is either a string or {"en": "..."}
func (e *remakerEnvelope) message() string {
	if len(e.Message) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(e.Message, &s); err == nil {
		return s
	}
	var localized struct {
		En string `json:"en"`
	}
	if err := json.Unmarshal(e.Message, &localized); err == nil {
		return localized.En
	}
	return string(e.Message)
}

func stateForCode(env *remakerEnvelope) *JobResult {
	switch env.Code {
	case remakerQueued, remakerProcessing:
		return pending(env.message())
	case remakerNotFound, remakerJobFailed:
		reason := env.message()
		if reason == "" {
			reason = fmt.Sprintf("remaker code %d", env.Code)
		}
		return failed(reason)
	default:
		return pending(fmt.Sprintf("remaker code %d", env.Code))
	}
}

// parseFaces reads landmarks_str, a list of "x1,y1:x2,y2" boxes (or a single
// box), and returns the faces sorted left to right.
func parseFaces(v any) []Face {
	var boxes []string
	switch t := v.(type) {
	case string:
		if t != "" {
			boxes = []string{t}
		}
	case []any:
		for _, item := range t {
			if s, ok := item.(string); ok && s != "" {
				boxes = append(boxes, s)
			}
		}
	}

	faces := make([]Face, 0, len(boxes))
	for _, box := range boxes {
		faces = append(faces, Face{Landmarks: box, Left: leftEdge(box)})
	}
	return SortFacesLeftToRight(faces)
}

// leftEdge parses x1 from "x1,y1:x2,y2". Unparseable boxes sort first.
func leftEdge(box string) float64 {
	x, _, _ := strings.Cut(box, ",")
	left, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
	if err != nil {
		return 0
	}
	return left
}

// SortFacesLeftToRight returns a copy of faces ordered by their left edge
func SortFacesLeftToRight(faces []Face) []Face {
	sorted := make([]Face, len(faces))
	copy(sorted, faces)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Left < sorted[j].Left
	})
	return sorted
}
