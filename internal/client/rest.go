package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"time"
)

const maxLoggedBody = 500

// logBodies adds truncated response bodies to the request trace
var logBodies bool

// SetBodyLogging turns response body tracing on or off
func SetBodyLogging(enabled bool) {
	logBodies = enabled
}

// restClient holds the request plumbing shared by the provider clients
type restClient struct {
	name       string
	httpClient *http.Client
	baseURL    string
	authorize  func(req *http.Request)
}

type rawResponse struct {
	StatusCode int
	Body       []byte
}

func (r *rawResponse) ok() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

func (r *rawResponse) statusError(provider string) *StatusError {
	return &StatusError{Provider: provider, StatusCode: r.StatusCode, Body: string(r.Body)}
}

// decode unmarshals the body into a generic document
func (r *rawResponse) decode() (map[string]any, error) {
	var doc map[string]any
	if err := json.Unmarshal(r.Body, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return doc, nil
}

type formFile struct {
	field       string
	filename    string
	contentType string
	data        []byte
}

func newRestClient(name, baseURL string, timeout time.Duration, authorize func(*http.Request)) *restClient {
	return &restClient{
		name: name,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL:   baseURL,
		authorize: authorize,
	}
}

// postJSON sends a POST request with JSON body
func (c *restClient) postJSON(ctx context.Context, endpoint string, body interface{}) (*rawResponse, error) {
	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.doRequest(req)
}

// postMultipart sends a multipart/form-data POST request
func (c *restClient) postMultipart(ctx context.Context, endpoint string, fields map[string]string, files []formFile) (*rawResponse, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	for _, f := range files {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, f.field, f.filename))
		header.Set("Content-Type", f.contentType)
		part, err := mw.CreatePart(header)
		if err != nil {
			return nil, fmt.Errorf("failed to create form file %s: %w", f.field, err)
		}
		if _, err := part.Write(f.data); err != nil {
			return nil, fmt.Errorf("failed to write form file %s: %w", f.field, err)
		}
	}
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			return nil, fmt.Errorf("failed to write form field %s: %w", k, err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to close form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	return c.doRequest(req)
}

// get sends a GET request
func (c *restClient) get(ctx context.Context, endpoint string) (*rawResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	return c.doRequest(req)
}

// fetchImage downloads image bytes from an absolute URL without provider auth
func (c *restClient) fetchImage(ctx context.Context, imageURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("failed to fetch image (status %d)", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	return data, nil
}

// doRequest executes an HTTP request. Non-2xx responses are returned, not
// treated as errors, since several providers encode job state in the status code.
func (c *restClient) doRequest(req *http.Request) (*rawResponse, error) {
	if c.authorize != nil {
		c.authorize(req)
	}

	log.Printf("[%s API] → %s %s", c.name, req.Method, req.URL.String())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Printf("[%s API] ✗ %s %s — request failed: %v", c.name, req.Method, req.URL.String(), err)
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Printf("[%s API] ✗ %s %s — failed to read response: %v", c.name, req.Method, req.URL.String(), err)
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if logBodies {
		log.Printf("[%s API] ← %d %s %s — %s", c.name, resp.StatusCode, req.Method, req.URL.String(), truncate(respBody))
	} else {
		log.Printf("[%s API] ← %d %s %s", c.name, resp.StatusCode, req.Method, req.URL.String())
	}

	return &rawResponse{StatusCode: resp.StatusCode, Body: respBody}, nil
}

func truncate(b []byte) string {
	if len(b) > maxLoggedBody {
		return string(b[:maxLoggedBody]) + "…"
	}
	return string(b)
}
