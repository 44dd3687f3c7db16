package e2e

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"

	"github.com/markrc139/christmas-poster-generator/internal/client"
	"github.com/markrc139/christmas-poster-generator/internal/config"
	"github.com/markrc139/christmas-poster-generator/internal/handler"
	"github.com/markrc139/christmas-poster-generator/internal/middleware"
	"github.com/markrc139/christmas-poster-generator/internal/service"
)

// providerStub is one fake upstream serving fal, segmind and remaker paths
type providerStub struct {
	mu     sync.Mutex
	srv    *httptest.Server
	routes map[string]stubResponse
	calls  map[string]int
}

type stubResponse struct {
	code int
	body string
}

func newProviderStub(t *testing.T) *providerStub {
	t.Helper()
	p := &providerStub{routes: map[string]stubResponse{}, calls: map[string]int{}}
	p.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Method + " " + r.URL.Path
		p.mu.Lock()
		p.calls[key]++
		resp, ok := p.routes[key]
		p.mu.Unlock()
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(resp.code)
		w.Write([]byte(resp.body))
	}))
	t.Cleanup(p.srv.Close)
	return p
}

func (p *providerStub) on(method, path string, code int, body string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.routes[method+" "+path] = stubResponse{code: code, body: body}
}

func (p *providerStub) count(method, path string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls[method+" "+path]
}

// testApp holds all components needed for testing
type testApp struct {
	app  *fiber.App
	stub *providerStub
}

// setupApp creates a Fiber app wired like main.go with every provider
// pointed at the stub.
func setupApp(t *testing.T, provider string) *testApp {
	t.Helper()

	stub := newProviderStub(t)
	cfg := &config.Config{
		Fal:       config.FalConfig{APIKey: "fal-key", BaseURL: stub.srv.URL, Model: "fal-ai/flux-pro"},
		FaceSwap:  config.FaceSwapConfig{Provider: provider},
		Segmind:   config.SegmindConfig{APIKey: "seg-key", BaseURL: stub.srv.URL, WorkflowID: "wf"},
		Replicate: config.ReplicateConfig{APIKey: "rep-key", BaseURL: stub.srv.URL, Version: "owner/model:hash"},
		Remaker:   config.RemakerConfig{APIKey: "rm-key", BaseURL: stub.srv.URL},
	}

	falClient := client.NewFalClient(&cfg.Fal)
	swapper, err := client.NewFaceSwapper(cfg)
	if err != nil {
		t.Fatalf("failed to create face swapper: %v", err)
	}

	posterHandler := handler.NewPosterHandler(service.NewPosterService(falClient, false), validator.New())
	statusHandler := handler.NewStatusHandler(service.NewStatusService(falClient, swapper))

	app := fiber.New(fiber.Config{
		BodyLimit: 20 * 1024 * 1024,
	})
	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	app.Use(middleware.CORS())

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"timestamp": time.Now().Unix()})
	})
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "ok",
			"services": fiber.Map{
				"fal":      falClient.IsConfigured(),
				"faceswap": swapper.IsConfigured(),
				"provider": swapper.Name(),
			},
		})
	})

	api := app.Group("/api", middleware.MethodNotAllowed())
	api.Post("/generate-poster", posterHandler.Generate)
	api.Post("/check-status", statusHandler.Check)

	return &testApp{app: app, stub: stub}
}

// doRequest is a helper to perform HTTP requests against the test app.
func doRequest(app *fiber.App, method, path string, body string) (*http.Response, error) {
	var bodyReader io.Reader
	if body != "" {
		bodyReader = strings.NewReader(body)
	}

	req, err := http.NewRequest(method, path, bodyReader)
	if err != nil {
		return nil, err
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	return app.Test(req, -1)
}

// readBody reads and returns the response body as a string.
func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read response body: %v", err)
	}
	return string(b)
}

// parseJSON parses response body into a map.
func parseJSON(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	body := readBody(t, resp)
	var result map[string]interface{}
	if err := json.Unmarshal([]byte(body), &result); err != nil {
		t.Fatalf("failed to parse JSON: %v\nbody: %s", err, body)
	}
	return result
}

// assertStatus checks the HTTP status code.
func assertStatus(t *testing.T, resp *http.Response, expected int) {
	t.Helper()
	if resp.StatusCode != expected {
		t.Errorf("expected status %d, got %d", expected, resp.StatusCode)
	}
}

// pollStatus posts a check-status body and returns the parsed response
func pollStatus(t *testing.T, ta *testApp, body string) map[string]interface{} {
	t.Helper()
	resp, err := doRequest(ta.app, http.MethodPost, "/api/check-status", body)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	assertStatus(t, resp, http.StatusOK)
	return parseJSON(t, resp)
}
