package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/markrc139/christmas-poster-generator/internal/client"
)

var errTransport = errors.New("connection reset by peer")

type fakeGenerator struct {
	configured  bool
	submitted   []*client.GenerationRequest
	submitID    string
	submitErr   error
	status      *client.JobResult
	statusErr   error
	statusCalls int
}

func (g *fakeGenerator) SubmitGeneration(_ context.Context, req *client.GenerationRequest) (string, error) {
	g.submitted = append(g.submitted, req)
	if g.submitErr != nil {
		return "", g.submitErr
	}
	return g.submitID, nil
}

func (g *fakeGenerator) GenerationStatus(_ context.Context, _ string) (*client.JobResult, error) {
	g.statusCalls++
	return g.status, g.statusErr
}

func (g *fakeGenerator) IsConfigured() bool { return g.configured }

type fakeSwapper struct {
	configured bool
	swaps      []*client.SwapRequest
	swapErr    error
	status     *client.JobResult
	statusErr  error
}

func (f *fakeSwapper) Name() string { return "fake" }

func (f *fakeSwapper) SubmitSwap(_ context.Context, req *client.SwapRequest) (string, error) {
	if f.swapErr != nil {
		return "", f.swapErr
	}
	f.swaps = append(f.swaps, req)
	return fmt.Sprintf("swap-%d", len(f.swaps)), nil
}

func (f *fakeSwapper) SwapStatus(_ context.Context, _ string) (*client.JobResult, error) {
	return f.status, f.statusErr
}

func (f *fakeSwapper) IsConfigured() bool { return f.configured }

// fakeMultiSwapper adds detect-then-multi-swap support
type fakeMultiSwapper struct {
	fakeSwapper
	detects      []string
	detectErr    error
	detectStatus *client.JobResult
	multiSwaps   []*client.MultiSwapRequest
	multiErr     error
}

func (f *fakeMultiSwapper) SubmitDetect(_ context.Context, targetURL string) (string, error) {
	if f.detectErr != nil {
		return "", f.detectErr
	}
	f.detects = append(f.detects, targetURL)
	return "detect-1", nil
}

func (f *fakeMultiSwapper) DetectStatus(_ context.Context, _ string) (*client.JobResult, error) {
	return f.detectStatus, nil
}

func (f *fakeMultiSwapper) SubmitMultiSwap(_ context.Context, req *client.MultiSwapRequest) (string, error) {
	if f.multiErr != nil {
		return "", f.multiErr
	}
	f.multiSwaps = append(f.multiSwaps, req)
	return "multi-1", nil
}

func jobPending(reason string) *client.JobResult {
	return &client.JobResult{State: client.JobPending, Reason: reason}
}

func jobDone(url string) *client.JobResult {
	return &client.JobResult{State: client.JobDone, ImageURL: url}
}

func jobFailed(reason string) *client.JobResult {
	return &client.JobResult{State: client.JobFailed, Reason: reason}
}
