package mocks

import (
	"context"
	"sync"

	"github.com/victordov/telegram-video-downloader/internal/core/domain"
	"github.com/victordov/telegram-video-downloader/internal/core/policy"
	"github.com/victordov/telegram-video-downloader/internal/core/ports"
)

// Extractor is a thread-safe implementation of ports.Extractor.
type Extractor struct {
	mu         sync.Mutex
	probeCalls []string
	fetchCalls []string
	policies   []policy.RetrievalPolicy

	// ProbeFn allows overriding Probe behavior.
	ProbeFn func(ctx context.Context, url string, p policy.RetrievalPolicy) (*ports.Metadata, error)

	// FetchFn allows overriding Fetch behavior.
	FetchFn func(ctx context.Context, url string, p policy.RetrievalPolicy, progress ports.ProgressFunc) (*ports.Download, error)
}

// Probe records the call and returns metadata with no size and unknown duration by default.
func (e *Extractor) Probe(ctx context.Context, url string, p policy.RetrievalPolicy) (*ports.Metadata, error) {
	e.mu.Lock()
	e.probeCalls = append(e.probeCalls, url)
	e.policies = append(e.policies, p)
	e.mu.Unlock()

	if e.ProbeFn != nil {
		return e.ProbeFn(ctx, url, p)
	}

	return &ports.Metadata{Title: "test video", Duration: domain.UnknownDuration}, nil
}

// Fetch records the call. Without FetchFn it fails with ErrNotConfigured.
func (e *Extractor) Fetch(ctx context.Context, url string, p policy.RetrievalPolicy, progress ports.ProgressFunc) (*ports.Download, error) {
	e.mu.Lock()
	e.fetchCalls = append(e.fetchCalls, url)
	e.mu.Unlock()

	if e.FetchFn != nil {
		return e.FetchFn(ctx, url, p, progress)
	}

	return nil, ErrNotConfigured
}

// ProbeCalls returns the number of Probe invocations.
func (e *Extractor) ProbeCalls() int {
	e.mu.Lock()
	defer e.mu.Unlock()

	return len(e.probeCalls)
}

// FetchCalls returns the number of Fetch invocations.
func (e *Extractor) FetchCalls() int {
	e.mu.Lock()
	defer e.mu.Unlock()

	return len(e.fetchCalls)
}

// ProbedURLs returns the URLs passed to Probe in call order.
func (e *Extractor) ProbedURLs() []string {
	e.mu.Lock()
	defer e.mu.Unlock()

	return append([]string(nil), e.probeCalls...)
}

// LastPolicy returns the policy passed to the most recent Probe call.
func (e *Extractor) LastPolicy() (policy.RetrievalPolicy, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if len(e.policies) == 0 {
		return policy.RetrievalPolicy{}, false
	}

	return e.policies[len(e.policies)-1], true
}
