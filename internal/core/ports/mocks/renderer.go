package mocks

import (
	"context"
	"sync"

	"github.com/victordov/telegram-video-downloader/internal/core/ports"
)

// Renderer is a thread-safe implementation of ports.Renderer.
type Renderer struct {
	mu       sync.Mutex
	calls    []string
	profiles []ports.DeviceProfile

	// RenderFn allows overriding Render behavior.
	RenderFn func(ctx context.Context, url string, profile ports.DeviceProfile) (*ports.Rendering, error)
}

// Render records the call. Without RenderFn it fails with ErrNotConfigured.
func (r *Renderer) Render(ctx context.Context, url string, profile ports.DeviceProfile) (*ports.Rendering, error) {
	r.mu.Lock()
	r.calls = append(r.calls, url)
	r.profiles = append(r.profiles, profile)
	r.mu.Unlock()

	if r.RenderFn != nil {
		return r.RenderFn(ctx, url, profile)
	}

	return nil, ErrNotConfigured
}

// Calls returns the number of Render invocations.
func (r *Renderer) Calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.calls)
}

// Profiles returns the device profiles passed to Render in call order.
func (r *Renderer) Profiles() []ports.DeviceProfile {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]ports.DeviceProfile(nil), r.profiles...)
}
