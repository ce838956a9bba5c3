package mocks

import "errors"

var (
	// ErrNotConfigured is returned by mocks whose behavior was not set up by the test.
	ErrNotConfigured = errors.New("mock behavior not configured")
)
