package engine

import (
	"context"
	"fmt"
	"time"
)

// Engine is the interface that all page fetchers must implement.
type Engine interface {
	// Name returns the engine identifier (e.g. "http", "browser", "shared-browser").
	Name() string

	// Fetch retrieves the rendered HTML for the given request.
	Fetch(ctx context.Context, req *FetchRequest) (*FetchResult, error)
}

// FetchRequest contains everything an engine needs to fetch a page.
type FetchRequest struct {
	URL     string
	Headers map[string]string
	Timeout time.Duration
}

// FetchResult is the output of a successful engine fetch.
type FetchResult struct {
	HTML       string
	StatusCode int
	FinalURL   string
	EngineName string
}

// StatusError reports an upstream response with a non-success status code.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream HTTP %d for %s", e.StatusCode, e.URL)
}

// withTimeout derives a context bounded by the request timeout, if any.
func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
