package engine

import (
	"context"
	"fmt"
)

// RodFetchFunc is the callback type that wraps a browser-backed fetch.
// It is injected by cmd/bookmeta so engine/ never imports scraper/.
type RodFetchFunc func(ctx context.Context, req *FetchRequest) (*FetchResult, error)

// RodEngine is a browser-based engine that delegates to the scraper package
// via a callback function. The name distinguishes a per-request browser
// ("browser") from the long-lived shared one ("shared-browser").
type RodEngine struct {
	fetchFunc RodFetchFunc
	name      string
}

// NewRodEngine creates a RodEngine reporting the given name.
func NewRodEngine(name string, fetchFunc RodFetchFunc) *RodEngine {
	return &RodEngine{
		fetchFunc: fetchFunc,
		name:      name,
	}
}

func (e *RodEngine) Name() string { return e.name }

func (e *RodEngine) Fetch(ctx context.Context, req *FetchRequest) (*FetchResult, error) {
	if e.fetchFunc == nil {
		return nil, fmt.Errorf("%s: fetchFunc not configured", e.name)
	}

	ctx, cancel := withTimeout(ctx, req.Timeout)
	defer cancel()

	result, err := e.fetchFunc(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", e.name, err)
	}

	result.EngineName = e.name
	return result, nil
}
