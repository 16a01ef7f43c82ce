package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/use-agent/bookmeta/config"
	"github.com/use-agent/bookmeta/models"
)

type emptyFinder struct{}

func (emptyFinder) Lookup(context.Context, string) (*models.BookRecord, error) {
	return nil, models.NotFound("no book found")
}

func (emptyFinder) Cover(context.Context, string) (*models.CoverImage, error) {
	return nil, models.NotFound("book has no cover image")
}

func (emptyFinder) FetchMode() string { return "http" }

func testConfig() *config.Config {
	return &config.Config{
		Server:    config.ServerConfig{Mode: "test"},
		Auth:      config.AuthConfig{Enabled: true, APIKeys: []string{"k1"}},
		RateLimit: config.RateLimitConfig{RequestsPerSecond: 100, Burst: 100},
		CORS:      config.CORSConfig{AllowedOrigins: []string{"*"}},
	}
}

func TestRouter(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	r := NewRouter(ctx, emptyFinder{}, nil, testConfig(), time.Now())

	tests := []struct {
		name   string
		method string
		target string
		key    string
		want   int
	}{
		{"health needs no key", http.MethodGet, "/health", "", http.StatusOK},
		{"home needs no key", http.MethodGet, "/", "", http.StatusOK},
		{"search requires key", http.MethodGet, "/api/search?query=x", "", http.StatusUnauthorized},
		{"search missing query", http.MethodGet, "/api/search", "k1", http.StatusBadRequest},
		{"search not found", http.MethodGet, "/api/search?query=x", "k1", http.StatusNotFound},
		{"post search not found", http.MethodPost, "/api/search?query=x", "k1", http.StatusNotFound},
		{"cover not found", http.MethodGet, "/api/cover/9787544270878", "k1", http.StatusNotFound},
		{"cover base64", http.MethodGet, "/api/cover-base64/9787544270878", "k1", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.target, nil)
			if tt.key != "" {
				req.Header.Set("X-API-Key", tt.key)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d (body: %s)", w.Code, tt.want, w.Body.String())
			}
		})
	}
}
