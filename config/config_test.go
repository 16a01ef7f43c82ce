package config

import (
	"reflect"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("BOOKMETA_PORT", "")
	t.Setenv("BOOKMETA_FETCH_MODE", "")
	t.Setenv("BOOKMETA_RATE_RPS", "")

	cfg := Load()

	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Fetch.Mode != FetchModeHTTP {
		t.Errorf("Fetch.Mode = %q, want %q", cfg.Fetch.Mode, FetchModeHTTP)
	}
	if cfg.Fetch.Timeout != 10*time.Second {
		t.Errorf("Fetch.Timeout = %v, want 10s", cfg.Fetch.Timeout)
	}
	if cfg.Catalog.SearchCategory != "1001" {
		t.Errorf("Catalog.SearchCategory = %q, want 1001", cfg.Catalog.SearchCategory)
	}
	if cfg.Auth.Enabled {
		t.Error("Auth.Enabled should default to false")
	}
	if cfg.RateLimit.RequestsPerSecond != 0 {
		t.Errorf("RateLimit.RequestsPerSecond = %v, want 0 (disabled)", cfg.RateLimit.RequestsPerSecond)
	}
}

func TestLoad_PortPrecedence(t *testing.T) {
	tests := []struct {
		name     string
		port     string
		override string
		want     int
	}{
		{"PORT only", "9000", "", 9000},
		{"override wins", "9000", "9100", 9100},
		{"garbage falls back", "abc", "", 8080},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("PORT", tt.port)
			t.Setenv("BOOKMETA_PORT", tt.override)
			if got := Load().Server.Port; got != tt.want {
				t.Errorf("Server.Port = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestEnvSliceOr(t *testing.T) {
	t.Setenv("BOOKMETA_TEST_SLICE", " a, b ,,c ")
	got := envSliceOr("BOOKMETA_TEST_SLICE", nil)
	want := []string{"a", "b", "c"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("envSliceOr = %v, want %v", got, want)
	}

	t.Setenv("BOOKMETA_TEST_SLICE", "")
	if got := envSliceOr("BOOKMETA_TEST_SLICE", []string{"x"}); !reflect.DeepEqual(got, []string{"x"}) {
		t.Errorf("envSliceOr fallback = %v", got)
	}
}

func TestEnvDurationOr(t *testing.T) {
	t.Setenv("BOOKMETA_TEST_DUR", "250ms")
	if got := envDurationOr("BOOKMETA_TEST_DUR", time.Second); got != 250*time.Millisecond {
		t.Errorf("envDurationOr = %v, want 250ms", got)
	}
	t.Setenv("BOOKMETA_TEST_DUR", "soon")
	if got := envDurationOr("BOOKMETA_TEST_DUR", time.Second); got != time.Second {
		t.Errorf("envDurationOr invalid = %v, want fallback 1s", got)
	}
}
