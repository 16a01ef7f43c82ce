package scraper

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/go-rod/rod/lib/proto"
	"github.com/use-agent/bookmeta/models"
)

func TestIsTrackerHost(t *testing.T) {
	tests := []struct {
		host string
		want bool
	}{
		{"erebor.douban.com", true},
		{"pagead2.googlesyndication.com", true},
		{"WWW.Google-Analytics.com", true},
		{"book.douban.com", false},
		{"img9.doubanio.com", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := isTrackerHost(tt.host); got != tt.want {
			t.Errorf("isTrackerHost(%q) = %v, want %v", tt.host, got, tt.want)
		}
	}
}

func TestBlockedTypes(t *testing.T) {
	got := blockedTypes([]string{"Image", "Font", "Bogus"})
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if _, ok := got[proto.NetworkResourceTypeImage]; !ok {
		t.Error("Image not blocked")
	}
	if _, ok := got[proto.NetworkResourceTypeFont]; !ok {
		t.Error("Font not blocked")
	}
}

func TestCategorizeError(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{fmt.Errorf("navigate: %w", context.DeadlineExceeded), models.ErrCodeTimeout},
		{context.Canceled, models.ErrCodeTimeout},
		{errors.New("net::ERR_NAME_NOT_RESOLVED"), models.ErrCodeFetch},
	}
	for _, tt := range tests {
		if got := categorizeError(tt.err, "x").Code; got != tt.want {
			t.Errorf("categorizeError(%v) = %s, want %s", tt.err, got, tt.want)
		}
	}
}
