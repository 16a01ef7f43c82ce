package scraper

import (
	"context"
	"log/slog"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/use-agent/bookmeta/config"
	"github.com/use-agent/bookmeta/engine"
	"github.com/use-agent/bookmeta/models"
)

// Ephemeral launches a fresh browser for every fetch and kills it
// afterwards. Slower than Browser, but no state survives between requests.
type Ephemeral struct {
	cfg   config.BrowserConfig
	proxy string
}

// NewEphemeral creates a per-request browser fetcher.
func NewEphemeral(cfg config.BrowserConfig, proxy string) *Ephemeral {
	return &Ephemeral{cfg: cfg, proxy: proxy}
}

// Fetch launches Chrome, renders req.URL and tears the process down.
func (e *Ephemeral) Fetch(ctx context.Context, req *engine.FetchRequest) (*engine.FetchResult, error) {
	l := newLauncher(e.cfg, e.proxy).Context(ctx)
	defer l.Cleanup()
	defer l.Kill()

	controlURL, err := l.Launch()
	if err != nil {
		return nil, models.NewLookupError(models.ErrCodeBrowserCrash, "failed to launch browser", err)
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		return nil, models.NewLookupError(models.ErrCodeBrowserCrash, "failed to connect to browser", err)
	}
	defer func() {
		if err := browser.Close(); err != nil {
			slog.Debug("ephemeral browser close failed", "error", err)
		}
	}()

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, models.NewLookupError(models.ErrCodeBrowserCrash, "failed to open page", err)
	}
	if e.cfg.Stealth {
		// The whole browser is torn down afterwards; no need to remove it.
		installStealth(page)
	}

	return render(ctx, page, req, e.cfg)
}
