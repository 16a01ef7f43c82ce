package scraper

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/use-agent/bookmeta/config"
	"github.com/use-agent/bookmeta/engine"
	"github.com/use-agent/bookmeta/models"
	"github.com/ysmood/gson"
)

// Fetch renders req.URL on a pooled tab of the shared browser.
//
// Lifecycle:
//
//  1. Acquire page       – borrow a tab from the pool (or create one)
//  2. Stealth            – install the evasion script for new documents
//  3. DEFER: cleanup     – remove stealth, about:blank, return to pool
//  4. render             – headers, hijack, navigate, wait, HTML
//
// The about:blank in step 3 uses the page without the request context so
// cleanup succeeds even after the request deadline expired.
func (b *Browser) Fetch(ctx context.Context, req *engine.FetchRequest) (*engine.FetchResult, error) {
	b.activePages.Add(1)
	defer b.activePages.Add(-1)

	page, err := b.pagePool.Get(func() (*rod.Page, error) {
		return b.browser.Page(proto.TargetCreateTarget{})
	})
	if err != nil {
		return nil, models.NewLookupError(
			models.ErrCodeBrowserCrash,
			"failed to acquire page from pool",
			err,
		)
	}

	removeStealth := func() {}
	if b.cfg.Stealth {
		removeStealth = installStealth(page)
	}

	defer func() {
		removeStealth()
		if navErr := page.Navigate("about:blank"); navErr != nil {
			slog.Warn("cleanup: failed to navigate to about:blank", "error", navErr)
		}
		b.pagePool.Put(page)
	}()

	return render(ctx, page, req, b.cfg)
}

// scriptInstaller is the part of *rod.Page that registers new-document scripts.
type scriptInstaller interface {
	EvalOnNewDocument(js string) (remove func() error, err error)
}

// installStealth registers the stealth script and returns a func that
// unregisters it. Pooled tabs must call it before going back to the pool,
// otherwise every reuse stacks another copy of the script.
func installStealth(page scriptInstaller) func() {
	remove, err := page.EvalOnNewDocument(stealth.JS)
	if err != nil {
		slog.Warn("stealth injection failed, proceeding without stealth", "error", err)
		return func() {}
	}
	return func() {
		if err := remove(); err != nil {
			slog.Debug("cleanup: failed to remove stealth script", "error", err)
		}
	}
}

// render drives one page through a navigation and returns the final DOM.
//
// Stealth JS and resource blocking only apply to navigations started after
// they are installed, so callers install stealth and render sets up the
// hijack router before Navigate.
func render(ctx context.Context, page *rod.Page, req *engine.FetchRequest, cfg config.BrowserConfig) (*engine.FetchResult, error) {
	if len(req.Headers) > 0 {
		if err := (proto.NetworkSetExtraHTTPHeaders{Headers: toHeadersMap(req.Headers)}).Call(page); err != nil {
			slog.Debug("setting extra headers failed", "error", err)
		}
	}

	router := setupHijack(page, cfg.BlockedResourceTypes)
	if router != nil {
		defer func() { _ = router.Stop() }()
	}

	p := page.Context(ctx)

	if err := p.Navigate(req.URL); err != nil {
		return nil, categorizeError(err, "navigation to catalog page failed")
	}
	if err := p.WaitDOMStable(300*time.Millisecond, 0.1); err != nil {
		slog.Debug("WaitDOMStable did not converge, proceeding with current DOM", "error", err)
	}

	statusCode := 0
	if res, err := p.Eval(`() => {
		try {
			const entries = performance.getEntriesByType("navigation");
			if (entries.length > 0) return entries[0].responseStatus || 0;
		} catch(e) {}
		return 0;
	}`); err == nil {
		statusCode = res.Value.Int()
	}
	if statusCode >= 400 {
		return nil, &engine.StatusError{URL: req.URL, StatusCode: statusCode}
	}

	rawHTML, err := p.HTML()
	if err != nil {
		return nil, categorizeError(err, "failed to extract page HTML")
	}

	finalURL := evalStringOrEmpty(p, `() => window.location.href`)
	if finalURL == "" {
		finalURL = req.URL
	}

	return &engine.FetchResult{
		HTML:       rawHTML,
		StatusCode: statusCode,
		FinalURL:   finalURL,
	}, nil
}

// evalStringOrEmpty evaluates a JS expression and returns the string result,
// swallowing any errors.
func evalStringOrEmpty(page *rod.Page, js string) string {
	res, err := page.Eval(js)
	if err != nil {
		return ""
	}
	return res.Value.Str()
}

// toHeadersMap converts a plain string map to the proto.NetworkHeaders type
// (map[string]gson.JSON) required by NetworkSetExtraHTTPHeaders.
func toHeadersMap(headers map[string]string) proto.NetworkHeaders {
	m := make(proto.NetworkHeaders, len(headers))
	for k, v := range headers {
		m[k] = gson.New(v)
	}
	return m
}

// categorizeError wraps raw errors into typed LookupErrors so the API layer
// can map them to appropriate HTTP status codes.
func categorizeError(err error, msg string) *models.LookupError {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return models.NewLookupError(models.ErrCodeTimeout, msg, err)
	case errors.Is(err, context.Canceled):
		return models.NewLookupError(models.ErrCodeTimeout, "request canceled", err)
	default:
		return models.NewLookupError(models.ErrCodeFetch, msg, err)
	}
}
