package catalog

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/use-agent/bookmeta/cache"
	"github.com/use-agent/bookmeta/config"
	"github.com/use-agent/bookmeta/engine"
	"github.com/use-agent/bookmeta/models"
)

// RawFetcher downloads non-HTML resources such as cover images.
type RawFetcher interface {
	FetchRaw(ctx context.Context, req *engine.FetchRequest) (*engine.RawResult, error)
}

// Client looks books up on the catalog site.
// It is safe for concurrent use.
type Client struct {
	pages   engine.Engine
	images  RawFetcher
	cache   cache.Store
	cfg     config.CatalogConfig
	timeout time.Duration
	sleep   func(ctx context.Context, d time.Duration) error
}

// NewClient wires a Client. pages fetches HTML in the configured fetch mode;
// images downloads covers; store may be nil to disable caching.
func NewClient(pages engine.Engine, images RawFetcher, store cache.Store, cfg config.CatalogConfig, timeout time.Duration) *Client {
	return &Client{
		pages:   pages,
		images:  images,
		cache:   store,
		cfg:     cfg,
		timeout: timeout,
		sleep:   sleepCtx,
	}
}

// FetchMode reports the name of the page engine in use.
func (c *Client) FetchMode() string { return c.pages.Name() }

// Lookup resolves a query to a book. An ISBN goes straight to its detail
// page; anything else is searched as a title and the first hit is loaded.
func (c *Client) Lookup(ctx context.Context, query string) (*models.BookRecord, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, models.InvalidInput("query is required")
	}

	key := cache.Key(query, c.optionsTag())
	if c.cache != nil {
		if rec, ok := c.cache.Get(ctx, key); ok {
			slog.Debug("cache hit", "query", query)
			return rec, nil
		}
	}

	var detailURL string
	if IsISBN(query) {
		detailURL = c.isbnURL(CleanISBN(query))
	} else {
		var err error
		if detailURL, err = c.search(ctx, query); err != nil {
			return nil, err
		}
		slog.Info("search matched", "query", query, "url", detailURL)
	}

	rec, err := c.loadBook(ctx, detailURL)
	if err != nil {
		return nil, err
	}

	if c.cfg.NormalizeDate && rec.PubDate != "" {
		rec.PubDate = NormalizePubDate(rec.PubDate)
	}
	if c.cfg.HalfRating && rec.Rating != "" {
		rec.Rating = HalveRating(rec.Rating)
	}

	if c.cache != nil {
		c.cache.Set(ctx, key, rec)
	}
	slog.Info("book loaded", "query", query, "title", rec.Title, "engine", c.pages.Name())
	return rec, nil
}

// Cover looks the ISBN up and downloads its large cover image.
func (c *Client) Cover(ctx context.Context, isbn string) (*models.CoverImage, error) {
	if !IsISBN(isbn) {
		return nil, models.InvalidInput("isbn must be digits (X allowed as a 10-digit check digit)")
	}
	rec, err := c.Lookup(ctx, isbn)
	if err != nil {
		return nil, err
	}
	if rec.CoverURL == "" {
		return nil, models.NotFound("book has no cover image")
	}

	raw, err := c.images.FetchRaw(ctx, &engine.FetchRequest{
		URL:     rec.CoverURL,
		Headers: c.headers(),
		Timeout: c.timeout,
	})
	if err != nil {
		return nil, classify(err, "cover download failed")
	}
	if !strings.HasPrefix(raw.ContentType, "image/") {
		return nil, models.NewLookupError(models.ErrCodeFetch, "cover is not an image: "+raw.ContentType, nil)
	}

	return &models.CoverImage{
		ISBN:        CleanISBN(isbn),
		ContentType: raw.ContentType,
		Data:        raw.Body,
	}, nil
}

// search runs a title search and returns the first result's detail URL.
func (c *Client) search(ctx context.Context, query string) (string, error) {
	searchURL := c.cfg.SearchURL + "?" + url.Values{
		"cat": {c.cfg.SearchCategory},
		"q":   {query},
	}.Encode()

	res, err := c.fetch(ctx, searchURL)
	if err != nil {
		return "", classify(err, "search request failed")
	}

	detailURL, err := ParseSearch([]byte(res.HTML), res.FinalURL, c.bookHost())
	if err != nil {
		if models.IsNotFound(err) {
			slog.Info("no search results", "query", query)
			return "", models.NotFound("no book matches the query")
		}
		return "", models.NewLookupError(models.ErrCodeInternal, "search page could not be parsed", err)
	}
	return detailURL, nil
}

// loadBook fetches and parses one detail page.
func (c *Client) loadBook(ctx context.Context, detailURL string) (*models.BookRecord, error) {
	if err := c.pause(ctx); err != nil {
		return nil, classify(err, "lookup canceled")
	}

	res, err := c.fetch(ctx, detailURL)
	if err != nil {
		return nil, classify(err, "detail page request failed")
	}

	rec, err := ParseBook([]byte(res.HTML), res.FinalURL)
	if err != nil {
		return nil, models.NewLookupError(models.ErrCodeInternal, "detail page could not be parsed", err)
	}
	if !rec.Found() {
		slog.Info("detail page has no title", "url", detailURL, "page_title", engine.ExtractTitle(res.HTML))
		return nil, models.NotFound("no book found")
	}
	return &rec, nil
}

func (c *Client) fetch(ctx context.Context, target string) (*engine.FetchResult, error) {
	res, err := c.pages.Fetch(ctx, &engine.FetchRequest{
		URL:     target,
		Headers: c.headers(),
		Timeout: c.timeout,
	})
	if err != nil {
		return nil, err
	}
	if res.FinalURL == "" {
		res.FinalURL = target
	}
	return res, nil
}

// pause waits a random duration in [DelayMin, DelayMax] before a detail fetch.
func (c *Client) pause(ctx context.Context) error {
	lo, hi := c.cfg.DelayMin, c.cfg.DelayMax
	if hi < lo {
		hi = lo
	}
	if hi <= 0 {
		return nil
	}
	d := lo
	if span := hi - lo; span > 0 {
		d += time.Duration(rand.Int64N(int64(span) + 1))
	}
	return c.sleep(ctx, d)
}

func (c *Client) headers() map[string]string {
	return map[string]string{"Referer": c.cfg.BaseURL}
}

// bookHost is the host detail pages live on; search hits elsewhere are ignored.
func (c *Client) bookHost() string {
	u, err := url.Parse(c.cfg.BaseURL)
	if err != nil {
		return ""
	}
	return u.Hostname()
}

func (c *Client) isbnURL(isbn string) string {
	u, err := url.JoinPath(c.cfg.BaseURL, "isbn", isbn)
	if err != nil {
		return strings.TrimSuffix(c.cfg.BaseURL, "/") + "/isbn/" + isbn
	}
	return u
}

// optionsTag distinguishes cache entries produced under different output options.
func (c *Client) optionsTag() string {
	return "date=" + strconv.FormatBool(c.cfg.NormalizeDate) + ",half=" + strconv.FormatBool(c.cfg.HalfRating)
}

// classify maps fetch errors onto lookup error codes. An upstream 404 is
// the catalog saying it has no such book.
func classify(err error, msg string) error {
	var le *models.LookupError
	if errors.As(err, &le) {
		return le
	}

	var se *engine.StatusError
	if errors.As(err, &se) {
		if se.StatusCode == http.StatusNotFound {
			return models.NewLookupError(models.ErrCodeNotFound, "no book found", err)
		}
		return models.NewLookupError(models.ErrCodeFetch, msg, err)
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return models.NewLookupError(models.ErrCodeTimeout, msg, err)
	case errors.Is(err, context.Canceled):
		return models.NewLookupError(models.ErrCodeTimeout, "request canceled", err)
	default:
		return models.NewLookupError(models.ErrCodeFetch, msg, err)
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
