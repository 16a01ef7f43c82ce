package catalog

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/use-agent/bookmeta/cache"
	"github.com/use-agent/bookmeta/config"
	"github.com/use-agent/bookmeta/engine"
	"github.com/use-agent/bookmeta/models"
)

// fakeEngine serves canned pages keyed by URL.
type fakeEngine struct {
	mu     sync.Mutex
	pages  map[string]string
	errs   map[string]error
	final  map[string]string
	calls  []string
	images map[string]*engine.RawResult
}

func newFakeEngine() *fakeEngine {
	return &fakeEngine{
		pages:  map[string]string{},
		errs:   map[string]error{},
		final:  map[string]string{},
		images: map[string]*engine.RawResult{},
	}
}

func (f *fakeEngine) Name() string { return "fake" }

func (f *fakeEngine) Fetch(_ context.Context, req *engine.FetchRequest) (*engine.FetchResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, req.URL)
	if err, ok := f.errs[req.URL]; ok {
		return nil, err
	}
	page, ok := f.pages[req.URL]
	if !ok {
		return nil, &engine.StatusError{URL: req.URL, StatusCode: 404}
	}
	return &engine.FetchResult{HTML: page, StatusCode: 200, FinalURL: f.final[req.URL]}, nil
}

func (f *fakeEngine) FetchRaw(_ context.Context, req *engine.FetchRequest) (*engine.RawResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, req.URL)
	if raw, ok := f.images[req.URL]; ok {
		return raw, nil
	}
	return nil, &engine.StatusError{URL: req.URL, StatusCode: 404}
}

func (f *fakeEngine) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func testCatalogConfig() config.CatalogConfig {
	return config.CatalogConfig{
		BaseURL:        "https://book.douban.com/",
		SearchURL:      "https://www.douban.com/search",
		SearchCategory: "1001",
	}
}

const (
	isbnURL      = "https://book.douban.com/isbn/9787544270878"
	subjectURL   = "https://book.douban.com/subject/25862578/"
	searchURLHit = "https://www.douban.com/search?cat=1001&q=%E8%A7%A3%E5%BF%A7%E6%9D%82%E8%B4%A7%E5%BA%97"
)

func newTestClient(t *testing.T, f *fakeEngine, store cache.Store, cfg config.CatalogConfig) *Client {
	t.Helper()
	c := NewClient(f, f, store, cfg, time.Second)
	c.sleep = func(context.Context, time.Duration) error { return nil }
	return c
}

func TestLookup_ISBN(t *testing.T) {
	f := newFakeEngine()
	f.pages[isbnURL] = string(loadFixture(t, "subject.html"))
	f.final[isbnURL] = subjectURL

	c := newTestClient(t, f, nil, testCatalogConfig())
	rec, err := c.Lookup(context.Background(), "978-7-5442-7087-8")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if rec.Title == "" {
		t.Fatal("expected non-empty title")
	}
	if rec.SourceURL != subjectURL {
		t.Errorf("SourceURL = %q, want %q", rec.SourceURL, subjectURL)
	}
	if !strings.Contains(rec.CoverURL, "/l/") {
		t.Errorf("CoverURL = %q, want large size", rec.CoverURL)
	}
}

func TestLookup_Title(t *testing.T) {
	f := newFakeEngine()
	f.pages[searchURLHit] = string(loadFixture(t, "search.html"))
	f.pages[subjectURL] = string(loadFixture(t, "subject.html"))

	c := newTestClient(t, f, nil, testCatalogConfig())
	rec, err := c.Lookup(context.Background(), "  解忧杂货店 ")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if rec.ISBN != "9787544270878" {
		t.Errorf("ISBN = %q", rec.ISBN)
	}
	if len(rec.Authors) != 1 || rec.Authors[0] != "[日] 东野圭吾" {
		t.Errorf("Authors = %v", rec.Authors)
	}
}

func TestLookup_Errors(t *testing.T) {
	tests := []struct {
		name  string
		query string
		setup func(f *fakeEngine)
		want  string
	}{
		{
			name:  "empty query",
			query: "  ",
			want:  models.ErrCodeInvalidInput,
		},
		{
			name:  "unmatched title",
			query: "xyz",
			setup: func(f *fakeEngine) {
				f.pages["https://www.douban.com/search?cat=1001&q=xyz"] = string(loadFixture(t, "search_empty.html"))
				f.pages["https://movie.douban.com/subject/1292052/"] = string(loadFixture(t, "subject.html"))
				f.pages["https://book.douban.com/subject/1007305/"] = string(loadFixture(t, "subject.html"))
			},
			want: models.ErrCodeNotFound,
		},
		{
			name:  "only hit is a movie",
			query: "xyz",
			setup: func(f *fakeEngine) {
				f.pages["https://www.douban.com/search?cat=1001&q=xyz"] = string(loadFixture(t, "search_other_site.html"))
				f.pages["https://movie.douban.com/subject/1292052/"] = string(loadFixture(t, "subject.html"))
			},
			want: models.ErrCodeNotFound,
		},
		{
			name:  "unknown isbn",
			query: "9780000000000",
			want:  models.ErrCodeNotFound,
		},
		{
			name:  "detail page without title",
			query: "9787544270878",
			setup: func(f *fakeEngine) {
				f.pages[isbnURL] = "<html><head><title>登录跳转</title></head><body></body></html>"
			},
			want: models.ErrCodeNotFound,
		},
		{
			name:  "upstream failure",
			query: "9787544270878",
			setup: func(f *fakeEngine) {
				f.errs[isbnURL] = &engine.StatusError{URL: isbnURL, StatusCode: 503}
			},
			want: models.ErrCodeFetch,
		},
		{
			name:  "upstream timeout",
			query: "9787544270878",
			setup: func(f *fakeEngine) {
				f.errs[isbnURL] = context.DeadlineExceeded
			},
			want: models.ErrCodeTimeout,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFakeEngine()
			if tt.setup != nil {
				tt.setup(f)
			}
			c := newTestClient(t, f, nil, testCatalogConfig())
			rec, err := c.Lookup(context.Background(), tt.query)
			if err == nil {
				t.Fatalf("expected error, got %+v", rec)
			}
			if got := models.CodeOf(err); got != tt.want {
				t.Errorf("code = %s, want %s (err: %v)", got, tt.want, err)
			}
		})
	}
}

func TestLookup_Options(t *testing.T) {
	f := newFakeEngine()
	f.pages[isbnURL] = string(loadFixture(t, "subject.html"))

	cfg := testCatalogConfig()
	cfg.NormalizeDate = true
	cfg.HalfRating = true
	c := newTestClient(t, f, nil, cfg)

	rec, err := c.Lookup(context.Background(), "9787544270878")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if rec.PubDate != "2014-5-1" {
		t.Errorf("PubDate = %q, want 2014-5-1", rec.PubDate)
	}
	if rec.Rating != "4.25" {
		t.Errorf("Rating = %q, want 4.25", rec.Rating)
	}
}

func TestLookup_Cached(t *testing.T) {
	f := newFakeEngine()
	f.pages[isbnURL] = string(loadFixture(t, "subject.html"))

	store := cache.NewMemory(8, time.Minute)
	defer store.Close()
	c := newTestClient(t, f, store, testCatalogConfig())

	for i := 0; i < 3; i++ {
		if _, err := c.Lookup(context.Background(), "9787544270878"); err != nil {
			t.Fatalf("Lookup #%d: %v", i, err)
		}
	}
	if n := f.callCount(); n != 1 {
		t.Errorf("upstream fetched %d times, want 1", n)
	}
}

func TestLookup_Delay(t *testing.T) {
	f := newFakeEngine()
	f.pages[isbnURL] = string(loadFixture(t, "subject.html"))

	cfg := testCatalogConfig()
	cfg.DelayMin = 100 * time.Millisecond
	cfg.DelayMax = 500 * time.Millisecond
	c := newTestClient(t, f, nil, cfg)

	var slept []time.Duration
	c.sleep = func(_ context.Context, d time.Duration) error {
		slept = append(slept, d)
		return nil
	}
	if _, err := c.Lookup(context.Background(), "9787544270878"); err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if len(slept) != 1 {
		t.Fatalf("slept %d times, want 1", len(slept))
	}
	if slept[0] < cfg.DelayMin || slept[0] > cfg.DelayMax {
		t.Errorf("delay %v outside [%v, %v]", slept[0], cfg.DelayMin, cfg.DelayMax)
	}
}

func TestLookup_DelayCanceled(t *testing.T) {
	f := newFakeEngine()
	cfg := testCatalogConfig()
	cfg.DelayMax = time.Hour
	c := NewClient(f, f, nil, cfg, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.Lookup(ctx, "9787544270878")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled in chain, got %v", err)
	}
	if f.callCount() != 0 {
		t.Error("no fetch should happen after cancellation")
	}
}

func TestCover(t *testing.T) {
	f := newFakeEngine()
	f.pages[isbnURL] = string(loadFixture(t, "subject.html"))
	f.images["https://img9.doubanio.com/view/subject/l/public/s27264181.jpg"] = &engine.RawResult{
		Body:        []byte("\xff\xd8\xffjpeg"),
		ContentType: "image/jpeg",
		StatusCode:  200,
	}

	c := newTestClient(t, f, nil, testCatalogConfig())
	img, err := c.Cover(context.Background(), "9787544270878")
	if err != nil {
		t.Fatalf("Cover: %v", err)
	}
	if img.ContentType != "image/jpeg" {
		t.Errorf("ContentType = %q", img.ContentType)
	}
	if img.ISBN != "9787544270878" {
		t.Errorf("ISBN = %q", img.ISBN)
	}
	if len(img.Data) == 0 {
		t.Error("expected image bytes")
	}
}

func TestCover_Errors(t *testing.T) {
	f := newFakeEngine()
	f.pages["https://book.douban.com/isbn/9787536692930"] = string(loadFixture(t, "subject_sparse.html"))
	f.pages[isbnURL] = string(loadFixture(t, "subject.html"))
	f.images["https://img9.doubanio.com/view/subject/l/public/s27264181.jpg"] = &engine.RawResult{
		Body:        []byte("<html></html>"),
		ContentType: "text/html",
	}
	c := newTestClient(t, f, nil, testCatalogConfig())

	tests := []struct {
		isbn string
		want string
	}{
		{"not-an-isbn", models.ErrCodeInvalidInput},
		{"9787536692930", models.ErrCodeNotFound},
		{"9787544270878", models.ErrCodeFetch},
	}
	for _, tt := range tests {
		_, err := c.Cover(context.Background(), tt.isbn)
		if got := models.CodeOf(err); got != tt.want {
			t.Errorf("Cover(%q) code = %s, want %s (err: %v)", tt.isbn, got, tt.want, err)
		}
	}

	_, err := c.Cover(context.Background(), "9787X44270878")
	if err == nil || !strings.Contains(err.Error(), "X allowed") {
		t.Errorf("invalid isbn message = %v", err)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"lookup error passes through", models.InvalidInput("x"), models.ErrCodeInvalidInput},
		{"upstream 404", &engine.StatusError{StatusCode: 404}, models.ErrCodeNotFound},
		{"upstream 500", &engine.StatusError{StatusCode: 500}, models.ErrCodeFetch},
		{"deadline", context.DeadlineExceeded, models.ErrCodeTimeout},
		{"other", errors.New("connection reset"), models.ErrCodeFetch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := models.CodeOf(classify(tt.err, "msg")); got != tt.want {
				t.Errorf("classify code = %s, want %s", got, tt.want)
			}
		})
	}
}
