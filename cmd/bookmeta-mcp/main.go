package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// bookRecord mirrors the bookmeta search response.
type bookRecord struct {
	Title     string   `json:"title"`
	Authors   []string `json:"author"`
	Publisher string   `json:"publisher"`
	PubDate   string   `json:"pubdate"`
	ISBN      string   `json:"isbn"`
	Rating    string   `json:"rating"`
	CoverURL  string   `json:"cover_url"`
}

// errorResponse mirrors the bookmeta error body.
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func main() {
	apiURL := os.Getenv("BOOKMETA_API_URL")
	if apiURL == "" {
		apiURL = "http://127.0.0.1:8080"
	}
	apiKey := os.Getenv("BOOKMETA_API_KEY")

	s := server.NewMCPServer(
		"bookmeta",
		"0.1.0",
		server.WithToolCapabilities(false),
	)

	lookupTool := mcp.NewTool("lookup_book",
		mcp.WithDescription("Look up a book on Douban by title or ISBN and return its title, authors, publisher, publication date, ISBN, rating and large cover URL."),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("A book title or a 10/13 digit ISBN"),
		),
	)

	s.AddTool(lookupTool, handleLookupBook(apiURL, apiKey))

	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}

func handleLookupBook(apiURL, apiKey string) server.ToolHandlerFunc {
	client := &http.Client{Timeout: 60 * time.Second}

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query, err := request.RequireString("query")
		if err != nil || strings.TrimSpace(query) == "" {
			return mcp.NewToolResultError("query is required"), nil
		}

		rec, err := apiSearch(ctx, client, apiURL, apiKey, query)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(formatBook(rec)), nil
	}
}

// apiSearch calls GET /api/search and decodes the record or the error body.
func apiSearch(ctx context.Context, client *http.Client, apiURL, apiKey, query string) (*bookRecord, error) {
	target := strings.TrimSuffix(apiURL, "/") + "/api/search?" + url.Values{"query": {query}}.Encode()
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if apiKey != "" {
		httpReq.Header.Set("X-API-Key", apiKey)
	}

	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var e errorResponse
		if json.Unmarshal(body, &e) == nil && e.Error != "" {
			return nil, fmt.Errorf("[%s] %s", e.Code, e.Error)
		}
		return nil, fmt.Errorf("API returned HTTP %d", resp.StatusCode)
	}

	var rec bookRecord
	if err := json.Unmarshal(body, &rec); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return &rec, nil
}

func formatBook(b *bookRecord) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Title: %s\n", b.Title)
	if len(b.Authors) > 0 {
		fmt.Fprintf(&sb, "Author: %s\n", strings.Join(b.Authors, " / "))
	}
	for _, f := range []struct{ label, value string }{
		{"Publisher", b.Publisher},
		{"Published", b.PubDate},
		{"ISBN", b.ISBN},
		{"Rating", b.Rating},
		{"Cover", b.CoverURL},
	} {
		if f.value != "" {
			fmt.Fprintf(&sb, "%s: %s\n", f.label, f.value)
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}
