package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"text/tabwriter"
	"time"
)

// CLI flags
var (
	apiURL = flag.String("api-url", "http://localhost:8080", "bookmeta API base URL")
	apiKey = flag.String("api-key", "", "API key for authenticated requests")
	runs   = flag.Int("runs", 3, "Number of runs per query for averaging")
	output = flag.String("output", "benchmark-results.json", "JSON output file path")
)

// Test queries covering both lookup paths and a miss.
var testQueries = []struct {
	Label      string
	Query      string
	WantStatus int
}{
	{"ISBN-13", "9787544270878", http.StatusOK},
	{"ISBN-10", "7536692935", http.StatusOK},
	{"Title", "三体", http.StatusOK},
	{"Title (latin)", "The Pragmatic Programmer", http.StatusOK},
	{"Miss", "zzqxj-no-such-book-zzqxj", http.StatusNotFound},
}

// bookRecord mirrors the search response.
type bookRecord struct {
	Title    string   `json:"title"`
	Authors  []string `json:"author"`
	ISBN     string   `json:"isbn"`
	CoverURL string   `json:"cover_url"`
}

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// --- Benchmark result types ---

type runResult struct {
	Run        int    `json:"run"`
	TotalMs    int64  `json:"total_ms"`
	StatusCode int    `json:"status_code"`
	HasTitle   bool   `json:"has_title"`
	LargeCover bool   `json:"large_cover"`
	Success    bool   `json:"success"`
	Error      string `json:"error,omitempty"`
}

type queryAverages struct {
	TotalMs float64 `json:"total_ms"`
	MinMs   int64   `json:"min_ms"`
	MaxMs   int64   `json:"max_ms"`
}

type queryResult struct {
	Query    string         `json:"query"`
	Label    string         `json:"label"`
	Runs     []runResult    `json:"runs"`
	Averages *queryAverages `json:"averages,omitempty"`
}

type benchmarkReport struct {
	Timestamp    string        `json:"timestamp"`
	APIURL       string        `json:"api_url"`
	FetchMode    string        `json:"fetch_mode"`
	RunsPerQuery int           `json:"runs_per_query"`
	Results      []queryResult `json:"results"`
}

func main() {
	flag.Parse()

	fmt.Println("=== bookmeta Benchmark Suite ===")
	fmt.Printf("API URL:     %s\n", *apiURL)
	fmt.Printf("Runs/query:  %d\n", *runs)
	fmt.Printf("Output:      %s\n", *output)
	fmt.Println()

	client := &http.Client{Timeout: 90 * time.Second}

	// Quick connectivity check.
	mode, err := checkAPI(client, *apiURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot reach API at %s: %v\n", *apiURL, err)
		fmt.Fprintf(os.Stderr, "Make sure bookmeta is running (e.g. go run ./cmd/bookmeta)\n")
		os.Exit(1)
	}
	fmt.Printf("Fetch mode:  %s\n\n", mode)

	report := benchmarkReport{
		Timestamp:    time.Now().UTC().Format(time.RFC3339),
		APIURL:       *apiURL,
		FetchMode:    mode,
		RunsPerQuery: *runs,
	}

	for _, q := range testQueries {
		fmt.Printf("Benchmarking [%s] %s ...\n", q.Label, q.Query)
		qr := queryResult{Query: q.Query, Label: q.Label}

		for i := 1; i <= *runs; i++ {
			fmt.Printf("  Run %d/%d ... ", i, *runs)
			rr := benchmarkQuery(client, q.Query, q.WantStatus, i)
			if rr.Success {
				fmt.Printf("OK  %dms  HTTP %d\n", rr.TotalMs, rr.StatusCode)
			} else {
				fmt.Printf("FAILED: %s\n", rr.Error)
			}
			qr.Runs = append(qr.Runs, rr)
		}

		qr.Averages = computeAverages(qr.Runs)
		report.Results = append(report.Results, qr)
		fmt.Println()
	}

	// Print summary table.
	printTable(report.Results)

	// Write JSON report.
	if err := writeJSON(*output, report); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing JSON output: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("\nDetailed results written to %s\n", *output)
}

func checkAPI(client *http.Client, baseURL string) (string, error) {
	resp, err := client.Get(baseURL + "/health")
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var health struct {
		FetchMode string `json:"fetch_mode"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		return "", fmt.Errorf("decode health: %w", err)
	}
	return health.FetchMode, nil
}

func benchmarkQuery(client *http.Client, query string, wantStatus, run int) runResult {
	rr := runResult{Run: run}

	req, err := http.NewRequest(http.MethodGet, *apiURL+"/api/search?"+url.Values{"query": {query}}.Encode(), nil)
	if err != nil {
		rr.Error = fmt.Sprintf("request error: %v", err)
		return rr
	}
	if *apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+*apiKey)
	}

	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		rr.Error = fmt.Sprintf("request failed: %v", err)
		return rr
	}
	defer resp.Body.Close()
	rr.StatusCode = resp.StatusCode

	if resp.StatusCode != http.StatusOK {
		var eb errorBody
		_ = json.NewDecoder(resp.Body).Decode(&eb)
		rr.TotalMs = time.Since(start).Milliseconds()
		rr.Success = resp.StatusCode == wantStatus
		if !rr.Success {
			rr.Error = fmt.Sprintf("HTTP %d [%s] %s", resp.StatusCode, eb.Code, eb.Error)
		}
		return rr
	}

	var rec bookRecord
	if err := json.NewDecoder(resp.Body).Decode(&rec); err != nil {
		rr.Error = fmt.Sprintf("decode error: %v", err)
		return rr
	}
	rr.TotalMs = time.Since(start).Milliseconds()
	rr.HasTitle = rec.Title != ""
	rr.LargeCover = rec.CoverURL == "" || !strings.Contains(rec.CoverURL, "/spic/") && !strings.Contains(rec.CoverURL, "/mpic/")
	rr.Success = wantStatus == http.StatusOK && rr.HasTitle
	if !rr.Success {
		rr.Error = "empty title"
	}
	return rr
}

func computeAverages(runs []runResult) *queryAverages {
	var successCount int
	var avg queryAverages

	for _, r := range runs {
		if !r.Success {
			continue
		}
		if successCount == 0 || r.TotalMs < avg.MinMs {
			avg.MinMs = r.TotalMs
		}
		if r.TotalMs > avg.MaxMs {
			avg.MaxMs = r.TotalMs
		}
		successCount++
		avg.TotalMs += float64(r.TotalMs)
	}

	if successCount == 0 {
		return nil
	}
	avg.TotalMs /= float64(successCount)
	return &avg
}

func printTable(results []queryResult) {
	fmt.Println(strings.Repeat("─", 85))
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Query\tAvg Latency\tMin\tMax\tStatus\n")
	fmt.Fprintf(w, "─────\t───────────\t───\t───\t──────\n")

	for _, r := range results {
		label := truncate(r.Label+": "+r.Query, 40)
		if r.Averages == nil {
			fmt.Fprintf(w, "%s\tFAILED\t-\t-\t-\n", label)
			continue
		}
		fmt.Fprintf(w, "%s\t%dms\t%dms\t%dms\t%d\n",
			label,
			int64(r.Averages.TotalMs),
			r.Averages.MinMs,
			r.Averages.MaxMs,
			dominantStatus(r.Runs),
		)
	}

	w.Flush()
	fmt.Println(strings.Repeat("─", 85))
}

func dominantStatus(runs []runResult) int {
	counts := map[int]int{}
	for _, r := range runs {
		if r.Success {
			counts[r.StatusCode]++
		}
	}
	best, bestCount := 0, 0
	for code, count := range counts {
		if count > bestCount {
			best = code
			bestCount = count
		}
	}
	return best
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}

func writeJSON(path string, report benchmarkReport) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
