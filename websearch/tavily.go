package websearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"golang.org/x/time/rate"

	"github.com/junkim100/homebrew-trace-sub001/schemas"
)

const tavilyEndpoint = "https://api.tavily.com/search"

// TavilyProvider implements Provider over the Tavily search API.
type TavilyProvider struct {
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// TavilyOption configures a TavilyProvider.
type TavilyOption func(*TavilyProvider)

// WithTavilyHTTPClient overrides the default http.Client (10s timeout).
func WithTavilyHTTPClient(c *http.Client) TavilyOption {
	return func(p *TavilyProvider) { p.httpClient = c }
}

// WithTavilyRateLimiter bounds outbound request rate.
func WithTavilyRateLimiter(l *rate.Limiter) TavilyOption {
	return func(p *TavilyProvider) { p.limiter = l }
}

// NewTavilyProvider builds a provider reading TAVILY_API_KEY from the
// environment when apiKey is empty. An empty key is not an error: Available
// simply reports false and callers fall back to the unconfigured-provider
// contract.
func NewTavilyProvider(apiKey string, opts ...TavilyOption) *TavilyProvider {
	if apiKey == "" {
		apiKey = os.Getenv("TAVILY_API_KEY")
	}
	p := &TavilyProvider{
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Available implements Provider.
func (p *TavilyProvider) Available() bool {
	return p.apiKey != ""
}

type tavilyRequest struct {
	APIKey        string `json:"api_key"`
	Query         string `json:"query"`
	MaxResults    int    `json:"max_results"`
	SearchDepth   string `json:"search_depth"`
	IncludeAnswer bool   `json:"include_answer"`
}

type tavilyResult struct {
	Title   string  `json:"title"`
	URL     string  `json:"url"`
	Content string  `json:"content"`
	Score   float64 `json:"score"`
}

type tavilyResponse struct {
	Results []tavilyResult `json:"results"`
}

// Search implements Provider.
func (p *TavilyProvider) Search(ctx context.Context, query string, maxResults int) ([]schemas.WebResult, []schemas.WebCitation, error) {
	if p.limiter != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			return nil, nil, fmt.Errorf("websearch: rate limiter: %w", err)
		}
	}
	if maxResults <= 0 {
		maxResults = 5
	}

	body, err := json.Marshal(tavilyRequest{
		APIKey:      p.apiKey,
		Query:       query,
		MaxResults:  maxResults,
		SearchDepth: "basic",
	})
	if err != nil {
		return nil, nil, fmt.Errorf("websearch: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tavilyEndpoint, bytes.NewReader(body))
	if err != nil {
		return nil, nil, fmt.Errorf("websearch: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("websearch: tavily request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, nil, fmt.Errorf("websearch: tavily returned status %d", resp.StatusCode)
	}

	var parsed tavilyResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, nil, fmt.Errorf("websearch: decode response: %w", err)
	}

	accessedAt := nowRFC3339()
	results := make([]schemas.WebResult, 0, len(parsed.Results))
	citations := make([]schemas.WebCitation, 0, len(parsed.Results))
	for _, r := range parsed.Results {
		results = append(results, schemas.WebResult{
			Title:          r.Title,
			URL:            r.URL,
			Snippet:        truncate(r.Content, resultSnippetMaxLen),
			RelevanceScore: r.Score,
		})
		citations = append(citations, schemas.WebCitation{
			URL:        r.URL,
			Title:      r.Title,
			AccessedAt: accessedAt,
			Snippet:    truncate(r.Content, citationSnippetMaxLen),
		})
	}
	return results, citations, nil
}
