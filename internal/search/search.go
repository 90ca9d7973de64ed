// Package search wraps the external web search capability behind a small
// interface so the research coordinator can be tested without a network.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Result is one search hit.
type Result struct {
	URL     string `json:"url"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Searcher executes a single query. An error means the query itself failed;
// an empty slice means the query ran but found nothing.
type Searcher interface {
	Search(ctx context.Context, query string) ([]Result, error)
}

// HTTPSearcher calls a search service over HTTP with client-side rate
// limiting so concurrent query fan-outs do not overwhelm the provider quota.
type HTTPSearcher struct {
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
	logger  *zap.Logger
}

// NewHTTPSearcher builds a searcher. ratePerSec and burst bound outbound
// queries; timeout of zero leaves the HTTP call unbounded.
func NewHTTPSearcher(baseURL string, ratePerSec float64, burst int, timeout time.Duration, logger *zap.Logger) *HTTPSearcher {
	if burst < 1 {
		burst = 1
	}
	return &HTTPSearcher{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(rate.Limit(ratePerSec), burst),
		logger:  logger,
	}
}

type searchRequest struct {
	Query      string `json:"query"`
	MaxResults int    `json:"max_results"`
}

type searchResponse struct {
	Results []Result `json:"results"`
}

// Search runs one query after acquiring a rate token.
func (s *HTTPSearcher) Search(ctx context.Context, query string) ([]Result, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	body, err := json.Marshal(searchRequest{Query: query, MaxResults: 5})
	if err != nil {
		return nil, fmt.Errorf("marshal search request: %w", err)
	}

	url := fmt.Sprintf("%s/v1/search", s.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call search service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("search service returned status %d: %s", resp.StatusCode, string(b))
	}

	var sr searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	s.logger.Debug("Search query executed",
		zap.String("query", query),
		zap.Int("results", len(sr.Results)),
	)
	return sr.Results, nil
}
