// Package research coordinates web research: query generation, concurrent
// execution, credibility filtering, and the escalation chain that
// progressively loosens filtering when results come back empty.
package research

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/validately/orchestrator/internal/assess"
	"github.com/validately/orchestrator/internal/config"
	"github.com/validately/orchestrator/internal/metrics"
	"github.com/validately/orchestrator/internal/research/credibility"
	"github.com/validately/orchestrator/internal/search"
)

// Source tags prepended to aggregated snippets so report generators can see
// what kind of evidence backs them.
const (
	tagHighCredibility = "[HIGH CREDIBILITY SOURCE]"
	tagBroadRetry      = "[BROAD RETRY SOURCE]"
	tagCreativeRetry   = "[CREATIVE RETRY SOURCE]"
)

const sentinelPrefix = "No credible research data available for "

// Sentinel is the distinguishable no-data marker returned when every
// escalation level comes back empty. Callers must treat it as a failure
// marker, not as content.
func Sentinel(objective string) string {
	return sentinelPrefix + objective + "."
}

// IsSentinel reports whether text is (or embeds) the no-data marker.
func IsSentinel(text string) bool {
	return text == "" || strings.Contains(text, sentinelPrefix)
}

// Item is one credibility-scored search result. Items live only for the
// duration of an aggregation pass; they are never persisted.
type Item struct {
	URL         string
	Content     string
	Credibility int
	Level       credibility.Level
}

// Options tune one research pass.
type Options struct {
	MaxLength      int
	MinCredibility int
	NumQueries     int
}

// Coordinator runs research passes against the injected capabilities.
type Coordinator struct {
	assess  assess.Client
	search  search.Searcher
	cfg     config.ResearchConfig
	metrics metrics.Sink
	logger  *zap.Logger
}

// NewCoordinator wires a coordinator.
func NewCoordinator(a assess.Client, s search.Searcher, cfg config.ResearchConfig, sink metrics.Sink, logger *zap.Logger) *Coordinator {
	return &Coordinator{assess: a, search: s, cfg: cfg, metrics: sink, logger: logger}
}

// generateQueries asks the assessment capability for n diverse queries.
func (c *Coordinator) generateQueries(ctx context.Context, description, objective string, n int) ([]string, error) {
	var queries []string
	err := c.assess.InvokeStructured(ctx, assess.PromptSpec{Name: "query_generation"}, map[string]any{
		"description": description,
		"objective":   objective,
		"num_queries": n,
	}, &queries)
	if err != nil {
		return nil, fmt.Errorf("generate queries: %w", err)
	}
	if len(queries) > n {
		queries = queries[:n]
	}
	return queries, nil
}

// runQueries executes all queries concurrently. A failed query logs and
// contributes nothing; it never cancels its siblings.
func (c *Coordinator) runQueries(ctx context.Context, queries []string) []search.Result {
	results := make([][]search.Result, len(queries))
	var wg sync.WaitGroup
	for i, q := range queries {
		wg.Add(1)
		go func(i int, q string) {
			defer wg.Done()
			res, err := c.search.Search(ctx, q)
			if err != nil {
				c.logger.Warn("Search query failed", zap.String("query", q), zap.Error(err))
				c.metrics.ResearchQuery("error")
				return
			}
			c.metrics.ResearchQuery("ok")
			results[i] = res
		}(i, q)
	}
	wg.Wait()

	var flat []search.Result
	for _, r := range results {
		flat = append(flat, r...)
	}
	return flat
}

// scoreAndFilter attaches credibility and keeps items at or above the
// minimum.
func scoreAndFilter(raw []search.Result, minCredibility int) []Item {
	var items []Item
	for _, r := range raw {
		score, level := credibility.Score(r.URL)
		if score >= minCredibility {
			items = append(items, Item{URL: r.URL, Content: r.Content, Credibility: score, Level: level})
		}
	}
	return items
}

// aggregate dedups by normalized content prefix, sorts by credibility
// descending, and concatenates up to maxLength, tagging high-credibility
// snippets.
func (c *Coordinator) aggregate(items []Item, maxLength int) string {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Credibility > items[j].Credibility
	})

	seen := make(map[string]bool)
	var parts []string
	for _, it := range items {
		if it.Content == "" {
			continue
		}
		key := firstRunes(strings.ToLower(it.Content), 100)
		if seen[key] {
			continue
		}
		seen[key] = true

		snippet := firstRunes(it.Content, c.cfg.SnippetLimit)
		if it.Level == credibility.LevelHigh {
			snippet = tagHighCredibility + "\n" + snippet
		}
		parts = append(parts, snippet)
	}

	combined := strings.Join(parts, "\n\n---\n\n")
	if maxLength > 0 {
		combined = firstRunes(combined, maxLength)
	}
	return combined
}

// firstRunes truncates s to at most n runes, never splitting a multi-byte
// character the way a byte slice would.
func firstRunes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

// retryPass runs a single-query retry (broad or creative) and accepts every
// result unscored, tagged with the given marker.
func (c *Coordinator) retryPass(ctx context.Context, description, objective, tag string) string {
	queries, err := c.generateQueries(ctx, description, objective, 1)
	if err != nil || len(queries) == 0 {
		c.logger.Warn("Retry query generation failed", zap.String("tag", tag), zap.Error(err))
		return ""
	}

	results, err := c.search.Search(ctx, queries[0])
	if err != nil {
		c.logger.Warn("Retry search failed", zap.String("query", queries[0]), zap.Error(err))
		c.metrics.ResearchQuery("error")
		return ""
	}
	c.metrics.ResearchQuery("ok")

	var parts []string
	for _, r := range results {
		if r.Content == "" {
			continue
		}
		snippet := firstRunes(r.Content, c.cfg.RetrySnippet)
		parts = append(parts, tag+" "+snippet)
	}
	return strings.Join(parts, "\n\n---\n\n")
}

// Research runs one full pass for a single objective, escalating through
// strict filtering, lenient re-scoring, a broad retry, and a creative retry
// before falling back to the sentinel.
func (c *Coordinator) Research(ctx context.Context, description, objective string, opts Options) (string, error) {
	if opts.MinCredibility == 0 {
		opts.MinCredibility = c.cfg.MinCredibility
	}
	if opts.MaxLength == 0 {
		opts.MaxLength = c.cfg.ContentLimit
	}
	if opts.NumQueries == 0 {
		opts.NumQueries = c.cfg.DefaultQueries
	}

	queries, err := c.generateQueries(ctx, description, objective, opts.NumQueries)
	if err != nil {
		return "", err
	}
	c.logger.Info("Executing research queries",
		zap.String("objective", objective),
		zap.Int("queries", len(queries)),
	)

	raw := c.runQueries(ctx, queries)

	// Level 1: strict credibility filtering.
	items := scoreAndFilter(raw, opts.MinCredibility)

	// Level 2: lenient. Raw results exist but none passed the bar; re-score
	// and accept everything.
	if len(items) == 0 && len(raw) > 0 {
		c.logger.Warn("No results met credibility threshold, accepting all",
			zap.String("objective", objective),
			zap.Int("min_credibility", opts.MinCredibility),
		)
		c.metrics.ResearchEscalation("lenient")
		items = scoreAndFilter(raw, 1)
	}

	combined := c.aggregate(items, opts.MaxLength)

	// Level 3: broad retry with one simplified query.
	if IsSentinel(combined) {
		c.logger.Warn("Null research result, attempting broad retry", zap.String("objective", objective))
		c.metrics.ResearchEscalation("broad")
		combined = c.retryPass(ctx, description,
			fmt.Sprintf("Broad overview of %s (general terms only)", objective), tagBroadRetry)
	}

	// Level 4: creative retry with alternate industry-jargon phrasing.
	if IsSentinel(combined) {
		c.logger.Warn("Broad retry empty, attempting creative retry", zap.String("objective", objective))
		c.metrics.ResearchEscalation("creative")
		combined = c.retryPass(ctx, description,
			fmt.Sprintf("Creative synonymous terms for %s (industry jargon, alternative phrasing)", objective), tagCreativeRetry)
	}

	// Level 5: terminal sentinel.
	if IsSentinel(combined) {
		c.metrics.ResearchEscalation("terminal")
		return Sentinel(objective), nil
	}

	return firstRunes(combined, opts.MaxLength), nil
}

// MultiObjective runs Research for every objective concurrently and returns
// the results keyed by objective. A failed objective carries the sentinel
// rather than failing the batch.
func (c *Coordinator) MultiObjective(ctx context.Context, description string, objectives map[string]string, opts Options) map[string]string {
	out := make(map[string]string, len(objectives))
	var mu sync.Mutex
	var wg sync.WaitGroup

	for key, objective := range objectives {
		wg.Add(1)
		go func(key, objective string) {
			defer wg.Done()
			content, err := c.Research(ctx, description, objective, opts)
			if err != nil {
				c.logger.Warn("Research objective failed",
					zap.String("objective", key),
					zap.Error(err),
				)
				content = Sentinel(objective)
			}
			mu.Lock()
			out[key] = content
			mu.Unlock()
		}(key, objective)
	}
	wg.Wait()
	return out
}

// Comprehensive gathers the upfront research bundle for paid tiers: the
// fixed topic set, or topics mapped from the requested modules for the
// custom tier. The BMC module widens to market and competition topics since
// the canvas depends on both.
func (c *Coordinator) Comprehensive(ctx context.Context, description, geography, industry, tier string, requestedModules []string) (string, error) {
	topicMap := Topics(geography, industry)

	var selected []string
	if len(requestedModules) > 0 {
		seen := make(map[string]bool)
		add := func(mod string) {
			if t, ok := topicMap[mod]; ok && !seen[t] {
				seen[t] = true
				selected = append(selected, mod)
			}
		}
		for _, mod := range requestedModules {
			add(mod)
		}
		for _, mod := range requestedModules {
			if mod == "mod_bmc" {
				add("mod_market")
				add("mod_comp")
			}
		}
		if len(selected) == 0 {
			c.logger.Warn("No research topics mapped from requested modules, defaulting to market")
			selected = []string{"mod_market"}
		}
	} else {
		selected = comprehensiveTopicSet
	}

	objectives := make(map[string]string, len(selected))
	for _, mod := range selected {
		objectives[mod] = topicMap[mod]
	}

	results := c.MultiObjective(ctx, description, objectives, Options{
		MaxLength:  c.cfg.ContentLimit,
		NumQueries: c.cfg.QueriesFor(tier),
	})

	var valid []string
	for _, mod := range selected {
		if content := results[mod]; !IsSentinel(content) {
			valid = append(valid, content)
		}
	}
	if len(valid) == 0 {
		// A total search outage degrades to generation over an empty
		// corpus; the modules fall back to the model's prior knowledge.
		c.logger.Warn("Comprehensive research produced no data for any topic",
			zap.Int("topics", len(selected)),
		)
		return "", nil
	}

	combined := strings.Join(valid, "\n\n---\n\n")
	c.logger.Info("Comprehensive research complete",
		zap.Int("topics", len(valid)),
		zap.Int("chars", len(combined)),
	)
	return combined, nil
}
