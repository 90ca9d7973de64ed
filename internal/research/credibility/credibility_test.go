package credibility

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHighTrustDomainIgnoresPathAndQuery(t *testing.T) {
	urls := []string{
		"https://www.statista.com",
		"https://www.statista.com/statistics/1234/market-size/",
		"https://statista.com/outlook?ref=campaign&utm_source=x",
	}
	for _, u := range urls {
		score, level := Score(u)
		assert.Equal(t, 10, score, u)
		assert.Equal(t, LevelHigh, level, u)
	}
}

func TestTrustTableScores(t *testing.T) {
	cases := []struct {
		url   string
		score int
		level Level
	}{
		{"https://www.gartner.com/en/research", 10, LevelHigh},
		{"https://hbr.org/2026/01/article", 9, LevelHigh},
		{"https://techcrunch.com/2026/03/startup-news", 8, LevelHigh},
		{"https://www.forbes.com/sites/foo", 7, LevelMedium},
		{"https://en.wikipedia.org/wiki/Market", 6, LevelMedium},
		{"https://www.linkedin.com/pulse/post", 6, LevelMedium},
	}
	for _, tc := range cases {
		score, level := Score(tc.url)
		assert.Equal(t, tc.score, score, tc.url)
		assert.Equal(t, tc.level, level, tc.url)
	}
}

func TestLowTrustPatterns(t *testing.T) {
	urls := []string{
		"https://blog.example.com/post",
		"https://something.blogspot.com/2024/01/post.html",
		"https://www.reddit.com/r/startups/comments/abc",
		"https://www.quora.com/What-is-the-market",
	}
	for _, u := range urls {
		score, level := Score(u)
		assert.Equal(t, 3, score, u)
		assert.Equal(t, LevelLow, level, u)
	}
}

func TestUnknownDomainHeuristics(t *testing.T) {
	cases := []struct {
		url   string
		score int
		level Level
	}{
		{"https://data.example.gov/stats", 9, LevelHigh},
		{"https://cs.someuniversity.edu/papers", 9, LevelHigh},
		{"https://somefoundation.org/report", 7, LevelMedium},
		{"https://industryjournal.io/article", 7, LevelMedium},
		{"https://national-statistics.io/data", 7, LevelMedium},
		{"https://cheap-deals.io/offers", 2, LevelLow},
		{"https://www.best-cheap-software-reviews-site.net", 2, LevelLow},
		{"https://some-very-hyphen-ated-domain.net", 4, LevelLow},
		{"https://example.net/page", 5, LevelUnknown},
	}
	for _, tc := range cases {
		score, level := Score(tc.url)
		assert.Equal(t, tc.score, score, tc.url)
		assert.Equal(t, tc.level, level, tc.url)
	}
}

func TestEmptyURL(t *testing.T) {
	score, level := Score("")
	assert.Equal(t, 5, score)
	assert.Equal(t, LevelUnknown, level)
}

func TestScoreIsPure(t *testing.T) {
	u := "https://www.mckinsey.com/industries/report"
	first, firstLevel := Score(u)
	for i := 0; i < 100; i++ {
		s, l := Score(fmt.Sprintf("%s?run=%d", u, i))
		assert.Equal(t, first, s)
		assert.Equal(t, firstLevel, l)
	}
}
