// Package credibility scores the trustworthiness of a source URL. Scoring is
// a pure function over the URL string: known-domain tables first, then
// low-quality patterns, then heuristics for unknown domains.
package credibility

import (
	"regexp"
	"strings"
)

// Level is the coarse trust bucket derived from a score.
type Level string

const (
	LevelHigh    Level = "high"
	LevelMedium  Level = "medium"
	LevelLow     Level = "low"
	LevelUnknown Level = "unknown"
)

// highTrustDomains maps exact domains to fixed scores (7-10).
var highTrustDomains = map[string]int{
	// Consulting & research
	"statista.com":  10,
	"gartner.com":   10,
	"mckinsey.com":  10,
	"bcg.com":       10,
	"bain.com":      10,
	"deloitte.com":  9,
	"pwc.com":       9,
	"kpmg.com":      9,
	"ey.com":        9,
	"forrester.com": 10,
	"idc.com":       9,
	"nielsen.com":   9,
	"accenture.com": 9,
	"capgemini.com": 9,

	// Government & international orgs
	"europa.eu":          10,
	"ec.europa.eu":       10,
	"gov.uk":             10,
	"usa.gov":            10,
	"census.gov":         10,
	"bls.gov":            10,
	"sba.gov":            10,
	"worldbank.org":      10,
	"imf.org":            10,
	"oecd.org":           10,
	"weforum.org":        9,
	"who.int":            10,
	"un.org":             10,
	"bundesregierung.de": 9,
	"insee.fr":           9,
	"destatis.de":        9,

	// Financial & business news
	"bloomberg.com":     9,
	"ft.com":            9,
	"wsj.com":           9,
	"economist.com":     9,
	"reuters.com":       9,
	"cnbc.com":          8,
	"hbr.org":           9,
	"mit.edu":           10,
	"stanford.edu":      10,
	"morningstar.com":   9,
	"investopedia.com":  8,
	"marketwatch.com":   8,
	"finance.yahoo.com": 8,

	// Tech, startup, VC
	"techcrunch.com":      8,
	"crunchbase.com":      9,
	"pitchbook.com":       9,
	"cbinsights.com":      9,
	"sifted.eu":           8,
	"ycombinator.com":     9,
	"a16z.com":            9,
	"sequoiacap.com":      9,
	"news.ycombinator.com": 7,
	"producthunt.com":     7,
	"g2.com":              8,
	"capterra.com":        8,
	"trustradius.com":     8,
	"stackoverflow.com":   7,
	"github.com":          8,
	"tldr.tech":           7,
	"venturebeat.com":     8,
	"wired.com":           8,
	"arstechnica.com":     8,
	"verge.com":           7,
}

// mediumTrustDomains maps exact domains to fixed scores (5-8).
var mediumTrustDomains = map[string]int{
	"forbes.com":         7,
	"businessinsider.com": 7,
	"theinformation.com": 8,
	"theregister.com":    7,
	"zdnet.com":          7,
	"medium.com":         5,
	"linkedin.com":       6,
	"wikipedia.org":      6,
}

// lowTrustPatterns match URLs that fix at score 3 regardless of domain.
var lowTrustPatterns = []*regexp.Regexp{
	regexp.MustCompile(`blog\.`),
	regexp.MustCompile(`\.blogspot\.`),
	regexp.MustCompile(`medium\.com/@`),
	regexp.MustCompile(`quora\.com`),
	regexp.MustCompile(`reddit\.com`),
	regexp.MustCompile(`facebook\.com`),
	regexp.MustCompile(`twitter\.com`),
	regexp.MustCompile(`pinterest\.com`),
}

var positiveKeywords = []string{"journal", "research", "university", "institute", "official", "statistics"}

var negativeKeywords = []string{"best-", "top-", "review", "scam", "cheap", "coupon", "promo"}

// Score rates a URL 1-10 with its trust level. An empty URL scores a neutral
// unknown 5.
func Score(url string) (int, Level) {
	if url == "" {
		return 5, LevelUnknown
	}
	u := strings.ToLower(url)

	for domain, score := range highTrustDomains {
		if strings.Contains(u, domain) {
			return score, LevelHigh
		}
	}
	for domain, score := range mediumTrustDomains {
		if strings.Contains(u, domain) {
			return score, LevelMedium
		}
	}
	for _, p := range lowTrustPatterns {
		if p.MatchString(u) {
			return 3, LevelLow
		}
	}
	return scoreUnknown(u)
}

// scoreUnknown applies heuristics for domains outside the trust tables.
func scoreUnknown(u string) (int, Level) {
	if strings.Contains(u, ".gov") || strings.Contains(u, ".mil") {
		return 9, LevelHigh
	}
	if strings.Contains(u, ".edu") || strings.Contains(u, ".ac.uk") {
		return 9, LevelHigh
	}
	if strings.Contains(u, ".org") {
		return 7, LevelMedium
	}
	for _, kw := range positiveKeywords {
		if strings.Contains(u, kw) {
			return 7, LevelMedium
		}
	}
	for _, kw := range negativeKeywords {
		if strings.Contains(u, kw) {
			return 2, LevelLow
		}
	}
	if strings.Count(u, "-") > 3 {
		return 4, LevelLow
	}
	return 5, LevelUnknown
}
