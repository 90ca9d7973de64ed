package research

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed topics.yaml
var topicsYAML []byte

type topicCatalog struct {
	Topics map[string]string `yaml:"topics"`
}

var catalog topicCatalog

func init() {
	if err := yaml.Unmarshal(topicsYAML, &catalog); err != nil {
		panic(fmt.Sprintf("parse embedded topic catalog: %v", err))
	}
}

// Topics returns the research instruction per module, with geography and
// industry substituted. Empty context falls back to broad defaults.
func Topics(geography, industry string) map[string]string {
	if geography == "" {
		geography = "the global market"
	}
	if industry == "" {
		industry = "startup"
	}
	out := make(map[string]string, len(catalog.Topics))
	for module, tmpl := range catalog.Topics {
		t := strings.ReplaceAll(tmpl, "{geography}", geography)
		out[module] = strings.ReplaceAll(t, "{industry}", industry)
	}
	return out
}

// ScoringObjectives maps the go/no-go scoring dimensions to research topics.
// Timing reuses the market topic; scalability reuses the risk topic.
func ScoringObjectives(geography, industry string) map[string]string {
	topics := Topics(geography, industry)
	return map[string]string{
		"market_demand": topics["mod_market"],
		"competition":   topics["mod_comp"],
		"timing":        topics["mod_market"],
		"regulatory":    topics["mod_reg"],
		"scalability":   topics["mod_risk"],
	}
}

// comprehensiveTopicSet is the default topic list for the upfront paid-tier
// research pass.
var comprehensiveTopicSet = []string{
	"mod_market", "mod_comp", "mod_finance", "mod_reg", "mod_risk", "mod_gtm", "mod_funding",
}
