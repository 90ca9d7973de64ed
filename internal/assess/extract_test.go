package assess

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSONFencedBlock(t *testing.T) {
	text := "Here is the result:\n```json\n{\"score\": 7, \"pass\": true}\n```\nLet me know."
	raw, err := ExtractJSON(text)
	require.NoError(t, err)
	assert.JSONEq(t, `{"score": 7, "pass": true}`, string(raw))
}

func TestExtractJSONFencedBlockNoLanguage(t *testing.T) {
	text := "```\n[\"query one\", \"query two\"]\n```"
	raw, err := ExtractJSON(text)
	require.NoError(t, err)
	assert.JSONEq(t, `["query one", "query two"]`, string(raw))
}

func TestExtractJSONDirectParse(t *testing.T) {
	raw, err := ExtractJSON(`  {"consistency_score": 8, "inconsistencies": []}  `)
	require.NoError(t, err)
	assert.JSONEq(t, `{"consistency_score": 8, "inconsistencies": []}`, string(raw))
}

func TestExtractJSONEmbeddedObject(t *testing.T) {
	text := `The analysis suggests {"quality_score": 6, "note": "braces {inside} strings are fine"} overall.`
	raw, err := ExtractJSON(text)
	require.NoError(t, err)
	assert.JSONEq(t, `{"quality_score": 6, "note": "braces {inside} strings are fine"}`, string(raw))
}

func TestExtractJSONEmbeddedArray(t *testing.T) {
	text := `Queries: ["market size 2026", "competitor pricing"] as requested.`
	raw, err := ExtractJSON(text)
	require.NoError(t, err)
	assert.JSONEq(t, `["market size 2026", "competitor pricing"]`, string(raw))
}

func TestExtractJSONOrderPrefersFence(t *testing.T) {
	// A fenced block wins over loose JSON elsewhere in the text.
	text := "{\"loose\": 1}\n```json\n{\"fenced\": 2}\n```"
	raw, err := ExtractJSON(text)
	require.NoError(t, err)
	assert.JSONEq(t, `{"fenced": 2}`, string(raw))
}

func TestExtractJSONFailures(t *testing.T) {
	for _, text := range []string{"", "   ", "no json here at all", "{unbalanced"} {
		_, err := ExtractJSON(text)
		assert.Error(t, err, "input %q", text)
	}
}

func TestUnmarshalTyped(t *testing.T) {
	var out struct {
		Score  float64  `json:"score"`
		Issues []string `json:"issues"`
	}
	err := Unmarshal("```json\n{\"score\": 6.5, \"issues\": [\"a\", \"b\"]}\n```", &out)
	require.NoError(t, err)
	assert.Equal(t, 6.5, out.Score)
	assert.Equal(t, []string{"a", "b"}, out.Issues)
}

func TestParseProvider(t *testing.T) {
	p, err := ParseProvider("auto")
	require.NoError(t, err)
	assert.Equal(t, ProviderAuto, p)

	p, err = ParseProvider("secondary")
	require.NoError(t, err)
	assert.Equal(t, ProviderSecondary, p)

	_, err = ParseProvider("gpt-9")
	assert.Error(t, err)
}

func TestProviderResolve(t *testing.T) {
	assert.Equal(t, []Provider{ProviderPrimary, ProviderSecondary}, ProviderAuto.Resolve())
	assert.Equal(t, []Provider{ProviderPrimary}, ProviderPrimary.Resolve())
	assert.Equal(t, []Provider{ProviderSecondary}, ProviderSecondary.Resolve())
}
