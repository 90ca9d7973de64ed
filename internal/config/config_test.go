package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "nope.yaml"))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.Interview.MinQuestions)
	assert.Equal(t, 10, cfg.Interview.MaxQuestions)
	assert.Equal(t, 4, cfg.Research.MinCredibility)
	assert.Equal(t, 7.0, cfg.Consistency.MinScore)
	assert.Equal(t, 1, cfg.Consistency.MaxFixAttempts)
	assert.Equal(t, 24*time.Hour, cfg.Redis.TTL)
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "validately.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
interview:
  max_questions: 12
research:
  queries_per_tier:
    premium: 8
consistency:
  max_fix_attempts: 3
`), 0o644))
	t.Setenv("CONFIG_PATH", path)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 12, cfg.Interview.MaxQuestions)
	assert.Equal(t, 5, cfg.Interview.MinQuestions, "untouched keys keep defaults")
	assert.Equal(t, 8, cfg.Research.QueriesFor("premium"))
	assert.Equal(t, 3, cfg.Consistency.MaxFixAttempts)
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "validately.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
interview:
  min_questions: 8
  max_questions: 3
`), 0o644))
	t.Setenv("CONFIG_PATH", path)

	_, err := Load()
	assert.Error(t, err)
}

func TestValidateBounds(t *testing.T) {
	base := func() *Config {
		return &Config{
			Interview:   InterviewConfig{MinQuestions: 5, MaxQuestions: 10},
			Research:    ResearchConfig{MinCredibility: 4},
			Consistency: ConsistencyConfig{MaxFixAttempts: 1},
		}
	}

	assert.NoError(t, base().Validate())

	c := base()
	c.Interview.MinQuestions = 0
	assert.Error(t, c.Validate())

	c = base()
	c.Research.MinCredibility = 11
	assert.Error(t, c.Validate())

	c = base()
	c.Consistency.MaxFixAttempts = -1
	assert.Error(t, c.Validate())

	c = base()
	c.Consistency.MaxFixAttempts = 0
	assert.NoError(t, c.Validate(), "zero disables repair, still valid")
}

func TestStoreSwapsUnderConcurrentReads(t *testing.T) {
	first := &Config{Interview: InterviewConfig{MaxQuestions: 10}}
	second := &Config{Interview: InterviewConfig{MaxQuestions: 12}}
	store := NewStore(first)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 1000; i++ {
			got := store.Get().Interview.MaxQuestions
			assert.True(t, got == 10 || got == 12, "saw %d", got)
		}
	}()
	for i := 0; i < 1000; i++ {
		if i%2 == 0 {
			store.Set(second)
		} else {
			store.Set(first)
		}
	}
	<-done

	store.Set(second)
	assert.Equal(t, 12, store.Get().Interview.MaxQuestions)
}

func TestQueriesForFallsBackToDefault(t *testing.T) {
	r := ResearchConfig{
		QueriesPerTier: map[string]int{"premium": 6},
		DefaultQueries: 3,
	}
	assert.Equal(t, 6, r.QueriesFor("premium"))
	assert.Equal(t, 3, r.QueriesFor("basic"))
	assert.Equal(t, 3, r.QueriesFor(""))
}

func TestDatabaseDSN(t *testing.T) {
	d := DatabaseConfig{
		Host: "db", Port: 5432, User: "u", Password: "p",
		Database: "validately", SSLMode: "disable",
	}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=validately sslmode=disable", d.DSN())
}
