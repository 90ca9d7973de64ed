package config

import (
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Config holds every tunable for the validation orchestrator. All values can
// be overridden from the config file or VALIDATELY_* environment variables.
type Config struct {
	Interview   InterviewConfig   `mapstructure:"interview"`
	Research    ResearchConfig    `mapstructure:"research"`
	Consistency ConsistencyConfig `mapstructure:"consistency"`
	External    ExternalConfig    `mapstructure:"external"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Redis       RedisConfig       `mapstructure:"redis"`
	Webhook     WebhookConfig     `mapstructure:"webhook"`
}

// InterviewConfig controls the clarifying-question loop.
type InterviewConfig struct {
	MinQuestions int `mapstructure:"min_questions"`
	MaxQuestions int `mapstructure:"max_questions"`
}

// ResearchConfig controls query fan-out, credibility filtering, and content
// budgets for aggregated research text.
type ResearchConfig struct {
	MinCredibility  int            `mapstructure:"min_credibility"`
	ContentLimit    int            `mapstructure:"content_limit"`
	SnippetLimit    int            `mapstructure:"snippet_limit"`
	RetrySnippet    int            `mapstructure:"retry_snippet"`
	QueriesPerTier  map[string]int `mapstructure:"queries_per_tier"`
	DefaultQueries  int            `mapstructure:"default_queries"`
	SearchRateLimit float64        `mapstructure:"search_rate_limit"`
	SearchBurst     int            `mapstructure:"search_burst"`
}

// QueriesFor returns the query fan-out for a tier, falling back to the
// configured default when the tier is unknown.
func (r ResearchConfig) QueriesFor(tier string) int {
	if n, ok := r.QueriesPerTier[tier]; ok && n > 0 {
		return n
	}
	return r.DefaultQueries
}

// ConsistencyConfig bounds the cross-module verify-and-fix cycle.
type ConsistencyConfig struct {
	MinScore       float64 `mapstructure:"min_score"`
	MaxIssues      int     `mapstructure:"max_issues"`
	MaxFixAttempts int     `mapstructure:"max_fix_attempts"`
}

// ExternalConfig covers the outbound capability adapters. CallTimeout of zero
// means no timeout is enforced anywhere in the fan-out paths; it is surfaced
// here as an explicit knob rather than a hidden constant.
type ExternalConfig struct {
	AssessorURL string        `mapstructure:"assessor_url"`
	SearchURL   string        `mapstructure:"search_url"`
	CallTimeout time.Duration `mapstructure:"call_timeout"`
}

// DatabaseConfig is the journey store connection.
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
	SSLMode  string `mapstructure:"ssl_mode"`
}

// DSN renders a lib/pq connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Database, d.SSLMode)
}

// RedisConfig is the research cache connection.
type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// WebhookConfig is the best-effort report-ready notification target.
type WebhookConfig struct {
	URL     string        `mapstructure:"url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("interview.min_questions", 5)
	v.SetDefault("interview.max_questions", 10)

	v.SetDefault("research.min_credibility", 4)
	v.SetDefault("research.content_limit", 6000)
	v.SetDefault("research.snippet_limit", 1500)
	v.SetDefault("research.retry_snippet", 1000)
	v.SetDefault("research.default_queries", 2)
	v.SetDefault("research.queries_per_tier", map[string]int{
		"free":     1,
		"basic":    2,
		"standard": 4,
		"premium":  6,
		"custom":   4,
		"scoring":  4,
	})
	v.SetDefault("research.search_rate_limit", 5.0)
	v.SetDefault("research.search_burst", 10)

	v.SetDefault("consistency.min_score", 7.0)
	v.SetDefault("consistency.max_issues", 2)
	v.SetDefault("consistency.max_fix_attempts", 1)

	v.SetDefault("external.assessor_url", "http://assessor:8000")
	v.SetDefault("external.search_url", "http://search:8200")
	v.SetDefault("external.call_timeout", time.Duration(0))

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "validately")
	v.SetDefault("database.database", "validately")
	v.SetDefault("database.ssl_mode", "disable")

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.ttl", 24*time.Hour)

	v.SetDefault("webhook.timeout", 10*time.Second)
}

// Load reads the config file from CONFIG_PATH (default
// config/validately.yaml) merged over defaults and environment overrides.
// A missing file is not an error; defaults apply.
func Load() (*Config, error) {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config/validately.yaml"
	}

	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(cfgPath)
	v.SetEnvPrefix("VALIDATELY")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate rejects configurations the workflow cannot run with.
func (c *Config) Validate() error {
	if c.Interview.MinQuestions < 1 {
		return fmt.Errorf("interview.min_questions must be >= 1, got %d", c.Interview.MinQuestions)
	}
	if c.Interview.MaxQuestions < c.Interview.MinQuestions {
		return fmt.Errorf("interview.max_questions (%d) must be >= min_questions (%d)",
			c.Interview.MaxQuestions, c.Interview.MinQuestions)
	}
	if c.Research.MinCredibility < 1 || c.Research.MinCredibility > 10 {
		return fmt.Errorf("research.min_credibility must be in [1,10], got %d", c.Research.MinCredibility)
	}
	if c.Consistency.MaxFixAttempts < 0 {
		return fmt.Errorf("consistency.max_fix_attempts must be >= 0, got %d", c.Consistency.MaxFixAttempts)
	}
	return nil
}

// Store holds the live configuration. Reloads swap the whole snapshot
// atomically, so readers on worker goroutines never observe a partially
// written struct; a snapshot obtained from Get is immutable.
type Store struct {
	p atomic.Pointer[Config]
}

// NewStore creates a store serving the given snapshot.
func NewStore(c *Config) *Store {
	s := &Store{}
	s.p.Store(c)
	return s
}

// Get returns the current snapshot. Callers must not modify it.
func (s *Store) Get() *Config { return s.p.Load() }

// Set replaces the current snapshot.
func (s *Store) Set(c *Config) { s.p.Store(c) }

// Watch re-reads the config file on change and invokes onReload with the new
// snapshot. Invalid reloads are logged and discarded.
func Watch(logger *zap.Logger, onReload func(*Config)) {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config/validately.yaml"
	}

	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(cfgPath)
	v.OnConfigChange(func(e fsnotify.Event) {
		var c Config
		if err := v.Unmarshal(&c); err != nil {
			logger.Warn("Config reload failed", zap.String("file", e.Name), zap.Error(err))
			return
		}
		if err := c.Validate(); err != nil {
			logger.Warn("Config reload rejected", zap.String("file", e.Name), zap.Error(err))
			return
		}
		logger.Info("Config reloaded", zap.String("file", e.Name))
		onReload(&c)
	})
	v.WatchConfig()
}
