package health

import (
	"context"
	"fmt"
	"net/http"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.temporal.io/sdk/client"
)

// PostgresChecker pings the journey store's database.
type PostgresChecker struct {
	db *sqlx.DB
}

func NewPostgresChecker(db *sqlx.DB) *PostgresChecker { return &PostgresChecker{db: db} }

func (c *PostgresChecker) Name() string   { return "postgres" }
func (c *PostgresChecker) Critical() bool { return true }

func (c *PostgresChecker) Check(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

// RedisChecker pings the research cache. The cache is an optimization, so a
// broken Redis leaves the service ready.
type RedisChecker struct {
	client *redis.Client
}

func NewRedisChecker(client *redis.Client) *RedisChecker { return &RedisChecker{client: client} }

func (c *RedisChecker) Name() string   { return "redis" }
func (c *RedisChecker) Critical() bool { return false }

func (c *RedisChecker) Check(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// TemporalChecker verifies the Temporal frontend answers health RPCs.
type TemporalChecker struct {
	client client.Client
}

func NewTemporalChecker(tc client.Client) *TemporalChecker { return &TemporalChecker{client: tc} }

func (c *TemporalChecker) Name() string   { return "temporal" }
func (c *TemporalChecker) Critical() bool { return true }

func (c *TemporalChecker) Check(ctx context.Context) error {
	_, err := c.client.CheckHealth(ctx, &client.CheckHealthRequest{})
	return err
}

// ServiceChecker probes an HTTP dependency's /health endpoint.
type ServiceChecker struct {
	name     string
	url      string
	critical bool
	httpc    *http.Client
}

func NewServiceChecker(name, baseURL string, critical bool) *ServiceChecker {
	return &ServiceChecker{
		name:     name,
		url:      baseURL + "/health",
		critical: critical,
		httpc:    &http.Client{},
	}
}

func (c *ServiceChecker) Name() string   { return c.name }
func (c *ServiceChecker) Critical() bool { return c.critical }

func (c *ServiceChecker) Check(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return err
	}
	resp, err := c.httpc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s returned status %d", c.url, resp.StatusCode)
	}
	return nil
}
