package main

import (
	"fmt"
	"net"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"
	"go.uber.org/zap"

	"github.com/validately/orchestrator/internal/activities"
	"github.com/validately/orchestrator/internal/assess"
	"github.com/validately/orchestrator/internal/config"
	"github.com/validately/orchestrator/internal/health"
	"github.com/validately/orchestrator/internal/httpapi"
	"github.com/validately/orchestrator/internal/journey"
	"github.com/validately/orchestrator/internal/metrics"
	"github.com/validately/orchestrator/internal/research"
	"github.com/validately/orchestrator/internal/search"
	"github.com/validately/orchestrator/internal/server"
	"github.com/validately/orchestrator/internal/temporal"
	"github.com/validately/orchestrator/internal/workflows"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}
	// Reloads swap an atomic snapshot; values apply to activity calls made
	// after the reload, while running workflows keep the knobs they started
	// with.
	cfgStore := config.NewStore(cfg)
	config.Watch(logger, cfgStore.Set)

	store, err := journey.NewStore(cfg.Database.DSN(), logger)
	if err != nil {
		logger.Fatal("Failed to connect to Postgres", zap.Error(err))
	}
	defer store.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()
	cache := journey.NewCache(redisClient, cfg.Redis.TTL, logger)

	assessor := assess.NewHTTPClient(cfg.External.AssessorURL, cfg.External.CallTimeout, logger)
	searcher := search.NewHTTPSearcher(cfg.External.SearchURL,
		cfg.Research.SearchRateLimit, cfg.Research.SearchBurst, cfg.External.CallTimeout, logger)
	coordinator := research.NewCoordinator(assessor, searcher, cfg.Research, metrics.Default, logger)

	acts := activities.NewActivities(assessor, coordinator, store, cache, cfgStore, metrics.Default, logger)

	// Admin HTTP server: health, metrics, and the journey API share one mux so
	// a single port covers probes and operator traffic.
	healthMgr := health.NewManager(logger)
	healthMgr.Register(health.NewPostgresChecker(store.DB()))
	healthMgr.Register(health.NewRedisChecker(redisClient))
	healthMgr.Register(health.NewServiceChecker("assessor", cfg.External.AssessorURL, true))
	healthMgr.Register(health.NewServiceChecker("search", cfg.External.SearchURL, false))

	adminPort := getEnvOrDefaultInt("ADMIN_PORT", 8081)
	adminMux := http.NewServeMux()
	health.NewHandler(healthMgr).RegisterRoutes(adminMux)
	adminMux.Handle("/metrics", promhttp.Handler())
	go func() {
		addr := fmt.Sprintf(":%d", adminPort)
		logger.Info("Admin HTTP server listening", zap.String("addr", addr))
		if err := http.ListenAndServe(addr, adminMux); err != nil {
			logger.Error("Admin HTTP server stopped", zap.Error(err))
		}
	}()

	tClient := dialTemporal(logger)
	defer tClient.Close()
	healthMgr.Register(health.NewTemporalChecker(tClient))

	svc := server.NewJourneyService(tClient, store, cfgStore, metrics.Default, logger)
	httpapi.NewJourneyHandler(svc, logger).RegisterRoutes(adminMux)
	logger.Info("Journey API registered on admin HTTP server", zap.Int("port", adminPort))

	wk := worker.New(tClient, server.TaskQueue, worker.Options{
		MaxConcurrentActivityExecutionSize:     getEnvOrDefaultInt("WORKER_ACT_SIZE", 20),
		MaxConcurrentWorkflowTaskExecutionSize: getEnvOrDefaultInt("WORKER_WF_SIZE", 10),
	})
	wk.RegisterWorkflow(workflows.ValidationWorkflow)
	wk.RegisterActivity(acts)

	logger.Info("Validation worker starting", zap.String("task_queue", server.TaskQueue))
	if err := wk.Run(worker.InterruptCh()); err != nil {
		logger.Fatal("Worker exited", zap.Error(err))
	}
}

// dialTemporal blocks until the Temporal frontend accepts connections. The
// TCP pre-check keeps the noisy SDK dial retries out of the logs while the
// cluster is still coming up.
func dialTemporal(logger *zap.Logger) client.Client {
	host := getEnvOrDefault("TEMPORAL_HOST", "temporal:7233")
	for i := 1; i <= 60; i++ {
		c, err := net.DialTimeout("tcp", host, 2*time.Second)
		if err == nil {
			_ = c.Close()
			break
		}
		logger.Warn("Waiting for Temporal TCP endpoint", zap.String("host", host), zap.Int("attempt", i))
		time.Sleep(1 * time.Second)
	}

	for attempt := 1; ; attempt++ {
		tClient, err := client.Dial(client.Options{
			HostPort: host,
			Logger:   temporal.NewZapAdapter(logger),
		})
		if err == nil {
			return tClient
		}
		delay := time.Duration(attempt) * time.Second
		if delay > 15*time.Second {
			delay = 15 * time.Second
		}
		logger.Warn("Temporal not ready, retrying",
			zap.Int("attempt", attempt),
			zap.String("host", host),
			zap.Duration("sleep", delay),
			zap.Error(err),
		)
		time.Sleep(delay)
	}
}

func getEnvOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvOrDefaultInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
