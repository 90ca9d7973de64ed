package health

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Status is the outcome of a single health check.
type Status int

const (
	StatusHealthy Status = iota
	StatusUnhealthy
	StatusUnknown
)

func (s Status) String() string {
	switch s {
	case StatusHealthy:
		return "healthy"
	case StatusUnhealthy:
		return "unhealthy"
	default:
		return "unknown"
	}
}

func (s Status) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Result is a completed check observation.
type Result struct {
	Component string        `json:"component"`
	Status    Status        `json:"status"`
	Error     string        `json:"error,omitempty"`
	Duration  time.Duration `json:"duration"`
	Timestamp time.Time     `json:"timestamp"`
	Critical  bool          `json:"critical"`
}

// Checker probes one dependency.
type Checker interface {
	// Name identifies the dependency in reports.
	Name() string
	// Check probes the dependency. The context carries the check timeout.
	Check(ctx context.Context) error
	// Critical marks checks whose failure makes the service not ready.
	Critical() bool
}

// Manager runs registered checkers on demand and caches the last results.
type Manager struct {
	mu       sync.RWMutex
	checkers []Checker
	last     map[string]Result
	timeout  time.Duration
	logger   *zap.Logger
}

func NewManager(logger *zap.Logger) *Manager {
	return &Manager{
		last:    make(map[string]Result),
		timeout: 5 * time.Second,
		logger:  logger,
	}
}

func (m *Manager) Register(c Checker) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.checkers = append(m.checkers, c)
	m.last[c.Name()] = Result{Component: c.Name(), Status: StatusUnknown, Critical: c.Critical()}
}

// CheckAll probes every registered dependency concurrently and returns the
// fresh results keyed by component name.
func (m *Manager) CheckAll(ctx context.Context) map[string]Result {
	m.mu.RLock()
	checkers := make([]Checker, len(m.checkers))
	copy(checkers, m.checkers)
	m.mu.RUnlock()

	results := make(map[string]Result, len(checkers))
	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)
	for _, c := range checkers {
		wg.Add(1)
		go func(c Checker) {
			defer wg.Done()
			cctx, cancel := context.WithTimeout(ctx, m.timeout)
			defer cancel()

			start := time.Now()
			err := c.Check(cctx)
			res := Result{
				Component: c.Name(),
				Status:    StatusHealthy,
				Duration:  time.Since(start),
				Timestamp: time.Now(),
				Critical:  c.Critical(),
			}
			if err != nil {
				res.Status = StatusUnhealthy
				res.Error = err.Error()
				m.logger.Warn("Health check failed",
					zap.String("component", c.Name()),
					zap.Error(err),
				)
			}
			mu.Lock()
			results[c.Name()] = res
			mu.Unlock()
		}(c)
	}
	wg.Wait()

	m.mu.Lock()
	for name, res := range results {
		m.last[name] = res
	}
	m.mu.Unlock()
	return results
}

// IsReady reports whether every critical dependency passed its most recent
// check. Non-critical failures degrade but do not block readiness.
func (m *Manager) IsReady(ctx context.Context) bool {
	for _, res := range m.CheckAll(ctx) {
		if res.Critical && res.Status != StatusHealthy {
			return false
		}
	}
	return true
}

// Snapshot returns the cached results without re-probing.
func (m *Manager) Snapshot() map[string]Result {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]Result, len(m.last))
	for k, v := range m.last {
		out[k] = v
	}
	return out
}
