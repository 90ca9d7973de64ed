package activities

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/validately/orchestrator/internal/journey"
)

// NotifyInput is the input for the report-ready webhook.
type NotifyInput struct {
	JourneyID string        `json:"journey_id"`
	Phase     journey.Phase `json:"phase"`
	Tier      journey.Tier  `json:"tier"`
	Title     string        `json:"title,omitempty"`
}

// NotifyReportReady posts a completion event to the configured webhook.
// An unconfigured webhook is a no-op; delivery failures return an error so
// the activity's retry policy drives redelivery.
func (a *Activities) NotifyReportReady(ctx context.Context, input NotifyInput) error {
	cfg := a.cfg.Get()
	if cfg.Webhook.URL == "" {
		return nil
	}

	body, err := json.Marshal(map[string]any{
		"journey_id": input.JourneyID,
		"phase":      string(input.Phase),
		"tier":       string(input.Tier),
		"title":      input.Title,
		"event":      "report_ready",
		"emitted_at": time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}

	if cfg.Webhook.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Webhook.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, cfg.Webhook.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("deliver webhook: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	a.logger.Info("Report-ready webhook delivered",
		zap.String("journey_id", input.JourneyID),
		zap.Int("status", resp.StatusCode),
	)
	return nil
}
