// Package assess wraps the external assessment capability: prompt invocation
// returning parsed JSON, with a primary/secondary provider fallback handled
// below workflow visibility. Only total exhaustion of the attempt chain
// surfaces as an error.
package assess

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// PromptSpec names a server-side prompt and its invocation options. The
// literal prompt wording lives in the assessor service, not here.
type PromptSpec struct {
	Name       string   `json:"name"`
	UseComplex bool     `json:"use_complex,omitempty"`
	Provider   Provider `json:"-"`
}

// Client is the assessment capability consumed by activities. Invoke returns
// the parsed JSON object; InvokeStructured decodes into a typed value.
type Client interface {
	Invoke(ctx context.Context, spec PromptSpec, args map[string]any) (map[string]any, error)
	InvokeStructured(ctx context.Context, spec PromptSpec, args map[string]any, out any) error
}

// HTTPClient calls an assessor service over HTTP. Responses may wrap JSON in
// prose; extraction goes through the ordered fallback chain in ExtractJSON.
type HTTPClient struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

// NewHTTPClient builds a client against the assessor base URL. A zero timeout
// disables the HTTP deadline entirely, matching the engine-wide stance that
// no timeout is silently imposed.
func NewHTTPClient(baseURL string, timeout time.Duration, logger *zap.Logger) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

type invokeRequest struct {
	Prompt     string         `json:"prompt"`
	Args       map[string]any `json:"args"`
	UseComplex bool           `json:"use_complex,omitempty"`
	Provider   string         `json:"provider"`
}

type invokeResponse struct {
	Output string `json:"output"`
}

// Invoke runs the prompt against each resolved provider in order and returns
// the first successfully extracted JSON object.
func (c *HTTPClient) Invoke(ctx context.Context, spec PromptSpec, args map[string]any) (map[string]any, error) {
	var result map[string]any
	if err := c.InvokeStructured(ctx, spec, args, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// InvokeStructured runs the prompt and decodes the extracted JSON into out.
func (c *HTTPClient) InvokeStructured(ctx context.Context, spec PromptSpec, args map[string]any, out any) error {
	var lastErr error
	for _, p := range spec.Provider.Resolve() {
		raw, err := c.call(ctx, spec, args, p)
		if err != nil {
			c.logger.Warn("Assessor call failed",
				zap.String("prompt", spec.Name),
				zap.String("provider", p.String()),
				zap.Error(err),
			)
			lastErr = err
			continue
		}
		if err := Unmarshal(raw, out); err != nil {
			c.logger.Warn("Assessor output not parseable",
				zap.String("prompt", spec.Name),
				zap.String("provider", p.String()),
				zap.Error(err),
			)
			lastErr = err
			continue
		}
		return nil
	}
	return fmt.Errorf("assess %s: all providers exhausted: %w", spec.Name, lastErr)
}

func (c *HTTPClient) call(ctx context.Context, spec PromptSpec, args map[string]any, p Provider) (string, error) {
	body, err := json.Marshal(invokeRequest{
		Prompt:     spec.Name,
		Args:       args,
		UseComplex: spec.UseComplex,
		Provider:   p.String(),
	})
	if err != nil {
		return "", fmt.Errorf("marshal invoke request: %w", err)
	}

	url := fmt.Sprintf("%s/v1/invoke", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create invoke request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("call assessor: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("assessor returned status %d: %s", resp.StatusCode, string(b))
	}

	var ir invokeResponse
	if err := json.NewDecoder(resp.Body).Decode(&ir); err != nil {
		return "", fmt.Errorf("decode assessor response: %w", err)
	}
	return ir.Output, nil
}
