// Package openai implements the completion provider against an
// OpenAI-compatible chat completions endpoint.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/hiresight/resume-ingest/internal/adapter/ai/tokencount"
	"github.com/hiresight/resume-ingest/internal/adapter/observability"
	"github.com/hiresight/resume-ingest/internal/config"
	"github.com/hiresight/resume-ingest/internal/domain"
)

// Client talks to a chat completions endpoint. It satisfies
// domain.CompletionProvider.
type Client struct {
	cfg        config.Config
	httpClient *http.Client
	counter    *tokencount.Counter
}

// New creates a completion client from configuration.
func New(cfg config.Config) *Client {
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		counter:    tokencount.NewCounter(),
	}
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// Generate sends prompt to the chat completions endpoint and returns the
// first choice's content. Prompts beyond the configured context window are
// truncated token-wise before sending. Retries transient failures with
// exponential backoff; 4xx responses other than 429 fail immediately.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	start := time.Now()
	defer func() {
		observability.CompletionRequestDuration.WithLabelValues("generate").Observe(time.Since(start).Seconds())
	}()

	prompt = c.counter.Truncate(c.cfg.CompletionModel, prompt, c.cfg.CompletionContextTokens)

	maxElapsed, initial, maxInterval, multiplier := c.cfg.GetAIBackoffConfig()
	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = maxElapsed
	bo.InitialInterval = initial
	bo.MaxInterval = maxInterval
	bo.Multiplier = multiplier

	var content string
	operation := func() error {
		var err error
		content, err = c.doRequest(ctx, prompt)
		return err
	}
	if err := backoff.Retry(operation, backoff.WithContext(bo, ctx)); err != nil {
		return "", fmt.Errorf("op=openai.Generate: %w", err)
	}
	return content, nil
}

func (c *Client) doRequest(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model: c.cfg.CompletionModel,
		Messages: []chatMessage{
			{Role: "user", Content: prompt},
		},
		MaxTokens:   c.cfg.CompletionMaxTokens,
		Temperature: 0,
	})
	if err != nil {
		return "", backoff.Permanent(fmt.Errorf("marshal request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.CompletionBaseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", backoff.Permanent(fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.CompletionAPIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.CompletionAPIKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", backoff.Permanent(fmt.Errorf("%w: %v", domain.ErrUpstreamTimeout, err))
		}
		slog.Warn("completion request failed, retrying", "error", err)
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		slog.Warn("completion rate limited, retrying", "status", resp.StatusCode)
		return "", fmt.Errorf("%w: status=%d", domain.ErrUpstreamRateLimit, resp.StatusCode)
	case resp.StatusCode >= 500:
		slog.Warn("completion upstream error, retrying", "status", resp.StatusCode)
		return "", fmt.Errorf("upstream status=%d", resp.StatusCode)
	case resp.StatusCode >= 400:
		return "", backoff.Permanent(fmt.Errorf("completion rejected: status=%d body=%s", resp.StatusCode, truncateForLog(data)))
	}

	var parsed chatResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return "", backoff.Permanent(fmt.Errorf("%w: decode response: %v", domain.ErrSchemaInvalid, err))
	}
	if parsed.Error != nil {
		return "", backoff.Permanent(fmt.Errorf("completion error: type=%s message=%s", parsed.Error.Type, parsed.Error.Message))
	}
	if len(parsed.Choices) == 0 {
		return "", backoff.Permanent(fmt.Errorf("%w: no choices in response", domain.ErrNoData))
	}
	return parsed.Choices[0].Message.Content, nil
}

func truncateForLog(data []byte) string {
	const maxLen = 256
	if len(data) > maxLen {
		return string(data[:maxLen]) + "..."
	}
	return string(data)
}
