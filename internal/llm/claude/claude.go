package claude

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"sentiment-backtester/internal/llm"
	"sentiment-backtester/internal/logger"
	"sentiment-backtester/internal/store"
	"sentiment-backtester/internal/trace"
	"sentiment-backtester/internal/types"
)

// Classifier scores articles using the Anthropic Claude messages API.
type Classifier struct {
	cfg      *store.Config
	endpoint string
	client   *http.Client
}

// NewClassifier creates a Claude-backed article classifier. The endpoint can
// be overridden with CLAUDE_API_ENDPOINT for proxies.
func NewClassifier(cfg *store.Config) *Classifier {
	endpoint := "https://api.anthropic.com/v1/messages"
	if ep := os.Getenv("CLAUDE_API_ENDPOINT"); ep != "" {
		endpoint = ep
	}
	return &Classifier{
		cfg:      cfg,
		endpoint: endpoint,
		client:   &http.Client{Timeout: 60 * time.Second},
	}
}

type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

// ClassifyArticles implements interfaces.Classifier. Rate-limited and server
// errors are retried with capped exponential backoff up to llm.max_retries;
// after that the error is returned and the caller defaults to neutral.
func (c *Classifier) ClassifyArticles(ctx context.Context, subject string, articles []types.Article) ([]int, error) {
	ctx, span := trace.StartSpan(ctx, "claude-classify-articles")
	defer span.End()

	apiKey := os.Getenv("CLAUDE_API_KEY")
	if apiKey == "" {
		return nil, errors.New("CLAUDE_API_KEY missing")
	}
	if len(articles) == 0 {
		return []int{}, nil
	}

	prompt := llm.BuildClassifyPrompt(subject, articles)
	reqBody := map[string]any{
		"model":      c.cfg.LLM.Model,
		"max_tokens": c.cfg.LLM.MaxTokens,
		"system":     "You are a financial news classifier. Output only a JSON array of integers.",
		"messages": []map[string]string{
			{"role": "user", "content": prompt},
		},
		"temperature": c.cfg.LLM.Temperature,
	}
	bb, _ := json.Marshal(reqBody)

	var lastErr error
	for attempt := 0; attempt < c.cfg.LLM.MaxRetries; attempt++ {
		if attempt > 0 {
			wait := llm.Backoff(attempt - 1)
			logger.Warn(ctx, "Retrying Claude call", "attempt", attempt, "wait", wait.String())
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		text, status, err := c.post(ctx, apiKey, bb)
		if err != nil {
			lastErr = err
			continue
		}
		if status >= 300 {
			lastErr = fmt.Errorf("claude http %d: %s", status, text)
			if !llm.Retryable(status) {
				return nil, lastErr
			}
			continue
		}

		signals, err := llm.ParseSignals(text, len(articles))
		if err != nil {
			return nil, fmt.Errorf("claude response: %w", err)
		}
		return signals, nil
	}
	return nil, lastErr
}

func (c *Classifier) post(ctx context.Context, apiKey string, body []byte) (string, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", 0, err
	}
	req.Header.Set("x-api-key", apiKey)
	req.Header.Set("anthropic-version", "2023-06-01")
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", 0, err
	}
	defer resp.Body.Close()

	respBytes, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 300 {
		return string(respBytes), resp.StatusCode, nil
	}

	var mr messagesResponse
	if err := json.Unmarshal(respBytes, &mr); err != nil {
		// Not the messages shape, hand the raw body to the parser.
		return string(respBytes), resp.StatusCode, nil
	}
	for _, part := range mr.Content {
		if part.Type == "text" && part.Text != "" {
			return part.Text, resp.StatusCode, nil
		}
	}
	return string(respBytes), resp.StatusCode, nil
}
