package gemini

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

// Classifier scores articles using the Google Gemini generateContent API.
type Classifier struct {
	cfg     *store.Config
	baseURL string
	client  *http.Client
}

// NewClassifier creates a Gemini-backed article classifier.
func NewClassifier(cfg *store.Config) *Classifier {
	baseURL := "https://generativelanguage.googleapis.com/v1beta"
	if ep := os.Getenv("GEMINI_API_ENDPOINT"); ep != "" {
		baseURL = ep
	}
	return &Classifier{
		cfg:     cfg,
		baseURL: baseURL,
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// ClassifyArticles implements interfaces.Classifier with the same bounded
// retry policy as the Claude provider.
func (c *Classifier) ClassifyArticles(ctx context.Context, subject string, articles []types.Article) ([]int, error) {
	ctx, span := trace.StartSpan(ctx, "gemini-classify-articles")
	defer span.End()

	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return nil, errors.New("GEMINI_API_KEY missing")
	}
	if len(articles) == 0 {
		return []int{}, nil
	}

	prompt := llm.BuildClassifyPrompt(subject, articles)
	reqBody := map[string]any{
		"contents": []map[string]any{
			{"parts": []map[string]string{{"text": prompt}}},
		},
		"generationConfig": map[string]any{
			"temperature":     c.cfg.LLM.Temperature,
			"maxOutputTokens": c.cfg.LLM.MaxTokens,
		},
	}
	bb, _ := json.Marshal(reqBody)

	u := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, c.cfg.LLM.Model, apiKey)

	var lastErr error
	for attempt := 0; attempt < c.cfg.LLM.MaxRetries; attempt++ {
		if attempt > 0 {
			wait := llm.Backoff(attempt - 1)
			logger.Warn(ctx, "Retrying Gemini call", "attempt", attempt, "wait", wait.String())
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		text, status, err := c.post(ctx, u, bb)
		if err != nil {
			lastErr = err
			continue
		}
		if status >= 300 {
			lastErr = fmt.Errorf("gemini http %d: %s", status, text)
			if !llm.Retryable(status) {
				return nil, lastErr
			}
			continue
		}

		signals, err := llm.ParseSignals(text, len(articles))
		if err != nil {
			return nil, fmt.Errorf("gemini response: %w", err)
		}
		return signals, nil
	}
	return nil, lastErr
}

func (c *Classifier) post(ctx context.Context, url string, body []byte) (string, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", 0, err
	}
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

	var gr generateResponse
	if err := json.Unmarshal(respBytes, &gr); err != nil {
		return string(respBytes), resp.StatusCode, nil
	}
	if len(gr.Candidates) > 0 && len(gr.Candidates[0].Content.Parts) > 0 {
		return gr.Candidates[0].Content.Parts[0].Text, resp.StatusCode, nil
	}
	return string(respBytes), resp.StatusCode, nil
}
