package llm

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"sentiment-backtester/internal/types"
)

// BuildClassifyPrompt renders the batch classification prompt shared by all
// providers. The model is asked for one integer per article, in order.
func BuildClassifyPrompt(subject string, articles []types.Article) string {
	var b strings.Builder
	fmt.Fprintf(&b, "I will provide the name of a company and a numbered list of news articles, "+
		"each with a title, a description and a snippet of content. For each article, determine "+
		"whether it signals something bad, good, or neutral for the company. Respond ONLY with a "+
		"JSON array of integers, one per article in order: -1 (bad), 1 (good), or 0 (neutral).\n\n")
	fmt.Fprintf(&b, "Company: %s\n\n", subject)
	for i, a := range articles {
		content := a.Content
		if len(content) > 500 {
			content = content[:500] + "..."
		}
		fmt.Fprintf(&b, "Article %d:\nTitle: %s\nDescription: %s\nContent: %s\n\n",
			i+1, a.Title, a.Description, content)
	}
	return b.String()
}

// ParseSignals extracts the JSON integer array from a model response. Values
// outside {-1,0,1} are coerced to 0. A length mismatch is an error so the
// caller can fall back to neutral signals.
func ParseSignals(text string, n int) ([]int, error) {
	start := strings.Index(text, "[")
	end := strings.LastIndex(text, "]")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON array in response: %q", truncate(text, 120))
	}

	var signals []int
	if err := json.Unmarshal([]byte(text[start:end+1]), &signals); err != nil {
		return nil, fmt.Errorf("parse signal array: %w", err)
	}
	if len(signals) != n {
		return nil, fmt.Errorf("expected %d signals, got %d", n, len(signals))
	}

	for i, s := range signals {
		if s < -1 || s > 1 {
			signals[i] = 0
		}
	}
	return signals, nil
}

// Backoff returns the wait before retry attempt n (0-based): 2s, 4s, 8s...
// capped at 30s. Rate-limited calls wait this long instead of retrying
// forever.
func Backoff(attempt int) time.Duration {
	d := 2 * time.Second << attempt
	if d > 30*time.Second {
		return 30 * time.Second
	}
	return d
}

// Retryable reports whether an HTTP status is worth another attempt.
func Retryable(status int) bool {
	return status == 429 || status >= 500
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
