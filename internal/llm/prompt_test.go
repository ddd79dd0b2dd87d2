package llm

import (
	"strings"
	"testing"
	"time"

	"sentiment-backtester/internal/types"
)

func TestParseSignals(t *testing.T) {
	signals, err := ParseSignals("[1, -1, 0]", 3)
	if err != nil {
		t.Fatal(err)
	}
	if signals[0] != 1 || signals[1] != -1 || signals[2] != 0 {
		t.Fatalf("unexpected signals: %v", signals)
	}
}

func TestParseSignalsExtractsArrayFromProse(t *testing.T) {
	text := "Here is my analysis:\n[0, 1]\nLet me know if you need more."
	signals, err := ParseSignals(text, 2)
	if err != nil {
		t.Fatal(err)
	}
	if signals[0] != 0 || signals[1] != 1 {
		t.Fatalf("unexpected signals: %v", signals)
	}
}

func TestParseSignalsCoercesOutOfRange(t *testing.T) {
	signals, err := ParseSignals("[5, -3, 1]", 3)
	if err != nil {
		t.Fatal(err)
	}
	if signals[0] != 0 || signals[1] != 0 || signals[2] != 1 {
		t.Fatalf("out-of-range values not coerced: %v", signals)
	}
}

func TestParseSignalsLengthMismatch(t *testing.T) {
	if _, err := ParseSignals("[1, 0]", 3); err == nil {
		t.Fatal("expected length mismatch error")
	}
}

func TestParseSignalsNoArray(t *testing.T) {
	if _, err := ParseSignals("I cannot classify these articles.", 2); err == nil {
		t.Fatal("expected error when no array present")
	}
}

func TestBuildClassifyPromptNumbersArticles(t *testing.T) {
	prompt := BuildClassifyPrompt("Apple", []types.Article{
		{Title: "Apple surges", Description: "desc", Content: "body"},
		{Title: "Apple sued"},
	})

	if !strings.Contains(prompt, "Company: Apple") {
		t.Error("prompt missing company name")
	}
	if !strings.Contains(prompt, "Article 1:") || !strings.Contains(prompt, "Article 2:") {
		t.Error("prompt missing numbered articles")
	}
	if !strings.Contains(prompt, "Apple sued") {
		t.Error("prompt missing second title")
	}
}

func TestBackoffIsCapped(t *testing.T) {
	if Backoff(0) != 2*time.Second {
		t.Errorf("Backoff(0) = %v", Backoff(0))
	}
	if Backoff(1) != 4*time.Second {
		t.Errorf("Backoff(1) = %v", Backoff(1))
	}
	if Backoff(10) != 30*time.Second {
		t.Errorf("Backoff(10) = %v, want 30s cap", Backoff(10))
	}
}
