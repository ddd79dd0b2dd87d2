package tradelog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

var mu sync.Mutex

// Entry records one executed or rejected trade. SimDate is the simulated
// trading day, Time the wall clock of the run.
type Entry struct {
	Time    string
	SimDate string
	Symbol  string
	Action  string
	Qty     int
	Price   float64
	Outcome string
}

// DecisionEntry records the reconciled decision for a (day, symbol) pair,
// including skips, so every defaulted or skipped step is observable.
type DecisionEntry struct {
	Time      string
	SimDate   string
	Symbol    string
	Sentiment string
	Crossover string
	Final     string
	Qty       int
	Note      string `json:",omitempty"`
}

func logDir() string {
	if v := os.Getenv("BACKTEST_LOG_DIR"); v != "" {
		return v
	}
	return "logs"
}

func runFilepath(t time.Time) string {
	return filepath.Join(logDir(), t.Format("2006-01-02")+".txt")
}

func decisionsFilepath(t time.Time) string {
	return filepath.Join(logDir(), "decisions", t.Format("2006-01-02")+".txt")
}

// Append writes a trade entry to the current run's JSONL file.
func Append(e Entry) error {
	mu.Lock()
	defer mu.Unlock()

	now := time.Now()
	e.Time = now.Format("2006-01-02 15:04:05")
	return appendLine(runFilepath(now), e)
}

// AppendDecision writes a decision entry to the decisions JSONL file.
func AppendDecision(e DecisionEntry) error {
	mu.Lock()
	defer mu.Unlock()

	now := time.Now()
	e.Time = now.Format("2006-01-02 15:04:05")
	return appendLine(decisionsFilepath(now), e)
}

func appendLine(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	b, _ := json.Marshal(v)
	_, err = fmt.Fprintln(f, string(b))
	return err
}
