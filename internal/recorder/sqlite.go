package recorder

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists run history to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS trades (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			recorded_at INTEGER NOT NULL,
			sim_date    TEXT NOT NULL,
			symbol      TEXT NOT NULL,
			action      TEXT,
			qty         INTEGER,
			price       REAL,
			outcome     TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_trades_date ON trades(sim_date)`,

		`CREATE TABLE IF NOT EXISTS snapshots (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			recorded_at INTEGER NOT NULL,
			sim_date    TEXT NOT NULL,
			balance     REAL,
			stock_value REAL,
			total_value REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_snapshots_date ON snapshots(sim_date)`,
	}
	for _, stmt := range stmts {
		if _, err := r.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordTrade(t *TradeRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(
		`INSERT INTO trades (recorded_at, sim_date, symbol, action, qty, price, outcome)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		time.Now().Unix(), t.Date, t.Symbol, t.Action, t.Qty, t.Price, t.Outcome,
	)
	return err
}

func (r *SQLiteRecorder) RecordSnapshot(s *DaySnapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(
		`INSERT INTO snapshots (recorded_at, sim_date, balance, stock_value, total_value)
		 VALUES (?, ?, ?, ?, ?)`,
		time.Now().Unix(), s.Date, s.Balance, s.StockValue, s.TotalValue,
	)
	return err
}

func (r *SQLiteRecorder) Close() error {
	return r.db.Close()
}
