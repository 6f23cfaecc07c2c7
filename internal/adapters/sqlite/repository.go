package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"cryptoScanBot/internal/domain"
	"cryptoScanBot/internal/ports"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// Repository implements ports.AlertRepository using SQLite.
type Repository struct {
	db     *sql.DB
	logger ports.Logger
}

// Config holds configuration for the SQLite repository.
type Config struct {
	DBPath string
	Logger ports.Logger
}

// NewRepository creates a new SQLite repository instance.
func NewRepository(cfg Config) (*Repository, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for SQLite repository")
	}
	dbPath := cfg.DBPath
	if dbPath == "" {
		dbPath = "./data/scanner.db" // Default path
	}

	// Create data directory if it doesn't exist
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		err = fmt.Errorf("failed to create data directory '%s': %w", filepath.Dir(dbPath), err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	// Open database connection
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000") // WAL mode for better concurrency
	if err != nil {
		err = fmt.Errorf("failed to open database at '%s': %w", dbPath, err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		db.Close()
		err = fmt.Errorf("failed to ping database at '%s': %w", dbPath, err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	// Set connection pool settings (important for SQLite)
	db.SetMaxOpenConns(1) // SQLite handles concurrency internally, but Go driver benefits from limiting connections
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	cfg.Logger.Info(context.Background(), "SQLite database connection established", map[string]interface{}{"path": dbPath})

	repo := &Repository{db: db, logger: cfg.Logger}

	if err := repo.initializeSchema(context.Background()); err != nil {
		db.Close()
		err = fmt.Errorf("failed to initialize database schema: %w", err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}
	cfg.Logger.Info(context.Background(), "Database schema initialized/verified")

	return repo, nil
}

// initializeSchema creates tables if they don't exist.
func (r *Repository) initializeSchema(ctx context.Context) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS alert_history (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		strategy TEXT NOT NULL,
		symbol TEXT NOT NULL,
		sub_kind TEXT NOT NULL DEFAULT '',
		direction TEXT NOT NULL,
		price REAL NOT NULL,
		metric_value REAL NOT NULL,
		reference REAL NOT NULL DEFAULT 0,
		new_extremum INTEGER NOT NULL DEFAULT 0,
		triggered_at TIMESTAMP NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_alert_history_triggered_at ON alert_history (triggered_at);
	CREATE INDEX IF NOT EXISTS idx_alert_history_strategy_symbol ON alert_history (strategy, symbol);
	`
	_, err := r.db.ExecContext(ctx, schema)
	if err != nil {
		return fmt.Errorf("failed to execute schema initialization: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (r *Repository) Close() error {
	if r.db != nil {
		r.logger.Info(context.Background(), "Closing SQLite database connection")
		return r.db.Close()
	}
	return nil
}

// RecordAlert saves a dispatched alert and returns its assigned ID.
func (r *Repository) RecordAlert(ctx context.Context, alert *domain.Alert) (int64, error) {
	const query = `
	INSERT INTO alert_history (strategy, symbol, sub_kind, direction, price, metric_value, reference, new_extremum, triggered_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	result, err := r.db.ExecContext(ctx, query,
		string(alert.Strategy), alert.Symbol, alert.SubKind, string(alert.Direction),
		alert.Price, alert.MetricValue, alert.Reference, boolToInt(alert.NewExtremum), alert.TriggeredAt)
	if err != nil {
		return 0, fmt.Errorf("failed to insert alert for symbol %s: %w", alert.Symbol, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID for alert: %w", err)
	}
	return id, nil
}

// RecentAlerts retrieves the most recent alerts across all strategies, newest
// first, up to a limit.
func (r *Repository) RecentAlerts(ctx context.Context, limit int) ([]*domain.Alert, error) {
	if limit <= 0 {
		limit = 50
	}
	const query = `
	SELECT strategy, symbol, sub_kind, direction, price, metric_value, reference, new_extremum, triggered_at
	FROM alert_history
	ORDER BY triggered_at DESC, id DESC
	LIMIT ?`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: querying recent alerts: %v", ports.ErrQueryFailed, err)
	}
	defer rows.Close()

	var alerts []*domain.Alert
	for rows.Next() {
		var (
			a           domain.Alert
			strategy    string
			direction   string
			newExtremum int
		)
		if err := rows.Scan(&strategy, &a.Symbol, &a.SubKind, &direction,
			&a.Price, &a.MetricValue, &a.Reference, &newExtremum, &a.TriggeredAt); err != nil {
			return nil, fmt.Errorf("failed to scan alert row: %w", err)
		}
		a.Strategy = domain.StrategyKind(strategy)
		a.Direction = domain.AlertDirection(direction)
		a.NewExtremum = newExtremum != 0
		alerts = append(alerts, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating alert rows: %w", err)
	}
	return alerts, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
