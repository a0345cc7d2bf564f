package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"bridge/internal/model"
)

// PostgresRepository persists turn analytics. It is optional: the
// bridge runs fully without it and never blocks a reply on it.
type PostgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository connects to PostgreSQL with the given pool
// limits.
func NewPostgresRepository(dsn string, maxConn, maxIdleConn int) (*PostgresRepository, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(maxConn)
	db.SetMaxIdleConns(maxIdleConn)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(2 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresRepository{db: db}, nil
}

// Close closes the database connection.
func (r *PostgresRepository) Close() error {
	return r.db.Close()
}

// LogTurn inserts one handled turn into turn_logs.
func (r *PostgresRepository) LogTurn(ctx context.Context, entry model.TurnLog) error {
	prefsJSON, err := json.Marshal(entry.Prefs)
	if err != nil {
		return fmt.Errorf("failed to marshal preferences: %w", err)
	}
	filtersJSON, err := json.Marshal(entry.Filters)
	if err != nil {
		return fmt.Errorf("failed to marshal filters: %w", err)
	}

	query := `
		INSERT INTO turn_logs (turn_id, conversation_id, user_id, query, prefs, filters, result_count, reply_chars, response_time_ms)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err = r.db.ExecContext(ctx, query,
		entry.TurnID,
		entry.ConversationID,
		entry.UserID,
		entry.Query,
		prefsJSON,
		filtersJSON,
		entry.ResultCount,
		entry.ReplyChars,
		entry.ResponseTimeMs,
	)
	if err != nil {
		return fmt.Errorf("failed to log turn: %w", err)
	}
	return nil
}
