// Package db provides local SQLite persistence for generation history.
//
// repository.go implements the GenerationRepository, the durable sink
// for orchestrator outcomes. The in-memory recorder stays the source of
// truth for the live session; this table is the long-session record.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"genai_studio/imagegen"
)

// GenerationRecord is one row of the generation_history table.
type GenerationRecord struct {
	ID             int64     // Auto-incremented primary key
	CorrelationID  string    // Request correlation ID for log tracing
	Prompt         string    // User's base prompt
	NegativePrompt string    // Exclusion clause, may be empty
	Style          string    // Style table entry name
	Width          int       // Requested width in pixels
	Height         int       // Requested height in pixels
	Success        bool      // Whether an image was produced
	Source         string    // "cache" or "network" on success
	ErrorKind      string    // Failure classification, empty on success
	Message        string    // User-visible result description
	CacheKey       string    // Derived content hash, empty on rejection
	ElapsedMS      int64     // Network call duration in milliseconds
	CreatedAt      time.Time // When the attempt completed
}

// GenerationRepository persists generation outcomes. It implements
// imagegen.OutcomeSink.
type GenerationRepository struct {
	db *sql.DB
}

// NewGenerationRepository creates a repository over an open connection.
func NewGenerationRepository(conn *sql.DB) (*GenerationRepository, error) {
	if conn == nil {
		return nil, fmt.Errorf("db: connection cannot be nil")
	}
	return &GenerationRepository{db: conn}, nil
}

// SaveOutcome inserts one outcome. Implements imagegen.OutcomeSink; the
// orchestrator logs and ignores failures so persistence problems never
// fail a request.
func (r *GenerationRepository) SaveOutcome(ctx context.Context, outcome imagegen.GenerationOutcome) error {
	const query = `
		INSERT INTO generation_history (
			correlation_id, prompt, negative_prompt, style, width, height,
			success, source, error_kind, message, cache_key, elapsed_ms, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		outcome.CorrelationID,
		outcome.Request.Text,
		outcome.Request.NegativeText,
		outcome.Request.Style,
		outcome.Request.Width,
		outcome.Request.Height,
		outcome.Success,
		string(outcome.Source),
		string(outcome.ErrorKind),
		outcome.Message,
		outcome.CacheKey,
		outcome.ElapsedMS,
		outcome.Timestamp.UTC(),
	)
	if err != nil {
		return fmt.Errorf("db: failed to save outcome: %w", err)
	}
	return nil
}

// Recent returns the most recent records, newest first.
func (r *GenerationRepository) Recent(ctx context.Context, limit int) ([]GenerationRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	const query = `
		SELECT id, correlation_id, prompt, negative_prompt, style, width, height,
		       success, source, error_kind, message, cache_key, elapsed_ms, created_at
		FROM generation_history
		ORDER BY id DESC
		LIMIT ?`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("db: failed to query history: %w", err)
	}
	defer rows.Close()

	var records []GenerationRecord
	for rows.Next() {
		var rec GenerationRecord
		if err := rows.Scan(
			&rec.ID, &rec.CorrelationID, &rec.Prompt, &rec.NegativePrompt,
			&rec.Style, &rec.Width, &rec.Height, &rec.Success, &rec.Source,
			&rec.ErrorKind, &rec.Message, &rec.CacheKey, &rec.ElapsedMS,
			&rec.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("db: failed to scan history row: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db: history iteration failed: %w", err)
	}
	return records, nil
}

// Count returns the total number of persisted records.
func (r *GenerationRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM generation_history`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("db: failed to count history: %w", err)
	}
	return count, nil
}
