// Package postgres stores operation events in a PostgreSQL table through pgx.
package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/valyala/fastjson"
)

// Schema creates the events table.
const Schema = `
CREATE TABLE IF NOT EXISTS operation_events (
	id         uuid PRIMARY KEY,
	event_type text        NOT NULL,
	payload    jsonb       NOT NULL,
	created_at timestamptz NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS operation_events_type_created_idx
	ON operation_events (event_type, created_at);
`

// DB is the subset of *pgxpool.Pool the sink uses.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Sink inserts one row per event.
type Sink struct {
	db  DB
	now func() time.Time
}

// New returns a Sink over db.
func New(db DB) *Sink {
	return &Sink{db: db, now: time.Now}
}

// Migrate creates the events table if needed.
func (s *Sink) Migrate(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("migrate operation_events: %w", err)
	}
	return nil
}

// Append implements opevent.Sink.
func (s *Sink) Append(ctx context.Context, line []byte) error {
	query := `
		INSERT INTO operation_events (id, event_type, payload, created_at)
		VALUES ($1, $2, $3, $4)
	`
	_, err := s.db.Exec(ctx, query,
		uuid.New(),
		fastjson.GetString(line, "event_type"),
		string(line),
		s.now(),
	)
	if err != nil {
		return fmt.Errorf("insert operation event: %w", err)
	}
	return nil
}

// Recent returns the payloads of the newest events of eventType, newest
// first. An empty eventType matches every event.
func (s *Sink) Recent(ctx context.Context, eventType string, limit int) ([]json.RawMessage, error) {
	query := `
		SELECT payload
		FROM operation_events
		WHERE $1 = '' OR event_type = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	rows, err := s.db.Query(ctx, query, eventType, limit)
	if err != nil {
		return nil, fmt.Errorf("query operation events: %w", err)
	}
	defer rows.Close()

	var out []json.RawMessage
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan operation event: %w", err)
		}
		out = append(out, json.RawMessage(payload))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate operation events: %w", err)
	}
	return out, nil
}
