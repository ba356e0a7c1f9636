// Package receipts records every trigger the service accepted. Receipts are
// written in the same transaction that gates event emission, so a receipt
// exists exactly when the events of its batch were released.
package receipts

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"opevent/internal/operationevent/models"
	"opevent/pkg/platform/uow"
)

// Schema creates the receipts table.
const Schema = `
CREATE TABLE IF NOT EXISTS signal_receipts (
	id          uuid PRIMARY KEY,
	signal      text NOT NULL,
	kind        text NOT NULL DEFAULT '',
	request_id  text NOT NULL DEFAULT '',
	received_at timestamptz NOT NULL
)`

// Receipt is one accepted notification.
type Receipt struct {
	ID         uuid.UUID
	Signal     models.Signal
	Kind       models.Kind
	RequestID  string
	ReceivedAt time.Time
}

// PostgresStore persists receipts with database/sql.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres creates a store over db.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *PostgresStore) execer(ctx context.Context) dbExecutor {
	if tx, ok := uow.Tx(ctx); ok {
		return tx
	}
	return s.db
}

// Migrate creates the table when missing.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("create signal_receipts: %w", err)
	}
	return nil
}

// Record inserts a receipt, joining the transaction in ctx when present.
func (s *PostgresStore) Record(ctx context.Context, r Receipt) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.ReceivedAt.IsZero() {
		r.ReceivedAt = time.Now()
	}
	query := `
		INSERT INTO signal_receipts (id, signal, kind, request_id, received_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := s.execer(ctx).ExecContext(ctx, query,
		r.ID,
		string(r.Signal),
		string(r.Kind),
		r.RequestID,
		r.ReceivedAt,
	)
	if err != nil {
		return fmt.Errorf("insert signal receipt: %w", err)
	}
	return nil
}

// ListRecent returns the newest receipts first.
func (s *PostgresStore) ListRecent(ctx context.Context, limit int) ([]Receipt, error) {
	query := `
		SELECT id, signal, kind, request_id, received_at
		FROM signal_receipts
		ORDER BY received_at DESC
		LIMIT $1
	`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query signal receipts: %w", err)
	}
	defer rows.Close()

	var out []Receipt
	for rows.Next() {
		var (
			r      Receipt
			signal string
			kind   string
		)
		if err := rows.Scan(&r.ID, &signal, &kind, &r.RequestID, &r.ReceivedAt); err != nil {
			return nil, fmt.Errorf("scan signal receipt: %w", err)
		}
		r.Signal = models.Signal(signal)
		r.Kind = models.Kind(kind)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate signal receipts: %w", err)
	}
	return out, nil
}
