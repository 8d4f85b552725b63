package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/example/warden/internal/ports/secondary"
)

// ActionLogRepository implements secondary.ActionLog using SQLite.
type ActionLogRepository struct {
	db *sql.DB
}

// NewActionLogRepository creates a new ActionLogRepository.
func NewActionLogRepository(db *sql.DB) *ActionLogRepository {
	return &ActionLogRepository{db: db}
}

// Append persists one post-action record from the host.
func (r *ActionLogRepository) Append(ctx context.Context, rec *secondary.ActionLogRecord) error {
	if rec.CreatedAt == "" {
		rec.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO action_log (session_id, tool, result, created_at) VALUES (?, ?, ?, ?)`,
		rec.SessionID, rec.Tool, rec.Result, rec.CreatedAt)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err == nil {
		rec.ID = id
	}
	return nil
}

// Recent returns the latest records, newest first.
func (r *ActionLogRepository) Recent(ctx context.Context, limit int) ([]*secondary.ActionLogRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, session_id, tool, result, created_at FROM action_log ORDER BY id DESC LIMIT ?`,
		limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*secondary.ActionLogRecord
	for rows.Next() {
		var rec secondary.ActionLogRecord
		if err := rows.Scan(&rec.ID, &rec.SessionID, &rec.Tool, &rec.Result, &rec.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &rec)
	}
	return out, rows.Err()
}

// Ensure ActionLogRepository implements the interface.
var _ secondary.ActionLog = (*ActionLogRepository)(nil)
