package secondary

import "context"

// ActionLogRecord is one post-action entry received from the host.
// The log is append-only; progress detection reads it to decide whether
// an iteration produced observable change.
type ActionLogRecord struct {
	ID        int64
	SessionID string
	Tool      string
	Result    string
	CreatedAt string
}

// ActionLog persists and reads host action records.
type ActionLog interface {
	Append(ctx context.Context, rec *ActionLogRecord) error
	Recent(ctx context.Context, limit int) ([]*ActionLogRecord, error)
}
