// pkg/model/synclog.go
package model

import "time"

// Sync log statuses. A log entry is created running and transitions exactly
// once to a terminal status.
const (
	SyncStatusRunning = "running"
	SyncStatusOK      = "ok"
	SyncStatusError   = "error"
)

// SyncLog is one row of the append-only audit trail: one row per sync
// attempt, never deleted. The duration is stored in milliseconds so the
// column scans back without unit conversion.
type SyncLog struct {
	ID          string     `db:"id"`
	PortalID    string     `db:"portal_id"`
	Status      string     `db:"status"`
	ItemsCount  int        `db:"items_count"`
	ErrorMsg    string     `db:"error_msg"`
	StartedAt   time.Time  `db:"started_at"`
	CompletedAt *time.Time `db:"completed_at"`
	DurationMS  int64      `db:"duration_ms"`
}

// Complete marks the log entry terminal with the given status.
func (l *SyncLog) Complete(status string, itemsCount int, errorMsg string) {
	now := time.Now()
	l.Status = status
	l.ItemsCount = itemsCount
	l.ErrorMsg = errorMsg
	l.CompletedAt = &now
	l.DurationMS = now.Sub(l.StartedAt).Milliseconds()
}

// SyncResult is returned to the caller of a sync; the log entry is the
// durable form of the same outcome.
type SyncResult struct {
	Success    bool          `json:"success"`
	ItemsCount int           `json:"itemsCount"`
	Duration   time.Duration `json:"duration"`
	Error      string        `json:"error,omitempty"`
}
