// pkg/store/store.go
package store

import (
	"context"
	"time"

	"github.com/portalforge/portal-sync/pkg/model"
)

// Store is the configuration/persistence contract the sync core consumes.
// Implementations must provide atomic single-row create/update semantics;
// no multi-statement transactions are required beyond that.
type Store interface {
	// GetPortalWithSourcesAndCredential loads a portal, its sources in
	// configured order, and the user's most recent Notion connection.
	// Returns (nil, nil) when the portal does not exist.
	GetPortalWithSourcesAndCredential(ctx context.Context, portalID string) (*model.Portal, error)

	// GetPortalByPublicToken loads a portal by its public token, with
	// sources and credential. Returns (nil, nil) when not found.
	GetPortalByPublicToken(ctx context.Context, publicToken string) (*model.Portal, error)

	// ListPublishedPortals lists all portals with published status.
	ListPublishedPortals(ctx context.Context) ([]model.PortalRef, error)

	// CreateSyncLog appends a new running log entry for a sync attempt.
	CreateSyncLog(ctx context.Context, portalID string) (*model.SyncLog, error)

	// UpdateSyncLog writes the terminal state of a log entry. Log rows are
	// append-only history; this is the single running→terminal transition.
	UpdateSyncLog(ctx context.Context, log *model.SyncLog) error

	// UpdatePortalSyncStatus records the outcome of the latest sync on the
	// portal row. syncedAt is nil on failure (the timestamp marks the last
	// successful sync).
	UpdatePortalSyncStatus(ctx context.Context, portalID, status string, syncedAt *time.Time) error

	// Ping verifies connectivity.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
