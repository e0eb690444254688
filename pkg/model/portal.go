// pkg/model/portal.go
package model

import "time"

// Portal statuses.
const (
	PortalStatusDraft     = "draft"
	PortalStatusPublished = "published"
)

// Last-sync outcomes recorded on the portal row.
const (
	LastSyncOK    = "ok"
	LastSyncError = "error"
)

// Portal sections a source can feed. Every snapshot carries all three, empty
// or not.
var PortalSections = []string{"tasks", "milestones", "history"}

// Portal is one published view over a set of Notion sources. Configuration
// is owned by the external wizard/storage layer; this core reads it only.
type Portal struct {
	ID             string     `db:"id"`
	UserID         string     `db:"user_id"`
	Name           string     `db:"name"`
	PublicToken    string     `db:"public_token"`
	Status         string     `db:"status"`
	Template       string     `db:"template"`
	Branding       string     `db:"branding"`
	LastSyncAt     *time.Time `db:"last_sync_at"`
	LastSyncStatus string     `db:"last_sync_status"`
	CreatedAt      time.Time  `db:"created_at"`

	// Populated by GetPortalWithSourcesAndCredential
	Sources    []Source          `db:"-"`
	Connection *NotionConnection `db:"-"`
}

// PortalRef is the minimal portal identity used by fleet sweeps.
type PortalRef struct {
	ID   string `db:"id"`
	Name string `db:"name"`
}

// NotionConnection is an external-access credential for a user's workspace.
// Token acquisition and refresh live outside this core.
type NotionConnection struct {
	ID            string    `db:"id"`
	UserID        string    `db:"user_id"`
	WorkspaceID   string    `db:"workspace_id"`
	WorkspaceName string    `db:"workspace_name"`
	AccessToken   string    `db:"access_token"`
	CreatedAt     time.Time `db:"created_at"`
}
