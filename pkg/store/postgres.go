// pkg/store/postgres.go
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/portalforge/portal-sync/pkg/config"
	"github.com/portalforge/portal-sync/pkg/model"
)

// PostgresStore implements Store on PostgreSQL via sqlx.
type PostgresStore struct {
	db     *sqlx.DB
	logger *zap.Logger
	cfg    *config.PostgresConfig
}

// NewPostgresStore connects to PostgreSQL, configures the pool and ensures
// the schema exists.
func NewPostgresStore(ctx context.Context, cfg *config.PostgresConfig, logger *zap.Logger) (*PostgresStore, error) {
	logger = logger.Named("postgres-store")

	logger.Info("Connecting to PostgreSQL",
		zap.String("host", cfg.Host),
		zap.Int("port", cfg.Port),
		zap.String("database", cfg.Database),
		zap.String("user", cfg.User))

	db, err := sqlx.Open("postgres", cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize PostgreSQL connection: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}

	st := &PostgresStore{
		db:     db,
		logger: logger,
		cfg:    cfg,
	}

	if err := st.ensureSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ensure schema: %w", err)
	}

	return st, nil
}

// ensureSchema creates the sync_logs table if missing. The portal, source
// and connection tables are owned by the configuration layer; only the
// audit trail belongs to this core.
func (s *PostgresStore) ensureSchema(ctx context.Context) error {
	createSQL := `
		CREATE TABLE IF NOT EXISTS sync_logs (
			id TEXT PRIMARY KEY,
			portal_id TEXT NOT NULL,
			status TEXT NOT NULL,
			items_count INTEGER NOT NULL DEFAULT 0,
			error_msg TEXT NOT NULL DEFAULT '',
			started_at TIMESTAMP WITH TIME ZONE NOT NULL,
			completed_at TIMESTAMP WITH TIME ZONE,
			duration_ms BIGINT NOT NULL DEFAULT 0
		)
	`
	if _, err := s.db.ExecContext(ctx, createSQL); err != nil {
		return fmt.Errorf("failed to create sync_logs table: %w", err)
	}

	s.logger.Info("Ensured sync_logs table exists")
	return nil
}

// GetPortalWithSourcesAndCredential loads a portal with its sources and the
// most recent connection of its owning user.
func (s *PostgresStore) GetPortalWithSourcesAndCredential(ctx context.Context, portalID string) (*model.Portal, error) {
	portal, err := s.getPortal(ctx, `SELECT * FROM portals WHERE id = $1`, portalID)
	if portal == nil || err != nil {
		return nil, err
	}
	return portal, s.attachSourcesAndCredential(ctx, portal)
}

// GetPortalByPublicToken loads a portal by public token.
func (s *PostgresStore) GetPortalByPublicToken(ctx context.Context, publicToken string) (*model.Portal, error) {
	portal, err := s.getPortal(ctx, `SELECT * FROM portals WHERE public_token = $1`, publicToken)
	if portal == nil || err != nil {
		return nil, err
	}
	return portal, s.attachSourcesAndCredential(ctx, portal)
}

func (s *PostgresStore) getPortal(ctx context.Context, query, arg string) (*model.Portal, error) {
	var portal model.Portal
	err := s.db.GetContext(ctx, &portal, query, arg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load portal: %w", err)
	}
	return &portal, nil
}

func (s *PostgresStore) attachSourcesAndCredential(ctx context.Context, portal *model.Portal) error {
	sources := make([]model.Source, 0)
	err := s.db.SelectContext(ctx, &sources,
		`SELECT * FROM sources WHERE portal_id = $1 ORDER BY id`, portal.ID)
	if err != nil {
		return fmt.Errorf("failed to load sources: %w", err)
	}
	portal.Sources = sources

	var conn model.NotionConnection
	err = s.db.GetContext(ctx, &conn,
		`SELECT * FROM notion_connections WHERE user_id = $1 ORDER BY created_at DESC LIMIT 1`,
		portal.UserID)
	if errors.Is(err, sql.ErrNoRows) {
		portal.Connection = nil
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load notion connection: %w", err)
	}
	portal.Connection = &conn
	return nil
}

// ListPublishedPortals lists the portals eligible for a fleet sweep.
func (s *PostgresStore) ListPublishedPortals(ctx context.Context) ([]model.PortalRef, error) {
	refs := make([]model.PortalRef, 0)
	err := s.db.SelectContext(ctx, &refs,
		`SELECT id, name FROM portals WHERE status = $1 ORDER BY name`,
		model.PortalStatusPublished)
	if err != nil {
		return nil, fmt.Errorf("failed to list published portals: %w", err)
	}
	return refs, nil
}

// CreateSyncLog appends a running log row for a new sync attempt.
func (s *PostgresStore) CreateSyncLog(ctx context.Context, portalID string) (*model.SyncLog, error) {
	log := &model.SyncLog{
		ID:        uuid.New().String(),
		PortalID:  portalID,
		Status:    model.SyncStatusRunning,
		StartedAt: time.Now(),
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sync_logs (id, portal_id, status, started_at)
		VALUES ($1, $2, $3, $4)
	`, log.ID, log.PortalID, log.Status, log.StartedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create sync log: %w", err)
	}

	return log, nil
}

// UpdateSyncLog writes the terminal state of a log row.
func (s *PostgresStore) UpdateSyncLog(ctx context.Context, log *model.SyncLog) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE sync_logs
		SET status = $2, items_count = $3, error_msg = $4, completed_at = $5, duration_ms = $6
		WHERE id = $1
	`, log.ID, log.Status, log.ItemsCount, log.ErrorMsg, log.CompletedAt, log.DurationMS)
	if err != nil {
		return fmt.Errorf("failed to update sync log: %w", err)
	}
	return nil
}

// UpdatePortalSyncStatus records the latest sync outcome on the portal row.
func (s *PostgresStore) UpdatePortalSyncStatus(ctx context.Context, portalID, status string, syncedAt *time.Time) error {
	var err error
	if syncedAt != nil {
		_, err = s.db.ExecContext(ctx,
			`UPDATE portals SET last_sync_status = $2, last_sync_at = $3 WHERE id = $1`,
			portalID, status, *syncedAt)
	} else {
		_, err = s.db.ExecContext(ctx,
			`UPDATE portals SET last_sync_status = $2 WHERE id = $1`,
			portalID, status)
	}
	if err != nil {
		return fmt.Errorf("failed to update portal sync status: %w", err)
	}
	return nil
}

// Ping verifies database connectivity.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection.
func (s *PostgresStore) Close() error {
	s.logger.Info("Closing PostgreSQL connection")
	return s.db.Close()
}
