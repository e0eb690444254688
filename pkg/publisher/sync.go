// pkg/publisher/sync.go
package publisher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/portalforge/portal-sync/pkg/config"
	"github.com/portalforge/portal-sync/pkg/model"
	"github.com/portalforge/portal-sync/pkg/notion"
	"github.com/portalforge/portal-sync/pkg/store"
	"github.com/portalforge/portal-sync/pkg/transform"
)

// Errors surfaced to sync callers. The messages are user-visible and must
// stay stable; downstream dashboards match on them.
var (
	ErrPortalNotFound = errors.New("Portal no encontrado")
	ErrNoConnection   = errors.New("No hay conexión de Notion para este usuario")
)

func errAllowlist(sourceID string) error {
	return fmt.Errorf("Allowlist inválida para source %s", sourceID)
}

// NotionAPI is the slice of the Notion client the orchestrator needs.
type NotionAPI interface {
	QueryDatabase(ctx context.Context, databaseID string, filter, sorts json.RawMessage, maxItems int) ([]notion.Page, error)
}

// ClientFactory builds a Notion client for a stored access credential.
type ClientFactory func(accessToken string) NotionAPI

// NotionClients returns the production factory for the given client config.
func NotionClients(cfg *config.NotionConfig, logger *zap.Logger) ClientFactory {
	return func(accessToken string) NotionAPI {
		return notion.NewClientWithConfig(accessToken, notion.ClientConfig{
			BaseURL:              cfg.BaseURL,
			MaxRequestsPerSecond: cfg.MaxRequestsPerSecond,
			Timeout:              cfg.RequestTimeout,
		}, logger)
	}
}

// Syncer drives portal synchronization: fetch, project, sanitize, map, and
// record the outcome of every attempt.
type Syncer struct {
	store       store.Store
	clients     ClientFactory
	logger      *zap.Logger
	invalidator Invalidator

	maxItemsPerSource  int
	maxItemsPerSection int
}

// NewSyncer creates a sync orchestrator.
func NewSyncer(st store.Store, clients ClientFactory, logger *zap.Logger) *Syncer {
	return &Syncer{
		store:              st,
		clients:            clients,
		logger:             logger.Named("syncer"),
		invalidator:        &loggingInvalidator{logger: logger},
		maxItemsPerSource:  1000,
		maxItemsPerSection: 200,
	}
}

// WithInvalidator sets the downstream cache invalidation hook.
func (s *Syncer) WithInvalidator(inv Invalidator) *Syncer {
	if inv != nil {
		s.invalidator = inv
	}
	return s
}

// WithLimits overrides the per-source and per-section item caps.
func (s *Syncer) WithLimits(perSource, perSection int) *Syncer {
	if perSource > 0 {
		s.maxItemsPerSource = perSource
	}
	if perSection > 0 {
		s.maxItemsPerSection = perSection
	}
	return s
}

// SyncPortal runs one full sync attempt for a portal. It always returns a
// structured result; no error escapes this boundary. The attempt is recorded
// as one append-only log row that transitions running→ok or running→error
// exactly once.
func (s *Syncer) SyncPortal(ctx context.Context, portalID string) model.SyncResult {
	startTime := time.Now()

	syncLog, err := s.store.CreateSyncLog(ctx, portalID)
	if err != nil {
		s.logger.Error("Failed to create sync log",
			zap.String("portalID", portalID),
			zap.Error(err))
		return s.failSync(ctx, portalID, nil, startTime, err)
	}

	itemsCount, err := s.runSync(ctx, portalID)
	if err != nil {
		return s.failSync(ctx, portalID, syncLog, startTime, err)
	}

	now := time.Now()
	if err := s.store.UpdatePortalSyncStatus(ctx, portalID, model.LastSyncOK, &now); err != nil {
		return s.failSync(ctx, portalID, syncLog, startTime, err)
	}

	syncLog.Complete(model.SyncStatusOK, itemsCount, "")
	if err := s.store.UpdateSyncLog(ctx, syncLog); err != nil {
		s.logger.Error("Failed to finalize sync log",
			zap.String("portalID", portalID),
			zap.Error(err))
	}

	s.invalidator.InvalidatePortal(portalID)

	duration := time.Since(startTime)
	s.logger.Info("Portal sync completed",
		zap.String("portalID", portalID),
		zap.Int("itemsCount", itemsCount),
		zap.Duration("duration", duration))

	return model.SyncResult{
		Success:    true,
		ItemsCount: itemsCount,
		Duration:   duration,
	}
}

// runSync performs the fetch→project→sanitize→map pipeline for every source
// of the portal. Any source failure aborts the whole portal sync; isolation
// is provided one level up, at the fleet sweep.
func (s *Syncer) runSync(ctx context.Context, portalID string) (int, error) {
	portal, err := s.store.GetPortalWithSourcesAndCredential(ctx, portalID)
	if err != nil {
		return 0, err
	}
	if portal == nil {
		return 0, ErrPortalNotFound
	}
	if portal.Connection == nil {
		return 0, ErrNoConnection
	}

	client := s.clients(portal.Connection.AccessToken)

	totalItems := 0
	for i := range portal.Sources {
		count, err := s.syncSource(ctx, client, &portal.Sources[i])
		if err != nil {
			return 0, err
		}
		totalItems += count
	}

	return totalItems, nil
}

// syncSource runs the pipeline for one source and returns its item count.
func (s *Syncer) syncSource(ctx context.Context, client NotionAPI, source *model.Source) (int, error) {
	allowlist, err := source.ParseAllowlist()
	if err != nil || !transform.ValidateAllowlist(allowlist) {
		return 0, errAllowlist(source.ID)
	}

	filter, err := source.ParseFilter()
	if err != nil {
		return 0, err
	}
	mappings := source.ParseMappings()

	pages, err := client.QueryDatabase(ctx, source.NotionDBID, filter, nil, s.maxItemsPerSource)
	if err != nil {
		return 0, err
	}

	items, err := transformPages(pages, allowlist, mappings)
	if err != nil {
		return 0, err
	}

	s.logger.Debug("Source synced",
		zap.String("sourceID", source.ID),
		zap.String("section", source.Section),
		zap.Int("items", len(items)))

	return len(items), nil
}

// transformPages projects, sanitizes and maps a batch of raw records.
func transformPages(
	pages []notion.Page,
	allowlist []transform.AllowedProperty,
	mappings transform.MappingsConfig,
) ([]map[string]interface{}, error) {
	items := make([]map[string]interface{}, 0, len(pages))

	for _, page := range pages {
		projected, err := transform.TransformWithAllowlist(page, allowlist)
		if err != nil {
			return nil, err
		}

		sanitized := transform.SanitizeItem(projected, transform.SanitizeOptions{})
		mapped := transform.ApplyMappings(sanitized.Properties, mappings)

		item := make(map[string]interface{}, len(mapped)+1)
		item["id"] = sanitized.ID
		for key, value := range mapped {
			item[key] = value
		}
		items = append(items, item)
	}

	return items, nil
}

// failSync records a failed attempt: terminal error log row, portal status,
// structured failure result.
func (s *Syncer) failSync(
	ctx context.Context,
	portalID string,
	syncLog *model.SyncLog,
	startTime time.Time,
	cause error,
) model.SyncResult {
	duration := time.Since(startTime)

	if syncLog != nil {
		syncLog.Complete(model.SyncStatusError, 0, cause.Error())
		if err := s.store.UpdateSyncLog(ctx, syncLog); err != nil {
			s.logger.Error("Failed to finalize sync log",
				zap.String("portalID", portalID),
				zap.Error(err))
		}
	}

	if err := s.store.UpdatePortalSyncStatus(ctx, portalID, model.LastSyncError, nil); err != nil {
		s.logger.Error("Failed to update portal sync status",
			zap.String("portalID", portalID),
			zap.Error(err))
	}

	s.logger.Warn("Portal sync failed",
		zap.String("portalID", portalID),
		zap.Duration("duration", duration),
		zap.Error(cause))

	return model.SyncResult{
		Success:    false,
		ItemsCount: 0,
		Duration:   duration,
		Error:      cause.Error(),
	}
}

// SyncAllPublishedPortals sweeps every published portal sequentially. One
// portal's failure never stops the sweep.
func (s *Syncer) SyncAllPublishedPortals(ctx context.Context) {
	portals, err := s.store.ListPublishedPortals(ctx)
	if err != nil {
		s.logger.Error("Failed to list published portals", zap.Error(err))
		return
	}

	s.logger.Info("Starting portal sweep", zap.Int("portals", len(portals)))

	for _, portal := range portals {
		result := s.SyncPortal(ctx, portal.ID)
		if result.Success {
			s.logger.Info("✓ Portal synced",
				zap.String("portal", portal.Name),
				zap.Int("items", result.ItemsCount),
				zap.Duration("duration", result.Duration))
		} else {
			s.logger.Error("✗ Portal sync failed",
				zap.String("portal", portal.Name),
				zap.String("error", result.Error))
		}
	}
}
