// pkg/publisher/renderer.go
package publisher

import (
	"context"

	"go.uber.org/zap"

	"github.com/portalforge/portal-sync/pkg/model"
	"github.com/portalforge/portal-sync/pkg/transform"
)

// GetPortalData builds the sanitized snapshot the public renderer serves.
// Returns (nil, nil) when the portal does not exist, is not published, or
// has no usable credential: the renderer treats all three as not-found and
// leaks nothing about which it was.
//
// A failing section is logged and left empty rather than failing the whole
// snapshot.
func (s *Syncer) GetPortalData(ctx context.Context, publicToken string) (*model.PortalData, error) {
	portal, err := s.store.GetPortalByPublicToken(ctx, publicToken)
	if err != nil {
		return nil, err
	}
	if portal == nil || portal.Status != model.PortalStatusPublished {
		return nil, nil
	}
	if portal.Connection == nil {
		return nil, nil
	}

	client := s.clients(portal.Connection.AccessToken)

	sections := make(map[string]model.SectionData, len(model.PortalSections))
	for _, section := range model.PortalSections {
		sections[section] = model.SectionData{
			Items:   []map[string]interface{}{},
			Columns: []model.ColumnDef{},
		}
	}

	for i := range portal.Sources {
		source := &portal.Sources[i]

		data, err := s.loadSection(ctx, client, source)
		if err != nil {
			s.logger.Error("Failed to load portal section",
				zap.String("portalID", portal.ID),
				zap.String("section", source.Section),
				zap.Error(err))
			continue
		}

		sections[source.Section] = data
	}

	return &model.PortalData{
		ID:       portal.ID,
		Name:     portal.Name,
		Template: portal.Template,
		Branding: portal.Branding,
		Sections: sections,
		LastSync: portal.LastSyncAt,
	}, nil
}

// loadSection runs the pipeline for one source at the renderer's item cap
// and derives the section's column definitions from the allowlist.
func (s *Syncer) loadSection(ctx context.Context, client NotionAPI, source *model.Source) (model.SectionData, error) {
	allowlist, err := source.ParseAllowlist()
	if err != nil || !transform.ValidateAllowlist(allowlist) {
		return model.SectionData{}, errAllowlist(source.ID)
	}

	filter, err := source.ParseFilter()
	if err != nil {
		return model.SectionData{}, err
	}
	mappings := source.ParseMappings()

	pages, err := client.QueryDatabase(ctx, source.NotionDBID, filter, nil, s.maxItemsPerSection)
	if err != nil {
		return model.SectionData{}, err
	}

	items, err := transformPages(pages, allowlist, mappings)
	if err != nil {
		return model.SectionData{}, err
	}

	columns := make([]model.ColumnDef, 0, len(allowlist))
	for _, prop := range allowlist {
		columns = append(columns, model.ColumnDef{
			Key:   prop.DisplayName,
			Label: prop.DisplayName,
			Type:  inferColumnType(prop.Type),
		})
	}

	return model.SectionData{
		Items:      items,
		Columns:    columns,
		TotalCount: len(items),
	}, nil
}

// inferColumnType derives a renderer column type from a Notion property type.
func inferColumnType(notionType string) string {
	switch notionType {
	case "status", "select":
		return "status"
	case "date":
		return "date"
	case "number":
		return "number"
	case "multi_select", "people":
		return "array"
	default:
		return "text"
	}
}
