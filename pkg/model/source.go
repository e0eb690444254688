// pkg/model/source.go
package model

import (
	"encoding/json"
	"fmt"

	"github.com/portalforge/portal-sync/pkg/transform"
)

// Source binds one portal section to one Notion database plus its allowlist,
// filter and mapping configuration. The config payloads are stored as JSON
// text and parsed exactly once, here at the storage boundary.
type Source struct {
	ID            string `db:"id"`
	PortalID      string `db:"portal_id"`
	Section       string `db:"section"`
	NotionDBID    string `db:"notion_db_id"`
	FilterJSON    string `db:"filter_json"`
	AllowlistJSON string `db:"allowlist_json"`
	MappingsJSON  string `db:"mappings_json"`
}

// ParseAllowlist decodes the source's allowlist configuration.
func (s *Source) ParseAllowlist() ([]transform.AllowedProperty, error) {
	if s.AllowlistJSON == "" {
		return nil, fmt.Errorf("source %s has no allowlist", s.ID)
	}

	var allowlist []transform.AllowedProperty
	if err := json.Unmarshal([]byte(s.AllowlistJSON), &allowlist); err != nil {
		return nil, fmt.Errorf("failed to parse allowlist for source %s: %w", s.ID, err)
	}
	return allowlist, nil
}

// ParseFilter returns the source's filter expression as an opaque payload
// for the Notion API, or nil when no filter is configured.
func (s *Source) ParseFilter() (json.RawMessage, error) {
	if s.FilterJSON == "" || s.FilterJSON == "null" {
		return nil, nil
	}

	if !json.Valid([]byte(s.FilterJSON)) {
		return nil, fmt.Errorf("invalid filter JSON for source %s", s.ID)
	}
	return json.RawMessage(s.FilterJSON), nil
}

// ParseMappings decodes the source's mapping configuration. Malformation is
// tolerated by design; see transform.ParseMappingsConfig.
func (s *Source) ParseMappings() transform.MappingsConfig {
	return transform.ParseMappingsConfig(json.RawMessage(s.MappingsJSON))
}
