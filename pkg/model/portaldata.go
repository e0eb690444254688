// pkg/model/portaldata.go
package model

import "time"

// ColumnDef describes one column of a rendered section table.
type ColumnDef struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Type  string `json:"type"` // text, status, date, number, array
}

// SectionData is the sanitized item set of one portal section.
type SectionData struct {
	Items      []map[string]interface{} `json:"items"`
	Columns    []ColumnDef              `json:"columns"`
	TotalCount int                      `json:"totalCount"`
}

// PortalData is the fully sanitized snapshot handed to the public renderer.
// It contains nothing that did not pass the allowlist and sanitizer.
type PortalData struct {
	ID       string                 `json:"id"`
	Name     string                 `json:"name"`
	Template string                 `json:"template"`
	Branding string                 `json:"branding"`
	Sections map[string]SectionData `json:"sections"`
	LastSync *time.Time             `json:"lastSync"`
}
