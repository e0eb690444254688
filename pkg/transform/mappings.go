// pkg/transform/mappings.go
package transform

import (
	"encoding/json"
	"regexp"
	"strings"
)

// DisplayValue is the label+color presentation pair a raw enumerated value
// maps to.
type DisplayValue struct {
	Label string `json:"label"`
	Color string `json:"color"`
}

// DefaultStatusMapping translates common raw status values into readable
// labels. Overridable per source via MappingsConfig.StatusMapping.
var DefaultStatusMapping = map[string]DisplayValue{
	"not_started": {Label: "No iniciado", Color: "gray"},
	"in_progress": {Label: "En progreso", Color: "blue"},
	"completed":   {Label: "Completado", Color: "green"},
	"blocked":     {Label: "Bloqueado", Color: "red"},
	"cancelled":   {Label: "Cancelado", Color: "gray"},
}

// DefaultPriorityMapping translates common raw priority values.
var DefaultPriorityMapping = map[string]DisplayValue{
	"low":    {Label: "Baja", Color: "gray"},
	"medium": {Label: "Media", Color: "yellow"},
	"high":   {Label: "Alta", Color: "orange"},
	"urgent": {Label: "Urgente", Color: "red"},
}

var whitespacePattern = regexp.MustCompile(`\s+`)

// normalizeValue lowercases and collapses whitespace to underscores.
func normalizeValue(value string) string {
	return whitespacePattern.ReplaceAllString(strings.ToLower(value), "_")
}

// MapStatus maps a raw status value to its display pair. Unknown values fall
// back to the original label in gray rather than failing. A nil table means
// the default mapping.
func MapStatus(value string, table map[string]DisplayValue) *DisplayValue {
	if value == "" {
		return nil
	}

	if table == nil {
		table = DefaultStatusMapping
	}

	if mapped, ok := table[normalizeValue(value)]; ok {
		return &DisplayValue{Label: mapped.Label, Color: mapped.Color}
	}
	return &DisplayValue{Label: value, Color: "gray"}
}

// MapPriority maps a raw priority value to its display pair.
func MapPriority(value string) *DisplayValue {
	if value == "" {
		return nil
	}

	if mapped, ok := DefaultPriorityMapping[normalizeValue(value)]; ok {
		return &DisplayValue{Label: mapped.Label, Color: mapped.Color}
	}
	return &DisplayValue{Label: value, Color: "gray"}
}

// MappingsConfig declares which item fields receive status/priority mapping.
// Fields not named are left untouched.
type MappingsConfig struct {
	StatusFields   []string
	PriorityFields []string
	StatusMapping  map[string]DisplayValue
}

// ApplyMappings maps the declared status and priority fields of an item's
// properties. Only non-empty string values are mapped; anything else is left
// as is.
func ApplyMappings(properties map[string]interface{}, cfg MappingsConfig) map[string]interface{} {
	result := make(map[string]interface{}, len(properties))
	for key, value := range properties {
		result[key] = value
	}

	for _, field := range cfg.StatusFields {
		if raw, ok := result[field].(string); ok && raw != "" {
			result[field] = MapStatus(raw, cfg.StatusMapping)
		}
	}

	for _, field := range cfg.PriorityFields {
		if raw, ok := result[field].(string); ok && raw != "" {
			result[field] = MapPriority(raw)
		}
	}

	return result
}

// ParseMappingsConfig coerces an arbitrary configuration payload into a
// MappingsConfig. Malformed sub-fields are dropped rather than failing: a
// bad mapping config must never abort a sync on its own.
func ParseMappingsConfig(raw json.RawMessage) MappingsConfig {
	var cfg MappingsConfig

	if len(raw) == 0 {
		return cfg
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return cfg
	}

	if data, ok := fields["statusFields"]; ok {
		var statusFields []string
		if err := json.Unmarshal(data, &statusFields); err == nil {
			cfg.StatusFields = statusFields
		}
	}

	if data, ok := fields["priorityFields"]; ok {
		var priorityFields []string
		if err := json.Unmarshal(data, &priorityFields); err == nil {
			cfg.PriorityFields = priorityFields
		}
	}

	if data, ok := fields["statusMapping"]; ok {
		var statusMapping map[string]DisplayValue
		if err := json.Unmarshal(data, &statusMapping); err == nil {
			cfg.StatusMapping = statusMapping
		}
	}

	return cfg
}
