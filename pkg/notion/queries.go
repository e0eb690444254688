// pkg/notion/queries.go
package notion

import "encoding/json"

// Helpers for building Notion API filter and sort expressions. The client
// treats these as opaque payloads; they exist so callers don't hand-write
// the API's nested JSON shapes.

// Filter is a single property filter expression.
type Filter map[string]interface{}

// FilterBySelect matches pages whose select property equals value.
func FilterBySelect(property, value string) Filter {
	return Filter{
		"property": property,
		"select":   map[string]interface{}{"equals": value},
	}
}

// FilterByRelation matches pages whose relation property contains relationID.
func FilterByRelation(property, relationID string) Filter {
	return Filter{
		"property": property,
		"relation": map[string]interface{}{"contains": relationID},
	}
}

// FilterByCheckbox matches pages whose checkbox property equals value.
func FilterByCheckbox(property string, value bool) Filter {
	return Filter{
		"property": property,
		"checkbox": map[string]interface{}{"equals": value},
	}
}

// AndFilters combines filters with AND. Returns nil for an empty list and
// the filter itself for a single-element list.
func AndFilters(filters ...Filter) Filter {
	switch len(filters) {
	case 0:
		return nil
	case 1:
		return filters[0]
	default:
		return Filter{"and": filters}
	}
}

// OrFilters combines filters with OR.
func OrFilters(filters ...Filter) Filter {
	switch len(filters) {
	case 0:
		return nil
	case 1:
		return filters[0]
	default:
		return Filter{"or": filters}
	}
}

// SortBy builds a sort expression for a property. Direction is "ascending"
// or "descending"; empty defaults to ascending.
func SortBy(property, direction string) map[string]interface{} {
	if direction == "" {
		direction = "ascending"
	}
	return map[string]interface{}{
		"property":  property,
		"direction": direction,
	}
}

// Encode marshals a filter for use as an opaque query expression.
func (f Filter) Encode() (json.RawMessage, error) {
	if f == nil {
		return nil, nil
	}
	return json.Marshal(f)
}
