// pkg/transform/allowlist.go
package transform

import (
	"errors"

	"github.com/portalforge/portal-sync/pkg/notion"
)

// ErrNoProperties is returned when a raw record carries no property container.
var ErrNoProperties = errors.New("el item no tiene propiedades")

// AllowedProperty is one allowlist entry: the exhaustive declaration of an
// external field permitted to leave the security boundary.
type AllowedProperty struct {
	NotionKey   string `json:"notionKey"`   // Property name in Notion
	DisplayName string `json:"displayName"` // Name shown in the portal
	Type        string `json:"type"`        // Notion property type
}

// TransformedItem is the projection of one raw record: a flat mapping of
// display name to simple value, restricted to the allowlist.
type TransformedItem struct {
	ID         string                 `json:"id"`
	Properties map[string]interface{} `json:"properties"`
	URL        string                 `json:"url,omitempty"`
}

// TransformWithAllowlist projects a raw record through an allowlist. The
// output key set is exactly the allowlist's display names: fields absent
// from the record map to nil, and no other property of the record can leak
// through. Values are scalars, flat arrays, or start/end date pairs only.
func TransformWithAllowlist(page notion.Page, allowlist []AllowedProperty) (TransformedItem, error) {
	if page.Properties == nil {
		return TransformedItem{}, ErrNoProperties
	}

	transformed := TransformedItem{
		ID:         page.ID,
		Properties: make(map[string]interface{}, len(allowlist)),
		URL:        page.URL,
	}

	for _, allowed := range allowlist {
		prop, ok := page.Properties[allowed.NotionKey]
		if !ok {
			transformed.Properties[allowed.DisplayName] = nil
			continue
		}
		transformed.Properties[allowed.DisplayName] = extractPropertyValue(prop)
	}

	return transformed, nil
}

// extractPropertyValue extracts a simple value from a property according to
// its declared type. Email values are unconditionally suppressed: that is a
// fixed security rule, independent of allowlist intent. Unsupported types
// yield nil.
func extractPropertyValue(prop notion.Property) interface{} {
	switch prop.Type {
	case notion.TypeTitle:
		return joinPlainText(prop.Title)

	case notion.TypeRichText:
		return joinPlainText(prop.RichText)

	case notion.TypeNumber:
		if prop.Number == nil {
			return nil
		}
		return *prop.Number

	case notion.TypeSelect:
		if prop.Select == nil {
			return nil
		}
		return prop.Select.Name

	case notion.TypeMultiSelect:
		names := make([]string, 0, len(prop.MultiSelect))
		for _, opt := range prop.MultiSelect {
			names = append(names, opt.Name)
		}
		return names

	case notion.TypeDate:
		return dateToValue(prop.Date)

	case notion.TypeCheckbox:
		if prop.Checkbox == nil {
			return false
		}
		return *prop.Checkbox

	case notion.TypeURL:
		if prop.URL == nil {
			return nil
		}
		return *prop.URL

	case notion.TypeEmail:
		// Never expose real email addresses
		return nil

	case notion.TypePhoneNumber:
		if prop.PhoneNumber == nil {
			return nil
		}
		return *prop.PhoneNumber

	case notion.TypeStatus:
		if prop.Status == nil {
			return nil
		}
		return prop.Status.Name

	case notion.TypePeople:
		// Names only, never emails
		names := make([]string, 0, len(prop.People))
		for _, person := range prop.People {
			name := person.Name
			if name == "" {
				name = "Usuario"
			}
			names = append(names, name)
		}
		return names

	case notion.TypeFiles:
		// Public file URLs only
		files := make([]interface{}, 0, len(prop.Files))
		for _, f := range prop.Files {
			var url string
			if f.File != nil {
				url = f.File.URL
			} else if f.External != nil {
				url = f.External.URL
			}
			files = append(files, map[string]interface{}{
				"name": f.Name,
				"url":  url,
			})
		}
		return files

	case notion.TypeRelation:
		// IDs only, no related data
		ids := make([]string, 0, len(prop.Relation))
		for _, rel := range prop.Relation {
			ids = append(ids, rel.ID)
		}
		return ids

	case notion.TypeFormula:
		return extractFormulaValue(prop.Formula)

	case notion.TypeRollup:
		return extractRollupValue(prop.Rollup)

	case notion.TypeCreatedTime:
		if prop.CreatedTime == "" {
			return nil
		}
		return prop.CreatedTime

	case notion.TypeLastEditedTime:
		if prop.LastEditedTime == "" {
			return nil
		}
		return prop.LastEditedTime

	case notion.TypeCreatedBy:
		return personName(prop.CreatedBy)

	case notion.TypeLastEditedBy:
		return personName(prop.LastEditedBy)

	default:
		// Unsupported property type
		return nil
	}
}

// extractFormulaValue unwraps a formula to its underlying scalar.
func extractFormulaValue(formula *notion.Formula) interface{} {
	if formula == nil {
		return nil
	}

	switch formula.Type {
	case "string":
		if formula.String == nil {
			return nil
		}
		return *formula.String
	case "number":
		if formula.Number == nil {
			return nil
		}
		return *formula.Number
	case "boolean":
		if formula.Boolean == nil {
			return nil
		}
		return *formula.Boolean
	case "date":
		if formula.Date == nil {
			return nil
		}
		return formula.Date.Start
	default:
		return nil
	}
}

// extractRollupValue unwraps a rollup to its underlying scalar. Array
// rollups are reduced to their element count.
func extractRollupValue(rollup *notion.Rollup) interface{} {
	if rollup == nil {
		return nil
	}

	switch rollup.Type {
	case "number":
		if rollup.Number == nil {
			return nil
		}
		return *rollup.Number
	case "date":
		if rollup.Date == nil {
			return nil
		}
		return rollup.Date.Start
	case "array":
		return len(rollup.Array)
	default:
		return nil
	}
}

// ValidateAllowlist reports whether every entry has all three fields set.
// A sync must refuse to run against an invalid allowlist.
func ValidateAllowlist(allowlist []AllowedProperty) bool {
	for _, entry := range allowlist {
		if entry.NotionKey == "" || entry.DisplayName == "" || entry.Type == "" {
			return false
		}
	}
	return true
}

func joinPlainText(fragments []notion.RichText) interface{} {
	if len(fragments) == 0 {
		return nil
	}

	var text string
	for _, fragment := range fragments {
		text += fragment.PlainText
	}
	if text == "" {
		return nil
	}
	return text
}

func dateToValue(date *notion.DateValue) interface{} {
	if date == nil {
		return nil
	}

	var end interface{}
	if date.End != nil {
		end = *date.End
	}
	return map[string]interface{}{
		"start": date.Start,
		"end":   end,
	}
}

func personName(person *notion.Person) string {
	if person == nil || person.Name == "" {
		return "Usuario"
	}
	return person.Name
}
