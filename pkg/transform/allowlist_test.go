package transform

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/portalforge/portal-sync/pkg/notion"
)

func strPtr(s string) *string   { return &s }
func f64Ptr(f float64) *float64 { return &f }
func boolPtr(b bool) *bool      { return &b }

func titleProp(text string) notion.Property {
	return notion.Property{
		Type:  notion.TypeTitle,
		Title: []notion.RichText{{PlainText: text}},
	}
}

func TestTransformOutputKeysMatchAllowlistExactly(t *testing.T) {
	page := notion.Page{
		ID: "r1",
		Properties: map[string]notion.Property{
			"Name":   titleProp("Task A"),
			"Secret": {Type: notion.TypeRichText, RichText: []notion.RichText{{PlainText: "hidden"}}},
			"Email":  {Type: notion.TypeEmail, Email: strPtr("x@y.com")},
		},
	}

	allowlist := []AllowedProperty{
		{NotionKey: "Name", DisplayName: "Nombre", Type: "title"},
		{NotionKey: "Missing", DisplayName: "Ausente", Type: "rich_text"},
	}

	item, err := TransformWithAllowlist(page, allowlist)
	require.NoError(t, err)

	assert.Equal(t, "r1", item.ID)
	assert.Len(t, item.Properties, 2)
	assert.Equal(t, "Task A", item.Properties["Nombre"])
	assert.Nil(t, item.Properties["Ausente"])
	assert.NotContains(t, item.Properties, "Secret")
	assert.NotContains(t, item.Properties, "Email")
}

func TestTransformEmailAlwaysSuppressed(t *testing.T) {
	// Even an explicitly allow-listed email must never cross the boundary
	page := notion.Page{
		ID: "r2",
		Properties: map[string]notion.Property{
			"Contact": {Type: notion.TypeEmail, Email: strPtr("someone@example.com")},
		},
	}

	allowlist := []AllowedProperty{
		{NotionKey: "Contact", DisplayName: "Contacto", Type: "email"},
	}

	item, err := TransformWithAllowlist(page, allowlist)
	require.NoError(t, err)
	assert.Contains(t, item.Properties, "Contacto")
	assert.Nil(t, item.Properties["Contacto"])
}

func TestTransformNoPropertyContainer(t *testing.T) {
	_, err := TransformWithAllowlist(notion.Page{ID: "r3"}, nil)
	assert.ErrorIs(t, err, ErrNoProperties)
}

func TestExtractPropertyValues(t *testing.T) {
	end := "2025-02-01"

	tests := []struct {
		name string
		prop notion.Property
		want interface{}
	}{
		{
			name: "title concatenates fragments",
			prop: notion.Property{Type: notion.TypeTitle, Title: []notion.RichText{
				{PlainText: "Hello "}, {PlainText: "world"},
			}},
			want: "Hello world",
		},
		{
			name: "empty title is nil",
			prop: notion.Property{Type: notion.TypeTitle},
			want: nil,
		},
		{
			name: "number",
			prop: notion.Property{Type: notion.TypeNumber, Number: f64Ptr(42)},
			want: float64(42),
		},
		{
			name: "empty number is nil",
			prop: notion.Property{Type: notion.TypeNumber},
			want: nil,
		},
		{
			name: "select option name",
			prop: notion.Property{Type: notion.TypeSelect, Select: &notion.Option{Name: "Alta"}},
			want: "Alta",
		},
		{
			name: "multi_select names",
			prop: notion.Property{Type: notion.TypeMultiSelect, MultiSelect: []notion.Option{
				{Name: "a"}, {Name: "b"},
			}},
			want: []string{"a", "b"},
		},
		{
			name: "empty multi_select is empty array",
			prop: notion.Property{Type: notion.TypeMultiSelect},
			want: []string{},
		},
		{
			name: "date with end",
			prop: notion.Property{Type: notion.TypeDate, Date: &notion.DateValue{Start: "2025-01-01", End: &end}},
			want: map[string]interface{}{"start": "2025-01-01", "end": "2025-02-01"},
		},
		{
			name: "date without end",
			prop: notion.Property{Type: notion.TypeDate, Date: &notion.DateValue{Start: "2025-01-01"}},
			want: map[string]interface{}{"start": "2025-01-01", "end": nil},
		},
		{
			name: "checkbox defaults to false",
			prop: notion.Property{Type: notion.TypeCheckbox},
			want: false,
		},
		{
			name: "checkbox true",
			prop: notion.Property{Type: notion.TypeCheckbox, Checkbox: boolPtr(true)},
			want: true,
		},
		{
			name: "status name",
			prop: notion.Property{Type: notion.TypeStatus, Status: &notion.Option{Name: "In Progress"}},
			want: "In Progress",
		},
		{
			name: "people names with fallback, never emails",
			prop: notion.Property{Type: notion.TypePeople, People: []notion.Person{
				{Name: "Ana"}, {},
			}},
			want: []string{"Ana", "Usuario"},
		},
		{
			name: "relation ids only",
			prop: notion.Property{Type: notion.TypeRelation, Relation: []notion.Relation{{ID: "p1"}}},
			want: []string{"p1"},
		},
		{
			name: "formula unwraps string",
			prop: notion.Property{Type: notion.TypeFormula, Formula: &notion.Formula{
				Type: "string", String: strPtr("computed"),
			}},
			want: "computed",
		},
		{
			name: "formula unwraps number",
			prop: notion.Property{Type: notion.TypeFormula, Formula: &notion.Formula{
				Type: "number", Number: f64Ptr(3.5),
			}},
			want: 3.5,
		},
		{
			name: "rollup unwraps date start",
			prop: notion.Property{Type: notion.TypeRollup, Rollup: &notion.Rollup{
				Type: "date", Date: &notion.DateValue{Start: "2025-03-01"},
			}},
			want: "2025-03-01",
		},
		{
			name: "rollup array reduces to count",
			prop: notion.Property{Type: notion.TypeRollup, Rollup: &notion.Rollup{
				Type: "array", Array: make([]json.RawMessage, 3),
			}},
			want: 3,
		},
		{
			name: "created_by name only",
			prop: notion.Property{Type: notion.TypeCreatedBy, CreatedBy: &notion.Person{Name: "Ana"}},
			want: "Ana",
		},
		{
			name: "unknown type is nil",
			prop: notion.Property{Type: "unique_id"},
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractPropertyValue(tt.prop))
		})
	}
}

func TestValidateAllowlist(t *testing.T) {
	valid := []AllowedProperty{
		{NotionKey: "Name", DisplayName: "Nombre", Type: "title"},
	}
	assert.True(t, ValidateAllowlist(valid))
	assert.True(t, ValidateAllowlist(nil))

	for _, invalid := range [][]AllowedProperty{
		{{NotionKey: "", DisplayName: "Nombre", Type: "title"}},
		{{NotionKey: "Name", DisplayName: "", Type: "title"}},
		{{NotionKey: "Name", DisplayName: "Nombre", Type: ""}},
	} {
		assert.False(t, ValidateAllowlist(invalid))
	}
}
