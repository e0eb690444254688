package notion

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterBuilders(t *testing.T) {
	tests := []struct {
		name   string
		filter Filter
		want   string
	}{
		{
			name:   "select",
			filter: FilterBySelect("Estado", "Activo"),
			want:   `{"property":"Estado","select":{"equals":"Activo"}}`,
		},
		{
			name:   "relation",
			filter: FilterByRelation("Proyecto", "p1"),
			want:   `{"property":"Proyecto","relation":{"contains":"p1"}}`,
		},
		{
			name:   "checkbox",
			filter: FilterByCheckbox("Visible", true),
			want:   `{"checkbox":{"equals":true},"property":"Visible"}`,
		},
		{
			name: "and of two",
			filter: AndFilters(
				FilterByCheckbox("Visible", true),
				FilterBySelect("Estado", "Activo"),
			),
			want: `{"and":[{"checkbox":{"equals":true},"property":"Visible"},{"property":"Estado","select":{"equals":"Activo"}}]}`,
		},
		{
			name: "or of two",
			filter: OrFilters(
				FilterBySelect("Estado", "Activo"),
				FilterBySelect("Estado", "Pausado"),
			),
			want: `{"or":[{"property":"Estado","select":{"equals":"Activo"}},{"property":"Estado","select":{"equals":"Pausado"}}]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := tt.filter.Encode()
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(raw))
		})
	}
}

func TestCombinatorsCollapse(t *testing.T) {
	assert.Nil(t, AndFilters())
	assert.Nil(t, OrFilters())

	single := FilterBySelect("Estado", "Activo")
	assert.Equal(t, single, AndFilters(single))
	assert.Equal(t, single, OrFilters(single))

	raw, err := Filter(nil).Encode()
	require.NoError(t, err)
	assert.Nil(t, raw)
}

func TestSortBy(t *testing.T) {
	assert.Equal(t, map[string]interface{}{
		"property":  "Fecha",
		"direction": "descending",
	}, SortBy("Fecha", "descending"))

	assert.Equal(t, "ascending", SortBy("Fecha", "")["direction"])
}
