package queryir

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/querygate/internal/ir"
)

func TestSelectionWire(t *testing.T) {
	take := int64(5)
	sel := &Selection{Items: []SelectItem{
		{Name: "_count", Count: &CountSelection{Relations: []CountRelation{
			{Relation: "tags", Enabled: true},
			{Relation: "medias", Where: &Where{Fields: []FieldFilter{{Field: "medium", Condition: &ScalarFilter{Equals: ir.IRString("image")}}}}},
		}}},
		{Name: "tags", Args: &RelationArgs{Take: &take, OrderBy: []OrderBy{FieldOrder{Field: "createdAt", Sort: SortAsc}}}},
		{Name: "title", Enabled: true},
		{Name: "url", Enabled: false},
	}}

	assert.Equal(t, map[string]any{
		"_count": map[string]any{"select": map[string]any{
			"tags":   true,
			"medias": map[string]any{"where": map[string]any{"medium": map[string]any{"equals": "image"}}},
		}},
		"tags": map[string]any{
			"take":    int64(5),
			"orderBy": []any{map[string]any{"createdAt": "asc"}},
		},
		"title": true,
		"url":   false,
	}, sel.Wire())

	it, ok := sel.Item("tags")
	assert.True(t, ok)
	assert.NotNil(t, it.Args)

	var none *Selection
	_, ok = none.Item("tags")
	assert.False(t, ok)
}
