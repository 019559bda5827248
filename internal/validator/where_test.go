package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/querygate/internal/ir"
	"github.com/roach88/querygate/internal/queryir"
	"github.com/roach88/querygate/internal/verror"
)

func TestWhere_BareValueIsEquals(t *testing.T) {
	v := newTestValidator(t)
	w, err := v.Where("Bookmark", decode(t, `{"title":"go"}`))
	require.NoError(t, err)

	cond, ok := w.Field("title")
	require.True(t, ok)
	assert.Equal(t, &queryir.ScalarFilter{Equals: ir.IRString("go")}, cond)
}

func TestWhere_LogicalGroups(t *testing.T) {
	v := newTestValidator(t)
	w, err := v.Where("Bookmark", decode(t, `{
		"AND": {"title": "a"},
		"OR": [{"url": "b"}, {"AND": [{"clickCount": {"gte": 1}}], "NOT": {"description": null}}],
		"NOT": []
	}`))
	require.NoError(t, err)

	require.Len(t, w.AND, 1)
	require.Len(t, w.OR, 2)
	require.Len(t, w.OR[1].AND, 1)
	require.Len(t, w.OR[1].NOT, 1)
	assert.NotNil(t, w.NOT)
	assert.Empty(t, w.NOT)

	cond, ok := w.OR[1].NOT[0].Field("description")
	require.True(t, ok)
	assert.Equal(t, ir.IRNull{}, cond.(*queryir.ScalarFilter).Equals)
}

func TestWhere_Rejections(t *testing.T) {
	v := newTestValidator(t)
	tests := []struct {
		name   string
		entity string
		input  string
		kind   verror.Kind
		path   string
	}{
		{"OR must be an array", "Bookmark", `{"OR":{"title":"a"}}`, verror.KindShapeMismatch, "OR"},
		{"unknown field", "Bookmark", `{"titel":"a"}`, verror.KindShapeMismatch, "titel"},
		{"unknown key deep inside OR", "Bookmark", `{"OR":[{"title":"a"},{"AND":[{"nope":1}]}]}`, verror.KindShapeMismatch, "OR[1].AND[0].nope"},
		{"null on required scalar", "Bookmark", `{"title":null}`, verror.KindShapeMismatch, "title"},
		{"wrong literal type", "Bookmark", `{"clickCount":"many"}`, verror.KindShapeMismatch, "clickCount"},
		{"string operator on Int", "Bookmark", `{"clickCount":{"contains":"1"}}`, verror.KindShapeMismatch, "clickCount.contains"},
		{"Int literal beyond int64", "Bookmark", `{"clickCount":{"gt":9223372036854775807}}`, verror.KindShapeMismatch, "clickCount.gt"},
		{"invalid mode", "Bookmark", `{"title":{"contains":"a","mode":"loose"}}`, verror.KindInvalidEnumValue, "title.mode"},
		{"is on a to-many relation", "Bookmark", `{"tags":{"is":{"tagId":"t"}}}`, verror.KindRelationCardinalityMismatch, "tags.is"},
		{"isNot on a to-many relation", "User", `{"bookmarks":{"isNot":{}}}`, verror.KindRelationCardinalityMismatch, "bookmarks.isNot"},
		{"some on a to-one relation", "Bookmark", `{"user":{"some":{"name":"a"}}}`, verror.KindRelationCardinalityMismatch, "user.some"},
		{"null on a required relation", "Bookmark", `{"user":null}`, verror.KindShapeMismatch, "user"},
		{"is null on a required relation", "Bookmark", `{"user":{"is":null}}`, verror.KindShapeMismatch, "user.is"},
		{"aggregate filter outside having", "Bookmark", `{"clickCount":{"_avg":{"gt":1}}}`, verror.KindShapeMismatch, "clickCount._avg"},
		{"AnyNull is a filter token", "User", `{"settings":{"equals":"AnyNull","bogus":1}}`, verror.KindShapeMismatch, "settings.bogus"},
		{"list operator on scalar list", "FeedEntry", `{"categories":{"has":1}}`, verror.KindShapeMismatch, "categories.has"},
		{"not an object", "Bookmark", `[]`, verror.KindShapeMismatch, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.Where(tt.entity, decode(t, tt.input))
			assertRejected(t, err, tt.kind, tt.path)
		})
	}
}

func TestWhere_ToOneShorthand(t *testing.T) {
	v := newTestValidator(t)

	w, err := v.Where("Bookmark", decode(t, `{"user":{"email":"a@b.c"}}`))
	require.NoError(t, err)
	cond, _ := w.Field("user")
	f := cond.(*queryir.ToOneFilter)
	require.NotNil(t, f.Is)
	assert.Nil(t, f.IsNot)

	explicit, err := v.Where("Bookmark", decode(t, `{"user":{"is":{"email":"a@b.c"}}}`))
	require.NoError(t, err)
	assert.Equal(t, w, explicit)
}

func TestWhere_OptionalToOneNull(t *testing.T) {
	v := newTestValidator(t)

	w, err := v.Where("Bookmark", decode(t, `{"category":null}`))
	require.NoError(t, err)
	cond, _ := w.Field("category")
	assert.Equal(t, &queryir.ToOneFilter{IsNull: true}, cond)

	w, err = v.Where("Bookmark", decode(t, `{"category":{"isNot":null}}`))
	require.NoError(t, err)
	cond, _ = w.Field("category")
	assert.Equal(t, &queryir.ToOneFilter{IsNotNull: true}, cond)
}

func TestWhere_JSONNullMarkers(t *testing.T) {
	v := newTestValidator(t)
	tests := []struct {
		input string
		want  ir.IRValue
	}{
		{`{"settings":"DbNull"}`, ir.DbNull},
		{`{"settings":"JsonNull"}`, ir.JsonNull},
		{`{"settings":"AnyNull"}`, ir.AnyNull},
		{`{"settings":null}`, ir.DbNull},
		{`{"settings":{"equals":"AnyNull"}}`, ir.AnyNull},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			w, err := v.Where("User", decode(t, tt.input))
			require.NoError(t, err)
			cond, _ := w.Field("settings")
			assert.Equal(t, tt.want, cond.(*queryir.JSONFilter).Equals)
		})
	}
}

func TestWhere_ToManyFilter(t *testing.T) {
	v := newTestValidator(t)
	w, err := v.Where("User", decode(t, `{"bookmarks":{"some":{"title":"a"},"none":{}}}`))
	require.NoError(t, err)

	cond, _ := w.Field("bookmarks")
	f := cond.(*queryir.ToManyFilter)
	assert.NotNil(t, f.Some)
	assert.NotNil(t, f.None)
	assert.Nil(t, f.Every)
}
