package queryir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/querygate/internal/ir"
)

func idLookup(id string) *WhereUnique {
	return &WhereUnique{Keys: []KeyMatch{{Name: "id", Values: []FieldValue{{Field: "id", Value: ir.IRString(id)}}}}}
}

func TestCreateDataWire(t *testing.T) {
	d := &CreateData{
		Fields: []FieldValue{
			{Field: "title", Value: ir.IRString("Go")},
			{Field: "url", Value: ir.IRString("https://go.dev")},
		},
		Relations: []RelationWrite{
			{Relation: "user", Ops: []RelationOp{NestedConnect{Where: []*WhereUnique{idLookup("u1")}}}},
			{Relation: "tags", Many: true, Ops: []RelationOp{
				NestedCreate{Data: []*CreateData{{Fields: []FieldValue{{Field: "tagId", Value: ir.IRString("t1")}}}}},
			}},
		},
	}

	assert.Equal(t, map[string]any{
		"title": "Go",
		"url":   "https://go.dev",
		"user":  map[string]any{"connect": map[string]any{"id": "u1"}},
		"tags":  map[string]any{"create": []any{map[string]any{"tagId": "t1"}}},
	}, d.Wire())

	v, ok := d.Field("title")
	require.True(t, ok)
	assert.Equal(t, ir.IRString("Go"), v)

	rw, ok := d.Relation("user")
	require.True(t, ok)
	_, ok = rw.Op(OpNameConnect)
	assert.True(t, ok)
	_, ok = rw.Op(OpNameCreate)
	assert.False(t, ok)
}

func TestUpdateDataWire(t *testing.T) {
	d := &UpdateData{
		Fields: []FieldUpdate{
			{Field: "clickCount", Operator: OpIncrement, Value: ir.IRInt(1)},
			{Field: "description", Operator: OpSet, Value: ir.IRNull{}},
			{Field: "metadata", Operator: OpSet, Value: ir.JsonNull},
		},
		Relations: []RelationWrite{
			{Relation: "category", Ops: []RelationOp{NestedDisconnect{Enabled: true}}},
		},
	}

	assert.Equal(t, map[string]any{
		"clickCount":  map[string]any{"increment": int64(1)},
		"description": map[string]any{"set": nil},
		"metadata":    map[string]any{"set": "JsonNull"},
		"category":    map[string]any{"disconnect": true},
	}, d.Wire())

	fu, ok := d.Field("clickCount")
	require.True(t, ok)
	assert.Equal(t, OpIncrement, fu.Operator)
}

func TestNestedOpsWire(t *testing.T) {
	skip := true
	create := &CreateData{Fields: []FieldValue{{Field: "name", Value: ir.IRString("go")}}}
	update := &UpdateData{Fields: []FieldUpdate{{Field: "name", Operator: OpSet, Value: ir.IRString("golang")}}}
	filter := &Where{Fields: []FieldFilter{{Field: "name", Condition: &ScalarFilter{Equals: ir.IRString("go")}}}}

	tests := []struct {
		name string
		op   RelationOp
		many bool
		want any
	}{
		{
			name: "createMany",
			op:   NestedCreateMany{Data: []*CreateData{create}, SkipDuplicates: &skip},
			many: true,
			want: map[string]any{"data": []any{map[string]any{"name": "go"}}, "skipDuplicates": true},
		},
		{
			name: "connect many",
			op:   NestedConnect{Where: []*WhereUnique{idLookup("a"), idLookup("b")}},
			many: true,
			want: []any{map[string]any{"id": "a"}, map[string]any{"id": "b"}},
		},
		{
			name: "connectOrCreate one",
			op:   NestedConnectOrCreate{Items: []ConnectOrCreateItem{{Where: idLookup("a"), Create: create}}},
			want: map[string]any{"where": map[string]any{"id": "a"}, "create": map[string]any{"name": "go"}},
		},
		{
			name: "upsert one without filter",
			op:   NestedUpsert{Items: []UpsertItem{{Create: create, Update: update}}},
			want: map[string]any{
				"create": map[string]any{"name": "go"},
				"update": map[string]any{"name": map[string]any{"set": "golang"}},
			},
		},
		{
			name: "update many relation",
			op:   NestedUpdate{Items: []UpdateItem{{Unique: idLookup("a"), Data: update}}},
			many: true,
			want: []any{map[string]any{
				"where": map[string]any{"id": "a"},
				"data":  map[string]any{"name": map[string]any{"set": "golang"}},
			}},
		},
		{
			name: "updateMany",
			op:   NestedUpdateMany{Items: []UpdateManyItem{{Where: filter, Data: update}}},
			many: true,
			want: []any{map[string]any{
				"where": map[string]any{"name": map[string]any{"equals": "go"}},
				"data":  map[string]any{"name": map[string]any{"set": "golang"}},
			}},
		},
		{
			name: "delete one with filter",
			op:   NestedDelete{Filter: filter},
			want: map[string]any{"name": map[string]any{"equals": "go"}},
		},
		{
			name: "deleteMany",
			op:   NestedDeleteMany{Where: []*Where{filter}},
			many: true,
			want: []any{map[string]any{"name": map[string]any{"equals": "go"}}},
		},
		{
			name: "disconnect many",
			op:   NestedDisconnect{Where: []*WhereUnique{idLookup("a")}},
			many: true,
			want: []any{map[string]any{"id": "a"}},
		},
		{
			name: "set empty",
			op:   NestedSet{Where: []*WhereUnique{}},
			many: true,
			want: []any{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rw := RelationWrite{Relation: "r", Many: tt.many, Ops: []RelationOp{tt.op}}
			assert.Equal(t, map[string]any{tt.op.Name(): tt.want}, rw.Wire())
		})
	}
}
