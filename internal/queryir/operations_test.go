package queryir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/querygate/internal/ir"
)

func sampleFind() *FindArgs {
	take := int64(10)
	return &FindArgs{
		Where:   &Where{Fields: []FieldFilter{{Field: "userId", Condition: &ScalarFilter{Equals: ir.IRString("u1")}}}},
		OrderBy: []OrderBy{FieldOrder{Field: "createdAt", Sort: SortDesc}},
		Take:    &take,
	}
}

func TestFindArgsCanonical(t *testing.T) {
	got, err := Canonical(sampleFind())
	require.NoError(t, err)
	assert.Equal(t,
		`{"orderBy":[{"createdAt":"desc"}],"take":10,"where":{"userId":{"equals":"u1"}}}`,
		string(got))
}

func TestFingerprintStable(t *testing.T) {
	a, err := Fingerprint(OpFindMany, sampleFind())
	require.NoError(t, err)
	b, err := Fingerprint(OpFindMany, sampleFind())
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Len(t, a, 64)

	first, err := Fingerprint(OpFindFirst, sampleFind())
	require.NoError(t, err)
	assert.NotEqual(t, a, first, "operation name is part of the hash")
}

func TestFingerprintDomains(t *testing.T) {
	args := &DeleteManyArgs{}
	read := ir.MustFingerprint(ir.DomainRead, map[string]any{"op": OpDeleteMany, "args": args.Wire()})
	got, err := Fingerprint(OpDeleteMany, args)
	require.NoError(t, err)
	assert.NotEqual(t, read, got, "mutations hash in their own domain")
}

func TestIsMutation(t *testing.T) {
	for _, op := range Operations {
		switch op {
		case OpFindMany, OpFindFirst, OpFindUnique, OpGroupBy, OpAggregate, OpCount:
			assert.False(t, IsMutation(op), op)
		default:
			assert.True(t, IsMutation(op), op)
		}
	}
}

func TestArgsWire(t *testing.T) {
	limit := int64(2)
	skip := false
	lookup := idLookup("b1")
	data := &CreateData{Fields: []FieldValue{{Field: "url", Value: ir.IRString("u")}}}
	update := &UpdateData{Fields: []FieldUpdate{{Field: "url", Operator: OpSet, Value: ir.IRString("v")}}}
	sel := &Selection{Items: []SelectItem{{Name: "id", Enabled: true}}}

	tests := []struct {
		name string
		args Args
		want map[string]any
	}{
		{
			name: "unique",
			args: &UniqueArgs{Where: lookup, Select: sel},
			want: map[string]any{"where": map[string]any{"id": "b1"}, "select": map[string]any{"id": true}},
		},
		{
			name: "create",
			args: &CreateArgs{Data: data},
			want: map[string]any{"data": map[string]any{"url": "u"}},
		},
		{
			name: "createMany",
			args: &CreateManyArgs{Data: []*CreateData{data}, SkipDuplicates: &skip},
			want: map[string]any{"data": []any{map[string]any{"url": "u"}}, "skipDuplicates": false},
		},
		{
			name: "update",
			args: &UpdateArgs{Where: lookup, Data: update},
			want: map[string]any{"where": map[string]any{"id": "b1"}, "data": map[string]any{"url": map[string]any{"set": "v"}}},
		},
		{
			name: "updateMany",
			args: &UpdateManyArgs{Data: update, Limit: &limit},
			want: map[string]any{"data": map[string]any{"url": map[string]any{"set": "v"}}, "limit": int64(2)},
		},
		{
			name: "upsert",
			args: &UpsertArgs{Where: lookup, Create: data, Update: update},
			want: map[string]any{
				"where":  map[string]any{"id": "b1"},
				"create": map[string]any{"url": "u"},
				"update": map[string]any{"url": map[string]any{"set": "v"}},
			},
		},
		{
			name: "groupBy",
			args: &GroupByArgs{By: []string{"userId"}, Aggregates: Aggregates{Count: &AggregateSelect{All: true}}},
			want: map[string]any{"by": []any{"userId"}, "_count": true},
		},
		{
			name: "aggregate",
			args: &AggregateArgs{Aggregates: Aggregates{Avg: &AggregateSelect{Fields: []string{"clickCount"}}}},
			want: map[string]any{"_avg": map[string]any{"clickCount": true}},
		},
		{
			name: "count",
			args: &CountArgs{Select: &AggregateSelect{All: true}},
			want: map[string]any{"select": true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.args.Wire())
		})
	}
}
