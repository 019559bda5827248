package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/querygate/internal/ir"
	"github.com/roach88/querygate/internal/queryir"
	"github.com/roach88/querygate/internal/testutil"
)

func TestCreate_AppliesDefaults(t *testing.T) {
	s := createTestStore(t)

	user := createRow(t, s, "User", `{"data": {"email": "a@example.com"}}`)
	assert.Equal(t, ir.IRString("id-0001"), user["id"])
	assert.Equal(t, ir.NewIRTime(testutil.Epoch), user["createdAt"])
	assert.Equal(t, ir.IRNull{}, user["name"])

	bm := createRow(t, s, "Bookmark", `{"data": {"url": "https://go.dev", "title": "Go", "userId": "id-0001"}}`)
	assert.Equal(t, ir.IRString("id-0002"), bm["id"])
	assert.Equal(t, ir.IRInt(0), bm["clickCount"])

	rows := findRows(t, s, "Bookmark", `{}`)
	require.Len(t, rows, 1)
	assert.Equal(t, ir.IRInt(0), rows[0]["clickCount"])
	assert.Equal(t, ir.IRNull{}, rows[0]["categoryId"])
}

func TestCreate_ListAndBooleanDefaults(t *testing.T) {
	s := createTestStore(t)
	createRow(t, s, "User", `{"data": {"id": "u1"}}`)
	createRow(t, s, "Feed", `{"data": {"id": "f1", "name": "Go blog", "url": "https://go.dev/blog/feed.atom", "userId": "u1"}}`)
	createRow(t, s, "FeedEntry", `{"data": {"id": "e1", "title": "Go 1.23", "link": "https://go.dev/blog/go1.23", "feedId": "f1", "userId": "u1"}}`)

	rows := findRows(t, s, "FeedEntry", `{}`)
	require.Len(t, rows, 1)
	assert.Equal(t, ir.IRArray{}, rows[0]["categories"])
	assert.Equal(t, ir.IRBool(true), rows[0]["unread"])
	assert.Equal(t, ir.IRNull{}, rows[0]["metadata"])
}

func TestCreate_ConnectResolvesForeignKey(t *testing.T) {
	s := createTestStore(t)
	createRow(t, s, "User", `{"data": {"id": "u1", "email": "a@example.com"}}`)

	t.Run("by referenced key", func(t *testing.T) {
		row := createRow(t, s, "Bookmark", `{"data": {"url": "https://a", "title": "A", "user": {"connect": {"id": "u1"}}}}`)
		assert.Equal(t, ir.IRString("u1"), row["userId"])
	})

	t.Run("by another unique key", func(t *testing.T) {
		row := createRow(t, s, "Bookmark", `{"data": {"url": "https://b", "title": "B", "user": {"connect": {"email": "a@example.com"}}}}`)
		assert.Equal(t, ir.IRString("u1"), row["userId"])
	})

	t.Run("missing row", func(t *testing.T) {
		args := validate(t, s, "Bookmark", queryir.OpCreate,
			`{"data": {"url": "https://c", "title": "C", "user": {"connect": {"email": "nobody@example.com"}}}}`).(*queryir.CreateArgs)
		_, err := s.Create(context.Background(), "Bookmark", args.Data)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestCreate_UnsupportedNestedWrite(t *testing.T) {
	s := createTestStore(t)

	args := validate(t, s, "User", queryir.OpCreate,
		`{"data": {"bookmarks": {"create": [{"url": "https://a", "title": "A"}]}}}`).(*queryir.CreateArgs)
	_, err := s.Create(context.Background(), "User", args.Data)
	assert.ErrorIs(t, err, ErrUnsupportedWrite)
}

func TestCreate_ConstraintsEnforced(t *testing.T) {
	s := createTestStore(t)
	createRow(t, s, "User", `{"data": {"id": "u1"}}`)
	createRow(t, s, "Bookmark", `{"data": {"url": "https://a", "title": "A", "userId": "u1"}}`)

	t.Run("compound unique key", func(t *testing.T) {
		args := validate(t, s, "Bookmark", queryir.OpCreate,
			`{"data": {"url": "https://a", "title": "again", "userId": "u1"}}`).(*queryir.CreateArgs)
		_, err := s.Create(context.Background(), "Bookmark", args.Data)
		assert.ErrorContains(t, err, "UNIQUE")
	})

	t.Run("foreign key", func(t *testing.T) {
		args := validate(t, s, "Bookmark", queryir.OpCreate,
			`{"data": {"url": "https://b", "title": "B", "userId": "ghost"}}`).(*queryir.CreateArgs)
		_, err := s.Create(context.Background(), "Bookmark", args.Data)
		assert.ErrorContains(t, err, "FOREIGN KEY")
	})
}

func TestCreate_UnknownEntity(t *testing.T) {
	s := createTestStore(t)
	_, err := s.Create(context.Background(), "Nope", &queryir.CreateData{})
	assert.ErrorContains(t, err, "unknown entity")
}

func TestDeleteMany(t *testing.T) {
	s := createTestStore(t)
	seed(t, s)
	ctx := context.Background()

	args := validate(t, s, "Bookmark", queryir.OpDeleteMany, `{"where": {"userId": "u1"}, "limit": 1}`).(*queryir.DeleteManyArgs)
	n, err := s.DeleteMany(ctx, "Bookmark", args)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	// The limit removes the first row in primary key order.
	assert.Equal(t, []string{"b2", "b3"}, ids(findRows(t, s, "Bookmark", `{}`)))

	args = validate(t, s, "Bookmark", queryir.OpDeleteMany, `{}`).(*queryir.DeleteManyArgs)
	n, err = s.DeleteMany(ctx, "Bookmark", args)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestDeleteMany_CascadesToRequiredRelations(t *testing.T) {
	s := createTestStore(t)
	seed(t, s)

	args := validate(t, s, "User", queryir.OpDeleteMany, `{"where": {"id": "u1"}}`).(*queryir.DeleteManyArgs)
	_, err := s.DeleteMany(context.Background(), "User", args)
	require.NoError(t, err)

	assert.Equal(t, []string{"b3"}, ids(findRows(t, s, "Bookmark", `{}`)))
}
