package store

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/querygate/internal/catalog"
	"github.com/roach88/querygate/internal/ir"
	"github.com/roach88/querygate/internal/queryir"
	"github.com/roach88/querygate/internal/testutil"
	"github.com/roach88/querygate/internal/validator"
)

// createTestStore creates a new file-backed store for testing with a
// deterministic clock and sequential ids.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path, catalog.MustDefault().Registry,
		WithClock(testutil.NewDeterministicClock().Now),
		WithIDGenerator(testutil.NewSequentialIDs("id").Next),
	)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// validate runs a JSON input through the validator.
func validate(t *testing.T, s *Store, entity, op, input string) queryir.Args {
	t.Helper()
	var in any
	require.NoError(t, json.Unmarshal([]byte(input), &in))
	args, err := validator.New(s.registry).Validate(entity, op, in)
	require.NoError(t, err)
	return args
}

func createRow(t *testing.T, s *Store, entity, input string) Row {
	t.Helper()
	args := validate(t, s, entity, queryir.OpCreate, input).(*queryir.CreateArgs)
	row, err := s.Create(context.Background(), entity, args.Data)
	require.NoError(t, err)
	return row
}

func findRows(t *testing.T, s *Store, entity, input string) []Row {
	t.Helper()
	args := validate(t, s, entity, queryir.OpFindMany, input).(*queryir.FindArgs)
	rows, err := s.FindMany(context.Background(), entity, args)
	require.NoError(t, err)
	return rows
}

// ids returns the id column of rows in order.
func ids(rows []Row) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = string(r["id"].(ir.IRString))
	}
	return out
}

// seed creates three users and three bookmarks:
//
//	u1 a@example.com settings {"theme":"dark"}   b1 "Go" (5 clicks), b2 "SQLite" (2 clicks)
//	u2 b@example.com settings JsonNull           b3 "go again" (9 clicks)
//	u3 no email      settings DbNull
func seed(t *testing.T, s *Store) {
	t.Helper()
	createRow(t, s, "User", `{"data": {"id": "u1", "email": "a@example.com", "name": "Ada", "settings": {"theme": "dark"}}}`)
	createRow(t, s, "User", `{"data": {"id": "u2", "email": "b@example.com", "name": "bob", "settings": "JsonNull"}}`)
	createRow(t, s, "User", `{"data": {"id": "u3"}}`)
	createRow(t, s, "Bookmark", `{"data": {"id": "b1", "url": "https://go.dev", "title": "Go", "clickCount": 5, "userId": "u1"}}`)
	createRow(t, s, "Bookmark", `{"data": {"id": "b2", "url": "https://sqlite.org", "title": "SQLite", "clickCount": 2, "userId": "u1"}}`)
	createRow(t, s, "Bookmark", `{"data": {"id": "b3", "url": "https://go.dev", "title": "go again", "clickCount": 9, "userId": "u2"}}`)
}
