package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/querygate/internal/schema"
)

func requires(name, target string) schema.RelationDecl {
	return schema.RelationDecl{
		Name:       name,
		Target:     target,
		Kind:       schema.ToOneRequired,
		Fields:     []string{name + "Id"},
		References: []string{"id"},
	}
}

func TestAnalyzeCycles_Empty(t *testing.T) {
	assert.Empty(t, AnalyzeCycles(nil))
}

func TestAnalyzeCycles_DAG(t *testing.T) {
	warnings := AnalyzeCycles(validDecls())
	assert.Empty(t, warnings, "Bookmark -> User is not a cycle")
}

func TestAnalyzeCycles_OptionalBreaksCycle(t *testing.T) {
	decls := []schema.EntityDecl{
		{Name: "Feed", Relations: []schema.RelationDecl{requires("category", "Category")}},
		{Name: "Category", Relations: []schema.RelationDecl{
			{Name: "pinned", Target: "Feed", Kind: schema.ToOneOptional, Fields: []string{"pinnedId"}, References: []string{"id"}},
		}},
	}
	assert.Empty(t, AnalyzeCycles(decls))
}

func TestAnalyzeCycles_SelfLoop(t *testing.T) {
	decls := []schema.EntityDecl{
		{Name: "Node", Relations: []schema.RelationDecl{requires("parent", "Node")}},
	}

	warnings := AnalyzeCycles(decls)
	require.Len(t, warnings, 1)
	assert.Equal(t, []string{"Node", "Node"}, warnings[0].Path)
	assert.Equal(t, "warning", warnings[0].Level)
	assert.Contains(t, warnings[0].Message, "requires itself")
}

func TestAnalyzeCycles_TwoEntities(t *testing.T) {
	decls := []schema.EntityDecl{
		{Name: "Feed", Relations: []schema.RelationDecl{requires("category", "Category")}},
		{Name: "Category", Relations: []schema.RelationDecl{requires("feed", "Feed")}},
	}

	warnings := AnalyzeCycles(decls)
	require.Len(t, warnings, 1)
	assert.Equal(t, []string{"Category", "Feed", "Category"}, warnings[0].Path)
	assert.Contains(t, warnings[0].Message, "Category -> Feed -> Category")
}

func TestAnalyzeCycles_Deterministic(t *testing.T) {
	decls := []schema.EntityDecl{
		{Name: "A", Relations: []schema.RelationDecl{requires("b", "B")}},
		{Name: "B", Relations: []schema.RelationDecl{requires("c", "C")}},
		{Name: "C", Relations: []schema.RelationDecl{requires("a", "A")}},
		{Name: "D", Relations: []schema.RelationDecl{requires("d", "D")}},
	}

	first := AnalyzeCycles(decls)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, AnalyzeCycles(decls))
	}
	require.Len(t, first, 2)
	assert.Equal(t, []string{"A", "B", "C", "A"}, first[0].Path)
	assert.Equal(t, []string{"D", "D"}, first[1].Path)
}
