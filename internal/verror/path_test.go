package verror

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPath_String(t *testing.T) {
	tests := []struct {
		name string
		path Path
		want string
	}{
		{"empty", nil, ""},
		{"root", Root("where"), "where"},
		{"nested", Root("where").Key("user").Key("is"), "where.user.is"},
		{"index", Root("orderBy").Index(2).Key("title"), "orderBy[2].title"},
		{"leading index", Path{}.Index(0).Key("id"), "[0].id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.path.String())
		})
	}
}

func TestPath_SiblingsDoNotAlias(t *testing.T) {
	base := make(Path, 0, 8)
	base = base.Key("where")

	left := base.Key("AND")
	right := base.Key("OR")

	assert.Equal(t, "where.AND", left.String())
	assert.Equal(t, "where.OR", right.String())
	assert.Equal(t, "where", base.String())
}

func TestPath_ErrorCopiesPath(t *testing.T) {
	p := make(Path, 0, 4).Key("data")
	err := Shape(p.Key("title"), "bad")

	p2 := p.Key("url")
	_ = p2

	assert.Equal(t, "data.title", err.Path.String())
}

func TestPath_Elements(t *testing.T) {
	p := Root("where").Key("OR").Index(1)
	assert.Equal(t, []any{"where", "OR", 1}, p.Elements())
}
