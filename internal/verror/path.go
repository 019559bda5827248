package verror

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Segment is one step of a Path: an object key or an array index.
type Segment struct {
	Key     string
	Index   int
	IsIndex bool
}

// Path is the sequence of keys and indices leading to a value.
//
// Key and Index never modify the receiver, so a path may be shared by
// sibling branches of a recursive walk.
type Path []Segment

// Root returns a path starting at key.
func Root(key string) Path {
	return Path{{Key: key}}
}

// Key returns a new path extended by an object key.
func (p Path) Key(key string) Path {
	return append(p[:len(p):len(p)], Segment{Key: key})
}

// Index returns a new path extended by an array index.
func (p Path) Index(i int) Path {
	return append(p[:len(p):len(p)], Segment{Index: i, IsIndex: true})
}

// Clone returns a copy of p that shares no memory with it.
func (p Path) Clone() Path {
	if p == nil {
		return nil
	}
	out := make(Path, len(p))
	copy(out, p)
	return out
}

// String renders the path as `where.AND[0].url.equals`.
func (p Path) String() string {
	var b strings.Builder
	for i, seg := range p {
		if seg.IsIndex {
			b.WriteByte('[')
			b.WriteString(strconv.Itoa(seg.Index))
			b.WriteByte(']')
			continue
		}
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(seg.Key)
	}
	return b.String()
}

// Elements returns the path as a list of strings and ints, the form used in
// JSON output.
func (p Path) Elements() []any {
	out := make([]any, len(p))
	for i, seg := range p {
		if seg.IsIndex {
			out[i] = seg.Index
		} else {
			out[i] = seg.Key
		}
	}
	return out
}

// MarshalJSON renders the path in its dotted string form.
func (p Path) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}
