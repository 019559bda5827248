// Package catalog declares the bookmark and feed reader entities and builds
// them into a schema.Registry.
//
// The declarations live in catalog.cue, embedded at build time. Other
// catalogs in the same CUE format can be loaded with FromValue.
package catalog

import (
	_ "embed"
	"errors"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"

	"github.com/roach88/querygate/internal/compiler"
	"github.com/roach88/querygate/internal/schema"
)

//go:embed catalog.cue
var source []byte

// Source returns the embedded CUE declarations.
func Source() []byte {
	return source
}

// Catalog is a compiled and built set of entity declarations.
type Catalog struct {
	Registry *schema.Registry
	Decls    []schema.EntityDecl
	Warnings []compiler.CycleWarning
}

// Default compiles the embedded catalog. Each call builds a fresh registry.
func Default() (*Catalog, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(source, cue.Filename("catalog.cue"))
	return FromValue(v)
}

// MustDefault is like Default but panics on error.
// Use only in tests; the embedded catalog is covered by them.
func MustDefault() *Catalog {
	c, err := Default()
	if err != nil {
		panic(err)
	}
	return c
}

// FromValue compiles, validates and builds the entities of a CUE value.
// Validation errors are returned together, joined with errors.Join.
func FromValue(v cue.Value) (*Catalog, error) {
	decls, err := compiler.CompileCatalog(v)
	if err != nil {
		return nil, err
	}

	if verrs := compiler.Validate(decls); len(verrs) > 0 {
		errs := make([]error, len(verrs))
		for i, e := range verrs {
			errs[i] = e
		}
		return nil, errors.Join(errs...)
	}

	reg, err := schema.NewBuilder().Add(decls...).Build()
	if err != nil {
		return nil, err
	}

	return &Catalog{
		Registry: reg,
		Decls:    decls,
		Warnings: compiler.AnalyzeCycles(decls),
	}, nil
}
