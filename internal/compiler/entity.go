package compiler

import (
	"encoding/json"
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/querygate/internal/scalar"
	"github.com/roach88/querygate/internal/schema"
)

// CompileCatalog compiles every entity under the top-level `entity` struct
// of a CUE value, in declaration order.
//
//	ctx := cuecontext.New()
//	v := ctx.CompileBytes(src)
//	decls, err := CompileCatalog(v)
func CompileCatalog(v cue.Value) ([]schema.EntityDecl, error) {
	// Validate surfaces closedness errors nested below the root.
	if err := v.Validate(); err != nil {
		return nil, formatCUEError(err)
	}

	entities := v.LookupPath(cue.ParsePath("entity"))
	if !entities.Exists() {
		return nil, &CompileError{
			Field:   "entity",
			Message: "no entities declared",
			Pos:     v.Pos(),
		}
	}

	iter, err := entities.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var decls []schema.EntityDecl
	for iter.Next() {
		decl, err := CompileEntity(iter.Value())
		if err != nil {
			return nil, err
		}
		decl.Name = iter.Selector().Unquoted()
		decls = append(decls, decl)
	}
	return decls, nil
}

// CompileEntity parses a CUE value into an EntityDecl.
// Uses CUE SDK's Go API directly (not CLI subprocess).
//
// The CUE value should be the entity struct itself, e.g.:
//
//	entity: Tag: {
//		fields: {
//			id:   {type: "String", id: true, default: "cuid"}
//			name: {type: "String"}
//		}
//		relations: bookmarks: {target: "TagsOnBookmarks", kind: "many"}
//		unique: [{fields: ["name", "userId"]}]
//	}
func CompileEntity(v cue.Value) (schema.EntityDecl, error) {
	var decl schema.EntityDecl
	if err := v.Err(); err != nil {
		return decl, formatCUEError(err)
	}

	labels := v.Path().Selectors()
	if len(labels) > 0 {
		decl.Name = labels[len(labels)-1].String()
	}

	fields, err := parseFields(v)
	if err != nil {
		return decl, err
	}
	decl.Fields = fields

	relations, err := parseRelations(v)
	if err != nil {
		return decl, err
	}
	decl.Relations = relations

	uniques, err := parseUniques(v)
	if err != nil {
		return decl, err
	}
	decl.Uniques = uniques

	relevance, err := optionalStrings(v, "relevance")
	if err != nil {
		return decl, err
	}
	decl.Relevance = relevance

	return decl, nil
}

// parseFields extracts scalar fields in declaration order.
func parseFields(v cue.Value) ([]schema.FieldDecl, error) {
	fieldsVal := v.LookupPath(cue.ParsePath("fields"))
	if !fieldsVal.Exists() {
		return nil, &CompileError{
			Field:   "fields",
			Message: "fields are required",
			Pos:     v.Pos(),
		}
	}

	iter, err := fieldsVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var fields []schema.FieldDecl
	for iter.Next() {
		fv := iter.Value()
		fd := schema.FieldDecl{Name: iter.Label()}

		typeName, err := fv.LookupPath(cue.ParsePath("type")).String()
		if err != nil {
			return nil, &CompileError{
				Field:   fmt.Sprintf("fields.%s.type", fd.Name),
				Message: "type is required",
				Pos:     fv.Pos(),
			}
		}
		t, ok := scalar.ParseType(typeName)
		if !ok {
			return nil, &CompileError{
				Field:   fmt.Sprintf("fields.%s.type", fd.Name),
				Message: fmt.Sprintf("unknown type %q", typeName),
				Pos:     fv.Pos(),
			}
		}
		fd.Type = t

		if fd.ID, err = optionalBool(fv, "id"); err != nil {
			return nil, err
		}
		if fd.Unique, err = optionalBool(fv, "unique"); err != nil {
			return nil, err
		}

		if dv := fv.LookupPath(cue.ParsePath("default")); dv.Exists() {
			name, err := dv.String()
			if err != nil {
				return nil, formatCUEError(err)
			}
			d, ok := schema.ParseDefault(name)
			if !ok || d == schema.DefaultValue {
				return nil, &CompileError{
					Field:   fmt.Sprintf("fields.%s.default", fd.Name),
					Message: fmt.Sprintf("unknown default generator %q", name),
					Pos:     dv.Pos(),
				}
			}
			fd.Default = d
		}

		if lv := fv.LookupPath(cue.ParsePath("value")); lv.Exists() {
			// Round-trip through JSON so literals decode to the same shapes
			// as request payloads.
			raw, err := lv.MarshalJSON()
			if err != nil {
				return nil, formatCUEError(err)
			}
			var literal any
			if err := json.Unmarshal(raw, &literal); err != nil {
				return nil, err
			}
			fd.Default = schema.DefaultValue
			fd.Value = literal
		}

		fields = append(fields, fd)
	}
	return fields, nil
}

// parseRelations extracts relations in declaration order.
func parseRelations(v cue.Value) ([]schema.RelationDecl, error) {
	relVal := v.LookupPath(cue.ParsePath("relations"))
	if !relVal.Exists() {
		return nil, nil
	}

	iter, err := relVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var relations []schema.RelationDecl
	for iter.Next() {
		rv := iter.Value()
		rd := schema.RelationDecl{Name: iter.Label()}

		if rd.Target, err = rv.LookupPath(cue.ParsePath("target")).String(); err != nil {
			return nil, &CompileError{
				Field:   fmt.Sprintf("relations.%s.target", rd.Name),
				Message: "target is required",
				Pos:     rv.Pos(),
			}
		}

		kindName, err := rv.LookupPath(cue.ParsePath("kind")).String()
		if err != nil {
			return nil, &CompileError{
				Field:   fmt.Sprintf("relations.%s.kind", rd.Name),
				Message: "kind is required",
				Pos:     rv.Pos(),
			}
		}
		kind, ok := schema.ParseRelationKind(kindName)
		if !ok {
			return nil, &CompileError{
				Field:   fmt.Sprintf("relations.%s.kind", rd.Name),
				Message: fmt.Sprintf("kind must be \"one\", \"one?\" or \"many\", got %q", kindName),
				Pos:     rv.Pos(),
			}
		}
		rd.Kind = kind

		if rd.Fields, err = optionalStrings(rv, "fields"); err != nil {
			return nil, err
		}
		if rd.References, err = optionalStrings(rv, "references"); err != nil {
			return nil, err
		}
		if iv := rv.LookupPath(cue.ParsePath("inverse")); iv.Exists() {
			if rd.Inverse, err = iv.String(); err != nil {
				return nil, formatCUEError(err)
			}
		}

		relations = append(relations, rd)
	}
	return relations, nil
}

// parseUniques extracts compound unique constraints.
func parseUniques(v cue.Value) ([]schema.UniqueDecl, error) {
	uniqueVal := v.LookupPath(cue.ParsePath("unique"))
	if !uniqueVal.Exists() {
		return nil, nil
	}

	iter, err := uniqueVal.List()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var uniques []schema.UniqueDecl
	for iter.Next() {
		uv := iter.Value()
		var ud schema.UniqueDecl

		if ud.Fields, err = optionalStrings(uv, "fields"); err != nil {
			return nil, err
		}
		if nv := uv.LookupPath(cue.ParsePath("name")); nv.Exists() {
			if ud.Name, err = nv.String(); err != nil {
				return nil, formatCUEError(err)
			}
		}
		if ud.Primary, err = optionalBool(uv, "primary"); err != nil {
			return nil, err
		}

		uniques = append(uniques, ud)
	}
	return uniques, nil
}

func optionalBool(v cue.Value, name string) (bool, error) {
	bv := v.LookupPath(cue.ParsePath(name))
	if !bv.Exists() {
		return false, nil
	}
	b, err := bv.Bool()
	if err != nil {
		return false, formatCUEError(err)
	}
	return b, nil
}

func optionalStrings(v cue.Value, name string) ([]string, error) {
	lv := v.LookupPath(cue.ParsePath(name))
	if !lv.Exists() {
		return nil, nil
	}
	iter, err := lv.List()
	if err != nil {
		return nil, formatCUEError(err)
	}
	var out []string
	for iter.Next() {
		s, err := iter.Value().String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		out = append(out, s)
	}
	return out, nil
}

// CompileError represents a compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	// CUE errors may contain multiple errors
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	// Return first error with position info
	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return err
}
