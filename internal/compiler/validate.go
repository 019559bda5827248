package compiler

import (
	"fmt"
	"strings"

	"github.com/roach88/querygate/internal/scalar"
	"github.com/roach88/querygate/internal/schema"
	"github.com/roach88/querygate/internal/verror"
)

// Validation error codes (E100-E199)
const (
	// Catalog errors (E100)
	ErrNoEntities = "E100" // catalog declares no entities

	// Entity errors (E101-E109)
	ErrDuplicateName  = "E101" // duplicate entity/field/relation name
	ErrReservedName   = "E102" // name collides with an input keyword
	ErrInvalidDefault = "E103" // default generator or literal incompatible with type
	ErrNoUniqueKey    = "E104" // entity has no way to be identified
	ErrUniqueMember   = "E105" // unique key member unknown or not comparable
	ErrRelevanceField = "E106" // relevance field unknown or not a String

	// Relation errors (E110-E119)
	ErrUnknownTarget     = "E110" // relation target is not a declared entity
	ErrForeignKeyField   = "E111" // foreign key field unknown
	ErrForeignKeyArity   = "E112" // fields/references length mismatch
	ErrForeignKeyOnMany  = "E113" // to-many relation declares foreign keys
	ErrMissingForeignKey = "E114" // foreign key without references or vice versa
)

// reservedNames are input keywords a field or relation name would shadow.
var reservedNames = map[string]bool{
	"AND": true, "OR": true, "NOT": true,
	"_count": true, "_avg": true, "_sum": true, "_min": true, "_max": true,
	"_relevance": true,
}

// ValidationError represents a catalog validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Line    int    `json:"line,omitempty"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("[%s] line %d: %s: %s", e.Code, e.Line, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate checks compiled entity declarations against catalog rules.
// Returns all errors found (does not fail-fast). Declarations that pass
// are safe to hand to schema.Builder, which still resolves inverses.
func Validate(decls []schema.EntityDecl) []ValidationError {
	if len(decls) == 0 {
		return []ValidationError{{
			Field:   "entity",
			Message: "at least one entity is required",
			Code:    ErrNoEntities,
		}}
	}

	var errs []ValidationError
	known := make(map[string]bool, len(decls))
	for _, d := range decls {
		if known[d.Name] {
			errs = append(errs, ValidationError{
				Field:   "entity." + d.Name,
				Message: fmt.Sprintf("duplicate entity name %q", d.Name),
				Code:    ErrDuplicateName,
			})
		}
		known[d.Name] = true
	}

	for i := range decls {
		errs = append(errs, validateEntity(&decls[i], known)...)
	}
	return errs
}

// validateEntity validates one entity declaration.
func validateEntity(d *schema.EntityDecl, known map[string]bool) []ValidationError {
	var errs []ValidationError
	prefix := "entity." + d.Name

	fields := make(map[string]schema.FieldDecl, len(d.Fields))
	hasKey := false
	for _, f := range d.Fields {
		fieldPath := fmt.Sprintf("%s.fields.%s", prefix, f.Name)
		if _, dup := fields[f.Name]; dup {
			errs = append(errs, ValidationError{
				Field:   fieldPath,
				Message: fmt.Sprintf("duplicate field name %q", f.Name),
				Code:    ErrDuplicateName,
			})
		}
		fields[f.Name] = f
		errs = append(errs, validateName(fieldPath, f.Name)...)
		errs = append(errs, validateDefault(fieldPath, f)...)

		if f.ID || f.Unique {
			hasKey = true
			if !keyable(f.Type) {
				errs = append(errs, ValidationError{
					Field:   fieldPath,
					Message: fmt.Sprintf("type %s cannot identify a row", f.Type),
					Code:    ErrUniqueMember,
				})
			}
		}
	}

	relations := make(map[string]bool, len(d.Relations))
	for _, r := range d.Relations {
		relPath := fmt.Sprintf("%s.relations.%s", prefix, r.Name)
		if relations[r.Name] {
			errs = append(errs, ValidationError{
				Field:   relPath,
				Message: fmt.Sprintf("duplicate relation name %q", r.Name),
				Code:    ErrDuplicateName,
			})
		}
		relations[r.Name] = true
		if _, clash := fields[r.Name]; clash {
			errs = append(errs, ValidationError{
				Field:   relPath,
				Message: fmt.Sprintf("relation %q clashes with a field", r.Name),
				Code:    ErrDuplicateName,
			})
		}
		errs = append(errs, validateName(relPath, r.Name)...)
		errs = append(errs, validateRelation(relPath, r, fields, known)...)
	}

	for i, u := range d.Uniques {
		uniquePath := fmt.Sprintf("%s.unique[%d]", prefix, i)
		if len(u.Fields) == 0 {
			errs = append(errs, ValidationError{
				Field:   uniquePath,
				Message: "unique constraint needs at least one field",
				Code:    ErrUniqueMember,
			})
			continue
		}
		hasKey = true
		for _, member := range u.Fields {
			f, ok := fields[member]
			switch {
			case !ok:
				errs = append(errs, ValidationError{
					Field:   uniquePath,
					Message: fmt.Sprintf("member %q is not a field", member),
					Code:    ErrUniqueMember,
				})
			case !keyable(f.Type):
				errs = append(errs, ValidationError{
					Field:   uniquePath,
					Message: fmt.Sprintf("member %q has type %s", member, f.Type),
					Code:    ErrUniqueMember,
				})
			}
		}
	}

	if !hasKey {
		errs = append(errs, ValidationError{
			Field:   prefix,
			Message: "entity needs an id, a unique field or a unique constraint",
			Code:    ErrNoUniqueKey,
		})
	}

	for _, name := range d.Relevance {
		f, ok := fields[name]
		if !ok || f.Type.Kind != scalar.String || f.Type.List {
			errs = append(errs, ValidationError{
				Field:   prefix + ".relevance",
				Message: fmt.Sprintf("%q must be a String field", name),
				Code:    ErrRelevanceField,
			})
		}
	}

	return errs
}

// validateName rejects names that would be read as input keywords.
func validateName(path, name string) []ValidationError {
	if reservedNames[name] || strings.HasPrefix(name, "_") {
		return []ValidationError{{
			Field:   path,
			Message: fmt.Sprintf("name %q is reserved", name),
			Code:    ErrReservedName,
		}}
	}
	return nil
}

// validateDefault checks the generator or literal against the field type.
func validateDefault(path string, f schema.FieldDecl) []ValidationError {
	var msg string
	switch f.Default {
	case schema.DefaultCUID:
		if f.Type.Kind != scalar.String || f.Type.List {
			msg = fmt.Sprintf("cuid default requires String, got %s", f.Type)
		}
	case schema.DefaultNow, schema.DefaultUpdatedAt:
		if f.Type.Kind != scalar.DateTime || f.Type.List {
			msg = fmt.Sprintf("%s default requires DateTime, got %s", f.Default, f.Type)
		}
	case schema.DefaultValue:
		if _, err := scalar.WriteValue(f.Type, f.Value, verror.Root(f.Name)); err != nil {
			msg = fmt.Sprintf("default literal does not fit %s", f.Type)
		}
	}
	if msg == "" {
		return nil
	}
	return []ValidationError{{Field: path + ".default", Message: msg, Code: ErrInvalidDefault}}
}

// validateRelation checks target and foreign key declarations.
func validateRelation(path string, r schema.RelationDecl, fields map[string]schema.FieldDecl, known map[string]bool) []ValidationError {
	var errs []ValidationError

	if !known[r.Target] {
		errs = append(errs, ValidationError{
			Field:   path + ".target",
			Message: fmt.Sprintf("unknown entity %q", r.Target),
			Code:    ErrUnknownTarget,
		})
	}

	if len(r.Fields) == 0 && len(r.References) == 0 {
		return errs
	}
	if r.Kind == schema.ToMany {
		return append(errs, ValidationError{
			Field:   path,
			Message: "to-many relations cannot hold foreign keys",
			Code:    ErrForeignKeyOnMany,
		})
	}
	if len(r.Fields) == 0 || len(r.References) == 0 {
		return append(errs, ValidationError{
			Field:   path,
			Message: "fields and references must be declared together",
			Code:    ErrMissingForeignKey,
		})
	}
	if len(r.Fields) != len(r.References) {
		errs = append(errs, ValidationError{
			Field:   path,
			Message: fmt.Sprintf("%d fields reference %d target fields", len(r.Fields), len(r.References)),
			Code:    ErrForeignKeyArity,
		})
	}
	for _, name := range r.Fields {
		if _, ok := fields[name]; !ok {
			errs = append(errs, ValidationError{
				Field:   path + ".fields",
				Message: fmt.Sprintf("foreign key %q is not a field", name),
				Code:    ErrForeignKeyField,
			})
		}
	}
	return errs
}

// keyable reports whether values of t can take part in a unique key.
func keyable(t scalar.Type) bool {
	return !t.List && t.Kind != scalar.Json
}
