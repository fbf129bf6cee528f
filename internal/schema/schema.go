package schema

import (
	"fmt"
	"strings"
)

// Field is one column of a Schema.
type Field struct {
	Type FieldType
	// Name is the text the field was parsed from. For Invalid fields this is
	// the unrecognised name reported in diagnostics.
	Name string
}

// Schema is an ordered, column-aligned list of fields. It is immutable once
// built; callers share it by value.
type Schema struct {
	fields []Field
}

// Warning reports a field format name that could not be resolved.
type Warning struct {
	Column int
	Name   string
}

// String renders the warning the way it is printed at startup.
func (w Warning) String() string {
	return fmt.Sprintf("WARNING: Ignoring invalid field format '%s'", w.Name)
}

// Parse builds a Schema from a comma-separated list of field format names.
//
// Unrecognised names do not shift the columns that follow them: they are
// kept in place as Invalid fields and reported once as a Warning. Use
// Compact for the historical behavior that removed them.
//
// An empty list yields an empty Schema; rejecting it is the caller's job.
func Parse(list string) (Schema, []Warning) {
	if strings.TrimSpace(list) == "" {
		return Schema{}, nil
	}
	parts := strings.Split(list, ",")
	fields := make([]Field, 0, len(parts))
	var warns []Warning
	for i, p := range parts {
		name := strings.TrimSpace(p)
		t, ok := Lookup(name)
		if !ok {
			warns = append(warns, Warning{Column: i, Name: name})
			t = Invalid
		}
		fields = append(fields, Field{Type: t, Name: name})
	}
	return Schema{fields: fields}, warns
}

// New builds a Schema directly from types. Intended for tests and presets.
func New(types ...FieldType) Schema {
	fields := make([]Field, len(types))
	for i, t := range types {
		fields[i] = Field{Type: t, Name: t.String()}
	}
	return Schema{fields: fields}
}

// Compact returns a copy without Invalid fields. Columns after a removed
// field move one position to the left.
func (s Schema) Compact() Schema {
	out := make([]Field, 0, len(s.fields))
	for _, f := range s.fields {
		if f.Type != Invalid {
			out = append(out, f)
		}
	}
	return Schema{fields: out}
}

// Len returns the number of columns.
func (s Schema) Len() int { return len(s.fields) }

// At returns the field at column i. ok is false when i is out of range.
func (s Schema) At(i int) (Field, bool) {
	if i < 0 || i >= len(s.fields) {
		return Field{}, false
	}
	return s.fields[i], true
}

// Types returns the column types in order.
func (s Schema) Types() []FieldType {
	out := make([]FieldType, len(s.fields))
	for i, f := range s.fields {
		out[i] = f.Type
	}
	return out
}

// String renders the schema back into field format syntax.
func (s Schema) String() string {
	names := make([]string, len(s.fields))
	for i, f := range s.fields {
		names[i] = f.Name
	}
	return strings.Join(names, ",")
}
