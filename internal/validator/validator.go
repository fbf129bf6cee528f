// Package validator applies a Schema to one tokenized row at a time.
//
// Invalid data is a normal outcome here: every finding is handed to the emit
// callback as a diag.Diagnostic and validation always continues with the next
// column.
package validator

import (
	"fmt"

	"github.com/asolidum/proofreader/internal/diag"
	"github.com/asolidum/proofreader/internal/rule"
	"github.com/asolidum/proofreader/internal/schema"
)

// Params holds the read-only inputs shared by every row of a run.
type Params struct {
	File      string
	Schema    schema.Schema
	Header    []string
	Blank     schema.BlankSet
	Verbosity int
}

// Validator checks rows against a fixed Schema. It is safe for concurrent
// use because it never mutates its Params.
type Validator struct {
	p Params
}

// New returns a Validator for p.
func New(p Params) *Validator {
	return &Validator{p: p}
}

// Row validates one row and returns the number of ERROR diagnostics emitted.
//
// Row width policy:
//   - a row wider than the schema yields one shape ERROR and its extra
//     columns are not checked;
//   - a row narrower than the schema has its missing trailing fields treated
//     as empty values, so blank rules apply to them.
func (v *Validator) Row(line int, row []string, emit func(diag.Diagnostic)) int {
	errs := 0
	n := v.p.Schema.Len()

	if len(row) > n {
		emit(diag.Diagnostic{
			Severity: diag.Error,
			Kind:     diag.KindShape,
			File:     v.p.File,
			Line:     line,
			Message:  fmt.Sprintf("has %d fields, format has %d", len(row), n),
		})
		errs++
	}

	for i := 0; i < n; i++ {
		var value string
		if i < len(row) {
			value = row[i]
		}
		if d, ok := v.column(line, i, value); ok {
			emit(d)
			if d.Severity == diag.Error {
				errs++
			}
		}
	}
	return errs
}

// column checks a single value. ok is false when there is nothing to report.
func (v *Validator) column(line, col int, value string) (diag.Diagnostic, bool) {
	field, _ := v.p.Schema.At(col)
	if field.Type == schema.Skip {
		return diag.Diagnostic{}, false
	}

	d := diag.Diagnostic{
		File:   v.p.File,
		Line:   line,
		Column: col,
		Header: v.header(col),
		Value:  value,
	}

	if value == "" && v.p.Blank.Allowed(col) {
		if v.p.Verbosity < 2 {
			return diag.Diagnostic{}, false
		}
		d.Severity, d.Kind, d.Message = diag.Warn, diag.KindBlank, "has no value"
		return d, true
	}

	switch field.Type {
	case schema.Invalid:
		d.Severity, d.Kind = diag.Error, diag.KindUnknown
		d.Message = fmt.Sprintf("Unknown format '%s'", field.Name)
		return d, true
	case schema.Lat, schema.Lon:
		b, _ := rule.Range(field.Type)
		if b.Contains(value) {
			return diag.Diagnostic{}, false
		}
		d.Severity, d.Kind = diag.Error, diag.KindRange
		d.Message = "not valid " + field.Type.String()
		return d, true
	}

	if rule.Check(field.Type, value) {
		return diag.Diagnostic{}, false
	}
	d.Severity, d.Kind = diag.Error, diag.KindFormat
	d.Message = fmt.Sprintf("not valid %s type", field.Type)
	return d, true
}

func (v *Validator) header(col int) string {
	if col < len(v.p.Header) {
		return v.p.Header[col]
	}
	return ""
}
