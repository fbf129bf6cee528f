// Package diag defines the findings produced while proofreading a file and
// the sinks that write them out.
//
// A Diagnostic is emitted as soon as it is produced and then dropped; nothing
// in this package accumulates findings in memory beyond simple counters.
package diag

import (
	"fmt"
	"strings"
)

// Severity classifies a Diagnostic.
type Severity uint8

const (
	Warn Severity = iota + 1
	Error
)

func (s Severity) String() string {
	switch s {
	case Warn:
		return "WARN"
	case Error:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Kind tells what produced a Diagnostic. It selects the rendered layout.
type Kind uint8

const (
	// KindFormat is a value that failed its column rule.
	KindFormat Kind = iota
	// KindRange is a lat/lon value outside its bounds.
	KindRange
	// KindBlank is an allowed blank value, reported at high verbosity.
	KindBlank
	// KindUnknown is a column whose field format was not recognised.
	KindUnknown
	// KindShape is a row whose width does not match the field format.
	KindShape
	// KindParse is a line the tokenizer could not split.
	KindParse
	// KindDuplicate is a line identical to an earlier one.
	KindDuplicate
	// KindConfig is a run-level problem found before any row is read.
	KindConfig
)

// Diagnostic is one finding tied to a file position.
type Diagnostic struct {
	Severity Severity
	Kind     Kind
	File     string
	Line     int
	Column   int
	Header   string
	Value    string
	Message  string
}

// String renders the diagnostic without colour.
func (d Diagnostic) String() string {
	return d.render(d.Severity.String())
}

func (d Diagnostic) render(sev string) string {
	var b strings.Builder
	b.WriteString(sev)
	b.WriteString(": ")
	switch d.Kind {
	case KindConfig:
		b.WriteString(d.Message)
		return b.String()
	case KindShape, KindParse, KindDuplicate:
		fmt.Fprintf(&b, "%s:L:%d %s", d.File, d.Line, d.Message)
		return b.String()
	case KindRange:
		fmt.Fprintf(&b, "%s:L:%d:C:%d '%s' %s", d.File, d.Line, d.Column, d.Value, d.Message)
		return b.String()
	}
	fmt.Fprintf(&b, "%s:L:%d:C:%d:H:%s", d.File, d.Line, d.Column, d.Header)
	if d.Kind != KindBlank {
		fmt.Fprintf(&b, " '%s'", d.Value)
	}
	b.WriteByte(' ')
	b.WriteString(d.Message)
	return b.String()
}
