// Package csv splits decoded lines into fields.
//
// Header lines and data lines are split independently: the header uses a
// plain single-character delimiter (historically '|'), while data rows are
// parsed with CSV quoting rules (double quotes) around their own delimiter
// (historically ','). Both delimiters are configurable.
package csv

import (
	"encoding/csv"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

const utf8BOM = "\uFEFF"

// SplitHeader splits a header line on delim and cleans each label: surrounding
// space is trimmed, a BOM on the first label is removed, and labels are put in
// Unicode NFC form so visually identical names compare equal.
func SplitHeader(line string, delim string) []string {
	if delim == "" {
		delim = "|"
	}
	parts := strings.Split(line, delim)
	for i, p := range parts {
		p = strings.TrimSpace(p)
		if i == 0 {
			p = strings.TrimPrefix(p, utf8BOM)
		}
		parts[i] = norm.NFC.String(p)
	}
	return parts
}

// Tokenizer splits data lines using CSV rules. The zero value is not usable;
// construct one with NewTokenizer.
type Tokenizer struct {
	comma      rune
	sep        string
	lazyQuotes bool
}

// NewTokenizer returns a Tokenizer for the given delimiter. An empty delim
// means ','. lazyQuotes relaxes quote handling the same way csv.Reader does.
func NewTokenizer(delim string, lazyQuotes bool) (*Tokenizer, error) {
	comma := ','
	if delim != "" {
		r, size := utf8.DecodeRuneInString(delim)
		if r == utf8.RuneError || size != len(delim) {
			return nil, fmt.Errorf("data delimiter %q: must be a single character", delim)
		}
		comma = r
	}
	if comma == '"' || comma == '\r' || comma == '\n' {
		return nil, fmt.Errorf("data delimiter %q: not allowed", delim)
	}
	return &Tokenizer{comma: comma, sep: string(comma), lazyQuotes: lazyQuotes}, nil
}

// Split tokenizes one line. Lines without any quote character take a fast
// path that is equivalent to CSV parsing for unquoted input. An empty line
// yields no fields.
func (t *Tokenizer) Split(line string) ([]string, error) {
	if line == "" {
		return nil, nil
	}
	if !strings.Contains(line, `"`) {
		return strings.Split(line, t.sep), nil
	}

	r := csv.NewReader(strings.NewReader(line))
	r.Comma = t.comma
	r.LazyQuotes = t.lazyQuotes
	r.FieldsPerRecord = -1
	r.ReuseRecord = false
	rec, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	return rec, nil
}
