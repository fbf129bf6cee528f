package schema

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// ErrBlankColumns is returned for a blank-columns list that is not a plain
// comma-separated list of column indices.
var ErrBlankColumns = errors.New("comma separated list (eg. 0,1,2)")

var blankListRe = regexp.MustCompile(`^(\d+(,\d+)*)?$`)

// BlankSet is the sparse set of column indices allowed to be empty.
// The zero value allows no blanks.
type BlankSet struct {
	cols map[int]struct{}
}

// ParseBlankColumns parses a list such as "11,14,15". An empty list is valid
// and allows no blanks.
func ParseBlankColumns(list string) (BlankSet, error) {
	list = strings.TrimSpace(list)
	if !blankListRe.MatchString(list) {
		return BlankSet{}, fmt.Errorf("blank columns %q: %w", list, ErrBlankColumns)
	}
	if list == "" {
		return BlankSet{}, nil
	}
	parts := strings.Split(list, ",")
	cols := make(map[int]struct{}, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return BlankSet{}, fmt.Errorf("blank column %q: %w", p, err)
		}
		cols[n] = struct{}{}
	}
	return BlankSet{cols: cols}, nil
}

// Blanks builds a BlankSet from explicit indices.
func Blanks(cols ...int) BlankSet {
	if len(cols) == 0 {
		return BlankSet{}
	}
	m := make(map[int]struct{}, len(cols))
	for _, c := range cols {
		m[c] = struct{}{}
	}
	return BlankSet{cols: m}
}

// Allowed reports whether column i may hold an empty value.
func (b BlankSet) Allowed(i int) bool {
	_, ok := b.cols[i]
	return ok
}

// Len returns the number of allowed columns.
func (b BlankSet) Len() int { return len(b.cols) }

// Columns returns the allowed indices in ascending order.
func (b BlankSet) Columns() []int {
	out := make([]int, 0, len(b.cols))
	for c := range b.cols {
		out = append(out, c)
	}
	sort.Ints(out)
	return out
}

// String renders the set in the same list syntax ParseBlankColumns accepts.
func (b BlankSet) String() string {
	cols := b.Columns()
	parts := make([]string, len(cols))
	for i, c := range cols {
		parts[i] = strconv.Itoa(c)
	}
	return strings.Join(parts, ",")
}
