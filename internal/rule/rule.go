// Package rule holds the per-type validation rules applied to single field
// values.
//
// Regular-expression rules are unanchored: a value passes when any substring
// matches, so "1234567890abc" is a valid ts_sec. Enumerated literals (os,
// ad_id_type, loc_context, loc_method) must equal the whole value.
package rule

import (
	"regexp"

	"github.com/asolidum/proofreader/internal/schema"
)

// Func reports whether a single value satisfies a rule.
type Func func(value string) bool

// Bounds is the inclusive numeric range of a coordinate type.
type Bounds struct {
	Min, Max float64
}

var (
	latBounds = Bounds{Min: -90, Max: 90}
	lonBounds = Bounds{Min: -180, Max: 180}
)

// rules is total over schema.FieldType. Invalid has no rule of its own; the
// row validator reports it as an unknown format before reaching Check.
var rules = [schema.NumTypes]Func{
	schema.Invalid:    never,
	schema.UUID:       pattern(`[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}`),
	schema.AppID:      pattern(`[0-9a-fA-F]{64}`),
	schema.UserID:     pattern(`[0-9a-fA-F]{32}`),
	schema.OS:         oneOf("IOS", "AND"),
	schema.Version:    pattern(`(\d+\.)?(\d+\.)?(\*|\d+)`),
	schema.AdIDType:   oneOf("IDFA", "AAID"),
	schema.AmType:     pattern(`[a-z]{2}`),
	schema.IPAddr:     pattern(`[0-9]{1,3}\.[0-9]{1,3}\.[0-9]{1,3}\.[0-9]{1,3}`),
	schema.TSSec:      pattern(`[0-9]{10}`),
	schema.TSMsec:     pattern(`[0-9]{13}`),
	schema.Lat:        within(latBounds),
	schema.Lon:        within(lonBounds),
	schema.CC:         pattern(`[A-Z]{2}`),
	schema.State:      pattern(`[A-Z]{2}`),
	schema.Zip:        pattern(`[0-9]{5}`),
	schema.LocContext: oneOf("background", "foreground"),
	schema.LocMethod:  oneOf("BCN", "GPS"),
	schema.Text:       always,
	schema.Num:        always,
	schema.Skip:       always,
	schema.Int:        pattern(`\d+`),
	schema.Float:      pattern(`[-+]?[0-9]*\.?[0-9]+`),
}

// Check applies the rule for t to value.
func Check(t schema.FieldType, value string) bool {
	if t >= schema.NumTypes {
		return false
	}
	return rules[t](value)
}

// Range returns the numeric bounds for coordinate types (lat, lon).
func Range(t schema.FieldType) (Bounds, bool) {
	switch t {
	case schema.Lat:
		return latBounds, true
	case schema.Lon:
		return lonBounds, true
	}
	return Bounds{}, false
}

// Contains reports whether the leading number of value lies within b.
func (b Bounds) Contains(value string) bool {
	f := LeadingFloat(value)
	return f >= b.Min && f <= b.Max
}

func pattern(expr string) Func {
	re := regexp.MustCompile(expr)
	return re.MatchString
}

func oneOf(allowed ...string) Func {
	set := make(map[string]struct{}, len(allowed))
	for _, a := range allowed {
		set[a] = struct{}{}
	}
	return func(v string) bool {
		_, ok := set[v]
		return ok
	}
}

func within(b Bounds) Func { return b.Contains }

func always(string) bool { return true }

func never(string) bool { return false }
