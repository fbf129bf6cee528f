// Package schema defines the closed set of semantic column types understood by
// the proofreader and the ordered, position-aligned Schema built from a
// comma-separated field format such as "uuid,os,ts_sec,text".
package schema

// FieldType is the semantic type expected in one column.
type FieldType uint8

const (
	// Invalid marks a field format name that is not recognised. It is kept
	// in place so column indices never drift; see Field.Name for the text.
	Invalid FieldType = iota
	UUID
	AppID
	UserID
	OS
	Version
	AdIDType
	AmType
	IPAddr
	TSSec
	TSMsec
	Lat
	Lon
	CC
	State
	Zip
	LocContext
	LocMethod
	Text
	Num
	Skip
	Int
	Float

	// NumTypes is the size of the enumeration. Tables indexed by FieldType
	// are declared as [NumTypes]T so a missing entry fails to compile or is
	// caught by the exhaustiveness tests.
	NumTypes
)

var typeNames = [NumTypes]string{
	Invalid:    "invalid",
	UUID:       "uuid",
	AppID:      "app_id",
	UserID:     "user_id",
	OS:         "os",
	Version:    "version",
	AdIDType:   "ad_id_type",
	AmType:     "am_type",
	IPAddr:     "ip_addr",
	TSSec:      "ts_sec",
	TSMsec:     "ts_msec",
	Lat:        "lat",
	Lon:        "lon",
	CC:         "cc",
	State:      "state",
	Zip:        "zip",
	LocContext: "loc_context",
	LocMethod:  "loc_method",
	Text:       "text",
	Num:        "num",
	Skip:       "skip",
	Int:        "int",
	Float:      "float",
}

// aliases maps extra accepted spellings onto canonical types.
var aliases = map[string]FieldType{
	"SKIP": Skip,
}

var byName = func() map[string]FieldType {
	m := make(map[string]FieldType, len(typeNames)+len(aliases))
	for t := Invalid + 1; t < NumTypes; t++ {
		m[typeNames[t]] = t
	}
	for k, v := range aliases {
		m[k] = v
	}
	return m
}()

// String returns the canonical field format name.
func (t FieldType) String() string {
	if t >= NumTypes {
		return typeNames[Invalid]
	}
	return typeNames[t]
}

// Lookup resolves a field format name. Names are case-sensitive; "SKIP" is
// accepted as an alias of "skip".
func Lookup(name string) (FieldType, bool) {
	t, ok := byName[name]
	return t, ok
}

// Names returns the canonical names of every recognised type, in
// enumeration order.
func Names() []string {
	out := make([]string, 0, NumTypes-1)
	for t := Invalid + 1; t < NumTypes; t++ {
		out = append(out, typeNames[t])
	}
	return out
}
