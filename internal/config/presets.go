package config

import (
	"fmt"
	"sort"
)

// Preset is a named delimiter, field format and blank-column bundle.
type Preset struct {
	Delimiter   string
	FieldFormat string
	BlankCols   string
}

var presets = map[string]Preset{
	"backup": {
		Delimiter:   "|",
		FieldFormat: "uuid,ad_id_type,app_id,app_id,uuid,user_id,text,text,os,version,am_type,ip_addr,ts_sec,int,ts_sec,uuid,int,int,float,float,cc,text,text,text,int,loc_context,loc_method,text,text,int,int,int,int",
		BlankCols:   "11,14,15,16,17,20,22,23",
	},
}

// PresetNames lists the available presets in sorted order.
func PresetNames() []string {
	out := make([]string, 0, len(presets))
	for k := range presets {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// ApplyPreset overwrites the preset's fields in c. An empty name is a no-op.
func ApplyPreset(c Config, name string) (Config, error) {
	if name == "" {
		return c, nil
	}
	p, ok := presets[name]
	if !ok {
		return c, fmt.Errorf("unknown defined format %q (acceptable formats: %v)", name, PresetNames())
	}
	c.DefinedFormat = name
	c.Delimiter = p.Delimiter
	c.FieldFormat = p.FieldFormat
	c.BlankCols = p.BlankCols
	return c, nil
}
