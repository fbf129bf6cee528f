// Package config defines the run configuration for the proofreader.
//
// A Config is assembled once at startup (defaults, then an optional JSON or
// YAML file, then a named preset, then explicit command-line flags) and is
// passed by value into every component afterwards. Nothing reads global
// state at validation time.
//
// Example (JSON):
//
//	{
//	  "filename": "events.csv.gz",
//	  "field_format": "uuid,os,ts_sec,lat,lon",
//	  "delimiter": "|",
//	  "blank_cols": "3,4",
//	  "output_lines": 100000,
//	  "metrics": { "backend": "pushgateway", "pushgateway_url": "http://localhost:9091" }
//	}
package config

import (
	"github.com/asolidum/proofreader/internal/schema"
)

// DefaultFieldFormat is the layout of the mobile location logs the tool was
// first written for.
const DefaultFieldFormat = "uuid,ad_id_type,app_id,app_id,uuid,user_id,text,text,os,version,am_type,ip_addr,ts_sec,num,ts_msec,uuid,num,num,lat,lon,cc,num,loc_context,loc_method,text,text"

// Unknown field format handling.
const (
	UnknownKeep = "keep"
	UnknownDrop = "drop"
)

// Config is the resolved option bag for one run.
type Config struct {
	// Filename is the input file to proofread.
	Filename string `json:"filename" yaml:"filename"`
	// FieldFormat is the comma-separated list of column types.
	FieldFormat string `json:"field_format" yaml:"field_format"`
	// Delimiter splits the header line.
	Delimiter string `json:"delimiter" yaml:"delimiter"`
	// DataDelimiter splits data rows (CSV rules, double-quote quoting).
	DataDelimiter string `json:"data_delimiter" yaml:"data_delimiter"`
	// LazyQuotes relaxes quote handling on data rows.
	LazyQuotes bool `json:"lazy_quotes" yaml:"lazy_quotes"`
	// BlankCols lists column indices allowed to be empty, e.g. "11,14".
	BlankCols string `json:"blank_cols" yaml:"blank_cols"`
	// OutputLines is the progress interval in lines.
	OutputLines int `json:"output_lines" yaml:"output_lines"`
	// SkipLines skips every line whose number (header = 1) is <= SkipLines.
	SkipLines int `json:"skip_lines" yaml:"skip_lines"`
	// OutputLevel is 0, 1 or 2; 2 reports allowed blanks as warnings.
	OutputLevel int `json:"output_level" yaml:"output_level"`
	// DisplayHeader prints the header with column indices and stops.
	DisplayHeader bool `json:"display_header" yaml:"display_header"`
	// SamplePercent validates roughly this percentage of data lines.
	SamplePercent int `json:"sample_percentage" yaml:"sample_percentage"`
	// DuplicateCheck reports data lines identical to an earlier line.
	DuplicateCheck bool `json:"duplicate_check" yaml:"duplicate_check"`
	// UnknownTypes is "keep" (flag columns with unknown formats in place) or
	// "drop" (remove them, shifting later columns left).
	UnknownTypes string `json:"unknown_types" yaml:"unknown_types"`
	// Compression is "auto", "gzip" or "none".
	Compression string `json:"compression" yaml:"compression"`
	// Color is "auto", "always" or "never".
	Color string `json:"color" yaml:"color"`
	// MismatchExitCode is the process exit status used when the header and
	// field format widths differ.
	MismatchExitCode int `json:"mismatch_exit_code" yaml:"mismatch_exit_code"`
	// DefinedFormat names a preset applied before explicit flags.
	DefinedFormat string `json:"defined_format" yaml:"defined_format"`

	Metrics Metrics `json:"metrics" yaml:"metrics"`
}

// Metrics selects and configures the optional metrics backend.
type Metrics struct {
	// Backend is "none", "pushgateway" or "datadog".
	Backend        string `json:"backend" yaml:"backend"`
	PushgatewayURL string `json:"pushgateway_url" yaml:"pushgateway_url"`
	DatadogAddr    string `json:"datadog_addr" yaml:"datadog_addr"`
	// Job labels every metric; defaults to "proofread".
	Job string `json:"job" yaml:"job"`
	// FlushInterval pushes metrics periodically during long runs, e.g. "30s".
	// Empty means push once at the end.
	FlushInterval string `json:"flush_interval" yaml:"flush_interval"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		FieldFormat:   DefaultFieldFormat,
		Delimiter:     "|",
		DataDelimiter: ",",
		OutputLines:   100000,
		OutputLevel:   1,
		SamplePercent: 100,
		UnknownTypes:  UnknownKeep,
		Compression:   "auto",
		Color:         "auto",
		Metrics: Metrics{
			Backend: "none",
			Job:     "proofread",
		},
	}
}

// Schema parses FieldFormat, honoring UnknownTypes.
func (c Config) Schema() (schema.Schema, []schema.Warning) {
	s, warns := schema.Parse(c.FieldFormat)
	if c.UnknownTypes == UnknownDrop {
		s = s.Compact()
	}
	return s, warns
}

// Blanks parses BlankCols.
func (c Config) Blanks() (schema.BlankSet, error) {
	return schema.ParseBlankColumns(c.BlankCols)
}
