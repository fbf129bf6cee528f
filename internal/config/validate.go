// Package config provides the run configuration for the proofreader.
//
// This file adds a lightweight linter for Config values. It performs static
// checks and returns a list of issues (errors and warnings) that callers can
// surface in a CLI or tests. It does not touch the filesystem.
package config

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError indicates a configuration error that should block execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning indicates a problem worth surfacing that does not block
	// execution.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single validation/lint finding for a Config.
//
// Path is the config key (e.g. "blank_cols", "metrics.backend").
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

// Error implements the error interface so an Issue can be treated as a single
// error in contexts that expect error.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// HasErrors reports whether any issue is an error.
func HasErrors(issues []Issue) bool {
	for _, iss := range issues {
		if iss.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Validate performs static validation of c. It does not mutate c.
func Validate(c Config) []Issue {
	var issues []Issue
	add := func(sev IssueSeverity, path, format string, a ...any) {
		issues = append(issues, Issue{Severity: sev, Path: path, Message: fmt.Sprintf(format, a...)})
	}

	if strings.TrimSpace(c.Filename) == "" {
		add(SeverityError, "filename", "filename is required")
	}
	if strings.TrimSpace(c.FieldFormat) == "" {
		add(SeverityError, "field_format", "field_format must not be empty")
	}
	if c.Delimiter == "" {
		add(SeverityError, "delimiter", "delimiter must not be empty")
	}
	if c.DataDelimiter != "" {
		r, _ := utf8.DecodeRuneInString(c.DataDelimiter)
		switch {
		case utf8.RuneCountInString(c.DataDelimiter) != 1:
			add(SeverityError, "data_delimiter", "data_delimiter must be a single character, got %q", c.DataDelimiter)
		case r == '"' || r == '\n' || r == '\r':
			add(SeverityError, "data_delimiter", "data_delimiter %q is not allowed", c.DataDelimiter)
		}
	}

	blanks, err := c.Blanks()
	if err != nil {
		add(SeverityError, "blank_cols", "%v", err)
	} else if c.FieldFormat != "" {
		s, _ := c.Schema()
		for _, col := range blanks.Columns() {
			if col >= s.Len() {
				add(SeverityWarning, "blank_cols", "column %d is beyond the %d-column field format", col, s.Len())
			}
		}
	}

	if c.OutputLines <= 0 {
		add(SeverityError, "output_lines", "output_lines must be > 0, got %d", c.OutputLines)
	}
	if c.SkipLines < 0 {
		add(SeverityError, "skip_lines", "skip_lines must be >= 0, got %d", c.SkipLines)
	}
	if c.OutputLevel < 0 || c.OutputLevel > 2 {
		add(SeverityError, "output_level", "output_level must be 0, 1 or 2, got %d", c.OutputLevel)
	}
	if c.SamplePercent < 1 || c.SamplePercent > 100 {
		add(SeverityError, "sample_percentage", "sample_percentage must be within 1..100, got %d", c.SamplePercent)
	}
	if c.MismatchExitCode < 0 || c.MismatchExitCode > 125 {
		add(SeverityError, "mismatch_exit_code", "mismatch_exit_code must be within 0..125, got %d", c.MismatchExitCode)
	}

	oneOf := func(path, v string, allowed ...string) {
		for _, a := range allowed {
			if v == a {
				return
			}
		}
		add(SeverityError, path, "%s must be one of %s, got %q", path, strings.Join(allowed, "|"), v)
	}
	oneOf("unknown_types", c.UnknownTypes, UnknownKeep, UnknownDrop)
	oneOf("compression", c.Compression, "auto", "gzip", "none")
	oneOf("color", c.Color, "auto", "always", "never")

	if c.DefinedFormat != "" {
		if _, ok := presets[c.DefinedFormat]; !ok {
			add(SeverityError, "defined_format", "unknown defined format %q (acceptable formats: %v)", c.DefinedFormat, PresetNames())
		}
	}

	issues = append(issues, validateMetrics(c.Metrics)...)
	return issues
}

func validateMetrics(m Metrics) []Issue {
	var issues []Issue
	switch m.Backend {
	case "", "none":
	case "pushgateway":
		if strings.TrimSpace(m.PushgatewayURL) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "metrics.pushgateway_url",
				Message:  "pushgateway backend requires a URL",
			})
		}
	case "datadog":
		if strings.TrimSpace(m.DatadogAddr) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "metrics.datadog_addr",
				Message:  "datadog backend requires an agent address",
			})
		}
	default:
		// Unknown backends are warnings; the CLI falls back to no metrics.
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "metrics.backend",
			Message:  fmt.Sprintf("unknown metrics backend %q; metrics disabled", m.Backend),
		})
	}
	if m.FlushInterval != "" {
		d, err := time.ParseDuration(m.FlushInterval)
		if err != nil || d <= 0 {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "metrics.flush_interval",
				Message:  fmt.Sprintf("flush_interval must be a positive duration, got %q", m.FlushInterval),
			})
		}
	}
	return issues
}
