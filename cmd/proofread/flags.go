package main

import (
	"errors"
	"flag"
	"io"
	"os"
	"strings"

	"github.com/asolidum/proofreader/internal/config"
)

// cliOptions is the parsed command line. fl holds every flag value; only the
// flags named in set override the file and preset layers.
type cliOptions struct {
	fs         *flag.FlagSet
	fl         config.Config
	set        map[string]bool
	configPath string
	help       bool
	verbose    bool
}

// overrides copies one flag value from the flag layer into the resolved
// config. Keyed by canonical flag name.
var overrides = map[string]func(dst *config.Config, src config.Config){
	"filename":           func(d *config.Config, s config.Config) { d.Filename = s.Filename },
	"field-format":       func(d *config.Config, s config.Config) { d.FieldFormat = s.FieldFormat },
	"delimiter":          func(d *config.Config, s config.Config) { d.Delimiter = s.Delimiter },
	"data-delimiter":     func(d *config.Config, s config.Config) { d.DataDelimiter = s.DataDelimiter },
	"lazy-quotes":        func(d *config.Config, s config.Config) { d.LazyQuotes = s.LazyQuotes },
	"blank-cols":         func(d *config.Config, s config.Config) { d.BlankCols = s.BlankCols },
	"output-lines":       func(d *config.Config, s config.Config) { d.OutputLines = s.OutputLines },
	"skip-lines":         func(d *config.Config, s config.Config) { d.SkipLines = s.SkipLines },
	"output-level":       func(d *config.Config, s config.Config) { d.OutputLevel = s.OutputLevel },
	"header":             func(d *config.Config, s config.Config) { d.DisplayHeader = s.DisplayHeader },
	"sample-percentage":  func(d *config.Config, s config.Config) { d.SamplePercent = s.SamplePercent },
	"duplicates":         func(d *config.Config, s config.Config) { d.DuplicateCheck = s.DuplicateCheck },
	"unknown-types":      func(d *config.Config, s config.Config) { d.UnknownTypes = s.UnknownTypes },
	"compression":        func(d *config.Config, s config.Config) { d.Compression = s.Compression },
	"color":              func(d *config.Config, s config.Config) { d.Color = s.Color },
	"mismatch-exit-code": func(d *config.Config, s config.Config) { d.MismatchExitCode = s.MismatchExitCode },
	"defined-format":     func(d *config.Config, s config.Config) { d.DefinedFormat = s.DefinedFormat },
	"metrics-backend":    func(d *config.Config, s config.Config) { d.Metrics.Backend = s.Metrics.Backend },
	"pushgateway-url":    func(d *config.Config, s config.Config) { d.Metrics.PushgatewayURL = s.Metrics.PushgatewayURL },
	"datadog-addr":       func(d *config.Config, s config.Config) { d.Metrics.DatadogAddr = s.Metrics.DatadogAddr },
	"metrics-job":        func(d *config.Config, s config.Config) { d.Metrics.Job = s.Metrics.Job },
	"metrics-flush":      func(d *config.Config, s config.Config) { d.Metrics.FlushInterval = s.Metrics.FlushInterval },
}

// aliases maps short flag names to their canonical name.
var aliases = map[string]string{
	"f":  "filename",
	"ff": "field-format",
	"d":  "delimiter",
	"bc": "blank-cols",
	"ol": "output-lines",
	"sl": "skip-lines",
	"ov": "output-level",
	"df": "defined-format",
}

// parseArgs parses args. A parse error has already been reported to stderr
// when it is returned.
func parseArgs(args []string, stderr io.Writer) (*cliOptions, error) {
	o := &cliOptions{
		fs:  flag.NewFlagSet("proofread", flag.ContinueOnError),
		fl:  config.Default(),
		set: map[string]bool{},
	}
	fs := o.fs
	fs.SetOutput(stderr)
	fs.Usage = usage(fs)

	str := func(p *string, usage string, names ...string) {
		for _, n := range names {
			fs.StringVar(p, n, *p, usage)
		}
	}
	num := func(p *int, usage string, names ...string) {
		for _, n := range names {
			fs.IntVar(p, n, *p, usage)
		}
	}
	boolean := func(p *bool, usage string, names ...string) {
		for _, n := range names {
			fs.BoolVar(p, n, *p, usage)
		}
	}

	fl := &o.fl
	str(&fl.Filename, "gzip file to proofread", "filename", "f")
	str(&fl.FieldFormat, "comma separated list of column formats", "field-format", "ff")
	str(&fl.Delimiter, "header delimiter", "delimiter", "d")
	str(&fl.DataDelimiter, "data row delimiter (single character)", "data-delimiter")
	boolean(&fl.LazyQuotes, "tolerate stray quotes in data rows", "lazy-quotes")
	str(&fl.BlankCols, "comma separated list of columns allowed to be empty (eg. 0,1,2)", "blank-cols", "bc")
	num(&fl.OutputLines, "print progress every 'x' lines", "output-lines", "ol")
	num(&fl.SkipLines, "skip first 'x' lines", "skip-lines", "sl")
	num(&fl.OutputLevel, "output verbosity (0-2); 2 reports allowed blanks", "output-level", "ov")
	boolean(&fl.DisplayHeader, "display header columns with their index and exit", "header")
	num(&fl.SamplePercent, "randomly validate 'x' percent of data lines", "sample-percentage")
	boolean(&fl.DuplicateCheck, "report lines identical to an earlier line", "duplicates")
	str(&fl.UnknownTypes, "unknown field formats: keep|drop", "unknown-types")
	str(&fl.Compression, "input compression: auto|gzip|none", "compression")
	str(&fl.Color, "colour diagnostics: auto|always|never", "color")
	num(&fl.MismatchExitCode, "exit status when header and field format widths differ", "mismatch-exit-code")
	str(&fl.DefinedFormat, "named field format preset", "defined-format", "df")
	str(&fl.Metrics.Backend, "metrics backend: none|pushgateway|datadog (env METRICS_BACKEND)", "metrics-backend")
	str(&fl.Metrics.PushgatewayURL, "Pushgateway base URL (env PUSHGATEWAY_URL)", "pushgateway-url")
	str(&fl.Metrics.DatadogAddr, "DogStatsD address (env DD_AGENT_HOST)", "datadog-addr")
	str(&fl.Metrics.Job, "metrics job name", "metrics-job")
	str(&fl.Metrics.FlushInterval, "push metrics periodically, e.g. 30s", "metrics-flush")

	fs.StringVar(&o.configPath, "config", "", "JSON or YAML config file")
	fs.BoolVar(&o.verbose, "v", false, "enable verbose logs")
	fs.BoolVar(&o.help, "help", false, "show usage")
	fs.BoolVar(&o.help, "?", false, "show usage")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			o.help = true
			return o, nil
		}
		return nil, err
	}

	fs.Visit(func(f *flag.Flag) {
		name := f.Name
		if canon, ok := aliases[name]; ok {
			name = canon
		}
		o.set[name] = true
	})

	// A bare positional argument names the input file.
	if !o.set["filename"] && fs.NArg() > 0 {
		o.fl.Filename = fs.Arg(0)
		o.set["filename"] = true
	}
	return o, nil
}

// resolveConfig layers defaults, the config file, the preset, explicit flags
// and finally the metrics environment variables.
func resolveConfig(o *cliOptions) (config.Config, error) {
	cfg := config.Default()
	if o.configPath != "" {
		var err error
		if cfg, err = config.Load(o.configPath, cfg); err != nil {
			return cfg, err
		}
	}

	preset := cfg.DefinedFormat
	if o.set["defined-format"] {
		preset = o.fl.DefinedFormat
	}
	if preset != "" {
		var err error
		if cfg, err = config.ApplyPreset(cfg, preset); err != nil {
			return cfg, err
		}
	}

	for name := range o.set {
		if apply, ok := overrides[name]; ok {
			apply(&cfg, o.fl)
		}
	}

	applyMetricsEnv(&cfg.Metrics, o.set, os.Getenv)
	return cfg, nil
}

// applyMetricsEnv fills metrics settings from the environment when neither a
// flag nor the config file chose them.
func applyMetricsEnv(m *config.Metrics, set map[string]bool, getenv func(string) string) {
	if !set["metrics-backend"] && (m.Backend == "" || m.Backend == "none") {
		if v := getenv("METRICS_BACKEND"); v != "" {
			m.Backend = v
		}
	}
	if !set["pushgateway-url"] && m.PushgatewayURL == "" {
		m.PushgatewayURL = getenv("PUSHGATEWAY_URL")
	}
	if !set["datadog-addr"] && m.DatadogAddr == "" {
		if host := getenv("DD_AGENT_HOST"); host != "" {
			port := getenv("DD_DOGSTATSD_PORT")
			if port == "" {
				port = "8125"
			}
			m.DatadogAddr = host + ":" + port
		}
	}
	if m.Backend == "pushgateway" && m.PushgatewayURL == "" {
		m.PushgatewayURL = "http://localhost:9091"
	}
	if strings.TrimSpace(m.Job) == "" {
		m.Job = "proofread"
	}
}
