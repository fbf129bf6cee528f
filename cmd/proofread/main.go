// Command proofread checks a gzip (or plain) delimited text file against a
// column format list and reports every value that does not fit its column.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/asolidum/proofreader/internal/config"
	"github.com/asolidum/proofreader/internal/datasource/file"
	"github.com/asolidum/proofreader/internal/diag"
	"github.com/asolidum/proofreader/internal/metrics"
	"github.com/asolidum/proofreader/internal/metrics/datadog"
	"github.com/asolidum/proofreader/internal/metrics/prompush"
	"github.com/asolidum/proofreader/internal/proofread"
	"github.com/asolidum/proofreader/internal/schema"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes one proofreading invocation and returns the process exit
// status.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts, err := parseArgs(args, stderr)
	if err != nil {
		return 1
	}
	if opts.help {
		opts.fs.SetOutput(stdout)
		opts.fs.Usage()
		return 1
	}

	cfg, err := resolveConfig(opts)
	if err != nil {
		fmt.Fprintf(stderr, "ERROR: %v\n", err)
		return 1
	}
	if strings.TrimSpace(cfg.Filename) == "" {
		opts.fs.Usage()
		return 1
	}

	issues := config.Validate(cfg)
	for _, iss := range issues {
		fmt.Fprintf(stderr, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
	}
	if config.HasErrors(issues) {
		return 1
	}
	if !file.Exists(cfg.Filename) {
		fmt.Fprintf(stderr, "ERROR: file not found '%s'\n", cfg.Filename)
		return 1
	}

	runID := uuid.NewString()
	var logger *log.Logger
	if opts.verbose {
		logger = log.New(stderr, "", log.LstdFlags)
		logger.Printf("run %s: file=%s format=%q blank_cols=%q", runID, cfg.Filename, cfg.FieldFormat, cfg.BlankCols)
	}

	backend := newBackend(cfg.Metrics, runID, logger)
	recorder := metrics.NewRecorder(backend, cfg.Metrics.Job)
	defer func() {
		if err := recorder.Flush(); err != nil {
			log.Printf("metrics: flush error: %v", err)
		}
		if c, ok := backend.(io.Closer); ok {
			_ = c.Close()
		}
	}()

	sink := diag.NewWriterSink(stderr, diag.ColorMode(cfg.Color))
	driver := proofread.New(cfg,
		proofread.WithStdout(stdout),
		proofread.WithSink(sink),
		proofread.WithRecorder(recorder),
		proofread.WithLogger(logger),
	)

	runErr := runWithFlusher(ctx, cfg.Metrics.FlushInterval, recorder, func(ctx context.Context) error {
		_, err := driver.Run(ctx, file.NewLocal(cfg.Filename))
		return err
	})
	if err := sink.Err(); err != nil {
		log.Printf("write diagnostics: %v", err)
	}

	switch {
	case runErr == nil:
		return 0
	case errors.Is(runErr, proofread.ErrHeaderDisplayed):
		return 1
	case errors.Is(runErr, proofread.ErrSchemaMismatch):
		return cfg.MismatchExitCode
	default:
		fmt.Fprintf(stderr, "ERROR: %v\n", runErr)
		return 1
	}
}

// runWithFlusher runs fn and, when interval is a positive duration, pushes
// metrics on that interval until fn returns. Flush failures are logged and
// never abort the run.
func runWithFlusher(ctx context.Context, interval string, rec *metrics.Recorder, fn func(context.Context) error) error {
	every, _ := time.ParseDuration(interval)
	if every <= 0 {
		return fn(ctx)
	}

	done := make(chan struct{})
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(done)
		return fn(gctx)
	})
	g.Go(func() error {
		t := time.NewTicker(every)
		defer t.Stop()
		for {
			select {
			case <-done:
				return nil
			case <-gctx.Done():
				return nil
			case <-t.C:
				if err := rec.Flush(); err != nil {
					log.Printf("metrics: periodic flush error: %v", err)
				}
			}
		}
	})
	return g.Wait()
}

// newBackend builds the configured metrics backend. Failures fall back to
// metrics.Nop.
func newBackend(m config.Metrics, runID string, logger *log.Logger) metrics.Backend {
	switch m.Backend {
	case "pushgateway":
		b, err := prompush.NewBackend(m.Job, m.PushgatewayURL)
		if err != nil {
			log.Printf("metrics: failed to init prom push backend: %v; using nop", err)
			return metrics.Nop
		}
		if logger != nil {
			logger.Printf("metrics: url=%v, backend=%v, job_name=%v", m.PushgatewayURL, m.Backend, m.Job)
		}
		return b

	case "datadog":
		b, err := datadog.NewBackend(datadog.Config{
			Addr:       m.DatadogAddr,
			GlobalTags: []string{"run_id:" + runID},
		})
		if err != nil {
			log.Printf("metrics: failed to init datadog backend: %v; using nop", err)
			return metrics.Nop
		}
		if logger != nil {
			logger.Printf("metrics: addr=%v, backend=%v, job_name=%v", m.DatadogAddr, m.Backend, m.Job)
		}
		return b

	case "", "none":
		return metrics.Nop

	default:
		log.Printf("metrics: unknown backend %q; metrics disabled", m.Backend)
		return metrics.Nop
	}
}

// usage prints the flag summary followed by the accepted field formats.
func usage(fs *flag.FlagSet) func() {
	return func() {
		w := fs.Output()
		fmt.Fprintf(w, "Usage: proofread -f <file.csv.gz> [options]\n\n")
		fs.PrintDefaults()
		fmt.Fprintf(w, "\nField formats: %s\n", strings.Join(schema.Names(), ", "))
		fmt.Fprintf(w, "Defined formats: %s\n", strings.Join(config.PresetNames(), ", "))
	}
}
