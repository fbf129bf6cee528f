package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/klauspost/compress/gzip"

	"github.com/asolidum/proofreader/internal/config"
	"github.com/asolidum/proofreader/internal/metrics"
)

func writeGzip(t *testing.T, body string) string {
	t.Helper()
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	if _, err := w.Write([]byte(body)); err != nil {
		t.Fatalf("gzip write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("gzip close: %v", err)
	}
	p := filepath.Join(t.TempDir(), "in.csv.gz")
	if err := os.WriteFile(p, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return p
}

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRun_ExitCodes(t *testing.T) {
	t.Parallel()

	valid := writeGzip(t, "id|lat|lon\nbad-uuid,95,200\n")
	narrow := writeGzip(t, "id|lat\nx,1\n")

	tests := []struct {
		name       string
		args       []string
		wantCode   int
		wantStdout string
		wantStderr []string
	}{
		{
			name:       "findings do not change exit status",
			args:       []string{"-f", valid, "-ff", "uuid,lat,lon"},
			wantCode:   0,
			wantStderr: []string{"ERROR: " + valid + ":L:2:C:0:H:id 'bad-uuid' not valid uuid type", "not valid lat", "not valid lon"},
		},
		{
			name:       "positional filename",
			args:       []string{"-ff", "uuid,lat,lon", valid},
			wantCode:   0,
			wantStderr: []string{"not valid lon"},
		},
		{
			name:       "mismatch keeps historical zero",
			args:       []string{"-f", narrow, "-ff", "uuid,lat,lon"},
			wantCode:   0,
			wantStderr: []string{"ERROR: Field format count (3) and line item count (2) mismatch"},
		},
		{
			name:     "mismatch exit code is configurable",
			args:     []string{"-f", narrow, "-ff", "uuid,lat,lon", "-mismatch-exit-code", "3"},
			wantCode: 3,
		},
		{
			name:       "header display",
			args:       []string{"-f", narrow, "-ff", "uuid,lat", "-header"},
			wantCode:   1,
			wantStdout: "0: id (uuid)\n1: lat (lat)\n",
		},
		{
			name:       "missing filename prints usage",
			args:       []string{"-ff", "uuid"},
			wantCode:   1,
			wantStderr: []string{"Usage: proofread"},
		},
		{
			name:       "file not found",
			args:       []string{"-f", filepath.Join(t.TempDir(), "nope.gz")},
			wantCode:   1,
			wantStderr: []string{"ERROR: file not found"},
		},
		{
			name:       "config lint error",
			args:       []string{"-f", valid, "-ov", "7"},
			wantCode:   1,
			wantStderr: []string{"error: output_level:"},
		},
		{
			name:       "unknown preset",
			args:       []string{"-f", valid, "-df", "nope"},
			wantCode:   1,
			wantStderr: []string{"nope"},
		},
		{
			name:       "bad flag",
			args:       []string{"-no-such-flag"},
			wantCode:   1,
			wantStderr: []string{"flag provided but not defined"},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			code, stdout, stderr := runCLI(t, tt.args...)
			if code != tt.wantCode {
				t.Fatalf("exit=%d; want %d\nstdout=%s\nstderr=%s", code, tt.wantCode, stdout, stderr)
			}
			if tt.wantStdout != "" && stdout != tt.wantStdout {
				t.Fatalf("stdout=%q; want %q", stdout, tt.wantStdout)
			}
			for _, w := range tt.wantStderr {
				if !strings.Contains(stderr, w) {
					t.Fatalf("stderr=%q; want it to contain %q", stderr, w)
				}
			}
		})
	}
}

func TestRun_HelpGoesToStdout(t *testing.T) {
	t.Parallel()

	for _, arg := range []string{"-help", "-?", "-h"} {
		code, stdout, _ := runCLI(t, arg)
		if code != 1 || !strings.Contains(stdout, "Usage: proofread") || !strings.Contains(stdout, "loc_method") {
			t.Fatalf("%s: exit=%d stdout=%q", arg, code, stdout)
		}
	}
}

func TestResolveConfig_Layering(t *testing.T) {
	t.Parallel()

	cfgPath := filepath.Join(t.TempDir(), "run.yaml")
	body := "filename: from-file.gz\nblank_cols: \"1\"\noutput_lines: 50\ndefined_format: backup\n"
	if err := os.WriteFile(cfgPath, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	o, err := parseArgs([]string{"-config", cfgPath, "-bc", "2,3", "-sl", "4"}, &bytes.Buffer{})
	if err != nil {
		t.Fatalf("parseArgs: %v", err)
	}
	cfg, err := resolveConfig(o)
	if err != nil {
		t.Fatalf("resolveConfig: %v", err)
	}

	if cfg.Filename != "from-file.gz" || cfg.OutputLines != 50 {
		t.Fatalf("file layer lost: %+v", cfg)
	}
	if cfg.DefinedFormat != "backup" {
		t.Fatalf("preset not applied: %+v", cfg)
	}
	s, _ := cfg.Schema()
	if s.Len() != 33 {
		t.Fatalf("preset field format Len=%d; want 33", s.Len())
	}
	// Explicit flags win over the preset's blank columns.
	if cfg.BlankCols != "2,3" || cfg.SkipLines != 4 {
		t.Fatalf("flag layer lost: blank_cols=%q skip_lines=%d", cfg.BlankCols, cfg.SkipLines)
	}
	// Unset flags keep their file values.
	if cfg.OutputLevel != config.Default().OutputLevel {
		t.Fatalf("output_level=%d", cfg.OutputLevel)
	}
}

func TestApplyMetricsEnv(t *testing.T) {
	t.Parallel()

	env := map[string]string{
		"METRICS_BACKEND": "datadog",
		"DD_AGENT_HOST":   "agent",
	}
	getenv := func(k string) string { return env[k] }

	m := config.Default().Metrics
	applyMetricsEnv(&m, map[string]bool{}, getenv)
	if m.Backend != "datadog" || m.DatadogAddr != "agent:8125" || m.Job != "proofread" {
		t.Fatalf("env not applied: %+v", m)
	}

	m = config.Metrics{Backend: "pushgateway"}
	applyMetricsEnv(&m, map[string]bool{"metrics-backend": true}, getenv)
	if m.Backend != "pushgateway" || m.PushgatewayURL != "http://localhost:9091" {
		t.Fatalf("flag-chosen backend overridden: %+v", m)
	}
}

type countingBackend struct{ flushes atomic.Int64 }

func (*countingBackend) IncCounter(string, float64, metrics.Labels)       {}
func (*countingBackend) ObserveHistogram(string, float64, metrics.Labels) {}
func (c *countingBackend) Flush() error {
	c.flushes.Add(1)
	return nil
}

func TestRunWithFlusher(t *testing.T) {
	t.Parallel()

	cb := &countingBackend{}
	rec := metrics.NewRecorder(cb, "test")
	boom := errors.New("boom")

	err := runWithFlusher(context.Background(), "5ms", rec, func(ctx context.Context) error {
		time.Sleep(60 * time.Millisecond)
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err=%v; want boom", err)
	}
	if cb.flushes.Load() == 0 {
		t.Fatalf("no periodic flush happened")
	}

	called := false
	if err := runWithFlusher(context.Background(), "", rec, func(context.Context) error {
		called = true
		return nil
	}); err != nil || !called {
		t.Fatalf("no-interval run: err=%v called=%v", err, called)
	}
}
