// Package metrics provides a small, backend-agnostic abstraction for recording
// operational metrics from a proofreading run.
//
//   - It exposes a narrow interface (Backend) focused on counters and timing
//     data (histograms).
//   - A Recorder binds a Backend to a job name. The zero Recorder and a nil
//     *Recorder are no-ops, so metrics are always safe to call even when no
//     real backend is configured.
//   - Concrete metric systems live in subpackages (prompush, datadog) so the
//     rest of the code depends only on this package.
package metrics

import "time"

// Labels are string key/value pairs attached to a metric.
type Labels map[string]string

// Metric names emitted by Recorder.
const (
	StepTotal        = "proofread_step_total"
	StepDuration     = "proofread_step_duration_seconds"
	LinesTotal       = "proofread_lines_total"
	DiagnosticsTotal = "proofread_diagnostics_total"
)

// Line kinds for RecordLines.
const (
	LinesValidated  = "validated"
	LinesSkipped    = "skipped"
	LinesSampledOut = "sampled_out"
	LinesParseError = "parse_error"
	LinesDuplicate  = "duplicate"
	LinesEmpty      = "empty"
)

// Backend is the minimal interface for metrics backends.
type Backend interface {
	// IncCounter increments a counter by delta.
	IncCounter(name string, delta float64, labels Labels)
	// ObserveHistogram records a value in a latency/duration style metric.
	ObserveHistogram(name string, value float64, labels Labels)
	// Flush pushes or flushes metrics, if the backend needs it (e.g. Pushgateway).
	Flush() error
}

type nopBackend struct{}

func (nopBackend) IncCounter(string, float64, Labels)       {}
func (nopBackend) ObserveHistogram(string, float64, Labels) {}
func (nopBackend) Flush() error                             { return nil }

// Nop is a Backend that discards everything.
var Nop Backend = nopBackend{}

// Recorder records run metrics for one job.
type Recorder struct {
	backend Backend
	job     string
}

// NewRecorder binds b to job. A nil b behaves like Nop.
func NewRecorder(b Backend, job string) *Recorder {
	if b == nil {
		b = Nop
	}
	return &Recorder{backend: b, job: job}
}

func (r *Recorder) be() Backend {
	if r == nil || r.backend == nil {
		return Nop
	}
	return r.backend
}

// Flush delegates to the backend.
func (r *Recorder) Flush() error {
	return r.be().Flush()
}

// RecordStep measures latency and success/failure of a run step.
func (r *Recorder) RecordStep(step string, err error, d time.Duration) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	lbls := Labels{
		"job":    r.jobName(),
		"step":   step,
		"status": status,
	}
	b := r.be()
	b.IncCounter(StepTotal, 1, lbls)
	b.ObserveHistogram(StepDuration, d.Seconds(), lbls)
}

// RecordLines adds delta lines of the given kind (see the Lines* constants).
func (r *Recorder) RecordLines(kind string, delta int64) {
	if delta <= 0 {
		return
	}
	r.be().IncCounter(LinesTotal, float64(delta), Labels{
		"job":  r.jobName(),
		"kind": kind,
	})
}

// RecordDiagnostics adds delta diagnostics of the given severity.
func (r *Recorder) RecordDiagnostics(severity string, delta int64) {
	if delta <= 0 {
		return
	}
	r.be().IncCounter(DiagnosticsTotal, float64(delta), Labels{
		"job":      r.jobName(),
		"severity": severity,
	})
}

func (r *Recorder) jobName() string {
	if r == nil {
		return ""
	}
	return r.job
}
