package diag

import (
	"bufio"
	"io"
	"os"
	"sync/atomic"

	"github.com/mattn/go-isatty"
)

// Sink receives diagnostics in the order they are produced.
type Sink interface {
	Emit(Diagnostic)
}

// SinkFunc adapts a function to a Sink.
type SinkFunc func(Diagnostic)

// Emit implements Sink.
func (f SinkFunc) Emit(d Diagnostic) { f(d) }

const (
	ansiRed    = "\x1b[31m"
	ansiYellow = "\x1b[33m"
	ansiReset  = "\x1b[0m"
)

// ColorMode selects when severities are coloured.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"
	ColorAlways ColorMode = "always"
	ColorNever  ColorMode = "never"
)

// WriterSink writes one rendered diagnostic per line. Each line is flushed
// before Emit returns so stderr stays in step with stdout progress output.
type WriterSink struct {
	w     *bufio.Writer
	color bool
	err   error
}

// NewWriterSink returns a sink writing to w. In ColorAuto mode colour is
// used only when w is a terminal.
func NewWriterSink(w io.Writer, mode ColorMode) *WriterSink {
	return &WriterSink{w: bufio.NewWriter(w), color: useColor(w, mode)}
}

func useColor(w io.Writer, mode ColorMode) bool {
	switch mode {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// Emit implements Sink. The first write error is kept and later emits are
// dropped; see Err.
func (s *WriterSink) Emit(d Diagnostic) {
	if s.err != nil {
		return
	}
	sev := d.Severity.String()
	if s.color {
		switch d.Severity {
		case Error:
			sev = ansiRed + sev + ansiReset
		case Warn:
			sev = ansiYellow + sev + ansiReset
		}
	}
	if _, err := s.w.WriteString(d.render(sev)); err != nil {
		s.err = err
		return
	}
	if err := s.w.WriteByte('\n'); err != nil {
		s.err = err
		return
	}
	s.err = s.w.Flush()
}

// Err returns the first write error, if any.
func (s *WriterSink) Err() error { return s.err }

// Counter forwards to Next and counts diagnostics by severity. Counts are
// atomic so a metrics flusher may read them while a run is in progress.
type Counter struct {
	Next     Sink
	errors   atomic.Int64
	warnings atomic.Int64
}

// Emit implements Sink.
func (c *Counter) Emit(d Diagnostic) {
	switch d.Severity {
	case Error:
		c.errors.Add(1)
	case Warn:
		c.warnings.Add(1)
	}
	if c.Next != nil {
		c.Next.Emit(d)
	}
}

// Errors returns the number of ERROR diagnostics seen.
func (c *Counter) Errors() int64 { return c.errors.Load() }

// Warnings returns the number of WARN diagnostics seen.
func (c *Counter) Warnings() int64 { return c.warnings.Load() }

// Discard drops every diagnostic.
var Discard Sink = SinkFunc(func(Diagnostic) {})
