// Package proofread runs one proofreading pass over a delimited text file:
// it reads the header, reconciles it with the configured schema and then
// validates every data line in input order, emitting diagnostics as it goes.
package proofread

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"math/rand/v2"
	"os"
	"time"

	"github.com/zeebo/xxh3"

	"github.com/asolidum/proofreader/internal/config"
	"github.com/asolidum/proofreader/internal/datasource"
	"github.com/asolidum/proofreader/internal/diag"
	"github.com/asolidum/proofreader/internal/linesource"
	"github.com/asolidum/proofreader/internal/metrics"
	"github.com/asolidum/proofreader/internal/parser/csv"
	"github.com/asolidum/proofreader/internal/schema"
	"github.com/asolidum/proofreader/internal/validator"
)

var (
	// ErrSchemaMismatch means the header width differs from the field format.
	// No data line has been validated when it is returned.
	ErrSchemaMismatch = errors.New("field format and header column count mismatch")

	// ErrHeaderDisplayed is returned after the header listing was printed.
	ErrHeaderDisplayed = errors.New("header displayed")
)

// Result holds the line accounting of a finished run.
type Result struct {
	Lines       int64 // data lines read, header excluded
	Skipped     int64
	Empty       int64
	SampledOut  int64
	ParseErrors int64
	Duplicates  int64
	Validated   int64
	Errors      int64
	Warnings    int64
}

// Driver runs a proofreading pass configured by a config.Config.
type Driver struct {
	cfg      config.Config
	stdout   io.Writer
	sink     diag.Sink
	recorder *metrics.Recorder
	rng      *rand.Rand
	logger   *log.Logger
}

// Option customizes a Driver.
type Option func(*Driver)

// WithStdout sets the writer for schema warnings, header listing and
// progress. Defaults to os.Stdout.
func WithStdout(w io.Writer) Option {
	return func(d *Driver) { d.stdout = w }
}

// WithSink sets the diagnostic sink. Defaults to a WriterSink on os.Stderr.
func WithSink(s diag.Sink) Option {
	return func(d *Driver) { d.sink = s }
}

// WithRecorder enables run metrics.
func WithRecorder(r *metrics.Recorder) Option {
	return func(d *Driver) { d.recorder = r }
}

// WithRand sets the random source used for sampling.
func WithRand(r *rand.Rand) Option {
	return func(d *Driver) { d.rng = r }
}

// WithLogger enables operational log lines (start and completion).
func WithLogger(l *log.Logger) Option {
	return func(d *Driver) { d.logger = l }
}

// New returns a Driver for cfg. cfg is expected to have passed
// config.Validate.
func New(cfg config.Config, opts ...Option) *Driver {
	d := &Driver{cfg: cfg, stdout: os.Stdout}
	for _, o := range opts {
		o(d)
	}
	if d.sink == nil {
		d.sink = diag.NewWriterSink(os.Stderr, diag.ColorMode(cfg.Color))
	}
	return d
}

// Run proofreads src. Per-line findings never stop the run; only a
// configuration failure, a read error or ctx cancellation end it early.
func (d *Driver) Run(ctx context.Context, src datasource.Source) (res Result, err error) {
	start := time.Now()
	defer func() { d.recorder.RecordStep("run", err, time.Since(start)) }()

	sch, warns := d.cfg.Schema()
	for _, w := range warns {
		fmt.Fprintln(d.stdout, w.String())
	}
	blanks, err := d.cfg.Blanks()
	if err != nil {
		return res, fmt.Errorf("blank columns: %w", err)
	}
	tok, err := csv.NewTokenizer(d.cfg.DataDelimiter, d.cfg.LazyQuotes)
	if err != nil {
		return res, fmt.Errorf("data delimiter: %w", err)
	}

	lr, err := linesource.Open(ctx, src, linesource.Compression(d.cfg.Compression))
	if err != nil {
		return res, err
	}
	defer lr.Close()

	first, err := lr.ReadLine()
	if errors.Is(err, io.EOF) {
		return res, fmt.Errorf("%s: %w", src.Name(), linesource.ErrEmptyInput)
	}
	if err != nil {
		return res, fmt.Errorf("read header: %w", err)
	}
	header := csv.SplitHeader(first, d.cfg.Delimiter)

	if d.cfg.DisplayHeader {
		d.printHeader(header, sch)
		return res, ErrHeaderDisplayed
	}

	counter := &diag.Counter{Next: d.sink}
	if len(header) != sch.Len() {
		counter.Emit(diag.Diagnostic{
			Severity: diag.Error,
			Kind:     diag.KindConfig,
			File:     src.Name(),
			Message:  fmt.Sprintf("Field format count (%d) and line item count (%d) mismatch", sch.Len(), len(header)),
		})
		res.Errors = counter.Errors()
		return res, ErrSchemaMismatch
	}

	if d.logger != nil {
		d.logger.Printf("proofread: start %s (%d columns)", src.Name(), sch.Len())
	}

	r := &run{
		d:       d,
		file:    src.Name(),
		tok:     tok,
		counter: counter,
		val: validator.New(validator.Params{
			File:      src.Name(),
			Schema:    sch,
			Header:    header,
			Blank:     blanks,
			Verbosity: d.cfg.OutputLevel,
		}),
	}
	if d.cfg.DuplicateCheck {
		r.seen = make(map[uint64]int)
	}

	err = r.loop(ctx, lr)
	r.report()
	res = r.res
	res.Errors, res.Warnings = counter.Errors(), counter.Warnings()

	if err == nil && d.logger != nil {
		d.logger.Printf("proofread: done %s lines=%d validated=%d errors=%d warnings=%d in %s",
			src.Name(), res.Lines, res.Validated, res.Errors, res.Warnings, time.Since(start).Round(time.Millisecond))
	}
	return res, err
}

func (d *Driver) printHeader(header []string, sch schema.Schema) {
	for i, label := range header {
		if f, ok := sch.At(i); ok {
			fmt.Fprintf(d.stdout, "%d: %s (%s)\n", i, label, f.Name)
			continue
		}
		fmt.Fprintf(d.stdout, "%d: %s\n", i, label)
	}
}

// run is the per-invocation state of Driver.Run.
type run struct {
	d       *Driver
	file    string
	tok     *csv.Tokenizer
	val     *validator.Validator
	counter *diag.Counter
	seen    map[uint64]int

	res      Result
	reported Result
}

func (r *run) loop(ctx context.Context, lr *linesource.Reader) error {
	cfg := r.d.cfg
	// The header is line 1.
	index := 1
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		line, err := lr.ReadLine()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("%s:L:%d: read: %w", r.file, index+1, err)
		}
		index++
		r.res.Lines++

		if index <= cfg.SkipLines {
			r.res.Skipped++
			continue
		}

		r.line(index, line)

		if cfg.OutputLines > 0 && index%cfg.OutputLines == 0 {
			fmt.Fprintf(r.d.stdout, "Processing line %d\n", index)
			r.report()
		}
	}
}

// line handles one data line that was not skipped.
func (r *run) line(index int, line string) {
	if line == "" {
		r.res.Empty++
		r.counter.Emit(diag.Diagnostic{
			Severity: diag.Warn,
			Kind:     diag.KindShape,
			File:     r.file,
			Line:     index,
			Message:  "is empty",
		})
		return
	}
	if !r.sampled() {
		r.res.SampledOut++
		return
	}

	row, err := r.tok.Split(line)
	if err != nil {
		r.res.ParseErrors++
		r.counter.Emit(diag.Diagnostic{
			Severity: diag.Error,
			Kind:     diag.KindParse,
			File:     r.file,
			Line:     index,
			Message:  err.Error(),
		})
		return
	}

	if r.seen != nil {
		h := xxh3.HashString(line)
		if first, dup := r.seen[h]; dup {
			r.res.Duplicates++
			r.counter.Emit(diag.Diagnostic{
				Severity: diag.Warn,
				Kind:     diag.KindDuplicate,
				File:     r.file,
				Line:     index,
				Message:  fmt.Sprintf("duplicate of line %d", first),
			})
		} else {
			r.seen[h] = index
		}
	}

	r.val.Row(index, row, r.counter.Emit)
	r.res.Validated++
}

func (r *run) sampled() bool {
	p := r.d.cfg.SamplePercent
	if p >= 100 {
		return true
	}
	if r.d.rng != nil {
		return r.d.rng.IntN(100) < p
	}
	return rand.IntN(100) < p
}

// report pushes the counts accumulated since the previous report.
func (r *run) report() {
	rec := r.d.recorder
	if rec == nil {
		return
	}
	cur, prev := r.res, r.reported
	rec.RecordLines(metrics.LinesValidated, cur.Validated-prev.Validated)
	rec.RecordLines(metrics.LinesSkipped, cur.Skipped-prev.Skipped)
	rec.RecordLines(metrics.LinesSampledOut, cur.SampledOut-prev.SampledOut)
	rec.RecordLines(metrics.LinesParseError, cur.ParseErrors-prev.ParseErrors)
	rec.RecordLines(metrics.LinesDuplicate, cur.Duplicates-prev.Duplicates)
	rec.RecordLines(metrics.LinesEmpty, cur.Empty-prev.Empty)

	cur.Errors, cur.Warnings = r.counter.Errors(), r.counter.Warnings()
	rec.RecordDiagnostics(diag.Error.String(), cur.Errors-prev.Errors)
	rec.RecordDiagnostics(diag.Warn.String(), cur.Warnings-prev.Warnings)
	r.reported = cur
}
