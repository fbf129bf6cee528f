// Package linesource turns a raw datasource into a stream of decoded text
// lines. Gzip input (including multi-member files) is decompressed on the
// fly; plain text is passed through. A leading byte order mark is removed.
package linesource

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/asolidum/proofreader/internal/datasource"
)

// Compression selects how the raw bytes are decoded.
type Compression string

const (
	// Auto detects gzip by its magic bytes and falls back to plain text.
	Auto Compression = "auto"
	Gzip Compression = "gzip"
	None Compression = "none"
)

// ErrEmptyInput is returned when the input has no lines at all.
var ErrEmptyInput = errors.New("empty input")

const readBufSize = 1 << 20

var gzipMagic = []byte{0x1f, 0x8b}

// Reader yields decoded lines one at a time. It is not safe for concurrent
// use.
type Reader struct {
	raw   io.ReadCloser
	gz    *gzip.Reader
	br    *bufio.Reader
	carry []byte
}

// Open opens src and prepares line decoding according to c. The caller must
// Close the returned Reader.
func Open(ctx context.Context, src datasource.Source, c Compression) (*Reader, error) {
	raw, err := src.Open(ctx)
	if err != nil {
		return nil, err
	}
	r, err := newReader(raw, c)
	if err != nil {
		raw.Close()
		return nil, err
	}
	return r, nil
}

// NewReader wraps an already open stream. Closing the Reader closes rc.
func NewReader(rc io.ReadCloser, c Compression) (*Reader, error) {
	return newReader(rc, c)
}

func newReader(raw io.ReadCloser, c Compression) (*Reader, error) {
	lr := &Reader{raw: raw}
	peek := bufio.NewReaderSize(raw, readBufSize)

	isGzip := false
	switch c {
	case Gzip:
		isGzip = true
	case None:
	case Auto, "":
		head, err := peek.Peek(len(gzipMagic))
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("sniff compression: %w", err)
		}
		isGzip = bytes.Equal(head, gzipMagic)
	default:
		return nil, fmt.Errorf("unknown compression %q", c)
	}

	var decoded io.Reader = peek
	if isGzip {
		gz, err := gzip.NewReader(peek)
		if err != nil {
			return nil, fmt.Errorf("gzip: %w", err)
		}
		lr.gz = gz
		decoded = gz
	}

	decoded = transform.NewReader(decoded, unicode.BOMOverride(transform.Nop))
	lr.br = bufio.NewReaderSize(decoded, readBufSize)
	return lr, nil
}

// ReadLine returns the next line without its line terminator ("\n" or
// "\r\n"). A final line lacking a terminator is returned normally; after the
// last line ReadLine returns io.EOF. Any other error means the stream is
// unreadable (for example a truncated gzip member).
func (r *Reader) ReadLine() (string, error) {
	r.carry = r.carry[:0]
	for {
		chunk, err := r.br.ReadSlice('\n')
		switch {
		case err == nil:
			if len(r.carry) > 0 {
				r.carry = append(r.carry, chunk...)
				return trimEOL(r.carry), nil
			}
			return trimEOL(chunk), nil
		case errors.Is(err, bufio.ErrBufferFull):
			r.carry = append(r.carry, chunk...)
		case errors.Is(err, io.EOF):
			r.carry = append(r.carry, chunk...)
			if len(r.carry) == 0 {
				return "", io.EOF
			}
			return trimEOL(r.carry), nil
		default:
			return "", err
		}
	}
}

func trimEOL(b []byte) string {
	b = bytes.TrimSuffix(b, []byte{'\n'})
	b = bytes.TrimSuffix(b, []byte{'\r'})
	return string(b)
}

// Close releases the decompressor and the underlying stream.
func (r *Reader) Close() error {
	var gzErr error
	if r.gz != nil {
		gzErr = r.gz.Close()
	}
	if err := r.raw.Close(); err != nil {
		return err
	}
	return gzErr
}
