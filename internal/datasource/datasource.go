// Package datasource defines where proofread input bytes come from.
package datasource

import (
	"context"
	"io"
)

// Source opens the raw (possibly compressed) input.
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
	// Name labels the input in diagnostics, e.g. the file path.
	Name() string
}
