// Package apperr defines sentinel errors shared across the pipeline.
package apperr

import "errors"

var (
	ErrNotFound    = errors.New("not found")
	ErrOutsideRoot = errors.New("path escapes root")
)
