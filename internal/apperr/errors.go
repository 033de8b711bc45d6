// Package apperr defines the sentinel errors shared across the open pipeline.
// Every failure the resolver or launcher can produce maps to exactly one of
// these, so callers can present a specific message instead of a bare boolean.
package apperr

import "errors"

var (
	ErrNoReference   = errors.New("no image reference found")
	ErrEmptyInput    = errors.New("empty reference")
	ErrTooLong       = errors.New("reference too long")
	ErrNullByte      = errors.New("reference contains null byte")
	ErrInvalidFormat = errors.New("invalid reference format")
	ErrEmbeddedImage = errors.New("embedded image cannot be opened")
	ErrNetworkImage  = errors.New("network image cannot be opened")
	ErrDangerousPath = errors.New("path contains dangerous characters")
	ErrNotFound      = errors.New("file not found")
	ErrPermission    = errors.New("permission denied")
	ErrLaunch        = errors.New("launch failed")
)
