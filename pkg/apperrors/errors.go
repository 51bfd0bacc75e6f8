package apperrors

import "errors"

var (
	ErrNotFound       = errors.New("not found")
	ErrEmptyPrompt    = errors.New("prompt is required")
	ErrInvalidFormat  = errors.New("unsupported export format")
	ErrCatalogFetch   = errors.New("catalog fetch failed")
	ErrUnknownCatalog = errors.New("unknown catalog kind")
)
