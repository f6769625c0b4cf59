package model

import "errors"

var (
	// ErrInvalidInput indicates a missing or empty required field.
	ErrInvalidInput = errors.New("invalid input")

	// ErrEmbeddingUnavailable indicates the embedding model failed or timed out.
	// The operation is aborted without writing anything.
	ErrEmbeddingUnavailable = errors.New("embedding unavailable")

	// ErrNotFound is declared for callers that need it, queries return empty results instead.
	ErrNotFound = errors.New("not found")
)
