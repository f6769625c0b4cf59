package model

import "fmt"

// QueryMode selects the read path of a query.
type QueryMode string

const (
	// QueryModeExact looks up stored emails by receiver name.
	QueryModeExact QueryMode = "exact"
	// QueryModeVector runs similarity search on the receiver name and
	// reconciles the hits back to exact receiver matches.
	QueryModeVector QueryMode = "vector"
)

// ParseQueryMode converts a configuration string into a QueryMode.
func ParseQueryMode(s string) (QueryMode, error) {
	switch QueryMode(s) {
	case QueryModeExact, QueryModeVector:
		return QueryMode(s), nil
	default:
		return "", fmt.Errorf("%w: unknown query mode %q (use 'exact' or 'vector')", ErrInvalidInput, s)
	}
}

// QueryConfig represents configuration for a retrieval query
type QueryConfig struct {
	Mode QueryMode `json:"mode"`
	// TopK limits the number of similarity hits before reconciliation.
	TopK int `json:"top_k"`
}

// DefaultQueryConfig returns the default configuration for vector queries.
func DefaultQueryConfig() QueryConfig {
	return QueryConfig{
		Mode: QueryModeVector,
		TopK: 10,
	}
}
