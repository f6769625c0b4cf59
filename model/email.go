package model

import (
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Email is one ingested email body together with its chunks.
// IDs are assigned by the store, monotonic and 1-based.
type Email struct {
	ID        int64     `json:"id"`
	RID       uuid.UUID `json:"rid"`
	Receiver  string    `json:"receiver"`
	Content   string    `json:"content"`
	Chunks    []*Chunk  `json:"chunks"`
	Metadata  Metadata  `json:"metadata,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// NewEmailFromFile reads an email body from a file.
// The file path is kept in the metadata as source.
func NewEmailFromFile(filePath string, receiver string) (*Email, error) {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	return &Email{
		Receiver: receiver,
		Content:  string(content),
		Metadata: Metadata{MetadataSource: filePath},
	}, nil
}

// SameReceiver reports whether two receiver names match.
// Matching is exact on the full name, ignoring case only.
func SameReceiver(a, b string) bool {
	return strings.EqualFold(a, b)
}
