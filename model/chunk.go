package model

import (
	"time"
)

// Chunk is a bounded piece of an email body. Chunks of one email carry
// contiguous ChunkIndex values 0..TotalChunks-1 in original text order.
type Chunk struct {
	ID          int64     `json:"id"`
	EmailID     int64     `json:"email_id"`
	Receiver    string    `json:"receiver"`
	Content     string    `json:"content"`
	ChunkIndex  int       `json:"chunk_index"`
	TotalChunks int       `json:"total_chunks"`
	Embedding   []float32 `json:"embedding,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
