package model

import "strings"

// SearchHit is a chunk returned by similarity search with its cosine similarity.
type SearchHit struct {
	Chunk *Chunk  `json:"chunk"`
	Score float64 `json:"score"`
}

// RetrievalGroup holds the hits of one receiver in original chunk order.
type RetrievalGroup struct {
	Receiver string       `json:"receiver"`
	Hits     []*SearchHit `json:"hits"`
}

// TopScore returns the highest similarity score in the group.
func (g *RetrievalGroup) TopScore() float64 {
	top := 0.0
	for i, hit := range g.Hits {
		if i == 0 || hit.Score > top {
			top = hit.Score
		}
	}
	return top
}

// Text joins the chunk contents with a single space.
func (g *RetrievalGroup) Text() string {
	parts := make([]string, 0, len(g.Hits))
	for _, hit := range g.Hits {
		parts = append(parts, hit.Chunk.Content)
	}
	return strings.Join(parts, " ")
}

// IngestResult is returned after an email was stored.
type IngestResult struct {
	ChunkCount  int   `json:"chunk_count"`
	EmailID     int64 `json:"email_id"`
	// TotalEmails is 0 when the store could not be counted after the write.
	TotalEmails int `json:"total_emails,omitempty"`
}
