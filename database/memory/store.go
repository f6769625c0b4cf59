package memory

import (
	"context"
	"fmt"
	"maps"
	"math"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/siherrmann/mailrag/helper"
	"github.com/siherrmann/mailrag/model"
)

// Store is an in-process email and chunk store using brute-force cosine similarity.
// Writes are serialized, readers see either the state before or after an insert.
type Store struct {
	mu          sync.RWMutex
	dimension   int
	emails      []*model.Email
	nextEmailID int64
	nextChunkID int64
	now         func() time.Time
}

// NewStore creates an empty store. A positive dimension enforces the
// length of every stored embedding.
func NewStore(dimension int) *Store {
	return &Store{
		dimension:   dimension,
		nextEmailID: 1,
		nextChunkID: 1,
		now:         time.Now,
	}
}

// InsertEmail appends a copy of the email and its chunks. IDs, RID and
// timestamps are assigned here and written back to email. Nothing is stored
// if any chunk is invalid.
func (s *Store) InsertEmail(ctx context.Context, email *model.Email) error {
	if err := ctx.Err(); err != nil {
		return helper.NewError("insert email", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i, chunk := range email.Chunks {
		if chunk.Embedding != nil && s.dimension > 0 && len(chunk.Embedding) != s.dimension {
			return helper.NewError("insert email", fmt.Errorf("chunk %d: vector dimension mismatch: expected %d, got %d", i, s.dimension, len(chunk.Embedding)))
		}
	}

	createdAt := s.now().UTC()
	email.ID = s.nextEmailID
	email.RID = uuid.New()
	email.CreatedAt = createdAt
	s.nextEmailID++

	for _, chunk := range email.Chunks {
		chunk.ID = s.nextChunkID
		chunk.EmailID = email.ID
		chunk.CreatedAt = createdAt
		s.nextChunkID++
	}

	s.emails = append(s.emails, copyEmail(email))
	return nil
}

// SelectEmailsByReceiver returns the emails of receiver in insertion order.
func (s *Store) SelectEmailsByReceiver(ctx context.Context, receiver string) ([]*model.Email, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	emails := []*model.Email{}
	for _, email := range s.emails {
		if model.SameReceiver(email.Receiver, receiver) {
			emails = append(emails, copyEmail(email))
		}
	}
	return emails, nil
}

// SelectAllEmails returns every email in insertion order.
func (s *Store) SelectAllEmails(ctx context.Context) ([]*model.Email, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	emails := make([]*model.Email, 0, len(s.emails))
	for _, email := range s.emails {
		emails = append(emails, copyEmail(email))
	}
	return emails, nil
}

// CountEmails returns the number of stored emails.
func (s *Store) CountEmails(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.emails), nil
}

// DeleteAllEmails removes everything and restarts the id counters.
func (s *Store) DeleteAllEmails(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.emails = nil
	s.nextEmailID = 1
	s.nextChunkID = 1
	return nil
}

// SelectChunksBySimilarity returns up to limit chunks with an embedding,
// ordered by descending cosine similarity. Ties keep insertion order.
func (s *Store) SelectChunksBySimilarity(ctx context.Context, embedding []float32, limit int) ([]*model.SearchHit, error) {
	if s.dimension > 0 && len(embedding) != s.dimension {
		return nil, helper.NewError("select chunks by similarity", fmt.Errorf("vector dimension mismatch: expected %d, got %d", s.dimension, len(embedding)))
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	hits := []*model.SearchHit{}
	for _, email := range s.emails {
		for _, chunk := range email.Chunks {
			if chunk.Embedding == nil {
				continue
			}
			hits = append(hits, &model.SearchHit{
				Chunk: copyChunk(chunk),
				Score: cosineSimilarity(embedding, chunk.Embedding),
			})
		}
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})

	if limit >= 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

// copyEmail deep copies email so stored records never share memory with callers.
func copyEmail(email *model.Email) *model.Email {
	c := *email
	c.Metadata = maps.Clone(email.Metadata)
	if email.Chunks != nil {
		c.Chunks = make([]*model.Chunk, len(email.Chunks))
		for i, chunk := range email.Chunks {
			c.Chunks[i] = copyChunk(chunk)
		}
	}
	return &c
}

func copyChunk(chunk *model.Chunk) *model.Chunk {
	c := *chunk
	c.Embedding = slices.Clone(chunk.Embedding)
	return &c
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
