package pipeline

import (
	"context"
	"fmt"

	"github.com/siherrmann/mailrag/helper"
	"github.com/siherrmann/mailrag/model"
	"golang.org/x/sync/errgroup"
)

// ChunkFunc is a function that splits text into ordered chunks
type ChunkFunc func(text string) ([]string, error)

// EmbedFunc is a function that generates embeddings for text
type EmbedFunc func(ctx context.Context, text string) ([]float32, error)

// Pipeline combines chunking and embedding functions.
// Embedder is optional, without it chunks are stored without vectors.
type Pipeline struct {
	Chunker  ChunkFunc
	Embedder EmbedFunc
	// Dimension is the expected embedding length, 0 disables the check.
	Dimension int
	// Concurrency limits parallel embedder calls per email, values below 1 mean one.
	Concurrency int
}

// NewPipeline creates a new processing pipeline.
// A nil chunker falls back to SentenceChunker(DefaultMaxChunkChars).
func NewPipeline(chunker ChunkFunc, embedder EmbedFunc) *Pipeline {
	if chunker == nil {
		chunker = SentenceChunker(DefaultMaxChunkChars)
	}
	return &Pipeline{
		Chunker:  chunker,
		Embedder: embedder,
	}
}

// HasEmbedder reports whether the pipeline produces embeddings.
func (p *Pipeline) HasEmbedder() bool {
	return p != nil && p.Embedder != nil
}

// Embed runs the embedder on text. Every failure is reported as
// model.ErrEmbeddingUnavailable.
func (p *Pipeline) Embed(ctx context.Context, text string) ([]float32, error) {
	if !p.HasEmbedder() {
		return nil, helper.NewError("embed", fmt.Errorf("%w: no embedder configured", model.ErrEmbeddingUnavailable))
	}

	embedding, err := p.Embedder(ctx, text)
	if err != nil {
		return nil, helper.NewError("embed", fmt.Errorf("%w: %w", model.ErrEmbeddingUnavailable, err))
	}
	if p.Dimension > 0 && len(embedding) != p.Dimension {
		return nil, helper.NewError("embed", fmt.Errorf("%w: expected %d dimensions, got %d", model.ErrEmbeddingUnavailable, p.Dimension, len(embedding)))
	}
	return embedding, nil
}

// Process splits text into chunks owned by receiver and embeds each chunk
// when an embedder is set. Positions are assigned in text order. Nothing is
// returned if a single embedding fails.
func (p *Pipeline) Process(ctx context.Context, text string, receiver string) ([]*model.Chunk, error) {
	contents, err := p.Chunker(text)
	if err != nil {
		return nil, helper.NewError("chunk", err)
	}

	chunks := make([]*model.Chunk, len(contents))
	for i, content := range contents {
		chunks[i] = &model.Chunk{
			Receiver:    receiver,
			Content:     content,
			ChunkIndex:  i,
			TotalChunks: len(contents),
		}
	}

	if !p.HasEmbedder() {
		return chunks, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(p.Concurrency, 1))
	for i, chunk := range chunks {
		g.Go(func() error {
			embedding, err := p.Embed(gctx, chunk.Content)
			if err != nil {
				return helper.NewError(fmt.Sprintf("process chunk %d", i), err)
			}
			chunk.Embedding = embedding
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return chunks, nil
}
