package retrieval

import (
	"context"
	"fmt"

	"github.com/siherrmann/mailrag/core/pipeline"
	"github.com/siherrmann/mailrag/helper"
	"github.com/siherrmann/mailrag/model"
)

// ChunkSearcher is the nearest neighbour boundary of a chunk store.
// Hits are ordered by descending score and may belong to any receiver.
type ChunkSearcher interface {
	SelectChunksBySimilarity(ctx context.Context, embedding []float32, limit int) ([]*model.SearchHit, error)
}

// Engine runs the similarity read path: embed, search, reconcile
type Engine struct {
	chunks   ChunkSearcher
	pipeline *pipeline.Pipeline
}

// NewEngine creates a new retrieval engine
func NewEngine(chunks ChunkSearcher, p *pipeline.Pipeline) *Engine {
	return &Engine{
		chunks:   chunks,
		pipeline: p,
	}
}

// Search embeds the receiver name and returns the raw nearest hits.
// The hits are not filtered by receiver.
func (e *Engine) Search(ctx context.Context, receiver string, limit int) ([]*model.SearchHit, error) {
	if limit <= 0 {
		return nil, helper.NewError("search", fmt.Errorf("%w: limit must be positive", model.ErrInvalidInput))
	}

	embedding, err := e.pipeline.Embed(ctx, receiver)
	if err != nil {
		return nil, helper.NewError("embed query", err)
	}

	hits, err := e.chunks.SelectChunksBySimilarity(ctx, embedding, limit)
	if err != nil {
		return nil, helper.NewError("select chunks by similarity", err)
	}

	return hits, nil
}

// VectorRetrieve searches with config.TopK and reconciles the hits to
// groups of exact receiver matches.
func (e *Engine) VectorRetrieve(ctx context.Context, receiver string, config *model.QueryConfig) ([]*model.RetrievalGroup, error) {
	hits, err := e.Search(ctx, receiver, config.TopK)
	if err != nil {
		return nil, err
	}
	return Reconcile(hits, receiver), nil
}
