package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/knights-analytics/hugot"
	"github.com/siherrmann/mailrag/helper"
	"golang.org/x/sync/semaphore"
)

const (
	// DefaultModelName is the sentence transformer used by DefaultEmbedder.
	DefaultModelName = "sentence-transformers/all-MiniLM-L6-v2"
	// DefaultEmbeddingDim is the vector length produced by DefaultModelName.
	DefaultEmbeddingDim = 384
	// DefaultEmbedTimeout bounds a single embedding call.
	DefaultEmbedTimeout = 30 * time.Second
	// DefaultMaxPendingEmbeds caps the calls a TimeoutEmbedder keeps running,
	// including calls that already timed out.
	DefaultMaxPendingEmbeds = 8
)

// DefaultEmbedder creates an embedder using a real sentence transformer model.
// Uses the all-MiniLM-L6-v2 model which produces 384-dimensional embeddings.
// The first call downloads the model into helper.ModelDir, creating the
// session loads it into memory once.
func DefaultEmbedder() (EmbedFunc, error) {
	modelPath, err := helper.PrepareModel(DefaultModelName, "onnx/model.onnx")
	if err != nil {
		return nil, err
	}

	// Initialize hugot session with Go backend
	session, err := hugot.NewGoSession()
	if err != nil {
		return nil, fmt.Errorf("failed to create hugot session: %w", err)
	}

	config := hugot.FeatureExtractionConfig{
		ModelPath: modelPath,
		Name:      "mailrag-embedder",
	}
	sentencePipeline, err := hugot.NewPipeline(session, config)
	if err != nil {
		if destroyErr := session.Destroy(); destroyErr != nil {
			return nil, fmt.Errorf("failed to create sentence pipeline: %w (cleanup error: %v)", err, destroyErr)
		}
		return nil, fmt.Errorf("failed to create sentence pipeline: %w", err)
	}

	return func(ctx context.Context, text string) ([]float32, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		result, err := sentencePipeline.RunPipeline([]string{text})
		if err != nil {
			return nil, fmt.Errorf("failed to generate embedding: %w", err)
		}

		if len(result.Embeddings) == 0 {
			return nil, fmt.Errorf("no embedding generated")
		}

		return result.Embeddings[0], nil
	}, nil
}

// TimeoutEmbedder bounds every call of embedder by timeout and keeps at most
// DefaultMaxPendingEmbeds underlying calls running.
func TimeoutEmbedder(embedder EmbedFunc, timeout time.Duration) EmbedFunc {
	return LimitedTimeoutEmbedder(embedder, timeout, DefaultMaxPendingEmbeds)
}

// LimitedTimeoutEmbedder bounds every call of embedder by timeout.
// A call that does not finish in time returns context.DeadlineExceeded,
// the underlying call is left to finish in the background and holds its
// slot until it returns. With maxPending slots taken, new calls wait for a
// free slot within their timeout.
func LimitedTimeoutEmbedder(embedder EmbedFunc, timeout time.Duration, maxPending int) EmbedFunc {
	type result struct {
		embedding []float32
		err       error
	}

	if maxPending < 1 {
		maxPending = 1
	}
	pending := semaphore.NewWeighted(int64(maxPending))

	return func(ctx context.Context, text string) ([]float32, error) {
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		if err := pending.Acquire(ctx, 1); err != nil {
			return nil, err
		}

		done := make(chan result, 1)
		go func() {
			defer pending.Release(1)
			embedding, err := embedder(ctx, text)
			done <- result{embedding, err}
		}()

		select {
		case r := <-done:
			return r.embedding, r.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}
