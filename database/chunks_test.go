package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunksNewChunksDBHandler(t *testing.T) {
	t.Run("Invalid call NewChunksDBHandler with nil database", func(t *testing.T) {
		_, err := NewChunksDBHandler(nil, testDim, false)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "database connection is nil")
	})

	t.Run("Invalid embedding dimension", func(t *testing.T) {
		db := initDB(t)
		_, err := NewChunksDBHandler(db, 0, false)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "must be positive")
	})
}

func TestChunksSelectBySimilarity(t *testing.T) {
	emailsDbHandler, chunksDbHandler := initHandlers(t)
	ctx := context.Background()

	require.NoError(t, emailsDbHandler.InsertEmail(ctx, testEmail("Yaalini", []string{"east", "north"}, [][]float32{{1, 0, 0}, {0, 1, 0}})))
	require.NoError(t, emailsDbHandler.InsertEmail(ctx, testEmail("Rajesh", []string{"north-east"}, [][]float32{{1, 1, 0}})))
	require.NoError(t, emailsDbHandler.InsertEmail(ctx, testEmail("Plain", []string{"no vector"}, nil)))

	t.Run("Orders by descending similarity across receivers", func(t *testing.T) {
		hits, err := chunksDbHandler.SelectChunksBySimilarity(ctx, []float32{1, 0, 0}, 10)
		require.NoError(t, err)
		require.Len(t, hits, 3, "Expected chunks without embedding to be skipped")

		assert.Equal(t, "east", hits[0].Chunk.Content)
		assert.InDelta(t, 1.0, hits[0].Score, 0.0001)
		assert.Equal(t, "north-east", hits[1].Chunk.Content)
		assert.Equal(t, "Rajesh", hits[1].Chunk.Receiver)
		assert.InDelta(t, 0.7071, hits[1].Score, 0.0001)
		assert.Equal(t, "north", hits[2].Chunk.Content)
		assert.Equal(t, 1, hits[2].Chunk.ChunkIndex)
		assert.Equal(t, 2, hits[2].Chunk.TotalChunks)
	})

	t.Run("Truncates to limit", func(t *testing.T) {
		hits, err := chunksDbHandler.SelectChunksBySimilarity(ctx, []float32{0, 1, 0}, 1)
		require.NoError(t, err)
		require.Len(t, hits, 1)
		assert.Equal(t, "north", hits[0].Chunk.Content)
	})

	t.Run("Rejects wrong dimension", func(t *testing.T) {
		_, err := chunksDbHandler.SelectChunksBySimilarity(ctx, []float32{1, 0}, 10)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "dimension mismatch")
	})

	t.Run("Select chunks by emails", func(t *testing.T) {
		chunks, err := chunksDbHandler.SelectChunksByEmails(ctx, []int64{1})
		require.NoError(t, err)
		require.Len(t, chunks, 2)
		assert.Equal(t, "east", chunks[0].Content)
		assert.Equal(t, "north", chunks[1].Content)
	})
}
