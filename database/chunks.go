package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"
	"github.com/siherrmann/mailrag/helper"
	"github.com/siherrmann/mailrag/model"
	loadSql "github.com/siherrmann/mailrag/sql"
)

// ChunksDBHandlerFunctions defines the interface for Chunks database operations.
type ChunksDBHandlerFunctions interface {
	SelectChunksByEmails(ctx context.Context, emailIDs []int64) ([]*model.Chunk, error)
	SelectChunksBySimilarity(ctx context.Context, embedding []float32, limit int) ([]*model.SearchHit, error)
	ChangeIndexType(ctx context.Context, indexType string, params map[string]interface{}) error
}

// ChunksDBHandler handles chunk-related database operations
type ChunksDBHandler struct {
	db        *helper.Database
	dimension int
}

// NewChunksDBHandler creates a new chunks database handler.
// The emails table has to exist, chunks reference their email.
// If force is true, it will reload the SQL functions even if they already exist.
func NewChunksDBHandler(db *helper.Database, embeddingDim int, force bool) (*ChunksDBHandler, error) {
	if db == nil {
		return nil, helper.NewError("database connection validation", fmt.Errorf("database connection is nil"))
	}
	if embeddingDim <= 0 {
		return nil, helper.NewError("embedding dimension validation", fmt.Errorf("embedding dimension must be positive, got %d", embeddingDim))
	}

	chunksDbHandler := &ChunksDBHandler{
		db:        db,
		dimension: embeddingDim,
	}

	err := loadSql.LoadChunksSql(chunksDbHandler.db.Instance, force)
	if err != nil {
		return nil, helper.NewError("load chunks sql", err)
	}

	err = chunksDbHandler.CreateTable()
	if err != nil {
		return nil, helper.NewError("create table", err)
	}

	db.Logger.Info("Initialized ChunksDBHandler", "dimension", embeddingDim)

	return chunksDbHandler, nil
}

// CreateTable creates the 'chunks' table with a vector column of the
// handler's dimension and the default HNSW index.
func (h *ChunksDBHandler) CreateTable() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := h.db.Instance.ExecContext(ctx, `SELECT init_chunks($1);`, h.dimension)
	if err != nil {
		return helper.NewError("init chunks", err)
	}

	h.db.Logger.Info("Checked/created table chunks")

	return nil
}

// SelectChunksByEmails retrieves the chunks of the given emails ordered by
// email and position.
func (h *ChunksDBHandler) SelectChunksByEmails(ctx context.Context, emailIDs []int64) ([]*model.Chunk, error) {
	return selectChunksByEmails(ctx, h.db.Instance, emailIDs)
}

// SelectChunksBySimilarity returns the nearest chunks by cosine similarity.
// Chunks of every receiver are candidates.
func (h *ChunksDBHandler) SelectChunksBySimilarity(ctx context.Context, embedding []float32, limit int) ([]*model.SearchHit, error) {
	if len(embedding) != h.dimension {
		return nil, helper.NewError("embedding validation", fmt.Errorf("vector dimension mismatch: expected %d, got %d", h.dimension, len(embedding)))
	}

	rows, err := h.db.Instance.QueryContext(
		ctx,
		`SELECT * FROM select_chunks_by_similarity($1, $2)`,
		pgvector.NewVector(embedding),
		limit,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	hits := []*model.SearchHit{}
	for rows.Next() {
		chunk := &model.Chunk{}
		hit := &model.SearchHit{Chunk: chunk}
		err := rows.Scan(
			&chunk.ID,
			&chunk.EmailID,
			&chunk.Receiver,
			&chunk.Content,
			&chunk.ChunkIndex,
			&chunk.TotalChunks,
			pq.Array(&chunk.Embedding),
			&chunk.CreatedAt,
			&hit.Score,
		)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}

		hits = append(hits, hit)
	}

	err = rows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return hits, nil
}

// queryer is satisfied by *sql.DB and *sql.Tx.
type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// insertChunk inserts one chunk of an already inserted email.
func insertChunk(ctx context.Context, q queryer, chunk *model.Chunk) error {
	var embedding interface{}
	if chunk.Embedding != nil {
		embedding = pgvector.NewVector(chunk.Embedding)
	}

	row := q.QueryRowContext(
		ctx,
		`SELECT * FROM insert_chunk($1, $2, $3, $4, $5, $6)`,
		chunk.EmailID,
		chunk.Receiver,
		chunk.Content,
		chunk.ChunkIndex,
		chunk.TotalChunks,
		embedding,
	)

	err := row.Scan(
		&chunk.ID,
		&chunk.CreatedAt,
	)
	if err != nil {
		return helper.NewError("scan", err)
	}

	return nil
}

func selectChunksByEmails(ctx context.Context, q queryer, emailIDs []int64) ([]*model.Chunk, error) {
	rows, err := q.QueryContext(
		ctx,
		`SELECT * FROM select_chunks_by_emails($1)`,
		pq.Array(emailIDs),
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	chunks := []*model.Chunk{}
	for rows.Next() {
		chunk := &model.Chunk{}
		err := rows.Scan(
			&chunk.ID,
			&chunk.EmailID,
			&chunk.Receiver,
			&chunk.Content,
			&chunk.ChunkIndex,
			&chunk.TotalChunks,
			pq.Array(&chunk.Embedding),
			&chunk.CreatedAt,
		)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}

		chunks = append(chunks, chunk)
	}

	err = rows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return chunks, nil
}
