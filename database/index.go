package database

import (
	"context"
	"fmt"
	"time"

	"github.com/siherrmann/mailrag/helper"
)

const (
	// IndexTypeHNSW is the default vector index created with the chunks table.
	IndexTypeHNSW = "hnsw"
	// IndexTypeIVFFlat trades recall for faster builds on large inboxes.
	IndexTypeIVFFlat = "ivfflat"
)

// ChangeIndexType changes the vector index on chunk embeddings between HNSW and IVFFlat
// indexType: "hnsw" or "ivfflat"
// params: optional parameters for index creation
//   - For HNSW: "m" (int, default 16), "ef_construction" (int, default 64)
//   - For IVFFlat: "lists" (int, default 100)
func (h *ChunksDBHandler) ChangeIndexType(ctx context.Context, indexType string, params map[string]interface{}) error {
	createIndexSQL, err := indexStatement(indexType, params)
	if err != nil {
		return helper.NewError("change index type", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	tx, err := h.db.Instance.BeginTx(ctx, nil)
	if err != nil {
		return helper.NewError("begin transaction", err)
	}
	defer tx.Rollback() //nolint:errcheck

	_, err = tx.ExecContext(ctx, `DROP INDEX IF EXISTS idx_chunks_embedding;`)
	if err != nil {
		return helper.NewError("drop index", err)
	}

	_, err = tx.ExecContext(ctx, createIndexSQL)
	if err != nil {
		return helper.NewError("create index", err)
	}

	err = tx.Commit()
	if err != nil {
		return helper.NewError("commit", err)
	}

	h.db.Logger.Info("Changed vector index", "type", indexType, "params", params)

	return nil
}

// indexStatement builds the CREATE INDEX statement for indexType.
// Parameters must be positive integers.
func indexStatement(indexType string, params map[string]interface{}) (string, error) {
	intParam := func(name string, def int) (int, error) {
		raw, ok := params[name]
		if !ok {
			return def, nil
		}
		v, ok := raw.(int)
		if !ok || v <= 0 {
			return 0, fmt.Errorf("parameter %s must be a positive int, got %v", name, raw)
		}
		return v, nil
	}

	switch indexType {
	case IndexTypeHNSW:
		m, err := intParam("m", 16)
		if err != nil {
			return "", err
		}
		efConstruction, err := intParam("ef_construction", 64)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf(
			`CREATE INDEX idx_chunks_embedding ON chunks USING hnsw (embedding vector_cosine_ops) WITH (m = %d, ef_construction = %d);`,
			m, efConstruction,
		), nil

	case IndexTypeIVFFlat:
		lists, err := intParam("lists", 100)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf(
			`CREATE INDEX idx_chunks_embedding ON chunks USING ivfflat (embedding vector_cosine_ops) WITH (lists = %d);`,
			lists,
		), nil

	default:
		return "", fmt.Errorf("unsupported index type: %s (use 'hnsw' or 'ivfflat')", indexType)
	}
}
