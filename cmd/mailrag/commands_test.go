package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/siherrmann/mailrag/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIngestCommand(t *testing.T) {
	t.Run("Ingest inline text", func(t *testing.T) {
		c := newTestCLI(t)

		out, err := run(c, "ingest", "--receiver", "Yaalini", "--text", "The budget was approved. Please send the report.")
		require.NoError(t, err, "Expected no error ingesting text")
		assert.Equal(t, "Stored email 1 for Yaalini (1 chunks, 1 emails total)\n", out, "Expected ingest summary")
	})

	t.Run("Ingest from file", func(t *testing.T) {
		c := newTestCLI(t)
		path := filepath.Join(t.TempDir(), "mail.txt")
		require.NoError(t, os.WriteFile(path, []byte("Hi Rajesh. The server is down."), 0600))

		out, err := run(c, "ingest", "-r", "Rajesh", "-f", path)
		require.NoError(t, err, "Expected no error ingesting file")
		assert.Contains(t, out, "Stored email 1 for Rajesh", "Expected ingest summary")

		emails, err := c.rag.FindByReceiver(context.Background(), "Rajesh")
		require.NoError(t, err)
		require.Len(t, emails, 1, "Expected one stored email")
		assert.Equal(t, path, emails[0].Metadata.String(model.MetadataSource), "Expected file path as source")
	})

	t.Run("Missing receiver", func(t *testing.T) {
		c := newTestCLI(t)

		_, err := run(c, "ingest", "--text", "Hello.")
		assert.Error(t, err, "Expected error without receiver")
	})

	t.Run("Text and file together", func(t *testing.T) {
		c := newTestCLI(t)

		_, err := run(c, "ingest", "-r", "Yaalini", "--text", "Hello.", "--file", "mail.txt")
		assert.Error(t, err, "Expected error with both text and file")
	})

	t.Run("Missing file", func(t *testing.T) {
		c := newTestCLI(t)

		_, err := run(c, "ingest", "-r", "Yaalini", "--file", filepath.Join(t.TempDir(), "missing.txt"))
		assert.ErrorContains(t, err, "failed to read email", "Expected read error")
	})

	t.Run("Blank text", func(t *testing.T) {
		c := newTestCLI(t)

		_, err := run(c, "ingest", "-r", "Yaalini", "--text", "   ")
		assert.Error(t, err, "Expected error for blank text")
	})
}

func TestQueryCommand(t *testing.T) {
	t.Run("Exact report", func(t *testing.T) {
		c := newTestCLI(t)
		_, err := run(c, "ingest", "-r", "Yaalini", "-t", "The budget was approved.")
		require.NoError(t, err)
		_, err = run(c, "ingest", "-r", "Rajesh", "-t", "The server is down.")
		require.NoError(t, err)

		out, err := run(c, "query", "yaalini")
		require.NoError(t, err, "Expected no error querying")
		assert.Contains(t, out, "EMAILS FOR: yaalini\n", "Expected report header")
		assert.Contains(t, out, "EMAIL 1:\nReceiver: Yaalini\nID: 1\n", "Expected first email")
		assert.Contains(t, out, "The budget was approved.", "Expected email content")
		assert.NotContains(t, out, "The server is down.", "Expected other receivers to be excluded")
	})

	t.Run("Unknown receiver", func(t *testing.T) {
		c := newTestCLI(t)

		out, err := run(c, "query", "Nobody")
		require.NoError(t, err, "Expected no error for unknown receiver")
		assert.Equal(t, "No emails found for 'Nobody'\n", out, "Expected empty report")
	})

	t.Run("Invalid mode", func(t *testing.T) {
		c := newTestCLI(t)

		_, err := run(c, "query", "Yaalini", "--mode", "fuzzy")
		assert.ErrorContains(t, err, "unknown query mode", "Expected mode error")
	})

	t.Run("Non positive top-k", func(t *testing.T) {
		c := newTestCLI(t)

		_, err := run(c, "query", "Yaalini", "--top-k", "0")
		assert.ErrorContains(t, err, "--top-k must be positive", "Expected top-k error")
	})

	t.Run("Vector mode without embedder", func(t *testing.T) {
		c := newTestCLI(t)
		_, err := run(c, "ingest", "-r", "Yaalini", "-t", "The budget was approved.")
		require.NoError(t, err)

		_, err = run(c, "query", "Yaalini", "--mode", "vector")
		assert.Error(t, err, "Expected error for vector mode without embedder")
	})

	t.Run("Missing receiver argument", func(t *testing.T) {
		c := newTestCLI(t)

		_, err := run(c, "query")
		assert.Error(t, err, "Expected error without receiver")
	})
}

func TestListCommand(t *testing.T) {
	t.Run("Empty store", func(t *testing.T) {
		c := newTestCLI(t)

		out, err := run(c, "list")
		require.NoError(t, err)
		assert.Equal(t, "No emails stored\n", out, "Expected empty message")
	})

	t.Run("Stored emails", func(t *testing.T) {
		c := newTestCLI(t)
		_, err := run(c, "ingest", "-r", "Yaalini", "-t", "First. Second.")
		require.NoError(t, err)
		_, err = run(c, "ingest", "-r", "Rajesh", "-t", "Third.")
		require.NoError(t, err)

		out, err := run(c, "list")
		require.NoError(t, err)
		assert.Contains(t, out, "RECEIVER", "Expected table header")
		assert.Contains(t, out, "Yaalini", "Expected first receiver")
		assert.Contains(t, out, "Rajesh", "Expected second receiver")
	})
}

func TestClearCommand(t *testing.T) {
	t.Run("Requires confirmation", func(t *testing.T) {
		c := newTestCLI(t)

		_, err := run(c, "clear")
		assert.ErrorContains(t, err, "--yes", "Expected confirmation error")
	})

	t.Run("Clear all emails", func(t *testing.T) {
		c := newTestCLI(t)
		_, err := run(c, "ingest", "-r", "Yaalini", "-t", "The budget was approved.")
		require.NoError(t, err)

		out, err := run(c, "clear", "--yes")
		require.NoError(t, err)
		assert.Equal(t, "Deleted all emails\n", out)

		out, err = run(c, "list")
		require.NoError(t, err)
		assert.Equal(t, "No emails stored\n", out, "Expected store to be empty")

		out, err = run(c, "ingest", "-r", "Yaalini", "-t", "Again.")
		require.NoError(t, err)
		assert.Contains(t, out, "Stored email 1 for Yaalini", "Expected ids to restart")
	})
}

func TestIndexCommand(t *testing.T) {
	t.Run("Unsupported type", func(t *testing.T) {
		c := newTestCLI(t)

		_, err := run(c, "index", "btree")
		assert.ErrorContains(t, err, "unsupported index type", "Expected index type error")
	})

	t.Run("Memory store", func(t *testing.T) {
		c := newTestCLI(t)

		_, err := run(c, "index", "hnsw")
		assert.ErrorContains(t, err, "only available with the postgres store", "Expected store error")
	})
}

func TestDemoCommand(t *testing.T) {
	c := newTestCLI(t)

	out, err := run(c, "demo")
	require.NoError(t, err, "Expected no error running demo")
	assert.Contains(t, out, "Stored 3 sample emails", "Expected seed summary")
	assert.Contains(t, out, "EMAILS FOR: Yaalini", "Expected Yaalini report")
	assert.Contains(t, out, "EMAILS FOR: Rajesh", "Expected Rajesh report")
	assert.Contains(t, out, "EMAIL 2:\nReceiver: Yaalini", "Expected both Yaalini emails")

	out, err = run(c, "list")
	require.NoError(t, err)
	assert.Equal(t, "No emails stored\n", out, "Expected demo to leave the configured store untouched")
}
