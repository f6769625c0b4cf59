package helper

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func useTempModelDir(t *testing.T) string {
	t.Helper()
	original := ModelDir
	ModelDir = t.TempDir()
	t.Cleanup(func() { ModelDir = original })
	return ModelDir
}

func TestPrepareModel(t *testing.T) {
	t.Run("Return existing model path when model exists", func(t *testing.T) {
		dir := useTempModelDir(t)
		modelPath := filepath.Join(dir, "test_mock-model")
		require.NoError(t, os.MkdirAll(modelPath, 0750))

		path, err := PrepareModel("test/mock-model", "")
		assert.NoError(t, err, "Expected PrepareModel to not return an error for existing model")
		assert.Equal(t, modelPath, path, "Expected returned path to match existing model path")
	})

	t.Run("Handle model name without slash", func(t *testing.T) {
		dir := useTempModelDir(t)
		expectedPath := filepath.Join(dir, "simple-model")
		require.NoError(t, os.MkdirAll(expectedPath, 0750))

		path, err := PrepareModel("simple-model", "onnx/model.onnx")
		assert.NoError(t, err)
		assert.Equal(t, expectedPath, path, "Expected path to use model name directly")
	})

	t.Run("Download all-MiniLM-L6-v2", func(t *testing.T) {
		if testing.Short() {
			t.Skip("Skipping model download in short mode")
		}
		useTempModelDir(t)

		path, err := PrepareModel("sentence-transformers/all-MiniLM-L6-v2", "onnx/model.onnx")
		if err != nil {
			// Depends on network access.
			assert.Contains(t, err.Error(), "failed to", "Expected error to be about download failure")
			return
		}
		assert.DirExists(t, path, "Expected model directory to exist")
	})
}
