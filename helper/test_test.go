package helper

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

func replaceRunPostgresContainer(t *testing.T, run func(ctx context.Context) (*postgres.PostgresContainer, error)) {
	original := runPostgresContainer
	runPostgresContainer = run
	t.Cleanup(func() {
		runPostgresContainer = original
	})
}

func TestMustStartPostgresContainer(t *testing.T) {
	t.Run("Missing container runtime is returned as error", func(t *testing.T) {
		replaceRunPostgresContainer(t, func(ctx context.Context) (*postgres.PostgresContainer, error) {
			panic("rootless Docker not found")
		})

		teardown, port, err := MustStartPostgresContainer()

		require.Error(t, err, "Expected an error instead of a panic")
		assert.Contains(t, err.Error(), "start postgres container: container runtime unavailable: rootless Docker not found")
		assert.Nil(t, teardown, "Expected no teardown function")
		assert.Empty(t, port, "Expected no port")
	})

	t.Run("Start error is returned", func(t *testing.T) {
		replaceRunPostgresContainer(t, func(ctx context.Context) (*postgres.PostgresContainer, error) {
			return nil, errors.New("image pull failed")
		})

		teardown, port, err := MustStartPostgresContainer()

		require.Error(t, err)
		assert.Contains(t, err.Error(), "start postgres container: image pull failed")
		assert.Nil(t, teardown)
		assert.Empty(t, port)
	})
}
