package helper

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	testDatabaseName     = "database"
	testDatabaseUser     = "user"
	testDatabasePassword = "password"
	testPostgresImage    = "pgvector/pgvector:pg17"
)

// runPostgresContainer starts the container, replaced in tests.
var runPostgresContainer = func(ctx context.Context) (*postgres.PostgresContainer, error) {
	return postgres.Run(
		ctx,
		testPostgresImage,
		postgres.WithDatabase(testDatabaseName),
		postgres.WithUsername(testDatabaseUser),
		postgres.WithPassword(testDatabasePassword),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
}

// MustStartPostgresContainer starts a pgvector enabled PostgreSQL container
// and returns its teardown function and mapped port.
// testcontainers panics when no container runtime is found, that panic is
// returned as an error so callers can skip their database tests.
func MustStartPostgresContainer() (teardown func(ctx context.Context, opts ...testcontainers.TerminateOption) error, port string, err error) {
	defer func() {
		if r := recover(); r != nil {
			teardown, port = nil, ""
			err = NewError("start postgres container", fmt.Errorf("container runtime unavailable: %v", r))
		}
	}()

	ctx := context.Background()

	container, err := runPostgresContainer(ctx)
	if err != nil {
		return nil, "", NewError("start postgres container", err)
	}

	mappedPort, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, "", NewError("mapped port", err)
	}

	return container.Terminate, mappedPort.Port(), nil
}

// SetTestDatabaseConfigEnvs points the MAILRAG_DB_* variables at the test container.
func SetTestDatabaseConfigEnvs(t *testing.T, port string) {
	t.Setenv("MAILRAG_DB_HOST", "localhost")
	t.Setenv("MAILRAG_DB_PORT", port)
	t.Setenv("MAILRAG_DB_DATABASE", testDatabaseName)
	t.Setenv("MAILRAG_DB_USERNAME", testDatabaseUser)
	t.Setenv("MAILRAG_DB_PASSWORD", testDatabasePassword)
	t.Setenv("MAILRAG_DB_SCHEMA", "public")
	t.Setenv("MAILRAG_DB_SSLMODE", "disable")
}

// NewTestDatabase connects to the test database with a silent logger.
func NewTestDatabase(config *DatabaseConfiguration) *Database {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	db, err := NewDatabase("test", config, logger)
	if err != nil {
		log.Fatalf("error connecting to test database: %v", err)
	}
	return db
}
