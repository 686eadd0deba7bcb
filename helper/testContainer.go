package helper

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	testDbName     = "database"
	testDbUser     = "user"
	testDbPassword = "password"
)

// MustStartPostgresContainer starts a pgvector enabled postgres container.
// It returns the terminate function of the container and the mapped port.
func MustStartPostgresContainer() (func(ctx context.Context, opts ...testcontainers.TerminateOption) error, string, error) {
	ctx := context.Background()

	container, err := postgres.Run(
		ctx,
		"pgvector/pgvector:pg17",
		postgres.WithDatabase(testDbName),
		postgres.WithUsername(testDbUser),
		postgres.WithPassword(testDbPassword),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		return nil, "", fmt.Errorf("error starting postgres container: %w", err)
	}

	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		return container.Terminate, "", fmt.Errorf("error getting mapped port: %w", err)
	}

	return container.Terminate, port.Port(), nil
}

// SetTestDatabaseConfigEnvs points the NUTRICOACH_DB_* variables at the test container
func SetTestDatabaseConfigEnvs(t *testing.T, port string) {
	t.Setenv("NUTRICOACH_DB_HOST", "localhost")
	t.Setenv("NUTRICOACH_DB_PORT", port)
	t.Setenv("NUTRICOACH_DB_DATABASE", testDbName)
	t.Setenv("NUTRICOACH_DB_USERNAME", testDbUser)
	t.Setenv("NUTRICOACH_DB_PASSWORD", testDbPassword)
	t.Setenv("NUTRICOACH_DB_SCHEMA", "public")
	t.Setenv("NUTRICOACH_DB_SSLMODE", "disable")
}
