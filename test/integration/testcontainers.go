package integration

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestContext holds the databases the feature tests run against
type TestContext struct {
	PostgresURL string
	MySQLDSN    string
	MongoURI    string
	TempDir     string

	containers []testcontainers.Container
}

// NewTestContext starts PostgreSQL, MySQL and MongoDB containers. Backends
// listed in INTEGRATION_SKIP (comma separated: postgres, mysql, mongodb) are
// not started and their scenarios are skipped.
func NewTestContext(ctx context.Context) (*TestContext, error) {
	tempDir, err := os.MkdirTemp("", "passkeep-integration-")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}
	tc := &TestContext{TempDir: tempDir}
	skip := os.Getenv("INTEGRATION_SKIP")

	if !strings.Contains(skip, "postgres") {
		if err := tc.startPostgres(ctx); err != nil {
			tc.Close(ctx)
			return nil, err
		}
	}
	if !strings.Contains(skip, "mysql") {
		if err := tc.startMySQL(ctx); err != nil {
			tc.Close(ctx)
			return nil, err
		}
	}
	if !strings.Contains(skip, "mongodb") {
		if err := tc.startMongo(ctx); err != nil {
			tc.Close(ctx)
			return nil, err
		}
	}
	return tc, nil
}

func (tc *TestContext) startPostgres(ctx context.Context) error {
	pgContainer, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("passkeep_test"),
		tcpostgres.WithUsername("passkeep"),
		tcpostgres.WithPassword("passkeep"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		return fmt.Errorf("failed to start postgres container: %w", err)
	}
	tc.containers = append(tc.containers, pgContainer)

	hostPort, err := endpoint(ctx, pgContainer, "5432")
	if err != nil {
		return err
	}
	tc.PostgresURL = fmt.Sprintf("postgres://passkeep:passkeep@%s/passkeep_test?sslmode=disable", hostPort)
	log.Printf("postgres ready at %s", hostPort)
	return nil
}

func (tc *TestContext) startMySQL(ctx context.Context) error {
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "mysql:8.4",
			ExposedPorts: []string{"3306/tcp"},
			Env: map[string]string{
				"MYSQL_ROOT_PASSWORD": "passkeep",
				"MYSQL_DATABASE":      "passkeep_test",
			},
			WaitingFor: wait.ForLog("port: 3306  MySQL Community Server").
				WithStartupTimeout(120 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		return fmt.Errorf("failed to start mysql container: %w", err)
	}
	tc.containers = append(tc.containers, container)

	hostPort, err := endpoint(ctx, container, "3306")
	if err != nil {
		return err
	}
	tc.MySQLDSN = fmt.Sprintf("root:passkeep@tcp(%s)/passkeep_test", hostPort)
	log.Printf("mysql ready at %s", hostPort)
	return nil
}

func (tc *TestContext) startMongo(ctx context.Context) error {
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "mongo:7",
			ExposedPorts: []string{"27017/tcp"},
			WaitingFor: wait.ForLog("Waiting for connections").
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		return fmt.Errorf("failed to start mongo container: %w", err)
	}
	tc.containers = append(tc.containers, container)

	hostPort, err := endpoint(ctx, container, "27017")
	if err != nil {
		return err
	}
	tc.MongoURI = fmt.Sprintf("mongodb://%s", hostPort)
	log.Printf("mongodb ready at %s", hostPort)
	return nil
}

func endpoint(ctx context.Context, c testcontainers.Container, port string) (string, error) {
	host, err := c.Host(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to get container host: %w", err)
	}
	mapped, err := c.MappedPort(ctx, nat.Port(port))
	if err != nil {
		return "", fmt.Errorf("failed to get container port: %w", err)
	}
	return fmt.Sprintf("%s:%s", host, mapped.Port()), nil
}

// Close cleans up all test resources
func (tc *TestContext) Close(ctx context.Context) {
	for _, c := range tc.containers {
		_ = c.Terminate(ctx)
	}
	if tc.TempDir != "" {
		_ = os.RemoveAll(tc.TempDir)
	}
}
