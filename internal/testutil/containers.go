//go:build integration

// Package testutil starts throwaway Postgres and Redis containers for
// integration tests.
package testutil

import (
	"context"
	"fmt"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/jonpan30062/newsaferoute/internal/config"
	"github.com/jonpan30062/newsaferoute/internal/database"
)

const (
	postgresImage = "postgis/postgis:16-3.4-alpine"
	redisImage    = "redis:7-alpine"
)

// Postgres is a running database container with migrations applied.
type Postgres struct {
	DB        *database.Database
	Config    config.DatabaseConfig
	container testcontainers.Container
}

// StartPostgres launches a Postgres container, connects a pool and
// applies every migration.
func StartPostgres(ctx context.Context) (*Postgres, error) {
	cfg := config.DatabaseConfig{
		Name:     "saferoute",
		User:     "postgres",
		Password: "postgres",
		SSLMode:  "disable",
		PoolMin:  1,
		PoolMax:  5,
	}

	req := testcontainers.ContainerRequest{
		Image:        postgresImage,
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     cfg.User,
			"POSTGRES_PASSWORD": cfg.Password,
			"POSTGRES_DB":       cfg.Name,
		},
		WaitingFor: wait.ForAll(
			wait.ForListeningPort("5432/tcp"),
			wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
		).WithDeadline(90 * time.Second),
	}

	tc, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("cannot start postgres container: %w", err)
	}

	host, err := tc.Host(ctx)
	if err != nil {
		_ = tc.Terminate(ctx)
		return nil, fmt.Errorf("container host: %w", err)
	}
	mappedPort, err := tc.MappedPort(ctx, "5432/tcp")
	if err != nil {
		_ = tc.Terminate(ctx)
		return nil, fmt.Errorf("container port: %w", err)
	}
	cfg.Host = host
	cfg.Port = mappedPort.Port()

	db, err := database.NewPostgresPool(ctx, cfg)
	if err != nil {
		_ = tc.Terminate(ctx)
		return nil, err
	}

	if err := db.Migrate(ctx, database.MigrateUp); err != nil {
		db.Close()
		_ = tc.Terminate(ctx)
		return nil, err
	}

	return &Postgres{DB: db, Config: cfg, container: tc}, nil
}

// Truncate empties the given tables and resets their sequences.
func (p *Postgres) Truncate(ctx context.Context, tables ...string) error {
	for _, table := range tables {
		if _, err := p.DB.Pool.Exec(ctx, fmt.Sprintf("TRUNCATE TABLE %s RESTART IDENTITY CASCADE", table)); err != nil {
			return fmt.Errorf("truncate %s: %w", table, err)
		}
	}
	return nil
}

// Terminate closes the pool and removes the container.
func (p *Postgres) Terminate(ctx context.Context) {
	p.DB.Close()
	_ = p.container.Terminate(ctx)
}

// Redis is a running redis container.
type Redis struct {
	Addr      string
	container testcontainers.Container
}

// StartRedis launches a redis container.
func StartRedis(ctx context.Context) (*Redis, error) {
	tc, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        redisImage,
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		return nil, fmt.Errorf("cannot start redis container: %w", err)
	}

	host, err := tc.Host(ctx)
	if err != nil {
		_ = tc.Terminate(ctx)
		return nil, fmt.Errorf("container host: %w", err)
	}
	mappedPort, err := tc.MappedPort(ctx, "6379/tcp")
	if err != nil {
		_ = tc.Terminate(ctx)
		return nil, fmt.Errorf("container port: %w", err)
	}

	return &Redis{Addr: fmt.Sprintf("%s:%s", host, mappedPort.Port()), container: tc}, nil
}

// Terminate removes the container.
func (r *Redis) Terminate(ctx context.Context) {
	_ = r.container.Terminate(ctx)
}
