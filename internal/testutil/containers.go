// Package testutil starts the backing services used by integration tests.
package testutil

import (
	"context"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/timberyard/meetingassist/internal/database"
)

// Service is a started container reachable through one mapped port. It is
// terminated when the test that started it finishes.
type Service struct {
	Container testcontainers.Container
	Host      string
	Port      string
}

// Addr returns host:port of the mapped service port.
func (s *Service) Addr() string {
	return net.JoinHostPort(s.Host, s.Port)
}

func start(ctx context.Context, t *testing.T, name string, req testcontainers.ContainerRequest) *Service {
	t.Helper()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("failed to start %s container: %v", name, err)
	}
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(container); err != nil {
			t.Logf("failed to terminate %s container: %v", name, err)
		}
	})

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("failed to get %s host: %v", name, err)
	}
	port, err := container.MappedPort(ctx, req.ExposedPorts[0])
	if err != nil {
		t.Fatalf("failed to get %s port: %v", name, err)
	}

	return &Service{Container: container, Host: host, Port: port.Port()}
}

const (
	pgUser     = "meetings"
	pgPassword = "meetings"
	pgDatabase = "meetings"
)

// Postgres is a pgvector-enabled PostgreSQL server.
type Postgres struct {
	*Service
}

// StartPostgres starts PostgreSQL with the pgvector extension available.
func StartPostgres(ctx context.Context, t *testing.T) *Postgres {
	return &Postgres{start(ctx, t, "postgres", testcontainers.ContainerRequest{
		Image:        "pgvector/pgvector:0.8.1-pg18",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     pgUser,
			"POSTGRES_PASSWORD": pgPassword,
			"POSTGRES_DB":       pgDatabase,
		},
		WaitingFor: wait.ForAll(
			wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
			wait.ForListeningPort("5432/tcp"),
		).WithStartupTimeout(60 * time.Second),
	})}
}

// ConnectionString returns the PostgreSQL connection string
func (p *Postgres) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s/%s?sslmode=disable", pgUser, pgPassword, p.Addr(), pgDatabase)
}

// NewTestPool migrates the database and returns a pool with the vector type
// registered. The pool is closed with the test.
func NewTestPool(ctx context.Context, t *testing.T, pg *Postgres) *pgxpool.Pool {
	t.Helper()

	var err error
	for attempt := 1; attempt <= 5; attempt++ {
		if err = database.Migrate(pg.ConnectionString(), nil); err == nil {
			break
		}
		time.Sleep(time.Duration(attempt) * 500 * time.Millisecond)
	}
	if err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	pool, err := database.NewPool(ctx, database.Config{URL: pg.ConnectionString()})
	if err != nil {
		t.Fatalf("failed to create pool: %v", err)
	}
	t.Cleanup(pool.Close)
	return pool
}

// ObjectStore is an S3-compatible RustFS server.
type ObjectStore struct {
	*Service
	AccessKey string
	SecretKey string
}

// StartObjectStore starts RustFS with static credentials.
func StartObjectStore(ctx context.Context, t *testing.T) *ObjectStore {
	const key = "rustfsadmin"
	svc := start(ctx, t, "rustfs", testcontainers.ContainerRequest{
		Image:        "rustfs/rustfs:latest",
		ExposedPorts: []string{"9000/tcp"},
		Env: map[string]string{
			"RUSTFS_ACCESS_KEY": key,
			"RUSTFS_SECRET_KEY": key,
		},
		WaitingFor: wait.ForListeningPort("9000/tcp").WithStartupTimeout(30 * time.Second),
	})
	return &ObjectStore{Service: svc, AccessKey: key, SecretKey: key}
}

// Endpoint returns the S3 endpoint URL
func (o *ObjectStore) Endpoint() string {
	return "http://" + o.Addr()
}

// NATS is a NATS server without authentication.
type NATS struct {
	*Service
}

// StartNATS starts a NATS server.
func StartNATS(ctx context.Context, t *testing.T) *NATS {
	return &NATS{start(ctx, t, "nats", testcontainers.ContainerRequest{
		Image:        "nats:2.10-alpine",
		ExposedPorts: []string{"4222/tcp"},
		WaitingFor:   wait.ForLog("Server is ready").WithStartupTimeout(30 * time.Second),
	})}
}

// URL returns the nats:// URL of the server
func (n *NATS) URL() string {
	return "nats://" + n.Addr()
}
