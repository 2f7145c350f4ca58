// Package testutil starts throwaway Postgres and Redis containers for
// integration tests and seeds them with fixtures.
package testutil

import (
	"context"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// SetupTestDB создает тестовую БД с помощью testcontainers
func SetupTestDB(t *testing.T) (*pgxpool.Pool, func()) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	ctx := context.Background()

	// Находим путь к миграциям
	_, filename, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(filename)))
	schema := filepath.Join(projectRoot, "migrations", "001_init.up.sql")

	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		postgres.WithInitScripts(schema),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("Failed to start postgres container: %v", err)
	}

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("Failed to get connection string: %v", err)
	}

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		t.Fatalf("Failed to connect to database: %v", err)
	}
	if err := pool.Ping(ctx); err != nil {
		t.Fatalf("Failed to ping database: %v", err)
	}

	cleanup := func() {
		pool.Close()
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Errorf("Failed to terminate container: %v", err)
		}
	}
	return pool, cleanup
}

// TruncateTables очищает все таблицы
func TruncateTables(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	_, err := pool.Exec(context.Background(),
		"TRUNCATE task_activities, tasks, projects, employees, users CASCADE")
	if err != nil {
		t.Fatalf("Failed to truncate tables: %v", err)
	}
}

func SeedUser(t *testing.T, pool *pgxpool.Pool, email, passwordHash, role string) string {
	t.Helper()
	id := uuid.NewString()
	_, err := pool.Exec(context.Background(),
		`INSERT INTO users (id, email, password_hash, role) VALUES ($1, $2, $3, $4)`,
		id, email, passwordHash, role)
	if err != nil {
		t.Fatalf("Failed to seed user: %v", err)
	}
	return id
}

// SeedEmployee inserts an employee, optionally linked to a user account.
func SeedEmployee(t *testing.T, pool *pgxpool.Pool, name string, userID *string) string {
	t.Helper()
	id := uuid.NewString()
	_, err := pool.Exec(context.Background(),
		`INSERT INTO employees (id, user_id, name, email) VALUES ($1, $2, $3, $4)`,
		id, userID, name, id+"@example.com")
	if err != nil {
		t.Fatalf("Failed to seed employee: %v", err)
	}
	return id
}

func SeedProject(t *testing.T, pool *pgxpool.Pool, name string) string {
	t.Helper()
	id := uuid.NewString()
	_, err := pool.Exec(context.Background(), `INSERT INTO projects (id, name) VALUES ($1, $2)`, id, name)
	if err != nil {
		t.Fatalf("Failed to seed project: %v", err)
	}
	return id
}

// SeedTask inserts a task directly, bypassing the service layer.
func SeedTask(t *testing.T, pool *pgxpool.Pool, name, status, assigneeID, assignerID string) string {
	t.Helper()
	id := uuid.NewString()
	_, err := pool.Exec(context.Background(), `
		INSERT INTO tasks (id, name, status, assignee_id, assigner_id)
		VALUES ($1, $2, $3, $4, $5)
	`, id, name, status, assigneeID, assignerID)
	if err != nil {
		t.Fatalf("Failed to seed task: %v", err)
	}
	return id
}

// CountActivities returns the number of audit rows recorded for a task.
func CountActivities(t *testing.T, pool *pgxpool.Pool, taskID string) int {
	t.Helper()
	var n int
	err := pool.QueryRow(context.Background(),
		`SELECT COUNT(*) FROM task_activities WHERE task_id = $1`, taskID).Scan(&n)
	if err != nil {
		t.Fatalf("Failed to count activities: %v", err)
	}
	return n
}

// TaskStatus reads the stored status of a task.
func TaskStatus(t *testing.T, pool *pgxpool.Pool, taskID string) string {
	t.Helper()
	var s string
	err := pool.QueryRow(context.Background(), `SELECT status FROM tasks WHERE id = $1`, taskID).Scan(&s)
	if err != nil {
		t.Fatalf("Failed to read task status: %v", err)
	}
	return s
}

func Ptr[T any](v T) *T {
	return &v
}
