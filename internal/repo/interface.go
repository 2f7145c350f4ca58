package repo

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/BuzzLyutic/crm-api/internal/model"
)

// DBTX is satisfied by both *pgxpool.Pool and pgx.Tx, so every repository
// can run either standalone or inside a transaction.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// TaskRepository определяет интерфейс для работы с задачами
type TaskRepository interface {
	Create(ctx context.Context, t model.Task) (model.Task, error)
	Get(ctx context.Context, id string) (model.Task, error)
	// GetForUpdate reads the task and holds a row lock until the surrounding
	// transaction ends. Outside a transaction the lock is released immediately.
	GetForUpdate(ctx context.Context, id string) (model.Task, error)
	List(ctx context.Context, filter model.TaskFilter, limit int) ([]model.Task, error)
	Update(ctx context.Context, t model.Task) (model.Task, error)
	UpdateStatus(ctx context.Context, id string, status model.TaskStatus, version int) (model.Task, error)
	Delete(ctx context.Context, id string) error
	GetStats(ctx context.Context) (Stats, error)
}

// ActivityRepository is append-only: there is no update or delete.
type ActivityRepository interface {
	Create(ctx context.Context, a model.TaskActivity) (model.TaskActivity, error)
	ListByTask(ctx context.Context, taskID string) ([]model.TaskActivity, error)
}

type EmployeeRepository interface {
	Get(ctx context.Context, id string) (model.Employee, error)
	GetByUserID(ctx context.Context, userID string) (model.Employee, error)
}

type ProjectRepository interface {
	Exists(ctx context.Context, id string) (bool, error)
}

type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (model.User, error)
}

// Repositories groups the repositories bound to one connection or transaction.
type Repositories struct {
	Tasks      TaskRepository
	Activities ActivityRepository
	Employees  EmployeeRepository
	Projects   ProjectRepository
}

// Transactor runs fn inside a single database transaction. The transaction
// commits when fn returns nil and rolls back otherwise.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(Repositories) error) error
}
