package repo

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store hands out repositories bound to the pool or to a transaction.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) Repositories() Repositories {
	return newRepositories(s.pool)
}

func (s *Store) Users() *UserRepo {
	return NewUserRepo(s.pool)
}

// WithinTx commits when fn returns nil; any error (including a cancelled ctx)
// rolls back every write made through the repositories passed to fn.
func (s *Store) WithinTx(ctx context.Context, fn func(Repositories) error) error {
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		return fn(newRepositories(tx))
	})
}

func newRepositories(db DBTX) Repositories {
	return Repositories{
		Tasks:      NewTaskRepo(db),
		Activities: NewActivityRepo(db),
		Employees:  NewEmployeeRepo(db),
		Projects:   NewProjectRepo(db),
	}
}
