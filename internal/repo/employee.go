package repo

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/BuzzLyutic/crm-api/internal/model"
)

type EmployeeRepo struct {
	db DBTX
}

func NewEmployeeRepo(db DBTX) *EmployeeRepo {
	return &EmployeeRepo{db: db}
}

func (r *EmployeeRepo) Get(ctx context.Context, id string) (model.Employee, error) {
	return r.getBy(ctx, "id", id)
}

// GetByUserID resolves a verified token subject to the employee record.
func (r *EmployeeRepo) GetByUserID(ctx context.Context, userID string) (model.Employee, error) {
	return r.getBy(ctx, "user_id", userID)
}

func (r *EmployeeRepo) getBy(ctx context.Context, column, value string) (model.Employee, error) {
	var e model.Employee
	err := r.db.QueryRow(ctx, `
		SELECT id, user_id, name, email, created_at
		FROM employees
		WHERE `+column+` = $1
	`, value).Scan(&e.ID, &e.UserID, &e.Name, &e.Email, &e.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return e, ErrorNotFound
	}
	return e, err
}

type ProjectRepo struct {
	db DBTX
}

func NewProjectRepo(db DBTX) *ProjectRepo {
	return &ProjectRepo{db: db}
}

func (r *ProjectRepo) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM projects WHERE id = $1)`, id).Scan(&exists)
	return exists, err
}

type UserRepo struct {
	db DBTX
}

func NewUserRepo(db DBTX) *UserRepo {
	return &UserRepo{db: db}
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	var u model.User
	err := r.db.QueryRow(ctx, `
		SELECT id, email, password_hash, role, created_at
		FROM users
		WHERE lower(email) = $1
	`, strings.ToLower(strings.TrimSpace(email))).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return u, ErrorNotFound
	}
	return u, err
}
