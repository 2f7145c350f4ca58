package repo

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/BuzzLyutic/crm-api/internal/model"
)

var (
	ErrorNotFound = errors.New("not found")
	ErrorConflict = errors.New("conflict")
)

const taskColumns = `id, name, description, start_date, end_date, start_time, end_time,
	status, assignee_id, assigner_id, project_id, version, created_at, updated_at`

// Stats is the dashboard summary of the task table.
type Stats struct {
	ByStatus         map[string]int `json:"byStatus"`
	TotalTasks       int            `json:"totalTasks"`
	TotalTransitions int            `json:"totalTransitions"`
}

type TaskRepo struct { // Репозиторий для работы непосредственно с БД
	db DBTX
}

func NewTaskRepo(db DBTX) *TaskRepo { // Конструктор
	return &TaskRepo{
		db: db,
	}
}

func (r *TaskRepo) Create(ctx context.Context, t model.Task) (model.Task, error) {
	if t.Status == "" {
		t.Status = model.StatusInProgress
	}
	row := r.db.QueryRow(ctx, `
		INSERT INTO tasks (id, name, description, start_date, end_date, start_time, end_time,
			status, assignee_id, assigner_id, project_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING `+taskColumns,
		uuid.Must(uuid.NewV7()).String(), t.Name, t.Description, t.StartDate, t.EndDate, t.StartTime, t.EndTime,
		string(t.Status), t.AssigneeID, t.AssignerID, t.ProjectID,
	)
	created, err := scanTask(row)
	return created, r.mapError(err)
}

func (r *TaskRepo) Get(ctx context.Context, id string) (model.Task, error) {
	t, err := scanTask(r.db.QueryRow(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return t, ErrorNotFound
	}
	return t, err
}

func (r *TaskRepo) GetForUpdate(ctx context.Context, id string) (model.Task, error) {
	t, err := scanTask(r.db.QueryRow(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1 FOR UPDATE`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return t, ErrorNotFound
	}
	return t, err
}

func (r *TaskRepo) List(ctx context.Context, filter model.TaskFilter, limit int) ([]model.Task, error) {
	var status *string
	if filter.Status != nil {
		s := string(*filter.Status)
		status = &s
	}

	rows, err := r.db.Query(ctx, `
		SELECT `+taskColumns+`
		FROM tasks
		WHERE ($1::text IS NULL OR status = $1)
		  AND ($2::text IS NULL OR assignee_id = $2)
		ORDER BY created_at DESC, id DESC
		LIMIT $3
	`, status, filter.AssigneeID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := make([]model.Task, 0, limit)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// Update writes every field except status, which only changes through
// UpdateStatus. The write is rejected with ErrorConflict when t.Version is stale.
func (r *TaskRepo) Update(ctx context.Context, t model.Task) (model.Task, error) {
	updated, err := scanTask(r.db.QueryRow(ctx, `
		UPDATE tasks
		SET name = $2, description = $3, start_date = $4, end_date = $5, start_time = $6, end_time = $7,
			assignee_id = $8, project_id = $9, version = version + 1, updated_at = now()
		WHERE id = $1 AND version = $10
		RETURNING `+taskColumns,
		t.ID, t.Name, t.Description, t.StartDate, t.EndDate, t.StartTime, t.EndTime,
		t.AssigneeID, t.ProjectID, t.Version,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return t, r.missingOrConflict(ctx, t.ID)
	}
	return updated, r.mapError(err)
}

func (r *TaskRepo) UpdateStatus(ctx context.Context, id string, status model.TaskStatus, version int) (model.Task, error) {
	updated, err := scanTask(r.db.QueryRow(ctx, `
		UPDATE tasks
		SET status = $2, version = version + 1, updated_at = now()
		WHERE id = $1 AND version = $3
		RETURNING `+taskColumns,
		id, string(status), version,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return updated, ErrorConflict
	}
	return updated, r.mapError(err)
}

func (r *TaskRepo) Delete(ctx context.Context, id string) error {
	cmd, err := r.db.Exec(ctx, "DELETE FROM tasks WHERE id = $1", id)
	if err != nil {
		return r.mapError(err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrorNotFound
	}
	return nil
}

func (r *TaskRepo) GetStats(ctx context.Context) (Stats, error) {
	stats := Stats{ByStatus: make(map[string]int, len(model.Statuses))}
	for _, s := range model.Statuses {
		stats.ByStatus[string(s)] = 0
	}

	rows, err := r.db.Query(ctx, `SELECT status, COUNT(*) FROM tasks GROUP BY status`)
	if err != nil {
		return stats, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			status string
			count  int
		)
		if err := rows.Scan(&status, &count); err != nil {
			return stats, err
		}
		stats.ByStatus[status] = count
		stats.TotalTasks += count
	}
	if err := rows.Err(); err != nil {
		return stats, err
	}

	err = r.db.QueryRow(ctx, `SELECT COUNT(*) FROM task_activities`).Scan(&stats.TotalTransitions)
	return stats, err
}

func (r *TaskRepo) missingOrConflict(ctx context.Context, id string) error {
	var exists bool
	if err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM tasks WHERE id = $1)`, id).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return ErrorNotFound
	}
	return ErrorConflict
}

func (r *TaskRepo) mapError(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505", "23503": // unique_violation, foreign_key_violation
			return ErrorConflict
		}
	}
	return err
}

func scanTask(row pgx.Row) (model.Task, error) {
	var (
		t      model.Task
		status string
	)
	err := row.Scan(
		&t.ID, &t.Name, &t.Description, &t.StartDate, &t.EndDate, &t.StartTime, &t.EndTime,
		&status, &t.AssigneeID, &t.AssignerID, &t.ProjectID, &t.Version, &t.CreatedAt, &t.UpdatedAt,
	)
	t.Status = model.TaskStatus(status)
	return t, err
}
