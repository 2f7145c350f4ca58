package repo

import (
	"context"

	"github.com/google/uuid"

	"github.com/BuzzLyutic/crm-api/internal/model"
)

type ActivityRepo struct {
	db DBTX
}

func NewActivityRepo(db DBTX) *ActivityRepo {
	return &ActivityRepo{db: db}
}

// Create appends an audit row. ChangedAt is assigned by the database;
// a.ChangedBy.Name is carried through unchanged.
func (r *ActivityRepo) Create(ctx context.Context, a model.TaskActivity) (model.TaskActivity, error) {
	a.ID = uuid.Must(uuid.NewV7()).String()
	err := r.db.QueryRow(ctx, `
		INSERT INTO task_activities (id, task_id, old_status, new_status, change_reason, changed_by)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING changed_at
	`, a.ID, a.TaskID, string(a.OldStatus), string(a.NewStatus), a.ChangeReason, a.ChangedBy.ID).Scan(&a.ChangedAt)
	return a, err
}

// ListByTask returns the task's history, oldest first.
func (r *ActivityRepo) ListByTask(ctx context.Context, taskID string) ([]model.TaskActivity, error) {
	rows, err := r.db.Query(ctx, `
		SELECT a.id, a.task_id, a.old_status, a.new_status, a.change_reason, e.id, e.name, a.changed_at
		FROM task_activities a
		JOIN employees e ON e.id = a.changed_by
		WHERE a.task_id = $1
		ORDER BY a.changed_at ASC, a.id ASC
	`, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	activities := make([]model.TaskActivity, 0)
	for rows.Next() {
		var (
			a            model.TaskActivity
			oldSt, newSt string
		)
		if err := rows.Scan(&a.ID, &a.TaskID, &oldSt, &newSt, &a.ChangeReason,
			&a.ChangedBy.ID, &a.ChangedBy.Name, &a.ChangedAt); err != nil {
			return nil, err
		}
		a.OldStatus = model.TaskStatus(oldSt)
		a.NewStatus = model.TaskStatus(newSt)
		activities = append(activities, a)
	}
	return activities, rows.Err()
}
