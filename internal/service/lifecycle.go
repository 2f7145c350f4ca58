package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/BuzzLyutic/crm-api/internal/model"
	"github.com/BuzzLyutic/crm-api/internal/repo"
)

// ChangeStatus moves a task to newStatus and records the transition, both in
// one transaction. changedBy is the user id from the verified token; it is
// resolved to the employee who is credited with the change.
//
// The task row is locked for the duration of the transaction, so concurrent
// transitions on one task are applied one after another and each audit row
// carries the status that was actually replaced.
func (s *TaskService) ChangeStatus(ctx context.Context, taskID string, newStatus model.TaskStatus, changedBy string, reason *string) (model.StatusChange, error) {
	if strings.TrimSpace(taskID) == "" {
		return model.StatusChange{}, ErrTaskNotFound
	}
	if !newStatus.Valid() {
		return model.StatusChange{}, ErrInvalidStatus
	}
	reason = trimReason(reason)

	var change model.StatusChange
	err := s.tx.WithinTx(ctx, func(r repo.Repositories) error {
		task, err := r.Tasks.GetForUpdate(ctx, taskID)
		if errors.Is(err, repo.ErrorNotFound) {
			return ErrTaskNotFound
		}
		if err != nil {
			return fmt.Errorf("load task: %w", err)
		}

		if task.Status == newStatus {
			return &SameStatusError{Status: newStatus}
		}

		employee, err := r.Employees.GetByUserID(ctx, changedBy)
		if errors.Is(err, repo.ErrorNotFound) {
			return ErrInvalidEmployee
		}
		if err != nil {
			return fmt.Errorf("resolve employee: %w", err)
		}

		if _, err := r.Tasks.UpdateStatus(ctx, task.ID, newStatus, task.Version); err != nil {
			return fmt.Errorf("update task status: %w", err)
		}

		activity, err := r.Activities.Create(ctx, model.TaskActivity{
			TaskID:       task.ID,
			OldStatus:    task.Status,
			NewStatus:    newStatus,
			ChangeReason: reason,
			ChangedBy:    employee.Ref(),
		})
		if err != nil {
			return fmt.Errorf("record activity: %w", err)
		}

		change = model.StatusChange{
			TaskID:    task.ID,
			OldStatus: task.Status,
			NewStatus: newStatus,
			ChangedAt: activity.ChangedAt,
			ChangedBy: employee.Ref(),
		}
		return nil
	})
	if err != nil {
		return model.StatusChange{}, err
	}
	return change, nil
}

// GetActivity returns the task's transitions, oldest first.
func (s *TaskService) GetActivity(ctx context.Context, taskID string) ([]model.TaskActivity, error) {
	if _, err := s.Get(ctx, taskID); err != nil {
		return nil, err
	}
	return s.repos.Activities.ListByTask(ctx, taskID)
}

func trimReason(reason *string) *string {
	if reason == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*reason)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
