package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/BuzzLyutic/crm-api/internal/model"
	"github.com/BuzzLyutic/crm-api/internal/repo"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
	clockLayout      = "15:04"
)

type TaskService struct {
	repos repo.Repositories
	tx    repo.Transactor
}

func NewTaskService(repos repo.Repositories, tx repo.Transactor) *TaskService {
	return &TaskService{
		repos: repos,
		tx:    tx,
	}
}

func (s *TaskService) Create(ctx context.Context, t model.Task) (model.Task, error) {
	if err := s.validate(t); err != nil { // Валидация модели на корректность введенных данных
		return t, err
	}
	if strings.TrimSpace(t.AssignerID) == "" {
		return t, validationError("assignerId is required")
	}
	if t.Status == "" {
		t.Status = model.StatusInProgress
	}
	if !t.Status.Valid() {
		return t, ErrInvalidStatus
	}

	if err := s.checkEmployees(ctx, t.AssigneeID, t.AssignerID); err != nil {
		return t, err
	}
	if err := s.checkProject(ctx, t.ProjectID); err != nil {
		return t, err
	}

	return s.repos.Tasks.Create(ctx, t)
}

func (s *TaskService) Get(ctx context.Context, id string) (model.Task, error) {
	t, err := s.repos.Tasks.Get(ctx, id)
	if errors.Is(err, repo.ErrorNotFound) {
		return t, ErrTaskNotFound
	}
	return t, err
}

func (s *TaskService) List(ctx context.Context, filter model.TaskFilter, limit int) ([]model.Task, error) {
	if limit <= 0 || limit > maxListLimit {
		limit = defaultListLimit
	}
	if filter.Status != nil && !filter.Status.Valid() {
		return nil, ErrInvalidStatus
	}
	return s.repos.Tasks.List(ctx, filter, limit)
}

// Update changes every field except status and assigner. Status only moves
// through ChangeStatus so that each change has an audit row.
func (s *TaskService) Update(ctx context.Context, t model.Task) (model.Task, error) {
	if err := s.validate(t); err != nil {
		return t, err
	}
	if err := s.checkEmployees(ctx, t.AssigneeID); err != nil {
		return t, err
	}
	if err := s.checkProject(ctx, t.ProjectID); err != nil {
		return t, err
	}

	updated, err := s.repos.Tasks.Update(ctx, t)
	if errors.Is(err, repo.ErrorNotFound) {
		return t, ErrTaskNotFound
	}
	return updated, err
}

func (s *TaskService) Delete(ctx context.Context, id string) error {
	err := s.repos.Tasks.Delete(ctx, id)
	if errors.Is(err, repo.ErrorNotFound) {
		return ErrTaskNotFound
	}
	return err
}

func (s *TaskService) GetStats(ctx context.Context) (repo.Stats, error) {
	return s.repos.Tasks.GetStats(ctx)
}

func (s *TaskService) validate(t model.Task) error {
	if strings.TrimSpace(t.Name) == "" {
		return validationError("name is required")
	}
	if strings.TrimSpace(t.AssigneeID) == "" {
		return validationError("assigneeId is required")
	}
	if t.StartDate != nil && t.EndDate != nil && t.EndDate.Before(*t.StartDate) {
		return validationError("endDate is before startDate")
	}
	if !validClock(t.StartTime) {
		return validationError("startTime must be HH:MM")
	}
	if !validClock(t.EndTime) {
		return validationError("endTime must be HH:MM")
	}
	return nil
}

func validClock(v *string) bool {
	if v == nil {
		return true
	}
	_, err := time.Parse(clockLayout, *v)
	return err == nil
}

func (s *TaskService) checkEmployees(ctx context.Context, ids ...string) error {
	for _, id := range ids {
		_, err := s.repos.Employees.Get(ctx, id)
		if errors.Is(err, repo.ErrorNotFound) {
			return ErrEmployeeNotFound
		}
		if err != nil {
			return fmt.Errorf("look up employee: %w", err)
		}
	}
	return nil
}

func (s *TaskService) checkProject(ctx context.Context, id *string) error {
	if id == nil {
		return nil
	}
	ok, err := s.repos.Projects.Exists(ctx, *id)
	if err != nil {
		return fmt.Errorf("look up project: %w", err)
	}
	if !ok {
		return ErrProjectNotFound
	}
	return nil
}
