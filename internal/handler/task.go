package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/crm-api/internal/auth"
	"github.com/BuzzLyutic/crm-api/internal/model"
	"github.com/BuzzLyutic/crm-api/internal/repo"
	"github.com/BuzzLyutic/crm-api/pkg/respond"
)

const dateLayout = "2006-01-02"

type TaskService interface {
	Create(ctx context.Context, t model.Task) (model.Task, error)
	Get(ctx context.Context, id string) (model.Task, error)
	List(ctx context.Context, filter model.TaskFilter, limit int) ([]model.Task, error)
	Update(ctx context.Context, t model.Task) (model.Task, error)
	Delete(ctx context.Context, id string) error
	GetStats(ctx context.Context) (repo.Stats, error)
	ChangeStatus(ctx context.Context, taskID string, newStatus model.TaskStatus, changedBy string, reason *string) (model.StatusChange, error)
	GetActivity(ctx context.Context, taskID string) ([]model.TaskActivity, error)
}

type TaskHandler struct {
	service TaskService
	logger  *zap.Logger
}

func NewTaskHandler(srv TaskService, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{
		service: srv,
		logger:  logger,
	}
}

type taskRequest struct {
	Name        string           `json:"name"`
	Description *string          `json:"description"`
	StartDate   *string          `json:"startDate"`
	EndDate     *string          `json:"endDate"`
	StartTime   *string          `json:"startTime"`
	EndTime     *string          `json:"endTime"`
	Status      model.TaskStatus `json:"status"`
	AssigneeID  string           `json:"assigneeId"`
	AssignerID  string           `json:"assignerId"`
	ProjectID   *string          `json:"projectId"`
	Version     int              `json:"version"`
}

func (req taskRequest) toModel() (model.Task, error) {
	t := model.Task{
		Name:        req.Name,
		Description: req.Description,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Status:      req.Status,
		AssigneeID:  req.AssigneeID,
		AssignerID:  req.AssignerID,
		ProjectID:   req.ProjectID,
		Version:     req.Version,
	}
	var err error
	if t.StartDate, err = parseDate("startDate", req.StartDate); err != nil {
		return t, err
	}
	if t.EndDate, err = parseDate("endDate", req.EndDate); err != nil {
		return t, err
	}
	return t, nil
}

func parseDate(field string, v *string) (*time.Time, error) {
	if v == nil || *v == "" {
		return nil, nil
	}
	d, err := time.Parse(dateLayout, *v)
	if err != nil {
		return nil, fmt.Errorf("%s must be YYYY-MM-DD", field)
	}
	return &d, nil
}

type changeStatusRequest struct {
	NewStatus    model.TaskStatus `json:"newStatus"`
	ChangeReason *string          `json:"changeReason"`
}

func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	if r.ContentLength == 0 {
		respond.Error(w, r, http.StatusBadRequest, "empty request body")
		return
	}

	var req taskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Debug("failed to decode json", zap.Error(err))
		respond.Error(w, r, http.StatusBadRequest, "invalid json")
		return
	}
	t, err := req.toModel()
	if err != nil {
		respond.Error(w, r, http.StatusBadRequest, err.Error())
		return
	}

	task, err := h.service.Create(r.Context(), t)
	if err != nil {
		handleErrors(w, r, h.logger, err)
		return
	}

	w.Header().Set("Location", "/tasks/"+task.ID)
	respond.JSON(w, r, http.StatusCreated, task)
}

func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	task, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleErrors(w, r, h.logger, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, task)
}

func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	var filter model.TaskFilter
	q := r.URL.Query()
	if status := q.Get("status"); status != "" {
		s := model.TaskStatus(status)
		filter.Status = &s
	}
	if assignee := q.Get("assigneeId"); assignee != "" {
		filter.AssigneeID = &assignee
	}

	limit, _ := strconv.Atoi(q.Get("limit"))

	tasks, err := h.service.List(r.Context(), filter, limit)
	if err != nil {
		handleErrors(w, r, h.logger, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, tasks)
}

func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req taskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "invalid json")
		return
	}
	t, err := req.toModel()
	if err != nil {
		respond.Error(w, r, http.StatusBadRequest, err.Error())
		return
	}
	t.ID = chi.URLParam(r, "id")

	task, err := h.service.Update(r.Context(), t)
	if err != nil {
		handleErrors(w, r, h.logger, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, task)
}

func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		handleErrors(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *TaskHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.GetStats(r.Context())
	if err != nil {
		handleErrors(w, r, h.logger, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, stats)
}

func (h *TaskHandler) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		respond.Error(w, r, http.StatusUnauthorized, auth.MsgTokenMissing)
		return
	}

	var req changeStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "invalid json")
		return
	}

	change, err := h.service.ChangeStatus(r.Context(), chi.URLParam(r, "id"), req.NewStatus, claims.UserID(), req.ChangeReason)
	if err != nil {
		handleErrors(w, r, h.logger, err)
		return
	}

	h.logger.Info("task status changed",
		zap.String("task_id", change.TaskID),
		zap.String("old_status", string(change.OldStatus)),
		zap.String("new_status", string(change.NewStatus)),
		zap.String("changed_by", change.ChangedBy.ID),
	)
	respond.JSON(w, r, http.StatusOK, change)
}

func (h *TaskHandler) Activity(w http.ResponseWriter, r *http.Request) {
	activity, err := h.service.GetActivity(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleErrors(w, r, h.logger, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, activity)
}
