package model

import "time"

// TaskStatus is the closed set of states a task can be in.
type TaskStatus string

const (
	StatusInProgress TaskStatus = "IN_PROGRESS"
	StatusOnHold     TaskStatus = "ON_HOLD"
	StatusReview     TaskStatus = "REVIEW"
	StatusAddressed  TaskStatus = "ADDRESSED"
	StatusOverdue    TaskStatus = "OVERDUE"
)

// Statuses lists every valid status in display order.
var Statuses = []TaskStatus{
	StatusInProgress,
	StatusOnHold,
	StatusReview,
	StatusAddressed,
	StatusOverdue,
}

func (s TaskStatus) Valid() bool {
	for _, v := range Statuses {
		if s == v {
			return true
		}
	}
	return false
}

type Task struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description *string    `json:"description,omitempty"`
	StartDate   *time.Time `json:"startDate,omitempty"`
	EndDate     *time.Time `json:"endDate,omitempty"`
	StartTime   *string    `json:"startTime,omitempty"`
	EndTime     *string    `json:"endTime,omitempty"`
	Status      TaskStatus `json:"status"`
	AssigneeID  string     `json:"assigneeId"`
	AssignerID  string     `json:"assignerId"`
	ProjectID   *string    `json:"projectId,omitempty"`
	Version     int        `json:"version"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

type TaskFilter struct {
	Status     *TaskStatus
	AssigneeID *string
}
