package model

import "time"

// TaskActivity is one recorded status transition. Rows are append-only.
type TaskActivity struct {
	ID           string      `json:"id"`
	TaskID       string      `json:"taskId"`
	OldStatus    TaskStatus  `json:"oldStatus"`
	NewStatus    TaskStatus  `json:"newStatus"`
	ChangeReason *string     `json:"changeReason,omitempty"`
	ChangedBy    EmployeeRef `json:"changedBy"`
	ChangedAt    time.Time   `json:"changedAt"`
}

// StatusChange summarises a committed transition.
type StatusChange struct {
	TaskID    string      `json:"taskId"`
	OldStatus TaskStatus  `json:"oldStatus"`
	NewStatus TaskStatus  `json:"newStatus"`
	ChangedAt time.Time   `json:"changedAt"`
	ChangedBy EmployeeRef `json:"changedBy"`
}
