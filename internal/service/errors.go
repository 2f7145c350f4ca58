package service

import (
	"errors"
	"fmt"

	"github.com/BuzzLyutic/crm-api/internal/model"
)

var (
	ErrValidation         = errors.New("validation error")
	ErrInvalidStatus      = errors.New("invalid status")
	ErrTaskNotFound       = errors.New("task not found")
	ErrEmployeeNotFound   = errors.New("employee not found")
	ErrProjectNotFound    = errors.New("project not found")
	ErrInvalidEmployee    = errors.New("invalid employee")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// SameStatusError rejects a transition whose target equals the current status.
type SameStatusError struct {
	Status model.TaskStatus
}

func (e *SameStatusError) Error() string {
	return fmt.Sprintf("task already in %s", e.Status)
}

func validationError(msg string) error {
	return fmt.Errorf("%w: %s", ErrValidation, msg)
}
