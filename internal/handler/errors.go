package handler

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/BuzzLyutic/crm-api/internal/repo"
	"github.com/BuzzLyutic/crm-api/internal/service"
	"github.com/BuzzLyutic/crm-api/pkg/respond"
)

// handleErrors maps service and repository errors to HTTP responses.
// Anything unrecognised is logged and reported as a bare 500.
func handleErrors(w http.ResponseWriter, r *http.Request, logger *zap.Logger, err error) {
	var same *service.SameStatusError
	switch {
	case errors.As(err, &same):
		respond.Error(w, r, http.StatusBadRequest, same.Error())
	case errors.Is(err, service.ErrTaskNotFound):
		respond.Error(w, r, http.StatusNotFound, service.ErrTaskNotFound.Error())
	case errors.Is(err, service.ErrEmployeeNotFound):
		respond.Error(w, r, http.StatusNotFound, service.ErrEmployeeNotFound.Error())
	case errors.Is(err, service.ErrProjectNotFound):
		respond.Error(w, r, http.StatusNotFound, service.ErrProjectNotFound.Error())
	case errors.Is(err, service.ErrInvalidEmployee):
		respond.Error(w, r, http.StatusBadRequest, service.ErrInvalidEmployee.Error())
	case errors.Is(err, service.ErrInvalidStatus):
		respond.Error(w, r, http.StatusBadRequest, service.ErrInvalidStatus.Error())
	case errors.Is(err, service.ErrInvalidCredentials):
		respond.Error(w, r, http.StatusBadRequest, service.ErrInvalidCredentials.Error())
	case errors.Is(err, service.ErrValidation):
		respond.Error(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, repo.ErrorConflict):
		respond.Error(w, r, http.StatusConflict, "conflict")
	default:
		logger.Error("internal error",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		respond.Error(w, r, http.StatusInternalServerError, "internal error")
	}
}
