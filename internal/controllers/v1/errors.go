package v1

import (
	"errors"
	"net/http"

	"github.com/sampattitrack/engine/internal/models"
)

type httpError struct {
	Error string `json:"error" example:"the account category must be one of Asset, Liability, Income, Expense or Equity"`
}

// status returns the appropriate status for a database error
func status(err error) int {
	if errors.Is(err, models.ErrGeneral) {
		return http.StatusInternalServerError
	}

	if errors.Is(err, models.ErrResourceNotFound) {
		return http.StatusNotFound
	}

	return http.StatusBadRequest
}

var (
	errCleanupConfirmation = errors.New("the confirmation for the cleanup API call was incorrect")
	errInvalidSyncScope    = errors.New("the specified sync scope is invalid")
	errAccountPathNotSet   = errors.New("the path parameter must be set")
)
