package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/wonny/valuefinder/internal/contracts"
	"github.com/wonny/valuefinder/internal/selection"
	"github.com/wonny/valuefinder/internal/strategyconfig"
)

// RunStore reads persisted screening runs
// selection.Repository and export.MemorySink both satisfy it.
type RunStore interface {
	GetRun(ctx context.Context, runID string) (*contracts.ScreeningRun, error)
	LatestRun(ctx context.Context) (*contracts.ScreeningRun, error)
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}

// statusFor maps domain errors onto HTTP status codes
func statusFor(err error) int {
	var ve strategyconfig.ValidationError
	switch {
	case errors.Is(err, selection.ErrRunNotFound):
		return http.StatusNotFound
	case errors.As(err, &ve):
		return http.StatusBadRequest
	case errors.Is(err, contracts.ErrInsufficientData):
		return http.StatusUnprocessableEntity
	case errors.Is(err, contracts.ErrDataUnavailable):
		return http.StatusBadGateway
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
