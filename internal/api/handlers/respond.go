package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/wonny/churnlens/backend/internal/contracts"
	"github.com/wonny/churnlens/backend/internal/pipelineconfig"
)

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

// statusForError maps pipeline failures to HTTP status codes.
// Bad raw input is the caller's data problem, not a server fault.
func statusForError(err error) int {
	var vErr pipelineconfig.ValidationError
	switch {
	case contracts.IsInputError(err), errors.As(err, &vErr):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// queryPositiveInt reads an optional positive integer query parameter
func queryPositiveInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}

	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return 0, errors.New(name + " must be a positive integer")
	}
	return v, nil
}
