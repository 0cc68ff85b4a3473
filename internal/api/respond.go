package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/sells-group/inspection-cli/internal/requirement"
	"github.com/sells-group/inspection-cli/internal/rules"
	"github.com/sells-group/inspection-cli/internal/service"
	"github.com/sells-group/inspection-cli/internal/store"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("api: encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		zap.L().Error("api: request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		msg = "internal error"
	}
	writeJSON(w, status, errorResponse{Error: msg})
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: msg})
}

func statusFor(err error) int {
	switch {
	case store.IsNotFound(err):
		return http.StatusNotFound
	case service.IsInvalidInput(err),
		errors.Is(err, requirement.ErrInvalidRequirement),
		errors.Is(err, rules.ErrUnknownTemplate):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
