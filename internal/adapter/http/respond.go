package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/couchcryptid/resqwatch-dashboard-service/internal/dashboard"
	"github.com/couchcryptid/resqwatch-dashboard-service/internal/domain"
	"github.com/couchcryptid/resqwatch-dashboard-service/internal/mapview"
	"github.com/couchcryptid/resqwatch-dashboard-service/internal/safety"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 64 << 10

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // client went away
}

// writeError maps domain errors to status codes. Unexpected errors are
// logged and reported without detail.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := errorStatus(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		msg = "internal error"
	}
	writeJSON(w, status, errorBody{Error: msg})
}

func errorStatus(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, safety.ErrInvalidCriterion),
		errors.Is(err, dashboard.ErrUnknownPanel):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound),
		errors.Is(err, mapview.ErrUnknownLayer):
		return http.StatusNotFound
	case errors.Is(err, safety.ErrNoLocation):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// decodeJSON reads a bounded JSON body into v. Malformed input is a
// validation error.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: invalid request body: %v", domain.ErrValidation, err)
	}
	return nil
}

// writeAttachment sends body as a download named filename.
func writeAttachment(w http.ResponseWriter, contentType, filename string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	w.Write(body) //nolint:errcheck // client went away
}
