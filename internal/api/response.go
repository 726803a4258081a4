package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/back2u/back2u/internal/lifecycle"
)

// jsonResponse writes a JSON response with the given status code.
func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("encoding response", "error", err)
		}
	}
}

// jsonError writes a JSON error response.
func jsonError(w http.ResponseWriter, status int, message string) {
	jsonResponse(w, status, map[string]string{"message": message})
}

// jsonValidationError writes a 400 with one entry per violated rule.
func jsonValidationError(w http.ResponseWriter, message string, errs []string) {
	jsonResponse(w, http.StatusBadRequest, map[string]any{
		"message": message,
		"errors":  errs,
	})
}

// decodeJSON decodes a JSON request body into the given target.
func decodeJSON(r *http.Request, target any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(target)
}

var bracketReplacer = strings.NewReplacer("<", "", ">", "")

// clean trims surrounding whitespace and strips angle brackets from
// caller-supplied text before it is stored or echoed back.
func clean(s string) string {
	return bracketReplacer.Replace(strings.TrimSpace(s))
}

// errStatus maps a lifecycle error onto an HTTP response. Unrecognized errors
// become 500s whose body carries the underlying message only in development.
func errStatus(w http.ResponseWriter, err error, dev bool) {
	var ve *lifecycle.ValidationError
	switch {
	case errors.As(err, &ve):
		if len(ve.Messages) == 1 {
			jsonError(w, http.StatusBadRequest, ve.Messages[0])
		} else {
			jsonValidationError(w, "Validation failed", ve.Messages)
		}
	case errors.Is(err, lifecycle.ErrForbidden):
		jsonError(w, http.StatusForbidden, "Not authorized")
	case errors.Is(err, lifecycle.ErrNotFound):
		jsonError(w, http.StatusNotFound, "Not found")
	case errors.Is(err, lifecycle.ErrConflict):
		jsonError(w, http.StatusBadRequest, "Already exists")
	default:
		slog.Error("internal error", "error", err)
		if dev {
			jsonError(w, http.StatusInternalServerError, err.Error())
		} else {
			jsonError(w, http.StatusInternalServerError, "Server error")
		}
	}
}
