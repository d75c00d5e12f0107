// Package httpjson carries the teacher's JSON envelope and error-kind
// translation so every service writes the same response shapes.
package httpjson

import (
	"encoding/json"
	"net/http"

	"ganshmuel/platform/internal/apperr"
)

type apiError struct {
	Error struct {
		Message string `json:"message"`
		Code    string `json:"code"`
	} `json:"error"`
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func WriteAPIError(w http.ResponseWriter, status int, code, message string) {
	var e apiError
	e.Error.Code = code
	e.Error.Message = message
	WriteJSON(w, status, e)
}

// WriteErr maps an apperr.Kind (or any error, which defaults to
// internal) to the HTTP status specified in spec.md §7 and writes the
// standard error envelope.
func WriteErr(w http.ResponseWriter, err error) {
	kind := apperr.KindOf(err)
	status, code := statusForKind(kind)
	WriteAPIError(w, status, code, err.Error())
}

func statusForKind(k apperr.Kind) (int, string) {
	switch k {
	case apperr.KindValidation:
		return http.StatusBadRequest, "VALIDATION"
	case apperr.KindNotFound:
		return http.StatusNotFound, "NOT_FOUND"
	case apperr.KindDuplicate:
		return http.StatusConflict, "DUPLICATE"
	case apperr.KindSequenceViolation:
		return http.StatusBadRequest, "SEQUENCE_VIOLATION"
	case apperr.KindContainerUnknown:
		return http.StatusBadRequest, "CONTAINER_UNKNOWN"
	case apperr.KindConcurrentModified:
		return http.StatusConflict, "CONCURRENT_MODIFICATION"
	case apperr.KindUpstreamUnavailable:
		return http.StatusBadGateway, "UPSTREAM_UNAVAILABLE"
	default:
		return http.StatusInternalServerError, "INTERNAL"
	}
}
