package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dgallion1/plainfin/internal/llm"
	"github.com/dgallion1/plainfin/internal/parser"
	"github.com/dgallion1/plainfin/internal/pipeline"
	"github.com/dgallion1/plainfin/internal/session"
)

// statusFor maps pipeline errors to HTTP status codes.
func statusFor(err error) int {
	if llm.StatusCode(err) == http.StatusTooManyRequests {
		return http.StatusTooManyRequests
	}
	switch {
	case llm.IsTimeout(err):
		return http.StatusGatewayTimeout
	case errors.Is(err, llm.ErrUpstream):
		return http.StatusBadGateway
	case errors.Is(err, parser.ErrUnsupportedFormat),
		errors.Is(err, pipeline.ErrEmptyInput),
		errors.Is(err, pipeline.ErrInvalidMode):
		return http.StatusBadRequest
	case errors.Is(err, session.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, pipeline.ErrNotSummarized):
		return http.StatusConflict
	case errors.Is(err, pipeline.ErrExtraction), errors.Is(err, pipeline.ErrNoSections):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// writeError logs server-side failures and writes a JSON error body.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := statusFor(err)
	if code >= http.StatusInternalServerError || code == http.StatusTooManyRequests {
		s.log.Error("request failed", "path", r.URL.Path, "status", code, "error", err)
	}
	jsonError(w, err.Error(), code)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
