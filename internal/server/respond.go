package server

import (
	"encoding/json"
	"net/http"

	errs "github.com/matzehuels/storyline/pkg/errors"
)

type errorResponse struct {
	Error string    `json:"error"`
	Code  errs.Code `json:"code,omitempty"`
}

type warningResponse struct {
	Warning string    `json:"warning"`
	Code    errs.Code `json:"code"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to write JSON response", "error", err)
	}
}

// writeError maps err to a status code and a JSON body. Empty input is a
// warning, not an error.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	code := errs.GetCode(err)

	if code == errs.ErrCodeEmptyInput {
		s.writeJSON(w, status, warningResponse{Warning: errs.UserMessage(err), Code: code})
		return
	}

	msg := errs.UserMessage(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "error", err)
		if code == "" {
			code = errs.ErrCodeInternal
			msg = "internal error"
		}
	}
	s.writeJSON(w, status, errorResponse{Error: msg, Code: code})
}

func statusFor(err error) int {
	switch {
	case errs.Is(err, errs.ErrCodeEmptyInput):
		return http.StatusConflict
	case errs.IsInvalid(err):
		return http.StatusBadRequest
	case errs.IsNotFound(err):
		return http.StatusNotFound
	case errs.Is(err, errs.ErrCodeUnsupported):
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}
