package api

import (
	"encoding/json/v2"
	"errors"
	"net/http"

	apperr "github.com/cozyshelfapp/shelf-server/internal/errors"
)

// Envelope is the uniform response shape. Success responses carry data,
// failures carry a structured error; clients never have to guess which.
type Envelope struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *ErrorBody `json:"error,omitempty"`
}

// ErrorBody is the error half of the envelope.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// writeData writes a success envelope.
func (s *Server) writeData(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.MarshalWrite(w, Envelope{Success: true, Data: data}); err != nil {
		s.logger.Error("failed to write response", "error", err)
	}
}

// writeError maps an error onto the envelope. Domain errors keep their
// code and status; anything else becomes an opaque 500 so internals never
// leak to clients.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	body := &ErrorBody{
		Code:    string(apperr.CodeInternal),
		Message: "internal server error",
	}

	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		status = appErr.HTTPStatus()
		body = &ErrorBody{
			Code:    string(appErr.Code),
			Message: appErr.Message,
			Details: appErr.Details,
		}
	} else {
		s.logger.Error("unhandled error", "error", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if werr := json.MarshalWrite(w, Envelope{Success: false, Error: body}); werr != nil {
		s.logger.Error("failed to write error response", "error", werr)
	}
}

// decode reads a JSON request body into dst.
func decode(r *http.Request, dst any) error {
	if err := json.UnmarshalRead(r.Body, dst); err != nil {
		return apperr.Validation("request body is not valid JSON").WithCause(err)
	}
	return nil
}
