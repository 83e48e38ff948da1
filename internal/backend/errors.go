package backend

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/deon-gracias/rag/internal/schema"
)

var (
	// ErrNotFound matches a StatusError carrying 404
	ErrNotFound = errors.New("not found")

	// ErrRejected is returned when the backend answers an upload with ok=false
	ErrRejected = errors.New("backend rejected the request")
)

// TransportError is a failure to reach the backend or read its answer,
// including timeouts and cancellation.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: transport failure: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// StatusError is a non-2xx answer
type StatusError struct {
	Op     string
	Code   int
	Detail string
}

func (e *StatusError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: backend returned %d: %s", e.Op, e.Code, e.Detail)
	}
	return fmt.Sprintf("%s: backend returned %d %s", e.Op, e.Code, http.StatusText(e.Code))
}

func (e *StatusError) Is(target error) bool {
	return target == ErrNotFound && e.Code == http.StatusNotFound
}

// IsAbsent reports whether err means the requested resource is not there:
// a 404 or a body that failed shape validation.
func IsAbsent(err error) bool {
	if errors.Is(err, ErrNotFound) {
		return true
	}
	var verr *schema.ValidationError
	return errors.As(err, &verr)
}

func newStatusError(op string, code int, body []byte) *StatusError {
	return &StatusError{Op: op, Code: code, Detail: detailOf(body)}
}

// detailOf extracts FastAPI's {"detail": ...}; validation errors carry a
// list there, which is kept as raw JSON.
func detailOf(body []byte) string {
	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || len(payload.Detail) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(payload.Detail, &s); err == nil {
		return s
	}
	return string(payload.Detail)
}

func outcomeOf(err error) string {
	var (
		terr *TransportError
		serr *StatusError
		verr *schema.ValidationError
	)
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &terr):
		return "transport"
	case errors.As(err, &serr):
		return "status"
	case errors.As(err, &verr):
		return "validation"
	case errors.Is(err, ErrRejected):
		return "rejected"
	default:
		return "error"
	}
}
