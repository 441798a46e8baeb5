package apierr

import (
	"errors"
	"fmt"
	"net/http"

	pkgerrors "github.com/lectorhq/lector-backend/internal/pkg/errors"
)

type Error struct {
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

// FromError maps service-layer sentinels onto HTTP statuses. Graph-integrity
// and validation failures are the caller's fault, missing rows are 404, and
// anything unrecognized is treated as a store failure.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	switch {
	case errors.Is(err, pkgerrors.ErrSelfLoop):
		return New(http.StatusBadRequest, "self_loop", err)
	case errors.Is(err, pkgerrors.ErrCycle):
		return New(http.StatusConflict, "would_create_cycle", err)
	case errors.Is(err, pkgerrors.ErrDuplicateEdge):
		return New(http.StatusConflict, "edge_exists", err)
	case errors.Is(err, pkgerrors.ErrInvalidRating):
		return New(http.StatusBadRequest, "invalid_rating", err)
	case errors.Is(err, pkgerrors.ErrInvalidArgument):
		return New(http.StatusBadRequest, "invalid_argument", err)
	case errors.Is(err, pkgerrors.ErrNotFound):
		return New(http.StatusNotFound, "not_found", err)
	default:
		return New(http.StatusServiceUnavailable, "store_unavailable", err)
	}
}
