package apperrors

import (
	"net/http"

	"github.com/cockroachdb/errors"
)

var (
	// ErrInvalidInput marks malformed diagrams and request payloads.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotFound marks a load or export with no stored diagram.
	ErrNotFound = errors.New("not found")
	// ErrStorageFailure marks a failed read or write of the underlying store.
	ErrStorageFailure = errors.New("storage failure")
)

// InvalidInput returns a new error marked as ErrInvalidInput
func InvalidInput(format string, args ...interface{}) error {
	return errors.Mark(errors.Newf(format, args...), ErrInvalidInput)
}

// NotFound returns a new error marked as ErrNotFound
func NotFound(format string, args ...interface{}) error {
	return errors.Mark(errors.Newf(format, args...), ErrNotFound)
}

// StorageFailure wraps cause and marks it as ErrStorageFailure.
func StorageFailure(cause error, format string, args ...interface{}) error {
	if cause == nil {
		return errors.Mark(errors.Newf(format, args...), ErrStorageFailure)
	}
	return errors.Mark(errors.Wrapf(cause, format, args...), ErrStorageFailure)
}

func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsStorageFailure(err error) bool {
	return errors.Is(err, ErrStorageFailure)
}

// HTTPStatus maps an error to the status code the API responds with.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case IsInvalidInput(err):
		return http.StatusBadRequest
	case IsNotFound(err):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
