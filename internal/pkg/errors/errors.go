package errors

import (
	"errors"
	"fmt"
)

// Closed set of failure kinds for the ingestion and retrieval pipeline.
// Callers match on kind with errors.Is instead of string content.
var (
	ErrSectioning = errors.New("sectioning failed")
	ErrStore      = errors.New("store failed")
	ErrCache      = errors.New("cache failed")
	ErrGeneration = errors.New("generation failed")

	ErrInvalid  = errors.New("invalid")
	ErrNotFound = errors.New("not found")
	ErrTooMany  = errors.New("too many requests")
)

type kindError struct {
	kind  error
	cause error
}

func (e *kindError) Error() string {
	return fmt.Sprintf("%s: %v", e.kind.Error(), e.cause)
}

func (e *kindError) Is(target error) bool {
	return target == e.kind
}

func (e *kindError) Unwrap() error {
	return e.cause
}

func Sectioning(cause error) error { return wrap(ErrSectioning, cause) }
func Store(cause error) error      { return wrap(ErrStore, cause) }
func Cache(cause error) error      { return wrap(ErrCache, cause) }
func Generation(cause error) error { return wrap(ErrGeneration, cause) }

func wrap(kind, cause error) error {
	if cause == nil {
		return nil
	}
	if errors.Is(cause, kind) {
		return cause
	}
	return &kindError{kind: kind, cause: cause}
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsInvalid(err error) bool {
	return errors.Is(err, ErrInvalid)
}
