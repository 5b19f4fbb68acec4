package repository

import (
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"
)

var (
	// ErrNotFound is returned when no document matches
	ErrNotFound = errors.New("document not found")
	// ErrDuplicate is returned when a unique index rejects a write
	ErrDuplicate = errors.New("duplicate document")
)

// DuplicateError names the unique index that rejected a write
type DuplicateError struct {
	Index string
	Err   error
}

func (e *DuplicateError) Error() string {
	return "duplicate key on " + e.Index + ": " + e.Err.Error()
}

func (e *DuplicateError) Is(target error) bool {
	return target == ErrDuplicate
}

func (e *DuplicateError) Unwrap() error {
	return e.Err
}

// mapError converts driver errors into repository errors
func mapError(err error, indexes ...string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		msg := err.Error()
		for _, idx := range indexes {
			if strings.Contains(msg, idx) {
				return &DuplicateError{Index: idx, Err: err}
			}
		}
		return &DuplicateError{Err: err}
	default:
		return err
	}
}

// IsDuplicateIndex reports whether err is a duplicate on the named index
func IsDuplicateIndex(err error, index string) bool {
	var dup *DuplicateError
	return errors.As(err, &dup) && dup.Index == index
}
