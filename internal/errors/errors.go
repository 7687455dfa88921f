package errors

import (
	"github.com/cockroachdb/errors"
)

// Sentinel errors. Every error returned across a package boundary is marked
// with exactly one of these so transport layers can classify it.
var (
	ErrNotFound         = errors.New("not found")
	ErrAlreadyExists    = errors.New("already exists")
	ErrVersionConflict  = errors.New("version conflict")
	ErrValidation       = errors.New("validation error")
	ErrInvalidOperation = errors.New("invalid operation")
	ErrPermissionDenied = errors.New("permission denied")
	ErrHTTPClient       = errors.New("http client error")
	ErrDatabase         = errors.New("database error")
	ErrSystem           = errors.New("system error")
	ErrInternal         = errors.New("internal error")
)

// IsNotFound reports whether err is marked ErrNotFound
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsAlreadyExists reports whether err is marked ErrAlreadyExists
func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

// IsVersionConflict reports whether err is marked ErrVersionConflict
func IsVersionConflict(err error) bool {
	return errors.Is(err, ErrVersionConflict)
}

// IsValidation reports whether err is marked ErrValidation
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsInvalidOperation reports whether err is marked ErrInvalidOperation
func IsInvalidOperation(err error) bool {
	return errors.Is(err, ErrInvalidOperation)
}

// IsPermissionDenied reports whether err is marked ErrPermissionDenied
func IsPermissionDenied(err error) bool {
	return errors.Is(err, ErrPermissionDenied)
}

// IsDatabase reports whether err is marked ErrDatabase
func IsDatabase(err error) bool {
	return errors.Is(err, ErrDatabase)
}

// As is a passthrough to cockroachdb/errors.As so callers need a single import.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Is is a passthrough to cockroachdb/errors.Is
func Is(err, reference error) bool {
	return errors.Is(err, reference)
}
