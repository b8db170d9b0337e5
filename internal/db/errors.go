package db

import (
	"errors"

	"github.com/lib/pq"
)

// ErrDuplicateKey is a unique constraint violation.
var ErrDuplicateKey = errors.New("duplicate key value violates unique constraint")

const uniqueViolation = pq.ErrorCode("23505")

// WrapError unites driver specific errors into package errors. Errors it does
// not recognize are returned unchanged.
func WrapError(err error) error {
	if err == nil {
		return nil
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return ErrDuplicateKey
	}

	return err
}

// IsDuplicateKey reports whether err is a unique constraint violation.
func IsDuplicateKey(err error) bool {
	return errors.Is(WrapError(err), ErrDuplicateKey)
}
