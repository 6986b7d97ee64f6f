package backend

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Kind classifies backend failures so callers never inspect message text.
type Kind string

const (
	KindNotConfigured         Kind = "not_configured"
	KindInvalidCredentials    Kind = "invalid_credentials"
	KindEmailTaken            Kind = "email_taken"
	KindWeakPassword          Kind = "weak_password"
	KindInvalidInstructorCode Kind = "invalid_instructor_code"
	KindInvalidOrgCode        Kind = "invalid_org_code"
	KindUnauthorized          Kind = "unauthorized"
	KindDuplicate             Kind = "duplicate"
	KindNotFound              Kind = "not_found"
	KindDatabase              Kind = "database"
	KindUnknown               Kind = "unknown"
)

// pgUniqueViolation is SQLSTATE unique_violation.
const pgUniqueViolation = "23505"

// ErrNotConfigured is returned by every operation of an offline client.
var ErrNotConfigured = &Error{Kind: KindNotConfigured, Op: "backend"}

// Error is a classified backend failure.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind, so errors.Is(err, ErrNotConfigured) works.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// NewError builds an Error of the given kind.
func NewError(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf extracts the kind of err. Unclassified errors are KindUnknown.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var be *Error
	if errors.As(err, &be) {
		return be.Kind
	}
	return KindUnknown
}

// IsUniqueViolation reports whether err carries SQLSTATE 23505.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

// Classify wraps a raw storage error with its kind. Already classified errors
// pass through unchanged.
func Classify(op string, err error) error {
	if err == nil {
		return nil
	}
	var be *Error
	if errors.As(err, &be) {
		return err
	}
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return NewError(KindNotFound, op, err)
	case IsUniqueViolation(err):
		return NewError(KindDuplicate, op, err)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return NewError(KindDatabase, op, err)
	}
	return NewError(KindUnknown, op, err)
}
