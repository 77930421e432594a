package core

import (
	"errors"
	"fmt"
)

// Domain sentinels. Storage and services wrap these; the HTTP layer maps them
// to status codes through OutcomeOf.
var (
	ErrNotFound         = errors.New("not found")
	ErrInvalidReference = errors.New("invalid user_id or category_id")
	ErrDuplicate        = errors.New("already exists")
	ErrForbidden        = errors.New("forbidden")
	ErrUnauthorized     = errors.New("unauthorized")

	ErrExpenseNotFound  = fmt.Errorf("expense %w", ErrNotFound)
	ErrIncomeNotFound   = fmt.Errorf("income %w", ErrNotFound)
	ErrCategoryNotFound = fmt.Errorf("category %w", ErrNotFound)
	ErrUserNotFound     = fmt.Errorf("user %w", ErrNotFound)

	ErrInvalidAmount      = errors.New("invalid amount")
	ErrInvalidMonth       = errors.New("invalid month")
	ErrInvalidWindow      = errors.New("window start is after window end")
	ErrNotRecurring       = errors.New("expense is not recurring")
	ErrInvalidFrequency   = errors.New("invalid frequency")
	ErrTooManyOccurrences = errors.New("window spans too many recurring occurrences")
)

// ValidationError reports a rejected input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// Invalid builds a *ValidationError.
func Invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// Outcome classifies the result of an operation for the transport layer.
type Outcome int

const (
	OutcomeOK Outcome = iota
	OutcomeValidationFailed
	OutcomeNotFound
	OutcomeConflict
	OutcomeUnauthorized
	OutcomeServerError
)

func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "ok"
	case OutcomeValidationFailed:
		return "validation_failed"
	case OutcomeNotFound:
		return "not_found"
	case OutcomeConflict:
		return "conflict"
	case OutcomeUnauthorized:
		return "unauthorized"
	default:
		return "server_error"
	}
}

// OutcomeOf maps an error to its Outcome. Unknown errors are server errors.
func OutcomeOf(err error) Outcome {
	var verr *ValidationError
	switch {
	case err == nil:
		return OutcomeOK
	case errors.As(err, &verr),
		errors.Is(err, ErrInvalidAmount),
		errors.Is(err, ErrInvalidMonth),
		errors.Is(err, ErrInvalidWindow),
		errors.Is(err, ErrTooManyOccurrences),
		errors.Is(err, ErrInvalidReference):
		return OutcomeValidationFailed
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrForbidden):
		return OutcomeNotFound
	case errors.Is(err, ErrDuplicate):
		return OutcomeConflict
	case errors.Is(err, ErrUnauthorized):
		return OutcomeUnauthorized
	default:
		return OutcomeServerError
	}
}
