package errors

import (
	"context"
	"database/sql"
	"errors"
	"strings"
)

// ClassifyError maps driver, database/sql and context errors to an ErrorCode
func ClassifyError(err error) ErrorCode {
	if err == nil {
		return ErrCodeUnknown
	}

	if code := classifySQLiteError(err); code != ErrCodeUnknown {
		return code
	}

	switch {
	case errors.Is(err, sql.ErrNoRows):
		return ErrCodeNotFound
	case errors.Is(err, sql.ErrConnDone), errors.Is(err, sql.ErrTxDone):
		return ErrCodeConnection
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return ErrCodeTimeout
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "unique constraint"):
		return ErrCodeDuplicate
	case strings.Contains(msg, "check constraint"), strings.Contains(msg, "not null constraint"):
		return ErrCodeConstraint
	case strings.Contains(msg, "database is locked"):
		return ErrCodeBusy
	case strings.Contains(msg, "database disk image is malformed"):
		return ErrCodeCorruption
	case strings.Contains(msg, "no such table"), strings.Contains(msg, "no such column"):
		return ErrCodeSchema
	case strings.Contains(msg, "permission denied"), strings.Contains(msg, "access is denied"):
		return ErrCodePermission
	case strings.Contains(msg, "disk full"), strings.Contains(msg, "no space left"):
		return ErrCodeDiskSpace
	case strings.Contains(msg, "timeout"):
		return ErrCodeTimeout
	default:
		return ErrCodeUnknown
	}
}

// WrapDatabaseError wraps err with op and its classification; nil stays nil
func WrapDatabaseError(op string, err error) error {
	if err == nil {
		return nil
	}
	return NewRepositoryError(op, err, ClassifyError(err))
}

// WrapDatabaseErrorWithContext is WrapDatabaseError with extra context
func WrapDatabaseErrorWithContext(op string, err error, contextMap map[string]string) error {
	if err == nil {
		return nil
	}
	return NewRepositoryErrorWithContext(op, err, ClassifyError(err), contextMap)
}

// HandleValidationError reports a rejected input value
func HandleValidationError(op, field, value, reason string) error {
	return NewRepositoryErrorWithContext(op, errors.New("validation failed"), ErrCodeValidation, map[string]string{
		"field":  field,
		"value":  value,
		"reason": reason,
	})
}

// HandleTransactionError reports a failure in a transaction phase (begin, commit, rollback)
func HandleTransactionError(op, phase, details string) error {
	return NewRepositoryErrorWithContext(op, errors.New("transaction error"), ErrCodeTransaction, map[string]string{
		"phase":   phase,
		"details": details,
	})
}

// HandleConnectionError reports a missing or closed database connection
func HandleConnectionError(op, details string) error {
	return NewRepositoryErrorWithContext(op, errors.New("connection error"), ErrCodeConnection, map[string]string{
		"details": details,
	})
}
