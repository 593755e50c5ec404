package errors

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

// ErrorCode classifies journal storage failures
type ErrorCode int

const (
	ErrCodeUnknown ErrorCode = iota
	ErrCodeNotFound
	ErrCodeDuplicate
	ErrCodeConstraint
	ErrCodeConnection
	ErrCodeTransaction
	ErrCodeTimeout
	ErrCodeValidation
	ErrCodePermission
	ErrCodeDiskSpace
	ErrCodeCorruption
	ErrCodeInternal
	ErrCodeBusy
	ErrCodeSchema
)

var codeNames = map[ErrorCode]string{
	ErrCodeNotFound:    "NOT_FOUND",
	ErrCodeDuplicate:   "DUPLICATE",
	ErrCodeConstraint:  "CONSTRAINT",
	ErrCodeConnection:  "CONNECTION",
	ErrCodeTransaction: "TRANSACTION",
	ErrCodeTimeout:     "TIMEOUT",
	ErrCodeValidation:  "VALIDATION",
	ErrCodePermission:  "PERMISSION",
	ErrCodeDiskSpace:   "DISK_SPACE",
	ErrCodeCorruption:  "CORRUPTION",
	ErrCodeInternal:    "INTERNAL",
	ErrCodeBusy:        "BUSY",
	ErrCodeSchema:      "SCHEMA",
}

func (e ErrorCode) String() string {
	if name, ok := codeNames[e]; ok {
		return name
	}
	return "UNKNOWN"
}

// RepositoryError is a storage error with classification and retry information
type RepositoryError struct {
	Op        string            // operation name
	Err       error             // underlying error
	Code      ErrorCode         // error classification
	Retryable bool              // whether the error is retryable
	Context   map[string]string // additional context information
	Timestamp time.Time         // when the error occurred
}

func (e *RepositoryError) Error() string {
	if e == nil {
		return "repository error"
	}

	var parts []string
	if e.Op != "" {
		parts = append(parts, "op="+e.Op)
	}
	if e.Code != ErrCodeUnknown {
		parts = append(parts, "code="+e.Code.String())
	}
	if e.Retryable {
		parts = append(parts, "retryable=true")
	}

	keys := make([]string, 0, len(e.Context))
	for k := range e.Context {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%s", k, e.Context[k]))
	}

	suffix := ""
	if len(parts) > 0 {
		suffix = " [" + strings.Join(parts, " ") + "]"
	}
	if e.Err != nil {
		return e.Err.Error() + suffix
	}
	return "repository error" + suffix
}

func (e *RepositoryError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches another RepositoryError by code, or the wrapped error
func (e *RepositoryError) Is(target error) bool {
	if e == nil {
		return false
	}
	if t, ok := target.(*RepositoryError); ok {
		return e.Code == t.Code
	}
	if e.Err != nil {
		return errors.Is(e.Err, target)
	}
	return false
}

func (e *RepositoryError) IsRetryable() bool {
	return e != nil && e.Retryable
}

// GetCode, GetContext and GetTimestamp satisfy logging.ClassifiedError.

func (e *RepositoryError) GetCode() string {
	if e == nil {
		return ErrCodeUnknown.String()
	}
	return e.Code.String()
}

func (e *RepositoryError) GetContext() map[string]string {
	if e == nil || e.Context == nil {
		return map[string]string{}
	}
	return e.Context
}

func (e *RepositoryError) GetTimestamp() time.Time {
	if e == nil {
		return time.Time{}
	}
	return e.Timestamp
}

// NewRepositoryError creates a repository error; retryability follows from code
func NewRepositoryError(op string, err error, code ErrorCode) *RepositoryError {
	return &RepositoryError{
		Op:        op,
		Err:       err,
		Code:      code,
		Retryable: isRetryableError(code, err),
		Context:   make(map[string]string),
		Timestamp: time.Now(),
	}
}

// NewRepositoryErrorWithContext creates a repository error carrying a copy of context
func NewRepositoryErrorWithContext(op string, err error, code ErrorCode, context map[string]string) *RepositoryError {
	repoErr := NewRepositoryError(op, err, code)
	for k, v := range context {
		repoErr.Context[k] = v
	}
	return repoErr
}

func isRetryableError(code ErrorCode, err error) bool {
	switch code {
	case ErrCodeConnection, ErrCodeTimeout, ErrCodeTransaction, ErrCodeBusy:
		return true
	case ErrCodeUnknown:
		if err == nil {
			return false
		}
		msg := strings.ToLower(err.Error())
		return strings.Contains(msg, "temporary") ||
			strings.Contains(msg, "busy") ||
			strings.Contains(msg, "locked")
	default:
		// disk space and corruption need someone to intervene
		return false
	}
}

func hasCode(err error, code ErrorCode) bool {
	var repoErr *RepositoryError
	return errors.As(err, &repoErr) && repoErr.Code == code
}

func IsNotFound(err error) bool   { return hasCode(err, ErrCodeNotFound) }
func IsDuplicate(err error) bool  { return hasCode(err, ErrCodeDuplicate) }
func IsConstraint(err error) bool { return hasCode(err, ErrCodeConstraint) }
func IsConnection(err error) bool { return hasCode(err, ErrCodeConnection) }
func IsTimeout(err error) bool    { return hasCode(err, ErrCodeTimeout) }
func IsValidation(err error) bool { return hasCode(err, ErrCodeValidation) }
func IsBusy(err error) bool       { return hasCode(err, ErrCodeBusy) }
func IsCorruption(err error) bool { return hasCode(err, ErrCodeCorruption) }
func IsSchema(err error) bool     { return hasCode(err, ErrCodeSchema) }

// IsRetryable reports whether err wraps a retryable RepositoryError
func IsRetryable(err error) bool {
	var repoErr *RepositoryError
	return errors.As(err, &repoErr) && repoErr.Retryable
}
