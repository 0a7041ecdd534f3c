package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode represents a unique error code for categorizing errors
type ErrorCode string

const (
	// Connection errors (1xxx)
	ErrCodeConnectionFailed     ErrorCode = "SPKL1001"
	ErrCodeAuthenticationFailed ErrorCode = "SPKL1003"
	ErrCodeNotConnected         ErrorCode = "SPKL1004"

	// Configuration errors (2xxx)
	ErrCodeConfigNotFound ErrorCode = "SPKL2001"
	ErrCodeConfigInvalid  ErrorCode = "SPKL2002"

	// SQL execution errors (4xxx)
	ErrCodeSQLSyntax         ErrorCode = "SPKL4001"
	ErrCodeSQLPermission     ErrorCode = "SPKL4002"
	ErrCodeSQLTimeout        ErrorCode = "SPKL4003"
	ErrCodeSQLTransaction    ErrorCode = "SPKL4004"
	ErrCodeSQLObjectNotFound ErrorCode = "SPKL4005"
	ErrCodeSQLExecution      ErrorCode = "SPKL4006"
	ErrCodeStagingFailed     ErrorCode = "SPKL4007"

	// Object storage errors (5xxx)
	ErrCodeSourceUnavailable ErrorCode = "SPKL5001"
	ErrCodeSourceEmpty       ErrorCode = "SPKL5002"
	ErrCodeSourceCorrupted   ErrorCode = "SPKL5003"

	// Validation errors (6xxx)
	ErrCodeValidationFailed ErrorCode = "SPKL6001"
	ErrCodeInvalidInput     ErrorCode = "SPKL6002"

	// Integrity errors (8xxx)
	ErrCodeIntegrityCheckFailed ErrorCode = "SPKL8006"

	// System errors (9xxx)
	ErrCodeInternal     ErrorCode = "SPKL9001"
	ErrCodeUserInput    ErrorCode = "SPKL9004"
	ErrCodeSecretsStore ErrorCode = "SPKL9005"
)

// ErrorSeverity represents the severity level of an error
type ErrorSeverity string

const (
	SeverityError ErrorSeverity = "ERROR" // Operation failed, job aborts
)

// AppError represents a structured application error with context
type AppError struct {
	Code        ErrorCode
	Message     string
	Severity    ErrorSeverity
	Context     map[string]interface{}
	Cause       error
	Suggestions []string
}

// Error implements the error interface
func (e *AppError) Error() string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("[%s] %s: %s", e.Code, e.Severity, e.Message))

	if e.Cause != nil {
		b.WriteString(fmt.Sprintf("\nCaused by: %v", e.Cause))
	}

	if len(e.Suggestions) > 0 {
		b.WriteString("\nSuggestions:")
		for i, suggestion := range e.Suggestions {
			b.WriteString(fmt.Sprintf("\n  %d. %s", i+1, suggestion))
		}
	}

	return b.String()
}

// Unwrap returns the cause of the error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is implements error comparison
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// New creates a new AppError
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:     code,
		Message:  message,
		Severity: SeverityError,
		Context:  make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with AppError
func Wrap(err error, code ErrorCode, message string) *AppError {
	if err == nil {
		return nil
	}

	appErr := New(code, message)
	appErr.Cause = err

	// If wrapping another AppError, inherit its context
	var ae *AppError
	if errors.As(err, &ae) {
		for k, v := range ae.Context {
			appErr.Context[k] = v
		}
	}

	return appErr
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// WithSuggestions adds recovery suggestions
func (e *AppError) WithSuggestions(suggestions ...string) *AppError {
	e.Suggestions = append(e.Suggestions, suggestions...)
	return e
}

// Common error constructors

// ConnectionError creates a connection-related error
func ConnectionError(message string, cause error) *AppError {
	return Wrap(cause, ErrCodeConnectionFailed, message).
		WithSuggestions(
			"Check that the cluster endpoint is reachable from this host",
			"Verify the host and port in the cluster configuration",
			"Check security group or network policy settings",
		)
}

// ConfigError creates a configuration-related error
func ConfigError(message string, field string) *AppError {
	return New(ErrCodeConfigInvalid, message).
		WithContext("field", field).
		WithSuggestions(
			fmt.Sprintf("Check the '%s' configuration value", field),
			"Run 'sparkload init' to write a new configuration",
		)
}

// SQLError creates an SQL execution error. The code is refined from the
// driver message so that callers can tell permission and timeout failures
// apart from plain statement errors.
func SQLError(message string, query string, cause error) *AppError {
	err := Wrap(cause, ErrCodeSQLExecution, message).
		WithContext("query", truncateString(query, 200))

	causeText := ""
	if cause != nil {
		causeText = strings.ToLower(cause.Error())
	}

	switch {
	case strings.Contains(causeText, "permission") || strings.Contains(causeText, "access denied"):
		err.Code = ErrCodeSQLPermission
		_ = err.WithSuggestions(
			"Check the database user's privileges on the target schema",
			"Verify the IAM role is attached to the cluster",
		)
	case strings.Contains(causeText, "timeout") || strings.Contains(causeText, "canceling statement"):
		err.Code = ErrCodeSQLTimeout
		_ = err.WithSuggestions(
			"Increase the connection timeout settings",
			"Check cluster load and queue configuration",
		)
	case strings.Contains(causeText, "does not exist") || strings.Contains(causeText, "not found"):
		err.Code = ErrCodeSQLObjectNotFound
		_ = err.WithSuggestions(
			"Run 'sparkload setup' to create the tables",
			"Check the schema search path of the database user",
		)
	case strings.Contains(causeText, "syntax error"):
		err.Code = ErrCodeSQLSyntax
	}

	return err
}

// StagingError creates a bulk copy error for the statement reading source
func StagingError(message string, source string, cause error) *AppError {
	return Wrap(cause, ErrCodeStagingFailed, message).
		WithContext("source", source).
		WithSuggestions(
			"Check that the IAM role can read the source objects",
			"Verify the source region matches s3.region",
			"Run 'sparkload check' to validate the sources and the jsonpaths manifest",
		)
}

// GetErrorCode extracts the error code from an error
func GetErrorCode(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrCodeInternal
}

// truncateString truncates a string to maxLen characters
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
