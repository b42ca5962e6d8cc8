package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Standard application errors
var (
	ErrEmptyInput      = errors.New("input is empty or contains only whitespace")
	ErrInvalidJSON     = errors.New("invalid JSON format")
	ErrInvalidValue    = errors.New("invalid value")
	ErrDuplicateKey    = errors.New("duplicate object key")
	ErrMultipleJSON    = errors.New("multiple JSON values found at the root, only one is allowed")
	ErrFileNotFound    = errors.New("file not found")
	ErrFileEmpty       = errors.New("file is empty")
	ErrNoInput         = errors.New("no input provided: please pass both --expected and --actual")
	ErrInvalidFilePath = errors.New("invalid file path")
	ErrStdinConflict   = errors.New("stdin can feed only one of --expected and --actual")
	ErrDepthExceeded   = errors.New("maximum nesting depth exceeded")
	ErrMissingField    = errors.New("missing required field")
	ErrUnknownFormat   = errors.New("unknown output format")
	ErrInvalidConfig   = errors.New("invalid configuration value")
)

// ErrorType categorizes errors
type ErrorType string

const (
	ErrorTypeInput   ErrorType = "input"
	ErrorTypeParsing ErrorType = "parsing"
	ErrorTypeDepth   ErrorType = "depth"
	ErrorTypeRequest ErrorType = "request"
	ErrorTypeConfig  ErrorType = "config"
	ErrorTypeOutput  ErrorType = "output"
	ErrorTypeUnknown ErrorType = "unknown"
)

// AppError is an application-specific error with context
type AppError struct {
	Type    ErrorType
	Message string
	Err     error
}

// Error implements error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns wrapped error
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is for comparison
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Type == t.Type
}

// NewInputError creates a new error related to reading input
func NewInputError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeInput,
		Message: message,
		Err:     err,
	}
}

// NewParsingError creates a new error for input that cannot become a value tree.
// These are the InvalidValue failures of the comparison boundary.
func NewParsingError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeParsing,
		Message: message,
		Err:     err,
	}
}

// NewDepthError creates a new error for a tripped nesting guard
func NewDepthError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeDepth,
		Message: message,
		Err:     err,
	}
}

// NewRequestError creates a new error for a malformed HTTP request
func NewRequestError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeRequest,
		Message: message,
		Err:     err,
	}
}

// NewConfigError creates a new error related to configuration
func NewConfigError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeConfig,
		Message: message,
		Err:     err,
	}
}

// NewOutputError creates a new error related to output processing
func NewOutputError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeOutput,
		Message: message,
		Err:     err,
	}
}

// Annotate prefixes the message of an AppError, keeping its type and cause
func Annotate(err error, prefix string) error {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return &AppError{
			Type:    appErr.Type,
			Message: prefix + ": " + appErr.Message,
			Err:     appErr.Err,
		}
	}
	return fmt.Errorf("%s: %w", prefix, err)
}

// TypeOf returns the ErrorType of err, or ErrorTypeUnknown when err is not an AppError
func TypeOf(err error) ErrorType {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type
	}
	return ErrorTypeUnknown
}

// HTTPStatus maps an error to the status code the compare service answers with
func HTTPStatus(err error) int {
	if errors.Is(err, ErrMissingField) {
		return http.StatusUnprocessableEntity
	}
	switch TypeOf(err) {
	case ErrorTypeInput, ErrorTypeParsing, ErrorTypeRequest:
		return http.StatusBadRequest
	case ErrorTypeDepth:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// UserFriendlyError returns a user-friendly error message
func UserFriendlyError(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		switch appErr.Type {
		case ErrorTypeInput:
			return fmt.Sprintf("Input error: %s", appErr.Message)
		case ErrorTypeParsing:
			return fmt.Sprintf("JSON parsing error: %s", appErr.Message)
		case ErrorTypeDepth:
			return fmt.Sprintf("Resource limit error: %s", appErr.Message)
		case ErrorTypeRequest:
			return fmt.Sprintf("Request error: %s", appErr.Message)
		case ErrorTypeConfig:
			return fmt.Sprintf("Configuration error: %s", appErr.Message)
		case ErrorTypeOutput:
			return fmt.Sprintf("Output error: %s", appErr.Message)
		default:
			return fmt.Sprintf("Error: %s", appErr.Message)
		}
	}

	// Handle standard errors
	if errors.Is(err, ErrEmptyInput) {
		return "Error: The input is empty. Please provide valid JSON data."
	}
	if errors.Is(err, ErrInvalidJSON) {
		return "Error: The input contains invalid JSON. Please check your JSON syntax."
	}
	if errors.Is(err, ErrMultipleJSON) {
		return "Error: Multiple JSON values found. Please provide a single JSON value."
	}
	if errors.Is(err, ErrFileNotFound) {
		return "Error: The specified file could not be found. Please check the file path."
	}
	if errors.Is(err, ErrFileEmpty) {
		return "Error: The specified file is empty. Please provide a file with valid JSON content."
	}
	if errors.Is(err, ErrNoInput) {
		return "Error: No input provided. Please pass both --expected and --actual."
	}
	if errors.Is(err, ErrStdinConflict) {
		return "Error: Only one of --expected and --actual can be read from stdin."
	}
	if errors.Is(err, ErrDepthExceeded) {
		return "Error: The input is nested too deeply. Raise --max-depth or simplify the input."
	}

	// Generic error message for unknown errors
	return fmt.Sprintf("Error: %v", err)
}
