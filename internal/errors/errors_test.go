package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		appError *AppError
		expected string
	}{
		{
			name: "error with wrapped error",
			appError: &AppError{
				Type:    ErrorTypeInput,
				Message: "failed to read input",
				Err:     errors.New("file not found"),
			},
			expected: "input: failed to read input: file not found",
		},
		{
			name: "error without wrapped error",
			appError: &AppError{
				Type:    ErrorTypeParsing,
				Message: "invalid JSON syntax",
				Err:     nil,
			},
			expected: "parsing: invalid JSON syntax",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.appError.Error()
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	wrappedErr := errors.New("wrapped error")
	appErr := &AppError{
		Type:    ErrorTypeInput,
		Message: "test message",
		Err:     wrappedErr,
	}

	result := appErr.Unwrap()
	assert.Equal(t, wrappedErr, result)
}

func TestAppError_Is(t *testing.T) {
	tests := []struct {
		name     string
		appError *AppError
		target   error
		expected bool
	}{
		{
			name: "same type",
			appError: &AppError{
				Type:    ErrorTypeInput,
				Message: "test message",
				Err:     nil,
			},
			target: &AppError{
				Type:    ErrorTypeInput,
				Message: "different message",
				Err:     errors.New("some error"),
			},
			expected: true,
		},
		{
			name: "different type",
			appError: &AppError{
				Type:    ErrorTypeInput,
				Message: "test message",
				Err:     nil,
			},
			target: &AppError{
				Type:    ErrorTypeParsing,
				Message: "test message",
				Err:     nil,
			},
			expected: false,
		},
		{
			name: "not an AppError",
			appError: &AppError{
				Type:    ErrorTypeInput,
				Message: "test message",
				Err:     nil,
			},
			target:   errors.New("standard error"),
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.appError.Is(tt.target)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestUserFriendlyError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "input error",
			err:      NewInputError("failed to read file", nil),
			expected: "Input error: failed to read file",
		},
		{
			name:     "parsing error",
			err:      NewParsingError("invalid JSON syntax", nil),
			expected: "JSON parsing error: invalid JSON syntax",
		},
		{
			name:     "depth error",
			err:      NewDepthError("nesting exceeds 512 levels", ErrDepthExceeded),
			expected: "Resource limit error: nesting exceeds 512 levels",
		},
		{
			name:     "request error",
			err:      NewRequestError("request body is not valid JSON", nil),
			expected: "Request error: request body is not valid JSON",
		},
		{
			name:     "config error",
			err:      NewConfigError("unknown output format", nil),
			expected: "Configuration error: unknown output format",
		},
		{
			name:     "output error",
			err:      NewOutputError("failed to write output", nil),
			expected: "Output error: failed to write output",
		},
		{
			name:     "standard error - empty input",
			err:      ErrEmptyInput,
			expected: "Error: The input is empty. Please provide valid JSON data.",
		},
		{
			name:     "standard error - invalid JSON",
			err:      ErrInvalidJSON,
			expected: "Error: The input contains invalid JSON. Please check your JSON syntax.",
		},
		{
			name:     "standard error - depth exceeded",
			err:      ErrDepthExceeded,
			expected: "Error: The input is nested too deeply. Raise --max-depth or simplify the input.",
		},
		{
			name:     "standard error - stdin conflict",
			err:      ErrStdinConflict,
			expected: "Error: Only one of --expected and --actual can be read from stdin.",
		},
		{
			name:     "unknown error",
			err:      errors.New("some unknown error"),
			expected: "Error: some unknown error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := UserFriendlyError(tt.err)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestTypeOf(t *testing.T) {
	assert.Equal(t, ErrorTypeDepth, TypeOf(NewDepthError("too deep", ErrDepthExceeded)))
	assert.Equal(t, ErrorTypeParsing, TypeOf(fmt.Errorf("expected: %w", NewParsingError("bad", ErrInvalidValue))))
	assert.Equal(t, ErrorTypeUnknown, TypeOf(errors.New("plain")))
	assert.Equal(t, ErrorTypeUnknown, TypeOf(nil))
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"parsing", NewParsingError("bad json", ErrInvalidJSON), http.StatusBadRequest},
		{"request", NewRequestError("bad body", nil), http.StatusBadRequest},
		{"input", NewInputError("empty", ErrEmptyInput), http.StatusBadRequest},
		{"missing field", NewRequestError("missing actual", ErrMissingField), http.StatusUnprocessableEntity},
		{"depth", NewDepthError("too deep", ErrDepthExceeded), http.StatusUnprocessableEntity},
		{"output", NewOutputError("write failed", nil), http.StatusInternalServerError},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, HTTPStatus(tt.err))
		})
	}
}

func TestAppError_WrapsSentinel(t *testing.T) {
	err := NewParsingError("duplicate key \"a\"", fmt.Errorf("%w: %w", ErrInvalidValue, ErrDuplicateKey))

	assert.True(t, errors.Is(err, ErrInvalidValue))
	assert.True(t, errors.Is(err, ErrDuplicateKey))
	assert.False(t, errors.Is(err, ErrDepthExceeded))
	assert.True(t, errors.Is(err, &AppError{Type: ErrorTypeParsing}))
}

func TestAnnotate(t *testing.T) {
	base := NewParsingError("JSON syntax error at offset 3", ErrInvalidJSON)

	annotated := Annotate(base, "expected")
	assert.Equal(t, ErrorTypeParsing, TypeOf(annotated))
	assert.True(t, errors.Is(annotated, ErrInvalidJSON))
	assert.Equal(t, "JSON parsing error: expected: JSON syntax error at offset 3", UserFriendlyError(annotated))

	plain := Annotate(ErrFileEmpty, "actual")
	assert.Equal(t, "actual: file is empty", plain.Error())
	assert.True(t, errors.Is(plain, ErrFileEmpty))
}
