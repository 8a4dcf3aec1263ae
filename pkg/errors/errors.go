// Package errors provides structured error types for tempchart.
// Errors carry a stable code, a category, key/value context, an optional
// cause and remediation suggestions for the user.
package errors

import (
	stderrors "errors"
	"fmt"
	"sort"
	"strings"
)

// Category classifies errors for consistent handling and display.
type Category string

const (
	CategoryConfig   Category = "config"   // Configuration loading/parsing errors
	CategoryChart    Category = "chart"    // Chart configuration and layout errors
	CategoryRender   Category = "render"   // Drawing and serialization errors
	CategoryIO       Category = "io"       // File/IO errors
	CategoryStorage  Category = "storage"  // Object storage errors
	CategoryCommand  Category = "command"  // Shell command errors
	CategoryNetwork  Category = "network"  // Server/connectivity errors
	CategoryInternal Category = "internal" // Internal/unexpected errors
)

// ChartError is a structured error with context and suggestions.
type ChartError struct {
	// Code is a unique identifier for this error type (e.g., "OUTPUT_WRITE_FAILED")
	Code string

	// Category classifies this error for consistent handling
	Category Category

	// Message is the primary error message describing what went wrong
	Message string

	// Context provides additional key-value details about the error
	Context map[string]string

	// Cause is the underlying error that triggered this error
	Cause error

	// Suggestions are actionable remediation steps for the user
	Suggestions []string
}

// Error implements the error interface.
func (e *ChartError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is and errors.As.
func (e *ChartError) Unwrap() error {
	return e.Cause
}

// Is reports whether e matches target. Two ChartErrors match if they have
// the same Code.
func (e *ChartError) Is(target error) bool {
	if t, ok := target.(*ChartError); ok {
		return e.Code == t.Code
	}
	return false
}

// New creates a new ChartError with the given code, category, and message.
func New(code string, category Category, message string) *ChartError {
	return &ChartError{
		Code:     code,
		Category: category,
		Message:  message,
		Context:  make(map[string]string),
	}
}

// Newf creates a new ChartError with a formatted message.
func Newf(code string, category Category, format string, args ...interface{}) *ChartError {
	return New(code, category, fmt.Sprintf(format, args...))
}

// Wrap wraps an existing error with a ChartError.
func Wrap(err error, code string, category Category, message string) *ChartError {
	return New(code, category, message).WithCause(err)
}

// WithContext adds a context key-value pair and returns the error for chaining.
func (e *ChartError) WithContext(key, value string) *ChartError {
	if e.Context == nil {
		e.Context = make(map[string]string)
	}
	e.Context[key] = value
	return e
}

// WithCause wraps an underlying error and returns the error for chaining.
func (e *ChartError) WithCause(cause error) *ChartError {
	e.Cause = cause
	return e
}

// WithSuggestion adds a remediation suggestion and returns the error for chaining.
func (e *ChartError) WithSuggestion(suggestion string) *ChartError {
	e.Suggestions = append(e.Suggestions, suggestion)
	return e
}

// WithSuggestions adds multiple remediation suggestions.
func (e *ChartError) WithSuggestions(suggestions ...string) *ChartError {
	e.Suggestions = append(e.Suggestions, suggestions...)
	return e
}

// HasContext returns true if the error has context information.
func (e *ChartError) HasContext() bool {
	return len(e.Context) > 0
}

// HasSuggestions returns true if the error has suggestions.
func (e *ChartError) HasSuggestions() bool {
	return len(e.Suggestions) > 0
}

// ContextString returns the context entries as sorted key="value" pairs.
func (e *ChartError) ContextString() string {
	if len(e.Context) == 0 {
		return ""
	}
	keys := make([]string, 0, len(e.Context))
	for k := range e.Context {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%q", k, e.Context[k]))
	}
	return strings.Join(parts, ", ")
}

// AsChartError finds the first ChartError in err's chain.
func AsChartError(err error) (*ChartError, bool) {
	if err == nil {
		return nil, false
	}
	var ce *ChartError
	if stderrors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}

// IsCategory checks if an error is a ChartError with the given category.
func IsCategory(err error, category Category) bool {
	if ce, ok := AsChartError(err); ok {
		return ce.Category == category
	}
	return false
}

// IsCode checks if an error is a ChartError with the given code.
func IsCode(err error, code string) bool {
	if ce, ok := AsChartError(err); ok {
		return ce.Code == code
	}
	return false
}

// -----------------------------------------------------------------------------
// Constructors with Auto-Attached Suggestions
// -----------------------------------------------------------------------------

// Config creates a configuration error with registered suggestions attached.
func Config(code, message string) *ChartError {
	return AttachSuggestions(New(code, CategoryConfig, message))
}

// ConfigWrap wraps an error as a configuration error.
func ConfigWrap(cause error, code, message string) *ChartError {
	return AttachSuggestions(Wrap(cause, code, CategoryConfig, message))
}

// Chart creates a chart configuration/layout error.
func Chart(code, message string) *ChartError {
	return AttachSuggestions(New(code, CategoryChart, message))
}

// Chartf creates a chart error with a formatted message.
func Chartf(code, format string, args ...interface{}) *ChartError {
	return Chart(code, fmt.Sprintf(format, args...))
}

// RenderWrap wraps an error raised while drawing or encoding a page.
func RenderWrap(cause error, code, message string) *ChartError {
	return AttachSuggestions(Wrap(cause, code, CategoryRender, message))
}

// IOWrap wraps an error as a file/IO error.
func IOWrap(cause error, code, message string) *ChartError {
	return AttachSuggestions(Wrap(cause, code, CategoryIO, message))
}

// StorageWrap wraps an error raised by an object storage sink.
func StorageWrap(cause error, code, message string) *ChartError {
	return AttachSuggestions(Wrap(cause, code, CategoryStorage, message))
}

// Command creates a shell command error.
func Command(code, message string) *ChartError {
	return AttachSuggestions(New(code, CategoryCommand, message))
}

// Commandf creates a shell command error with a formatted message.
func Commandf(code, format string, args ...interface{}) *ChartError {
	return Command(code, fmt.Sprintf(format, args...))
}

// NetworkWrap wraps an error raised by the HTTP server.
func NetworkWrap(cause error, code, message string) *ChartError {
	return AttachSuggestions(Wrap(cause, code, CategoryNetwork, message))
}

// InternalWrap wraps an unexpected error.
func InternalWrap(cause error, code, message string) *ChartError {
	return AttachSuggestions(Wrap(cause, code, CategoryInternal, message))
}
