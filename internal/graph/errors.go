package graph

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrorCategory represents different categories of Graph errors.
type ErrorCategory string

const (
	ErrorCategoryAuthentication ErrorCategory = "authentication"
	ErrorCategoryConnection     ErrorCategory = "connection"
	ErrorCategoryPermission     ErrorCategory = "permission"
	ErrorCategoryNotFound       ErrorCategory = "not_found"
	ErrorCategoryConflict       ErrorCategory = "conflict"
	ErrorCategoryValidation     ErrorCategory = "validation"
	ErrorCategoryUnsupported    ErrorCategory = "unsupported"
	ErrorCategoryServer         ErrorCategory = "server"
	ErrorCategoryUnknown        ErrorCategory = "unknown"
)

// Error provides enhanced error information for Graph operations.
type Error struct {
	Operation  string        // The operation that failed
	Category   ErrorCategory // Error category
	StatusCode int           // HTTP status code (0 if the request never completed)
	Code       string        // Graph OData error code
	Message    string        // Human-readable message
	ServerMsg  string        // Server-provided message
	Resource   string        // Resource involved in the operation (if applicable)
	Retryable  bool          // Whether the error is retryable
	Cause      error         // Underlying error
}

func (e *Error) Error() string {
	var parts []string

	if e.StatusCode > 0 {
		parts = append(parts, fmt.Sprintf("graph %s failed (status %d)", e.Operation, e.StatusCode))
	} else {
		parts = append(parts, fmt.Sprintf("graph %s failed", e.Operation))
	}

	if e.Message != "" {
		parts = append(parts, e.Message)
	}

	if e.ServerMsg != "" && e.ServerMsg != e.Message {
		parts = append(parts, fmt.Sprintf("server: %s", e.ServerMsg))
	}

	if e.Resource != "" {
		parts = append(parts, fmt.Sprintf("resource: %s", e.Resource))
	}

	return strings.Join(parts, " - ")
}

func (e *Error) IsRetryable() bool {
	return e.Retryable
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// GetCategory returns the error category.
func (e *Error) GetCategory() ErrorCategory {
	return e.Category
}

// odataError is the Graph error response envelope.
type odataError struct {
	Error struct {
		Code       string `json:"code"`
		Message    string `json:"message"`
		InnerError struct {
			RequestID string `json:"request-id"`
			Date      string `json:"date"`
		} `json:"innerError"`
	} `json:"error"`
}

// statusError builds an Error from an HTTP status and decoded OData error
// body. The Graph API reports an attempt to create a duplicate user as a 400
// complaining that the netId property is invalid, so that specific message is
// promoted to a conflict.
func statusError(operation string, status int, body *odataError) *Error {
	e := &Error{
		Operation:  operation,
		StatusCode: status,
	}
	if body != nil {
		e.Code = body.Error.Code
		e.ServerMsg = body.Error.Message
	}

	switch status {
	case http.StatusBadRequest:
		if strings.Contains(strings.ToLower(e.ServerMsg), "property netid is invalid") {
			e.Category = ErrorCategoryConflict
			e.Message = "object already exists"
		} else {
			e.Category = ErrorCategoryValidation
			e.Message = "invalid request"
		}
	case http.StatusUnauthorized:
		e.Category = ErrorCategoryAuthentication
		e.Message = "authentication failed"
	case http.StatusForbidden:
		e.Category = ErrorCategoryPermission
		e.Message = "insufficient privileges"
	case http.StatusNotFound:
		e.Category = ErrorCategoryNotFound
		e.Message = "object not found"
	case http.StatusConflict:
		e.Category = ErrorCategoryConflict
		e.Message = "object already exists"
	case http.StatusTooManyRequests:
		e.Category = ErrorCategoryServer
		e.Message = "request throttled"
		e.Retryable = true
	default:
		if status >= 500 {
			e.Category = ErrorCategoryServer
			e.Message = "server error"
			e.Retryable = true
		} else {
			e.Category = ErrorCategoryUnknown
			e.Message = "unexpected response"
		}
	}

	return e
}

// NewError creates a Graph error with an explicit category.
func NewError(operation string, category ErrorCategory, message string) *Error {
	return &Error{
		Operation: operation,
		Category:  category,
		Message:   message,
	}
}

// NewValidationError creates a validation error for bad caller input.
func NewValidationError(operation, message string) *Error {
	return NewError(operation, ErrorCategoryValidation, message)
}

// NewUnsupportedError creates an error for operations the directory does not
// allow on the given resource type.
func NewUnsupportedError(operation, message string) *Error {
	return NewError(operation, ErrorCategoryUnsupported, message)
}

// WrapError wraps an error with operation context. Graph errors pass through
// with the original categorization preserved; anything else (transport
// failures, token acquisition) becomes a connection error.
func WrapError(operation string, err error) error {
	if err == nil {
		return nil
	}

	var ge *Error
	if errors.As(err, &ge) {
		if ge.Operation == "" {
			ge.Operation = operation
		}
		return ge
	}

	return &Error{
		Operation: operation,
		Category:  ErrorCategoryConnection,
		Message:   err.Error(),
		Retryable: true,
		Cause:     err,
	}
}

// IsNotFoundError checks if the error indicates a missing object.
func IsNotFoundError(err error) bool {
	return hasCategory(err, ErrorCategoryNotFound)
}

// IsConflictError checks if the error indicates the object already exists.
func IsConflictError(err error) bool {
	return hasCategory(err, ErrorCategoryConflict)
}

// IsValidationError checks if the error indicates invalid input.
func IsValidationError(err error) bool {
	return hasCategory(err, ErrorCategoryValidation)
}

// IsPermissionError checks if the error indicates missing privileges.
func IsPermissionError(err error) bool {
	return hasCategory(err, ErrorCategoryPermission)
}

// IsAuthenticationError checks if the error indicates failed credentials.
func IsAuthenticationError(err error) bool {
	return hasCategory(err, ErrorCategoryAuthentication)
}

// IsUnsupportedError checks if the error indicates an unsupported operation.
func IsUnsupportedError(err error) bool {
	return hasCategory(err, ErrorCategoryUnsupported)
}

func hasCategory(err error, category ErrorCategory) bool {
	var ge *Error
	if errors.As(err, &ge) {
		return ge.Category == category
	}
	return false
}
