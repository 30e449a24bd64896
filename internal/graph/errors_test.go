package graph

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
)

func TestStatusError(t *testing.T) {
	tests := []struct {
		name          string
		status        int
		serverMsg     string
		wantCategory  ErrorCategory
		wantRetryable bool
	}{
		{
			name:         "bad request",
			status:       http.StatusBadRequest,
			serverMsg:    "Invalid value specified for property 'mailNickname'",
			wantCategory: ErrorCategoryValidation,
		},
		{
			name:         "duplicate create reported as invalid netId",
			status:       http.StatusBadRequest,
			serverMsg:    "Another object with the same value for property netId is invalid.",
			wantCategory: ErrorCategoryConflict,
		},
		{
			name:         "duplicate create message case insensitive",
			status:       http.StatusBadRequest,
			serverMsg:    "Property netId is invalid",
			wantCategory: ErrorCategoryConflict,
		},
		{
			name:         "unauthorized",
			status:       http.StatusUnauthorized,
			wantCategory: ErrorCategoryAuthentication,
		},
		{
			name:         "forbidden",
			status:       http.StatusForbidden,
			wantCategory: ErrorCategoryPermission,
		},
		{
			name:         "not found",
			status:       http.StatusNotFound,
			wantCategory: ErrorCategoryNotFound,
		},
		{
			name:         "conflict",
			status:       http.StatusConflict,
			wantCategory: ErrorCategoryConflict,
		},
		{
			name:          "throttled",
			status:        http.StatusTooManyRequests,
			wantCategory:  ErrorCategoryServer,
			wantRetryable: true,
		},
		{
			name:          "server error",
			status:        http.StatusBadGateway,
			wantCategory:  ErrorCategoryServer,
			wantRetryable: true,
		},
		{
			name:         "unexpected status",
			status:       http.StatusTeapot,
			wantCategory: ErrorCategoryUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body odataError
			body.Error.Message = tt.serverMsg

			err := statusError("user_create", tt.status, &body)

			if err.Category != tt.wantCategory {
				t.Errorf("Category = %s, want %s", err.Category, tt.wantCategory)
			}
			if err.StatusCode != tt.status {
				t.Errorf("StatusCode = %d, want %d", err.StatusCode, tt.status)
			}
			if err.IsRetryable() != tt.wantRetryable {
				t.Errorf("IsRetryable() = %v, want %v", err.IsRetryable(), tt.wantRetryable)
			}
		})
	}
}

func TestStatusErrorPreservesServerMessage(t *testing.T) {
	var body odataError
	body.Error.Code = "Request_ResourceNotFound"
	body.Error.Message = "Resource 'xyz' does not exist"

	err := statusError("user_get", http.StatusNotFound, &body)

	if err.Code != "Request_ResourceNotFound" {
		t.Errorf("Code = %s, want Request_ResourceNotFound", err.Code)
	}
	if err.ServerMsg != "Resource 'xyz' does not exist" {
		t.Errorf("ServerMsg = %s", err.ServerMsg)
	}
}

func TestWrapError(t *testing.T) {
	t.Run("nil passes through", func(t *testing.T) {
		if WrapError("op", nil) != nil {
			t.Error("WrapError(nil) should be nil")
		}
	})

	t.Run("graph error keeps category", func(t *testing.T) {
		orig := NewError("", ErrorCategoryNotFound, "gone")
		wrapped := WrapError("user_get", orig)

		var ge *Error
		if !errors.As(wrapped, &ge) {
			t.Fatal("expected *Error")
		}
		if ge.Category != ErrorCategoryNotFound {
			t.Errorf("Category = %s, want not_found", ge.Category)
		}
		if ge.Operation != "user_get" {
			t.Errorf("Operation = %s, want user_get", ge.Operation)
		}
	})

	t.Run("existing operation not overwritten", func(t *testing.T) {
		orig := NewError("user_list", ErrorCategoryValidation, "bad filter")
		wrapped := WrapError("user_get_by_name", orig)

		var ge *Error
		if !errors.As(wrapped, &ge) {
			t.Fatal("expected *Error")
		}
		if ge.Operation != "user_list" {
			t.Errorf("Operation = %s, want user_list", ge.Operation)
		}
	})

	t.Run("transport errors become connection errors", func(t *testing.T) {
		cause := fmt.Errorf("dial tcp: connection refused")
		wrapped := WrapError("connect", cause)

		var ge *Error
		if !errors.As(wrapped, &ge) {
			t.Fatal("expected *Error")
		}
		if ge.Category != ErrorCategoryConnection {
			t.Errorf("Category = %s, want connection", ge.Category)
		}
		if !errors.Is(wrapped, cause) {
			t.Error("wrapped error should unwrap to the cause")
		}
	})
}

func TestErrorPredicates(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		predicate func(error) bool
		want      bool
	}{
		{"not found matches", NewError("op", ErrorCategoryNotFound, ""), IsNotFoundError, true},
		{"not found rejects other", NewError("op", ErrorCategoryConflict, ""), IsNotFoundError, false},
		{"conflict matches", NewError("op", ErrorCategoryConflict, ""), IsConflictError, true},
		{"validation matches", NewValidationError("op", ""), IsValidationError, true},
		{"permission matches", NewError("op", ErrorCategoryPermission, ""), IsPermissionError, true},
		{"authentication matches", NewError("op", ErrorCategoryAuthentication, ""), IsAuthenticationError, true},
		{"unsupported matches", NewUnsupportedError("op", ""), IsUnsupportedError, true},
		{"plain error never matches", errors.New("boom"), IsNotFoundError, false},
		{"nil never matches", nil, IsConflictError, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.predicate(tt.err); got != tt.want {
				t.Errorf("predicate = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestErrorString(t *testing.T) {
	err := &Error{
		Operation:  "user_create",
		Category:   ErrorCategoryConflict,
		StatusCode: 400,
		Message:    "object already exists",
		ServerMsg:  "Property netId is invalid",
		Resource:   "users",
	}

	got := err.Error()
	for _, want := range []string{"user_create", "status 400", "object already exists", "Property netId is invalid", "users"} {
		if !strings.Contains(got, want) {
			t.Errorf("Error() = %q, missing %q", got, want)
		}
	}
}
