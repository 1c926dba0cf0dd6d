package failure_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"lodge/shared/failure"
)

func TestFailure_Error(t *testing.T) {
	f := &failure.Failure{
		Code:    http.StatusBadRequest,
		Message: "test error message",
	}

	if f.Error() != "test error message" {
		t.Errorf("expected error message to be 'test error message', got %s", f.Error())
	}
}

func TestPredefinedFailures(t *testing.T) {
	tests := []struct {
		name    string
		failure *failure.Failure
		code    int
		message string
	}{
		{
			name:    "InvalidPageParam",
			failure: failure.InvalidPageParam,
			code:    http.StatusBadRequest,
			message: "invalid page parameter",
		},
		{
			name:    "InvalidLimitParam",
			failure: failure.InvalidLimitParam,
			code:    http.StatusBadRequest,
			message: "invalid limit parameter",
		},
		{
			name:    "ForbiddenError",
			failure: failure.ForbiddenError,
			code:    http.StatusForbidden,
			message: "You don't have the required permissions",
		},
		{
			name:    "ResourceRestrictedError",
			failure: failure.ResourceRestrictedError,
			code:    http.StatusForbidden,
			message: "You don't have permission to access this resource",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.failure.Code != tt.code {
				t.Errorf("expected code to be %d, got %d", tt.code, tt.failure.Code)
			}
			if tt.failure.Message != tt.message {
				t.Errorf("expected message to be %s, got %s", tt.message, tt.failure.Message)
			}
		})
	}
}

func TestBadRequest(t *testing.T) {
	tests := []struct {
		name     string
		input    error
		expected error
	}{
		{
			name:     "with error",
			input:    errors.New("validation failed"),
			expected: &failure.Failure{Code: http.StatusBadRequest, Message: "validation failed"},
		},
		{
			name:     "with nil error",
			input:    nil,
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := failure.BadRequest(tt.input)

			if tt.expected == nil {
				if result != nil {
					t.Errorf("expected nil, got %v", result)
				}
			} else {
				f, ok := result.(*failure.Failure)
				if !ok {
					t.Errorf("expected result to be *failure.Failure, got %T", result)
				} else {
					expectedF := tt.expected.(*failure.Failure)
					if f.Code != expectedF.Code || f.Message != expectedF.Message {
						t.Errorf("expected %+v, got %+v", expectedF, f)
					}
				}
			}
		})
	}
}

func TestKindConstructors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
		kind failure.Kind
	}{
		{
			name: "InvalidDateRange",
			err:  failure.InvalidDateRange("checkout must be after checkin"),
			code: http.StatusBadRequest,
			kind: failure.KindInvalidDateRange,
		},
		{
			name: "PastCheckinDate",
			err:  failure.PastCheckinDate("checkin cannot be in the past"),
			code: http.StatusBadRequest,
			kind: failure.KindPastCheckinDate,
		},
		{
			name: "RoomConflict",
			err:  failure.RoomConflict("room 5 is already reserved in this period"),
			code: http.StatusConflict,
			kind: failure.KindRoomConflict,
		},
		{
			name: "NotCancellable",
			err:  failure.NotCancellable("this reservation can no longer be cancelled"),
			code: http.StatusUnprocessableEntity,
			kind: failure.KindNotCancellable,
		},
		{
			name: "NotFound",
			err:  failure.NotFound("reservation not found"),
			code: http.StatusNotFound,
			kind: failure.KindNotFound,
		},
		{
			name: "Forbidden",
			err:  failure.Forbidden("staff only"),
			code: http.StatusForbidden,
			kind: failure.KindForbidden,
		},
		{
			name: "StoreFailure",
			err:  failure.StoreFailure(errors.New("connection reset")),
			code: http.StatusInternalServerError,
			kind: failure.KindStoreFailure,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := failure.GetCode(tt.err); got != tt.code {
				t.Errorf("expected code %d, got %d", tt.code, got)
			}
			if got := failure.GetKind(tt.err); got != tt.kind {
				t.Errorf("expected kind %s, got %s", tt.kind, got)
			}
			if !failure.IsKind(tt.err, tt.kind) {
				t.Errorf("expected IsKind to report %s", tt.kind)
			}
		})
	}
}

func TestGetKind_Wrapped(t *testing.T) {
	err := failure.RoomConflict("room 5 is already reserved in this period")
	wrapped := fmt.Errorf("create reservation: %w", err)

	if got := failure.GetKind(wrapped); got != failure.KindRoomConflict {
		t.Errorf("expected kind to survive wrapping, got %s", got)
	}
}

func TestGetKind_PlainError(t *testing.T) {
	if got := failure.GetKind(errors.New("plain")); got != "" {
		t.Errorf("expected empty kind for plain error, got %s", got)
	}
}

func TestStoreFailure_Nil(t *testing.T) {
	if failure.StoreFailure(nil) != nil {
		t.Error("expected nil for nil error")
	}
}

func TestGetCode_PlainError(t *testing.T) {
	if got := failure.GetCode(errors.New("boom")); got != http.StatusInternalServerError {
		t.Errorf("expected %d for plain error, got %d", http.StatusInternalServerError, got)
	}
}
