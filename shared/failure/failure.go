package failure

import (
	"errors"
	"net/http"
)

// Kind discriminates business-rule failures so callers can branch on the
// rule that failed instead of matching message strings.
type Kind string

const (
	KindInvalidDateRange Kind = "invalid_date_range"
	KindPastCheckinDate  Kind = "past_checkin_date"
	KindRoomConflict     Kind = "room_conflict"
	KindNotCancellable   Kind = "not_cancellable"
	KindNotFound         Kind = "not_found"
	KindForbidden        Kind = "forbidden"
	KindStoreFailure     Kind = "store_failure"
)

// Failure is a wrapper for error messages and codes using standard HTTP response codes.
type Failure struct {
	Code    int    `json:"code"`
	Kind    Kind   `json:"kind,omitempty"`
	Message string `json:"message"`
}

var InvalidPageParam = &Failure{Code: http.StatusBadRequest, Message: "invalid page parameter"}
var InvalidLimitParam = &Failure{Code: http.StatusBadRequest, Message: "invalid limit parameter"}
var ForbiddenError = &Failure{Code: http.StatusForbidden, Kind: KindForbidden, Message: "You don't have the required permissions"}
var ResourceRestrictedError = &Failure{Code: http.StatusForbidden, Kind: KindForbidden, Message: "You don't have permission to access this resource"}

// Error returns the error message.
func (e *Failure) Error() string {
	return e.Message
}

// BadRequest returns a new Failure with code for bad requests.
func BadRequest(err error) error {
	if err != nil {
		return &Failure{
			Code:    http.StatusBadRequest,
			Message: err.Error(),
		}
	}

	return nil
}

// BadRequestFromString returns a new Failure with code for bad requests with message set from string.
func BadRequestFromString(msg string) error {
	return &Failure{
		Code:    http.StatusBadRequest,
		Message: msg,
	}
}

// InvalidDateRange flags a checkin/checkout pair that is missing or not strictly increasing.
func InvalidDateRange(msg string) error {
	return &Failure{
		Code:    http.StatusBadRequest,
		Kind:    KindInvalidDateRange,
		Message: msg,
	}
}

// PastCheckinDate flags a new reservation whose check-in precedes today.
func PastCheckinDate(msg string) error {
	return &Failure{
		Code:    http.StatusBadRequest,
		Kind:    KindPastCheckinDate,
		Message: msg,
	}
}

// RoomConflict flags an overlapping confirmed reservation on the same room.
func RoomConflict(msg string) error {
	return &Failure{
		Code:    http.StatusConflict,
		Kind:    KindRoomConflict,
		Message: msg,
	}
}

// NotCancellable flags a cancellation attempted outside the allowed window or status.
func NotCancellable(msg string) error {
	return &Failure{
		Code:    http.StatusUnprocessableEntity,
		Kind:    KindNotCancellable,
		Message: msg,
	}
}

// Unauthorized returns a new Failure with code for unauthorized requests.
func Unauthorized(msg string) error {
	return &Failure{
		Code:    http.StatusUnauthorized,
		Message: msg,
	}
}

// InternalError returns a new Failure with code for internal error and message derived from an error interface.
func InternalError(err error) error {
	if err != nil {
		return &Failure{
			Code:    http.StatusInternalServerError,
			Message: err.Error(),
		}
	}

	return nil
}

// StoreFailure wraps a persistence-layer error. It is surfaced unchanged and
// never retried by the caller.
func StoreFailure(err error) error {
	if err != nil {
		return &Failure{
			Code:    http.StatusInternalServerError,
			Kind:    KindStoreFailure,
			Message: err.Error(),
		}
	}

	return nil
}

// NotFound returns a new Failure with code for entity not found.
func NotFound(entityName string) error {
	return &Failure{
		Code:    http.StatusNotFound,
		Kind:    KindNotFound,
		Message: entityName,
	}
}

// Conflict returns a new Failure with code for conflict situations.
func Conflict(message string) error {
	return &Failure{
		Code:    http.StatusConflict,
		Message: message,
	}
}

func Forbidden(msg string) error {
	return &Failure{
		Code:    http.StatusForbidden,
		Kind:    KindForbidden,
		Message: msg,
	}
}

// GetCode returns the error code of an error interface.
func GetCode(err error) int {
	var fail *Failure
	if errors.As(err, &fail) {
		return fail.Code
	}

	return http.StatusInternalServerError
}

// GetKind returns the discriminated kind of an error interface, if any.
func GetKind(err error) Kind {
	var fail *Failure
	if errors.As(err, &fail) {
		return fail.Kind
	}

	return ""
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return GetKind(err) == kind
}
