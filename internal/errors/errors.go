package errors

import (
	"errors"
	"net/http"
)

var (
	// ErrValidation is returned when a required field is missing or empty.
	ErrValidation = errors.New("all fields are required")
	// ErrPasswordTooShort is returned when the password fails the minimum length check.
	ErrPasswordTooShort = errors.New("password must be at least 4 characters")
	// ErrUsernameTaken is returned when registering an already existing username.
	ErrUsernameTaken = errors.New("username already exists")
	// ErrInvalidCredentials is returned on any login failure. Unknown username and
	// wrong password are deliberately indistinguishable.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrInvalidToken is returned when a bearer token is missing, malformed or expired.
	ErrInvalidToken = errors.New("invalid or expired token")
	// ErrPastTime is returned when an appointment is created or moved to a time
	// that is not strictly in the future.
	ErrPastTime = errors.New("appointment time must be in the future")
	// ErrTimeSlotTaken is returned when the owner already has an active
	// appointment at the requested time.
	ErrTimeSlotTaken = errors.New("this time slot is already booked")
	// ErrNotFoundOrUnauthorized is returned when no appointment matches the given
	// id and owner. Missing records and other users' records produce the same
	// error so that existence is never leaked.
	ErrNotFoundOrUnauthorized = errors.New("appointment not found or unauthorized")
)

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Error: e.Message,
		Code:  e.Code,
	}
}

// MapErrorToHTTP maps domain errors to HTTP errors. Anything outside the domain
// taxonomy is surfaced as a generic 500 with no internal detail.
func MapErrorToHTTP(err error) *HTTPError {
	switch {
	case errors.Is(err, ErrValidation):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "VALIDATION_FAILED")
	case errors.Is(err, ErrPasswordTooShort):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "PASSWORD_TOO_SHORT")
	case errors.Is(err, ErrUsernameTaken):
		return NewHTTPError(http.StatusConflict, err.Error(), "USERNAME_TAKEN")
	case errors.Is(err, ErrInvalidCredentials):
		return NewHTTPError(http.StatusUnauthorized, err.Error(), "INVALID_CREDENTIALS")
	case errors.Is(err, ErrInvalidToken):
		return NewHTTPError(http.StatusUnauthorized, err.Error(), "UNAUTHORIZED")
	case errors.Is(err, ErrPastTime):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "PAST_TIME")
	case errors.Is(err, ErrTimeSlotTaken):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "TIME_SLOT_TAKEN")
	case errors.Is(err, ErrNotFoundOrUnauthorized):
		return NewHTTPError(http.StatusForbidden, err.Error(), "NOT_FOUND_OR_UNAUTHORIZED")
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
}
