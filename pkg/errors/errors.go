// Package errors defines the machine-readable error contract of the
// reputation API. Every client-caused failure carries a stable error id
// surfaced as HTTP 400; error ids are part of the wire contract and must
// not change between releases.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error ids surfaced to API clients.
const (
	IDBadArguments     = "bad_arguments"
	IDInvalidAddress   = "invalid_address"
	IDInvalidRating    = "invalid_rating"
	IDInvalidReview    = "invalid_review"
	IDInvalidReviewee  = "invalid_reviewee"
	IDInvalidDate      = "invalid_date"
	IDInvalidSignature = "invalid_signature"
	IDNoExistingReview = "no_existing_review_found"
	IDInternalError    = "internal_error"
)

// Sentinel errors for errors.Is checks across layers.
var (
	ErrNotFound     = errors.New("resource not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrInternal     = errors.New("internal error")
)

// APIError is a structured application error with a stable wire id and an
// HTTP status mapping.
type APIError struct {
	ID      string `json:"id"`
	Message string `json:"message"`
	Status  int    `json:"-"`
	Err     error  `json:"-"`
}

func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.ID, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.ID, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// BadArguments reports a request with missing or malformed arguments.
func BadArguments() *APIError {
	return &APIError{
		ID:      IDBadArguments,
		Message: "Bad Arguments",
		Status:  http.StatusBadRequest,
		Err:     ErrInvalidInput,
	}
}

// InvalidAddress reports a malformed user identifier. The message names the
// offending field when one is given.
func InvalidAddress(field string) *APIError {
	msg := "Invalid Address"
	if field != "" {
		msg = fmt.Sprintf("Invalid Address for `%s`", field)
	}
	return &APIError{
		ID:      IDInvalidAddress,
		Message: msg,
		Status:  http.StatusBadRequest,
		Err:     ErrInvalidInput,
	}
}

// InvalidRating reports a rating that is non-scalar, non-finite, or out of range.
func InvalidRating() *APIError {
	return &APIError{
		ID:      IDInvalidRating,
		Message: "Invalid Rating",
		Status:  http.StatusBadRequest,
		Err:     ErrInvalidInput,
	}
}

// InvalidReview reports review text that is not a string.
func InvalidReview() *APIError {
	return &APIError{
		ID:      IDInvalidReview,
		Message: "Invalid Review",
		Status:  http.StatusBadRequest,
		Err:     ErrInvalidInput,
	}
}

// InvalidReviewee reports an attempt to review oneself.
func InvalidReviewee() *APIError {
	return &APIError{
		ID:      IDInvalidReviewee,
		Message: "Cannot review yourself!",
		Status:  http.StatusBadRequest,
		Err:     ErrInvalidInput,
	}
}

// InvalidDate reports an unparsable timestamp argument.
func InvalidDate(field string) *APIError {
	msg := "Invalid Date"
	if field != "" {
		msg = fmt.Sprintf("Invalid date for `%s`", field)
	}
	return &APIError{
		ID:      IDInvalidDate,
		Message: msg,
		Status:  http.StatusBadRequest,
		Err:     ErrInvalidInput,
	}
}

// InvalidSignature reports a mutating request whose signature headers are
// missing, stale, or do not verify.
func InvalidSignature() *APIError {
	return &APIError{
		ID:      IDInvalidSignature,
		Message: "Invalid Signature",
		Status:  http.StatusBadRequest,
		Err:     ErrInvalidInput,
	}
}

// NoExistingReview reports an update against a pair with no stored review.
// Deliberately mapped to 400, not 404, to keep a uniform client contract.
func NoExistingReview() *APIError {
	return &APIError{
		ID:      IDNoExistingReview,
		Message: "A review for that reviewee was not found to update",
		Status:  http.StatusBadRequest,
		Err:     ErrNotFound,
	}
}

// Internal wraps an unexpected server-side failure.
func Internal(err error) *APIError {
	return &APIError{
		ID:      IDInternalError,
		Message: "An internal error occurred",
		Status:  http.StatusInternalServerError,
		Err:     err,
	}
}

// Wrap annotates an error with additional context.
func Wrap(err error, message string) error {
	return fmt.Errorf("%s: %w", message, err)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain matching target.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// HTTPStatus returns the HTTP status code for the given error.
func HTTPStatus(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}

	switch {
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrNotFound):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
