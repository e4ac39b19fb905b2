package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Sentinel error identity ---

func TestSentinelErrors_AreDistinct(t *testing.T) {
	sentinels := []error{ErrNotFound, ErrInvalidInput, ErrInternal}

	for i := 0; i < len(sentinels); i++ {
		for j := i + 1; j < len(sentinels); j++ {
			assert.NotEqual(t, sentinels[i], sentinels[j],
				"sentinels %d and %d should be distinct", i, j)
		}
	}
}

// --- APIError behavior ---

func TestAPIError_ErrorString_WithWrappedError(t *testing.T) {
	inner := fmt.Errorf("db connection lost")
	apiErr := &APIError{ID: IDInternalError, Message: "something broke", Err: inner}
	assert.Contains(t, apiErr.Error(), IDInternalError)
	assert.Contains(t, apiErr.Error(), "something broke")
	assert.Contains(t, apiErr.Error(), "db connection lost")
}

func TestAPIError_ErrorString_WithoutWrappedError(t *testing.T) {
	apiErr := &APIError{ID: IDBadArguments, Message: "Bad Arguments"}
	assert.Equal(t, "bad_arguments: Bad Arguments", apiErr.Error())
}

func TestAPIError_Unwrap(t *testing.T) {
	apiErr := &APIError{ID: IDNoExistingReview, Message: "nope", Err: ErrNotFound}
	assert.True(t, errors.Is(apiErr, ErrNotFound))
}

func TestAPIError_Unwrap_Nil(t *testing.T) {
	apiErr := &APIError{ID: "test", Message: "test"}
	assert.Nil(t, apiErr.Unwrap())
}

// --- Constructor functions ---

func TestValidationConstructors(t *testing.T) {
	tests := []struct {
		name string
		err  *APIError
		id   string
	}{
		{"bad arguments", BadArguments(), IDBadArguments},
		{"invalid address", InvalidAddress("reviewer"), IDInvalidAddress},
		{"invalid rating", InvalidRating(), IDInvalidRating},
		{"invalid review", InvalidReview(), IDInvalidReview},
		{"invalid reviewee", InvalidReviewee(), IDInvalidReviewee},
		{"invalid date", InvalidDate("oldest"), IDInvalidDate},
		{"invalid signature", InvalidSignature(), IDInvalidSignature},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NotNil(t, tt.err)
			assert.Equal(t, tt.id, tt.err.ID)
			assert.Equal(t, http.StatusBadRequest, tt.err.Status)
			assert.True(t, errors.Is(tt.err, ErrInvalidInput))
		})
	}
}

func TestInvalidAddress_NamesField(t *testing.T) {
	assert.Contains(t, InvalidAddress("reviewee").Message, "reviewee")
	assert.Equal(t, "Invalid Address", InvalidAddress("").Message)
}

func TestInvalidDate_NamesField(t *testing.T) {
	assert.Contains(t, InvalidDate("oldest").Message, "oldest")
	assert.Equal(t, "Invalid Date", InvalidDate("").Message)
}

func TestNoExistingReview(t *testing.T) {
	err := NoExistingReview()
	require.NotNil(t, err)
	assert.Equal(t, IDNoExistingReview, err.ID)
	// Updates against an absent review are a client error, not a 404.
	assert.Equal(t, http.StatusBadRequest, err.Status)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestInternal(t *testing.T) {
	inner := fmt.Errorf("segfault")
	err := Internal(inner)
	require.NotNil(t, err)
	assert.Equal(t, IDInternalError, err.ID)
	assert.Equal(t, http.StatusInternalServerError, err.Status)
	assert.Contains(t, err.Error(), "segfault")
}

// --- Wrap ---

func TestWrap(t *testing.T) {
	wrapped := Wrap(ErrNotFound, "load review")
	assert.Contains(t, wrapped.Error(), "load review")
	assert.True(t, errors.Is(wrapped, ErrNotFound))
}

// --- HTTPStatus ---

func TestHTTPStatus_APIError(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(InvalidRating()))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(Internal(nil)))
}

func TestHTTPStatus_WrappedAPIError(t *testing.T) {
	wrapped := fmt.Errorf("outer: %w", NoExistingReview())
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(wrapped))
}

func TestHTTPStatus_SentinelErrors(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(ErrInvalidInput))
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(ErrNotFound))
}

func TestHTTPStatus_UnknownError(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(fmt.Errorf("unknown")))
}
