package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCode_HTTPStatus(t *testing.T) {
	tests := []struct {
		code Code
		want int
	}{
		{CodeValidation, http.StatusBadRequest},
		{CodeNotFound, http.StatusNotFound},
		{CodeForbidden, http.StatusForbidden},
		{CodeDuplicateReview, http.StatusConflict},
		{CodeAlreadyExists, http.StatusConflict},
		{CodeUnauthorized, http.StatusUnauthorized},
		{CodeInvalidCredentials, http.StatusUnauthorized},
		{CodeStoreUnavailable, http.StatusServiceUnavailable},
		{CodeInternal, http.StatusInternalServerError},
		{Code("SOMETHING_ELSE"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.code.HTTPStatus())
		})
	}
}

func TestError_IsMatchesByCode(t *testing.T) {
	err := Forbidden("you do not own this book")

	assert.True(t, Is(err, ErrForbidden))
	assert.False(t, Is(err, ErrNotFound))

	wrapped := fmt.Errorf("update book: %w", err)
	assert.True(t, Is(wrapped, ErrForbidden))
}

func TestDuplicateReview_CarriesBookID(t *testing.T) {
	err := DuplicateReview("book-1")

	assert.True(t, Is(err, ErrDuplicateReview))
	assert.Equal(t, map[string]string{"book_id": "book-1"}, err.Details)
}

func TestStoreUnavailable_WrapsCause(t *testing.T) {
	cause := fmt.Errorf("disk I/O error")
	err := StoreUnavailable("create review", cause)

	require.ErrorIs(t, err, cause)
	assert.True(t, Is(err, ErrStoreUnavailable))
	assert.Equal(t, "create review: store unavailable", err.Message)
	assert.Contains(t, err.Error(), "disk I/O error")
}

func TestWithDetails_DoesNotMutateSentinel(t *testing.T) {
	detailed := ErrValidation.WithDetails(map[string]string{"rating": "is required"})

	assert.Nil(t, ErrValidation.Details)
	assert.NotNil(t, detailed.Details)
	assert.True(t, Is(detailed, ErrValidation))
}
