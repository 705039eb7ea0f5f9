package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_IsMatchesKindAndCode(t *testing.T) {
	alreadyBooked := Conflict("already_booked", "You have already booked this package.")
	wrapped := fmt.Errorf("booking: %w", alreadyBooked)

	assert.True(t, errors.Is(wrapped, alreadyBooked))
	assert.True(t, errors.Is(wrapped, ErrConflict), "empty code matches every conflict")
	assert.False(t, errors.Is(wrapped, Conflict("duplicate_email", "")))
	assert.False(t, errors.Is(wrapped, ErrNotFound))
}

func TestError_WrapKeepsIdentity(t *testing.T) {
	cause := errors.New("s3: connection reset")
	err := Upstream("image_upload_failed", "Image upload failed.", cause)

	assert.True(t, errors.Is(err, ErrUpstream))
	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, "Image upload failed.", err.Message)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestError_Status(t *testing.T) {
	tests := []struct {
		err  *Error
		want int
	}{
		{ErrValidation, http.StatusBadRequest},
		{ErrConflict, http.StatusBadRequest},
		{ErrInvalidTransition, http.StatusBadRequest},
		{ErrExpired, http.StatusBadRequest},
		{ErrNotFound, http.StatusNotFound},
		{ErrUnauthorized, http.StatusUnauthorized},
		{ErrForbidden, http.StatusForbidden},
		{ErrUpstream, http.StatusInternalServerError},
		{ErrInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Kind.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Status())
		})
	}
}

func TestFrom(t *testing.T) {
	assert.Equal(t, KindNotFound, From(fmt.Errorf("x: %w", ErrNotFound)).Kind)

	plain := errors.New("boom")
	got := From(plain)
	assert.Equal(t, KindInternal, got.Kind)
	assert.ErrorIs(t, got, plain)
}
