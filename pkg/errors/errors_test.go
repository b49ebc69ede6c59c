package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromErrorKeepsTypedErrors(t *testing.T) {
	wrapped := fmt.Errorf("outer: %w", Clone(ErrNotFound, "fee not found"))

	got := FromError(wrapped)

	assert.Equal(t, ErrNotFound.Code, got.Code)
	assert.Equal(t, "fee not found", got.Message)
	assert.Equal(t, http.StatusNotFound, got.Status)
}

func TestFromErrorWrapsUnknownErrors(t *testing.T) {
	got := FromError(errors.New("boom"))

	assert.Equal(t, ErrInternal.Code, got.Code)
	assert.Equal(t, http.StatusInternalServerError, got.Status)
	assert.EqualError(t, got, "internal server error: boom")
}

func TestIsMatchesByCode(t *testing.T) {
	err := Wrap(errors.New("redis down"), ErrStorage.Code, ErrStorage.Status, "failed to save payments")

	assert.True(t, Is(err, ErrStorage))
	assert.False(t, Is(err, ErrValidation))
	assert.False(t, Is(nil, ErrStorage))
}

func TestCloneDoesNotMutateOriginal(t *testing.T) {
	clone := Clone(ErrValidation, "amount must be positive")

	assert.Equal(t, "validation failed", ErrValidation.Message)
	assert.Equal(t, "amount must be positive", clone.Message)
}
