package directory_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/xraph/directory"
)

func TestValidationErrorMessage(t *testing.T) {
	err := &directory.ValidationError{Field: "filter", Message: "use only one search criterion"}
	assert.Equal(t, "directory: validation failed for filter: use only one search criterion", err.Error())
	assert.ErrorIs(t, err, directory.ErrInvalidInput)
	assert.True(t, directory.IsValidation(fmt.Errorf("wrapped: %w", err)))
	assert.False(t, directory.IsNotFound(err))
}

func TestNotFoundErrorMatchesSentinels(t *testing.T) {
	err := &directory.NotFoundError{Resource: "subscription", ID: "abc", Message: "subscription abc not found"}
	assert.ErrorIs(t, err, directory.ErrSubscriptionNotFound)
	assert.True(t, directory.IsNotFound(err))
	assert.False(t, directory.IsValidation(err))

	var nf *directory.NotFoundError
	assert.True(t, errors.As(fmt.Errorf("wrapped: %w", err), &nf))
	assert.Equal(t, "abc", nf.ID)
}

func TestIsNotFoundIgnoresOtherErrors(t *testing.T) {
	assert.False(t, directory.IsNotFound(errors.New("connection reset")))
	assert.True(t, directory.IsNotFound(directory.ErrNotFound))
	assert.True(t, directory.IsRetryable(directory.ErrStoreNotReady))
	assert.False(t, directory.IsRetryable(directory.ErrStoreClosed))
}
