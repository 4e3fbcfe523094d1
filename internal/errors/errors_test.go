package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNotFoundClass(t *testing.T) {
	for _, err := range []error{ErrNoEligibleContent, ErrLinkNotFound, ErrTopicNotFound} {
		assert.True(t, IsNotFound(err), err.Error())
		assert.True(t, IsNotFound(fmt.Errorf("wrapped: %w", err)))
	}
	assert.False(t, IsNotFound(ErrLinkAlreadyExists))
}

func TestValidationError(t *testing.T) {
	err := NewValidationError("action", ErrInvalidAction, "must be one of LIKE")
	assert.True(t, IsValidation(err))
	assert.ErrorIs(t, err, ErrInvalidAction)
	assert.Equal(t, "action: invalid action (must be one of LIKE)", err.Error())
	assert.Equal(t, "userId: missing required field", NewValidationError("userId", ErrMissingField, "").Error())
}

func TestDependency(t *testing.T) {
	assert.NoError(t, Dependency("op", nil))

	cause := errors.New("disk full")
	err := Dependency("record view", cause)
	var derr *DependencyError
	assert.ErrorAs(t, err, &derr)
	assert.Equal(t, "record view", derr.Op)
	assert.ErrorIs(t, err, cause)

	// known classes pass through untouched
	assert.Same(t, ErrLinkNotFound, Dependency("op", ErrLinkNotFound))
	assert.Equal(t, ErrLinkAlreadyExists, Dependency("op", ErrLinkAlreadyExists))
	verr := NewValidationError("url", ErrInvalidURL, "")
	assert.Equal(t, error(verr), Dependency("op", verr))
	assert.Equal(t, err, Dependency("outer", err))
}
