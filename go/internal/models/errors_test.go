package models

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidationError_CollectsEveryField(t *testing.T) {
	verr := &ValidationError{}
	assert.NoError(t, verr.OrNil())

	verr.Add("name", "is required")
	verr.Add("email", "is required")

	err := verr.OrNil()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidation)
	assert.True(t, verr.HasField("name"))
	assert.True(t, verr.HasField("email"))
	assert.False(t, verr.HasField("city"))
	assert.Contains(t, err.Error(), "name: is required")
	assert.Contains(t, err.Error(), "email: is required")
}

func TestDomainErrors_MatchSentinelsThroughWrapping(t *testing.T) {
	id := uuid.New()
	tests := []struct {
		err      error
		sentinel error
	}{
		{&NotFoundError{Resource: "team", ID: id}, ErrNotFound},
		{&ForbiddenError{RequestID: id, TeamID: uuid.New(), Action: "accept"}, ErrForbidden},
		{&InvalidTransitionError{RequestID: id, From: MatchStatusDeclined, To: MatchStatusConfirmed}, ErrInvalidTransition},
	}

	for _, tt := range tests {
		wrapped := fmt.Errorf("outer: %w", tt.err)
		assert.ErrorIs(t, wrapped, tt.sentinel)
		assert.NotErrorIs(t, wrapped, ErrValidation)
	}
}

func TestInvalidTransitionError_CarriesStatuses(t *testing.T) {
	err := fmt.Errorf("wrap: %w", &InvalidTransitionError{
		RequestID: uuid.New(),
		From:      MatchStatusConfirmed,
		To:        MatchStatusDeclined,
	})

	var target *InvalidTransitionError
	require.True(t, errors.As(err, &target))
	assert.Equal(t, MatchStatusConfirmed, target.From)
	assert.Equal(t, MatchStatusDeclined, target.To)
}
