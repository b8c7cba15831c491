package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_IsSentinels(t *testing.T) {
	ap := NewAlreadyPersisted("add", "expense", 3)
	uk := NewUnknownKey("update", "expense")

	assert.ErrorIs(t, ap, ErrAlreadyPersisted)
	assert.NotErrorIs(t, ap, ErrUnknownKey)
	assert.ErrorIs(t, uk, ErrUnknownKey)
	assert.NotErrorIs(t, uk, ErrAlreadyPersisted)
}

func TestError_WrappedHelpers(t *testing.T) {
	wrapped := fmt.Errorf("edit expense: %w", NewUnknownKey("update", "expense"))

	assert.True(t, IsUnknownKey(wrapped))
	assert.False(t, IsAlreadyPersisted(wrapped))
	assert.Equal(t, CodeUnknownKey, CodeOf(wrapped))
	assert.Equal(t, ErrorCode(""), CodeOf(errors.New("disk full")))
}

func TestError_Messages(t *testing.T) {
	assert.Equal(t,
		"add category: ALREADY_PERSISTED: key 4 already assigned",
		NewAlreadyPersisted("add", "category", 4).Error())
	assert.Equal(t,
		"delete budget: UNKNOWN_KEY: key must be non-zero",
		NewUnknownKey("delete", "budget").Error())
}
