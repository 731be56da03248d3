package dispatch

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUserMessage(t *testing.T) {
	assert.Empty(t, UserMessage(nil))
	assert.Equal(t, "Please select a model first.", UserMessage(ErrNoCapability))
	assert.Equal(t, "Please enter a prompt.", UserMessage(ErrEmptyInput))
	assert.Equal(t, "Still processing the previous request.", UserMessage(ErrBusy))

	// Everything past validation collapses into one message, wrapped or not.
	generic := "Failed to process request. Please try again."
	assert.Equal(t, generic, UserMessage(ErrTransport))
	assert.Equal(t, generic, UserMessage(fmt.Errorf("status 502: %w", ErrTransport)))
	assert.Equal(t, generic, UserMessage(fmt.Errorf("chat payload has no choices: %w", ErrDecode)))
	assert.Equal(t, generic, UserMessage(ErrConfiguration))
	assert.Equal(t, generic, UserMessage(fmt.Errorf("something else entirely")))
}

func TestIsValidation(t *testing.T) {
	assert.True(t, IsValidation(ErrNoCapability))
	assert.True(t, IsValidation(ErrEmptyInput))
	assert.False(t, IsValidation(ErrBusy))
	assert.False(t, IsValidation(ErrTransport))
	assert.False(t, IsValidation(nil))
}
