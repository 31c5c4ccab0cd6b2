package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type samplePayload struct {
	Email  string `validate:"required,email"`
	Action string `validate:"required,oneof=LIKE DISLIKE SUPERLIKE"`
	Bio    string `validate:"omitempty,max=10"`
}

func TestValidateStructPasses(t *testing.T) {
	err := ValidateStruct(&samplePayload{
		Email:  "dana@example.com",
		Action: "LIKE",
	})
	assert.NoError(t, err)
}

func TestValidateStructRequired(t *testing.T) {
	err := ValidateStruct(&samplePayload{Action: "LIKE"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Email is required")
}

func TestValidateStructOneOf(t *testing.T) {
	err := ValidateStruct(&samplePayload{
		Email:  "dana@example.com",
		Action: "MAYBE",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Action must be one of: LIKE DISLIKE SUPERLIKE")
}

func TestValidateStructJoinsMessages(t *testing.T) {
	err := ValidateStruct(&samplePayload{Bio: "this bio is far too long"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Email is required")
	assert.Contains(t, err.Error(), "Action is required")
	assert.Contains(t, err.Error(), "Bio must be at most 10")
}
