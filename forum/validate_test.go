package forum

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeInput(t *testing.T) {
	// Decomposed e + combining acute collapses to the precomposed form.
	assert.Equal(t, "café", NormalizeInput("café"))
	assert.Equal(t, "hello", NormalizeInput("  hello\n"))
}

func TestValidateMemberID(t *testing.T) {
	require.NoError(t, ValidateMemberID("alice_01"))

	assert.ErrorIs(t, ValidateMemberID(""), ErrValidation)
	assert.ErrorIs(t, ValidateMemberID("has space"), ErrValidation)
	assert.ErrorIs(t, ValidateMemberID("tab\there"), ErrValidation)
	assert.ErrorIs(t, ValidateMemberID(strings.Repeat("a", MaxIDLength+1)), ErrValidation)
}

func TestValidateEmail(t *testing.T) {
	require.NoError(t, ValidateEmail("alice@example.com"))

	for _, bad := range []string{"", "no-at-sign", "@host.com", "user@", "user@nohost"} {
		assert.ErrorIs(t, ValidateEmail(bad), ErrValidation, "email %q", bad)
	}
}

func TestValidatePostInput(t *testing.T) {
	require.NoError(t, ValidatePostInput(PostInput{Title: "t", TextBody: "b"}))

	assert.ErrorIs(t, ValidatePostInput(PostInput{TextBody: "b"}), ErrValidation)
	assert.ErrorIs(t, ValidatePostInput(PostInput{Title: "t"}), ErrValidation)
	long := PostInput{Title: "t", TextBody: strings.Repeat("x", MaxBodyLength+1)}
	assert.ErrorIs(t, ValidatePostInput(long), ErrValidation)
}

func TestValidateSearchQuery(t *testing.T) {
	require.NoError(t, ValidateSearchQuery(SearchQuery{Keyword: "go", Title: 1}))

	assert.ErrorIs(t, ValidateSearchQuery(SearchQuery{Keyword: "go"}), ErrValidation)
	assert.ErrorIs(t, ValidateSearchQuery(SearchQuery{Title: 1}), ErrValidation)
}
