package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type submitBody struct {
	Reviewee string `validate:"required"`
	Rating   string `validate:"required"`
	Review   string
}

func TestValidate_Success(t *testing.T) {
	s := submitBody{Reviewee: "0x3b7f9a2c8d1e5f60718293a4b5c6d7e8f9001122", Rating: "4.5"}
	assert.NoError(t, Validate(s))
}

func TestValidate_MissingRequired(t *testing.T) {
	s := submitBody{Rating: "4.5"}
	err := Validate(s)
	require.Error(t, err)

	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	fields := valErr.Fields()
	assert.Contains(t, fields, "Reviewee")
	assert.Equal(t, "is required", fields["Reviewee"])
}

func TestValidate_MultipleErrors(t *testing.T) {
	err := Validate(submitBody{})
	require.Error(t, err)

	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	fields := valErr.Fields()
	assert.Contains(t, fields, "Reviewee")
	assert.Contains(t, fields, "Rating")
}

func TestValidationError_ErrorString(t *testing.T) {
	err := Validate(submitBody{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "field 'Reviewee'")
	assert.Contains(t, err.Error(), "is required")
}

type webhookConfig struct {
	URL  string `validate:"url"`
	Mode string `validate:"oneof=push poll"`
}

func TestValidate_TagMessages(t *testing.T) {
	err := Validate(webhookConfig{URL: "not a url", Mode: "stream"})
	require.Error(t, err)

	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	fields := valErr.Fields()
	assert.Equal(t, "must be a valid URL", fields["URL"])
	assert.Contains(t, fields["Mode"], "push poll")
}

type lengthBounds struct {
	Short string `validate:"min=3"`
	Long  string `validate:"max=5"`
}

func TestValidate_MinMax(t *testing.T) {
	err := Validate(lengthBounds{Short: "ab", Long: "toolongstring"})
	require.Error(t, err)

	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	fields := valErr.Fields()
	assert.Contains(t, fields["Short"], "at least 3")
	assert.Contains(t, fields["Long"], "at most 5")
}
