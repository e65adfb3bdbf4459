package validation

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorf(t *testing.T) {
	err := Errorf("field '%s' not found", "price")
	assert.Equal(t, "field 'price' not found", err.Error())
	assert.True(t, IsValidation(err))
}

func TestIsValidation(t *testing.T) {
	assert.False(t, IsValidation(nil))
	assert.False(t, IsValidation(errors.New("boom")))
	assert.True(t, IsValidation(fmt.Errorf("context: %w", Errorf("bad input"))))
}
