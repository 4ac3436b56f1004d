package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidatePhone(t *testing.T) {
	valid := []string{
		"+27831234567",
		"0831234567",
		"083 123 4567",
		"(083) 123-4567",
		"+14155552671",
	}
	for _, phone := range valid {
		assert.True(t, ValidatePhone(phone), phone)
	}

	invalid := []string{
		"",
		"12345",
		"831234567", // no leading zero and no country code
		"+0831234567",
		"not-a-number",
	}
	for _, phone := range invalid {
		assert.False(t, ValidatePhone(phone), phone)
	}
}
