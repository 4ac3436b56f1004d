// utils/validation.go
package utils

import (
	"regexp"
	"strings"
)

var (
	phoneStrip = strings.NewReplacer(" ", "", "-", "", "(", "", ")", "")

	// E.164 with a + prefix, or a local number written with a leading
	// zero.
	phonePattern = regexp.MustCompile(`^(\+[1-9]\d{6,14}|0\d{6,14})$`)
)

// ValidatePhone accepts international numbers and local numbers with a
// leading zero. Spaces, dashes and parentheses are ignored.
func ValidatePhone(phone string) bool {
	return phonePattern.MatchString(phoneStrip.Replace(phone))
}
