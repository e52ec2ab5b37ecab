package vault

import (
	"fmt"
	"unicode/utf8"
)

const (
	MinPasswordLength = 8
	MaxPasswordLength = 100
)

// CheckPasswordPolicy enforces the password length limits, counted in runes.
func CheckPasswordPolicy(password []byte) error {
	n := utf8.RuneCount(password)
	if n < MinPasswordLength {
		return fmt.Errorf("%w: at least %d characters required", ErrPasswordTooShort, MinPasswordLength)
	}
	if n > MaxPasswordLength {
		return fmt.Errorf("%w: at most %d characters allowed", ErrPasswordTooLong, MaxPasswordLength)
	}
	return nil
}
