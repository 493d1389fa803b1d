package utils

import (
	"fmt"
	"math/rand"
	"time"
	"unicode"
)

const confirmationCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// ConfirmationCodeLength is the length of randomly generated pickup codes.
const ConfirmationCodeLength = 8

// RandomConfirmationCode returns an 8-character uppercase alphanumeric
// pickup code. Uniqueness is the caller's responsibility (checked
// against the claims table with retries).
func RandomConfirmationCode() string {
	code := make([]byte, ConfirmationCodeLength)
	for i := range code {
		code[i] = confirmationCharset[rand.Intn(len(confirmationCharset))]
	}
	return string(code)
}

// MaxConfirmationCodeLength bounds every code this package produces;
// the claims table sizes its code column to it.
const MaxConfirmationCodeLength = 24

// FallbackConfirmationCode is used when random generation keeps
// colliding; the nanosecond clock makes it unique on its own. 23 chars.
func FallbackConfirmationCode() string {
	return fmt.Sprintf("CODE%d", time.Now().UnixNano())
}

// DigitOTP extracts the numeric subsequence of a confirmation code,
// capped at 4 digits. It may be shorter than 4, or empty, when the
// code carries few digits.
func DigitOTP(code string) string {
	var digits []rune
	for _, r := range code {
		if unicode.IsDigit(r) {
			digits = append(digits, r)
			if len(digits) == 4 {
				break
			}
		}
	}
	return string(digits)
}

// ShortOTP derives the short code shown to the beneficiary alongside
// the full confirmation code: its first four digits, or its first four
// characters when it carries fewer than four digits.
func ShortOTP(code string) string {
	if otp := DigitOTP(code); len(otp) == 4 {
		return otp
	}
	if len(code) >= 4 {
		return code[:4]
	}
	return code
}
