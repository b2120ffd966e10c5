// Package card holds the minimal card validation the sample payment service
// performs before attempting an authorization.
package card

import (
	"fmt"
	"strings"
)

// Normalize strips spaces, tabs and dashes from a card number.
func Normalize(pan string) string {
	pan = strings.TrimSpace(pan)
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '-':
			return -1
		default:
			return r
		}
	}, pan)
}

// Validate checks length, digits and the Luhn check digit of a card number.
func Validate(pan string) error {
	pan = Normalize(pan)
	if pan == "" {
		return fmt.Errorf("card number is required")
	}
	if !isDigits(pan) {
		return fmt.Errorf("card number must contain digits only")
	}
	if l := len(pan); l < 13 || l > 19 {
		return fmt.Errorf("card number length must be 13..19 digits (got %d)", l)
	}
	if luhnCheckDigit(pan[:len(pan)-1]) != pan[len(pan)-1] {
		return fmt.Errorf("invalid luhn check digit")
	}
	return nil
}

// Mask obscures a card number for references and logs, keeping the BIN and
// last four digits.
func Mask(pan string) string {
	pan = Normalize(pan)
	n := len(pan)
	switch {
	case n == 0:
		return ""
	case n <= 4:
		return strings.Repeat("*", n)
	case n < 10:
		return strings.Repeat("*", n-4) + pan[n-4:]
	default:
		return pan[:6] + strings.Repeat("*", n-10) + pan[n-4:]
	}
}

func luhnCheckDigit(body string) byte {
	sum, dbl := 0, true
	for i := len(body) - 1; i >= 0; i-- {
		d := int(body[i] - '0')
		if dbl {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		dbl = !dbl
	}
	return byte('0' + (10-sum%10)%10)
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
