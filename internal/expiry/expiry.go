// Package expiry parses and checks card expiry dates as they appear on the
// card face (MM/YY), expiring at the end of the named month.
package expiry

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Parse accepts "MM/YY" or "MMYY" and returns the last instant of that month
// in UTC.
func Parse(face string) (time.Time, error) {
	s := strings.ReplaceAll(strings.TrimSpace(face), "/", "")
	if len(s) != 4 {
		return time.Time{}, fmt.Errorf("expiry must be MM/YY or MMYY")
	}
	for i := 0; i < 4; i++ {
		if s[i] < '0' || s[i] > '9' {
			return time.Time{}, fmt.Errorf("expiry must be digits")
		}
	}
	mm, _ := strconv.Atoi(s[:2])
	if mm < 1 || mm > 12 {
		return time.Time{}, fmt.Errorf("expiry month must be 01..12")
	}
	yy, _ := strconv.Atoi(s[2:])
	firstNext := time.Date(2000+yy, time.Month(mm), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)
	return firstNext.Add(-time.Nanosecond), nil
}

// IsExpired reports whether the card face expiry lies strictly before at.
func IsExpired(face string, at time.Time) (bool, error) {
	end, err := Parse(face)
	if err != nil {
		return false, err
	}
	return at.UTC().After(end), nil
}

// Format renders an expiry month as MM/YY.
func Format(t time.Time) string {
	return fmt.Sprintf("%02d/%02d", int(t.Month()), t.Year()%100)
}
