package util

import (
	"fmt"
	"net/mail"
	"strings"
	"unicode"
)

// defaultCountryCode is prepended to bare 10-digit national numbers.
const defaultCountryCode = "91"

// NormalizePhone returns +<digits>. Separators are ignored, anything else is rejected.
func NormalizePhone(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", fmt.Errorf("phone is required")
	}

	var digits []rune
	for i, r := range s {
		switch {
		case r == '+' && i == 0:
		case unicode.IsDigit(r):
			digits = append(digits, r)
		case r == ' ' || r == '-' || r == '(' || r == ')':
		default:
			return "", fmt.Errorf("phone contains invalid characters")
		}
	}
	if !strings.HasPrefix(s, "+") && len(digits) == 10 {
		digits = append([]rune(defaultCountryCode), digits...)
	}
	if len(digits) < 8 || len(digits) > 15 {
		return "", fmt.Errorf("phone must have 8 to 15 digits")
	}
	return "+" + string(digits), nil
}

// NormalizeEmail trims and lower-cases an address and checks its syntax.
func NormalizeEmail(raw string) (string, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return "", fmt.Errorf("email is required")
	}
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s {
		return "", fmt.Errorf("email is invalid")
	}
	return s, nil
}
