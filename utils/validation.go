// utils/validation.go
package utils

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

var tagPattern = regexp.MustCompile(`<[^>]*>`)

// ValidatePhone checks if a phone number is in a valid international format
func ValidatePhone(phone string) bool {
	// Clean the phone number
	cleaned := strings.ReplaceAll(phone, " ", "")
	cleaned = strings.ReplaceAll(cleaned, "-", "")
	cleaned = strings.ReplaceAll(cleaned, "(", "")
	cleaned = strings.ReplaceAll(cleaned, ")", "")

	// Regular expression for international phone numbers
	// Allows + prefix followed by 7-15 digits
	regex := `^\+?[1-9]\d{6,14}$`
	match, _ := regexp.MatchString(regex, cleaned)
	return match
}

// ValidateEmail checks the address format
func ValidateEmail(email string) bool {
	return validate.Var(email, "required,email") == nil
}

// SanitizeText strips HTML tags and stray angle brackets from free text and
// caps it at max characters. Free text never reaches storage or a remote API
// without going through here.
func SanitizeText(s string, max int) string {
	s = tagPattern.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, "<", "")
	s = strings.ReplaceAll(s, ">", "")
	s = strings.TrimSpace(s)
	// Cap on rune boundaries; a byte slice could split a multi-byte
	// character and store invalid UTF-8.
	if max > 0 && utf8.RuneCountInString(s) > max {
		s = string([]rune(s)[:max])
	}
	return s
}
