package validator

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"unicode/utf8"
)

func rule(field, key, message string, check func() bool) Rule {
	return Rule{
		Check: check,
		Error: ValidationError{Field: field, Message: message, TranslationKey: key},
	}
}

// Required fails for blank strings.
func Required(field, value string) Rule {
	return rule(field, "validation.required", "field is required", func() bool {
		return strings.TrimSpace(value) != ""
	})
}

// MaxLen limits the length of value in characters.
func MaxLen(field, value string, max int) Rule {
	return rule(field, "validation.max_length", fmt.Sprintf("must be at most %d characters long", max), func() bool {
		return utf8.RuneCountInString(value) <= max
	})
}

// MinLen requires at least min characters.
func MinLen(field, value string, min int) Rule {
	return rule(field, "validation.min_length", fmt.Sprintf("must be at least %d characters long", min), func() bool {
		return utf8.RuneCountInString(value) >= min
	})
}

// MaxBytes limits the encoded size of value. Used where the storage or
// hashing layer counts bytes rather than characters.
func MaxBytes(field, value string, max int) Rule {
	return rule(field, "validation.max_bytes", fmt.Sprintf("must be at most %d bytes long", max), func() bool {
		return len(value) <= max
	})
}

// Matches requires value to match pattern.
func Matches(field, value string, pattern *regexp.Regexp, message string) Rule {
	return rule(field, "validation.pattern", message, func() bool {
		return pattern.MatchString(value)
	})
}

// Email requires a bare RFC 5322 address without display name.
func Email(field, value string) Rule {
	return rule(field, "validation.email", "must be a valid email address", func() bool {
		addr, err := mail.ParseAddress(value)
		return err == nil && addr.Address == value && addr.Name == ""
	})
}

// NonNegative fails for values below zero.
func NonNegative[T Numeric](field string, value T) Rule {
	return rule(field, "validation.non_negative", "must not be negative", func() bool {
		return value >= 0
	})
}

// Positive fails for zero and negative values.
func Positive[T Numeric](field string, value T) Rule {
	return rule(field, "validation.positive", "must be positive", func() bool {
		return value > 0
	})
}
