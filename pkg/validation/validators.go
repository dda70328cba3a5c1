package validation

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// Regex patterns
var (
	// local@domain.tld with no whitespace and a TLD of at least two characters.
	// The class is the browser's \s: RE2's \s alone is ASCII only.
	emailRegex = regexp.MustCompile(`(?i)^[^\s\v\p{Z}\x{FEFF}@]+@[^\s\v\p{Z}\x{FEFF}@]+\.[^\s\v\p{Z}\x{FEFF}@]{2,}$`)
)

// IsSpace matches the browser's notion of whitespace, so client and server
// trim and split identically.
func IsSpace(r rune) bool {
	if r == '\u0085' {
		return false
	}
	return r == '\uFEFF' || unicode.IsSpace(r)
}

// Trim strips leading and trailing whitespace as the browser does.
func Trim(s string) string {
	return strings.TrimFunc(s, IsSpace)
}

// RegisterValidators registers custom validators to the validator instance
func RegisterValidators(v *validator.Validate) {
	_ = v.RegisterValidation("full_name", FullName)
	_ = v.RegisterValidation("contact_email", ContactEmail)
	_ = v.RegisterValidation("not_blank", NotBlank)
}

// ValidFullName reports whether s holds at least two whitespace-separated tokens.
func ValidFullName(s string) bool {
	return len(strings.FieldsFunc(s, IsSpace)) >= 2
}

// ValidEmail reports whether the trimmed s looks like local@domain.tld.
func ValidEmail(s string) bool {
	return emailRegex.MatchString(Trim(s))
}

// Required reports whether s is non-empty after trimming.
func Required(s string) bool {
	return Trim(s) != ""
}

// FullName is the validator form of ValidFullName.
func FullName(fl validator.FieldLevel) bool {
	return ValidFullName(fl.Field().String())
}

// ContactEmail is the validator form of ValidEmail.
func ContactEmail(fl validator.FieldLevel) bool {
	return ValidEmail(fl.Field().String())
}

// NotBlank rejects strings made only of whitespace. Pair it with omitnil for
// optional pointer fields.
func NotBlank(fl validator.FieldLevel) bool {
	return Required(fl.Field().String())
}
