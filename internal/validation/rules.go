// Package validation provides custom validation rules for the application.
package validation

import (
	"regexp"
	"strings"

	validation "github.com/jellydator/validation"

	apperrors "github.com/allisson/cct/internal/errors"
)

var (
	// identifierRegex matches tenant ids and capability names
	identifierRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._:\-]*$`)
)

// MaxIdentifierLength bounds tenant ids and capability names.
const MaxIdentifierLength = 128

// WrapValidationError wraps validation errors as domain ErrInvalidInput
func WrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	return apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
}

// NoWhitespace validates that string doesn't contain leading/trailing whitespace
var NoWhitespace = validation.NewStringRuleWithError(
	func(s string) bool {
		return s == strings.TrimSpace(s)
	},
	validation.NewError("validation_no_whitespace", "must not contain leading or trailing whitespace"),
)

// NotBlank validates that a string is not empty after trimming whitespace
var NotBlank = validation.NewStringRuleWithError(
	func(s string) bool {
		return strings.TrimSpace(s) != ""
	},
	validation.NewError("validation_not_blank", "must not be blank"),
)

// Identifier validates tenant ids and capability names: letters, digits and ._:- only,
// starting with a letter or digit. Surrounding whitespace is tolerated.
var Identifier = validation.NewStringRuleWithError(
	func(s string) bool {
		s = strings.TrimSpace(s)
		return len(s) <= MaxIdentifierLength && identifierRegex.MatchString(s)
	},
	validation.NewError(
		"validation_identifier",
		"must contain only letters, digits, '.', '_', ':' or '-' and be at most 128 characters",
	),
)
