// Package validation provides custom validation rules for the application.
package validation

import (
	"strings"

	"github.com/google/uuid"
	validation "github.com/jellydator/validation"
	"github.com/shopspring/decimal"

	apperrors "github.com/getachewzemene/minalesh-amplify-sub001/internal/errors"
)

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

// UUIDString validates that a non-empty string parses as a UUID.
var UUIDString = validation.NewStringRuleWithError(
	func(s string) bool {
		_, err := uuid.Parse(s)
		return err == nil
	},
	validation.NewError("validation_uuid", "must be a valid UUID"),
)

// NonNegativeDecimal validates that a decimal (or a non-nil decimal pointer) is >= 0.
var NonNegativeDecimal = validation.By(func(value interface{}) error {
	var d decimal.Decimal
	switch v := value.(type) {
	case *decimal.Decimal:
		if v == nil {
			return nil
		}
		d = *v
	case decimal.Decimal:
		d = v
	default:
		return validation.NewError("validation_decimal_type", "must be a decimal")
	}
	if d.IsNegative() {
		return validation.NewError("validation_decimal_negative", "must not be negative")
	}
	return nil
})
