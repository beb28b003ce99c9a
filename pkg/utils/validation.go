package utils

import (
	"errors"
	"reflect"
	"regexp"
	"strings"
	"sync"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// PasswordSymbols is the punctuation set a password must draw at least one character from.
const PasswordSymbols = `!@#$%^&*(),.?":{}|<>`

const MinPasswordLength = 8

// MaxPasswordBytes is the bcrypt input limit; longer passwords cannot be hashed.
const MaxPasswordBytes = 72

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern = regexp.MustCompile(`^\+?[1-9]\d{0,15}$`)

	validateOnce sync.Once
	validate     *validator.Validate
)

func IsValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

func IsValidPassword(password string) bool {
	if len(password) < MinPasswordLength || len(password) > MaxPasswordBytes {
		return false
	}

	var upper, lower, digit, symbol bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case strings.ContainsRune(PasswordSymbols, r):
			symbol = true
		}
	}
	return upper && lower && digit && symbol
}

// IsValidContact accepts a phone number (optional +, up to 16 digits) or an email address.
func IsValidContact(contact string) bool {
	return phonePattern.MatchString(contact) || emailPattern.MatchString(contact)
}

// ValidateStruct runs the `validate` tags of s and reports the first failure as a *ValidationError.
func ValidateStruct(s any) error {
	err := getValidator().Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err
	}

	fe := fieldErrs[0]
	return NewValidationError(fieldPath(fe), validationMessage(fe))
}

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
			if name == "" || name == "-" {
				return fld.Name
			}
			return name
		})

		_ = validate.RegisterValidation("account_email", func(fl validator.FieldLevel) bool {
			return IsValidEmail(fl.Field().String())
		})
		_ = validate.RegisterValidation("password_policy", func(fl validator.FieldLevel) bool {
			return IsValidPassword(fl.Field().String())
		})
		_ = validate.RegisterValidation("provider_contact", func(fl validator.FieldLevel) bool {
			return IsValidContact(fl.Field().String())
		})
	})
	return validate
}

// fieldPath drops the root struct name: "RegisterRequest.provider_data.name" -> "provider_data.name".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return fe.Field()
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "account_email":
		return "must be a valid email address"
	case "password_policy":
		return "must be 8 to 72 bytes long and include an uppercase letter, a lowercase letter, a digit and a symbol"
	case "provider_contact":
		return "must be a phone number or an email address"
	case "required", "required_if":
		return "is required"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "max":
		return "must be at most " + fe.Param() + " characters"
	default:
		return "is invalid"
	}
}
