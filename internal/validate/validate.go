// Package validate holds the input predicates applied before credentials and
// content reach the repositories.
package validate

import (
	"errors"
	"fmt"
	"html"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
)

// MinPasswordLength is the shortest password StrongPassword accepts.
const MinPasswordLength = 8

// Registration is the input of a sign-up.
type Registration struct {
	Name     string `validate:"required,letters"`
	Email    string `validate:"required,email"`
	Phone    string `validate:"required,digits"`
	Password string `validate:"required,strongpassword"`
	Confirm  string `validate:"required,eqfield=Password"`
}

// Profile is the input of a profile edit. Password is optional.
type Profile struct {
	Name     string `validate:"required"`
	Phone    string `validate:"required,digits,min=8"`
	Password string `validate:"omitempty,min=8"`
	Confirm  string `validate:"eqfield=Password"`
}

// FieldError describes one rejected field.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Errors is every field rejected by a single check.
type Errors []*FieldError

func (e Errors) Error() string {
	msgs := make([]string, len(e))
	for i, fe := range e {
		msgs[i] = fe.Error()
	}
	return strings.Join(msgs, "; ")
}

// Field returns the error for field, or nil.
func (e Errors) Field(field string) *FieldError {
	for _, fe := range e {
		if fe.Field == field {
			return fe
		}
	}
	return nil
}

// Validator checks input structs and sanitizes free text.
type Validator struct {
	v      *validator.Validate
	policy *bluemonday.Policy
}

// New returns a Validator with the custom tags registered.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	must(v.RegisterValidation("strongpassword", func(fl validator.FieldLevel) bool {
		return StrongPassword(fl.Field().String())
	}))
	must(v.RegisterValidation("letters", func(fl validator.FieldLevel) bool {
		return LettersOnly(fl.Field().String())
	}))
	must(v.RegisterValidation("digits", func(fl validator.FieldLevel) bool {
		return DigitsOnly(fl.Field().String())
	}))
	return &Validator{v: v, policy: bluemonday.StrictPolicy()}
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}

// Struct validates s, returning Errors when any field is rejected.
func (v *Validator) Struct(s any) error {
	err := v.v.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := make(Errors, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, &FieldError{Field: fe.Field(), Message: message(fe)})
	}
	return out
}

// Email reports whether s is a well-formed email address.
func (v *Validator) Email(s string) bool {
	return v.v.Var(s, "required,email") == nil
}

// PlainText strips any markup from s and trims it.
func (v *Validator) PlainText(s string) string {
	return strings.TrimSpace(html.UnescapeString(v.policy.Sanitize(s)))
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email"
	case "letters":
		return "may only contain letters and spaces"
	case "digits":
		return "may only contain digits"
	case "strongpassword":
		return fmt.Sprintf("must be at least %d characters with upper, lower, digit and symbol", MinPasswordLength)
	case "eqfield":
		return fmt.Sprintf("must match %s", fe.Param())
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	default:
		return "is invalid"
	}
}

// StrongPassword requires MinPasswordLength characters, no whitespace, and at
// least one upper-case letter, lower-case letter, digit and symbol.
func StrongPassword(s string) bool {
	if len([]rune(s)) < MinPasswordLength {
		return false
	}
	var upper, lower, digit, symbol bool
	for _, r := range s {
		switch {
		case unicode.IsSpace(r):
			return false
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		default:
			symbol = true
		}
	}
	return upper && lower && digit && symbol
}

// LettersOnly reports whether s holds only letters and spaces.
func LettersOnly(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsSpace(r) {
			return false
		}
	}
	return true
}

// DigitsOnly reports whether s holds only decimal digits.
func DigitsOnly(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
