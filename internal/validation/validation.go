// Package validation wraps go-playground/validator with the rules used by the
// contact book and turns its errors into field maps keyed by JSON name.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"contactbook/internal/errs"
)

// emailPattern is the RFC 5322-like address shape accepted for contacts.
var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9.!#$%&'*+/=?^_` + "`" + `{|}~-]+@[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(?:\.[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)*$`)

// ValidEmail reports whether s is an acceptable contact email address.
func ValidEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// New returns a validator with the "contactemail" rule registered and field
// names reported by their json tag.
func New() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	if err := v.RegisterValidation("contactemail", func(fl validator.FieldLevel) bool {
		return ValidEmail(fl.Field().String())
	}); err != nil {
		panic(fmt.Sprintf("register contactemail: %v", err))
	}
	return v
}

// Struct validates s and converts failures into an *errs.ValidationError.
func Struct(v *validator.Validate, s any) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fields := make(map[string]string, len(verrs))
	for _, e := range verrs {
		fields[e.Field()] = message(e)
	}
	return errs.NewValidationError(fields)
}

func message(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "This field is required."
	case "contactemail", "email":
		return "invalid email"
	case "max":
		return fmt.Sprintf("Ensure this field has no more than %s characters.", e.Param())
	case "min":
		return fmt.Sprintf("Ensure this field has at least %s characters.", e.Param())
	case "eqfield":
		return "Passwords do not match"
	default:
		return fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
	}
}
