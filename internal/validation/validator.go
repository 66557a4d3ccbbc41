package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// PhoneDigits accepts digits with at most one leading plus sign.
var PhoneDigits = regexp.MustCompile(`^\+?\d+$`)

// Email matches local@domain.tld, case-insensitively.
var Email = regexp.MustCompile(`(?i)^[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}$`)

type Validator struct {
	v *validator.Validate
}

func New() *Validator {
	v := validator.New()

	// report json names ("phoneNumber") instead of Go field names
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})

	mustRegister(v, "trimmed_required", func(fl validator.FieldLevel) bool {
		value, ok := fl.Field().Interface().(string)
		return ok && strings.TrimSpace(value) != ""
	})

	mustRegister(v, "phone_digits", func(fl validator.FieldLevel) bool {
		value, ok := fl.Field().Interface().(string)
		if !ok {
			return false
		}
		return PhoneDigits.MatchString(strings.TrimSpace(value))
	})

	mustRegister(v, "email_address", func(fl validator.FieldLevel) bool {
		value, ok := fl.Field().Interface().(string)
		if !ok {
			return false
		}
		return Email.MatchString(strings.TrimSpace(value))
	})

	return &Validator{v: v}
}

// RegisterString adds a string rule under tag. It must be called before the
// validator is shared between goroutines, and panics if the tag is rejected.
func (v *Validator) RegisterString(tag string, fn func(string) bool) {
	mustRegister(v.v, tag, func(fl validator.FieldLevel) bool {
		value, ok := fl.Field().Interface().(string)
		return ok && fn(value)
	})
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("validation: register %q: %v", tag, err))
	}
}

func (v *Validator) Struct(s interface{}) error {
	return v.v.Struct(s)
}

func (v *Validator) ValidationErrors(err error) validator.ValidationErrors {
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		return ve
	}
	return nil
}
