package validator

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/jwalitptl/medibook/pkg/timefmt"
)

var (
	phonePattern = regexp.MustCompile(`^\+?[0-9(][0-9()\-.\s]{5,18}[0-9]$`)
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// Custom rule tags registered by Register.
const (
	TagPhone        = "phone"
	TagContactEmail = "contact_email"
	TagClock12      = "clock12"
	TagClock24      = "clock24"
)

// New returns a validator with the booking rules registered.
func New() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := Register(v); err != nil {
		panic(err)
	}
	return v
}

// Register adds the booking rules to v and reports fields by their json name.
func Register(v *validator.Validate) error {
	rules := map[string]validator.Func{
		TagPhone:        func(fl validator.FieldLevel) bool { return IsPhone(fl.Field().String()) },
		TagContactEmail: func(fl validator.FieldLevel) bool { return IsEmail(fl.Field().String()) },
		TagClock12: func(fl validator.FieldLevel) bool {
			_, _, err := timefmt.Parse12(fl.Field().String())
			return err == nil
		},
		TagClock24: func(fl validator.FieldLevel) bool {
			_, _, err := timefmt.Parse24(fl.Field().String())
			return err == nil
		},
	}
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return err
		}
	}

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return nil
}

// IsPhone accepts digits with common punctuation (+, spaces, dashes, dots, parentheses).
func IsPhone(s string) bool {
	return phonePattern.MatchString(strings.TrimSpace(s))
}

// IsEmail accepts the local@domain.tld shape.
func IsEmail(s string) bool {
	return emailPattern.MatchString(strings.TrimSpace(s))
}

// Describe names the first failing field of a validation error. Other errors
// are reported as a malformed body.
func Describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "invalid request body"
	}

	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "required_without":
		return fmt.Sprintf("%s or %s is required", fe.Field(), strings.ToLower(fe.Param()))
	case TagPhone:
		return fe.Field() + " must be a valid phone number"
	case TagContactEmail:
		return fe.Field() + " must be a valid email address"
	case TagClock12:
		return fe.Field() + " must be hh:mm AM|PM"
	case TagClock24:
		return fe.Field() + " must be HH:MM"
	case "datetime":
		return fe.Field() + " must be YYYY-MM-DD"
	case "oneof":
		return fmt.Sprintf("%s must be one of %s", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	default:
		return fe.Field() + " is invalid"
	}
}
