package middleware

import (
	"fmt"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	bookingvalidator "github.com/jwalitptl/medibook/pkg/validator"
)

// RegisterValidators adds the booking rules (phone, contact_email, clock12,
// clock24) to gin's binding validator.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected binding validator %T", binding.Validator.Engine())
	}
	return bookingvalidator.Register(v)
}
