package services

import (
	"fmt"
	"regexp"

	"github.com/go-playground/validator/v10"
)

// phonePattern is the shape accepted for receivePhone: 10 or 11 digits.
var phonePattern = regexp.MustCompile(`^\d{10,11}$`)

// NewValidator returns a validator with the storefront's custom tags.
func NewValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	})
	return v
}

// validationError turns a validator failure into a ValidationError listing
// each offending field.
func validationError(op string, err error) *Error {
	fields := make(map[string]string)
	if verrs, ok := err.(validator.ValidationErrors); ok {
		for _, e := range verrs {
			fields[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
		}
	}
	return &Error{
		Kind:   KindValidation,
		Op:     op,
		Msg:    "please check the shipping information",
		Err:    err,
		Fields: fields,
	}
}
