// Package validation checks service request structs with validator/v10 and
// converts failures to domain validation errors.
package validation

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	domainerrors "github.com/notekeeper/notekeeper-server/internal/errors"
)

// msgValidationFailed is the top-level message of every field validation error.
const msgValidationFailed = "validation failed"

// tagMessages renders a failed rule for the details map. param is the rule
// argument, e.g. "255" for max=255.
var tagMessages = map[string]func(param string) string{
	"required": func(string) string { return "is required" },
	"notblank": func(string) string { return "must not be blank" },
	"email":    func(string) string { return "must be a valid email address" },
	"min":      func(p string) string { return "must be at least " + p + " characters" },
	"max":      func(p string) string { return "must not exceed " + p + " characters" },
	"gt":       func(p string) string { return "must be greater than " + p },
}

// Validator wraps go-playground/validator with domain error conversion.
type Validator struct {
	v *validator.Validate
}

// New creates a validator that reports fields by their JSON names and
// understands the notblank rule.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(jsonFieldName)

	// notblank rejects strings that are empty after trimming whitespace.
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})

	return &Validator{v: v}
}

// Validate checks s and returns a VALIDATION domain error whose details map
// each failing JSON field to a message.
func (v *Validator) Validate(s any) error {
	err := v.v.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	details := make(map[string]string, len(fieldErrs))
	for _, fe := range fieldErrs {
		details[fe.Field()] = message(fe)
	}
	return domainerrors.ValidationWithDetails(msgValidationFailed, details)
}

func message(fe validator.FieldError) string {
	if render, ok := tagMessages[fe.Tag()]; ok {
		return render(fe.Param())
	}
	return "is invalid"
}

func jsonFieldName(fld reflect.StructField) string {
	name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
	if name == "" || name == "-" {
		return fld.Name
	}
	return name
}
