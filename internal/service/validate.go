// Package service contains the business logic layer of the application.
//
//	Handler (HTTP layer)     → parses requests, writes responses
//	Service (Business layer) → validates, enforces rules, orchestrates
//	Repository (Data layer)  → reads/writes to the database
//
// Services depend on repository interfaces, never on a concrete store, and
// report failures as apperror values that the handler layer maps to HTTP
// status codes in one place.
package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/sakif/my-applications/internal/apperror"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// report fields by their JSON names
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateStruct runs the struct tags of in and converts the first failure
// into an apperror.ErrValidation.
func validateStruct(in any) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return apperror.ValidationFailed("", err.Error())
	}

	fe := verrs[0]
	field := fe.Field()
	var msg string
	switch fe.Tag() {
	case "required":
		msg = fmt.Sprintf("%s is required", field)
	case "email":
		msg = fmt.Sprintf("%s must be a valid email address", field)
	case "max":
		msg = fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "min":
		msg = fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	default:
		msg = fmt.Sprintf("%s is invalid", field)
	}
	return apperror.ValidationFailed(field, msg)
}

// trimOptional trims s and maps blank values to nil.
func trimOptional(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}
