package services

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rpupo63/portfolio-backend/errs"
)

// bcrypt ignores input past this many bytes
const maxPasswordBytes = 72

const passwordTooLong = "password must be at most 72 bytes"

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// report json names so clients can map errors back to their fields
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	if err := v.RegisterValidation("passwordbytes", func(fl validator.FieldLevel) bool {
		return len(fl.Field().String()) <= maxPasswordBytes
	}); err != nil {
		panic(err)
	}
	return v
}

// validateStruct runs the struct tags of input and returns the first failure as a field error.
func validateStruct(input any) error {
	err := validate.Struct(input)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return errs.NewValidationError(fe.Field(), describeFieldError(fe))
	}
	return errs.NewBadRequestError("invalid input")
}

func describeFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	case "email":
		return "invalid email address"
	case "url":
		return fmt.Sprintf("%s must be a valid URL", fe.Field())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), strings.ReplaceAll(fe.Param(), " ", ", "))
	case "passwordbytes":
		return passwordTooLong
	case "eqfield":
		return "passwords must match"
	case "datetime":
		return fmt.Sprintf("%s must be a date formatted as YYYY-MM-DD", fe.Field())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}
