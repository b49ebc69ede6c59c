package service

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	appErrors "github.com/noah-isme/eduflow-api/pkg/errors"
)

var hhmmPattern = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

// NewValidator returns a validator that reports json field names and knows
// the hhmm and ymd tags used by request payloads.
func NewValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	_ = v.RegisterValidation("hhmm", func(fl validator.FieldLevel) bool {
		return hhmmPattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("ymd", func(fl validator.FieldLevel) bool {
		_, err := time.Parse(dateLayout, fl.Field().String())
		return err == nil
	})
	return v
}

// validationError converts validator output into a VALIDATION_ERROR whose
// message lists each offending field.
func validationError(err error, message string) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, message)
	}
	parts := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		parts = append(parts, describeFieldError(fe))
	}
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status,
		fmt.Sprintf("%s: %s", message, strings.Join(parts, "; ")))
}

func describeFieldError(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email"
	case "hhmm":
		return field + " must be HH:MM"
	case "ymd":
		return field + " must be YYYY-MM-DD"
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, fe.Param())
	case "min", "gte":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max", "lte":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed %s", field, fe.Tag())
	}
}

func storageError(err error, message string) error {
	return appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, message)
}
