// Package validator checks request payloads against their validate tags.
package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/DeafMist/pakgpt-news/backend/internal/models"
)

// Validator wraps the go-playground validator and reports failures as
// *models.ValidationError keyed by JSON field name.
type Validator struct {
	validate *validator.Validate
}

// New returns a Validator. It is safe for concurrent use.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &Validator{validate: v}
}

// Struct validates s and returns the first violated field, in declaration order.
func (v *Validator) Struct(s any) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err
	}
	return toValidationError(fieldErrs[0])
}

func toValidationError(fe validator.FieldError) *models.ValidationError {
	out := &models.ValidationError{Field: fe.Field()}

	switch fe.Tag() {
	case "required":
		out.Message = "field required"
	case "oneof":
		out.Message = fmt.Sprintf("unsupported value %q, expected one of %s",
			fmt.Sprint(fe.Value()), strings.ReplaceAll(fe.Param(), " ", ", "))
	case "min":
		out.Message = "must be at least " + fe.Param()
	case "max":
		out.Message = "must be at most " + fe.Param()
	default:
		out.Message = "is invalid"
	}
	return out
}
