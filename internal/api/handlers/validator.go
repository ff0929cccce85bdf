package handlers

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New()

	// Report the JSON field name instead of the Go struct field name.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// validateStruct validates s against its `validate` tags, returning a
// field-name-to-message map for every failing tag.
func validateStruct(s interface{}) map[string]string {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	errs := make(map[string]string)
	for _, fieldErr := range err.(validator.ValidationErrors) {
		field := fieldErr.Field()
		switch fieldErr.Tag() {
		case "required":
			errs[field] = field + " is required"
		case "min":
			errs[field] = field + " must be at least " + fieldErr.Param() + " characters"
		case "max":
			errs[field] = field + " must be at most " + fieldErr.Param() + " characters"
		case "oneof":
			errs[field] = field + " must be one of: " + fieldErr.Param()
		default:
			errs[field] = field + " is invalid"
		}
	}

	return errs
}
