package validator

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// CustomValidator implements echo.Validator using go-playground/validator
type CustomValidator struct {
	v *validator.Validate
}

// New creates a new CustomValidator instance
func New() *CustomValidator {
	v := validator.New()
	_ = v.RegisterValidation("notblank", notBlank)
	v.RegisterTagNameFunc(jsonTagName)
	return &CustomValidator{v: v}
}

// Validate performs struct validation
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.v.Struct(i)
}

// notBlank rejects strings made only of whitespace. Nil pointers pass so the
// rule composes with omitempty on optional fields.
func notBlank(fl validator.FieldLevel) bool {
	field := fl.Field()
	if field.Kind() == reflect.String {
		return strings.TrimSpace(field.String()) != ""
	}
	return true
}

// jsonTagName reports field errors under their JSON names
func jsonTagName(f reflect.StructField) string {
	name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return f.Name
	}
	return name
}
