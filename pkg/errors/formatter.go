package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldError names one offending JSON field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func tagMessage(tag, param string) string {
	switch tag {
	case "required":
		return "This field is required"
	case "email", "waitlist_email":
		return "Invalid email format"
	case "oneof", "waitlist_interest":
		return "Unsupported value"
	case "max":
		return "Must not exceed " + param + " characters"
	case "min":
		return "Must be at least " + param + " characters"
	}
	return "Invalid value"
}

// jsonName maps a Go field name onto its json tag name.
func jsonName(model any, structField string) string {
	t := reflect.TypeOf(model)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return structField
	}

	field, ok := t.FieldByName(structField)
	if !ok {
		return structField
	}
	if name, _, _ := strings.Cut(field.Tag.Get("json"), ","); name != "" {
		return name
	}
	return structField
}

// FormatValidationErrors flattens JSON type errors and validator errors into
// one entry per offending field, in declaration order.
func FormatValidationErrors(err error, model any) []FieldError {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return []FieldError{{
			Field:   typeErr.Field,
			Message: fmt.Sprintf("Invalid type for field %s. Expected %s, got %s", typeErr.Field, typeErr.Type, typeErr.Value),
		}}
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return nil
	}

	list := make([]FieldError, 0, len(validationErrs))
	for _, fe := range validationErrs {
		list = append(list, FieldError{
			Field:   jsonName(model, fe.StructField()),
			Message: tagMessage(fe.Tag(), fe.Param()),
		})
	}
	return list
}

// FirstInvalidField returns "" when err carries no field information.
func FirstInvalidField(err error, model any) string {
	if list := FormatValidationErrors(err, model); len(list) > 0 {
		return list[0].Field
	}
	return ""
}
