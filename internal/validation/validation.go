package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0] //nolint:gomnd
		if name == "-" || name == "" {
			return f.Name
		}

		return name
	})

	return v
}

// InputError collects messages per request field.
type InputError struct {
	fields map[string][]string
}

func NewInputError() *InputError {
	return &InputError{
		fields: make(map[string][]string),
	}
}

func IsInputError(err error) *InputError {
	if err == nil {
		return nil
	}

	var inputError *InputError

	if errors.As(err, &inputError) {
		return inputError
	}

	return nil
}

func (ie *InputError) FieldsCount() int {
	return len(ie.fields)
}

func (ie *InputError) AddError(field, msg string) {
	ie.fields[field] = append(ie.fields[field], msg)
}

func (ie *InputError) Error() string {
	return fmt.Sprintf("%+v", ie.fields)
}

func (ie *InputError) Fields() map[string][]string {
	return ie.fields
}

// OrNil returns nil when no field failed, so callers can return it directly.
func (ie *InputError) OrNil() error {
	if ie.FieldsCount() == 0 {
		return nil
	}

	return ie
}

// Struct runs the `validate` tags of v and adds every failure to ie.
func (ie *InputError) Struct(v any) {
	ie.StructAt("", v)
}

// StructAt is Struct for a nested value. Field paths are prefixed with prefix.
func (ie *InputError) StructAt(prefix string, v any) {
	err := validate.Struct(v)
	if err == nil {
		return
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		ie.AddError("request", err.Error())

		return
	}

	for _, fe := range verrs {
		field := fieldPath(fe)
		if prefix != "" {
			field = prefix + "." + field
		}

		ie.AddError(field, message(fe))
	}
}

// fieldPath drops the root struct name from the namespace.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}

	return ns
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "gte":
		return "must be at least " + fe.Param()
	case "gt":
		return "must be greater than " + fe.Param()
	case "lte":
		return "must be at most " + fe.Param()
	case "oneof":
		return "must be one of " + fe.Param()
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "email":
		return "must be a valid email address"
	default:
		return "is invalid"
	}
}
