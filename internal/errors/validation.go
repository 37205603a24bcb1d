package errors

import (
	stderrors "errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// FieldErrors maps a JSON field name to its validation messages.
type FieldErrors map[string][]string

// Add appends a message for field.
func (fe FieldErrors) Add(field, message string) {
	fe[field] = append(fe[field], message)
}

// Err returns fe as an error, or nil when no field failed.
func (fe FieldErrors) Err() error {
	if len(fe) == 0 {
		return nil
	}
	return fe
}

// Error implements the error interface
func (fe FieldErrors) Error() string {
	fields := make([]string, 0, len(fe))
	for field := range fe {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, field+": "+strings.Join(fe[field], " "))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func init() {
	// Report validator failures under their JSON names.
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return fld.Name
			}
			return name
		})
	}
}

// FromBindingError converts validator failures into field errors.
// ok is false for errors that are not validation failures (malformed JSON, wrong types).
func FromBindingError(err error) (FieldErrors, bool) {
	var verrs validator.ValidationErrors
	if !stderrors.As(err, &verrs) {
		return nil, false
	}

	fields := FieldErrors{}
	for _, fe := range verrs {
		fields.Add(fe.Field(), validationMessage(fe))
	}
	return fields, true
}

// RespondBindingError writes the 400 for a failed ShouldBindJSON call.
func RespondBindingError(c *gin.Context, err error) {
	if fields, ok := FromBindingError(err); ok {
		ValidationFailed(c, fields)
		return
	}
	BadRequest(c, "Invalid request body")
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Enter a valid email address."
	case "max":
		return fmt.Sprintf("Ensure this field has no more than %s characters.", fe.Param())
	case "min":
		return fmt.Sprintf("Ensure this field has at least %s characters.", fe.Param())
	case "oneof":
		return fmt.Sprintf("%q is not a valid choice.", fmt.Sprint(fe.Value()))
	default:
		return "Invalid value."
	}
}
