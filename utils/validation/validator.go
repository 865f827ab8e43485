package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/dabhanushali/enacton-training/model"
	"github.com/dabhanushali/enacton-training/utils/access"
	"github.com/go-playground/validator/v10"
)

// PasswordMinLength is the minimum password length
var PasswordMinLength = 8

// Errors is a failed validation with one message per JSON field
type Errors struct {
	Fields map[string]string
}

func (e *Errors) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		parts = append(parts, field+": "+msg)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// FieldMessages returns the per-field messages
func (e *Errors) FieldMessages() map[string]string {
	return e.Fields
}

// Validator wraps the go-playground validator
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a new validator instance with the domain tags registered
func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	// report JSON names, not Go field names
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

	register := func(tag string, ok func(string) bool) {
		_ = v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
			return ok(fl.Field().String())
		})
	}
	register("role", access.IsRoleName)
	register("content_type", func(s string) bool { return model.ContentType(s).Valid() })
	register("employee_status", func(s string) bool { return model.EmployeeStatus(s).Valid() })
	register("project_status", func(s string) bool { return model.ProjectStatus(s).Valid() })
	register("question_type", func(s string) bool { return model.QuestionType(s).Valid() })
	register("assessment_type", func(s string) bool { return model.AssessmentType(s).Valid() })
	register("notblank", func(s string) bool { return strings.TrimSpace(s) != "" })

	return &Validator{validate: v}
}

// ValidateStruct validates a struct using struct tags. Failures come back as *Errors.
func (v *Validator) ValidateStruct(s interface{}) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return &Errors{Fields: FormatValidationErrors(verrs)}
	}
	return err
}

// FormatValidationErrors converts validation errors to a user-friendly format
func FormatValidationErrors(err error) map[string]string {
	out := make(map[string]string)

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return out
	}

	for _, e := range validationErrs {
		field := e.Field()
		switch e.Tag() {
		case "required", "notblank":
			out[field] = fmt.Sprintf("%s is required", field)
		case "email":
			out[field] = "Invalid email format"
		case "min":
			out[field] = fmt.Sprintf("%s must be at least %s", field, e.Param())
		case "max":
			out[field] = fmt.Sprintf("%s must be at most %s", field, e.Param())
		case "gte":
			out[field] = fmt.Sprintf("%s must be greater than or equal to %s", field, e.Param())
		case "lte":
			out[field] = fmt.Sprintf("%s must be less than or equal to %s", field, e.Param())
		case "oneof":
			out[field] = fmt.Sprintf("%s must be one of: %s", field, e.Param())
		case "role":
			out[field] = fmt.Sprintf("%s must be one of: %s", field, strings.Join(roleNames(), ", "))
		case "content_type", "employee_status", "project_status", "question_type", "assessment_type":
			out[field] = fmt.Sprintf("%s is not a valid %s", field, strings.ReplaceAll(e.Tag(), "_", " "))
		default:
			out[field] = fmt.Sprintf("%s is invalid", field)
		}
	}

	return out
}

func roleNames() []string {
	names := make([]string, 0, len(access.AllRoles))
	for _, r := range access.AllRoles {
		names = append(names, r.String())
	}
	return names
}

// SanitizeString removes null bytes and surrounding whitespace
func SanitizeString(s string) string {
	s = strings.ReplaceAll(s, "\x00", "")
	return strings.TrimSpace(s)
}
