package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/bitfantasy/partslib/internal/parts/repository"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

// 错误定义
var (
	ErrValidation           = errors.New("validation failed")
	ErrDuplicateEdge        = errors.New("hierarchy edge already exists")
	ErrCycle                = errors.New("hierarchy edge would create a cycle")
	ErrNotFound             = repository.ErrNotFound
	ErrDuplicateKey         = repository.ErrDuplicateKey
	ErrStorageIO            = errors.New("file storage error")
	ErrEdgeNotFound         = errors.New("hierarchy edge not found")
	ErrHasRelations         = errors.New("component is part of a hierarchy")
	ErrConfirmationRequired = errors.New("destructive operation requires confirmation")
)

// FieldError is one field that failed validation.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries field-level messages and unwraps to ErrValidation.
type ValidationError struct {
	Fields []FieldError `json:"fields"`
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

func fieldError(field, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Fields: []FieldError{{Field: field, Message: fmt.Sprintf(format, args...)}}}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	// notblank: 纯空白字符串视为空
	_ = v.RegisterValidation("notblank", validators.NotBlank)
	return v
}

// validateInput runs struct validation and converts failures to *ValidationError.
func validateInput(input interface{}) error {
	err := validate.Struct(input)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := &ValidationError{}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, FieldError{Field: fe.Field(), Message: describeTag(fe)})
	}
	return out
}

func describeTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "notblank":
		return "is required"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "len":
		return "must be exactly " + fe.Param() + " characters"
	case "max":
		return "must be at most " + fe.Param()
	case "min":
		return "must be at least " + fe.Param()
	case "gte":
		return "must be >= " + fe.Param()
	case "gt":
		return "must be > " + fe.Param()
	default:
		return "failed " + fe.Tag()
	}
}
