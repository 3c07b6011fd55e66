package ledger

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrSchemaValidation marks every record or field failure at the schema boundary.
	ErrSchemaValidation = errors.New("schema validation failed")

	// ErrFieldNotFound is returned when a name is not one of the transaction fields.
	ErrFieldNotFound = errors.New("field not found in transaction schema")
)

// ValidationError describes a single schema failure.
// Index is the record position in its batch, or -1 when no record is involved.
type ValidationError struct {
	Index         int      `json:"index"`
	Field         string   `json:"field,omitempty"`
	Message       string   `json:"message"`
	UnknownFields []string `json:"unknown_fields,omitempty"`

	cause error
}

func (e *ValidationError) Error() string {
	var b strings.Builder
	if e.Index >= 0 {
		fmt.Fprintf(&b, "record %d: ", e.Index)
	}
	if len(e.UnknownFields) > 0 {
		fmt.Fprintf(&b, "unknown field(s) %v not allowed", e.UnknownFields)
		return b.String()
	}
	if e.Field != "" {
		fmt.Fprintf(&b, "field '%s': ", e.Field)
	}
	b.WriteString(e.Message)
	return b.String()
}

// Is lets errors.Is match ErrSchemaValidation for every validation error.
func (e *ValidationError) Is(target error) bool {
	return target == ErrSchemaValidation
}

func (e *ValidationError) Unwrap() error {
	return e.cause
}

// Details returns the structured fields for API error bodies.
func (e *ValidationError) Details() map[string]interface{} {
	d := make(map[string]interface{})
	if e.Index >= 0 {
		d["index"] = e.Index
	}
	if len(e.UnknownFields) > 0 {
		d["unknown_fields"] = e.UnknownFields
	}
	if e.Field != "" {
		d["field"] = e.Field
	}
	return d
}

// MultiValidationError aggregates the failures of one batch.
type MultiValidationError struct {
	Errors []*ValidationError
}

func (e *MultiValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "validation failed"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}

	msgs := make([]string, len(e.Errors))
	for i, err := range e.Errors {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(msgs, "; "))
}

func (e *MultiValidationError) Is(target error) bool {
	return target == ErrSchemaValidation
}

// Details lists the failing record indexes and field names.
func (e *MultiValidationError) Details() map[string]interface{} {
	d := make(map[string]interface{})
	var fields []string
	var indexes []int
	for _, ve := range e.Errors {
		if ve.Field != "" {
			fields = append(fields, ve.Field)
		}
		if ve.Index >= 0 {
			indexes = append(indexes, ve.Index)
		}
	}
	if len(fields) > 0 {
		d["fields"] = fields
	}
	if len(indexes) > 0 {
		d["indexes"] = indexes
	}
	return d
}

// NewUnknownFieldError reports a field name that is not part of the schema.
// It matches both ErrSchemaValidation and ErrFieldNotFound.
func NewUnknownFieldError(field string) *ValidationError {
	return &ValidationError{
		Index:   -1,
		Field:   field,
		Message: "not a transaction field",
		cause:   ErrFieldNotFound,
	}
}

func newRequiredFieldError(index int, field string) *ValidationError {
	return &ValidationError{Index: index, Field: field, Message: "required field is missing"}
}

func newTypeError(index int, field string, expected string, actual any, cause error) *ValidationError {
	msg := fmt.Sprintf("expected %s, got %T", expected, actual)
	if cause != nil {
		msg = fmt.Sprintf("expected %s: %v", expected, cause)
	}
	return &ValidationError{Index: index, Field: field, Message: msg, cause: cause}
}
