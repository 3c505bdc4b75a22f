package schema

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// Validator checks canonical records against the output contract before
// they are published. A validation failure is a record-level error: the
// record is logged and skipped, never published.
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a new Validator.
func NewValidator() *Validator {
	v := validator.New()

	// The canonical timestamp layout contains a space, which the built-in
	// datetime tag cannot express as a parameter.
	v.RegisterValidation("record_datetime", func(fl validator.FieldLevel) bool {
		_, err := time.Parse(DateTimeLayout, fl.Field().String())
		return err == nil
	})

	return &Validator{validate: v}
}

// Validate validates a canonical record. Returns an error describing the
// first violated constraint, or nil.
func (v *Validator) Validate(rec *CanonicalRecord) error {
	if err := v.validate.Struct(rec); err != nil {
		return fmt.Errorf("canonical record validation failed: %w", err)
	}
	return nil
}
