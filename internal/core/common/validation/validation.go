package validation

import (
	"fmt"
	"strings"

	errors "github.com/frahmantamala/migration-tracker/internal"
)

// RuleFunc inspects a value and reports at most one violation.
type RuleFunc func(interface{}) *errors.ValidationError

type fieldRules struct {
	name  string
	value interface{}
	rules []RuleFunc
}

// Builder accumulates per-field rules and evaluates them in declaration
// order. All violations are collected; evaluation never short-circuits.
type Builder struct {
	fields []fieldRules
}

func NewBuilder() *Builder {
	return &Builder{}
}

type FieldBuilder struct {
	field *fieldRules
}

func (b *Builder) Field(name string, value interface{}) *FieldBuilder {
	b.fields = append(b.fields, fieldRules{name: name, value: value})
	return &FieldBuilder{field: &b.fields[len(b.fields)-1]}
}

func (fb *FieldBuilder) Required() *FieldBuilder {
	name := fb.field.name
	fb.field.rules = append(fb.field.rules, func(value interface{}) *errors.ValidationError {
		switch v := value.(type) {
		case string:
			if strings.TrimSpace(v) == "" {
				return requiredError(name)
			}
		case *string:
			if v == nil || strings.TrimSpace(*v) == "" {
				return requiredError(name)
			}
		case int64:
			if v == 0 {
				return requiredError(name)
			}
		}
		return nil
	})
	return fb
}

func (fb *FieldBuilder) MaxLength(max int) *FieldBuilder {
	name := fb.field.name
	fb.field.rules = append(fb.field.rules, func(value interface{}) *errors.ValidationError {
		if v, ok := value.(string); ok && len(v) > max {
			return &errors.ValidationError{
				Field:   name,
				Message: fmt.Sprintf("%s must not exceed %d characters", name, max),
				Code:    string(errors.ErrCodeValidationFailed),
			}
		}
		return nil
	})
	return fb
}

// Custom attaches an arbitrary rule. The rule receives the field's value
// and returns nil when it holds.
func (fb *FieldBuilder) Custom(rule RuleFunc) *FieldBuilder {
	fb.field.rules = append(fb.field.rules, rule)
	return fb
}

// Validate runs every rule and returns a single validation error carrying
// all violations, or nil when everything holds.
func (b *Builder) Validate() error {
	var violations []errors.ValidationError
	for _, field := range b.fields {
		for _, rule := range field.rules {
			if v := rule(field.value); v != nil {
				violations = append(violations, *v)
			}
		}
	}
	if len(violations) > 0 {
		return errors.NewValidationFailedError(violations)
	}
	return nil
}

func requiredError(name string) *errors.ValidationError {
	return &errors.ValidationError{
		Field:   name,
		Message: fmt.Sprintf("%s is required", name),
		Code:    string(errors.ErrCodeFieldRequired),
	}
}
