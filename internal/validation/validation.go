package validation

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FieldSet lists the required and numeric fields of one record kind.
type FieldSet struct {
	Required []string
	Numeric  []string
}

// Validate checks an arbitrary input mapping against the field set and
// returns human-readable problems, one per offending field. An empty
// result means the input is acceptable for creation.
func (fs FieldSet) Validate(input map[string]any) []string {
	var problems []string

	for _, field := range fs.Required {
		v, ok := input[field]
		if !ok || v == nil || v == "" {
			problems = append(problems, fmt.Sprintf("Missing required field: %s", field))
		}
	}

	problems = append(problems, fs.numericProblems(input)...)
	return problems
}

// ValidatePartial applies only the numeric rules to the fields present in
// the input. Used for update payloads, where any subset of fields may be
// supplied.
func (fs FieldSet) ValidatePartial(input map[string]any) []string {
	return fs.numericProblems(input)
}

func (fs FieldSet) numericProblems(input map[string]any) []string {
	var problems []string
	for _, field := range fs.Numeric {
		v, ok := input[field]
		if !ok || v == nil {
			continue
		}
		if _, err := Number(v); err != nil {
			problems = append(problems, fmt.Sprintf("Field %s must be a valid number", field))
		}
	}
	return problems
}

// Error is a validation failure carrying the per-field problem list.
// The route layer maps it to a 400 response.
type Error struct {
	Problems []string
}

func (e *Error) Error() string {
	return "Validation failed: " + strings.Join(e.Problems, ", ")
}

// Number coerces a decoded JSON value to a float64. Numeric strings are
// accepted; NaN, booleans, and anything else are not.
func Number(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		if math.IsNaN(n) {
			return 0, fmt.Errorf("value is NaN")
		}
		return n, nil
	case float32:
		if math.IsNaN(float64(n)) {
			return 0, fmt.Errorf("value is NaN")
		}
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case json.Number:
		return Number(string(n))
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil || math.IsNaN(parsed) {
			return 0, fmt.Errorf("%q is not a number", n)
		}
		return parsed, nil
	default:
		return 0, fmt.Errorf("value of type %T is not a number", v)
	}
}

// String renders a decoded JSON value for storage in a text field.
func String(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}
