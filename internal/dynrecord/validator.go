package dynrecord

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/frahmantamala/migration-tracker/internal"
	"github.com/frahmantamala/migration-tracker/internal/fielddef"
	"github.com/frahmantamala/migration-tracker/internal/lookup"
)

// DateLayout is the normalized form for date values in record payloads.
const DateLayout = "2006-01-02"

var acceptedDateLayouts = []string{DateLayout, time.RFC3339}

// Validator turns untyped candidate input into the typed field mapping the
// store accepts. It is the single gatekeeper on that path: stateless, pure
// over its inputs, safe for concurrent use.
type Validator struct{}

func NewValidator() *Validator {
	return &Validator{}
}

// Validate checks candidate against the field definitions and returns the
// normalized payload, or the per-field violations sorted by display order.
//
// options maps each lookup source ref to its resolved option set;
// lookupFailures marks refs that could not be resolved this request.
// legacy is the record's existing payload on updates (nil for creates):
// values held under now-inactive definitions pass through unchanged and
// unvalidated, so historical records survive schema evolution.
//
// Candidate keys matching no definition are dropped silently; stale client
// state must not leak schema drift into storage.
func (v *Validator) Validate(
	defs []*fielddef.FieldDefinition,
	candidate map[string]any,
	options map[string][]lookup.Option,
	lookupFailures map[string]error,
	legacy map[string]any,
) (map[string]any, []internal.ValidationError) {

	ordered := make([]*fielddef.FieldDefinition, len(defs))
	copy(ordered, defs)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].DisplayOrder != ordered[j].DisplayOrder {
			return ordered[i].DisplayOrder < ordered[j].DisplayOrder
		}
		return ordered[i].ID < ordered[j].ID
	})

	normalized := make(map[string]any)
	var violations []internal.ValidationError

	for _, def := range ordered {
		if !def.IsActive {
			// legacy passthrough: the historical value wins, whatever the
			// candidate says, and is never re-validated
			if legacy != nil {
				if old, ok := legacy[def.Name]; ok {
					normalized[def.Name] = old
				}
			}
			continue
		}

		raw, present := candidate[def.Name]
		if present && isEmpty(raw) {
			present = false
		}

		if !present {
			if def.DefaultValue != nil && *def.DefaultValue != "" {
				// defaults are exempt from Required but still typed and
				// pattern-checked below
				raw = *def.DefaultValue
			} else {
				if def.IsRequired {
					violations = append(violations, violation(def, internal.ErrCodeFieldRequired,
						fmt.Sprintf("%s is required", def.Name)))
				}
				continue
			}
		}

		value, verr := v.coerce(def, raw, options, lookupFailures)
		if verr != nil {
			violations = append(violations, *verr)
			continue
		}

		if def.ValidationPattern != nil && *def.ValidationPattern != "" {
			if !matchPattern(*def.ValidationPattern, stringForm(value)) {
				violations = append(violations, violation(def, internal.ErrCodePatternMismatch,
					fmt.Sprintf("%s does not match the required format", def.Name)))
				continue
			}
		}

		normalized[def.Name] = value
	}

	if len(violations) > 0 {
		return nil, violations
	}
	return normalized, nil
}

func (v *Validator) coerce(
	def *fielddef.FieldDefinition,
	raw any,
	options map[string][]lookup.Option,
	lookupFailures map[string]error,
) (any, *internal.ValidationError) {

	switch def.DataType {
	case fielddef.DataTypeText, fielddef.DataTypeTextarea:
		return strings.TrimSpace(fmt.Sprintf("%v", raw)), nil

	case fielddef.DataTypeNumber:
		n, ok := toNumber(raw)
		if !ok || math.IsNaN(n) || math.IsInf(n, 0) {
			verr := violation(def, internal.ErrCodeInvalidNumber,
				fmt.Sprintf("%s must be a number", def.Name))
			return nil, &verr
		}
		return n, nil

	case fielddef.DataTypeBoolean:
		b, ok := toBoolean(raw)
		if !ok {
			verr := violation(def, internal.ErrCodeInvalidBoolean,
				fmt.Sprintf("%s must be a boolean", def.Name))
			return nil, &verr
		}
		return b, nil

	case fielddef.DataTypeDate:
		s := strings.TrimSpace(fmt.Sprintf("%v", raw))
		for _, layout := range acceptedDateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t.Format(DateLayout), nil
			}
		}
		verr := violation(def, internal.ErrCodeInvalidDate,
			fmt.Sprintf("%s must be a valid date", def.Name))
		return nil, &verr

	case fielddef.DataTypeSelect:
		key := strings.TrimSpace(fmt.Sprintf("%v", raw))
		ref := ""
		if def.LookupSourceRef != nil {
			ref = *def.LookupSourceRef
		}
		if _, failed := lookupFailures[ref]; failed {
			// the option set is unknowable this request; membership cannot
			// be confirmed, so selecting a value is rejected rather than
			// silently accepted
			verr := violation(def, internal.ErrCodeLookupUnavailable,
				fmt.Sprintf("options for %s are temporarily unavailable", def.Name))
			return nil, &verr
		}
		for _, opt := range options[ref] {
			if opt.Key == key {
				return key, nil
			}
		}
		verr := violation(def, internal.ErrCodeInvalidOption,
			fmt.Sprintf("%s is not a valid option for %s", key, def.Name))
		return nil, &verr
	}

	verr := violation(def, internal.ErrCodeValidationFailed,
		fmt.Sprintf("%s has an unsupported data type", def.Name))
	return nil, &verr
}

func violation(def *fielddef.FieldDefinition, code internal.ErrorCode, message string) internal.ValidationError {
	return internal.ValidationError{
		Field:   def.Name,
		Message: message,
		Code:    string(code),
	}
}

func isEmpty(v any) bool {
	if v == nil {
		return true
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s) == ""
	}
	return false
}

func toNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	}
	return 0, false
}

func toBoolean(v any) (bool, bool) {
	switch b := v.(type) {
	case bool:
		return b, true
	case float64:
		if b == 0 {
			return false, true
		}
		if b == 1 {
			return true, true
		}
		return false, false
	case string:
		switch strings.ToLower(strings.TrimSpace(b)) {
		case "true", "1", "yes":
			return true, true
		case "false", "0", "no":
			return false, true
		}
	}
	return false, false
}

// stringForm renders a coerced value the way pattern checks see it.
func stringForm(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	}
	return fmt.Sprintf("%v", v)
}

func matchPattern(pattern, s string) bool {
	re, err := regexp.Compile(pattern)
	if err != nil {
		// unparseable patterns are rejected at definition time; treat a
		// stored bad pattern as non-matching rather than panicking
		return false
	}
	return re.MatchString(s)
}
