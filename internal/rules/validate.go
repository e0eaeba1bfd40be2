package rules

import (
	"errors"
	"fmt"
)

// Validate checks a rule set for structural correctness: required fields,
// unique IDs, resolvable roles and kinds, and trigger field combinations.
// It reports every problem rather than stopping at the first.
func Validate(rs *RuleSet) []ValidationError {
	var errs []ValidationError
	if rs == nil {
		return nil
	}
	src := rs.Source

	seen := make(map[string]int) // id → index
	for i, r := range rs.Rules {
		if r.ID == "" {
			errs = append(errs, ValidationError{
				Category:   ValCatMissingField,
				SourceFile: src,
				Field:      fmt.Sprintf("rules[%d].id", i),
				Err:        fmt.Errorf("%w: id", ErrMissingField),
			})
			continue
		}
		if prev, ok := seen[r.ID]; ok {
			errs = append(errs, ValidationError{
				Category:   ValCatDuplicateID,
				RuleID:     r.ID,
				SourceFile: src,
				Err:        fmt.Errorf("%w: %q already defined at rules[%d]", ErrDuplicateID, r.ID, prev),
			})
		} else {
			seen[r.ID] = i
		}

		if r.Name == "" {
			errs = append(errs, ValidationError{
				Category:   ValCatMissingField,
				RuleID:     r.ID,
				SourceFile: src,
				Field:      "name",
				Err:        fmt.Errorf("%w: name", ErrMissingField),
			})
		}
		switch r.Severity {
		case SeverityHigh, SeverityMedium, SeverityLow:
		default:
			errs = append(errs, ValidationError{
				Category:   ValCatInvalidSeverity,
				RuleID:     r.ID,
				SourceFile: src,
				Field:      "severity",
				Err:        fmt.Errorf("%w: %q", ErrInvalidSeverity, r.Severity),
			})
		}
		// An empty conjunction would match every chart.
		if len(r.Triggers) == 0 {
			errs = append(errs, ValidationError{
				Category:   ValCatMissingField,
				RuleID:     r.ID,
				SourceFile: src,
				Field:      "triggers",
				Err:        fmt.Errorf("%w: triggers", ErrMissingField),
			})
		}

		for j, t := range r.Triggers {
			field := fmt.Sprintf("triggers[%d]", j)
			if err := checkTrigger(t); err != nil {
				errs = append(errs, ValidationError{
					Category:   categorize(err),
					RuleID:     r.ID,
					SourceFile: src,
					Field:      field,
					Err:        err,
				})
			}
		}
	}
	return errs
}

func checkTrigger(t Trigger) error {
	if t.Source == "" {
		return fmt.Errorf("%w: source", ErrMissingField)
	}
	if _, err := t.Predicate(); err != nil {
		return err
	}
	switch t.Type {
	case TriggerFly:
		if t.CheckCollision && t.Target == "" {
			return fmt.Errorf("%w: check_collision needs a target", ErrInvalidTrigger)
		}
		if t.HasBirthTransform != "" {
			return fmt.Errorf("%w: has_birth_transform on a fly trigger", ErrInvalidTrigger)
		}
	case TriggerSelf:
		if t.Target != "" || t.CheckCollision {
			return fmt.Errorf("%w: self triggers take no target", ErrInvalidTrigger)
		}
	case TriggerExist:
		if t.Target != "" || t.CheckCollision {
			return fmt.Errorf("%w: exist triggers take no target", ErrInvalidTrigger)
		}
		if t.HasBirthTransform != "" && t.Transform != "" && t.HasBirthTransform != t.Transform {
			return fmt.Errorf("%w: transform and has_birth_transform disagree", ErrInvalidTrigger)
		}
	}
	return nil
}

func categorize(err error) ValidationCategory {
	switch {
	case errors.Is(err, ErrMissingField):
		return ValCatMissingField
	case errors.Is(err, ErrUnknownRole):
		return ValCatUnknownRole
	case errors.Is(err, ErrUnknownKind):
		return ValCatUnknownKind
	case errors.Is(err, ErrUnknownTriggerType):
		return ValCatUnknownType
	default:
		return ValCatInvalidTrigger
	}
}

// joinValidation folds validation errors into a single error wrapping
// ErrInvalidRuleSet.
func joinValidation(errs []ValidationError) error {
	if len(errs) == 0 {
		return nil
	}
	wrapped := make([]error, 0, len(errs)+1)
	wrapped = append(wrapped, ErrInvalidRuleSet)
	for i := range errs {
		wrapped = append(wrapped, &errs[i])
	}
	return errors.Join(wrapped...)
}
