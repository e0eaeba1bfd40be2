// Package rules holds the declarative pattern rule set: its data model, the
// TOML and YAML loaders, structural validation, and a holder that lets a
// reloaded set replace the live one atomically.
package rules

import (
	"fmt"

	"github.com/pcmnking/liangfstar/internal/chart"
)

// TriggerType selects which predicate a trigger evaluates.
type TriggerType string

// Trigger types.
const (
	// TriggerFly checks where a sector's transformation lands.
	TriggerFly TriggerType = "fly"
	// TriggerSelf checks whether a sector's own stem transforms a star inside it.
	TriggerSelf TriggerType = "self"
	// TriggerExist checks for a birth transformation already sitting in a sector.
	TriggerExist TriggerType = "exist"
)

// Severity levels accepted on rules.
const (
	SeverityHigh   = "high"
	SeverityMedium = "medium"
	SeverityLow    = "low"
)

// Trigger is one predicate of a rule's conjunction, as written in rule
// files. Roles and kinds are kept as strings so a file with a typo still
// loads far enough to be validated.
type Trigger struct {
	Type           TriggerType `toml:"type" yaml:"type" json:"type"`
	Source         string      `toml:"source" yaml:"source" json:"source"`
	Transform      string      `toml:"transform,omitempty" yaml:"transform,omitempty" json:"transform,omitempty"`
	Target         string      `toml:"target,omitempty" yaml:"target,omitempty" json:"target,omitempty"`
	CheckCollision bool        `toml:"check_collision,omitempty" yaml:"check_collision,omitempty" json:"check_collision,omitempty"`
	// HasBirthTransform is the kind an exist trigger looks for.
	HasBirthTransform string `toml:"has_birth_transform,omitempty" yaml:"has_birth_transform,omitempty" json:"has_birth_transform,omitempty"`
}

// Content is the interpretation payload of a rule. The engine never reads it.
type Content struct {
	Insight string `toml:"insight" yaml:"insight" json:"insight"`
	Advice  string `toml:"advice" yaml:"advice" json:"advice"`
}

// Rule is a named conjunction of triggers.
type Rule struct {
	ID       string    `toml:"id" yaml:"id" json:"id"`
	Name     string    `toml:"name" yaml:"name" json:"name"`
	Category string    `toml:"category" yaml:"category" json:"category"`
	Severity string    `toml:"severity" yaml:"severity" json:"severity"`
	Triggers []Trigger `toml:"triggers" yaml:"triggers" json:"triggers"`
	Content  Content   `toml:"content" yaml:"content" json:"content"`
}

// RuleSet is an ordered, read-only list of rules. Evaluation preserves this
// order.
type RuleSet struct {
	Rules  []Rule
	Source string
}

// Find returns the rule with the given ID.
func (rs *RuleSet) Find(id string) (Rule, bool) {
	if rs == nil {
		return Rule{}, false
	}
	for _, r := range rs.Rules {
		if r.ID == id {
			return r, true
		}
	}
	return Rule{}, false
}

// Len returns the number of rules, treating nil as empty.
func (rs *RuleSet) Len() int {
	if rs == nil {
		return 0
	}
	return len(rs.Rules)
}

// Predicate is a trigger with its roles and kind resolved.
type Predicate struct {
	Type      TriggerType
	Source    chart.Role
	Kind      chart.Kind
	Target    chart.Role
	HasTarget bool
	Collision bool
}

// Predicate resolves the trigger's role and kind names. Exist triggers take
// their kind from has_birth_transform, falling back to transform.
func (t Trigger) Predicate() (Predicate, error) {
	p := Predicate{Type: t.Type, Target: chart.RoleNone, Collision: t.CheckCollision}
	switch t.Type {
	case TriggerFly, TriggerSelf, TriggerExist:
	default:
		return p, fmt.Errorf("%w: %q", ErrUnknownTriggerType, t.Type)
	}

	src, err := chart.ParseRole(t.Source)
	if err != nil {
		return p, fmt.Errorf("%w: source %q", ErrUnknownRole, t.Source)
	}
	p.Source = src

	kindName := t.Transform
	if t.Type == TriggerExist && t.HasBirthTransform != "" {
		kindName = t.HasBirthTransform
	}
	k, err := chart.ParseKind(kindName)
	if err != nil {
		return p, fmt.Errorf("%w: %q", ErrUnknownKind, kindName)
	}
	p.Kind = k

	if t.Target != "" {
		tgt, err := chart.ParseRole(t.Target)
		if err != nil {
			return p, fmt.Errorf("%w: target %q", ErrUnknownRole, t.Target)
		}
		p.Target = tgt
		p.HasTarget = true
	}
	return p, nil
}

// Describe renders the trigger in the compact notation used for match
// traces: ming化ji入fude, fude自化ji, fude坐lu. Collision checks carry a
// (沖) prefix.
func (t Trigger) Describe() string {
	switch t.Type {
	case TriggerFly:
		s := t.Source + "化" + t.Transform
		if t.Target != "" {
			s += "入" + t.Target
		}
		if t.CheckCollision {
			s = "(沖)" + s
		}
		return s
	case TriggerSelf:
		return t.Source + "自化" + t.Transform
	case TriggerExist:
		k := t.HasBirthTransform
		if k == "" {
			k = t.Transform
		}
		return t.Source + "坐" + k
	default:
		return string(t.Type)
	}
}
