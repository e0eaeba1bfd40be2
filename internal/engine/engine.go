// Package engine evaluates pattern rules against a computed chart. A rule
// matches when every one of its triggers holds. Evaluation never fails: a
// trigger that cannot be resolved against the chart is simply false.
package engine

import (
	"github.com/pcmnking/liangfstar/internal/chart"
	"github.com/pcmnking/liangfstar/internal/rules"
	"github.com/pcmnking/liangfstar/internal/transform"
)

// Match is a rule that held for a chart, with one trace line per trigger.
type Match struct {
	ID       string          `json:"id" yaml:"id"`
	Label    string          `json:"label" yaml:"label"`
	Category string          `json:"category" yaml:"category"`
	Severity string          `json:"severity" yaml:"severity"`
	Content  rules.Content   `json:"content" yaml:"content"`
	Triggers []rules.Trigger `json:"triggers" yaml:"triggers"`
	Trace    []string        `json:"trace" yaml:"trace"`
}

// Engine is a stateless evaluator bound to a transformation resolver.
type Engine struct {
	resolver *transform.Resolver
}

// New returns an Engine over r, or over the default table when r is nil.
func New(r *transform.Resolver) *Engine {
	if r == nil {
		r = transform.NewResolver(nil)
	}
	return &Engine{resolver: r}
}

// Evaluate returns the rules of rs that hold for c, in rule set order. It
// only reads c.
func (e *Engine) Evaluate(c *chart.Chart, rs *rules.RuleSet) []Match {
	if rs == nil {
		return nil
	}
	var out []Match
	for _, r := range rs.Rules {
		if len(r.Triggers) == 0 {
			continue
		}
		trace := make([]string, 0, len(r.Triggers))
		matched := true
		for _, t := range r.Triggers {
			ok, line := e.Check(c, t)
			if !ok {
				matched = false
				break
			}
			trace = append(trace, line)
		}
		if !matched {
			continue
		}
		out = append(out, Match{
			ID:       r.ID,
			Label:    r.Name,
			Category: r.Category,
			Severity: r.Severity,
			Content:  r.Content,
			Triggers: r.Triggers,
			Trace:    trace,
		})
	}
	return out
}

// Check evaluates a single trigger. The returned line describes how it
// held and is empty when it did not.
func (e *Engine) Check(c *chart.Chart, t rules.Trigger) (bool, string) {
	p, err := t.Predicate()
	if err != nil {
		return false, ""
	}
	src, ok := c.SectorForRole(p.Source)
	if !ok {
		return false, ""
	}

	switch p.Type {
	case rules.TriggerFly:
		return e.fly(c, src, p, t)
	case rules.TriggerSelf:
		if e.resolver.IsSelfTransformation(c, src, p.Kind) {
			return true, t.Describe()
		}
	case rules.TriggerExist:
		if src.HasBirthKind(p.Kind) {
			return true, t.Describe()
		}
	}
	return false, ""
}

func (e *Engine) fly(c *chart.Chart, src *chart.Sector, p rules.Predicate, t rules.Trigger) (bool, string) {
	stem, ok := src.Stem()
	if !ok {
		return false, ""
	}
	landing, ok := e.resolver.FlightTarget(c, stem, p.Kind)
	if !ok {
		return false, ""
	}

	plain := t
	plain.CheckCollision = false
	line := plain.Describe()

	if !p.HasTarget {
		return true, line
	}
	if landing.Role() == p.Target {
		return true, line
	}
	if !p.Collision {
		return false, ""
	}
	// Landing opposite the target sector clashes it.
	want, ok := c.SectorForRole(p.Target)
	if !ok {
		return false, ""
	}
	if landing.Branch().IsOpposite(want.Branch()) {
		return true, "(沖)" + line
	}
	return false, ""
}
