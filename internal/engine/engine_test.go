package engine

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/pcmnking/liangfstar/internal/calc"
	"github.com/pcmnking/liangfstar/internal/chart"
	"github.com/pcmnking/liangfstar/internal/cycle"
	"github.com/pcmnking/liangfstar/internal/rules"
)

// scenario: Ming 寅, yin stem 甲, 紫微 in 巳, birth stem 甲, 文曲/左輔 in 辰,
// 文昌/右弼 in 戌. Career sits on 午 (stem 戊) and flies 忌 through 天機
// into 辰 (福德), whose opposite is 戌 (財帛).
func scenario(t *testing.T, manual bool) *chart.Chart {
	t.Helper()
	in := calc.Inputs{BirthStem: "甲", YinStem: "甲", Ming: "寅", Ziwei: "巳"}
	if manual {
		in.Wenqu, in.Zuofu = "辰", "辰"
		in.Wenchang, in.Youbi = "戌", "戌"
	}
	c, err := calc.New().Compute(in)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	return c
}

func fly(source, kind, target string, collision bool) rules.Trigger {
	return rules.Trigger{Type: rules.TriggerFly, Source: source, Transform: kind, Target: target, CheckCollision: collision}
}

func TestCheck_Fly(t *testing.T) {
	t.Parallel()

	c := scenario(t, true)
	e := New(nil)

	tests := []struct {
		name     string
		trigger  rules.Trigger
		want     bool
		wantLine string
	}{
		{"exact target", fly("career", "ji", "fude", false), true, "career化ji入fude"},
		{"exact target with collision", fly("career", "ji", "fude", true), true, "career化ji入fude"},
		{"opposite without collision", fly("career", "ji", "wealth", false), false, ""},
		{"opposite with collision", fly("career", "ji", "wealth", true), true, "(沖)career化ji入wealth"},
		{"elsewhere with collision", fly("career", "ji", "ming", true), false, ""},
		{"no target lands anywhere", fly("career", "lu", "", false), true, "career化lu"},
		{"title spelling", fly("命宮", "忌", "命宮", false), true, "命宮化忌入命宮"},
		{"unknown source role", fly("palace", "ji", "ming", false), false, ""},
		{"unknown target role", fly("career", "ji", "palace", true), false, ""},
		{"unknown kind", fly("career", "chong", "fude", false), false, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, line := e.Check(c, tt.trigger)
			if got != tt.want || line != tt.wantLine {
				t.Errorf("Check = %v, %q; want %v, %q", got, line, tt.want, tt.wantLine)
			}
		})
	}
}

func TestCheck_FlyUnplacedStar(t *testing.T) {
	t.Parallel()

	// Without manual stars career's 科 (右弼) has nowhere to land.
	c := scenario(t, false)
	if ok, _ := New(nil).Check(c, fly("career", "ke", "", false)); ok {
		t.Error("flight of an unplaced star should be false")
	}
}

func TestCheck_SelfAndExist(t *testing.T) {
	t.Parallel()

	c := scenario(t, true)
	e := New(nil)

	tests := []struct {
		trigger rules.Trigger
		want    bool
	}{
		{rules.Trigger{Type: rules.TriggerSelf, Source: "ming", Transform: "ji"}, true},
		{rules.Trigger{Type: rules.TriggerSelf, Source: "fude", Transform: "quan"}, true},
		{rules.Trigger{Type: rules.TriggerSelf, Source: "fude", Transform: "ji"}, false},
		{rules.Trigger{Type: rules.TriggerExist, Source: "ming", HasBirthTransform: "ji"}, true},
		{rules.Trigger{Type: rules.TriggerExist, Source: "health", HasBirthTransform: "lu"}, true},
		{rules.Trigger{Type: rules.TriggerExist, Source: "health", HasBirthTransform: "quan"}, true},
		{rules.Trigger{Type: rules.TriggerExist, Source: "brother", Transform: "ke"}, true},
		{rules.Trigger{Type: rules.TriggerExist, Source: "fude", HasBirthTransform: "lu"}, false},
		{rules.Trigger{Type: "clash", Source: "ming", Transform: "ji"}, false},
	}
	for _, tt := range tests {
		if got, _ := e.Check(c, tt.trigger); got != tt.want {
			t.Errorf("Check(%s) = %v, want %v", tt.trigger.Describe(), got, tt.want)
		}
	}
}

func TestEvaluate_OrderAndPurity(t *testing.T) {
	t.Parallel()

	c := scenario(t, true)
	e := New(nil)
	rs := &rules.RuleSet{Rules: []rules.Rule{
		{ID: "R1", Name: "one", Severity: "high", Triggers: []rules.Trigger{
			fly("spouse", "ji", "ming", false),
			{Type: rules.TriggerExist, Source: "ming", HasBirthTransform: "ji"},
		}},
		{ID: "R2", Name: "two", Severity: "high", Triggers: []rules.Trigger{
			fly("spouse", "ji", "ming", false),
			fly("ming", "lu", "spouse", false),
		}},
		{ID: "R3", Name: "three", Severity: "medium", Triggers: []rules.Trigger{
			fly("career", "ji", "wealth", true),
		}},
		{ID: "R4", Name: "empty", Severity: "low"},
	}}

	before := c.Snapshot()
	got := e.Evaluate(c, rs)

	want := []Match{
		{
			ID: "R1", Label: "one", Severity: "high",
			Triggers: rs.Rules[0].Triggers,
			Trace:    []string{"spouse化ji入ming", "ming坐ji"},
		},
		{
			ID: "R3", Label: "three", Severity: "medium",
			Triggers: rs.Rules[2].Triggers,
			Trace:    []string{"(沖)career化ji入wealth"},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Evaluate mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(got, e.Evaluate(c, rs)); diff != "" {
		t.Errorf("repeated evaluation differs:\n%s", diff)
	}
	if diff := cmp.Diff(before, c.Snapshot()); diff != "" {
		t.Errorf("evaluation mutated the chart:\n%s", diff)
	}
}

func TestEvaluate_Total(t *testing.T) {
	t.Parallel()

	e := New(nil)
	if got := e.Evaluate(chart.New(), rules.Default()); len(got) != 0 {
		t.Errorf("an uncomputed chart has no roles, got %d matches", len(got))
	}
	if got := e.Evaluate(chart.New(), nil); got != nil {
		t.Errorf("nil rule set should yield nil, got %v", got)
	}

	// Every combination evaluates without panicking and traces every trigger.
	calculator := calc.New()
	for _, ming := range cycle.Branches() {
		for _, birth := range cycle.Stems() {
			c, err := calculator.Compute(calc.Inputs{
				BirthStem: birth.String(), YinStem: birth.Add(3).String(),
				Ming: ming.String(), Ziwei: ming.Add(5).String(),
				Wenqu: ming.Add(1).String(), Wenchang: ming.Add(7).String(),
			})
			if err != nil {
				t.Fatal(err)
			}
			for _, m := range e.Evaluate(c, rules.Default()) {
				if len(m.Trace) != len(m.Triggers) {
					t.Errorf("%s: %d trace lines for %d triggers", m.ID, len(m.Trace), len(m.Triggers))
				}
			}
		}
	}
}
