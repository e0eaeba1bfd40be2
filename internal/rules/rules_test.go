package rules

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/pcmnking/liangfstar/internal/chart"
)

const minimalTOML = `
[[rules]]
id = "ONLY"
name = "only"
severity = "low"
[[rules.triggers]]
type = "self"
source = "ming"
transform = "lu"
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefault(t *testing.T) {
	t.Parallel()

	rs := Default()
	if rs.Len() != 17 {
		t.Fatalf("default set has %d rules, want 17", rs.Len())
	}
	if errs := Validate(rs); len(errs) != 0 {
		t.Fatalf("default set fails validation: %v", errs)
	}
	if rs.Rules[0].ID != "WEALTH_ANXIETY" || rs.Rules[16].ID != "TROJAN_HORSE" {
		t.Errorf("order not preserved: first=%s last=%s", rs.Rules[0].ID, rs.Rules[16].ID)
	}

	r, ok := rs.Find("MISPLACED_GENIUS_LU")
	if !ok {
		t.Fatal("MISPLACED_GENIUS_LU missing")
	}
	want := []Trigger{
		{Type: TriggerFly, Source: "career", Transform: "ji", Target: "ming", CheckCollision: true},
		{Type: TriggerFly, Source: "ming", Transform: "lu", Target: "career"},
	}
	if diff := cmp.Diff(want, r.Triggers); diff != "" {
		t.Errorf("triggers mismatch (-want +got):\n%s", diff)
	}
	if r.Content.Insight == "" || r.Content.Advice == "" {
		t.Error("content not decoded")
	}

	if Default() != rs {
		t.Error("Default should return the shared parsed set")
	}
}

func TestParse_TOMLAndYAMLAgree(t *testing.T) {
	t.Parallel()

	tomlData := `
[[rules]]
id = "OVERTHINKER"
name = "Overthinker"
category = "self"
severity = "medium"

[[rules.triggers]]
type = "fly"
source = "ming"
transform = "ji"
target = "fude"

[[rules.triggers]]
type = "exist"
source = "fude"
has_birth_transform = "lu"
`
	yamlData := `
rules:
  - id: OVERTHINKER
    name: Overthinker
    category: self
    severity: medium
    triggers:
      - type: fly
        source: ming
        transform: ji
        target: fude
      - type: exist
        source: fude
        has_birth_transform: lu
`
	a, err := Parse([]byte(tomlData), FormatTOML, "a.toml")
	if err != nil {
		t.Fatalf("toml: %v", err)
	}
	b, err := Parse([]byte(yamlData), FormatYAML, "b.yaml")
	if err != nil {
		t.Fatalf("yaml: %v", err)
	}
	if diff := cmp.Diff(a.Rules, b.Rules); diff != "" {
		t.Errorf("encodings disagree (-toml +yaml):\n%s", diff)
	}
}

func TestParse_RejectsUnknownFields(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		format Format
		data   string
	}{
		{
			name:   "toml collision mode",
			format: FormatTOML,
			data: `
[[rules]]
id = "X"
name = "x"
severity = "high"
[[rules.triggers]]
type = "fly"
source = "career"
transform = "ji"
target = "ming"
collision_mode = "sanfang"
`,
		},
		{
			name:   "yaml typo",
			format: FormatYAML,
			data: `
rules:
  - id: X
    name: x
    severity: high
    trigers: []
`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, err := Parse([]byte(tt.data), tt.format, "bad"); err == nil {
				t.Error("expected unknown field to be rejected")
			}
		})
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	good := Rule{
		ID: "A", Name: "a", Severity: SeverityHigh,
		Triggers: []Trigger{{Type: TriggerSelf, Source: "ming", Transform: "ji"}},
	}
	tests := []struct {
		name    string
		mutate  func(*Rule)
		wantErr error
		wantCat ValidationCategory
	}{
		{"missing name", func(r *Rule) { r.Name = "" }, ErrMissingField, ValCatMissingField},
		{"bad severity", func(r *Rule) { r.Severity = "critical" }, ErrInvalidSeverity, ValCatInvalidSeverity},
		{"no triggers", func(r *Rule) { r.Triggers = nil }, ErrMissingField, ValCatMissingField},
		{"unknown role", func(r *Rule) { r.Triggers[0].Source = "palace" }, ErrUnknownRole, ValCatUnknownRole},
		{"unknown kind", func(r *Rule) { r.Triggers[0].Transform = "chong" }, ErrUnknownKind, ValCatUnknownKind},
		{"unknown type", func(r *Rule) { r.Triggers[0].Type = "clash" }, ErrUnknownTriggerType, ValCatUnknownType},
		{"self with target", func(r *Rule) { r.Triggers[0].Target = "fude" }, ErrInvalidTrigger, ValCatInvalidTrigger},
		{"collision without target", func(r *Rule) {
			r.Triggers[0] = Trigger{Type: TriggerFly, Source: "career", Transform: "ji", CheckCollision: true}
		}, ErrInvalidTrigger, ValCatInvalidTrigger},
		{"empty source", func(r *Rule) { r.Triggers[0].Source = "" }, ErrMissingField, ValCatMissingField},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			r := good
			r.Triggers = append([]Trigger(nil), good.Triggers...)
			tt.mutate(&r)
			errs := Validate(&RuleSet{Rules: []Rule{r}, Source: "t.toml"})
			if len(errs) != 1 {
				t.Fatalf("got %d errors, want 1: %v", len(errs), errs)
			}
			if !errors.Is(&errs[0], tt.wantErr) {
				t.Errorf("err = %v, want %v", errs[0].Err, tt.wantErr)
			}
			if errs[0].Category != tt.wantCat {
				t.Errorf("category = %s, want %s", errs[0].Category, tt.wantCat)
			}
			if !strings.Contains(errs[0].Error(), "t.toml: rule A") {
				t.Errorf("message lacks context: %s", errs[0].Error())
			}
		})
	}

	t.Run("duplicate id", func(t *testing.T) {
		t.Parallel()
		errs := Validate(&RuleSet{Rules: []Rule{good, good}})
		if len(errs) != 1 || errs[0].Category != ValCatDuplicateID {
			t.Errorf("errs = %v", errs)
		}
	})
}

func TestTrigger_Predicate(t *testing.T) {
	t.Parallel()

	p, err := Trigger{Type: TriggerExist, Source: "遷移", HasBirthTransform: "權"}.Predicate()
	if err != nil {
		t.Fatal(err)
	}
	want := Predicate{Type: TriggerExist, Source: chart.RoleMigration, Kind: chart.KindQuan, Target: chart.RoleNone}
	if diff := cmp.Diff(want, p); diff != "" {
		t.Errorf("predicate mismatch (-want +got):\n%s", diff)
	}

	p, err = Trigger{Type: TriggerFly, Source: "career", Transform: "ji", Target: "ming", CheckCollision: true}.Predicate()
	if err != nil {
		t.Fatal(err)
	}
	if !p.HasTarget || p.Target != chart.RoleMing || !p.Collision {
		t.Errorf("fly predicate = %+v", p)
	}
}

func TestTrigger_Describe(t *testing.T) {
	t.Parallel()

	tests := []struct {
		trigger Trigger
		want    string
	}{
		{Trigger{Type: TriggerFly, Source: "ming", Transform: "ji", Target: "fude"}, "ming化ji入fude"},
		{Trigger{Type: TriggerFly, Source: "career", Transform: "ji", Target: "ming", CheckCollision: true}, "(沖)career化ji入ming"},
		{Trigger{Type: TriggerSelf, Source: "fude", Transform: "ji"}, "fude自化ji"},
		{Trigger{Type: TriggerExist, Source: "fude", HasBirthTransform: "lu"}, "fude坐lu"},
	}
	for _, tt := range tests {
		if got := tt.trigger.Describe(); got != tt.want {
			t.Errorf("Describe() = %q, want %q", got, tt.want)
		}
	}
}

func TestLoad(t *testing.T) {
	t.Parallel()

	bad := writeFile(t, "bad.yaml", `
rules:
  - id: X
    name: x
    severity: high
    triggers:
      - type: self
        source: nowhere
        transform: ji
`)
	_, err := Load(bad)
	if !errors.Is(err, ErrInvalidRuleSet) || !errors.Is(err, ErrUnknownRole) {
		t.Errorf("Load(bad) err = %v", err)
	}
	var ve *ValidationError
	if !errors.As(err, &ve) || ve.SourceFile != "bad.yaml" {
		t.Errorf("expected a ValidationError from bad.yaml, got %v", err)
	}

	if _, err := Load(writeFile(t, "rules.json", "{}")); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("json err = %v", err)
	}

	rs, err := LoadOrDefault("")
	if err != nil || rs != Default() {
		t.Errorf("LoadOrDefault(\"\") = %v, %v", rs, err)
	}
}

func TestHolder_Reload(t *testing.T) {
	t.Parallel()

	h := NewHolder(Default())
	good := writeFile(t, "one.toml", minimalTOML)
	rs, err := h.Reload(good)
	if err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if h.Current() != rs || rs.Len() != 1 {
		t.Errorf("reloaded set not published")
	}

	bad := writeFile(t, "bad.toml", `[[rules]]
id = ""
`)
	if _, err := h.Reload(bad); err == nil {
		t.Fatal("expected reload error")
	}
	if h.Current() != rs {
		t.Error("failed reload must keep the previous set live")
	}

	if prev := h.Swap(Default()); prev != rs {
		t.Error("Swap should return the replaced set")
	}
}

func TestWatcher_ReportsSettledChange(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "rules.toml")
	if err := os.WriteFile(path, []byte(minimalTOML), 0o644); err != nil {
		t.Fatal(err)
	}
	w, err := NewWatcher(path)
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	if err := w.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer w.Stop()

	// Unrelated files in the same directory are ignored.
	if err := os.WriteFile(filepath.Join(filepath.Dir(path), "other.toml"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	select {
	case got := <-w.Changes:
		t.Fatalf("unexpected change for %s", got)
	case <-time.After(3 * debounce):
	}

	for range 3 {
		if err := os.WriteFile(path, []byte(minimalTOML), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	select {
	case got := <-w.Changes:
		if got != w.Path {
			t.Errorf("change for %s, want %s", got, w.Path)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no change reported")
	}
}
