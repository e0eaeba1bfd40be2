package calc

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/pcmnking/liangfstar/internal/chart"
	"github.com/pcmnking/liangfstar/internal/cycle"
)

func scenarioInputs() Inputs {
	return Inputs{
		BirthStem: "甲",
		YinStem:   "甲",
		Ming:      "寅",
		Ziwei:     "巳",
		Wenqu:     "辰",
		Wenchang:  "戌",
		Zuofu:     "辰",
		Youbi:     "戌",
	}
}

func TestCompute_Scenario(t *testing.T) {
	t.Parallel()

	c, err := New().Compute(scenarioInputs())
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}

	ming, ok := c.Ming()
	if !ok || ming.Branch() != 2 {
		t.Fatalf("Ming = %v, %v; want 寅", ming, ok)
	}
	if stem, _ := ming.Stem(); stem != 0 {
		t.Errorf("Ming stem = %s, want 甲", stem)
	}
	if s, _ := c.SectorForRole(chart.RoleProperty); s.Branch() != 5 {
		t.Errorf("田宅 on %s, want 巳", s.Branch())
	}

	// Birth stem 甲 seeds 廉貞祿 破軍權 in 酉, 武曲科 in 丑, 太陽忌 in 寅.
	want := map[cycle.Branch][]chart.BirthTransformation{
		9: {{Star: "廉貞", Kind: chart.KindLu}, {Star: "破軍", Kind: chart.KindQuan}},
		1: {{Star: "武曲", Kind: chart.KindKe}},
		2: {{Star: "太陽", Kind: chart.KindJi}},
	}
	for _, s := range c.Sectors() {
		if diff := cmp.Diff(want[s.Branch()], s.BirthTransformations()); diff != "" {
			t.Errorf("sector %s birth transformations (-want +got):\n%s", s.Branch(), diff)
		}
	}
}

func TestCompute_ManualStarCarriesBirth(t *testing.T) {
	t.Parallel()

	in := scenarioInputs()
	in.BirthStem = "己" // 武曲祿 貪狼權 天梁科 文曲忌
	c, err := New().Compute(in)
	if err != nil {
		t.Fatal(err)
	}
	if !c.Sector(4).HasBirthKind(chart.KindJi) {
		t.Error("文曲 in 辰 should carry the birth 忌")
	}

	in.Wenqu = ""
	c, err = New().Compute(in)
	if err != nil {
		t.Fatal(err)
	}
	total := 0
	for _, s := range c.Sectors() {
		total += len(s.BirthTransformations())
	}
	if total != 3 {
		t.Errorf("with 文曲 unplaced got %d birth transformations, want 3", total)
	}
}

func TestCompute_InvalidInputs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Inputs)
		want   error
	}{
		{"missing birth stem", func(in *Inputs) { in.BirthStem = "" }, ErrInvalidInput},
		{"bad yin stem", func(in *Inputs) { in.YinStem = "子" }, cycle.ErrInvalidStem},
		{"bad ming", func(in *Inputs) { in.Ming = "甲" }, cycle.ErrInvalidBranch},
		{"bad ziwei", func(in *Inputs) { in.Ziwei = "x" }, cycle.ErrInvalidBranch},
		{"bad manual", func(in *Inputs) { in.Youbi = "13" }, cycle.ErrInvalidBranch},
		{"bad year", func(in *Inputs) { in.Year = "?" }, ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			in := scenarioInputs()
			tt.mutate(&in)
			if _, err := New().Compute(in); !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
			if err := in.Validate(); !errors.Is(err, ErrInvalidInput) {
				t.Errorf("Validate err = %v, want ErrInvalidInput", err)
			}
		})
	}
}

func TestRecompute_NoPartialMutation(t *testing.T) {
	t.Parallel()

	calc := New()
	c, err := calc.Compute(scenarioInputs())
	if err != nil {
		t.Fatal(err)
	}
	before := c.Snapshot()

	bad := scenarioInputs()
	bad.Ziwei = "午"
	bad.Decade = "nope"
	if err := calc.Recompute(c, bad); err == nil {
		t.Fatal("expected an error")
	}
	if diff := cmp.Diff(before, c.Snapshot()); diff != "" {
		t.Errorf("failed Recompute mutated the chart (-before +after):\n%s", diff)
	}
}

func TestRecompute_Deterministic(t *testing.T) {
	t.Parallel()

	calc := New()
	in := scenarioInputs()
	in.Decade, in.Year = "午", "申"

	a, err := calc.Compute(in)
	if err != nil {
		t.Fatal(err)
	}
	b, err := calc.Compute(DefaultInputs())
	if err != nil {
		t.Fatal(err)
	}
	if err := calc.Recompute(b, in); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(a.Snapshot(), b.Snapshot()); diff != "" {
		t.Errorf("recompute over an old chart differs from a fresh compute (-fresh +reused):\n%s", diff)
	}
	if a.Decade().Branch != 6 || !a.Year().Set {
		t.Errorf("layers = %+v, %+v", a.Decade(), a.Year())
	}
}

func TestLoadBatch(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "charts.toml")
	content := `
[[charts]]
name = "alice"
birth_stem = "jia"
yin_stem = "bing"
ming = "yin"
ziwei = "wu"

[[charts]]
birth_stem = "癸"
yin_stem = "甲"
ming = "子"
ziwei = "子"
wenqu = "卯"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := LoadBatch(path)
	if err != nil {
		t.Fatalf("LoadBatch: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d charts, want 2", len(got))
	}
	if got[0].Name != "alice" || got[1].Name != "chart-2" {
		t.Errorf("names = %q, %q", got[0].Name, got[1].Name)
	}
	if got[1].Wenqu != "卯" {
		t.Errorf("wenqu = %q", got[1].Wenqu)
	}
	for _, ni := range got {
		if err := ni.Validate(); err != nil {
			t.Errorf("%s: %v", ni.Name, err)
		}
	}

	if _, err := LoadInputs(path); err == nil {
		t.Error("LoadInputs should reject a file without [chart]")
	}
}
