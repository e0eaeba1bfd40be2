package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/pcmnking/liangfstar/internal/calc"
	"github.com/pcmnking/liangfstar/internal/engine"
	"github.com/pcmnking/liangfstar/internal/rules"
)

// resetFlags restores every flag to its default so consecutive executions
// of the shared command tree do not leak state.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// execute runs the root command with args and returns stdout and stderr.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	viper.Reset()
	resetFlags(rootCmd)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	})

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(append(args, "--log-level", "error"))
	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

var scenarioFlags = []string{
	"--birth", "甲", "--yin", "甲", "--ming", "寅", "--ziwei", "巳",
	"--wenqu", "辰", "--zuofu", "辰", "--wenchang", "戌", "--youbi", "戌",
}

func scenarioInputs() calc.Inputs {
	return calc.Inputs{
		BirthStem: "甲", YinStem: "甲", Ming: "寅", Ziwei: "巳",
		Wenqu: "辰", Zuofu: "辰", Wenchang: "戌", Youbi: "戌",
	}
}

func TestChartCommand_JSON(t *testing.T) {
	out, _, err := execute(t, append([]string{"chart", "-o", "json"}, scenarioFlags...)...)
	if err != nil {
		t.Fatalf("chart: %v", err)
	}
	var got chartOutput
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	want, err := calc.New().Compute(scenarioInputs())
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(want.Snapshot(), got.Chart); diff != "" {
		t.Errorf("chart mismatch (-want +got):\n%s", diff)
	}
	if got.Analysis != nil {
		t.Error("analysis should be omitted without --analysis")
	}
}

func TestChartCommand_Board(t *testing.T) {
	out, _, err := execute(t, append([]string{"chart", "--analysis", "--decade", "午", "--year", "申"}, scenarioFlags...)...)
	if err != nil {
		t.Fatalf("chart: %v", err)
	}
	for _, want := range []string{"紫微", "命宮", "流年"} {
		if !strings.Contains(out, want) {
			t.Errorf("board output missing %q", want)
		}
	}
}

func TestChartCommand_InputFileWithOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chart.toml")
	content := "[chart]\nbirth_stem = \"jia\"\nyin_stem = \"jia\"\nming = \"yin\"\nziwei = \"wu\"\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	out, _, err := execute(t, "chart", "-o", "json", "-i", path, "--ziwei", "巳")
	if err != nil {
		t.Fatalf("chart: %v", err)
	}
	var got chartOutput
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatal(err)
	}
	for _, s := range got.Chart.Sectors {
		if s.Branch == "巳" && !strings.Contains(strings.Join(s.Stars, " "), "紫微") {
			t.Errorf("--ziwei should override the file: 巳 has %v", s.Stars)
		}
	}
}

func TestChartCommand_InvalidInput(t *testing.T) {
	_, _, err := execute(t, "chart", "--ming", "nowhere")
	if err == nil || !strings.Contains(err.Error(), "ming") {
		t.Fatalf("err = %v, want a ming input error", err)
	}
}

func TestEvaluateCommand_JSON(t *testing.T) {
	out, _, err := execute(t, append([]string{"evaluate", "-o", "json"}, scenarioFlags...)...)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	var got evaluateOutput
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	c, err := calc.New().Compute(scenarioInputs())
	if err != nil {
		t.Fatal(err)
	}
	want := engine.New(nil).Evaluate(c, rules.Default())
	if want == nil {
		want = []engine.Match{}
	}
	if diff := cmp.Diff(want, got.Matches); diff != "" {
		t.Errorf("matches mismatch (-want +got):\n%s", diff)
	}
}

func TestFlightsCommand(t *testing.T) {
	out, _, err := execute(t, append([]string{"flights", "ming", "-o", "json"}, scenarioFlags...)...)
	if err != nil {
		t.Fatalf("flights: %v", err)
	}
	var rows []flightRow
	if err := json.Unmarshal([]byte(out), &rows); err != nil {
		t.Fatal(err)
	}
	if len(rows) != 4 {
		t.Fatalf("got %d flights, want 4", len(rows))
	}
	if rows[3].Star != "太陽" || !rows[3].Self {
		t.Errorf("甲 忌 should be 太陽 flying back into 寅: %+v", rows[3])
	}

	out, _, err = execute(t, append([]string{"flights", "--incoming", "太陽", "-o", "json"}, scenarioFlags...)...)
	if err != nil {
		t.Fatalf("flights --incoming: %v", err)
	}
	var arrivals []arrivalRow
	if err := json.Unmarshal([]byte(out), &arrivals); err != nil {
		t.Fatal(err)
	}
	var sources []string
	for _, a := range arrivals {
		sources = append(sources, a.Source+a.Kind)
	}
	if diff := cmp.Diff([]string{"子忌", "寅忌", "申祿", "酉權"}, sources); diff != "" {
		t.Errorf("incoming mismatch (-want +got):\n%s", diff)
	}
}

func TestRulesValidateCommand(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.yaml")
	bad := filepath.Join(dir, "bad.yaml")
	goodYAML := `
rules:
  - id: ONLY
    name: only
    severity: low
    triggers:
      - type: self
        source: ming
        transform: lu
`
	badYAML := `
rules:
  - id: ONLY
    name: only
    severity: extreme
    triggers:
      - type: self
        source: attic
        transform: lu
`
	if err := os.WriteFile(good, []byte(goodYAML), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(bad, []byte(badYAML), 0o644); err != nil {
		t.Fatal(err)
	}

	_, stderr, err := execute(t, "rules", "validate", good, "--no-color")
	if err != nil {
		t.Fatalf("validate good: %v", err)
	}
	if !strings.Contains(stderr, "no errors") {
		t.Errorf("stderr = %q", stderr)
	}

	_, stderr, err = execute(t, "rules", "validate", bad, "--no-color")
	if err == nil || !strings.Contains(err.Error(), "2 error(s)") {
		t.Fatalf("validate bad err = %v", err)
	}
	if !strings.Contains(stderr, "ONLY") {
		t.Errorf("stderr should name the rule: %q", stderr)
	}
}

func TestRulesListCommand(t *testing.T) {
	out, _, err := execute(t, "rules", "list", "-o", "json")
	if err != nil {
		t.Fatalf("rules list: %v", err)
	}
	var got []rules.Rule
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatal(err)
	}
	if len(got) != rules.Default().Len() {
		t.Errorf("listed %d rules, want %d", len(got), rules.Default().Len())
	}
}

func TestBatchCommand(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "charts.toml")
	content := `
[[charts]]
name = "alice"
birth_stem = "甲"
yin_stem = "甲"
ming = "寅"
ziwei = "巳"

[[charts]]
birth_stem = "乙"
yin_stem = "丙"
ming = "nowhere"
ziwei = "午"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	events := filepath.Join(dir, "events.jsonl")

	out, _, err := execute(t, "batch", path, "-o", "json", "--workers", "2", "--telemetry", events)
	if err != nil {
		t.Fatalf("batch: %v", err)
	}
	var got []struct {
		Name  string `json:"name"`
		Error string `json:"error"`
	}
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].Name != "alice" || got[1].Name != "chart-2" {
		t.Fatalf("results = %+v", got)
	}
	if got[0].Error != "" || got[1].Error == "" {
		t.Errorf("only the second chart should fail: %+v", got)
	}

	log, err := os.ReadFile(events)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(log), `"kind":"batch_done"`) {
		t.Errorf("telemetry missing batch_done:\n%s", log)
	}

	viewed, _, err := execute(t, "telemetry", events)
	if err != nil {
		t.Fatalf("telemetry: %v", err)
	}
	if !strings.Contains(viewed, "batch_done") || !strings.Contains(viewed, "failed=1") {
		t.Errorf("telemetry view = %q", viewed)
	}

	filtered, _, err := execute(t, "telemetry", events, "--kind", "batch_done", "--summary")
	if err != nil {
		t.Fatalf("telemetry --kind: %v", err)
	}
	if strings.Contains(filtered, "rules_evaluated") {
		t.Errorf("kind filter let rules_evaluated through:\n%s", filtered)
	}
	if !strings.Contains(filtered, "batch_done       1") {
		t.Errorf("summary missing batch_done count:\n%s", filtered)
	}
}

func TestTextImportAndLookup(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "texts.yaml")
	content := `
flights:
  命宮:
    忌:
      福德宮: 命忌入福德
self:
  田宅宮:
    忌: 田宅自化忌
`
	if err := os.WriteFile(src, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	db := filepath.Join(dir, "texts.db")

	if _, _, err := execute(t, "text", "import", src, "--text-db", db); err != nil {
		t.Fatalf("import: %v", err)
	}

	out, _, err := execute(t, "text", "lookup", "命", "忌", "福德", "--text-db", db)
	if err != nil {
		t.Fatalf("lookup flight: %v", err)
	}
	if strings.TrimSpace(out) != "命忌入福德" {
		t.Errorf("flight text = %q", out)
	}

	out, _, err = execute(t, "text", "lookup", "田宅", "忌", "--text-file", src)
	if err != nil {
		t.Fatalf("lookup self: %v", err)
	}
	if strings.TrimSpace(out) != "田宅自化忌" {
		t.Errorf("self text = %q", out)
	}
}

func TestPrintEvent(t *testing.T) {
	t.Parallel()
	tests := []struct {
		line string
		want []string
	}{
		{
			line: `{"ts":"2026-01-01T08:30:00Z","kind":"rules_evaluated","chart":"alice","source":"rules.toml","data":{"rules":17,"matched":[]}}`,
			want: []string{"[08:30:00]", "rules_evaluated", "chart=alice", "source=rules.toml", "matched=0/17"},
		},
		{
			line: `{"ts":"2026-01-01T08:30:00Z","kind":"rules_evaluated","chart":"bob","data":{"rules":17,"matched":["OVERTHINKER","KARMIC_DEBT"]}}`,
			want: []string{"matched=2/17 OVERTHINKER,KARMIC_DEBT"},
		},
		{
			line: `{"ts":"2026-01-01T08:30:00Z","kind":"chart_computed","chart":"chart","data":{"birth_stem":"甲","ming":"寅","primary":"巳"}}`,
			want: []string{"birth=甲 ming=寅 ziwei=巳"},
		},
		{
			line: `{"ts":"2026-01-01T08:30:00Z","kind":"batch_done","source":"builtin","data":{"charts":3,"failed":1,"duration_ms":1500}}`,
			want: []string{"charts=3 failed=1 took=1.5s"},
		},
		{
			line: `{"ts":"2026-01-01T08:30:00Z","kind":"rules_reloaded","source":"r.toml","data":{"rules":0,"error":"bad"}}`,
			want: []string{"error=bad"},
		},
		{
			line: `{"ts":"2026-01-01T08:30:00Z","kind":"custom","data":{"b":2,"a":1}}`,
			want: []string{"a=1 b=2"},
		},
		{
			line: "not json",
			want: []string{"??? not json"},
		},
	}
	for _, tt := range tests {
		var buf bytes.Buffer
		printEvent(&buf, tt.line)
		for _, w := range tt.want {
			if !strings.Contains(buf.String(), w) {
				t.Errorf("printEvent(%q) = %q, missing %q", tt.line, buf.String(), w)
			}
		}
	}
}
