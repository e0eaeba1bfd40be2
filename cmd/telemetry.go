package cmd

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/pcmnking/liangfstar/internal/telemetry"
)

var telemetryCmd = &cobra.Command{
	Use:   "telemetry [path]",
	Short: "View JSONL telemetry events",
	Long: `Reads a telemetry file written with --telemetry and prints one line per
event. Without a path the configured telemetry_path is read.

--kind keeps only the named event kinds, --summary ends with a count per
kind, and --follow (-f) keeps printing events as they are appended.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTelemetry,
}

func init() {
	telemetryCmd.Flags().BoolP("follow", "f", false, "follow the file for new events")
	telemetryCmd.Flags().StringSlice("kind", nil, "only show these event kinds (chart_computed, rules_evaluated, ...)")
	telemetryCmd.Flags().Bool("summary", false, "print event counts per kind after the events")
	rootCmd.AddCommand(telemetryCmd)
}

// eventView prints the events that pass its kind filter and counts them.
type eventView struct {
	w      io.Writer
	kinds  []string
	counts map[string]int
}

func (v *eventView) line(raw string) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return
	}
	var evt eventLine
	if err := json.Unmarshal([]byte(raw), &evt); err != nil {
		fmt.Fprintf(v.w, "??? %s\n", raw)
		return
	}
	if len(v.kinds) > 0 && !slices.Contains(v.kinds, evt.Kind) {
		return
	}
	v.counts[evt.Kind]++
	fmt.Fprintln(v.w, evt.format())
}

func (v *eventView) summary() {
	kinds := make([]string, 0, len(v.counts))
	for k := range v.counts {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	fmt.Fprintln(v.w, "--")
	for _, k := range kinds {
		fmt.Fprintf(v.w, "%-16s %d\n", k, v.counts[k])
	}
}

func runTelemetry(cmd *cobra.Command, args []string) error {
	follow, _ := cmd.Flags().GetBool("follow")
	summary, _ := cmd.Flags().GetBool("summary")
	kinds, _ := cmd.Flags().GetStringSlice("kind")

	path := cfg.TelemetryPath
	if len(args) == 1 {
		path = args[0]
	}
	if path == "" {
		return errors.New("telemetry: no file given and telemetry_path is unset")
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("telemetry: open %s: %w", path, err)
	}
	defer f.Close()

	view := &eventView{w: cmd.OutOrStdout(), kinds: kinds, counts: make(map[string]int)}
	reader := bufio.NewReader(f)
	if err := drain(reader, view); err != nil {
		return fmt.Errorf("telemetry: read %s: %w", path, err)
	}
	if follow {
		err = tailFollow(cmd.Context(), reader, path, view)
	}
	if summary {
		view.summary()
	}
	return err
}

// drain prints every complete line available on r. A trailing partial line
// is printed too; a writer mid-append finishes it before the next event.
func drain(r *bufio.Reader, view *eventView) error {
	for {
		line, err := r.ReadString('\n')
		view.line(line)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// tailFollow prints events appended to path until ctx is cancelled.
func tailFollow(ctx context.Context, r *bufio.Reader, path string, view *eventView) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("telemetry: create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(path); err != nil {
		return fmt.Errorf("telemetry: watch %s: %w", path, err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("telemetry: watch %s: %w", path, err)
		case e, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if e.Op&fsnotify.Write == 0 {
				continue
			}
			if err := drain(r, view); err != nil {
				return fmt.Errorf("telemetry: read %s: %w", path, err)
			}
		}
	}
}

// eventLine is a telemetry.Event whose payload is decoded per kind.
type eventLine struct {
	Timestamp time.Time       `json:"ts"`
	Kind      string          `json:"kind"`
	Chart     string          `json:"chart,omitempty"`
	Source    string          `json:"source,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
}

func (e eventLine) format() string {
	parts := []string{fmt.Sprintf("[%s]", e.Timestamp.Format(time.TimeOnly)), e.Kind}
	if e.Chart != "" {
		parts = append(parts, "chart="+e.Chart)
	}
	if e.Source != "" {
		parts = append(parts, "source="+e.Source)
	}
	if len(e.Data) > 0 {
		parts = append(parts, e.payload())
	}
	return strings.Join(parts, " ")
}

// payload renders the known event payloads compactly and falls back to
// sorted key=value pairs for anything else.
func (e eventLine) payload() string {
	switch e.Kind {
	case telemetry.KindChartComputed:
		var d telemetry.ChartData
		if json.Unmarshal(e.Data, &d) == nil {
			return fmt.Sprintf("birth=%s ming=%s ziwei=%s", d.BirthStem, d.Ming, d.Primary)
		}
	case telemetry.KindRulesEvaluated:
		var d telemetry.EvaluationData
		if json.Unmarshal(e.Data, &d) == nil {
			s := fmt.Sprintf("matched=%d/%d", len(d.Matched), d.Rules)
			if len(d.Matched) > 0 {
				s += " " + strings.Join(d.Matched, ",")
			}
			return s
		}
	case telemetry.KindRulesReloaded:
		var d telemetry.ReloadData
		if json.Unmarshal(e.Data, &d) == nil {
			if d.Error != "" {
				return "error=" + d.Error
			}
			return fmt.Sprintf("rules=%d", d.Rules)
		}
	case telemetry.KindBatchDone:
		var d telemetry.BatchData
		if json.Unmarshal(e.Data, &d) == nil {
			return fmt.Sprintf("charts=%d failed=%d took=%s", d.Charts, d.Failed, time.Duration(d.DurationMS)*time.Millisecond)
		}
	}

	var m map[string]any
	if err := json.Unmarshal(e.Data, &m); err != nil {
		return string(e.Data)
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, fmt.Sprintf("%s=%v", k, m[k]))
	}
	return strings.Join(pairs, " ")
}

// printEvent decodes one JSONL line and prints it.
func printEvent(w io.Writer, line string) {
	(&eventView{w: w, counts: make(map[string]int)}).line(line)
}
