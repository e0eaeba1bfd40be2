// Package telemetry records chart computations, rule evaluations, and rule
// reloads as a JSONL event stream so sessions can be audited and replayed.
package telemetry

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"
)

// Event kinds identify the type of telemetry event.
const (
	KindChartComputed  = "chart_computed"
	KindRulesEvaluated = "rules_evaluated"
	KindRulesReloaded  = "rules_reloaded"
	KindBatchDone      = "batch_done"
)

// Event represents a single telemetry record. Each event carries a
// timestamp, a kind tag, and optional chart and rule-source identifiers
// along with arbitrary structured data.
type Event struct {
	Timestamp time.Time `json:"ts"`
	Kind      string    `json:"kind"`
	Chart     string    `json:"chart,omitempty"`
	Source    string    `json:"source,omitempty"`
	Data      any       `json:"data,omitempty"`
}

// ChartData is the payload of a chart_computed event.
type ChartData struct {
	BirthStem string `json:"birth_stem"`
	Ming      string `json:"ming"`
	Primary   string `json:"primary"`
}

// EvaluationData is the payload of a rules_evaluated event.
type EvaluationData struct {
	Rules   int      `json:"rules"`
	Matched []string `json:"matched"`
}

// ReloadData is the payload of a rules_reloaded event.
type ReloadData struct {
	Rules int    `json:"rules"`
	Error string `json:"error,omitempty"`
}

// BatchData is the payload of a batch_done event.
type BatchData struct {
	Charts     int   `json:"charts"`
	Failed     int   `json:"failed"`
	DurationMS int64 `json:"duration_ms"`
}

// Emitter writes telemetry events to a JSONL file. It is safe for
// concurrent use by multiple goroutines. A nil *Emitter is a valid no-op
// emitter.
type Emitter struct {
	file *os.File
	enc  *json.Encoder
	mu   sync.Mutex
	now  func() time.Time
}

// NewEmitter creates a new Emitter that writes JSONL events to the file at
// path. The file is created if it does not exist, or appended to if it does.
func NewEmitter(path string) (*Emitter, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("telemetry: open %s: %w", path, err)
	}
	return &Emitter{
		file: f,
		enc:  json.NewEncoder(f),
		now:  time.Now,
	}, nil
}

// Emit writes a single event to the JSONL file, stamping it when the
// timestamp is zero. Calling Emit on a nil Emitter is a no-op.
func (e *Emitter) Emit(evt Event) error {
	if e == nil {
		return nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if evt.Timestamp.IsZero() {
		evt.Timestamp = e.now()
	}
	if err := e.enc.Encode(evt); err != nil {
		return fmt.Errorf("telemetry: encode event: %w", err)
	}
	return nil
}

// ChartComputed records a finished computation.
func (e *Emitter) ChartComputed(chart string, d ChartData) error {
	return e.Emit(Event{Kind: KindChartComputed, Chart: chart, Data: d})
}

// RulesEvaluated records the IDs that matched a chart.
func (e *Emitter) RulesEvaluated(chart, source string, d EvaluationData) error {
	if d.Matched == nil {
		d.Matched = []string{}
	}
	return e.Emit(Event{Kind: KindRulesEvaluated, Chart: chart, Source: source, Data: d})
}

// RulesReloaded records a rule reload attempt. A failed reload carries the
// error text.
func (e *Emitter) RulesReloaded(source string, rules int, err error) error {
	d := ReloadData{Rules: rules}
	if err != nil {
		d.Error = err.Error()
	}
	return e.Emit(Event{Kind: KindRulesReloaded, Source: source, Data: d})
}

// BatchDone records the outcome of a batch run.
func (e *Emitter) BatchDone(source string, d BatchData) error {
	return e.Emit(Event{Kind: KindBatchDone, Source: source, Data: d})
}

// Close flushes and closes the underlying file. Calling Close on a nil
// Emitter is a no-op.
func (e *Emitter) Close() error {
	if e == nil {
		return nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.file.Close(); err != nil {
		return fmt.Errorf("telemetry: close: %w", err)
	}
	return nil
}
