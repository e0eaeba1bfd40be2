// Package batch evaluates many charts concurrently against one shared rule
// set. Each worker computes into its own Chart, so the only shared state is
// the read-only rule set and transformation table.
package batch

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pcmnking/liangfstar/internal/analysis"
	"github.com/pcmnking/liangfstar/internal/calc"
	"github.com/pcmnking/liangfstar/internal/chart"
	"github.com/pcmnking/liangfstar/internal/engine"
	"github.com/pcmnking/liangfstar/internal/rules"
	"github.com/pcmnking/liangfstar/internal/telemetry"
)

// Result is the outcome for one named input. Err is set when the input
// failed validation; the other fields are then empty.
type Result struct {
	Name     string          `json:"name" yaml:"name"`
	Chart    *chart.Snapshot `json:"chart,omitempty" yaml:"chart,omitempty"`
	Matches  []engine.Match  `json:"matches,omitempty" yaml:"matches,omitempty"`
	Analysis analysis.Report `json:"analysis" yaml:"analysis"`
	Err      error           `json:"-" yaml:"-"`
	Error    string          `json:"error,omitempty" yaml:"error,omitempty"`
}

// Runner fans chart inputs out over a bounded worker pool.
type Runner struct {
	calc     *calc.Calculator
	engine   *engine.Engine
	analyzer *analysis.Analyzer
	workers  int
	logger   *slog.Logger
	emitter  *telemetry.Emitter
}

// Option configures a Runner.
type Option func(*Runner)

// WithCalculator sets the calculator used by every worker.
func WithCalculator(c *calc.Calculator) Option {
	return func(r *Runner) {
		r.calc = c
	}
}

// WithWorkers caps the number of concurrent computations. Values below 1
// fall back to GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(r *Runner) {
		r.workers = n
	}
}

// WithLogger sets the logger for per-chart failures.
func WithLogger(l *slog.Logger) Option {
	return func(r *Runner) {
		r.logger = l
	}
}

// WithEmitter records batch and per-chart telemetry.
func WithEmitter(e *telemetry.Emitter) Option {
	return func(r *Runner) {
		r.emitter = e
	}
}

// New returns a Runner.
func New(opts ...Option) *Runner {
	r := &Runner{}
	for _, opt := range opts {
		opt(r)
	}
	if r.calc == nil {
		r.calc = calc.New()
	}
	if r.workers < 1 {
		r.workers = runtime.GOMAXPROCS(0)
	}
	if r.logger == nil {
		r.logger = slog.New(slog.DiscardHandler)
	}
	r.engine = engine.New(r.calc.Resolver())
	r.analyzer = analysis.New(r.calc.Resolver())
	return r
}

// Run evaluates every input against rs. Results keep input order. A bad
// input fails only its own result; Run returns an error only when ctx is
// cancelled.
func (r *Runner) Run(ctx context.Context, rs *rules.RuleSet, inputs []calc.NamedInput) ([]Result, error) {
	start := time.Now()
	results := make([]Result, len(inputs))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for i, in := range inputs {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			results[i] = r.one(rs, in)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	failed := 0
	for _, res := range results {
		if res.Err != nil {
			failed++
		}
	}
	r.emitter.BatchDone(rs.Source, telemetry.BatchData{ //nolint:errcheck // telemetry is best-effort
		Charts:     len(inputs),
		Failed:     failed,
		DurationMS: time.Since(start).Milliseconds(),
	})
	return results, nil
}

func (r *Runner) one(rs *rules.RuleSet, in calc.NamedInput) Result {
	res := Result{Name: in.Name}
	c, err := r.calc.Compute(in.Inputs)
	if err != nil {
		r.logger.Warn("chart rejected", "chart", in.Name, "error", err)
		res.Err = err
		res.Error = err.Error()
		return res
	}
	snap := c.Snapshot()
	res.Chart = &snap
	res.Matches = r.engine.Evaluate(c, rs)
	res.Analysis = r.analyzer.Report(c)

	ids := make([]string, 0, len(res.Matches))
	for _, m := range res.Matches {
		ids = append(ids, m.ID)
	}
	r.emitter.RulesEvaluated(in.Name, rs.Source, telemetry.EvaluationData{Rules: rs.Len(), Matched: ids}) //nolint:errcheck // telemetry is best-effort
	return res
}
