// Package calc runs one full chart computation: reset, role and stem
// assignment, star placement, birth seeding, and layer anchors, in that
// order. Inputs are validated before the chart is touched.
package calc

import (
	"log/slog"

	"github.com/pcmnking/liangfstar/internal/chart"
	"github.com/pcmnking/liangfstar/internal/transform"
)

// Calculator computes charts. It is stateless between calls and safe to
// share across goroutines as long as each call gets its own Chart.
type Calculator struct {
	resolver *transform.Resolver
	placer   *chart.Placer
	logger   *slog.Logger
}

// Option configures a Calculator.
type Option func(*Calculator)

// WithResolver sets the transformation resolver used for birth seeding.
func WithResolver(r *transform.Resolver) Option {
	return func(c *Calculator) {
		c.resolver = r
	}
}

// WithPlacer sets the star placer.
func WithPlacer(p *chart.Placer) Option {
	return func(c *Calculator) {
		c.placer = p
	}
}

// WithLogger sets the logger for computation events.
func WithLogger(l *slog.Logger) Option {
	return func(c *Calculator) {
		c.logger = l
	}
}

// New returns a Calculator over the default table and placer.
func New(opts ...Option) *Calculator {
	c := &Calculator{}
	for _, opt := range opts {
		opt(c)
	}
	if c.resolver == nil {
		c.resolver = transform.NewResolver(nil)
	}
	if c.placer == nil {
		c.placer = chart.NewPlacer()
	}
	if c.logger == nil {
		c.logger = slog.New(slog.DiscardHandler)
	}
	return c
}

// Resolver returns the resolver the calculator seeds with.
func (c *Calculator) Resolver() *transform.Resolver { return c.resolver }

// Compute builds a fresh chart from in.
func (c *Calculator) Compute(in Inputs) (*chart.Chart, error) {
	ch := chart.New()
	if err := c.Recompute(ch, in); err != nil {
		return nil, err
	}
	return ch, nil
}

// Recompute clears ch and rebuilds it from in. On a validation error ch is
// left exactly as it was.
func (c *Calculator) Recompute(ch *chart.Chart, in Inputs) error {
	r, err := in.resolve()
	if err != nil {
		return err
	}

	ch.Reset()
	ch.SetBirthStem(r.birth)
	if err := chart.Assign(ch, r.ming, r.yin); err != nil {
		return err
	}
	if err := c.placer.Place(ch, r.ziwei); err != nil {
		return err
	}
	// Manual stars go in before seeding so they can carry birth
	// transformations (己 文曲忌, 戊 右弼科, ...).
	c.placer.PlaceManual(ch, r.manual)
	pairs := c.resolver.BirthTransformationsFor(ch, r.birth)
	ch.SetLayers(r.decade, r.year)

	c.logger.Debug("chart computed",
		"birth_stem", r.birth.String(),
		"ming", r.ming.String(),
		"ziwei", r.ziwei.String(),
		"manual", len(r.manual),
		"birth_pairs", len(pairs),
	)
	return nil
}
