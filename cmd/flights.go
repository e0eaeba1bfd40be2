package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pcmnking/liangfstar/internal/chart"
	"github.com/pcmnking/liangfstar/internal/cycle"
	"github.com/pcmnking/liangfstar/internal/textstore"
	"github.com/pcmnking/liangfstar/internal/ui"
)

var flightsCmd = &cobra.Command{
	Use:   "flights [sector]",
	Short: "Show where a sector's four transformations fly",
	Long: `Lists the 祿 權 科 忌 flights of one sector, given as a branch (午) or
a role (career, 事業). Without an argument the Ming sector is used. With
--incoming the command instead lists every sector whose stem transforms
the named star.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runFlights,
}

func init() {
	addChartFlags(flightsCmd)
	flightsCmd.Flags().String("incoming", "", "list sectors whose stem transforms this star")
	rootCmd.AddCommand(flightsCmd)
}

type flightRow struct {
	Stem   string `json:"stem" yaml:"stem"`
	Star   string `json:"star" yaml:"star"`
	Kind   string `json:"kind" yaml:"kind"`
	Target string `json:"target,omitempty" yaml:"target,omitempty"`
	Role   string `json:"role,omitempty" yaml:"role,omitempty"`
	Self   bool   `json:"self,omitempty" yaml:"self,omitempty"`
	Text   string `json:"text,omitempty" yaml:"text,omitempty"`
}

type arrivalRow struct {
	Source string `json:"source" yaml:"source"`
	Role   string `json:"role" yaml:"role"`
	Stem   string `json:"stem" yaml:"stem"`
	Kind   string `json:"kind" yaml:"kind"`
}

func runFlights(c *cobra.Command, args []string) error {
	calculator, ch, err := computeChart(c)
	if err != nil {
		return err
	}
	resolver := calculator.Resolver()
	w := c.OutOrStdout()

	if star, _ := c.Flags().GetString("incoming"); star != "" {
		rows := []arrivalRow{}
		for _, a := range resolver.Incoming(ch, star) {
			rows = append(rows, arrivalRow{
				Source: a.Source.String(),
				Role:   ch.Sector(a.Source).Role().Title(),
				Stem:   a.Stem.String(),
				Kind:   a.Kind.String(),
			})
		}
		if done, err := writeData(w, rows); done {
			return err
		}
		for _, r := range rows {
			fmt.Fprintf(w, "%s%s %s → %s化%s\n", r.Stem, r.Source, r.Role, star, r.Kind)
		}
		return nil
	}

	src, ok := ch.Ming()
	if len(args) == 1 {
		src, err = sectorByName(ch, args[0])
		if err != nil {
			return err
		}
		ok = true
	}
	if !ok {
		return errors.New("chart has no Ming sector")
	}

	texts, closeTexts, err := openTexts(c.Context())
	if err != nil {
		return err
	}
	defer closeTexts()

	flights := resolver.Flights(ch, src)
	rows := make([]flightRow, 0, len(flights))
	for _, f := range flights {
		row := flightRow{Stem: f.Stem.String(), Star: f.Star, Kind: f.Kind.String(), Self: f.Self}
		if f.Landed {
			target := ch.Sector(f.Target)
			row.Target = f.Target.String()
			row.Role = target.Role().Title()
			row.Text = lookupFlightText(c.Context(), texts, src.Role().Title(), row.Kind, row.Role, f.Self)
		}
		rows = append(rows, row)
	}
	if done, err := writeData(w, rows); done {
		return err
	}

	fmt.Fprintf(w, "%s%s %s\n", src.Branch(), stemOf(src), src.Role().Title())
	fmt.Fprintln(w, ui.FlightTable(ch, flights))
	for _, r := range rows {
		if r.Text != "" {
			fmt.Fprintf(w, "%s化%s入%s: %s\n", r.Star, r.Kind, r.Role, r.Text)
		}
	}
	return nil
}

func stemOf(s *chart.Sector) string {
	if stem, ok := s.Stem(); ok {
		return stem.String()
	}
	return ""
}

// sectorByName accepts a branch symbol first, then a role name.
func sectorByName(ch *chart.Chart, name string) (*chart.Sector, error) {
	if b, err := cycle.ParseBranch(name); err == nil {
		return ch.Sector(b), nil
	}
	r, err := chart.ParseRole(name)
	if err != nil {
		return nil, fmt.Errorf("unknown sector %q: %w", name, err)
	}
	s, ok := ch.SectorForRole(r)
	if !ok {
		return nil, fmt.Errorf("no sector carries role %s", r.Title())
	}
	return s, nil
}

// openTexts opens the configured interpretation store. With none configured
// it returns a nil store.
func openTexts(ctx context.Context) (textstore.Store, func() error, error) {
	noop := func() error { return nil }
	switch {
	case cfg.TextDB != "":
		s, err := textstore.OpenSQLite(ctx, cfg.TextDB)
		if err != nil {
			return nil, noop, err
		}
		return s, s.Close, nil
	case cfg.TextFile != "":
		s, err := textstore.Load(cfg.TextFile)
		if err != nil {
			return nil, noop, err
		}
		return s, noop, nil
	default:
		return nil, noop, nil
	}
}

func lookupFlightText(ctx context.Context, texts textstore.Store, source, kind, target string, self bool) string {
	if texts == nil {
		return ""
	}
	var (
		text string
		err  error
	)
	if self {
		text, err = texts.Self(ctx, source, kind)
	} else {
		text, err = texts.Flight(ctx, source, kind, target)
	}
	if err != nil {
		return ""
	}
	return text
}
