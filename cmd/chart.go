package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pcmnking/liangfstar/internal/analysis"
	"github.com/pcmnking/liangfstar/internal/calc"
	"github.com/pcmnking/liangfstar/internal/chart"
	"github.com/pcmnking/liangfstar/internal/logging"
	"github.com/pcmnking/liangfstar/internal/telemetry"
	"github.com/pcmnking/liangfstar/internal/ui"
)

var chartCmd = &cobra.Command{
	Use:   "chart",
	Short: "Compute and display a chart",
	Long: `Computes the twelve sectors from the chart flags (or an input file) and
prints the board. With --analysis the natal, yearly, and family readings
follow the board.`,
	RunE: runChart,
}

func init() {
	addChartFlags(chartCmd)
	chartCmd.Flags().Bool("analysis", false, "append the analysis readings")
	chartCmd.Flags().Bool("table", false, "print a sector table instead of the board")
	rootCmd.AddCommand(chartCmd)
}

// chartOutput is the machine-readable form of the chart command.
type chartOutput struct {
	Chart    chart.Snapshot   `json:"chart" yaml:"chart"`
	Analysis *analysis.Report `json:"analysis,omitempty" yaml:"analysis,omitempty"`
}

// computeChart builds the chart selected on c and records it.
func computeChart(c *cobra.Command) (*calc.Calculator, *chart.Chart, error) {
	in, err := chartInputs(c)
	if err != nil {
		return nil, nil, err
	}
	calculator := calc.New(calc.WithLogger(logging.New("calc")))
	ch, err := calculator.Compute(in)
	if err != nil {
		return nil, nil, err
	}

	em, err := openEmitter()
	if err != nil {
		return nil, nil, err
	}
	defer em.Close()
	_ = em.ChartComputed(c.Name(), telemetry.ChartData{BirthStem: in.BirthStem, Ming: in.Ming, Primary: in.Ziwei})
	return calculator, ch, nil
}

func runChart(c *cobra.Command, _ []string) error {
	calculator, ch, err := computeChart(c)
	if err != nil {
		return err
	}
	withAnalysis, _ := c.Flags().GetBool("analysis")
	asTable, _ := c.Flags().GetBool("table")

	out := chartOutput{Chart: ch.Snapshot()}
	if withAnalysis {
		report := analysis.New(calculator.Resolver()).Report(ch)
		out.Analysis = &report
	}
	if done, err := writeData(c.OutOrStdout(), out); done {
		return err
	}

	w := c.OutOrStdout()
	if asTable {
		fmt.Fprintln(w, ui.SectorTable(out.Chart))
	} else {
		fmt.Fprintln(w, ui.Grid(out.Chart))
	}
	if out.Analysis != nil {
		fmt.Fprintln(w)
		fmt.Fprintln(w, ui.ReportText(*out.Analysis))
	}
	return nil
}
