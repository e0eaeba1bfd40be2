package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/pcmnking/liangfstar/internal/batch"
	"github.com/pcmnking/liangfstar/internal/calc"
	"github.com/pcmnking/liangfstar/internal/logging"
	"github.com/pcmnking/liangfstar/internal/rules"
	"github.com/pcmnking/liangfstar/internal/ui"
)

var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Evaluate every chart in a TOML batch file",
	Long: `Reads [[charts]] tables from a TOML file and evaluates each chart
against the rule set on a bounded worker pool. A chart with bad inputs is
reported in its own row and does not stop the others.`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	batchCmd.Flags().Int("workers", 0, "concurrent charts (default: batch_workers, then GOMAXPROCS)")
	rootCmd.AddCommand(batchCmd)
}

func runBatch(c *cobra.Command, args []string) error {
	inputs, err := calc.LoadBatch(args[0])
	if err != nil {
		return err
	}
	rs, err := rules.LoadOrDefault(cfg.RulesFile)
	if err != nil {
		return err
	}
	em, err := openEmitter()
	if err != nil {
		return err
	}
	defer em.Close()

	workers := cfg.BatchWorkers
	if c.Flags().Changed("workers") {
		workers, _ = c.Flags().GetInt("workers")
	}
	runner := batch.New(
		batch.WithWorkers(workers),
		batch.WithLogger(logging.New("batch")),
		batch.WithEmitter(em),
	)

	start := time.Now()
	results, err := runner.Run(c.Context(), rs, inputs)
	if err != nil {
		return err
	}
	if done, err := writeData(c.OutOrStdout(), results); done {
		return err
	}
	fmt.Fprintln(c.OutOrStdout(), ui.BatchTable(results))
	ui.NewWriter(c.ErrOrStderr(), cfg.NoColor).BatchDone(results, time.Since(start))
	return nil
}
