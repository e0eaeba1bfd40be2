package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pcmnking/liangfstar/internal/engine"
	"github.com/pcmnking/liangfstar/internal/logging"
	"github.com/pcmnking/liangfstar/internal/rules"
	"github.com/pcmnking/liangfstar/internal/ui"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-evaluate a chart whenever the rule file changes",
	Long: `Loads the rule file named by --rules, evaluates the chart, and then
watches the file. Each settled save reloads the rules and re-evaluates.
A save that fails to parse or validate keeps the previous rules live.`,
	RunE: runWatch,
}

func init() {
	addChartFlags(watchCmd)
	rootCmd.AddCommand(watchCmd)
}

func runWatch(c *cobra.Command, _ []string) error {
	if cfg.RulesFile == "" {
		return errors.New("watch needs a rule file (--rules)")
	}
	printer := ui.NewWriter(c.ErrOrStderr(), cfg.NoColor)
	logger := logging.New("watch")

	rs, err := rules.Load(cfg.RulesFile)
	if err != nil {
		return err
	}
	holder := rules.NewHolder(rs)

	calculator, ch, err := computeChart(c)
	if err != nil {
		return err
	}
	eng := engine.New(calculator.Resolver())
	evaluate := func() {
		fmt.Fprintln(c.OutOrStdout(), ui.MatchTable(eng.Evaluate(ch, holder.Current())))
	}
	evaluate()

	em, err := openEmitter()
	if err != nil {
		return err
	}
	defer em.Close()

	w, err := rules.NewWatcher(cfg.RulesFile)
	if err != nil {
		return err
	}
	if err := w.Start(); err != nil {
		return err
	}
	defer w.Stop()
	printer.Info(fmt.Sprintf("watching %s (ctrl-c to stop)", w.Path))

	for {
		select {
		case <-c.Context().Done():
			return nil
		case path, ok := <-w.Changes:
			if !ok {
				return nil
			}
			next, err := holder.Reload(path)
			count := 0
			if next != nil {
				count = next.Len()
			}
			printer.RulesReloaded(path, count, err)
			if rerr := em.RulesReloaded(path, count, err); rerr != nil {
				logger.Warn("telemetry write failed", "error", rerr)
			}
			if err == nil {
				evaluate()
			}
		}
	}
}
