package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pcmnking/liangfstar/internal/engine"
	"github.com/pcmnking/liangfstar/internal/rules"
	"github.com/pcmnking/liangfstar/internal/telemetry"
	"github.com/pcmnking/liangfstar/internal/ui"
)

var evaluateCmd = &cobra.Command{
	Use:     "evaluate",
	Aliases: []string{"eval"},
	Short:   "Match a chart against the rule set",
	RunE:    runEvaluate,
}

func init() {
	addChartFlags(evaluateCmd)
	rootCmd.AddCommand(evaluateCmd)
}

type evaluateOutput struct {
	Source  string         `json:"source" yaml:"source"`
	Matches []engine.Match `json:"matches" yaml:"matches"`
}

func runEvaluate(c *cobra.Command, _ []string) error {
	rs, err := rules.LoadOrDefault(cfg.RulesFile)
	if err != nil {
		return err
	}
	calculator, ch, err := computeChart(c)
	if err != nil {
		return err
	}
	matches := engine.New(calculator.Resolver()).Evaluate(ch, rs)

	em, err := openEmitter()
	if err != nil {
		return err
	}
	defer em.Close()
	ids := make([]string, 0, len(matches))
	for _, m := range matches {
		ids = append(ids, m.ID)
	}
	_ = em.RulesEvaluated(c.Name(), rs.Source, telemetry.EvaluationData{Rules: rs.Len(), Matched: ids})

	if matches == nil {
		matches = []engine.Match{}
	}
	if done, err := writeData(c.OutOrStdout(), evaluateOutput{Source: rs.Source, Matches: matches}); done {
		return err
	}
	fmt.Fprintln(c.OutOrStdout(), ui.MatchTable(matches))
	return nil
}
