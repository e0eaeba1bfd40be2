package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pcmnking/liangfstar/internal/rules"
	"github.com/pcmnking/liangfstar/internal/ui"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Inspect and validate rule files",
}

var rulesValidateCmd = &cobra.Command{
	Use:   "validate <path>",
	Short: "Validate a TOML or YAML rule file",
	Args:  cobra.ExactArgs(1),
	RunE:  runRulesValidate,
}

var rulesListCmd = &cobra.Command{
	Use:   "list [path]",
	Short: "List the rules of a file, or the active rule set",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runRulesList,
}

func init() {
	rulesCmd.AddCommand(rulesValidateCmd, rulesListCmd)
	rootCmd.AddCommand(rulesCmd)
}

func runRulesValidate(c *cobra.Command, args []string) error {
	printer := ui.NewWriter(c.ErrOrStderr(), cfg.NoColor)

	rs, err := rules.ParseFile(args[0])
	if err != nil {
		printer.Error(err.Error())
		return err
	}

	errs := rules.Validate(rs)
	printer.RulesValidated(rs.Source, rs.Len(), errs)
	if len(errs) > 0 {
		return fmt.Errorf("validation failed with %d error(s)", len(errs))
	}
	return nil
}

func runRulesList(c *cobra.Command, args []string) error {
	path := cfg.RulesFile
	if len(args) == 1 {
		path = args[0]
	}
	rs, err := rules.LoadOrDefault(path)
	if err != nil {
		return err
	}
	if done, err := writeData(c.OutOrStdout(), rs.Rules); done {
		return err
	}
	fmt.Fprintln(c.OutOrStdout(), ui.RuleTable(rs))
	return nil
}
