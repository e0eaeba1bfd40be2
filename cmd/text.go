package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pcmnking/liangfstar/internal/textstore"
	"github.com/pcmnking/liangfstar/internal/ui"
)

var textCmd = &cobra.Command{
	Use:   "text",
	Short: "Manage interpretation texts",
}

var textImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import a text file into the SQLite text database",
	Args:  cobra.ExactArgs(1),
	RunE:  runTextImport,
}

var textLookupCmd = &cobra.Command{
	Use:   "lookup <source> <kind> [target]",
	Short: "Look up a flight text, or a self-transformation text without target",
	Long: `Looks up interpretation text by role names. Role names are matched
leniently: 命, 命宮, and 官祿 for 事業 all resolve. With --birth the
birth-transformation text of <source> is returned instead.`,
	Args: cobra.RangeArgs(2, 3),
	RunE: runTextLookup,
}

func init() {
	textLookupCmd.Flags().Bool("birth", false, "look up a birth transformation text")
	textCmd.AddCommand(textImportCmd, textLookupCmd)
	rootCmd.AddCommand(textCmd)
}

func runTextImport(c *cobra.Command, args []string) error {
	if cfg.TextDB == "" {
		return errors.New("text import needs a database (--text-db)")
	}
	mem, err := textstore.Load(args[0])
	if err != nil {
		return err
	}
	db, err := textstore.OpenSQLite(c.Context(), cfg.TextDB)
	if err != nil {
		return err
	}
	defer db.Close()

	n, err := db.Import(c.Context(), mem.Data())
	if err != nil {
		return err
	}
	ui.NewWriter(c.ErrOrStderr(), cfg.NoColor).Success(fmt.Sprintf("imported %d text(s) into %s", n, cfg.TextDB))
	return nil
}

func runTextLookup(c *cobra.Command, args []string) error {
	texts, closeTexts, err := openTexts(c.Context())
	if err != nil {
		return err
	}
	defer closeTexts()
	if texts == nil {
		return errors.New("no text source configured (--text-db or --text-file)")
	}

	birth, _ := c.Flags().GetBool("birth")
	var text string
	switch {
	case birth:
		text, err = texts.Birth(c.Context(), args[0], args[1])
	case len(args) == 3:
		text, err = texts.Flight(c.Context(), args[0], args[1], args[2])
	default:
		text, err = texts.Self(c.Context(), args[0], args[1])
	}
	if err != nil {
		return err
	}
	fmt.Fprintln(c.OutOrStdout(), text)
	return nil
}
