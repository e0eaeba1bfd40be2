package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pcmnking/liangfstar/internal/config"
	"github.com/pcmnking/liangfstar/internal/logging"
	"github.com/pcmnking/liangfstar/internal/telemetry"
)

// cfg is loaded once per invocation by the root pre-run hook.
var cfg config.Config

var rootCmd = &cobra.Command{
	Use:   "liangfstar",
	Short: "Flying-star chart calculator and pattern engine",
	Long: `liangfstar lays out a twelve-sector chart from a handful of stems and
branches, resolves where every sector's four transformations fly, and
matches the result against a declarative rule set.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default .liangfstar.yaml)")
	pf.String("rules", "", "rule file, TOML or YAML (default: built-in rules)")
	pf.StringP("output", "o", "", "output format: table, json, or yaml")
	pf.String("log-level", "", "log level: debug, info, warn, error")
	pf.String("log-format", "", "log format: text or json")
	pf.String("telemetry", "", "append JSONL telemetry events to this file")
	pf.String("text-db", "", "SQLite interpretation text database")
	pf.String("text-file", "", "interpretation text file (TOML, YAML, or JSON)")
	pf.Bool("no-color", false, "disable colored status output")
}

// flagKeys maps config keys onto the persistent flags that override them.
var flagKeys = map[string]string{
	"rules_file":     "rules",
	"output":         "output",
	"log_level":      "log-level",
	"log_format":     "log-format",
	"telemetry_path": "telemetry",
	"text_db":        "text-db",
	"text_file":      "text-file",
	"no_color":       "no-color",
}

func initConfig() {
	for key, flag := range flagKeys {
		_ = viper.BindPFlag(key, rootCmd.PersistentFlags().Lookup(flag))
	}

	if cfgFile, _ := rootCmd.Flags().GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName(".liangfstar")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
	}

	viper.SetEnvPrefix("LIANGFSTAR")
	viper.AutomaticEnv()

	// It's fine if no config file is found; we use defaults.
	_ = viper.ReadInConfig()
}

func loadConfig(_ *cobra.Command, _ []string) error {
	c, err := config.Load()
	if err != nil {
		return err
	}
	level, err := logging.ParseLevel(c.LogLevel)
	if err != nil {
		return err
	}
	logging.Init(level, c.LogFormat)
	cfg = c
	return nil
}

// openEmitter returns the configured telemetry emitter, or nil when
// telemetry is off. A nil emitter is a valid no-op.
func openEmitter() (*telemetry.Emitter, error) {
	if cfg.TelemetryPath == "" {
		return nil, nil
	}
	return telemetry.NewEmitter(cfg.TelemetryPath)
}
