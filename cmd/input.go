package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/pcmnking/liangfstar/internal/calc"
	"github.com/pcmnking/liangfstar/internal/config"
)

// chartFlags maps flag names onto the Inputs field they override.
var chartFlags = []struct {
	name  string
	usage string
	field func(*calc.Inputs) *string
}{
	{"birth", "birth year stem (甲 or jia)", func(in *calc.Inputs) *string { return &in.BirthStem }},
	{"yin", "stem on the 寅 sector", func(in *calc.Inputs) *string { return &in.YinStem }},
	{"ming", "branch of the Ming sector", func(in *calc.Inputs) *string { return &in.Ming }},
	{"ziwei", "branch holding 紫微", func(in *calc.Inputs) *string { return &in.Ziwei }},
	{"wenqu", "branch holding 文曲 (\"\" to omit)", func(in *calc.Inputs) *string { return &in.Wenqu }},
	{"wenchang", "branch holding 文昌 (\"\" to omit)", func(in *calc.Inputs) *string { return &in.Wenchang }},
	{"zuofu", "branch holding 左輔 (\"\" to omit)", func(in *calc.Inputs) *string { return &in.Zuofu }},
	{"youbi", "branch holding 右弼 (\"\" to omit)", func(in *calc.Inputs) *string { return &in.Youbi }},
	{"decade", "branch of the decade layer Ming", func(in *calc.Inputs) *string { return &in.Decade }},
	{"year", "branch of the yearly layer Ming", func(in *calc.Inputs) *string { return &in.Year }},
}

// addChartFlags registers the chart selection flags on c.
func addChartFlags(c *cobra.Command) {
	c.Flags().StringP("input", "i", "", "TOML file with a [chart] table")
	for _, f := range chartFlags {
		c.Flags().String(f.name, "", f.usage)
	}
}

// chartInputs starts from the input file, or the default selections, and
// applies every chart flag the user set.
func chartInputs(c *cobra.Command) (calc.Inputs, error) {
	in := calc.DefaultInputs()
	if path, _ := c.Flags().GetString("input"); path != "" {
		loaded, err := calc.LoadInputs(path)
		if err != nil {
			return calc.Inputs{}, err
		}
		in = loaded
	}
	for _, f := range chartFlags {
		if !c.Flags().Changed(f.name) {
			continue
		}
		v, _ := c.Flags().GetString(f.name)
		*f.field(&in) = v
	}
	return in, nil
}

// writeData encodes v as JSON or YAML when the output format asks for it.
// It reports false for the table format, leaving rendering to the caller.
func writeData(w io.Writer, v any) (bool, error) {
	switch cfg.Output {
	case config.OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return true, fmt.Errorf("encode json: %w", err)
		}
		return true, nil
	case config.OutputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return true, fmt.Errorf("encode yaml: %w", err)
		}
		return true, enc.Close()
	default:
		return false, nil
	}
}
