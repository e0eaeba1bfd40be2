package calc

import (
	"errors"
	"fmt"
	"os"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/pcmnking/liangfstar/internal/chart"
	"github.com/pcmnking/liangfstar/internal/cycle"
)

// ErrInvalidInput indicates a chart input that is missing or not a member
// of its cycle. Nothing is written to the chart when it is returned.
var ErrInvalidInput = errors.New("invalid chart input")

// Inputs are the raw positional choices for one chart. Symbols may be given
// as characters (甲, 寅) or pinyin (jia, yin). Manual stars and layer anchors
// are optional; leave them empty to skip.
type Inputs struct {
	BirthStem string `toml:"birth_stem" json:"birth_stem" yaml:"birth_stem"`
	YinStem   string `toml:"yin_stem" json:"yin_stem" yaml:"yin_stem"`
	Ming      string `toml:"ming" json:"ming" yaml:"ming"`
	Ziwei     string `toml:"ziwei" json:"ziwei" yaml:"ziwei"`

	Wenqu    string `toml:"wenqu,omitempty" json:"wenqu,omitempty" yaml:"wenqu,omitempty"`
	Wenchang string `toml:"wenchang,omitempty" json:"wenchang,omitempty" yaml:"wenchang,omitempty"`
	Zuofu    string `toml:"zuofu,omitempty" json:"zuofu,omitempty" yaml:"zuofu,omitempty"`
	Youbi    string `toml:"youbi,omitempty" json:"youbi,omitempty" yaml:"youbi,omitempty"`

	Decade string `toml:"decade,omitempty" json:"decade,omitempty" yaml:"decade,omitempty"`
	Year   string `toml:"year,omitempty" json:"year,omitempty" yaml:"year,omitempty"`
}

// DefaultInputs mirrors the selections a fresh session starts with.
func DefaultInputs() Inputs {
	return Inputs{
		BirthStem: "甲",
		YinStem:   "甲",
		Ming:      "寅",
		Ziwei:     "午",
		Wenqu:     "辰",
		Wenchang:  "戌",
		Zuofu:     "辰",
		Youbi:     "戌",
	}
}

// resolved holds parsed inputs ready to be applied.
type resolved struct {
	birth  cycle.Stem
	yin    cycle.Stem
	ming   cycle.Branch
	ziwei  cycle.Branch
	manual []chart.Manual
	decade chart.Anchor
	year   chart.Anchor
}

// resolve validates every field up front so a bad input never reaches the
// chart.
func (in Inputs) resolve() (resolved, error) {
	var r resolved
	var err error

	if r.birth, err = requiredStem("birth_stem", in.BirthStem); err != nil {
		return r, err
	}
	if r.yin, err = requiredStem("yin_stem", in.YinStem); err != nil {
		return r, err
	}
	if r.ming, err = requiredBranch("ming", in.Ming); err != nil {
		return r, err
	}
	if r.ziwei, err = requiredBranch("ziwei", in.Ziwei); err != nil {
		return r, err
	}

	manual := []struct {
		field, star, value string
	}{
		{"wenqu", chart.StarWenqu, in.Wenqu},
		{"wenchang", chart.StarWenchang, in.Wenchang},
		{"zuofu", chart.StarZuofu, in.Zuofu},
		{"youbi", chart.StarYoubi, in.Youbi},
	}
	for _, m := range manual {
		if m.value == "" {
			continue
		}
		b, err := cycle.ParseBranch(m.value)
		if err != nil {
			return r, fmt.Errorf("%w: %s: %w", ErrInvalidInput, m.field, err)
		}
		r.manual = append(r.manual, chart.Manual{Star: m.star, Branch: b})
	}

	if r.decade, err = optionalAnchor("decade", in.Decade); err != nil {
		return r, err
	}
	if r.year, err = optionalAnchor("year", in.Year); err != nil {
		return r, err
	}
	return r, nil
}

// Validate reports whether the inputs would compute without error.
func (in Inputs) Validate() error {
	_, err := in.resolve()
	return err
}

func requiredStem(field, v string) (cycle.Stem, error) {
	if v == "" {
		return 0, fmt.Errorf("%w: %s is required", ErrInvalidInput, field)
	}
	s, err := cycle.ParseStem(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %w", ErrInvalidInput, field, err)
	}
	return s, nil
}

func requiredBranch(field, v string) (cycle.Branch, error) {
	if v == "" {
		return 0, fmt.Errorf("%w: %s is required", ErrInvalidInput, field)
	}
	b, err := cycle.ParseBranch(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %w", ErrInvalidInput, field, err)
	}
	return b, nil
}

func optionalAnchor(field, v string) (chart.Anchor, error) {
	if v == "" {
		return chart.Anchor{}, nil
	}
	b, err := cycle.ParseBranch(v)
	if err != nil {
		return chart.Anchor{}, fmt.Errorf("%w: %s: %w", ErrInvalidInput, field, err)
	}
	return chart.At(b), nil
}

// inputFile is the on-disk shape of a chart input file. A single chart goes
// under [chart]; batch files list [[charts]] with an optional name.
type inputFile struct {
	Chart  *Inputs      `toml:"chart"`
	Charts []NamedInput `toml:"charts"`
}

// NamedInput is one entry of a batch input file.
type NamedInput struct {
	Name   string `toml:"name"`
	Inputs
}

// LoadInputs reads a TOML chart input file holding a single [chart] table.
func LoadInputs(path string) (Inputs, error) {
	f, err := readInputFile(path)
	if err != nil {
		return Inputs{}, err
	}
	if f.Chart == nil {
		return Inputs{}, fmt.Errorf("%s: no [chart] table", path)
	}
	return *f.Chart, nil
}

// LoadBatch reads a TOML file listing [[charts]]. A lone [chart] table is
// accepted as a batch of one.
func LoadBatch(path string) ([]NamedInput, error) {
	f, err := readInputFile(path)
	if err != nil {
		return nil, err
	}
	out := f.Charts
	if f.Chart != nil {
		out = append([]NamedInput{{Name: "chart", Inputs: *f.Chart}}, out...)
	}
	for i := range out {
		if out[i].Name == "" {
			out[i].Name = fmt.Sprintf("chart-%d", i+1)
		}
	}
	return out, nil
}

func readInputFile(path string) (inputFile, error) {
	var f inputFile
	data, err := os.ReadFile(path)
	if err != nil {
		return f, fmt.Errorf("reading %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, &f); err != nil {
		return f, fmt.Errorf("parsing %s: %w", path, err)
	}
	return f, nil
}
