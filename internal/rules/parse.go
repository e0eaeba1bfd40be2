package rules

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Format is a rule file encoding.
type Format string

// Supported rule file formats.
const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
)

// DefaultSource names the embedded rule set in validation messages.
const DefaultSource = "default_rules.toml"

//go:embed default_rules.toml
var defaultRules []byte

// ruleFile is the top-level shape shared by both encodings.
type ruleFile struct {
	Rules []Rule `toml:"rules" yaml:"rules"`
}

// FormatFor picks a decoder from the file extension.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// Parse decodes rule data without validating it. Unknown fields are
// rejected in both encodings.
func Parse(data []byte, format Format, source string) (*RuleSet, error) {
	var f ruleFile
	switch format {
	case FormatTOML:
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&f); err != nil {
			var strict *toml.StrictMissingError
			if errors.As(err, &strict) {
				return nil, fmt.Errorf("parsing %s: %s", source, strict.String())
			}
			return nil, fmt.Errorf("parsing %s: %w", source, err)
		}
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("parsing %s: %w", source, err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	return &RuleSet{Rules: f.Rules, Source: source}, nil
}

// ParseFile reads and decodes a rule file without validating it.
func ParseFile(path string) (*RuleSet, error) {
	format, err := FormatFor(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return Parse(data, format, filepath.Base(path))
}

// Load reads, decodes, and validates a rule file. Validation failures are
// joined into one error that wraps ErrInvalidRuleSet and every
// *ValidationError.
func Load(path string) (*RuleSet, error) {
	rs, err := ParseFile(path)
	if err != nil {
		return nil, err
	}
	if err := joinValidation(Validate(rs)); err != nil {
		return nil, err
	}
	return rs, nil
}

var loadDefault = sync.OnceValues(func() (*RuleSet, error) {
	rs, err := Parse(defaultRules, FormatTOML, DefaultSource)
	if err != nil {
		return nil, err
	}
	if err := joinValidation(Validate(rs)); err != nil {
		return nil, err
	}
	return rs, nil
})

// Default returns the embedded rule set. It is parsed once and shared;
// callers must not modify it.
func Default() *RuleSet {
	rs, err := loadDefault()
	if err != nil {
		panic(fmt.Sprintf("embedded rule set is invalid: %v", err))
	}
	return rs
}

// LoadOrDefault loads path, or returns the embedded set when path is empty.
func LoadOrDefault(path string) (*RuleSet, error) {
	if path == "" {
		return Default(), nil
	}
	return Load(path)
}
