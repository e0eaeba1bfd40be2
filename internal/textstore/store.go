// Package textstore looks up interpretation text keyed by role titles and
// transformation kinds. It is a passive collaborator of the chart: callers
// ask for the text of a flight, a self-transformation, or a birth
// transformation, and get ErrNotFound when the data set has none.
package textstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// ErrNotFound indicates the data set has no text for the requested keys.
var ErrNotFound = errors.New("no interpretation text")

// Store answers interpretation lookups. Keys are display titles (命宮,
// 田宅宮) and kind symbols (祿權科忌); title keys go through KeyMatcher.
type Store interface {
	// Flight returns the text for source's kind transformation entering target.
	Flight(ctx context.Context, source, kind, target string) (string, error)
	// Self returns the text for role self-transforming kind.
	Self(ctx context.Context, role, kind string) (string, error)
	// Birth returns the text for a birth transformation of kind sitting in role.
	Birth(ctx context.Context, role, kind string) (string, error)
}

// Data is the serialized form of a text set.
type Data struct {
	Flights map[string]map[string]map[string]string `json:"flights" toml:"flights" yaml:"flights"`
	Self    map[string]map[string]string            `json:"self" toml:"self" yaml:"self"`
	Birth   map[string]map[string]string            `json:"birth" toml:"birth" yaml:"birth"`
}

// MemoryStore serves a Data set held in memory. It is read-only after
// construction.
type MemoryStore struct {
	data    Data
	matcher KeyMatcher
}

// NewMemoryStore normalizes d's title keys and wraps it.
func NewMemoryStore(d Data) *MemoryStore {
	return &MemoryStore{data: normalize(d)}
}

// Data returns the normalized data set.
func (m *MemoryStore) Data() Data { return m.data }

// Flight implements Store.
func (m *MemoryStore) Flight(_ context.Context, source, kind, target string) (string, error) {
	src, ok := m.matcher.Resolve(source, func(k string) bool { _, ok := m.data.Flights[k]; return ok })
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNotFound, source)
	}
	byTarget := m.data.Flights[src][kind]
	tgt, ok := m.matcher.Resolve(target, func(k string) bool { return byTarget[k] != "" })
	if !ok {
		return "", fmt.Errorf("%w: %s化%s入%s", ErrNotFound, source, kind, target)
	}
	return byTarget[tgt], nil
}

// Self implements Store.
func (m *MemoryStore) Self(_ context.Context, role, kind string) (string, error) {
	return lookupRoleKind(m.matcher, m.data.Self, role, kind)
}

// Birth implements Store.
func (m *MemoryStore) Birth(_ context.Context, role, kind string) (string, error) {
	return lookupRoleKind(m.matcher, m.data.Birth, role, kind)
}

func lookupRoleKind(km KeyMatcher, table map[string]map[string]string, role, kind string) (string, error) {
	key, ok := km.Resolve(role, func(k string) bool { return table[k][kind] != "" })
	if !ok {
		return "", fmt.Errorf("%w: %s %s", ErrNotFound, role, kind)
	}
	return table[key][kind], nil
}

// Load reads a text set from a .toml, .json, .yaml, or .yml file.
func Load(path string) (*MemoryStore, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("textstore: reading %s: %w", path, err)
	}
	var d Data
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		err = toml.Unmarshal(raw, &d)
	case ".json":
		err = json.Unmarshal(raw, &d)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(raw, &d)
	default:
		return nil, fmt.Errorf("textstore: unsupported format %q", filepath.Ext(path))
	}
	if err != nil {
		return nil, fmt.Errorf("textstore: parsing %s: %w", path, err)
	}
	return NewMemoryStore(d), nil
}

func normalize(d Data) Data {
	out := Data{
		Flights: make(map[string]map[string]map[string]string, len(d.Flights)),
		Self:    normalizeRoleKind(d.Self),
		Birth:   normalizeRoleKind(d.Birth),
	}
	for src, kinds := range d.Flights {
		src = normalizeTitle(src)
		if out.Flights[src] == nil {
			out.Flights[src] = make(map[string]map[string]string, len(kinds))
		}
		for kind, targets := range kinds {
			if out.Flights[src][kind] == nil {
				out.Flights[src][kind] = make(map[string]string, len(targets))
			}
			for tgt, body := range targets {
				out.Flights[src][kind][normalizeTitle(tgt)] = body
			}
		}
	}
	return out
}

func normalizeRoleKind(in map[string]map[string]string) map[string]map[string]string {
	out := make(map[string]map[string]string, len(in))
	for role, kinds := range in {
		role = normalizeTitle(role)
		if out[role] == nil {
			out[role] = make(map[string]string, len(kinds))
		}
		for kind, body := range kinds {
			out[role][kind] = body
		}
	}
	return out
}
