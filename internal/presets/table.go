package presets

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

//go:embed presets.yaml
var defaultPresets []byte

// Store looks up region presets.
type Store interface {
	Get(ctx context.Context, region string) (Preset, error)
	List(ctx context.Context) ([]Preset, error)
}

// Table is an immutable, in-memory preset store.
type Table struct {
	byRegion map[string]Preset
}

// DefaultTable returns the table compiled into the binary.
func DefaultTable() *Table {
	table, err := LoadTable(bytes.NewReader(defaultPresets))
	if err != nil {
		panic(fmt.Sprintf("embedded presets are invalid: %v", err))
	}
	return table
}

// LoadTable parses a YAML list of presets.
func LoadTable(r io.Reader) (*Table, error) {
	var list []Preset
	if err := yaml.NewDecoder(r).Decode(&list); err != nil {
		return nil, fmt.Errorf("failed to parse presets: %w", err)
	}
	return NewTable(list)
}

// NewTable builds a table from presets. Region codes must be unique.
func NewTable(list []Preset) (*Table, error) {
	byRegion := make(map[string]Preset, len(list))
	for _, p := range list {
		region := NormalizeRegion(p.Region)
		if region == "" {
			return nil, fmt.Errorf("preset %q has no region code", p.Name)
		}
		if _, dup := byRegion[region]; dup {
			return nil, fmt.Errorf("duplicate preset for region %s", region)
		}
		p.Region = region
		byRegion[region] = p
	}
	return &Table{byRegion: byRegion}, nil
}

// Get returns the preset for a region.
func (t *Table) Get(_ context.Context, region string) (Preset, error) {
	p, ok := t.byRegion[NormalizeRegion(region)]
	if !ok {
		return Preset{}, fmt.Errorf("%w: %q", ErrUnknownRegion, region)
	}
	return p, nil
}

// List returns every preset ordered by region code.
func (t *Table) List(_ context.Context) ([]Preset, error) {
	list := make([]Preset, 0, len(t.byRegion))
	for _, p := range t.byRegion {
		list = append(list, p)
	}
	sortPresets(list)
	return list, nil
}
