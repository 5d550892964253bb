package config

import (
	"bytes"
	stderrors "errors"
	"io"
	"os"
	"slices"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/vango-dev/vgrid/internal/errors"
	"github.com/vango-dev/vgrid/pkg/columns"
	"github.com/vango-dev/vgrid/pkg/grid"
)

// GridDef is a grid definition file.
type GridDef struct {
	Name      string         `yaml:"name"`
	Class     string         `yaml:"class,omitempty"`
	RowClass  string         `yaml:"rowClass,omitempty"`
	RowHeader bool           `yaml:"rowHeader,omitempty"`
	Events    []string       `yaml:"events,omitempty"`
	Columns   []columns.Spec `yaml:"columns"`

	// Sort is the initial sort-by string ("name" or "-name").
	Sort string `yaml:"sort,omitempty"`

	path string
}

// LoadGrid reads and validates a grid definition.
func LoadGrid(path string) (*GridDef, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("E110").
				WithDetail("No grid definition at " + path).
				WithSuggestion(`Set "grid" in vgrid.json or pass --grid`)
		}
		return nil, errors.New("E110").Wrap(err)
	}
	def, err := parseGrid(path, data)
	if err != nil {
		return nil, err
	}
	def.path = path
	return def, nil
}

// ParseGrid decodes a grid definition from YAML.
func ParseGrid(data []byte) (*GridDef, error) {
	return parseGrid("", data)
}

func parseGrid(file string, data []byte) (*GridDef, error) {
	def := &GridDef{}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(def); err != nil && !stderrors.Is(err, io.EOF) {
		ve := errors.New("E111").Wrap(err)
		if file != "" {
			ve = ve.WithLocationFromYAML(file, err)
		}
		return nil, ve
	}
	if err := def.Validate(); err != nil {
		return nil, err
	}
	return def, nil
}

// Path returns the file the definition was loaded from.
func (d *GridDef) Path() string {
	return d.path
}

// Validate checks the columns and the initial sort.
func (d *GridDef) Validate() error {
	if len(d.Columns) == 0 {
		return errors.New("E113").
			WithSuggestion("Add at least one entry under columns:")
	}
	for i, c := range d.Columns {
		if c.Kind != "" && !slices.Contains(columns.Kinds, c.Kind) {
			return errors.New("E112").
				WithDetail("Column " + strconv.Itoa(i) + " has kind " + strconv.Quote(c.Kind)).
				WithSuggestion("Use one of: text, number, index, checkbox, link, html")
		}
	}
	if d.Sort != "" {
		key, _ := grid.ParseSortBy(d.Sort)
		idx := slices.IndexFunc(d.Columns, func(c columns.Spec) bool { return c.Field == key })
		if idx < 0 {
			return errors.New("E114").
				WithDetail("No column has field " + strconv.Quote(key))
		}
		if !d.Columns[idx].Sortable {
			return errors.New("E114").
				WithDetail("Column " + strconv.Quote(key) + " is not sortable").
				WithSuggestion("Set sortable: true on the column")
		}
	}
	return nil
}

// GridConfig builds the grid configuration.
func (d *GridDef) GridConfig() (grid.Config, error) {
	defs, err := columns.BuildAll(d.Columns)
	if err != nil {
		code := "E115"
		if stderrors.Is(err, columns.ErrUnknownKind) {
			code = "E112"
		}
		return grid.Config{}, errors.New(code).Wrap(err)
	}
	return grid.Config{
		Columns:      defs,
		UseRowHeader: d.RowHeader,
		Events:       d.Events,
		Class:        d.Class,
		RowClass:     d.RowClass,
		Name:         d.Name,
	}, nil
}

// FixedHeaderLayout returns the fixed-header measurements, or nil when the fixed header
// is disabled.
func (c *Config) FixedHeaderLayout() grid.Layout {
	if c.Layout.ContainerHeight <= 0 {
		return nil
	}
	return grid.StaticLayout{Container: c.Layout.ContainerHeight, Header: c.Layout.HeaderHeight}
}
