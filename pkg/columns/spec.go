package columns

import (
	"errors"
	"fmt"

	"github.com/vango-dev/vgrid/pkg/grid"
)

// ErrUnknownKind is returned by Build for an unregistered column kind.
var ErrUnknownKind = errors.New("columns: unknown column kind")

// Spec declares a column in configuration files.
type Spec struct {
	Kind      string  `yaml:"kind" json:"kind"`
	Field     string  `yaml:"field" json:"field"`
	Label     string  `yaml:"label,omitempty" json:"label,omitempty"`
	Width     float64 `yaml:"width,omitempty" json:"width,omitempty"`
	Sortable  bool    `yaml:"sortable,omitempty" json:"sortable,omitempty"`
	Class     string  `yaml:"class,omitempty" json:"class,omitempty"`
	Precision *int    `yaml:"precision,omitempty" json:"precision,omitempty"`
	HrefField string  `yaml:"hrefField,omitempty" json:"hrefField,omitempty"`
}

// Kinds lists the column kinds Build understands.
var Kinds = []string{"text", "number", "index", "checkbox", "link", "html"}

// Build turns a spec into a column definition.
func Build(s Spec) (grid.ColumnDef, error) {
	def := grid.ColumnDef{
		Key:      s.Field,
		Label:    s.Label,
		Width:    s.Width,
		Sortable: s.Sortable,
		Class:    s.Class,
	}
	switch s.Kind {
	case "", "text":
		def.Template = Text(s.Field)
	case "number":
		precision := -1
		if s.Precision != nil {
			precision = *s.Precision
		}
		def.Template = Number(s.Field, precision)
	case "index":
		def.Template = Index()
		def.Sortable = false
		if def.Label == "" {
			def.Label = "#"
		}
	case "checkbox":
		def.Template = Checkbox(s.Field)
		def.Actions = ToggleActions(s.Field)
	case "link":
		href := s.HrefField
		if href == "" {
			href = s.Field + "_url"
		}
		def.Template = Link(href, s.Field)
	case "html":
		def.Template = HTML(s.Field)
	default:
		return grid.ColumnDef{}, fmt.Errorf("%w: %q", ErrUnknownKind, s.Kind)
	}
	if def.Key == "" && s.Kind != "index" {
		return grid.ColumnDef{}, fmt.Errorf("columns: %s column without field", s.Kind)
	}
	return def, nil
}

// BuildAll builds every spec, reporting the first failure with its position.
func BuildAll(specs []Spec) ([]grid.ColumnDef, error) {
	defs := make([]grid.ColumnDef, 0, len(specs))
	for i, s := range specs {
		def, err := Build(s)
		if err != nil {
			return nil, fmt.Errorf("column %d: %w", i, err)
		}
		defs = append(defs, def)
	}
	return defs, nil
}
