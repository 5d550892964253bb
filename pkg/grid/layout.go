package grid

import (
	"fmt"
	"strconv"
)

// fixedHeaderClass is toggled on the table by UpdateFixedHeader.
const fixedHeaderClass = "fixedHeaderTable"

// selectedClass marks selected rows.
const selectedClass = "selected"

// Layout measures the rendered grid.
type Layout interface {
	ContainerHeight() float64
	HeaderHeight() float64
}

// StaticLayout is a Layout with fixed measurements.
type StaticLayout struct {
	Container float64
	Header    float64
}

func (l StaticLayout) ContainerHeight() float64 { return l.Container }
func (l StaticLayout) HeaderHeight() float64    { return l.Header }

// ColumnResize describes a completed column resize.
type ColumnResize struct {
	Index  int
	Column ColumnDef
	Width  float64
}

// OnColumnResize records a new width for a column, updates its header cell
// and notifies Hooks.OnColumnResize.
func (g *Grid) OnColumnResize(columnIndex int, width float64) error {
	if !g.valid() {
		return nil
	}
	if columnIndex < 0 || columnIndex >= len(g.columns) {
		return fmt.Errorf("%w: column %d of %d", ErrIndexOutOfRange, columnIndex, len(g.columns))
	}
	if width < 0 {
		return fmt.Errorf("%w: %g", ErrInvalidWidth, width)
	}

	g.columns[columnIndex].Width = width
	if columnIndex < len(g.templates) {
		g.templates[columnIndex].def.Width = width
	}
	if th := g.headerCell(columnIndex); th != nil {
		if width == 0 {
			th.SetStyle("width", "")
		} else {
			th.SetStyle("width", formatPx(width))
		}
	}

	if g.cfg.Hooks.OnColumnResize != nil {
		g.cfg.Hooks.OnColumnResize(ColumnResize{
			Index:  columnIndex,
			Column: g.columns[columnIndex],
			Width:  width,
		})
	}
	return nil
}

// ResizeColumns applies widths by column position. Non-positive entries are
// skipped.
func (g *Grid) ResizeColumns(widths []float64) error {
	for i, w := range widths {
		if w <= 0 {
			continue
		}
		if err := g.OnColumnResize(i, w); err != nil {
			return err
		}
	}
	return nil
}

// UpdateFixedHeader sizes the body to the container height minus the header
// height and marks the table as having a fixed header.
func (g *Grid) UpdateFixedHeader(layout Layout) {
	if !g.valid() || layout == nil {
		return
	}
	height := layout.ContainerHeight() - layout.HeaderHeight()
	if height < 0 {
		height = 0
	}
	g.table.ToggleClass(fixedHeaderClass, true)
	g.body.SetStyle("height", formatPx(height))
}

// SelectRow toggles the selected state of the row at index.
func (g *Grid) SelectRow(index int, selected bool) error {
	if !g.valid() {
		return nil
	}
	if index < 0 || index >= len(g.rows) {
		return fmt.Errorf("%w: row %d of %d", ErrIndexOutOfRange, index, len(g.rows))
	}
	el := g.rows[index].Element
	el.ToggleClass(selectedClass, selected)
	if selected {
		el.SetAttr("aria-selected", "true")
	} else {
		el.RemoveAttr("aria-selected")
	}
	return nil
}

func formatPx(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "px"
}
