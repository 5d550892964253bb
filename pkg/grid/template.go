package grid

import (
	"fmt"

	"github.com/vango-dev/vgrid/pkg/vango"
	"github.com/vango-dev/vgrid/pkg/vdom"
)

// actionAttr marks the nodes that expose actions to the event delegator. The
// value is a key into the grid's action table; clones inherit it.
const actionAttr = "data-vg-action"

// rowActionID is the action table key for row-level actions.
const rowActionID = "row"

// TemplateFunc renders the content of one cell from the row context. It must
// read the item through row on every call and tolerate an unbound row.
type TemplateFunc func(row *RowContext) *vdom.VNode

// Handler runs a delegated action for one row.
type Handler func(e *Event)

// Actions maps event types to handlers.
type Actions map[string]Handler

// ColumnDef describes one column.
type ColumnDef struct {
	// Key names the column. It is the field key used for sorting.
	Key string

	// Label is the header text. Defaults to Key.
	Label string

	// Width is the column width in pixels. Zero leaves it unset.
	Width float64

	// Sortable marks the header cell as a sort target.
	Sortable bool

	// Class is added to every cell of the column.
	Class string

	// Template renders the cell content.
	Template TemplateFunc

	// Actions are exposed on the cell content root of every row.
	Actions Actions
}

func (d ColumnDef) label() string {
	if d.Label != "" {
		return d.Label
	}
	return d.Key
}

// ColumnTemplate is the live instance of a column inside the row skeleton.
// It is re-rendered by the host whenever the row context it read from
// changes.
type ColumnTemplate struct {
	id       uint64
	position int
	def      ColumnDef
	actionID string

	row  *RowContext
	cell *vdom.VNode
	host Host

	element   func() *vdom.VNode
	renders   int
	destroyed bool
}

func newColumnTemplate(position int, def ColumnDef, row *RowContext, cell *vdom.VNode, h Host) *ColumnTemplate {
	t := &ColumnTemplate{
		id:       vango.NextID(),
		position: position,
		def:      def,
		row:      row,
		cell:     cell,
		host:     h,
	}
	if len(def.Actions) > 0 {
		t.actionID = fmt.Sprintf("c%d", position)
	}
	return t
}

// ID implements vango.Listener.
func (t *ColumnTemplate) ID() uint64 { return t.id }

// MarkDirty implements vango.Listener by scheduling the template in the host.
func (t *ColumnTemplate) MarkDirty() {
	if t.destroyed || t.host == nil {
		return
	}
	t.host.Schedule(t)
}

// Render re-renders the cell content against the bound row. A panicking
// template is reported as a *TemplateError.
func (t *ColumnTemplate) Render() (err error) {
	if t.destroyed {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			cause, ok := r.(error)
			if !ok {
				cause = fmt.Errorf("panic: %v", r)
			}
			err = &TemplateError{Column: t.position, Key: t.def.Key, Row: t.failedRow(), Err: cause}
		}
	}()

	var content *vdom.VNode
	vango.WithListener(t, func() {
		content = t.def.Template(t.row)
	})

	if content != nil && t.actionID != "" {
		if content.Kind != vdom.KindElement {
			content = vdom.Span(content)
		}
		content.SetAttr(actionAttr, t.actionID)
	}
	if err := t.cell.ReplaceChildren(content); err != nil {
		return &TemplateError{Column: t.position, Key: t.def.Key, Row: t.failedRow(), Err: err}
	}
	t.renders++
	return nil
}

// failedRow is the row being materialized, or -1 when the template renders
// outside materialization, such as during Compile.
func (t *ColumnTemplate) failedRow() int {
	if !t.row.locked {
		return -1
	}
	return t.row.index
}

// Element returns the node the template currently renders into. During a
// delegated dispatch it is the content root of the cell that received the
// event; otherwise it is the content root of the skeleton cell.
func (t *ColumnTemplate) Element() *vdom.VNode {
	if t.element != nil {
		return t.element()
	}
	return t.cell.FirstChild()
}

// Def returns the column definition.
func (t *ColumnTemplate) Def() ColumnDef { return t.def }

// Position returns the column position.
func (t *ColumnTemplate) Position() int { return t.position }

// Renders returns how many times the template has rendered.
func (t *ColumnTemplate) Renders() int { return t.renders }

func (t *ColumnTemplate) patchElement(el *vdom.VNode) (restore func()) {
	prev := t.element
	t.element = func() *vdom.VNode { return el }
	return func() { t.element = prev }
}

func (t *ColumnTemplate) destroy() {
	if t.destroyed {
		return
	}
	t.row.changed.Unsubscribe(t)
	if t.host != nil {
		t.host.Unmount(t)
	}
	t.destroyed = true
}
