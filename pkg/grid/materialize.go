package grid

import (
	"strconv"
	"time"

	"github.com/vango-dev/vgrid/pkg/vdom"
)

// VirtualRow is a detached snapshot of the skeleton for one item.
type VirtualRow struct {
	// Element is the cloned <tr>.
	Element *vdom.VNode

	// Item is the item the row was rendered from.
	Item Item

	// Index is the row position at materialization time.
	Index int
}

// HID returns the hydration ID of the row element.
func (vr *VirtualRow) HID() string {
	if vr == nil || vr.Element == nil {
		return ""
	}
	return vr.Element.HID
}

// materialize renders the skeleton for item and returns a detached clone.
// Bind, render and clone run under the row context lock; nothing in between
// may rebind the context.
func (g *Grid) materialize(item Item, index int) (*VirtualRow, error) {
	if g.materializing {
		return nil, ErrReentrantMaterialize
	}
	if g.skeleton == nil {
		return nil, ErrNotCompiled
	}
	g.materializing = true
	defer func() { g.materializing = false }()

	start := time.Now()
	if err := g.row.Bind(item, index, true); err != nil {
		return nil, err
	}
	g.row.lock()
	defer g.row.unlock()

	// Rendering the skeleton must not also re-render the grid because of
	// its own items binding.
	g.host.MarkClean(g.itemsKey)
	for _, t := range g.templates {
		g.host.Schedule(t)
	}
	if err := g.host.RenderScoped(g.skeletonScope); err != nil {
		g.metrics.materializeFailed()
		return nil, err
	}

	el := g.skeleton.Clone(true)
	el.SetAttr("data-index", strconv.Itoa(index))
	vdom.AssignAllHIDs(el, g.hids)
	vr := &VirtualRow{Element: el, Item: item, Index: index}
	g.nodes[el] = vr

	g.metrics.materialized(time.Since(start))
	return vr, nil
}

// release detaches a row and clears its metadata.
func (g *Grid) release(vr *VirtualRow) {
	if vr == nil {
		return
	}
	if vr.Element != nil {
		vr.Element.Remove()
		delete(g.nodes, vr.Element)
	}
	vr.Item = nil
	vr.Index = -1
}

// RowOf returns the row owning node, walking up from node. It returns nil
// when node is not inside a row of this grid.
func (g *Grid) RowOf(node *vdom.VNode) *VirtualRow {
	for n := node; n != nil && n != g.body; n = n.Parent() {
		if vr, ok := g.nodes[n]; ok {
			return vr
		}
	}
	return nil
}
