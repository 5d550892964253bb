package grid

import (
	"fmt"
	"time"

	"github.com/vango-dev/vgrid/pkg/vdom"
)

// CreateAll replaces every row with one materialized row per item, inserted
// into the body in a single operation. On error the previous rows and items
// are left untouched.
func (g *Grid) CreateAll(items []Item) error {
	if !g.valid() {
		return nil
	}
	start := time.Now()
	built, err := g.materializeAll(items, 0)
	if err != nil {
		return err
	}

	// Detach in one pass so release does not search tbody per row.
	_ = g.body.ReplaceChildren()
	for _, old := range g.rows {
		g.release(old)
	}
	_ = g.body.AppendChild(fragmentOf(built))

	g.metrics.rowsChanged(len(built) - len(g.rows))
	g.rows = built
	g.items = append([]Item(nil), items...)
	g.pending = nil

	g.metrics.bulk("create", time.Since(start))
	g.logger.Debug("rows created", "rows", len(built))
	if g.cfg.Hooks.OnRowsReset != nil {
		g.cfg.Hooks.OnRowsReset(g.Rows())
	}
	return nil
}

// AppendAll materializes items after the existing rows and inserts them in
// one operation. Existing rows are not re-rendered. New rows are indexed
// from the current row count.
func (g *Grid) AppendAll(items []Item) error {
	if !g.valid() || len(items) == 0 {
		return nil
	}
	start := time.Now()
	first := len(g.items)
	built, err := g.materializeAll(items, first)
	if err != nil {
		return err
	}

	_ = g.body.AppendChild(fragmentOf(built))
	g.rows = append(g.rows, built...)
	g.items = append(g.items, items...)

	g.metrics.rowsChanged(len(built))
	g.metrics.bulk("append", time.Since(start))
	g.logger.Debug("rows appended", "start", first, "rows", len(built))
	if g.cfg.Hooks.OnRowsAppended != nil {
		g.cfg.Hooks.OnRowsAppended(first, append([]*VirtualRow(nil), built...))
	}
	return nil
}

// ReplaceAt re-renders the row at index from item and swaps it in place.
func (g *Grid) ReplaceAt(index int, item Item) error {
	if !g.valid() {
		return nil
	}
	if index < 0 || index >= len(g.rows) {
		return fmt.Errorf("%w: row %d of %d", ErrIndexOutOfRange, index, len(g.rows))
	}
	vr, err := g.materialize(item, index)
	if err != nil {
		return err
	}
	if err := g.replaceRow(index, vr); err != nil {
		return err
	}
	g.items[index] = item
	return nil
}

// replaceRow swaps the row at index for vr in the body and the store. The
// old row is detached and its metadata cleared.
func (g *Grid) replaceRow(index int, vr *VirtualRow) error {
	old := g.rows[index]
	oldHID := old.HID()
	if _, err := g.body.ReplaceChild(vr.Element, old.Element); err != nil {
		g.release(vr)
		return fmt.Errorf("grid: replace row %d: %w", index, err)
	}
	g.rows[index] = vr
	g.release(old)

	g.metrics.replaced()
	if g.cfg.Hooks.OnRowReplaced != nil {
		g.cfg.Hooks.OnRowReplaced(index, oldHID, vr)
	}
	return nil
}

// materializeAll builds one row per item starting at index first. A failure
// releases every row built so far.
func (g *Grid) materializeAll(items []Item, first int) ([]*VirtualRow, error) {
	if g.skeleton == nil {
		return nil, ErrNotCompiled
	}
	built := make([]*VirtualRow, 0, len(items))
	for i, item := range items {
		vr, err := g.materialize(item, first+i)
		if err != nil {
			for _, b := range built {
				g.release(b)
			}
			g.logger.Error("row materialization failed", "row", first+i, "error", err)
			return nil, err
		}
		built = append(built, vr)
	}
	return built, nil
}

// indexOf resolves the current position of vr. Rows keep the index they were
// built with, which is checked first.
func (g *Grid) indexOf(vr *VirtualRow) int {
	if vr.Index >= 0 && vr.Index < len(g.rows) && g.rows[vr.Index] == vr {
		return vr.Index
	}
	for i, r := range g.rows {
		if r == vr {
			return i
		}
	}
	return -1
}

func fragmentOf(rows []*VirtualRow) *vdom.VNode {
	frag := vdom.Fragment()
	for _, vr := range rows {
		_ = frag.AppendChild(vr.Element)
	}
	return frag
}
