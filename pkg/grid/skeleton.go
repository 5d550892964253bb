package grid

import (
	"fmt"

	"github.com/vango-dev/vgrid/pkg/vdom"
)

// Compile builds the row skeleton from defs, replacing any previous one. With
// useRowHeader the first column renders into <th scope="row">. Rows built
// from the previous skeleton are rebuilt from the current items.
//
// The new templates are rendered before the old ones are destroyed. When a
// new template fails, Compile returns its *TemplateError and the previous
// skeleton, header and rows stay in use. When rebuilding the rows fails, the
// new skeleton is kept and the old rows stay until the next CreateAll.
func (g *Grid) Compile(defs []ColumnDef, useRowHeader bool) error {
	if !g.valid() {
		return nil
	}
	if g.materializing {
		return ErrReentrantMaterialize
	}
	if len(defs) == 0 {
		return ErrNoColumns
	}
	for i, def := range defs {
		if def.Template == nil {
			return fmt.Errorf("%w: column %d (%s)", ErrNilTemplate, i, def.Key)
		}
	}

	skeleton := vdom.Tr()
	if g.cfg.RowClass != "" {
		skeleton.SetAttr("class", g.cfg.RowClass)
	}
	actions := make(map[string]Actions)
	owners := make(map[string]*ColumnTemplate)
	if len(g.cfg.RowActions) > 0 {
		skeleton.SetAttr(actionAttr, rowActionID)
		actions[rowActionID] = g.cfg.RowActions
	}

	templates := make([]*ColumnTemplate, 0, len(defs))
	for i, def := range defs {
		var cell *vdom.VNode
		if i == 0 && useRowHeader {
			cell = vdom.Th(vdom.Scope("row"))
		} else {
			cell = vdom.Td()
		}
		if def.Class != "" {
			cell.SetAttr("class", def.Class)
		}
		t := newColumnTemplate(i, def, g.row, cell, g.host)
		g.host.Mount(g.skeletonScope, t)
		templates = append(templates, t)
		if err := t.Render(); err != nil {
			for _, created := range templates {
				created.destroy()
			}
			return err
		}
		_ = skeleton.AppendChild(cell)
		if t.actionID != "" {
			actions[t.actionID] = def.Actions
			owners[t.actionID] = t
		}
	}

	g.destroyTemplates()
	g.columns = append([]ColumnDef(nil), defs...)
	g.useRowHeader = useRowHeader
	g.templates = templates
	g.skeleton = skeleton
	g.actions = actions
	g.actionOwners = owners
	g.buildHeader()

	g.logger.Debug("row skeleton compiled", "columns", len(defs), "row_header", useRowHeader)

	if len(g.rows) > 0 {
		return g.CreateAll(g.items)
	}
	return nil
}

// Templates returns the live column templates in column order.
func (g *Grid) Templates() []*ColumnTemplate {
	return append([]*ColumnTemplate(nil), g.templates...)
}

// Skeleton returns the live row skeleton. It is never part of the table.
func (g *Grid) Skeleton() *vdom.VNode { return g.skeleton }

func (g *Grid) destroyTemplates() {
	for _, t := range g.templates {
		t.destroy()
	}
	g.templates = nil
	g.skeleton = nil
	g.actions = nil
	g.actionOwners = nil
}

// buildHeader renders the header row for the current columns and reapplies
// the sort indicator.
func (g *Grid) buildHeader() {
	row := vdom.Tr()
	for _, def := range g.columns {
		th := vdom.Th(vdom.Scope("col"), vdom.Data("key", def.Key), def.label())
		if def.Sortable {
			th.ToggleClass("sortable", true)
		}
		if def.Width > 0 {
			th.SetStyle("width", formatPx(def.Width))
		}
		_ = row.AppendChild(th)
	}
	vdom.AssignAllHIDs(row, g.hids)
	_ = g.thead.ReplaceChildren(row)
	g.headRow = row
	g.applySortIndicators()
}

func (g *Grid) headerCell(columnIndex int) *vdom.VNode {
	if g.headRow == nil || columnIndex < 0 || columnIndex >= len(g.headRow.Children) {
		return nil
	}
	return g.headRow.Children[columnIndex]
}
