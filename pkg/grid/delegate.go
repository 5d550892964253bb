package grid

import (
	"fmt"

	"github.com/vango-dev/vgrid/pkg/vango"
	"github.com/vango-dev/vgrid/pkg/vdom"
)

// DelegateState is the state of the delegated listener for one event type.
type DelegateState uint8

const (
	StateIdle DelegateState = iota
	StateWalking
	StateNoMatch
	StateDispatching
)

// String returns the state name.
func (s DelegateState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateWalking:
		return "walking"
	case StateNoMatch:
		return "no-match"
	case StateDispatching:
		return "dispatching"
	default:
		return fmt.Sprintf("DelegateState(%d)", s)
	}
}

// Event is what delegated handlers receive: the native event augmented with
// the row it resolved to.
type Event struct {
	*vdom.Event

	// Item is the row's item. Mutate it through Row so the row refreshes.
	Item Item

	// Index is the row position.
	Index int

	// Row is the grid's row context, bound to Item for the dispatch.
	Row *RowContext

	// Element is the row element that received the event.
	Element *vdom.VNode

	// Column is the template that exposed the running handler, nil for
	// row-level actions.
	Column *ColumnTemplate
}

type delegate struct {
	typ    string
	state  DelegateState
	remove func()
}

type boundHandler struct {
	fn       Handler
	actionID string
}

// AttachDelegation installs one capturing listener on the body for each
// event type. Types already attached are skipped.
func (g *Grid) AttachDelegation(eventTypes ...string) {
	if !g.valid() {
		return
	}
	for _, typ := range eventTypes {
		if _, ok := g.delegates[typ]; ok {
			continue
		}
		d := &delegate{typ: typ}
		d.remove = g.body.AddEventListener(typ, func(e *vdom.Event) {
			g.onEvent(d, e)
		}, true)
		g.delegates[typ] = d
	}
}

// DetachDelegation removes every delegated listener.
func (g *Grid) DetachDelegation() {
	for typ, d := range g.delegates {
		d.remove()
		delete(g.delegates, typ)
	}
}

// DelegateState returns the state of the listener for typ.
func (g *Grid) DelegateState(typ string) DelegateState {
	if d, ok := g.delegates[typ]; ok {
		return d.state
	}
	return StateIdle
}

func (g *Grid) onEvent(d *delegate, e *vdom.Event) {
	if !g.valid() {
		return
	}
	if g.dispatching {
		g.logger.Warn("nested delegated event dropped", "type", e.Type)
		g.metrics.event(e.Type, "nested")
		return
	}

	d.state = StateWalking
	defer func() { d.state = StateIdle }()

	var (
		handlers []boundHandler
		vr       *VirtualRow
		boundary *vdom.VNode
		child    *vdom.VNode
		prev     *vdom.VNode
	)
	for n := e.Target; n != nil && n != g.body; n = n.Parent() {
		if id, ok := n.GetAttr(actionAttr); ok {
			if fn := g.actions[id][e.Type]; fn != nil {
				handlers = append(handlers, boundHandler{fn: fn, actionID: id})
			}
		}
		if row, ok := g.nodes[n]; ok {
			vr, boundary, child = row, n, prev
			break
		}
		prev = n
	}

	if vr == nil {
		d.state = StateNoMatch
		g.metrics.event(e.Type, "no-match")
		return
	}
	if len(handlers) == 0 {
		g.metrics.event(e.Type, "unhandled")
		return
	}

	d.state = StateDispatching
	g.dispatch(vr, boundary, child, handlers, e)
	g.metrics.event(e.Type, "dispatched")
}

func (g *Grid) dispatch(vr *VirtualRow, boundary, child *vdom.VNode, handlers []boundHandler, e *vdom.Event) {
	g.dispatching = true
	defer func() { g.dispatching = false }()

	// Without a resolvable cell the templates keep their default element.
	if pos := boundary.IndexOf(child); pos >= 0 && pos < len(g.templates) {
		restore := g.templates[pos].patchElement(child.FirstChild())
		defer restore()
	}

	if err := g.row.Bind(vr.Item, vr.Index, false); err != nil {
		g.logger.Error("delegated bind failed", "type", e.Type, "row", vr.Index, "error", err)
		return
	}
	defer g.row.quiet()

	ge := &Event{
		Event:   e,
		Item:    vr.Item,
		Index:   vr.Index,
		Row:     g.row,
		Element: boundary,
	}
	vango.Batch(func() {
		for _, h := range handlers {
			ge.Column = g.actionOwners[h.actionID]
			if err := runHandler(h.fn, ge); err != nil {
				g.logger.Error("delegated handler failed", "type", e.Type, "row", vr.Index, "action", h.actionID, "error", err)
				return
			}
		}
	})

	if !g.row.Dirty() {
		return
	}
	index := g.indexOf(vr)
	if index < 0 {
		// A handler replaced or removed the row itself.
		return
	}
	next, err := g.materialize(vr.Item, index)
	if err == nil {
		err = g.replaceRow(index, next)
	}
	if err != nil {
		g.logger.Error("row refresh failed", "row", index, "error", err)
		if g.cfg.Hooks.OnRefreshError != nil {
			g.cfg.Hooks.OnRefreshError(index, err)
		}
	}
}

func runHandler(fn Handler, e *Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("grid: handler panic: %v", r)
		}
	}()
	fn(e)
	return nil
}
