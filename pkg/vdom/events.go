package vdom

// Common event type names.
const (
	EventClick       = "click"
	EventDblClick    = "dblclick"
	EventContextMenu = "contextmenu"
	EventKeyDown     = "keydown"
	EventKeyUp       = "keyup"
	EventInput       = "input"
	EventChange      = "change"
	EventFocusIn     = "focusin"
	EventFocusOut    = "focusout"
	EventMouseOver   = "mouseover"
	EventMouseOut    = "mouseout"
)

// Phase is the current propagation phase of an Event.
type Phase uint8

const (
	PhaseNone Phase = iota
	PhaseCapturing
	PhaseAtTarget
	PhaseBubbling
)

// Event is a DOM event travelling through a node tree.
type Event struct {
	// Type is the event name without the "on" prefix (e.g., "click").
	Type string

	// Target is the node the event was dispatched at.
	Target *VNode

	// CurrentTarget is the node whose listeners are running.
	CurrentTarget *VNode

	// Phase is the propagation phase.
	Phase Phase

	// Key is the key value for keyboard events.
	Key string

	// Value carries the input value for input/change events.
	Value string

	// Detail holds arbitrary event data.
	Detail map[string]any

	defaultPrevented bool
	stopped          bool
	stoppedNow       bool
}

// NewEvent creates an event of the given type targeted at target.
func NewEvent(typ string, target *VNode) *Event {
	return &Event{Type: typ, Target: target}
}

// PreventDefault marks the event's default action as cancelled.
func (e *Event) PreventDefault() { e.defaultPrevented = true }

// DefaultPrevented reports whether PreventDefault was called.
func (e *Event) DefaultPrevented() bool { return e.defaultPrevented }

// StopPropagation prevents the event from reaching further nodes.
// Listeners on the current node still run.
func (e *Event) StopPropagation() { e.stopped = true }

// StopImmediatePropagation also skips the remaining listeners of the current node.
func (e *Event) StopImmediatePropagation() {
	e.stopped = true
	e.stoppedNow = true
}

// PropagationStopped reports whether propagation was stopped.
func (e *Event) PropagationStopped() bool { return e.stopped }

// ListenerFunc handles an Event.
type ListenerFunc func(e *Event)

type listener struct {
	typ     string
	fn      ListenerFunc
	capture bool
	removed bool
}

// AddEventListener registers fn for events of type typ on v. With capture set
// the listener runs during the capture phase, before listeners on the
// target's descendants-to-ancestors path. The returned function removes the
// listener.
func (v *VNode) AddEventListener(typ string, fn ListenerFunc, capture bool) (remove func()) {
	l := &listener{typ: typ, fn: fn, capture: capture}
	v.listeners = append(v.listeners, l)
	return func() {
		if l.removed {
			return
		}
		l.removed = true
		for i, existing := range v.listeners {
			if existing == l {
				v.listeners = append(v.listeners[:i], v.listeners[i+1:]...)
				return
			}
		}
	}
}

// ListenerCount returns the number of listeners registered on v for typ.
func (v *VNode) ListenerCount(typ string) int {
	n := 0
	for _, l := range v.listeners {
		if l.typ == typ {
			n++
		}
	}
	return n
}

// Dispatch sends e to its target. Capture listeners run from the root down to
// the target's parent, then target listeners, then bubble listeners from the
// target's parent up to the root. Dispatch returns false if a listener called
// PreventDefault.
func Dispatch(e *Event) bool {
	if e == nil || e.Target == nil {
		return true
	}

	var path []*VNode
	for n := e.Target.parent; n != nil; n = n.parent {
		path = append(path, n)
	}

	e.Phase = PhaseCapturing
	for i := len(path) - 1; i >= 0 && !e.stopped; i-- {
		invoke(path[i], e, true)
	}

	if !e.stopped {
		e.Phase = PhaseAtTarget
		invoke(e.Target, e, true)
		if !e.stoppedNow {
			invoke(e.Target, e, false)
		}
	}

	e.Phase = PhaseBubbling
	for i := 0; i < len(path) && !e.stopped; i++ {
		invoke(path[i], e, false)
	}

	e.Phase = PhaseNone
	e.CurrentTarget = nil
	return !e.defaultPrevented
}

func invoke(node *VNode, e *Event, capture bool) {
	if len(node.listeners) == 0 {
		return
	}
	// Snapshot so listeners may add or remove listeners while running.
	snapshot := make([]*listener, len(node.listeners))
	copy(snapshot, node.listeners)

	e.CurrentTarget = node
	for _, l := range snapshot {
		if l.removed || l.typ != e.Type || l.capture != capture {
			continue
		}
		l.fn(e)
		if e.stoppedNow {
			return
		}
	}
}
