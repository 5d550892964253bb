package vdom

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDispatchOrder(t *testing.T) {
	target := Em()
	mid := Span(target)
	root := Div(mid)

	var order []string
	record := func(name string) ListenerFunc {
		return func(e *Event) { order = append(order, name) }
	}
	root.AddEventListener(EventClick, record("root-capture"), true)
	root.AddEventListener(EventClick, record("root-bubble"), false)
	mid.AddEventListener(EventClick, record("mid-capture"), true)
	mid.AddEventListener(EventClick, record("mid-bubble"), false)
	target.AddEventListener(EventClick, record("target"), false)

	Dispatch(NewEvent(EventClick, target))

	want := []string{"root-capture", "mid-capture", "target", "mid-bubble", "root-bubble"}
	if diff := cmp.Diff(want, order); diff != "" {
		t.Errorf("dispatch order mismatch (-want +got):\n%s", diff)
	}
}

func TestStopPropagation(t *testing.T) {
	target := Span()
	root := Div(target)
	bubbled := false
	root.AddEventListener(EventClick, func(*Event) { bubbled = true }, false)
	target.AddEventListener(EventClick, func(e *Event) { e.StopPropagation() }, false)

	Dispatch(NewEvent(EventClick, target))
	if bubbled {
		t.Error("event bubbled after StopPropagation")
	}

	var ran []int
	root.AddEventListener(EventKeyDown, func(e *Event) {
		ran = append(ran, 1)
		e.StopImmediatePropagation()
	}, true)
	root.AddEventListener(EventKeyDown, func(*Event) { ran = append(ran, 2) }, true)
	Dispatch(NewEvent(EventKeyDown, target))
	if diff := cmp.Diff([]int{1}, ran); diff != "" {
		t.Errorf("listeners after StopImmediatePropagation (-want +got):\n%s", diff)
	}
}

func TestPreventDefault(t *testing.T) {
	target := Button()
	target.AddEventListener(EventClick, func(e *Event) { e.PreventDefault() }, false)
	e := NewEvent(EventClick, target)
	if Dispatch(e) {
		t.Error("Dispatch() = true, want false after PreventDefault")
	}
	if !e.DefaultPrevented() {
		t.Error("DefaultPrevented() = false")
	}
	if e.Phase != PhaseNone || e.CurrentTarget != nil {
		t.Error("event phase not reset after dispatch")
	}
}

func TestRemoveListener(t *testing.T) {
	n := Div()
	calls := 0
	remove := n.AddEventListener(EventClick, func(*Event) { calls++ }, false)
	if n.ListenerCount(EventClick) != 1 {
		t.Fatal("listener not registered")
	}
	remove()
	remove()
	Dispatch(NewEvent(EventClick, n))
	if calls != 0 || n.ListenerCount(EventClick) != 0 {
		t.Errorf("removed listener ran %d times", calls)
	}
}
