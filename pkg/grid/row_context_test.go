package grid

import (
	"errors"
	"testing"

	"github.com/vango-dev/vgrid/pkg/vango"
)

type countingListener struct {
	id    uint64
	dirty int
}

func (l *countingListener) MarkDirty() { l.dirty++ }
func (l *countingListener) ID() uint64 { return l.id }

func TestRowContextBind(t *testing.T) {
	r := newRowContext()
	if r.Index() != -1 || r.Item() != nil {
		t.Fatalf("unbound context = %d/%v, want -1/nil", r.Index(), r.Item())
	}
	if err := r.Bind(Item{"a": 1}, 3, false); err != nil {
		t.Fatalf("Bind() error = %v", err)
	}
	if r.Dirty() {
		t.Error("Bind set dirty")
	}
	if r.Quiet() {
		t.Error("non-quiet bind left the context quiet")
	}
	if r.Index() != 3 || r.Field("a") != 1 {
		t.Errorf("bound context = %d/%v", r.Index(), r.Field("a"))
	}
}

func TestRowContextDirtyTracking(t *testing.T) {
	r := newRowContext()
	item := Item{"n": 1}

	_ = r.Bind(item, 0, true)
	if err := r.Set("n", 2); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if r.Dirty() {
		t.Error("quiet mutation set dirty")
	}
	if item["n"] != 2 {
		t.Error("Set did not write through to the item")
	}

	_ = r.Bind(item, 0, false)
	if err := r.Update(func(it Item) { it["n"] = 3 }); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if !r.Dirty() {
		t.Error("non-quiet mutation did not set dirty")
	}

	_ = r.Bind(item, 0, false)
	r.Touch()
	if !r.Dirty() {
		t.Error("Touch did not set dirty")
	}
	_ = r.Bind(item, 1, true)
	if r.Dirty() {
		t.Error("rebind did not reset dirty")
	}
}

func TestRowContextNotifiesSubscribers(t *testing.T) {
	r := newRowContext()
	l := &countingListener{id: 42}
	vango.WithListener(l, func() { _ = r.Index() })
	if r.changed.Subscribers() != 1 {
		t.Fatalf("subscribers = %d, want 1", r.changed.Subscribers())
	}

	_ = r.Bind(Item{"x": 1}, 0, true)
	_ = r.Set("x", 2)
	r.Touch()
	if l.dirty != 3 {
		t.Errorf("listener marked dirty %d times, want 3", l.dirty)
	}
}

func TestRowContextLocked(t *testing.T) {
	r := newRowContext()
	if err := r.Set("x", 1); !errors.Is(err, ErrUnbound) {
		t.Errorf("Set() on unbound context = %v, want ErrUnbound", err)
	}
	_ = r.Bind(Item{}, 0, true)
	r.lock()
	if err := r.Bind(Item{}, 1, true); !errors.Is(err, ErrRowContextLocked) {
		t.Errorf("Bind() while locked = %v, want ErrRowContextLocked", err)
	}
	if err := r.Update(func(Item) {}); !errors.Is(err, ErrRowContextLocked) {
		t.Errorf("Update() while locked = %v, want ErrRowContextLocked", err)
	}
	if r.Index() != 0 {
		t.Error("locked bind overwrote the binding")
	}
	r.unlock()
	if err := r.Bind(Item{}, 1, true); err != nil {
		t.Errorf("Bind() after unlock = %v", err)
	}
}

func TestItemHelpers(t *testing.T) {
	it := Item{"s": "x", "n": 4, "b": true, "nil": nil}
	if it.String("s") != "x" || it.String("n") != "4" || it.String("nil") != "" || it.String("missing") != "" {
		t.Errorf("String() results wrong")
	}
	if !it.Bool("b") || it.Bool("s") {
		t.Errorf("Bool() results wrong")
	}
	c := it.Clone()
	c["s"] = "y"
	if it["s"] != "x" {
		t.Error("Clone aliases the original")
	}
	var empty Item
	if empty.Clone() != nil {
		t.Error("Clone of nil item is not nil")
	}
}
