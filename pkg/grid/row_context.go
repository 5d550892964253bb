package grid

import "github.com/vango-dev/vgrid/pkg/vango"

// RowContext is the single mutable binding shared by every column template of
// a grid. It holds the item currently being rendered or handled and is
// overwritten on each Bind.
//
// Reads (Item, Index, Field) subscribe the template that is rendering, so a
// later Bind or mutation schedules exactly the templates that depend on the
// row. Mutations made while the context is quiet still schedule templates but
// do not mark the row dirty; the grid only re-materializes a row when an
// action mutated it through a non-quiet binding.
type RowContext struct {
	item           Item
	index          int
	suppressNotify bool
	dirty          bool
	locked         bool

	changed *vango.Trigger
}

func newRowContext() *RowContext {
	return &RowContext{
		index:          -1,
		suppressNotify: true,
		changed:        vango.NewTrigger(),
	}
}

// Bind overwrites the bound item and index. quiet selects whether later
// mutations flag the row dirty. Bind resets the dirty flag; it never sets it.
func (r *RowContext) Bind(item Item, index int, quiet bool) error {
	if r.locked {
		return ErrRowContextLocked
	}
	r.item = item
	r.index = index
	r.suppressNotify = quiet
	r.dirty = false
	r.changed.Fire()
	return nil
}

// Item returns the bound item. It may be nil before the first bind.
func (r *RowContext) Item() Item {
	r.changed.Track()
	return r.item
}

// Index returns the bound row index, or -1 before the first bind.
func (r *RowContext) Index() int {
	r.changed.Track()
	return r.index
}

// Field returns one field of the bound item.
func (r *RowContext) Field(name string) any {
	r.changed.Track()
	if r.item == nil {
		return nil
	}
	return r.item[name]
}

// String returns one field of the bound item formatted as text.
func (r *RowContext) String(name string) string {
	r.changed.Track()
	return r.item.String(name)
}

// Set writes a field of the bound item.
func (r *RowContext) Set(field string, value any) error {
	if err := r.mutable(); err != nil {
		return err
	}
	r.item[field] = value
	r.markChanged()
	return nil
}

// Update applies fn to the bound item in place.
func (r *RowContext) Update(fn func(Item)) error {
	if err := r.mutable(); err != nil {
		return err
	}
	fn(r.item)
	r.markChanged()
	return nil
}

// Touch reports a change to state the templates read outside the item.
func (r *RowContext) Touch() {
	r.markChanged()
}

// Dirty reports whether the row was mutated since the last bind.
func (r *RowContext) Dirty() bool { return r.dirty }

// Quiet reports whether mutations are currently ignored for dirty tracking.
func (r *RowContext) Quiet() bool { return r.suppressNotify }

// Locked reports whether a row snapshot is in flight.
func (r *RowContext) Locked() bool { return r.locked }

func (r *RowContext) mutable() error {
	if r.locked {
		return ErrRowContextLocked
	}
	if r.item == nil {
		return ErrUnbound
	}
	return nil
}

func (r *RowContext) markChanged() {
	if !r.suppressNotify {
		r.dirty = true
	}
	r.changed.Fire()
}

func (r *RowContext) quiet() {
	r.suppressNotify = true
}

func (r *RowContext) lock()   { r.locked = true }
func (r *RowContext) unlock() { r.locked = false }
