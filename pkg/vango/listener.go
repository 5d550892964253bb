package vango

// Listener is anything that can be notified when a dependency changes.
// Column templates and host components implement it.
type Listener interface {
	// MarkDirty notifies the listener that one of its dependencies has changed.
	// For templates, this queues a re-render in the host.
	MarkDirty()

	// ID returns a unique identifier for this listener.
	// Used for deduplication during batch processing.
	ID() uint64
}
