// Package vango provides the reactive core used by vgrid templates.
//
// Triggers mark in-place mutations such as a row context rebinding; Signals
// hold values such as a grid's sort state. Reading either while a Listener is
// current (see WithListener) subscribes that listener, and a later Fire or
// changing Set calls its MarkDirty. Batch coalesces notifications so a
// listener is marked once per batch.
//
//	changed := vango.NewTrigger()
//	vango.WithListener(tpl, changed.Track) // tpl now depends on changed
//	changed.Fire()                         // tpl.MarkDirty()
//
//	sortBy := vango.NewSignal("")
//	vango.WithListener(header, func() { _ = sortBy.Get() })
//	sortBy.Set("name") // header.MarkDirty()
//	sortBy.Set("name") // unchanged, no notification
package vango
