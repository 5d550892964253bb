// Package vdom provides the mutable document model used by vgrid.
//
// Unlike a purely declarative virtual DOM, nodes here form a live tree:
// every child knows its parent, nodes can be moved, replaced, detached and
// deep-cloned, and events dispatched at a node travel through a capture and
// bubble phase exactly like in a browser document. The grid engine relies on
// these semantics to keep one mutable row skeleton, snapshot it per row, and
// route events through a single container listener.
//
// # Core Types
//
// VNode is the fundamental building block representing elements, text,
// fragments and raw HTML. Props holds attributes. Attr is used to build
// Props through the element factories:
//
//	Tr(Class("row"),
//	    Td(Span(Text("Ada"))),
//	    Td(Text("36")),
//	)
//
// # Tree Mutation
//
// AppendChild, InsertBefore, ReplaceChild and RemoveChild keep parent links
// consistent. Appending a KindFragment node moves its children, so a batch of
// rows can be inserted with a single call.
//
// # Events
//
// AddEventListener registers capture or bubble listeners on a node and
// Dispatch routes an Event from the root of the target's tree down to the
// target and back up.
//
// # Hydration
//
// AssignAllHIDs gives every element an addressable hydration ID so a remote
// client can name the node an event originated from.
package vdom
