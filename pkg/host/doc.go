// Package host provides the component runtime a grid is mounted in.
//
// The runtime keeps components grouped by scope, queues components that are
// marked dirty, and re-renders a single scope on demand. Binding keys let a
// component be scheduled when a named piece of state changes and let callers
// mark that state clean again before a render pass, which is how a grid keeps
// its own items binding from re-triggering itself while it materializes rows.
//
//	rt := host.New()
//	rt.Mount("grid-1/skeleton", tpl)
//	rt.Schedule(tpl)
//	err := rt.RenderScoped("grid-1/skeleton")
package host
