// Package render serializes vdom trees to HTML.
//
// Elements carrying a hydration ID are written with a data-hid attribute so
// the live client can address rows and cells for in-place replacement:
//
//	r := render.New(render.Config{})
//	html, err := r.RenderToString(g.Table())
//
// RenderPage wraps a tree in a complete HTML document, and
// StreamingRenderer does the same against an http.ResponseWriter, flushing
// the head before the body.
package render
