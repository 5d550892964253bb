// Package assets serves in-memory static assets under fingerprinted names.
//
// Each asset added to a Bundle gets a content-hashed name, so pages can link
// it with a far-future cache lifetime:
//
//	b := assets.NewBundle("/assets/")
//	b.Add("vgrid.js", "text/javascript; charset=utf-8", []byte(script))
//	b.Asset("vgrid.js") // "/assets/vgrid.1a2b3c4d.js"
//
// The Bundle is also the http.Handler for its prefix.
package assets
