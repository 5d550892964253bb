// Package live serves grids to browsers and keeps them interactive over a
// WebSocket.
//
// Every page load creates a session owning one grid. The page carries the
// grid's HTML with hydration IDs and a small client script. The script
// forwards delegated DOM events as JSON messages:
//
//	{"type":"click","hid":"h12","key":""}
//	{"type":"sort","sortBy":"-name"}
//	{"type":"resize","column":1,"width":180}
//
// The session replays each event into its grid and answers with patch
// operations, one per WebSocket message:
//
//	{"op":"replace","hid":"h40","html":"<tr ...>"}
//	{"op":"reset","html":"<tbody ...>"}
//	{"op":"header","html":"<thead ...>"}
//	{"op":"error","message":"..."}
//
// Routes:
//
//	GET /         full page
//	GET /grid     grid fragment (a new session)
//	GET /ws       WebSocket for ?session=<id>
//	GET /assets/  fingerprinted client script
//	GET /metrics  Prometheus metrics
//	GET /healthz  liveness
package live
