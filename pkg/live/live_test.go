package live

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/vango-dev/vgrid/pkg/columns"
	"github.com/vango-dev/vgrid/pkg/datasource"
	"github.com/vango-dev/vgrid/pkg/grid"
	"github.com/vango-dev/vgrid/pkg/vdom"
)

var sessionAttr = regexp.MustCompile(`data-vgrid-session="([0-9a-f]+)"`)

func testConfig() Config {
	return Config{
		Grid: grid.Config{Columns: []grid.ColumnDef{
			{Key: "name", Label: "Name", Sortable: true, Template: columns.Text("name")},
			{Key: "done", Template: columns.Checkbox("done"), Actions: columns.ToggleActions("done")},
		}},
		Source: datasource.Static{
			{"name": "beta", "done": false},
			{"name": "alpha", "done": false},
			{"name": "gamma", "done": true},
		},
		Registry: prometheus.NewRegistry(),
	}
}

func newTestServer(t *testing.T, cfg Config) (*Server, *httptest.Server) {
	t.Helper()
	srv, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	ts := httptest.NewServer(srv)
	t.Cleanup(func() {
		ts.Close()
		srv.Close()
	})
	return srv, ts
}

func get(t *testing.T, url string) (int, string) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(body)
}

func openPage(t *testing.T, ts *httptest.Server) string {
	t.Helper()
	code, body := get(t, ts.URL+"/")
	if code != http.StatusOK {
		t.Fatalf("GET / = %d", code)
	}
	m := sessionAttr.FindStringSubmatch(body)
	if m == nil {
		t.Fatalf("no session in page:\n%s", body)
	}
	return m[1]
}

func dial(t *testing.T, ts *httptest.Server, id string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws?session=" + id
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readOp(t *testing.T, conn *websocket.Conn) Op {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var op Op
	if err := conn.ReadJSON(&op); err != nil {
		t.Fatalf("ReadJSON() error = %v", err)
	}
	return op
}

// checkboxHID returns the HIDs of row index's element and its checkbox.
func checkboxHID(t *testing.T, sess *Session, index int) (rowHID, inputHID string) {
	t.Helper()
	err := sess.Grid(func(g *grid.Grid) error {
		vr := g.Row(index)
		rowHID = vr.HID()
		vdom.Walk(vr.Element, func(n *vdom.VNode) bool {
			if n.Tag == "input" {
				inputHID = n.HID
			}
			return true
		})
		return nil
	})
	if err != nil || inputHID == "" {
		t.Fatalf("checkbox lookup: %v", err)
	}
	return rowHID, inputHID
}

func TestPageRendersSessionGrid(t *testing.T) {
	srv, ts := newTestServer(t, testConfig())
	code, body := get(t, ts.URL+"/")
	if code != http.StatusOK {
		t.Fatalf("GET / = %d", code)
	}
	for _, want := range []string{"<!DOCTYPE html>", "<title>vgrid</title>", "<table", "alpha", "data-hid=", `data-vgrid-events="click keydown"`, `src="/assets/vgrid.`} {
		if !strings.Contains(body, want) {
			t.Errorf("page missing %q", want)
		}
	}
	if srv.SessionCount() != 1 {
		t.Errorf("SessionCount() = %d, want 1", srv.SessionCount())
	}
}

func TestClientAsset(t *testing.T) {
	srv, ts := newTestServer(t, testConfig())
	code, body := get(t, ts.URL+srv.assets.Asset("vgrid.js"))
	if code != http.StatusOK || !strings.Contains(body, "new WebSocket") {
		t.Errorf("GET client script = %d", code)
	}
}

func TestFragment(t *testing.T) {
	_, ts := newTestServer(t, testConfig())
	code, body := get(t, ts.URL+"/grid")
	if code != http.StatusOK {
		t.Fatalf("GET /grid = %d", code)
	}
	if !strings.HasPrefix(body, `<div class="vgrid"`) || strings.Contains(body, "<html") {
		t.Errorf("fragment = %s", body)
	}
	if !sessionAttr.MatchString(body) {
		t.Error("fragment has no session")
	}
}

func TestFixedHeaderLayout(t *testing.T) {
	cfg := testConfig()
	cfg.Layout = grid.StaticLayout{Container: 600, Header: 40}
	_, ts := newTestServer(t, cfg)
	_, body := get(t, ts.URL+"/grid")
	if !strings.Contains(body, "fixedHeaderTable") || !strings.Contains(body, "height: 560px") {
		t.Errorf("fragment lacks fixed header: %s", body)
	}
}

func TestInitialSort(t *testing.T) {
	cfg := testConfig()
	cfg.SortBy = "-name"
	srv, ts := newTestServer(t, cfg)
	id := openPage(t, ts)
	sess, err := srv.Session(id)
	if err != nil {
		t.Fatalf("Session() error = %v", err)
	}
	var first string
	sess.Grid(func(g *grid.Grid) error {
		first, _ = g.Items()[0]["name"].(string)
		return nil
	})
	if first != "gamma" {
		t.Errorf("first item = %q, want gamma", first)
	}
}

func TestClickReplacesRow(t *testing.T) {
	srv, ts := newTestServer(t, testConfig())
	id := openPage(t, ts)
	sess, err := srv.Session(id)
	if err != nil {
		t.Fatalf("Session() error = %v", err)
	}
	rowHID, inputHID := checkboxHID(t, sess, 1)
	conn := dial(t, ts, id)

	if err := conn.WriteJSON(Message{Type: "click", HID: inputHID}); err != nil {
		t.Fatalf("WriteJSON() error = %v", err)
	}
	op := readOp(t, conn)
	if op.Op != OpReplace || op.HID != rowHID {
		t.Fatalf("op = %+v, want replace of %s", op, rowHID)
	}
	if !strings.Contains(op.HTML, `aria-checked="true"`) || !strings.Contains(op.HTML, "alpha") {
		t.Errorf("replacement html = %s", op.HTML)
	}

	_ = sess.Grid(func(g *grid.Grid) error {
		if !g.Items()[1].Bool("done") {
			t.Error("item not toggled")
		}
		return nil
	})
}

func TestClickRefreshFailureSendsError(t *testing.T) {
	cfg := testConfig()
	cfg.Grid.Columns = append(cfg.Grid.Columns, grid.ColumnDef{
		Key: "status",
		Template: func(row *grid.RowContext) *vdom.VNode {
			if row.Item().Bool("done") {
				panic("status unavailable")
			}
			return vdom.Text("open")
		},
	})
	cfg.Source = datasource.Static{
		{"name": "beta", "done": false},
		{"name": "alpha", "done": false},
	}
	var hooked []int
	cfg.Grid.Hooks.OnRefreshError = func(index int, err error) { hooked = append(hooked, index) }
	srv, ts := newTestServer(t, cfg)
	id := openPage(t, ts)
	sess, err := srv.Session(id)
	if err != nil {
		t.Fatalf("Session() error = %v", err)
	}
	rowHID, inputHID := checkboxHID(t, sess, 1)
	conn := dial(t, ts, id)

	if err := conn.WriteJSON(Message{Type: "click", HID: inputHID}); err != nil {
		t.Fatalf("WriteJSON() error = %v", err)
	}
	op := readOp(t, conn)
	if op.Op != OpError || !strings.Contains(op.Message, "row refresh failed") || !strings.Contains(op.Message, "status unavailable") {
		t.Fatalf("op = %+v, want refresh error", op)
	}

	_ = sess.Grid(func(g *grid.Grid) error {
		if g.Row(1).HID() != rowHID {
			t.Error("failed refresh replaced the row")
		}
		return nil
	})

	// Toggling back renders again.
	ops, err := sess.Handle(context.Background(), Message{Type: "click", HID: inputHID})
	if err != nil || len(ops) != 1 || ops[0].Op != OpReplace || ops[0].HID != rowHID {
		t.Fatalf("Handle() = %+v, %v; want replace of %s", ops, err, rowHID)
	}

	_, inputHID = checkboxHID(t, sess, 1)
	ops, err = sess.Handle(context.Background(), Message{Type: "click", HID: inputHID})
	if !errors.Is(err, ErrRefreshFailed) {
		t.Errorf("Handle() error = %v, want ErrRefreshFailed", err)
	}
	if len(ops) != 1 || ops[0].Op != OpError {
		t.Errorf("ops = %+v, want one error", ops)
	}
	_ = sess.Grid(func(*grid.Grid) error {
		if len(hooked) != 2 || hooked[0] != 1 || hooked[1] != 1 {
			t.Errorf("user hook calls = %v, want [1 1]", hooked)
		}
		return nil
	})
}

func TestSortResetsBodyAndHeader(t *testing.T) {
	_, ts := newTestServer(t, testConfig())
	conn := dial(t, ts, openPage(t, ts))

	if err := conn.WriteJSON(Message{Type: MsgSort, SortBy: "name"}); err != nil {
		t.Fatalf("WriteJSON() error = %v", err)
	}
	reset := readOp(t, conn)
	if reset.Op != OpReset {
		t.Fatalf("first op = %+v, want reset", reset)
	}
	a, b, g := strings.Index(reset.HTML, "alpha"), strings.Index(reset.HTML, "beta"), strings.Index(reset.HTML, "gamma")
	if !(a < b && b < g) || !strings.HasPrefix(reset.HTML, "<tbody") {
		t.Errorf("reset html not sorted: %s", reset.HTML)
	}
	header := readOp(t, conn)
	if header.Op != OpHeader || !strings.Contains(header.HTML, `aria-sort="ascending"`) {
		t.Errorf("second op = %+v, want header with aria-sort", header)
	}
}

func TestMessageErrors(t *testing.T) {
	_, ts := newTestServer(t, testConfig())
	conn := dial(t, ts, openPage(t, ts))

	send := func(raw string) Op {
		t.Helper()
		if err := conn.WriteMessage(websocket.TextMessage, []byte(raw)); err != nil {
			t.Fatalf("WriteMessage() error = %v", err)
		}
		return readOp(t, conn)
	}

	cases := map[string]string{
		`not json`:                        "invalid message",
		`{"type":"dblclick","hid":"h1"}`:  "unsupported",
		`{"type":"click","hid":"h999"}`:   "unknown target",
		`{"type":"sort","sortBy":"nope"}`: "malformed",
	}
	for raw, want := range cases {
		op := send(raw)
		if op.Op != OpError || !strings.Contains(op.Message, want) {
			t.Errorf("%s -> %+v, want error containing %q", raw, op, want)
		}
	}
}

func TestWebSocketSessionErrors(t *testing.T) {
	_, ts := newTestServer(t, testConfig())
	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws?session="

	_, resp, err := websocket.DefaultDialer.Dial(wsURL+"missing", nil)
	if err == nil || resp == nil || resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown session: err = %v resp = %v", err, resp)
	}

	id := openPage(t, ts)
	dial(t, ts, id)
	_, resp, err = websocket.DefaultDialer.Dial(wsURL+id, nil)
	if err == nil || resp == nil || resp.StatusCode != http.StatusConflict {
		t.Errorf("second attach: err = %v resp = %v", err, resp)
	}

	header := http.Header{"Origin": []string{"http://evil.example"}}
	other := openPage(t, ts)
	if _, _, err := websocket.DefaultDialer.Dial(wsURL+other, header); err == nil {
		t.Error("cross-origin upgrade accepted")
	}
}

func TestDisconnectClosesSession(t *testing.T) {
	srv, ts := newTestServer(t, testConfig())
	id := openPage(t, ts)
	sess, _ := srv.Session(id)
	conn := dial(t, ts, id)
	conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	conn.Close()

	deadline := time.Now().Add(5 * time.Second)
	for srv.SessionCount() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("session not removed after disconnect")
		}
		time.Sleep(10 * time.Millisecond)
	}
	if _, err := sess.Handle(context.Background(), Message{Type: "click"}); !errors.Is(err, ErrSessionClosed) {
		t.Errorf("Handle() after close error = %v, want ErrSessionClosed", err)
	}
}

func TestSweepRemovesUnattachedSessions(t *testing.T) {
	cfg := testConfig()
	cfg.SessionTTL = time.Minute
	srv, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer srv.Close()
	ctx := context.Background()

	stale, _ := srv.NewSession(ctx)
	attached, _ := srv.NewSession(ctx)
	if err := attached.attach(); err != nil {
		t.Fatalf("attach() error = %v", err)
	}

	if n := srv.Sweep(time.Now()); n != 0 {
		t.Errorf("fresh sweep removed %d", n)
	}
	if n := srv.Sweep(time.Now().Add(2 * time.Minute)); n != 1 {
		t.Errorf("sweep removed %d, want 1", n)
	}
	if _, err := srv.Session(stale.ID()); !errors.Is(err, ErrUnknownSession) {
		t.Errorf("stale session still registered: %v", err)
	}
	if _, err := srv.Session(attached.ID()); err != nil {
		t.Errorf("attached session swept: %v", err)
	}
}

func TestMaxSessions(t *testing.T) {
	cfg := testConfig()
	cfg.MaxSessions = 1
	_, ts := newTestServer(t, cfg)
	openPage(t, ts)
	if code, _ := get(t, ts.URL+"/"); code != http.StatusServiceUnavailable {
		t.Errorf("GET / over limit = %d, want 503", code)
	}
}

func TestSourceErrorFailsPage(t *testing.T) {
	cfg := testConfig()
	cfg.Source = grid.SourceFunc(func(context.Context) ([]grid.Item, error) {
		return nil, errors.New("db down")
	})
	srv, ts := newTestServer(t, cfg)
	if code, _ := get(t, ts.URL+"/"); code != http.StatusInternalServerError {
		t.Errorf("GET / = %d, want 500", code)
	}
	if srv.SessionCount() != 0 {
		t.Errorf("failed session registered")
	}
}

func TestHandleResizeAndHooks(t *testing.T) {
	cfg := testConfig()
	var resized []grid.ColumnResize
	cfg.Grid.Hooks.OnColumnResize = func(r grid.ColumnResize) { resized = append(resized, r) }
	srv, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer srv.Close()

	sess, err := srv.NewSession(context.Background())
	if err != nil {
		t.Fatalf("NewSession() error = %v", err)
	}
	ops, err := sess.Handle(context.Background(), Message{Type: MsgResize, Column: 0, Width: 180})
	if err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	if len(ops) != 1 || ops[0].Op != OpHeader || !strings.Contains(ops[0].HTML, "width: 180px") {
		t.Errorf("ops = %+v", ops)
	}
	if len(resized) != 1 || resized[0].Width != 180 {
		t.Errorf("user hook calls = %+v", resized)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	_, ts := newTestServer(t, testConfig())
	openPage(t, ts)
	code, body := get(t, ts.URL+"/metrics")
	if code != http.StatusOK {
		t.Fatalf("GET /metrics = %d", code)
	}
	for _, want := range []string{"vgrid_live_requests_total", "vgrid_live_active_sessions 1", "vgrid_grid_rows_materialized_total"} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics missing %q", want)
		}
	}
}

func TestNewRequiresColumns(t *testing.T) {
	if _, err := New(Config{}); !errors.Is(err, grid.ErrNoColumns) {
		t.Errorf("New() error = %v, want ErrNoColumns", err)
	}
}

func TestSameOriginCheck(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "http://grid.local/ws", nil)
	if !SameOriginCheck(r) {
		t.Error("missing origin rejected")
	}
	r.Header.Set("Origin", "http://grid.local")
	if !SameOriginCheck(r) {
		t.Error("same origin rejected")
	}
	r.Header.Set("Origin", "http://other.local")
	if SameOriginCheck(r) {
		t.Error("cross origin accepted")
	}
}
