package render

import (
	"bytes"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/vango-dev/vgrid/pkg/vdom"
)

func testPage() PageData {
	return PageData{
		Title:       "Tasks <1>",
		StyleSheets: []string{"/static/grid.css"},
		Styles:      []string{"td{padding:0}"},
		Body:        vdom.Main(vdom.Table()),
		Scripts:     []ScriptTag{{Inline: "boot()"}, {Src: "/app.js", Defer: true}},
	}
}

func TestRenderPage(t *testing.T) {
	var buf bytes.Buffer
	if err := New(Config{}).RenderPage(&buf, testPage()); err != nil {
		t.Fatalf("RenderPage() error = %v", err)
	}
	got := buf.String()
	for _, want := range []string{
		"<!DOCTYPE html>\n<html lang=\"en\">",
		`<meta charset="utf-8">`,
		"<title>Tasks &lt;1&gt;</title>",
		`<link href="/static/grid.css" rel="stylesheet">`,
		"<style>td{padding:0}</style>",
		"<body>\n<main><table></table></main>",
		"<script>boot()</script>",
		`<script defer src="/app.js"></script>`,
		"</body>\n</html>\n",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("page missing %q\n%s", want, got)
		}
	}
}

func TestStreamingRendererFlushes(t *testing.T) {
	rec := httptest.NewRecorder()
	s := NewStreamingRenderer(rec, Config{})
	page := testPage()
	page.Lang = "fr"
	if err := s.RenderPage(page); err != nil {
		t.Fatalf("RenderPage() error = %v", err)
	}
	if !rec.Flushed {
		t.Error("response not flushed")
	}
	if !strings.Contains(rec.Body.String(), `<html lang="fr">`) {
		t.Errorf("lang not rendered: %s", rec.Body.String())
	}
}
