package render

import (
	"fmt"
	"io"

	"github.com/vango-dev/vgrid/pkg/vdom"
)

// PageData describes a complete HTML document around one body tree.
type PageData struct {
	// Body is the page content.
	Body *vdom.VNode

	// Title is the document title.
	Title string

	// Lang is the html lang attribute. Defaults to "en".
	Lang string

	// StyleSheets are linked in the head.
	StyleSheets []string

	// Styles are inlined in the head as <style> blocks.
	Styles []string

	// Scripts are appended at the end of the body.
	Scripts []ScriptTag
}

// ScriptTag is a script element, external or inline.
type ScriptTag struct {
	Src    string
	Inline string
	Defer  bool
	Module bool
}

// RenderPage renders a complete HTML document to w.
func (r *Renderer) RenderPage(w io.Writer, page PageData) error {
	if err := r.renderOpen(w, page); err != nil {
		return err
	}
	if err := r.renderHead(w, page); err != nil {
		return err
	}
	if err := r.renderBody(w, page); err != nil {
		return err
	}
	return r.renderClose(w)
}

func (r *Renderer) renderOpen(w io.Writer, page PageData) error {
	lang := page.Lang
	if lang == "" {
		lang = "en"
	}
	_, err := fmt.Fprintf(w, "<!DOCTYPE html>\n<html lang=\"%s\">\n", escapeAttr(lang))
	return err
}

func (r *Renderer) renderHead(w io.Writer, page PageData) error {
	head := vdom.Head(
		vdom.Meta(vdom.Attr{Key: "charset", Value: "utf-8"}),
		vdom.Meta(vdom.Attr{Key: "name", Value: "viewport"}, vdom.Attr{Key: "content", Value: "width=device-width, initial-scale=1"}),
	)
	if page.Title != "" {
		_ = head.AppendChild(vdom.Title(page.Title))
	}
	for _, href := range page.StyleSheets {
		_ = head.AppendChild(vdom.Link(vdom.Rel("stylesheet"), vdom.Href(href)))
	}
	for _, css := range page.Styles {
		_ = head.AppendChild(vdom.Style(vdom.Raw(css)))
	}
	if err := r.RenderToWriter(w, head); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}

func (r *Renderer) renderBody(w io.Writer, page PageData) error {
	if _, err := io.WriteString(w, "<body>\n"); err != nil {
		return err
	}
	if err := r.RenderToWriter(w, page.Body); err != nil {
		return err
	}
	for _, s := range page.Scripts {
		if err := r.RenderToWriter(w, scriptNode(s)); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) renderClose(w io.Writer) error {
	_, err := io.WriteString(w, "\n</body>\n</html>\n")
	return err
}

func scriptNode(s ScriptTag) *vdom.VNode {
	n := vdom.Script()
	if s.Src != "" {
		n.SetAttr("src", s.Src)
	}
	if s.Module {
		n.SetAttr("type", "module")
	}
	if s.Defer {
		n.SetAttr("defer", true)
	}
	if s.Inline != "" {
		_ = n.AppendChild(vdom.Raw(s.Inline))
	}
	return n
}
