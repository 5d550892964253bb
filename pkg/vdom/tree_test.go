package vdom

import (
	"errors"
	"testing"
)

func tags(nodes []*VNode) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.Tag
		if n.Kind == KindText {
			out[i] = "#" + n.Text
		}
	}
	return out
}

func TestAppendChildSetsParent(t *testing.T) {
	parent := Div()
	child := Span()
	if err := parent.AppendChild(child); err != nil {
		t.Fatalf("AppendChild() error = %v", err)
	}
	if child.Parent() != parent {
		t.Error("child parent not set")
	}

	other := P()
	_ = other.AppendChild(child)
	if len(parent.Children) != 0 {
		t.Error("child not detached from previous parent")
	}
	if child.Parent() != other {
		t.Error("child parent not moved")
	}
}

func TestAppendFragmentMovesChildren(t *testing.T) {
	tbody := Tbody(Tr(Td("0")))
	frag := Fragment(Tr(Td("1")), Tr(Td("2")))

	_ = tbody.AppendChild(frag)
	if len(tbody.Children) != 3 {
		t.Fatalf("children = %d, want 3", len(tbody.Children))
	}
	if len(frag.Children) != 0 {
		t.Error("fragment not emptied")
	}
	for i, tr := range tbody.Children {
		if tr.Parent() != tbody {
			t.Errorf("row %d parent not tbody", i)
		}
	}
	if got := tbody.TextContent(); got != "012" {
		t.Errorf("TextContent() = %q, want 012", got)
	}
}

func TestInsertBefore(t *testing.T) {
	a, b, c := Span(), Div(), P()
	parent := Div(a, c)
	if err := parent.InsertBefore(b, c); err != nil {
		t.Fatalf("InsertBefore() error = %v", err)
	}
	got := tags(parent.Children)
	if got[0] != "span" || got[1] != "div" || got[2] != "p" {
		t.Errorf("order = %v", got)
	}
	if err := parent.InsertBefore(Br(), Span()); !errors.Is(err, ErrNotChild) {
		t.Errorf("InsertBefore(non-child) error = %v, want ErrNotChild", err)
	}
	if err := b.AppendChild(parent); !errors.Is(err, ErrHierarchy) {
		t.Errorf("AppendChild(ancestor) error = %v, want ErrHierarchy", err)
	}
}

func TestReplaceChild(t *testing.T) {
	a, b, c := Tr(), Tr(), Tr()
	body := Tbody(a, b, c)
	next := Tr()

	old, err := body.ReplaceChild(next, b)
	if err != nil {
		t.Fatalf("ReplaceChild() error = %v", err)
	}
	if old != b || b.Parent() != nil {
		t.Error("old child not detached")
	}
	if body.Children[0] != a || body.Children[1] != next || body.Children[2] != c {
		t.Error("siblings moved")
	}
	if next.Parent() != body {
		t.Error("replacement parent not set")
	}
	if _, err := body.ReplaceChild(Tr(), b); !errors.Is(err, ErrNotChild) {
		t.Errorf("ReplaceChild(detached) error = %v, want ErrNotChild", err)
	}

	// Replacing with an existing sibling moves it.
	if _, err := body.ReplaceChild(c, a); err != nil {
		t.Fatalf("ReplaceChild(sibling) error = %v", err)
	}
	if len(body.Children) != 2 || body.Children[0] != c || body.Children[1] != next {
		t.Errorf("children after sibling replace = %v", tags(body.Children))
	}
}

func TestCloneDeepIsIndependent(t *testing.T) {
	orig := Tr(Class("row"), Td(Span("a")), Td("b"))
	orig.HID = "h1"
	remove := orig.AddEventListener(EventClick, func(*Event) {}, false)
	defer remove()

	c := orig.Clone(true)
	if c.Parent() != nil {
		t.Error("clone attached")
	}
	if c.HID != "" || c.ListenerCount(EventClick) != 0 {
		t.Error("clone carried HID or listeners")
	}
	if c.TextContent() != "ab" {
		t.Errorf("clone text = %q", c.TextContent())
	}
	c.SetAttr("class", "other")
	c.Children[0].Children[0].Children[0].Text = "z"
	if cls, _ := orig.GetAttr("class"); cls != "row" {
		t.Error("clone aliases props")
	}
	if orig.TextContent() != "ab" {
		t.Error("clone aliases children")
	}
	if c.Children[0].Parent() != c {
		t.Error("cloned child parent not set")
	}

	shallow := orig.Clone(false)
	if len(shallow.Children) != 0 {
		t.Error("shallow clone copied children")
	}
}

func TestReplaceChildrenAndRemove(t *testing.T) {
	a, b := Span(), Span()
	parent := Div(a, b)
	_ = parent.ReplaceChildren(P(), nil)
	if len(parent.Children) != 1 || a.Parent() != nil || b.Parent() != nil {
		t.Errorf("ReplaceChildren left %d children", len(parent.Children))
	}
	p := parent.FirstChild()
	p.Remove()
	if len(parent.Children) != 0 || p.Parent() != nil {
		t.Error("Remove did not detach")
	}
	p.Remove()
}

func TestWalkSkipsChildren(t *testing.T) {
	root := Div(Section(Span()), P())
	var seen []string
	Walk(root, func(n *VNode) bool {
		seen = append(seen, n.Tag)
		return n.Tag != "section"
	})
	want := []string{"div", "section", "p"}
	if len(seen) != len(want) {
		t.Fatalf("seen = %v, want %v", seen, want)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Errorf("seen[%d] = %q, want %q", i, seen[i], want[i])
		}
	}
}
