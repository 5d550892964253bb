package vdom

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestClassHelpers(t *testing.T) {
	n := Tr(Class("row", "odd"))
	n.ToggleClass("selected", true)
	n.ToggleClass("selected", true)
	if diff := cmp.Diff([]string{"row", "odd", "selected"}, n.Classes()); diff != "" {
		t.Errorf("classes mismatch (-want +got):\n%s", diff)
	}
	n.ToggleClass("odd", false)
	if n.HasClass("odd") {
		t.Error("odd still present")
	}
	n.ToggleClass("row", false)
	n.ToggleClass("selected", false)
	if _, ok := n.GetAttr("class"); ok {
		t.Error("empty class attribute kept")
	}
}

func TestStyleHelpers(t *testing.T) {
	n := Th(StyleAttr("color: red"))
	n.SetStyle("width", "80px")
	n.SetStyle("width", "90px")
	if got, _ := n.GetAttr("style"); got != "color: red; width: 90px" {
		t.Errorf("style = %q", got)
	}
	if n.Style("width") != "90px" {
		t.Errorf("Style(width) = %q", n.Style("width"))
	}
	n.SetStyle("color", "")
	n.SetStyle("width", "")
	if _, ok := n.GetAttr("style"); ok {
		t.Error("empty style attribute kept")
	}
}

func TestAttrs(t *testing.T) {
	n := Td(Data("index", "3"), AriaSort("ascending"), Scope("row"), Colspan(2))
	for key, want := range map[string]string{
		"data-index": "3",
		"aria-sort":  "ascending",
		"scope":      "row",
		"colspan":    "2",
	} {
		if got, ok := n.GetAttr(key); !ok || got != want {
			t.Errorf("GetAttr(%q) = %q, %v; want %q", key, got, ok, want)
		}
	}
	n.RemoveAttr("aria-sort")
	if _, ok := n.GetAttr("aria-sort"); ok {
		t.Error("RemoveAttr kept the attribute")
	}
	Text("x").SetAttr("id", "ignored")
}
