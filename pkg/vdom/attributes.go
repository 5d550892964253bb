package vdom

import (
	"fmt"
	"strings"
)

// attr creates an Attr with the given key and value.
func attr(key string, value any) Attr {
	return Attr{Key: key, Value: value}
}

// Identity attributes

// ID sets the id attribute.
func ID(id string) Attr { return attr("id", id) }

// Class sets the class attribute, joining multiple classes with spaces.
func Class(classes ...string) Attr { return attr("class", strings.Join(classes, " ")) }

// ClassIf returns a class attribute if condition is true.
func ClassIf(condition bool, class string) Attr {
	if condition {
		return Class(class)
	}
	return Attr{}
}

// StyleAttr sets the style attribute (named to avoid conflict with Style element).
func StyleAttr(style string) Attr { return attr("style", style) }

// Data creates a data-* attribute.
// Example: Data("id", "123") → data-id="123"
func Data(key, value string) Attr { return attr("data-"+key, value) }

// Accessibility attributes

// Role sets the role attribute.
func Role(role string) Attr { return attr("role", role) }

// AriaLabel sets the aria-label attribute.
func AriaLabel(label string) Attr { return attr("aria-label", label) }

// AriaSort sets the aria-sort attribute.
func AriaSort(direction string) Attr { return attr("aria-sort", direction) }

// AriaSelected sets the aria-selected attribute.
func AriaSelected(selected bool) Attr { return attr("aria-selected", selected) }

// AriaChecked sets the aria-checked attribute.
func AriaChecked(checked bool) Attr { return attr("aria-checked", checked) }

// TabIndex sets the tabindex attribute.
func TabIndex(index int) Attr { return attr("tabindex", index) }

// TitleAttr sets the title attribute (named to avoid conflict with Title element).
func TitleAttr(title string) Attr { return attr("title", title) }

// Link and form attributes

// Href sets the href attribute.
func Href(url string) Attr { return attr("href", url) }

// Target sets the target attribute.
func Target(target string) Attr { return attr("target", target) }

// Rel sets the rel attribute.
func Rel(rel string) Attr { return attr("rel", rel) }

// Type sets the type attribute.
func Type(t string) Attr { return attr("type", t) }

// Value sets the value attribute.
func Value(value string) Attr { return attr("value", value) }

// Checked sets the checked attribute.
func Checked(checked bool) Attr { return attr("checked", checked) }

// Disabled sets the disabled attribute.
func Disabled() Attr { return attr("disabled", true) }

// Table attributes

// Scope sets the scope attribute.
func Scope(scope string) Attr { return attr("scope", scope) }

// Colspan sets the colspan attribute.
func Colspan(n int) Attr { return attr("colspan", n) }

// Width sets the width attribute.
func Width(w int) Attr { return attr("width", w) }

// Key creates a key attribute for reconciliation.
func Key(key any) Attr {
	return attr("key", fmt.Sprintf("%v", key))
}

// Attribute access on live nodes

// GetAttr returns the string form of attribute key, and whether it is set.
func (v *VNode) GetAttr(key string) (string, bool) {
	if v == nil || v.Props == nil {
		return "", false
	}
	val, ok := v.Props[key]
	if !ok || val == nil {
		return "", false
	}
	if s, ok := val.(string); ok {
		return s, true
	}
	return fmt.Sprintf("%v", val), true
}

// SetAttr sets attribute key on an element.
func (v *VNode) SetAttr(key string, value any) {
	if v == nil || v.Kind != KindElement {
		return
	}
	if v.Props == nil {
		v.Props = make(Props)
	}
	v.Props[key] = value
}

// RemoveAttr deletes attribute key.
func (v *VNode) RemoveAttr(key string) {
	if v == nil || v.Props == nil {
		return
	}
	delete(v.Props, key)
}

// Classes returns the element's class list.
func (v *VNode) Classes() []string {
	s, _ := v.GetAttr("class")
	return strings.Fields(s)
}

// HasClass reports whether the element's class list contains name.
func (v *VNode) HasClass(name string) bool {
	for _, c := range v.Classes() {
		if c == name {
			return true
		}
	}
	return false
}

// ToggleClass adds or removes name from the class list.
func (v *VNode) ToggleClass(name string, on bool) {
	if v == nil || v.Kind != KindElement {
		return
	}
	classes := v.Classes()
	out := classes[:0]
	for _, c := range classes {
		if c != name {
			out = append(out, c)
		}
	}
	if on {
		out = append(out, name)
	}
	if len(out) == 0 {
		v.RemoveAttr("class")
		return
	}
	v.SetAttr("class", strings.Join(out, " "))
}

// SetStyle sets a single CSS property inside the style attribute, keeping
// the other declarations in order.
func (v *VNode) SetStyle(property, value string) {
	if v == nil || v.Kind != KindElement {
		return
	}
	current, _ := v.GetAttr("style")
	var decls []string
	replaced := false
	for _, decl := range strings.Split(current, ";") {
		decl = strings.TrimSpace(decl)
		if decl == "" {
			continue
		}
		name, _, _ := strings.Cut(decl, ":")
		if strings.TrimSpace(name) == property {
			if value != "" {
				decls = append(decls, property+": "+value)
			}
			replaced = true
			continue
		}
		decls = append(decls, decl)
	}
	if !replaced && value != "" {
		decls = append(decls, property+": "+value)
	}
	if len(decls) == 0 {
		v.RemoveAttr("style")
		return
	}
	v.SetAttr("style", strings.Join(decls, "; "))
}

// Style returns the value of a CSS property from the style attribute.
func (v *VNode) Style(property string) string {
	current, _ := v.GetAttr("style")
	for _, decl := range strings.Split(current, ";") {
		name, value, ok := strings.Cut(decl, ":")
		if ok && strings.TrimSpace(name) == property {
			return strings.TrimSpace(value)
		}
	}
	return ""
}
