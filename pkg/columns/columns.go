package columns

import (
	"fmt"
	"strconv"

	"github.com/vango-dev/vgrid/pkg/grid"
	"github.com/vango-dev/vgrid/pkg/vdom"
)

// Text renders a field as escaped text.
func Text(field string) grid.TemplateFunc {
	return func(row *grid.RowContext) *vdom.VNode {
		return vdom.Span(vdom.Class("vg-text"), row.String(field))
	}
}

// Number renders a numeric field with the given precision. Non-numeric
// values render as text; missing values render empty.
func Number(field string, precision int) grid.TemplateFunc {
	return func(row *grid.RowContext) *vdom.VNode {
		return vdom.Span(vdom.Class("vg-number"), formatNumber(row.Field(field), precision))
	}
}

// Index renders the 1-based row number.
func Index() grid.TemplateFunc {
	return func(row *grid.RowContext) *vdom.VNode {
		return vdom.Span(vdom.Class("vg-index"), strconv.Itoa(row.Index()+1))
	}
}

// Checkbox renders a boolean field as a checkbox. Pair it with
// ToggleActions to make it interactive.
func Checkbox(field string) grid.TemplateFunc {
	return func(row *grid.RowContext) *vdom.VNode {
		checked := row.Item().Bool(field)
		return vdom.Input(
			vdom.Type("checkbox"),
			vdom.Class("vg-toggle"),
			vdom.Checked(checked),
			vdom.AriaChecked(checked),
		)
	}
}

// ToggleActions flips a boolean field on click, or on Enter and Space.
func ToggleActions(field string) grid.Actions {
	toggle := func(e *grid.Event) {
		if err := e.Row.Set(field, !e.Item.Bool(field)); err != nil {
			return
		}
		e.PreventDefault()
	}
	return grid.Actions{
		vdom.EventClick: toggle,
		vdom.EventKeyDown: func(e *grid.Event) {
			if e.Key == "Enter" || e.Key == " " {
				toggle(e)
			}
		},
	}
}

// Link renders an anchor whose href and text come from fields. An empty
// href renders plain text.
func Link(hrefField, textField string) grid.TemplateFunc {
	return func(row *grid.RowContext) *vdom.VNode {
		text := row.String(textField)
		href := row.String(hrefField)
		if href == "" {
			return vdom.Span(vdom.Class("vg-text"), text)
		}
		return vdom.A(vdom.Href(href), vdom.Class("vg-link"), text)
	}
}

func formatNumber(v any, precision int) string {
	var f float64
	switch n := v.(type) {
	case nil:
		return ""
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case float64:
		f = n
	case float32:
		f = float64(n)
	case uint64:
		f = float64(n)
	case string:
		parsed, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return n
		}
		f = parsed
	default:
		return fmt.Sprint(v)
	}
	if precision < 0 {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return strconv.FormatFloat(f, 'f', precision, 64)
}
