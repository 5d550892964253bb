package render

var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"source": true, "track": true, "wbr": true,
}

func isVoidElement(tag string) bool { return voidElements[tag] }

// Inline elements stay on one line in pretty output.
var inlineElements = map[string]bool{
	"a": true, "abbr": true, "b": true, "br": true, "code": true, "em": true,
	"i": true, "kbd": true, "label": true, "mark": true, "small": true,
	"span": true, "strong": true, "sub": true, "sup": true, "time": true,
	"button": true, "th": true, "td": true,
}

func isInlineElement(tag string) bool { return inlineElements[tag] }

// Boolean attributes render as a bare name when true and are omitted when
// false.
var booleanAttrs = map[string]bool{
	"async": true, "autofocus": true, "checked": true, "defer": true,
	"disabled": true, "hidden": true, "multiple": true, "open": true,
	"readonly": true, "required": true, "selected": true,
}

func isBooleanAttr(name string) bool { return booleanAttrs[name] }
