package columns

import (
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
	"github.com/vango-dev/vgrid/pkg/grid"
	"github.com/vango-dev/vgrid/pkg/vdom"
)

var (
	htmlPolicyOnce sync.Once
	htmlPolicy     *bluemonday.Policy
)

// HTML renders a field as markup after sanitizing it. Only inline
// formatting and links survive.
func HTML(field string) grid.TemplateFunc {
	return func(row *grid.RowContext) *vdom.VNode {
		return vdom.Span(vdom.Class("vg-html"), vdom.Raw(SanitizeHTML(row.String(field))))
	}
}

// SanitizeHTML strips everything but inline formatting from raw.
func SanitizeHTML(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	return strings.TrimSpace(htmlSanitizer().Sanitize(trimmed))
}

func htmlSanitizer() *bluemonday.Policy {
	htmlPolicyOnce.Do(func() {
		policy := bluemonday.StrictPolicy()
		policy.AllowElements("b", "strong", "i", "em", "u", "s", "code", "mark", "small", "sub", "sup", "br", "span")
		policy.AllowAttrs("class").OnElements("span", "code", "mark")
		policy.AllowAttrs("href", "title").OnElements("a")
		policy.AllowStandardURLs()
		policy.RequireNoFollowOnLinks(true)
		policy.AddTargetBlankToFullyQualifiedLinks(true)
		htmlPolicy = policy
	})
	return htmlPolicy
}
