// Package preview prepares rendered templates for display outside the
// composer. The document keeps its head styles and classes so it renders as
// exported; it is served under a sandboxing CSP and shown in a sandboxed
// frame, and the sanitiser removes scripts and event handlers on top of that.
package preview

import (
	"net/http"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

const contentSecurityPolicy = "sandbox; default-src 'none'; img-src * data:; style-src 'unsafe-inline'"

var (
	policyOnce sync.Once
	policy     *bluemonday.Policy
)

// Sanitize strips scripts, event handlers and unsafe URLs while keeping the
// document structure, style blocks, classes and table attributes email
// markup relies on. The doctype is dropped.
func Sanitize(html string) string {
	trimmed := strings.TrimSpace(html)
	if trimmed == "" {
		return ""
	}
	return sanitizer().Sanitize(trimmed)
}

func sanitizer() *bluemonday.Policy {
	policyOnce.Do(func() {
		p := bluemonday.UGCPolicy()
		// style blocks need AllowUnsafe; script stays disallowed.
		p.AllowUnsafe(true)
		p.AllowElements("html", "head", "body", "title", "style", "center", "font", "span", "div", "section")
		p.AllowStyling()
		p.AllowAttrs("style").Globally()
		p.AllowAttrs("lang", "dir", "xmlns").OnElements("html")
		p.AllowAttrs("charset", "name", "content").OnElements("meta")
		p.AllowAttrs("type", "media").OnElements("style")
		p.AllowAttrs("align", "valign", "bgcolor", "width", "height", "background").
			OnElements("body", "table", "tr", "td", "th", "tbody", "thead", "img", "div", "p", "center")
		p.AllowAttrs("cellpadding", "cellspacing", "border", "role").OnElements("table")
		p.AllowAttrs("color", "face", "size").OnElements("font")
		p.AllowAttrs("target").OnElements("a")
		p.AllowDataURIImages()
		policy = p
	})
	return policy
}

// SetSandboxHeaders marks a response as an isolated preview document.
func SetSandboxHeaders(h http.Header) {
	h.Set("Content-Security-Policy", contentSecurityPolicy)
	h.Set("X-Content-Type-Options", "nosniff")
	h.Set("Content-Type", "text/html; charset=utf-8")
}
