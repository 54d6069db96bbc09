// Package render turns the offer document into gomponents node trees. Every
// function here is pure: same input, same markup, no I/O.
package render

import (
	"bytes"
	"net/url"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	gmhtml "github.com/yuin/goldmark/renderer/html"
	g "maragu.dev/gomponents"
)

var (
	contentPolicy = newContentPolicy()
	markdown      = goldmark.New(goldmark.WithRendererOptions(gmhtml.WithUnsafe()))
)

func newContentPolicy() *bluemonday.Policy {
	policy := bluemonday.UGCPolicy()
	policy.AllowAttrs("class").OnElements("p", "span", "strong", "em", "b", "i", "small", "br")
	policy.AllowAttrs("loading").OnElements("img")
	policy.RequireNoFollowOnLinks(true)
	policy.AddTargetBlankToFullyQualifiedLinks(true)
	return policy
}

// richText renders author-supplied inline markup after sanitising it.
func richText(raw string) g.Node {
	if raw == "" {
		return nil
	}
	return g.Raw(contentPolicy.Sanitize(raw))
}

// markdownText converts markdown to HTML and sanitises the result. Conversion
// failures fall back to the escaped source.
func markdownText(raw string) g.Node {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(raw), &buf); err != nil {
		return g.Text(raw)
	}
	return g.Raw(strings.TrimSpace(contentPolicy.Sanitize(buf.String())))
}

// safeURL drops script URLs from document-supplied links.
func safeURL(raw string) string {
	trimmed := strings.TrimSpace(raw)
	lower := strings.ToLower(trimmed)
	for _, scheme := range []string{"javascript:", "vbscript:", "data:text/html"} {
		if strings.HasPrefix(lower, scheme) {
			return "#"
		}
	}
	return trimmed
}

// encodeURIComponent escapes s the way browsers do for query components:
// spaces become %20 and the marks !'()* stay literal.
func encodeURIComponent(s string) string {
	escaped := url.QueryEscape(s)
	return strings.NewReplacer(
		"+", "%20",
		"%21", "!",
		"%27", "'",
		"%28", "(",
		"%29", ")",
		"%2A", "*",
	).Replace(escaped)
}

// group drops nil nodes so the result is always safe to render.
func group(nodes ...g.Node) g.Group {
	out := make(g.Group, 0, len(nodes))
	for _, n := range nodes {
		if n != nil {
			out = append(out, n)
		}
	}
	return out
}
