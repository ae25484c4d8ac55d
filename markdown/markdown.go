// Package markdown renders post bodies to sanitized HTML, strips the
// table of contents block and derives plain-text abstracts.
package markdown

import (
	"bytes"
	"context"
	"html"
	"io"
	"regexp"
	"strings"
	"unicode"

	"github.com/a-h/templ"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/util"
)

const (
	// DefaultAbstractLength is the abstract cut target, in runes.
	DefaultAbstractLength = 500
	// Ellipsis marks a truncated abstract.
	Ellipsis = "..."

	// TOCAnchor and IntroAnchor bound the region RenderWithoutTOC removes.
	TOCAnchor   = "table-of-contents"
	IntroAnchor = "introduction"
)

var (
	reTag       = regexp.MustCompile(`<[^>]*>`)
	reTOCHeader = regexp.MustCompile(`<h[1-6][^>]*\sid="` + TOCAnchor + `"[^>]*>`)
	reIntro     = regexp.MustCompile(`<h[1-6][^>]*\sid="` + IntroAnchor + `"[^>]*>`)
)

// engine is shared by all callers; goldmark conversions hold no state
// between calls. Raw HTML is left out of the output (no html.WithUnsafe).
var engine = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithParserOptions(
		parser.WithAttribute(),
		parser.WithASTTransformers(util.Prioritized(tocTransformer{}, 100)),
	),
)

// Render converts md to HTML. Output is trimmed, so "# Wololo" renders to
// "<h1>Wololo</h1>".
func Render(md string) string {
	var buf bytes.Buffer
	if err := engine.Convert([]byte(md), &buf); err != nil {
		// goldmark only fails on writer errors, which bytes.Buffer never returns
		return ""
	}
	return strings.TrimSpace(buf.String())
}

// RenderWithoutTOC renders md and removes everything from the
// table-of-contents heading up to the introduction heading. If either
// anchor is missing the HTML is returned unchanged.
func RenderWithoutTOC(md string) string {
	return StripTOC(Render(md))
}

// StripTOC removes the table of contents region from rendered HTML.
func StripTOC(s string) string {
	start := reTOCHeader.FindStringIndex(s)
	if start == nil {
		return s
	}
	end := reIntro.FindStringIndex(s[start[1]:])
	if end == nil {
		return s
	}
	return strings.TrimSpace(s[:start[0]] + s[start[1]+end[0]:])
}

// Abstract returns a plain-text preview of md: rendered without the table
// of contents, tags cut out between '<' and '>', then truncated at the first
// whitespace at or after target runes with Ellipsis appended. Text without
// such whitespace is returned whole.
func Abstract(md string, target int) string {
	text := reTag.ReplaceAllString(RenderWithoutTOC(md), "")
	text = strings.TrimSpace(html.UnescapeString(text))
	return Truncate(text, target)
}

// Truncate cuts text at the first whitespace rune at index >= target.
func Truncate(text string, target int) string {
	if target < 0 {
		target = 0
	}
	runes := []rune(text)
	if len(runes) <= target {
		return text
	}
	for i := target; i < len(runes); i++ {
		if unicode.IsSpace(runes[i]) {
			return string(runes[:i]) + Ellipsis
		}
	}
	return text
}

// Markdown returns a templ.Component that renders md as HTML.
func Markdown(md string) templ.Component {
	return rawComponent(Render(md))
}

// MarkdownWithoutTOC is Markdown with the table of contents removed.
func MarkdownWithoutTOC(md string) templ.Component {
	return rawComponent(RenderWithoutTOC(md))
}

func rawComponent(s string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, s)
		return err
	})
}
