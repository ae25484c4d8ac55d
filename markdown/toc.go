package markdown

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

const tocMarker = "[TOC]"

// tocTransformer anchors the "Table of Contents" and "Introduction"
// headings and, when the document holds a [TOC] paragraph, gives every
// heading an id and replaces the marker with a list of links.
type tocTransformer struct{}

type tocEntry struct {
	level int
	id    string
	title string
}

func (tocTransformer) Transform(doc *ast.Document, reader text.Reader, pc parser.Context) {
	source := reader.Source()

	var (
		headings []*ast.Heading
		markers  []ast.Node
	)
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n := n.(type) {
		case *ast.Heading:
			headings = append(headings, n)
			return ast.WalkSkipChildren, nil
		case *ast.Paragraph:
			if strings.TrimSpace(plainText(n, source)) == tocMarker {
				markers = append(markers, n)
			}
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})

	anchorAll := len(markers) > 0
	used := make(map[string]int)
	for _, h := range headings {
		if id, ok := h.AttributeString("id"); ok {
			if b, ok := id.([]byte); ok {
				used[string(b)]++
			}
		}
	}

	var entries []tocEntry
	for _, h := range headings {
		title := strings.TrimSpace(plainText(h, source))
		id := existingID(h)
		if id == "" {
			base := headingID(title)
			if !anchorAll && base != TOCAnchor && base != IntroAnchor {
				continue
			}
			id = uniqueID(base, used)
			h.SetAttributeString("id", []byte(id))
		}
		if id != TOCAnchor {
			entries = append(entries, tocEntry{level: h.Level, id: id, title: title})
		}
	}

	for _, m := range markers {
		parent := m.Parent()
		if len(entries) == 0 {
			parent.RemoveChild(parent, m)
			continue
		}
		parent.ReplaceChild(parent, m, buildTOC(entries))
	}
}

func existingID(h *ast.Heading) string {
	v, ok := h.AttributeString("id")
	if !ok {
		return ""
	}
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return ""
}

// headingID lowercases title, turns spaces, dashes and underscores into
// '-' and drops everything else that is not a letter or digit.
func headingID(title string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(title) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			b.WriteByte('-')
		}
	}
	id := strings.Trim(b.String(), "-")
	if id == "" {
		return "section"
	}
	return id
}

func uniqueID(base string, used map[string]int) string {
	id := base
	for n := 1; used[id] > 0; n++ {
		id = base + "-" + strconv.Itoa(n)
	}
	used[id]++
	return id
}

func buildTOC(entries []tocEntry) ast.Node {
	root := newList()
	type frame struct {
		list  *ast.List
		level int
		last  *ast.ListItem
	}
	stack := []frame{{list: root, level: entries[0].level}}
	for _, e := range entries {
		for len(stack) > 1 && e.level < stack[len(stack)-1].level {
			stack = stack[:len(stack)-1]
		}
		top := len(stack) - 1
		if e.level > stack[top].level && stack[top].last != nil {
			sub := newList()
			stack[top].last.AppendChild(stack[top].last, sub)
			stack = append(stack, frame{list: sub, level: e.level})
			top++
		}

		link := ast.NewLink()
		link.Destination = []byte("#" + e.id)
		link.AppendChild(link, ast.NewString([]byte(e.title)))
		block := ast.NewTextBlock()
		block.AppendChild(block, link)
		item := ast.NewListItem(2)
		item.AppendChild(item, block)

		stack[top].list.AppendChild(stack[top].list, item)
		stack[top].last = item
	}
	return root
}

func newList() *ast.List {
	l := ast.NewList('-')
	l.IsTight = true
	return l
}

// plainText concatenates the text under n.
func plainText(n ast.Node, source []byte) string {
	var b strings.Builder
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := c.(type) {
		case *ast.Text:
			b.Write(t.Segment.Value(source))
			if t.SoftLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(t.Value)
		}
		return ast.WalkContinue, nil
	})
	return b.String()
}
