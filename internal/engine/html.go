package engine

import (
	"strings"

	"golang.org/x/net/html"
)

// Text inside these elements is never annotated.
var skipElements = map[string]bool{
	"head":     true,
	"title":    true,
	"script":   true,
	"style":    true,
	"textarea": true,
	"ruby":     true,
	"rt":       true,
	"rp":       true,
}

// rawTextElements switch the tokenizer into raw text mode on a start tag.
var rawTextElements = map[string]bool{
	"iframe": true, "noembed": true, "noframes": true, "noscript": true,
	"plaintext": true, "script": true, "style": true, "textarea": true,
	"title": true, "xmp": true,
}

// rewriteTextNodes passes every annotatable text node of doc through fn and
// returns the document with those nodes replaced. All other bytes are copied
// verbatim.
func rewriteTextNodes(doc string, fn func(string) string) string {
	z := html.NewTokenizer(strings.NewReader(doc))
	var out strings.Builder
	out.Grow(len(doc) + len(doc)/4)
	var open []string // skipped elements currently open, innermost last

	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			// Tokenizer only fails on EOF for an in-memory reader.
			break
		}
		// TagName lowercases the buffer in place, so copy first.
		raw := string(z.Raw())

		switch tt {
		case html.TextToken:
			if len(open) == 0 {
				out.WriteString(fn(raw))
				continue
			}
		case html.StartTagToken:
			name, _ := z.TagName()
			if skipElements[string(name)] {
				open = append(open, string(name))
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			if skipElements[string(name)] {
				open = closeElement(open, string(name))
			}
		case html.SelfClosingTagToken:
			// XHTML allows <script/>; without this the rest of the
			// document would be read as script text.
			name, _ := z.TagName()
			if rawTextElements[string(name)] {
				z.NextIsNotRawText()
			}
		}
		out.WriteString(raw)
	}
	return out.String()
}

// closeElement pops open back to and including the innermost element named
// name. End tags may be omitted for rt and rp, so </ruby> also closes them.
// An end tag with no matching open element is ignored.
func closeElement(open []string, name string) []string {
	for i := len(open) - 1; i >= 0; i-- {
		if open[i] == name {
			return open[:i]
		}
	}
	return open
}
