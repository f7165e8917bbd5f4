// Package extract turns rendered HTML into company facts using fixed selectors,
// keyword lists and regular expressions. Every extractor is pure and returns a
// sentinel ("", "Unknown" or an empty collection) instead of failing.
package extract

import (
	"strings"
	"unicode"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Unknown is the sentinel for facts that were not found on the page.
const Unknown = "Unknown"

// Document is a parsed page with its body text cached for the regex extractors.
type Document struct {
	raw   string
	doc   *goquery.Document
	text  string
	lower string
}

// Parse builds a Document from raw HTML. It never fails: input the HTML parser
// rejects yields an empty document.
func Parse(raw string) *Document {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		doc = goquery.NewDocumentFromNode(&html.Node{Type: html.DocumentNode})
	}
	text := plainSpaces(doc.Find("body").Text())
	return &Document{
		raw:   raw,
		doc:   doc,
		text:  text,
		lower: strings.ToLower(text),
	}
}

// Find runs a CSS selector against the document.
func (d *Document) Find(selector string) *goquery.Selection {
	return d.doc.Find(selector)
}

// Text returns the text content of <body>.
func (d *Document) Text() string { return d.text }

// LowerText returns Text lower-cased.
func (d *Document) LowerText() string { return d.lower }

// HTML returns the raw input.
func (d *Document) HTML() string { return d.raw }

// Markdown converts the page to markdown for use as language-model context.
// When conversion fails the plain body text is returned.
func (d *Document) Markdown() string {
	md, err := htmltomarkdown.ConvertString(d.raw)
	if err != nil {
		return strings.TrimSpace(d.text)
	}
	return strings.TrimSpace(md)
}

func attr(s *goquery.Selection, name string) string {
	v, _ := s.Attr(name)
	return strings.TrimSpace(v)
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// plainSpaces rewrites non-ASCII whitespace (&nbsp; and the other Unicode
// space separators) to ' ', since the RE2 \s class is ASCII-only.
func plainSpaces(text string) string {
	return strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII && (unicode.IsSpace(r) || unicode.Is(unicode.Zs, r) || r == '\uFEFF') {
			return ' '
		}
		return r
	}, text)
}
