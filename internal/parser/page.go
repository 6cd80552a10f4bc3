package parser

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/IshaanNene/shopcrawl/internal/types"
)

// Page is one parsed HTML document shared by every extractor. The goquery
// document and the XPath queries run over the same node tree.
type Page struct {
	// URL is the address relative links resolve against.
	URL string

	Doc *goquery.Document

	ld       map[string]any
	ldErr    error
	ldParsed bool
}

// NewPage parses body into a Page.
func NewPage(pageURL string, body []byte) (*Page, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, &types.ParseError{URL: pageURL, Err: err}
	}
	return &Page{URL: pageURL, Doc: doc}, nil
}

// PageFromResponse wraps an already fetched response.
func PageFromResponse(resp *types.Response) (*Page, error) {
	doc, err := resp.Document()
	if err != nil {
		return nil, err
	}
	return &Page{URL: resp.BaseURL(), Doc: doc}, nil
}

// Root returns the document node.
func (p *Page) Root() *html.Node {
	return p.Doc.Get(0)
}

// StrippedText concatenates the trimmed text of every text node under the
// selection's first node, without separators.
func StrippedText(sel *goquery.Selection) string {
	if sel.Length() == 0 {
		return ""
	}
	return nodeText(sel.Get(0), "", true)
}

// RawText concatenates the text nodes under the selection's first node as-is.
func RawText(sel *goquery.Selection) string {
	if sel.Length() == 0 {
		return ""
	}
	return nodeText(sel.Get(0), "", false)
}

// VisibleText returns the page text with text nodes trimmed and joined by a
// single space. Script and style contents are skipped.
func VisibleText(doc *goquery.Document) string {
	return nodeText(doc.Get(0), " ", true)
}

func nodeText(n *html.Node, sep string, strip bool) string {
	var parts []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			s := n.Data
			if strip {
				s = strings.TrimSpace(s)
				if s == "" {
					return
				}
			}
			parts = append(parts, s)
			return
		case html.CommentNode:
			return
		case html.ElementNode:
			if n.Data == "script" || n.Data == "style" {
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(parts, sep)
}
