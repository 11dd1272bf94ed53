// Package htmldoc wraps goquery behind the small query surface the
// harvesting pipeline needs: parse raw markup, then find elements by tag
// name and attribute matchers.
package htmldoc

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Document is a parsed HTML page.
type Document struct {
	doc *goquery.Document
}

// Element is a handle to one matched element in a document.
type Element struct {
	sel *goquery.Selection
}

// Parse builds a queryable document from raw markup. The html parser is
// lenient, so malformed pages still produce a tree rather than an error.
func Parse(raw string) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("htmldoc: parse: %w", err)
	}
	return &Document{doc: doc}, nil
}

// FindAll returns every element matching the given tag name and attribute
// matchers. An empty name matches any tag. The class attribute is matched
// by token (an element with class="card wide" matches "card"); every other
// attribute is matched by exact value. Nested map values carry no
// element-level meaning and are ignored here; they exist for action
// identity.
func (d *Document) FindAll(name string, attrs map[string]interface{}) []*Element {
	selector := name
	if selector == "" {
		selector = "*"
	}

	var out []*Element
	d.doc.Find(selector).Each(func(_ int, sel *goquery.Selection) {
		if matchesAttrs(sel, attrs) {
			out = append(out, &Element{sel: sel})
		}
	})
	return out
}

// Text returns the element's combined text content.
func (e *Element) Text() string {
	return e.sel.Text()
}

// Attr returns the value of the named attribute and whether it is present.
func (e *Element) Attr(name string) (string, bool) {
	return e.sel.Attr(name)
}

// Attrs returns all attributes of the element.
func (e *Element) Attrs() map[string]string {
	node := e.Node()
	if node == nil {
		return nil
	}
	out := make(map[string]string, len(node.Attr))
	for _, attr := range node.Attr {
		out[attr.Key] = attr.Val
	}
	return out
}

// Name returns the element's tag name.
func (e *Element) Name() string {
	node := e.Node()
	if node == nil {
		return ""
	}
	return node.Data
}

// HTML returns the element's outer HTML.
func (e *Element) HTML() string {
	markup, err := goquery.OuterHtml(e.sel)
	if err != nil {
		return ""
	}
	return markup
}

// Node returns the underlying parse-tree node, usable as a stable identity
// for deduplication across overlapping queries.
func (e *Element) Node() *html.Node {
	if len(e.sel.Nodes) == 0 {
		return nil
	}
	node := e.sel.Nodes[0]
	if node.Type != html.ElementNode {
		return nil
	}
	return node
}

func matchesAttrs(sel *goquery.Selection, attrs map[string]interface{}) bool {
	for key, want := range attrs {
		if _, nested := want.(map[string]interface{}); nested {
			continue
		}
		got, ok := sel.Attr(key)
		if !ok {
			return false
		}
		wantStr := scalarString(want)
		if key == "class" {
			if !hasClassToken(got, wantStr) {
				return false
			}
		} else if got != wantStr {
			return false
		}
	}
	return true
}

func hasClassToken(classAttr, token string) bool {
	for _, field := range strings.Fields(classAttr) {
		if field == token {
			return true
		}
	}
	return false
}

func scalarString(v interface{}) string {
	switch x := v.(type) {
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	default:
		return fmt.Sprint(x)
	}
}
