// Package extractor applies declarative actions to parsed pages.
package extractor

import (
	"golang.org/x/net/html"

	"harvest-go/pkg/action"
	"harvest-go/pkg/htmldoc"
)

// Match is one element pulled from a page by an action.
type Match struct {
	Tag   string            `json:"tag"`
	Text  string            `json:"text"`
	Attrs map[string]string `json:"attrs,omitempty"`
	HTML  string            `json:"html,omitempty"`
}

// Extract runs one action against a parsed page and returns every matching
// element. Each string term is queried as a tag name with the action's
// attribute matchers; an action with no terms matches by attributes alone.
// Elements matched by more than one term are reported once.
func Extract(doc *htmldoc.Document, act *action.Action) []Match {
	terms := act.Terms()
	attrs := act.Attrs()

	var elements []*htmldoc.Element
	if len(terms) == 0 {
		elements = doc.FindAll("", attrs)
	} else {
		seen := make(map[*html.Node]bool)
		for _, term := range terms {
			name, ok := term.(string)
			if !ok {
				// Non-string terms participate in identity but cannot name
				// an element.
				continue
			}
			for _, el := range doc.FindAll(name, attrs) {
				node := el.Node()
				if node == nil || seen[node] {
					continue
				}
				seen[node] = true
				elements = append(elements, el)
			}
		}
	}

	matches := make([]Match, 0, len(elements))
	for _, el := range elements {
		matches = append(matches, Match{
			Tag:   el.Name(),
			Text:  el.Text(),
			Attrs: el.Attrs(),
			HTML:  el.HTML(),
		})
	}
	return matches
}
