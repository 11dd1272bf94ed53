package htmldoc

import "testing"

const samplePage = `<!DOCTYPE html>
<html>
<body>
  <div id="listing" class="products wide">
    <a class="product featured" href="/p/1">First</a>
    <a class="product" href="/p/2">Second</a>
    <a class="other" href="/x">Ignore</a>
    <span class="product">Not a link</span>
  </div>
  <div class="footer">
    <a href="/about">About</a>
  </div>
</body>
</html>`

func TestFindAll_ByTagAndClass(t *testing.T) {
	doc, err := Parse(samplePage)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	links := doc.FindAll("a", map[string]interface{}{"class": "product"})
	if len(links) != 2 {
		t.Fatalf("expected 2 product links, got %d", len(links))
	}
	if links[0].Text() != "First" || links[1].Text() != "Second" {
		t.Errorf("unexpected link texts: %q, %q", links[0].Text(), links[1].Text())
	}

	href, ok := links[0].Attr("href")
	if !ok || href != "/p/1" {
		t.Errorf("expected href /p/1, got %q (present=%t)", href, ok)
	}
	if links[0].Name() != "a" {
		t.Errorf("expected tag name a, got %q", links[0].Name())
	}
}

func TestFindAll_ClassMatchedByToken(t *testing.T) {
	doc, err := Parse(samplePage)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	// class="product featured" must match the single token "product".
	featured := doc.FindAll("a", map[string]interface{}{"class": "featured"})
	if len(featured) != 1 {
		t.Fatalf("expected 1 featured link, got %d", len(featured))
	}

	// But not a token that is merely a prefix.
	none := doc.FindAll("a", map[string]interface{}{"class": "prod"})
	if len(none) != 0 {
		t.Errorf("partial class token must not match, got %d elements", len(none))
	}
}

func TestFindAll_ExactAttr(t *testing.T) {
	doc, err := Parse(samplePage)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	divs := doc.FindAll("div", map[string]interface{}{"id": "listing"})
	if len(divs) != 1 {
		t.Fatalf("expected 1 div, got %d", len(divs))
	}

	if got := doc.FindAll("div", map[string]interface{}{"id": "list"}); len(got) != 0 {
		t.Errorf("partial id must not match, got %d", len(got))
	}
}

func TestFindAll_AnyTagWithAttrs(t *testing.T) {
	doc, err := Parse(samplePage)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	// Empty name: any element carrying class "product".
	all := doc.FindAll("", map[string]interface{}{"class": "product"})
	if len(all) != 3 {
		t.Fatalf("expected 3 product elements (2 links + 1 span), got %d", len(all))
	}
}

func TestFindAll_MissingAttrDoesNotMatch(t *testing.T) {
	doc, err := Parse(samplePage)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got := doc.FindAll("a", map[string]interface{}{"rel": "nofollow"}); len(got) != 0 {
		t.Errorf("elements without the attribute must not match, got %d", len(got))
	}
}

func TestFindAll_NestedMapValueIgnoredInMatching(t *testing.T) {
	doc, err := Parse(samplePage)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	links := doc.FindAll("a", map[string]interface{}{
		"class": "product",
		"extra": map[string]interface{}{"anything": "here"},
	})
	if len(links) != 2 {
		t.Errorf("nested map matchers must be ignored at element level, got %d", len(links))
	}
}

func TestElement_AttrsAndHTML(t *testing.T) {
	doc, err := Parse(samplePage)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	divs := doc.FindAll("div", map[string]interface{}{"id": "listing"})
	if len(divs) != 1 {
		t.Fatalf("expected 1 div, got %d", len(divs))
	}
	attrs := divs[0].Attrs()
	if attrs["id"] != "listing" || attrs["class"] != "products wide" {
		t.Errorf("unexpected attrs: %v", attrs)
	}
	if divs[0].HTML() == "" {
		t.Error("expected non-empty outer HTML")
	}
}

func TestParse_MalformedMarkupStillQueryable(t *testing.T) {
	doc, err := Parse("<div class='a'><p>unclosed<div class='a'>second")
	if err != nil {
		t.Fatalf("lenient parser must not fail: %v", err)
	}
	if got := doc.FindAll("div", map[string]interface{}{"class": "a"}); len(got) != 2 {
		t.Errorf("expected 2 divs from malformed markup, got %d", len(got))
	}
}
