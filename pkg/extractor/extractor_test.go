package extractor

import (
	"testing"

	"harvest-go/pkg/action"
	"harvest-go/pkg/htmldoc"
)

const samplePage = `<html><body>
  <h2 class="title">Results</h2>
  <a class="item" href="/1">One</a>
  <a class="item" href="/2">Two</a>
  <div class="item">Boxed</div>
  <a class="unrelated" href="/x">Skip</a>
</body></html>`

func mustParse(t *testing.T, raw string) *htmldoc.Document {
	t.Helper()
	doc, err := htmldoc.Parse(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return doc
}

func TestExtract_SingleTerm(t *testing.T) {
	doc := mustParse(t, samplePage)
	act := action.New([]interface{}{"a"}, map[string]interface{}{"class": "item"})

	matches := Extract(doc, act)
	if len(matches) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(matches))
	}
	if matches[0].Text != "One" || matches[1].Text != "Two" {
		t.Errorf("unexpected texts: %q, %q", matches[0].Text, matches[1].Text)
	}
	if matches[0].Tag != "a" {
		t.Errorf("expected tag a, got %q", matches[0].Tag)
	}
	if matches[0].Attrs["href"] != "/1" {
		t.Errorf("expected href /1, got %q", matches[0].Attrs["href"])
	}
}

func TestExtract_MultipleTerms(t *testing.T) {
	doc := mustParse(t, samplePage)
	act := action.New([]interface{}{"a", "div"}, map[string]interface{}{"class": "item"})

	matches := Extract(doc, act)
	if len(matches) != 3 {
		t.Fatalf("expected 3 matches across both tags, got %d", len(matches))
	}
}

func TestExtract_DuplicateTermsReportedOnce(t *testing.T) {
	doc := mustParse(t, samplePage)
	act := action.New([]interface{}{"a", "a"}, map[string]interface{}{"class": "item"})

	matches := Extract(doc, act)
	if len(matches) != 2 {
		t.Errorf("expected duplicate terms to dedupe to 2 matches, got %d", len(matches))
	}
}

func TestExtract_AttrsOnly(t *testing.T) {
	doc := mustParse(t, samplePage)
	act := action.New(nil, map[string]interface{}{"class": "item"})

	matches := Extract(doc, act)
	if len(matches) != 3 {
		t.Errorf("expected 3 matches by attrs alone, got %d", len(matches))
	}
}

func TestExtract_NonStringTermSkipped(t *testing.T) {
	doc := mustParse(t, samplePage)
	act := action.New([]interface{}{42, "a"}, map[string]interface{}{"class": "item"})

	matches := Extract(doc, act)
	if len(matches) != 2 {
		t.Errorf("expected the int term to be skipped, got %d matches", len(matches))
	}
}

func TestExtract_NoMatches(t *testing.T) {
	doc := mustParse(t, samplePage)
	act := action.New([]interface{}{"table"}, nil)

	if matches := Extract(doc, act); len(matches) != 0 {
		t.Errorf("expected no matches, got %d", len(matches))
	}
}
