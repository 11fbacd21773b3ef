package graph

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/matzehuels/waterwheel/pkg/hal"
)

const fixture = `{
  "_links": {"self": {"href": "http://foo.dev/node/1"}},
  "_embedded": {
    "http://foo.dev/rest/relation/node/article/uid": [{"href": "http://foo.dev/user/1"}],
    "http://foo.dev/rest/relation/node/article/field_tags": [
      {"href": "http://foo.dev/taxonomy/term/1"},
      {"href": "http://foo.dev/taxonomy/term/2"}
    ]
  }
}`

func parse(t *testing.T) *hal.Document {
	t.Helper()
	doc, err := hal.Parse([]byte(fixture))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	return doc
}

func TestToDOT_Basic(t *testing.T) {
	dot, err := ToDOT(parse(t), Options{})
	if err != nil {
		t.Fatalf("ToDOT() error = %v", err)
	}

	for _, want := range []string{
		"digraph G",
		`label="http://foo.dev/node/1"`,
		`label="field_tags"`,
		`label="http://foo.dev/taxonomy/term/2?_format=hal_json"`,
		`"self" -> "rel:http://foo.dev/rest/relation/node/article/uid"`,
		`"rel:http://foo.dev/rest/relation/node/article/field_tags" -> "ref:http://foo.dev/rest/relation/node/article/field_tags#1"`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("ToDOT() output missing %s", want)
		}
	}
}

func TestToDOT_Fields(t *testing.T) {
	dot, err := ToDOT(parse(t), Options{Fields: []string{"uid"}})
	if err != nil {
		t.Fatalf("ToDOT() error = %v", err)
	}
	if strings.Contains(dot, "field_tags") {
		t.Error("ToDOT() output includes unselected relation")
	}
}

func TestToDOT_FullNames(t *testing.T) {
	dot, err := ToDOT(parse(t), Options{FullNames: true})
	if err != nil {
		t.Fatalf("ToDOT() error = %v", err)
	}
	if !strings.Contains(dot, `label="http://foo.dev/rest/relation/node/article/uid"`) {
		t.Error("ToDOT() output missing full relation name")
	}
}

func TestToDOT_NotHAL(t *testing.T) {
	_, err := ToDOT(nil, Options{})
	if !errors.Is(err, hal.ErrNotHAL) {
		t.Errorf("ToDOT(nil) error = %v, want ErrNotHAL", err)
	}
}

func TestRenderSVG(t *testing.T) {
	dot, err := ToDOT(parse(t), Options{})
	if err != nil {
		t.Fatalf("ToDOT() error = %v", err)
	}

	svg, err := RenderSVG(context.Background(), dot)
	if err != nil {
		t.Fatalf("RenderSVG() error = %v", err)
	}
	if !strings.Contains(string(svg), "<svg") {
		t.Error("RenderSVG() output is not SVG")
	}
}
