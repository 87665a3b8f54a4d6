package dom

import (
	"strings"
	"testing"
)

func TestCreateAndAppend(t *testing.T) {
	doc, err := ParseString(`<html><body><div id="error"></div></body></html>`)
	if err != nil {
		t.Fatalf("ParseString: %v", err)
	}

	errorDiv := doc.GetElementByID("error")
	if errorDiv == nil {
		t.Fatal("GetElementByID returned nil")
	}

	for i := 0; i < 3; i++ {
		img := doc.CreateElement("img")
		img.SetAttribute("src", "https://example.com/logo.png")
		if err := errorDiv.AppendChild(img); err != nil {
			t.Fatalf("AppendChild: %v", err)
		}
	}

	children := errorDiv.Children()
	if len(children) != 3 {
		t.Fatalf("Expected 3 children, got %d", len(children))
	}
	for _, c := range children {
		if c.Tag() != "img" {
			t.Errorf("Expected img, got %s", c.Tag())
		}
		src, ok := c.GetAttribute("src")
		if !ok || src != "https://example.com/logo.png" {
			t.Errorf("Wrong src attribute: %q", src)
		}
	}

	out := doc.HTML()
	if strings.Count(out, "<img") != 3 {
		t.Errorf("Serialized HTML should contain 3 img tags:\n%s", out)
	}
}

func TestAppendMovesNode(t *testing.T) {
	doc, err := ParseString(`<body><div id="a"></div><div id="b"></div></body>`)
	if err != nil {
		t.Fatalf("ParseString: %v", err)
	}
	a := doc.GetElementByID("a")
	b := doc.GetElementByID("b")

	span := doc.CreateElement("span")
	span.SetAttribute("id", "s")
	if err := a.AppendChild(span); err != nil {
		t.Fatalf("AppendChild: %v", err)
	}
	if err := b.AppendChild(span); err != nil {
		t.Fatalf("AppendChild (move): %v", err)
	}

	if len(a.Children()) != 0 {
		t.Error("span should have left its first parent")
	}
	if len(b.Children()) != 1 {
		t.Error("span should be under its new parent")
	}
	if got := doc.GetElementByID("s"); got == nil || !got.Same(span) {
		t.Error("id lookup after move failed")
	}
	if p := span.Parent(); p == nil || !p.Same(b) {
		t.Error("Parent() should be the new parent")
	}
}

func TestAppendCycleRejected(t *testing.T) {
	doc := NewDocument()
	outer := doc.CreateElement("div")
	inner := doc.CreateElement("div")
	if err := outer.AppendChild(inner); err != nil {
		t.Fatalf("AppendChild: %v", err)
	}

	if err := inner.AppendChild(outer); err == nil {
		t.Fatal("appending an ancestor into a descendant must fail")
	}
	if err := outer.AppendChild(outer); err == nil {
		t.Fatal("appending a node to itself must fail")
	}
}

func TestAttributes(t *testing.T) {
	doc := NewDocument()
	el := doc.CreateElement("img")

	if _, ok := el.GetAttribute("src"); ok {
		t.Fatal("attribute should be absent")
	}

	el.SetAttribute("src", "one")
	el.SetAttribute("alt", "logo")
	el.SetAttribute("SRC", "two") // case-insensitive replace

	src, ok := el.GetAttribute("src")
	if !ok || src != "two" {
		t.Fatalf("Expected src=two, got %q", src)
	}
	if len(el.Attributes()) != 2 {
		t.Fatalf("Expected 2 attributes, got %d", len(el.Attributes()))
	}

	el.RemoveAttribute("alt")
	if _, ok := el.GetAttribute("alt"); ok {
		t.Fatal("alt should be removed")
	}
}

func TestText(t *testing.T) {
	doc, err := ParseString(`<body><p id="p">hello <b>world</b></p></body>`)
	if err != nil {
		t.Fatalf("ParseString: %v", err)
	}
	p := doc.GetElementByID("p")
	if got := p.Text(); got != "hello world" {
		t.Errorf("Text() = %q", got)
	}

	p.SetText("replaced")
	if got := p.Text(); got != "replaced" {
		t.Errorf("Text() after SetText = %q", got)
	}
	if len(p.Children()) != 0 {
		t.Error("SetText should remove element children")
	}
}

func TestGetElementByIDMissing(t *testing.T) {
	doc := NewDocument()
	if doc.GetElementByID("nope") != nil {
		t.Fatal("missing id should return nil")
	}
}

func TestBody(t *testing.T) {
	doc := NewDocument()
	body := doc.Body()
	if body == nil || body.Tag() != "body" {
		t.Fatal("Body() should return the body element")
	}
}
