package pipeline

import (
	"strings"
	"testing"
)

func TestDocumentFromHTML(t *testing.T) {
	html := `<html><body>
<h2>Dairy</h2>
<ul><li>milk x2</li><li>Dz eggs</li></ul>
<p>surprise us</p>
</body></html>`

	doc, err := documentFromHTML(html)
	if err != nil {
		t.Fatal(err)
	}

	want := []string{"Dairy", "milk x2", "Dz eggs", "surprise us"}
	got := strings.Split(doc, "\n")
	if len(got) != len(want) {
		t.Fatalf("lines=%v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("line %d: got %q want %q", i, got[i], want[i])
		}
	}
}

func TestDocumentFromMessagePrefersPlainText(t *testing.T) {
	raw := "From: a@example.com\r\n" +
		"Subject: list\r\n" +
		"Content-Type: text/plain; charset=utf-8\r\n" +
		"\r\n" +
		"milk\r\nbread\r\n"

	doc, err := DocumentFromMessage([]byte(raw))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(doc, "milk") || !strings.Contains(doc, "bread") {
		t.Fatalf("doc=%q", doc)
	}
}

func TestDocumentFromMessageHTMLFallback(t *testing.T) {
	raw := "From: a@example.com\r\n" +
		"Subject: list\r\n" +
		"Content-Type: text/html; charset=utf-8\r\n" +
		"\r\n" +
		"<ul><li>milk</li><li>bread</li></ul>\r\n"

	doc, err := DocumentFromMessage([]byte(raw))
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(doc, "\n")
	if len(lines) != 2 || lines[0] != "milk" || lines[1] != "bread" {
		t.Fatalf("doc=%q", doc)
	}
}

func TestDocumentFromInputRawText(t *testing.T) {
	doc, err := DocumentFromInput("text", "milk\nbread")
	if err != nil {
		t.Fatal(err)
	}
	if doc != "milk\nbread" {
		t.Fatalf("doc=%q", doc)
	}

	if _, err := DocumentFromInput("docx", "whatever"); err == nil {
		t.Fatal("expected error for unsupported type")
	}
}
