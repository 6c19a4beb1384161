package pipeline

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/jhillyerd/enmime"
	pdf "github.com/ledongthuc/pdf"
)

// DocumentFromInput reduces an input source to the plain list text the
// pipeline consumes. Supported types: text (raw text or a file path), html,
// eml, pdf (file paths).
func DocumentFromInput(inputType, input string) (string, error) {
	switch inputType {
	case "text":
		if blob, err := os.ReadFile(input); err == nil {
			return string(blob), nil
		}
		return input, nil
	case "html":
		blob, err := os.ReadFile(input)
		if err != nil {
			return "", err
		}
		return documentFromHTML(string(blob))
	case "eml":
		blob, err := os.ReadFile(input)
		if err != nil {
			return "", err
		}
		return DocumentFromMessage(blob)
	case "pdf":
		blob, err := os.ReadFile(input)
		if err != nil {
			return "", err
		}
		return documentFromPDF(blob)
	default:
		return "", fmt.Errorf("unsupported input type: %s", inputType)
	}
}

// DocumentFromMessage extracts list text from a raw RFC 5322 message:
// the plain text part when present, the HTML part otherwise.
func DocumentFromMessage(raw []byte) (string, error) {
	env, err := enmime.ReadEnvelope(bytes.NewReader(raw))
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(env.Text) != "" {
		return env.Text, nil
	}
	if env.HTML != "" {
		return documentFromHTML(env.HTML)
	}
	return "", nil
}

// documentFromHTML flattens list items, table cells, and paragraphs into
// one line each, in document order.
func documentFromHTML(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", err
	}

	lines := []string{}
	doc.Find("li, td, p, h1, h2, h3").Each(func(_ int, sel *goquery.Selection) {
		if sel.ChildrenFiltered("li, td, p").Length() > 0 {
			return
		}
		text := strings.TrimSpace(sel.Text())
		if text != "" {
			lines = append(lines, text)
		}
	})

	if len(lines) == 0 {
		return strings.TrimSpace(doc.Text()), nil
	}
	return strings.Join(lines, "\n"), nil
}

func documentFromPDF(content []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			continue
		}
		b.WriteString(text)
		b.WriteString("\n")
	}
	return b.String(), nil
}
