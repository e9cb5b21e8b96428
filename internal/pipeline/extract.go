package pipeline

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/jhillyerd/enmime"
	pdf "github.com/ledongthuc/pdf"

	"pantrybill/internal"
)

// ExtractReceiptTexts pulls every candidate receipt transcript out of a raw
// RFC822 message: the plain body, a flattened HTML body, and the text of any
// PDF attachment. Each transcript is parsed independently downstream.
func ExtractReceiptTexts(raw []byte) ([]internal.ReceiptText, string, []string, error) {
	env, err := enmime.ReadEnvelope(bytes.NewReader(raw))
	if err != nil {
		return nil, "", nil, err
	}

	texts := make([]internal.ReceiptText, 0, 2)
	if strings.TrimSpace(env.Text) != "" {
		texts = append(texts, internal.ReceiptText{Source: internal.SourceEmailText, Name: "body", Text: env.Text})
	}
	if strings.TrimSpace(env.HTML) != "" {
		if flat := htmlToReceiptText(env.HTML); strings.TrimSpace(flat) != "" {
			texts = append(texts, internal.ReceiptText{Source: internal.SourceEmailHTML, Name: "body.html", Text: flat})
		}
	}

	attachmentNames := make([]string, 0, len(env.Attachments))
	for _, att := range env.Attachments {
		filename := strings.TrimSpace(att.FileName)
		if filename == "" {
			filename = "attachment"
		}
		attachmentNames = append(attachmentNames, filename)

		if strings.HasSuffix(strings.ToLower(filename), ".pdf") {
			text, err := pdfToText(att.Content)
			if err != nil || strings.TrimSpace(text) == "" {
				continue
			}
			texts = append(texts, internal.ReceiptText{Source: internal.SourcePDF, Name: filename, Text: text})
		}
	}

	return texts, env.GetHeader("Subject"), attachmentNames, nil
}

// htmlToReceiptText flattens an HTML body into line-oriented text. E-receipts
// usually arrive as a <pre> block or a one-line-per-row table; anything else
// degrades to block elements, one line each.
func htmlToReceiptText(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}

	if pre := doc.Find("pre"); pre.Length() > 0 {
		return pre.First().Text()
	}

	lines := []string{}
	doc.Find("tr").Each(func(_ int, row *goquery.Selection) {
		cells := []string{}
		row.Find("th,td").Each(func(_ int, cell *goquery.Selection) {
			if text := strings.TrimSpace(cell.Text()); text != "" {
				cells = append(cells, text)
			}
		})
		if len(cells) > 0 {
			lines = append(lines, strings.Join(cells, " "))
		}
	})

	if len(lines) == 0 {
		doc.Find("p,div,li").Each(func(_ int, block *goquery.Selection) {
			if text := strings.TrimSpace(block.Text()); text != "" {
				lines = append(lines, text)
			}
		})
	}

	return strings.Join(lines, "\n")
}

func pdfToText(content []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			continue
		}
		sb.WriteString(text)
		sb.WriteString("\n")
	}
	return sb.String(), nil
}
