package render

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/jung-kurt/gofpdf/v2"
	"golang.org/x/net/html"
)

// FPDF converts HTML in-process with gofpdf. Only a flattened subset of the
// markup survives: headings and table headers become bold lines, table cells
// are joined with separators, list items are bulleted, and styling is dropped.
type FPDF struct {
	lineHeight float64
}

// NewFPDF creates the in-process converter.
func NewFPDF() *FPDF {
	return &FPDF{lineHeight: 6}
}

func (f *FPDF) Convert(ctx context.Context, markup []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 20, 15)
	pdf.SetAutoPageBreak(true, 20)
	pdf.AliasNbPages("{nb}")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Helvetica", "", 8)
		pdf.CellFormat(0, 10, fmt.Sprintf("Page %d of {nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()
	pdf.SetFont("Helvetica", "", 10)

	tr := pdf.UnicodeTranslatorFromDescriptor("")
	basic, err := flatten(bytes.NewReader(markup), tr)
	if err != nil {
		return nil, fmt.Errorf("flatten html: %w", err)
	}

	basicHTML := pdf.HTMLBasicNew()
	basicHTML.Write(f.lineHeight, basic)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// flatten reduces markup to the tag subset understood by gofpdf's HTMLBasic writer.
func flatten(r io.Reader, tr func(string) string) (string, error) {
	z := html.NewTokenizer(r)

	var (
		b        strings.Builder
		skip     int
		cellOpen bool
	)

	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			if err := z.Err(); err != io.EOF {
				return "", err
			}
			return b.String(), nil

		case html.TextToken:
			if skip > 0 {
				continue
			}
			text := strings.Join(strings.Fields(string(z.Text())), " ")
			if text == "" {
				continue
			}
			if cellOpen {
				b.WriteString(" | ")
				cellOpen = false
			}
			b.WriteString(escapeBasic(tr(text)))

		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			switch string(name) {
			case "head", "style", "script", "canvas":
				if tt == html.StartTagToken {
					skip++
				}
			case "h1", "h2", "h3", "th":
				b.WriteString("<b>")
			case "b", "strong":
				b.WriteString("<b>")
			case "i", "em":
				b.WriteString("<i>")
			case "li":
				b.WriteString("- ")
			case "br":
				b.WriteString("<br>")
			case "td":
				cellOpen = false
			}

		case html.EndTagToken:
			name, _ := z.TagName()
			switch string(name) {
			case "head", "style", "script", "canvas":
				if skip > 0 {
					skip--
				}
			case "h1", "h2", "h3":
				b.WriteString("</b><br><br>")
			case "th":
				b.WriteString("</b>")
				cellOpen = true
			case "b", "strong":
				b.WriteString("</b>")
			case "i", "em":
				b.WriteString("</i>")
			case "td":
				cellOpen = true
			case "tr", "p", "li", "div", "section":
				cellOpen = false
				b.WriteString("<br>")
			case "table", "ul", "ol":
				b.WriteString("<br>")
			}
		}
	}
}

func escapeBasic(s string) string {
	return strings.NewReplacer("<", "(", ">", ")").Replace(s)
}
