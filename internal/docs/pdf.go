// Package docs extracts plain text from filing PDFs such as annual reports
// and earnings call transcripts.
package docs

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ErrInvalidPDF marks input that cannot be parsed as a PDF.
var ErrInvalidPDF = errors.New("invalid PDF document")

// DefaultMaxChars bounds the text kept from one document.
const DefaultMaxChars = 50000

// Page is the text of one page, numbered from 1.
type Page struct {
	Number int    `json:"number"`
	Text   string `json:"text"`
}

// Document is the extracted text of a PDF.
type Document struct {
	TotalPages int    `json:"total_pages"`
	Pages      []Page `json:"pages"`
	Truncated  bool   `json:"truncated"`
}

// Text joins the page texts.
func (d *Document) Text() string {
	var sb strings.Builder
	for _, p := range d.Pages {
		sb.WriteString(p.Text)
		sb.WriteString("\n")
	}
	return sb.String()
}

// ReadAll reads r fully and extracts its text.
func ReadAll(r io.Reader, maxChars int) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read document: %w", err)
	}
	return Extract(bytes.NewReader(data), int64(len(data)), maxChars)
}

// Extract pulls plain text from every page. Pages that fail to decode are
// skipped. Extraction stops once maxChars characters are collected; zero
// uses DefaultMaxChars. Corrupt streams can panic inside the PDF reader, so
// the panic is turned into ErrInvalidPDF.
func Extract(r io.ReaderAt, size int64, maxChars int) (doc *Document, err error) {
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}

	defer func() {
		if rec := recover(); rec != nil {
			doc = nil
			err = fmt.Errorf("%w: panic during extraction: %v", ErrInvalidPDF, rec)
		}
	}()

	reader, openErr := pdf.NewReader(r, size)
	if openErr != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPDF, openErr)
	}

	doc = &Document{TotalPages: reader.NumPage()}
	collected := 0
	for i := 1; i <= doc.TotalPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, pageErr := page.GetPlainText(nil)
		if pageErr != nil {
			continue
		}

		text, cut := truncate(text, maxChars-collected)
		doc.Pages = append(doc.Pages, Page{Number: i, Text: text})
		collected += len(text)
		if cut {
			doc.Truncated = true
			break
		}
	}

	return doc, nil
}

// truncate cuts s to at most n bytes without splitting a UTF-8 sequence.
func truncate(s string, n int) (string, bool) {
	if n < 0 {
		n = 0
	}
	if len(s) <= n {
		return s, false
	}
	for n > 0 && !utf8Start(s[n]) {
		n--
	}
	return s[:n], true
}

func utf8Start(b byte) bool {
	return b&0xC0 != 0x80
}
