package ocr

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/listcart/backend/internal/domain"
)

// PDFTextExtractor reads the embedded text layer of a PDF, one output line
// per visual row. Scanned PDFs without a text layer yield an empty string.
type PDFTextExtractor struct{}

// NewPDFTextExtractor creates a PDF text extractor
func NewPDFTextExtractor() *PDFTextExtractor {
	return &PDFTextExtractor{}
}

// ExtractText implements domain.OCRClient for PDFs
func (e *PDFTextExtractor) ExtractText(ctx context.Context, data []byte, mimeType string) (text string, err error) {
	// The parser panics on some malformed documents
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("%w: malformed pdf: %v", domain.ErrOCRFailed, r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: open pdf: %v", domain.ErrOCRFailed, err)
	}

	var out strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		rows, err := page.GetTextByRow()
		if err != nil {
			return "", fmt.Errorf("%w: page %d: %v", domain.ErrOCRFailed, i, err)
		}
		for _, row := range rows {
			var line strings.Builder
			for _, word := range row.Content {
				line.WriteString(word.S)
			}
			if s := strings.TrimSpace(line.String()); s != "" {
				out.WriteString(s)
				out.WriteByte('\n')
			}
		}
	}

	return out.String(), nil
}
