package ocr

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/rs/zerolog"
	"kyccheck/internal/logger"
	"rsc.io/pdf"
)

// PDFTextExtractor implements PDFExtractor by reading the text layer of a
// PDF. Scanned PDFs without a text layer yield empty pages.
type PDFTextExtractor struct {
	log zerolog.Logger
}

// NewPDFTextExtractor creates a text-layer PDF extractor.
func NewPDFTextExtractor() *PDFTextExtractor {
	return &PDFTextExtractor{log: logger.WithComponent("ocr-pdftext")}
}

// ExtractPDF implements PDFExtractor. Each returned page ends with a newline
// when it has any text.
func (x *PDFTextExtractor) ExtractPDF(ctx context.Context, data []byte) (pages []string, err error) {
	const op = "ExtractPDF"

	if err := checkContext(ctx, op); err != nil {
		return nil, err
	}
	if !HasPDFHeader(data) {
		return nil, WrapOCRError(op, ErrInvalidPDF, "missing PDF header")
	}

	// rsc.io/pdf panics on some malformed object graphs
	defer func() {
		if r := recover(); r != nil {
			pages = nil
			err = WrapOCRError(op, ErrInvalidPDF, fmt.Sprintf("parse: %v", r))
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, WrapOCRError(op, ErrInvalidPDF, err.Error())
	}

	n := reader.NumPage()
	pages = make([]string, 0, n)
	for i := 1; i <= n; i++ {
		if err := checkContext(ctx, op); err != nil {
			return nil, err
		}
		page := reader.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		pages = append(pages, pageText(page.Content().Text))
	}

	x.log.Debug().Int("pages", n).Msg("PDF text layer extracted")
	return pages, nil
}

// pageText rebuilds lines from positioned glyph runs. A change in baseline
// starts a new line; a horizontal gap wider than a fraction of the font size
// becomes a space.
func pageText(runs []pdf.Text) string {
	var b strings.Builder
	var prev *pdf.Text
	for i := range runs {
		t := &runs[i]
		if t.S == "" {
			continue
		}
		if prev != nil {
			size := math.Max(t.FontSize, 1)
			switch {
			case math.Abs(t.Y-prev.Y) > size*0.5:
				b.WriteByte('\n')
			case t.X-(prev.X+prev.W) > size*0.2 && !strings.HasSuffix(prev.S, " ") && !strings.HasPrefix(t.S, " "):
				b.WriteByte(' ')
			}
		}
		b.WriteString(t.S)
		prev = t
	}
	if b.Len() == 0 {
		return ""
	}
	b.WriteByte('\n')
	return b.String()
}
