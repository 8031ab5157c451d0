package extract

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

func init() {
	// Keep pdfcpu from creating or reading a config.yml under the user's config dir.
	model.ConfigPath = "disable"
}

// extractPDF returns the text layer of every page joined by newlines, in page order.
// Pages without a text layer, or whose text cannot be decoded, contribute an empty segment.
func extractPDF(ctx context.Context, content []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("open PDF: %w", err)
	}
	numPages := r.NumPage()
	pages := make([]string, numPages)
	for i := range pages {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		pages[i] = pageText(r, i+1)
	}
	return strings.Join(pages, "\n"), nil
}

func pageText(r *pdf.Reader, num int) (text string) {
	defer func() {
		if recover() != nil {
			text = ""
		}
	}()
	page := r.Page(num)
	if page.V.IsNull() {
		return ""
	}
	text, err := page.GetPlainText(nil)
	if err != nil {
		return ""
	}
	return text
}

// extractPDFContentStreams is the fallback for documents the primary reader rejects.
// pdfcpu rebuilds a damaged cross-reference table in relaxed mode; text is then read
// directly from the show-text operators of each page's content stream.
func extractPDFContentStreams(ctx context.Context, content []byte) (string, error) {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	pctx, err := api.ReadContext(bytes.NewReader(content), conf)
	if err != nil {
		return "", fmt.Errorf("pdfcpu read: %w", err)
	}
	if err := pctx.EnsurePageCount(); err != nil {
		return "", fmt.Errorf("pdfcpu page count: %w", err)
	}
	pages := make([]string, pctx.PageCount)
	for i := range pages {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		rd, err := pdfcpu.ExtractPageContent(pctx, i+1)
		if err != nil {
			continue
		}
		data, err := io.ReadAll(rd)
		if err != nil {
			continue
		}
		pages[i] = contentStreamText(data)
	}
	return strings.Join(pages, "\n"), nil
}
