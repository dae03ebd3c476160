package textextract

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/ledongthuc/pdf"
)

// StructuredPDF walks the page/row/text-run structure of the document.
type StructuredPDF struct {
	MaxPages int // 0 = no limit
}

func (StructuredPDF) Name() string { return "pdf-structured" }

func (s StructuredPDF) Extract(ctx context.Context, data []byte) (text string, err error) {
	// the reader panics on some malformed xref tables
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("pdf reader panic: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}

	numPages := r.NumPage()
	if s.MaxPages > 0 && numPages > s.MaxPages {
		numPages = s.MaxPages
	}

	var lines []string
	for i := 1; i <= numPages; i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		rows, err := page.GetTextByRow()
		if err != nil {
			return "", fmt.Errorf("read page %d: %w", i, err)
		}
		for _, row := range rows {
			if line := joinRuns(row.Content); line != "" {
				lines = append(lines, line)
			}
		}
	}
	return strings.Join(lines, "\n"), nil
}

// joinRuns concatenates the runs of one row, inserting a space where the
// layout leaves a horizontal gap between consecutive runs.
func joinRuns(runs []pdf.Text) string {
	var b strings.Builder
	var prevEnd float64
	for i, t := range runs {
		s := decodeRun(t.S)
		if s == "" {
			continue
		}
		if i > 0 && b.Len() > 0 {
			gap := t.X - prevEnd
			if gap > t.FontSize*0.15 {
				b.WriteByte(' ')
			}
		}
		b.WriteString(s)
		prevEnd = t.X + t.W
	}
	return collapseWhitespace(b.String())
}

// decodeRun percent-decodes a run, keeping the raw value when it is not
// a valid escape sequence (e.g. a literal "21%").
func decodeRun(s string) string {
	if !strings.Contains(s, "%") {
		return s
	}
	if decoded, err := url.PathUnescape(s); err == nil {
		return decoded
	}
	return s
}
