// Package pdf extracts page text and simple column tables from PDF files.
package pdf

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	pdfreader "github.com/dslipak/pdf"

	"github.com/custodia-labs/veritas/internal/core/domain"
	"github.com/custodia-labs/veritas/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Parser = (*Normaliser)(nil)

// Normaliser handles PDF documents.
type Normaliser struct{}

// New creates a new PDF normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{"application/pdf"}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50
}

// Parse returns one unit per page. Runs of aligned multi-column rows on a
// page become a table; everything else is narrative text.
func (n *Normaliser) Parse(ctx context.Context, raw *domain.RawDocument) (doc *domain.ParsedDocument, err error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	// The reader panics on some malformed object streams.
	defer func() {
		if r := recover(); r != nil {
			doc = nil
			err = fmt.Errorf("parse %s: %w: %v", raw.Source, domain.ErrInvalidInput, r)
		}
	}()

	reader, err := pdfreader.NewReader(bytes.NewReader(raw.Content), int64(len(raw.Content)))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w: %w", raw.Source, domain.ErrInvalidInput, err)
	}

	doc = &domain.ParsedDocument{
		Source: raw.Source,
		Format: domain.FormatPDF,
		Title:  strings.TrimSpace(reader.Trailer().Key("Info").Key("Title").Text()),
	}

	for i := 1; i <= reader.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		rows, err := page.GetTextByRow()
		if err != nil {
			return nil, fmt.Errorf("parse %s page %d: %w", raw.Source, i, err)
		}

		text, tables := layoutPage(toLines(rows))
		doc.Units = append(doc.Units, domain.Unit{Page: i, Text: text, Tables: tables})
	}

	return doc, nil
}

func toLines(rows pdfreader.Rows) []line {
	lines := make([]line, 0, len(rows))
	for _, row := range rows {
		if row == nil {
			continue
		}
		l := line{y: float64(row.Position)}
		for _, t := range row.Content {
			l.words = append(l.words, word{x: t.X, w: t.W, size: t.FontSize, s: t.S})
		}
		lines = append(lines, l)
	}
	return lines
}
