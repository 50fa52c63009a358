// Package xlsx reads Excel workbooks with excelize, one unit per sheet.
package xlsx

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/custodia-labs/veritas/internal/core/domain"
	"github.com/custodia-labs/veritas/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Parser = (*Normaliser)(nil)

// MIMEType is the XLSX content type.
const MIMEType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Normaliser handles XLSX workbooks.
type Normaliser struct{}

// New creates a new XLSX normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{MIMEType}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50
}

// Parse returns one unit per non-empty sheet. Page is the 1-based sheet
// position so table ids stay stable across re-ingests.
func (n *Normaliser) Parse(ctx context.Context, raw *domain.RawDocument) (*domain.ParsedDocument, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	f, err := excelize.OpenReader(bytes.NewReader(raw.Content))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w: %w", raw.Source, domain.ErrInvalidInput, err)
	}
	defer f.Close()

	doc := &domain.ParsedDocument{
		Source: raw.Source,
		Format: domain.FormatXLSX,
	}
	if props, err := f.GetDocProps(); err == nil && props != nil {
		doc.Title = strings.TrimSpace(props.Title)
	}

	for i, sheet := range f.GetSheetList() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("parse %s sheet %q: %w", raw.Source, sheet, err)
		}
		rows = trimEmptyRows(rows)
		if len(rows) == 0 {
			continue
		}

		doc.Units = append(doc.Units, domain.Unit{
			Page:   i + 1,
			Tables: []domain.Table{{Rows: rows}},
		})
	}

	return doc, nil
}

// trimEmptyRows drops rows whose cells are all blank.
func trimEmptyRows(rows [][]string) [][]string {
	out := rows[:0]
	for _, row := range rows {
		for _, cell := range row {
			if strings.TrimSpace(cell) != "" {
				out = append(out, row)
				break
			}
		}
	}
	return out
}
