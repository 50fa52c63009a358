// Package csv reads delimited text files as a single table.
package csv

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/custodia-labs/veritas/internal/core/domain"
	"github.com/custodia-labs/veritas/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Parser = (*Normaliser)(nil)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Normaliser handles CSV and TSV documents.
type Normaliser struct{}

// New creates a new CSV normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{"text/csv", "text/tab-separated-values"}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50
}

// Parse reads every record into one table on a single unit with no
// narrative text. Ragged rows are allowed.
func (n *Normaliser) Parse(_ context.Context, raw *domain.RawDocument) (*domain.ParsedDocument, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	reader := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(raw.Content, utf8BOM)))
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1
	if raw.MIMEType == "text/tab-separated-values" {
		reader.Comma = '\t'
	}

	var rows [][]string
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w: %w", raw.Source, domain.ErrInvalidInput, err)
		}
		rows = append(rows, record)
	}

	unit := domain.Unit{}
	if len(rows) > 0 {
		unit.Tables = []domain.Table{{Rows: rows}}
	}

	return &domain.ParsedDocument{
		Source: raw.Source,
		Format: domain.FormatCSV,
		Units:  []domain.Unit{unit},
	}, nil
}
