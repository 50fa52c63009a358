package docx

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/custodia-labs/veritas/internal/core/domain"
	"github.com/custodia-labs/veritas/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Parser = (*Normaliser)(nil)

// MIMEType is the DOCX content type.
const MIMEType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// Normaliser handles DOCX documents.
type Normaliser struct{}

// New creates a new DOCX normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{MIMEType}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50 // Generic MIME normaliser
}

// Parse reads body paragraphs and w:tbl tables in document order into a
// single unit. Paragraphs become blank-line separated text.
func (n *Normaliser) Parse(_ context.Context, raw *domain.RawDocument) (*domain.ParsedDocument, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	reader, err := zip.NewReader(bytes.NewReader(raw.Content), int64(len(raw.Content)))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w: %w", raw.Source, domain.ErrInvalidInput, err)
	}

	body, err := readPart(reader, "word/document.xml")
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w: %w", raw.Source, domain.ErrInvalidInput, err)
	}

	paragraphs, tables, err := walkBody(body)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w: %w", raw.Source, domain.ErrInvalidInput, err)
	}

	return &domain.ParsedDocument{
		Source: raw.Source,
		Format: domain.FormatDOCX,
		Title:  extractTitle(reader),
		Units: []domain.Unit{{
			Text:   strings.Join(paragraphs, "\n\n"),
			Tables: tables,
		}},
	}, nil
}

var errMissingPart = errors.New("missing part")

// readPart returns the content of a named zip entry.
func readPart(reader *zip.Reader, name string) ([]byte, error) {
	for _, file := range reader.File {
		if file.Name != name {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return nil, err
		}
		defer rc.Close()
		return io.ReadAll(rc)
	}
	return nil, fmt.Errorf("%w: %s", errMissingPart, name)
}

// tableState tracks one open w:tbl while walking the body.
type tableState struct {
	rows [][]string
	row  []string
	cell []string
}

// bodyWalker collects paragraphs and tables from document.xml tokens.
type bodyWalker struct {
	paragraphs []string
	tables     []domain.Table
	open       []*tableState
	para       strings.Builder
	inText     bool
}

// walkBody streams word/document.xml. Nested tables are flattened into the
// text of the enclosing cell.
func walkBody(content []byte) ([]string, []domain.Table, error) {
	w := &bodyWalker{}
	dec := xml.NewDecoder(bytes.NewReader(content))
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			w.start(t.Name.Local)
		case xml.EndElement:
			w.end(t.Name.Local)
		case xml.CharData:
			if w.inText {
				w.para.Write(t)
			}
		}
	}
	return w.paragraphs, w.tables, nil
}

func (w *bodyWalker) top() *tableState {
	if len(w.open) == 0 {
		return nil
	}
	return w.open[len(w.open)-1]
}

func (w *bodyWalker) start(name string) {
	switch name {
	case "tbl":
		w.open = append(w.open, &tableState{})
	case "tr":
		if t := w.top(); t != nil {
			t.row = nil
		}
	case "tc":
		if t := w.top(); t != nil {
			t.cell = nil
		}
	case "t":
		w.inText = true
	case "tab":
		w.para.WriteString(" ")
	case "br", "cr":
		w.para.WriteString("\n")
	}
}

func (w *bodyWalker) end(name string) {
	switch name {
	case "t":
		w.inText = false
	case "p":
		text := strings.TrimSpace(w.para.String())
		w.para.Reset()
		if text == "" {
			return
		}
		if t := w.top(); t != nil {
			t.cell = append(t.cell, text)
			return
		}
		w.paragraphs = append(w.paragraphs, text)
	case "tc":
		if t := w.top(); t != nil {
			t.row = append(t.row, strings.Join(t.cell, " "))
		}
	case "tr":
		if t := w.top(); t != nil {
			t.rows = append(t.rows, t.row)
		}
	case "tbl":
		t := w.top()
		if t == nil {
			return
		}
		w.open = w.open[:len(w.open)-1]
		if parent := w.top(); parent != nil {
			for _, row := range t.rows {
				parent.cell = append(parent.cell, strings.Join(row, " "))
			}
			return
		}
		if len(t.rows) > 0 {
			w.tables = append(w.tables, domain.Table{Rows: t.rows})
		}
	}
}

// coreXML represents the structure of docProps/core.xml.
type coreXML struct {
	Title string `xml:"title"`
}

// extractTitle reads the title from docProps/core.xml.
func extractTitle(reader *zip.Reader) string {
	content, err := readPart(reader, "docProps/core.xml")
	if err != nil {
		return ""
	}
	var core coreXML
	if err := xml.Unmarshal(content, &core); err != nil {
		return ""
	}
	return strings.TrimSpace(core.Title)
}
