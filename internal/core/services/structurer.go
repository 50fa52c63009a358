package services

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/custodia-labs/veritas/internal/core/domain"
	"github.com/custodia-labs/veritas/internal/logger"
)

const maxTitleHint = 200

var (
	spaceRun     = regexp.MustCompile(`[ \t\f\v\x{00a0}]+`)
	blankLineRun = regexp.MustCompile(`\n\s*\n`)
	yearToken    = regexp.MustCompile(`\b(19|20)\d{2}\b`)
	nonAlnum     = regexp.MustCompile(`[^a-z0-9]+`)
)

// DocumentStructurer decomposes a parsed document into typed blocks:
// one narrative block per paragraph and one table_row block per data row.
type DocumentStructurer struct {
	newID func() string
}

// NewDocumentStructurer creates a structurer that assigns uuid block ids.
func NewDocumentStructurer() *DocumentStructurer {
	return &DocumentStructurer{newID: uuid.NewString}
}

// Structure converts a parsed document into blocks in reading order.
func (s *DocumentStructurer) Structure(doc *domain.ParsedDocument) ([]domain.Block, error) {
	if doc == nil {
		return nil, fmt.Errorf("structure: nil document: %w", domain.ErrInvalidInput)
	}
	if !doc.Format.IsValid() {
		return nil, fmt.Errorf("structure %s: format %q: %w", doc.Source, doc.Format, domain.ErrUnsupportedFormat)
	}

	b := &blockBuilder{doc: doc, newID: s.newID}
	for _, unit := range doc.Units {
		b.addNarrative(unit)
		b.addTables(unit)
	}

	if len(b.blocks) == 0 {
		return nil, fmt.Errorf("structure %s: %w", doc.Source, domain.ErrEmptyDocument)
	}

	logger.Debug("Structured %s: %d blocks (%d table rows)", doc.Source, len(b.blocks), b.tableRows)
	return b.blocks, nil
}

// blockBuilder carries the per-document state of one Structure call.
type blockBuilder struct {
	doc       *domain.ParsedDocument
	newID     func() string
	blocks    []domain.Block
	sawText   bool
	header    []string
	tableRows int
}

func (b *blockBuilder) add(block domain.Block) {
	block.ID = b.newID()
	block.Source = b.doc.Source
	block.Position = len(b.blocks)
	b.blocks = append(b.blocks, block)
}

func (b *blockBuilder) addNarrative(unit domain.Unit) {
	for _, para := range Paragraphs(unit.Text) {
		block := domain.Block{
			Text: para,
			Type: domain.BlockNarrative,
			Page: unit.Page,
		}
		if !b.sawText {
			b.sawText = true
			block.DocLevel = true
			block.DocMetadata = ExtractDocMetadata(para)
		}
		b.add(block)
	}
}

func (b *blockBuilder) addTables(unit domain.Unit) {
	for ti, table := range unit.Tables {
		rows := cleanRows(table.Rows)
		if len(rows) == 0 {
			continue
		}

		width := table.Columns()
		var header []string
		data := rows
		switch {
		case IsHeaderRow(rows[0]):
			header = NormaliseHeader(rows[0], width)
			b.header = header
			data = rows[1:]
		case b.header != nil && len(b.header) == width:
			header = b.header
		default:
			header = positionalHeader(width)
		}

		for si, seg := range splitWideHeader(header) {
			tableID := fmt.Sprintf("p%d-t%d-s%d", unit.Page, ti+1, si+1)
			for ri, row := range data {
				text := serialiseRow(header[seg.start:seg.end], sliceCells(row, seg.start, seg.end))
				if text == "" {
					continue
				}
				b.add(domain.Block{
					Text:  text,
					Type:  domain.BlockTableRow,
					Page:  unit.Page,
					Table: &domain.TableRef{TableID: tableID, RowIndex: ri},
				})
				b.tableRows++
			}
		}
	}
}

// CleanText collapses horizontal whitespace and blank-line runs.
func CleanText(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = spaceRun.ReplaceAllString(text, " ")
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSpace(l)
	}
	text = strings.Join(lines, "\n")
	text = blankLineRun.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

// Paragraphs splits normalised text on blank lines.
func Paragraphs(text string) []string {
	text = CleanText(text)
	if text == "" {
		return nil
	}
	parts := strings.Split(text, "\n\n")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ExtractDocMetadata guesses a title and year from a leading paragraph.
func ExtractDocMetadata(text string) *domain.DocMetadata {
	title, _, _ := strings.Cut(text, "\n")
	title = strings.TrimSpace(title)
	if r := []rune(title); len(r) > maxTitleHint {
		title = string(r[:maxTitleHint])
	}
	return &domain.DocMetadata{
		TitleHint: title,
		YearHint:  yearToken.FindString(text),
	}
}

// IsHeaderRow reports whether non-numeric cells make up at least half of the
// row's non-empty cells. A row with no non-empty cells is not a header.
func IsHeaderRow(row []string) bool {
	nonEmpty, textual := 0, 0
	for _, c := range row {
		if c == "" {
			continue
		}
		nonEmpty++
		if !isNumeric(c) {
			textual++
		}
	}
	return textual > 0 && textual*2 >= nonEmpty
}

// NormaliseHeader lower-cases labels and replaces non-alphanumeric runs with
// underscores. Empty labels become col_<i>.
func NormaliseHeader(row []string, width int) []string {
	out := make([]string, width)
	for i := range out {
		var label string
		if i < len(row) {
			label = strings.Trim(nonAlnum.ReplaceAllString(strings.ToLower(row[i]), "_"), "_")
		}
		if label == "" {
			label = "col_" + strconv.Itoa(i)
		}
		out[i] = label
	}
	return out
}

func positionalHeader(width int) []string {
	return NormaliseHeader(nil, width)
}

type span struct{ start, end int }

// splitWideHeader cuts a header into segments wherever a label repeats,
// so side-by-side tables become independent logical tables.
func splitWideHeader(header []string) []span {
	var spans []span
	start := 0
	seen := make(map[string]bool)
	for i, label := range header {
		if seen[label] {
			spans = append(spans, span{start, i})
			start = i
			seen = make(map[string]bool)
		}
		seen[label] = true
	}
	return append(spans, span{start, len(header)})
}

func serialiseRow(header, row []string) string {
	parts := make([]string, 0, len(row))
	for i, v := range row {
		if v == "" || i >= len(header) {
			continue
		}
		parts = append(parts, header[i]+": "+v)
	}
	return strings.Join(parts, " | ")
}

func sliceCells(row []string, start, end int) []string {
	if start >= len(row) {
		return nil
	}
	if end > len(row) {
		end = len(row)
	}
	return row[start:end]
}

// cleanRows normalises cell whitespace and drops rows with no content.
func cleanRows(rows [][]string) [][]string {
	out := make([][]string, 0, len(rows))
	for _, row := range rows {
		cells := make([]string, len(row))
		empty := true
		for i, c := range row {
			cells[i] = strings.TrimSpace(spaceRun.ReplaceAllString(strings.ReplaceAll(c, "\n", " "), " "))
			if cells[i] != "" {
				empty = false
			}
		}
		if !empty {
			out = append(out, cells)
		}
	}
	return out
}

func isNumeric(s string) bool {
	s = strings.NewReplacer(",", "", "%", "", "$", "", "€", "", "£", "").Replace(s)
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}
