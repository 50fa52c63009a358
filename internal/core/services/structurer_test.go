package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/veritas/internal/core/domain"
)

func structure(t *testing.T, doc *domain.ParsedDocument) []domain.Block {
	t.Helper()
	blocks, err := NewDocumentStructurer().Structure(doc)
	require.NoError(t, err)
	return blocks
}

func tableRows(blocks []domain.Block) []domain.Block {
	var out []domain.Block
	for _, b := range blocks {
		if b.IsTableRow() {
			out = append(out, b)
		}
	}
	return out
}

func TestStructure_NameValTable(t *testing.T) {
	blocks := structure(t, &domain.ParsedDocument{
		Source: "t.csv",
		Format: domain.FormatCSV,
		Units: []domain.Unit{{
			Tables: []domain.Table{{Rows: [][]string{{"Name", "Val"}, {"x", "1"}, {"y", "2"}}}},
		}},
	})

	require.Len(t, blocks, 2)
	assert.Equal(t, "name: x | val: 1", blocks[0].Text)
	assert.Equal(t, "name: y | val: 2", blocks[1].Text)
	for i, b := range blocks {
		assert.Equal(t, domain.BlockTableRow, b.Type)
		assert.Equal(t, "t.csv", b.Source)
		require.NotNil(t, b.Table)
		assert.Equal(t, "p0-t1-s1", b.Table.TableID)
		assert.Equal(t, i, b.Table.RowIndex)
		assert.False(t, b.DocLevel)
	}
}

func TestStructure_NarrativeParagraphsAndDocLevel(t *testing.T) {
	blocks := structure(t, &domain.ParsedDocument{
		Source: "paper.pdf",
		Format: domain.FormatPDF,
		Units: []domain.Unit{
			{Page: 1, Text: "  \n\n"},
			{Page: 2, Text: "Grounded Answers\tin Practice\nPublished 2021 by the lab\n\n\n\nSecond   paragraph here."},
			{Page: 3, Text: "Third paragraph."},
		},
	})

	require.Len(t, blocks, 3)
	first := blocks[0]
	assert.True(t, first.DocLevel)
	assert.Equal(t, 2, first.Page)
	require.NotNil(t, first.DocMetadata)
	assert.Equal(t, "Grounded Answers in Practice", first.DocMetadata.TitleHint)
	assert.Equal(t, "2021", first.DocMetadata.YearHint)

	assert.Equal(t, "Second paragraph here.", blocks[1].Text)
	assert.False(t, blocks[1].DocLevel)
	assert.Nil(t, blocks[1].DocMetadata)
	assert.Equal(t, 3, blocks[2].Page)

	ids := map[string]bool{}
	for i, b := range blocks {
		assert.Equal(t, i, b.Position)
		assert.Nil(t, b.Table)
		ids[b.ID] = true
	}
	assert.Len(t, ids, 3, "block ids must be unique")
}

func TestStructure_HeaderReusedForMatchingWidth(t *testing.T) {
	blocks := structure(t, &domain.ParsedDocument{
		Source: "s.pdf",
		Format: domain.FormatPDF,
		Units: []domain.Unit{
			{Page: 1, Tables: []domain.Table{{Rows: [][]string{{"Part No", "Torque (Nm)"}, {"A1", "12"}}}}},
			{Page: 2, Tables: []domain.Table{
				{Rows: [][]string{{"3", "14"}}},
				{Rows: [][]string{{"7", "8", "9"}}},
			}},
		},
	})

	rows := tableRows(blocks)
	require.Len(t, rows, 3)
	assert.Equal(t, "part_no: A1 | torque_nm: 12", rows[0].Text)
	assert.Equal(t, "part_no: 3 | torque_nm: 14", rows[1].Text)
	assert.Equal(t, "p2-t1-s1", rows[1].Table.TableID)
	assert.Equal(t, "col_0: 7 | col_1: 8 | col_2: 9", rows[2].Text)
	assert.Equal(t, "p2-t2-s1", rows[2].Table.TableID)
}

func TestStructure_WideTableSplit(t *testing.T) {
	blocks := structure(t, &domain.ParsedDocument{
		Source: "wide.xlsx",
		Format: domain.FormatXLSX,
		Units: []domain.Unit{{Page: 1, Tables: []domain.Table{{Rows: [][]string{
			{"Item", "Qty", "Item", "Qty"},
			{"bolt", "4", "nut", ""},
		}}}}},
	})

	rows := tableRows(blocks)
	require.Len(t, rows, 2)
	assert.Equal(t, "item: bolt | qty: 4", rows[0].Text)
	assert.Equal(t, "p1-t1-s1", rows[0].Table.TableID)
	assert.Equal(t, "item: nut", rows[1].Text)
	assert.Equal(t, "p1-t1-s2", rows[1].Table.TableID)
	assert.Equal(t, 0, rows[1].Table.RowIndex)
}

func TestStructure_BlankRowsDropped(t *testing.T) {
	blocks := structure(t, &domain.ParsedDocument{
		Source: "t.csv",
		Format: domain.FormatCSV,
		Units: []domain.Unit{{Tables: []domain.Table{{Rows: [][]string{
			{"Name", "Val"}, {" ", ""}, {"x", "1"},
		}}}}},
	})

	require.Len(t, blocks, 1)
	assert.Equal(t, 0, blocks[0].Table.RowIndex)
}

func TestStructure_Errors(t *testing.T) {
	s := NewDocumentStructurer()

	_, err := s.Structure(nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = s.Structure(&domain.ParsedDocument{Source: "x", Format: "rtf", Units: []domain.Unit{{Text: "hi"}}})
	assert.ErrorIs(t, err, domain.ErrUnsupportedFormat)

	_, err = s.Structure(&domain.ParsedDocument{Source: "x", Format: domain.FormatText, Units: []domain.Unit{{Text: " \n\t "}}})
	assert.ErrorIs(t, err, domain.ErrEmptyDocument)
}

func TestIsHeaderRow(t *testing.T) {
	tests := []struct {
		row  []string
		want bool
	}{
		{[]string{"Name", "Val"}, true},
		{[]string{"x", "1"}, true},
		{[]string{"1", "2", "x"}, false},
		{[]string{"1,000", "$5", "12%"}, false},
		{[]string{"", ""}, false},
		{[]string{"Total", "", "3"}, true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsHeaderRow(tt.row), "%v", tt.row)
	}
}

func TestNormaliseHeader(t *testing.T) {
	got := NormaliseHeader([]string{" Max. Load (kg) ", "", "ÜBER"}, 4)
	assert.Equal(t, []string{"max_load_kg", "col_1", "ber", "col_3"}, got)
}

func TestExtractDocMetadata_TruncatesTitle(t *testing.T) {
	meta := ExtractDocMetadata(strings.Repeat("a", 250) + "\nrest 1875")
	assert.Len(t, meta.TitleHint, maxTitleHint)
	assert.Empty(t, meta.YearHint)
}

func TestCleanText(t *testing.T) {
	assert.Equal(t, "a b\n\nc", CleanText("a \t  b\r\n\r\n\n\n   c  "))
	assert.Empty(t, Paragraphs("   "))
}
