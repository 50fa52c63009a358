package pdf

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/veritas/internal/core/domain"
)

// run builds a word of size 10 with a width of half the font size per rune.
func run(x float64, s string) word {
	return word{x: x, w: float64(len([]rune(s))) * 5, size: 10, s: s}
}

func TestLine_Cells(t *testing.T) {
	tests := []struct {
		name  string
		words []word
		want  []string
	}{
		{"glyphs merge", []word{run(50, "P"), run(55, "2"), run(60, "0"), run(65, "0")}, []string{"P200"}},
		{"word gap inserts space", []word{run(50, "Pump"), run(73, "Manual")}, []string{"Pump Manual"}},
		{"column gap splits", []word{run(50, "Model"), run(200, "Torque")}, []string{"Model", "Torque"}},
		{"unsorted input", []word{run(200, "Torque"), run(50, "Model")}, []string{"Model", "Torque"}},
		{"blank runs dropped", []word{run(50, "  "), run(200, "x")}, []string{"x"}},
		{"empty line", nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, line{y: 100, words: tt.words}.cells())
		})
	}
}

func TestLayoutPage(t *testing.T) {
	lines := []line{
		{y: 590, words: []word{run(50, "Footer text")}},
		{y: 700, words: []word{run(50, "Pump"), run(73, "Manual")}},
		{y: 688, words: []word{run(50, "Second line here")}},
		{y: 650, words: []word{run(50, "New paragraph")}},
		{y: 630, words: []word{run(50, "Model"), run(200, "Torque")}},
		{y: 618, words: []word{run(50, "P200"), run(200, "45 Nm")}},
	}

	text, tables := layoutPage(lines)

	assert.Equal(t, "Pump Manual\nSecond line here\n\nNew paragraph\n\nFooter text", text)
	require.Len(t, tables, 1)
	assert.Equal(t, [][]string{{"Model", "Torque"}, {"P200", "45 Nm"}}, tables[0].Rows)
}

func TestLayoutPage_SingleMultiCellLineIsNarrative(t *testing.T) {
	text, tables := layoutPage([]line{
		{y: 700, words: []word{run(50, "Total"), run(200, "45")}},
		{y: 688, words: []word{run(50, "End of list")}},
	})

	assert.Equal(t, "Total 45\nEnd of list", text)
	assert.Empty(t, tables)
}

func TestLayoutPage_Empty(t *testing.T) {
	text, tables := layoutPage(nil)
	assert.Empty(t, text)
	assert.Empty(t, tables)
}

func TestNormaliser_Metadata(t *testing.T) {
	n := New()
	assert.Equal(t, []string{"application/pdf"}, n.SupportedMIMETypes())
	assert.Equal(t, 50, n.Priority())
}

func TestParse_Invalid(t *testing.T) {
	_, err := New().Parse(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	doc, err := New().Parse(context.Background(), &domain.RawDocument{Source: "bad.pdf", Content: []byte("not a pdf")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Nil(t, doc)
}
