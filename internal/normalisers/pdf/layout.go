package pdf

import (
	"sort"
	"strings"

	"github.com/custodia-labs/veritas/internal/core/domain"
)

// Layout thresholds, in multiples of the font size.
const (
	wordGap      = 0.25
	cellGap      = 1.5
	paragraphGap = 1.8
	minTableRows = 2
)

// word is one positioned text run.
type word struct {
	x, w, size float64
	s          string
}

// line is one baseline of text.
type line struct {
	y     float64
	words []word
}

func (l line) fontSize() float64 {
	size := 0.0
	for _, w := range l.words {
		if w.size > size {
			size = w.size
		}
	}
	if size <= 0 {
		return 1
	}
	return size
}

// cells splits a line into cells wherever the horizontal gap exceeds cellGap.
func (l line) cells() []string {
	words := append([]word(nil), l.words...)
	sort.SliceStable(words, func(i, j int) bool { return words[i].x < words[j].x })

	var cells []string
	var cur strings.Builder
	end := 0.0
	for i, w := range words {
		if i > 0 {
			size := w.size
			if size <= 0 {
				size = 1
			}
			gap := w.x - end
			switch {
			case gap > cellGap*size:
				cells = appendCell(cells, cur.String())
				cur.Reset()
			case gap > wordGap*size && !strings.HasSuffix(cur.String(), " ") && !strings.HasPrefix(w.s, " "):
				cur.WriteString(" ")
			}
		}
		cur.WriteString(w.s)
		if e := w.x + w.w; e > end || i == 0 {
			end = e
		}
	}
	return appendCell(cells, cur.String())
}

func appendCell(cells []string, s string) []string {
	s = strings.Join(strings.Fields(s), " ")
	if s == "" {
		return cells
	}
	return append(cells, s)
}

// layoutPage orders lines top to bottom and separates table runs from
// narrative. Narrative lines far apart vertically start a new paragraph.
func layoutPage(lines []line) (string, []domain.Table) {
	lines = append([]line(nil), lines...)
	sort.SliceStable(lines, func(i, j int) bool { return lines[i].y > lines[j].y })

	split := make([][]string, len(lines))
	for i, l := range lines {
		split[i] = l.cells()
	}

	var text strings.Builder
	var tables []domain.Table
	var prev *line
	pendingBreak := false

	for i := 0; i < len(lines); {
		j := i
		for j < len(lines) && len(split[j]) >= 2 {
			j++
		}
		if j-i >= minTableRows {
			tables = append(tables, domain.Table{Rows: split[i:j]})
			pendingBreak = true
			i = j
			continue
		}

		if s := strings.Join(split[i], " "); s != "" {
			if text.Len() > 0 {
				if pendingBreak || (prev != nil && prev.y-lines[i].y > paragraphGap*lines[i].fontSize()) {
					text.WriteString("\n\n")
				} else {
					text.WriteString("\n")
				}
			}
			text.WriteString(s)
			prev = &lines[i]
			pendingBreak = false
		}
		i++
	}

	return text.String(), tables
}
