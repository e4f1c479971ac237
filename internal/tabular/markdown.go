package tabular

import (
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/rotisserie/eris"

	"github.com/sells-group/schools-cli/internal/model"
)

// WriteMarkdown writes records as a pipe table with columns padded to equal
// display width.
func WriteMarkdown(w io.Writer, recs []model.Record) error {
	table := make([][]string, 0, len(recs)+1)
	table = append(table, Columns)
	for _, r := range recs {
		row := Row(r)
		for i, c := range row {
			row[i] = escapeCell(c)
		}
		table = append(table, row)
	}

	widths := make([]int, len(Columns))
	for _, row := range table {
		for i, c := range row {
			if n := runewidth.StringWidth(c); n > widths[i] {
				widths[i] = n
			}
		}
	}
	for i := range widths {
		if widths[i] < 3 {
			widths[i] = 3
		}
	}

	var sb strings.Builder
	for i, row := range table {
		writeLine(&sb, row, widths)
		if i == 0 {
			sep := make([]string, len(widths))
			for j, n := range widths {
				sep[j] = strings.Repeat("-", n)
			}
			writeLine(&sb, sep, widths)
		}
	}

	if _, err := io.WriteString(w, sb.String()); err != nil {
		return eris.Wrap(err, "tabular: write markdown")
	}
	return nil
}

func writeLine(sb *strings.Builder, row []string, widths []int) {
	sb.WriteString("|")
	for j, c := range row {
		sb.WriteString(" ")
		sb.WriteString(c)
		if pad := widths[j] - runewidth.StringWidth(c); pad > 0 {
			sb.WriteString(strings.Repeat(" ", pad))
		}
		sb.WriteString(" |")
	}
	sb.WriteString("\n")
}

// escapeCell keeps a value on one line and out of the column separators.
func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.Join(strings.Fields(s), " ")
}
