package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/usman-global/usman-books/internal/accounting/reports"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	headStyle  = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle  = lipgloss.NewStyle().Padding(0, 1)
	numStyle   = cellStyle.Align(lipgloss.Right)
)

// grid is a titled table; numeric columns are right aligned.
type grid struct {
	title   string
	headers []string
	numeric map[int]bool
	rows    [][]string
	footer  []string
}

func newGrid(title string, headers ...string) *grid {
	return &grid{title: title, headers: headers, numeric: map[int]bool{}}
}

func (g *grid) numbers(cols ...int) *grid {
	for _, c := range cols {
		g.numeric[c] = true
	}
	return g
}

func (g *grid) add(cells ...string) {
	g.rows = append(g.rows, cells)
}

func (g *grid) render(w io.Writer) error {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(g.headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headStyle
			case g.numeric[col]:
				return numStyle
			default:
				return cellStyle
			}
		})
	for _, r := range g.rows {
		t.Row(r...)
	}
	if g.footer != nil {
		t.Row(g.footer...)
	}
	_, err := fmt.Fprintf(w, "%s\n%s\n", titleStyle.Render(g.title), t.String())
	return err
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func amount(v float64) string {
	return reports.FormatAmount(v)
}

// blank hides zero amounts in debit and credit columns.
func blank(v float64) string {
	if v == 0 {
		return ""
	}
	return reports.FormatAmount(v)
}
