package tui

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"

	"tablero/internal/dashboard"
)

// renderPanel renders one panel: a title line followed by its body.
func renderPanel(v dashboard.View, focused bool, spin string, now time.Time) string {
	var b strings.Builder

	switch {
	case focused:
		b.WriteString(focusStyle.Render(" " + v.Title + " "))
	case v.State == dashboard.StateFailed:
		b.WriteString(errTitleStyle.Render(v.Title))
	default:
		b.WriteString(titleStyle.Render(v.Title))
	}
	if v.Refreshing {
		b.WriteString(" " + spin)
	}
	if !v.UpdatedAt.IsZero() {
		b.WriteString(dimStyle.Render("  updated " + humanize.RelTime(v.UpdatedAt, now, "ago", "from now")))
	}
	if v.Highlights > 0 {
		b.WriteString(dimStyle.Render("  Δ" + humanize.Comma(int64(v.Highlights))))
	}
	b.WriteString("\n")

	switch v.State {
	case dashboard.StateLoading:
		b.WriteString(renderSkeleton(dashboard.SkeletonRows))
	case dashboard.StateFailed:
		b.WriteString(errBoxStyle.Render(v.Message))
	default:
		if v.Table != nil {
			b.WriteString(renderTable(*v.Table))
		}
	}
	return b.String()
}

// renderSkeleton draws n placeholder rows.
func renderSkeleton(n int) string {
	widths := []int{12, 8, 10, 14}
	lines := make([]string, n)
	for i := range lines {
		parts := make([]string, len(widths))
		for j, w := range widths {
			parts[j] = strings.Repeat("▒", w)
		}
		lines[i] = skeletonStyle.Render(" " + strings.Join(parts, "  "))
	}
	return strings.Join(lines, "\n")
}

// renderTable draws a rendered table with its cell classes. An empty body
// still draws the header.
func renderTable(t dashboard.Table) string {
	if len(t.Header) == 0 {
		return dimStyle.Render(" sin datos")
	}

	rows := make([][]string, 0, len(t.Rows)+1)
	classes := make([][]string, 0, len(t.Rows)+1)
	for _, r := range t.Rows {
		texts := make([]string, len(r))
		cls := make([]string, len(r))
		for i, c := range r {
			texts[i], cls[i] = c.Text, c.Class
		}
		rows = append(rows, texts)
		classes = append(classes, cls)
	}
	if len(t.Footer) > 0 {
		texts, cls := expandFooter(t.Footer, len(t.Header))
		rows = append(rows, texts)
		classes = append(classes, cls)
	}

	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		Headers(t.Header...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return colHeaderStyle
			}
			if row >= 0 && row < len(classes) && col < len(classes[row]) {
				return classStyle(classes[row][col])
			}
			return cellStyle
		}).
		String()
}

// expandFooter lays spanning footer cells out over n columns. The text of
// a spanning cell goes in its first column.
func expandFooter(footer []dashboard.Cell, n int) (texts, classes []string) {
	texts = make([]string, n)
	classes = make([]string, n)
	col := 0
	for _, c := range footer {
		if col >= n {
			break
		}
		texts[col], classes[col] = c.Text, c.Class
		span := max(c.Span, 1)
		for i := 1; i < span && col+i < n; i++ {
			classes[col+i] = c.Class
		}
		col += span
	}
	return texts, classes
}

// padOrTrunc pads s with spaces to width, or truncates if longer.
func padOrTrunc(s string, width int) string {
	n := lipgloss.Width(s)
	if n >= width {
		return truncate(s, width)
	}
	return s + strings.Repeat(" ", width-n)
}

func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) > width {
		r = r[:max(width, 0)]
	}
	return string(r)
}
