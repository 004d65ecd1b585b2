package tui

import (
	"github.com/charmbracelet/lipgloss"

	"tablero/internal/dashboard"
)

// Styles.
var (
	headerBarStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("4"))
	footerBarStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Background(lipgloss.Color("8"))
	remoteBarStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("0")).Background(lipgloss.Color("3")) // black on yellow
	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	focusStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("0")).Background(lipgloss.Color("6"))
	errTitleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	errBoxStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("9")).Padding(0, 1)
	dimStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	colHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("245")).Padding(0, 1)
	cellStyle      = lipgloss.NewStyle().Padding(0, 1)
	borderStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	skeletonStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("237"))

	increaseBG = lipgloss.Color("22") // dark green
	decreaseBG = lipgloss.Color("52") // dark red
)

// classStyle applies class tokens to the base cell style in order, so a
// later token overrides an earlier one where both set the same property.
func classStyle(class string) lipgloss.Style {
	s := cellStyle
	for _, c := range dashboard.Classes(class) {
		switch c {
		case dashboard.ClassIncrease:
			s = s.Background(increaseBG).Foreground(lipgloss.Color("15"))
		case dashboard.ClassDecrease:
			s = s.Background(decreaseBG).Foreground(lipgloss.Color("15"))
		case dashboard.ClassPositive:
			s = s.Foreground(lipgloss.Color("10"))
		case dashboard.ClassNegative:
			s = s.Foreground(lipgloss.Color("9"))
		case dashboard.ClassWarnBold:
			s = s.Bold(true).Foreground(lipgloss.Color("11"))
		case dashboard.ClassMuted:
			s = s.Foreground(lipgloss.Color("245"))
		case dashboard.ClassStrong:
			s = s.Bold(true)
		}
	}
	return s
}
