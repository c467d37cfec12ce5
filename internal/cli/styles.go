package cli

import "github.com/charmbracelet/lipgloss"

// Color palette
var (
	Primary = lipgloss.Color("#7D56F4") // Purple
	Success = lipgloss.Color("#04B575") // Green
	Error   = lipgloss.Color("#FF6B6B") // Red
	Warning = lipgloss.Color("#FFCC00") // Yellow
	Muted   = lipgloss.Color("#6C6C6C")
)

var (
	// TitleStyle for section titles
	TitleStyle = lipgloss.NewStyle().
			Foreground(Primary).
			Bold(true)

	// HeaderStyle for table headers
	HeaderStyle = lipgloss.NewStyle().
			Foreground(Primary).
			Bold(true).
			PaddingRight(2)

	// CellStyle for table cells
	CellStyle = lipgloss.NewStyle().
			PaddingRight(2)

	// MutedStyle for secondary text
	MutedStyle = lipgloss.NewStyle().
			Foreground(Muted)

	// SuccessStyle for success messages
	SuccessStyle = lipgloss.NewStyle().
			Foreground(Success).
			Bold(true)

	// ErrorStyle for error messages
	ErrorStyle = lipgloss.NewStyle().
			Foreground(Error).
			Bold(true)

	// WarningStyle for warnings
	WarningStyle = lipgloss.NewStyle().
			Foreground(Warning)
)

// renderTable lays rows out in padded columns, header first
func renderTable(header []string, rows [][]string) string {
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if w := lipgloss.Width(cell); i < len(widths) && w > widths[i] {
				widths[i] = w
			}
		}
	}

	lines := make([]string, 0, len(rows)+1)
	cells := make([]string, len(header))
	for i, h := range header {
		cells[i] = HeaderStyle.Width(widths[i] + 2).Render(h)
	}
	lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, cells...))

	for _, row := range rows {
		cells := make([]string, len(header))
		for i := range header {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			cells[i] = CellStyle.Width(widths[i] + 2).Render(cell)
		}
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}
