package tui

import "github.com/charmbracelet/lipgloss"

// Palette. Adaptive colors pick the light or dark variant from the terminal
// background.
var (
	colorBrand   = lipgloss.AdaptiveColor{Light: "#4B3FE0", Dark: "#6C63FF"}
	colorText    = lipgloss.AdaptiveColor{Light: "#24283B", Dark: "#C0CAF5"}
	colorDim     = lipgloss.AdaptiveColor{Light: "#8A8A8A", Dark: "#666666"}
	colorBorder  = lipgloss.AdaptiveColor{Light: "#C8CBD9", Dark: "#414868"}
	colorRunning = lipgloss.AdaptiveColor{Light: "#1E9E57", Dark: "#2ECC71"}
	colorMoney   = lipgloss.AdaptiveColor{Light: "#1E9E57", Dark: "#2ECC71"}
	colorHours   = lipgloss.AdaptiveColor{Light: "#3D6FD9", Dark: "#7AA2F7"}
	colorMarked  = lipgloss.AdaptiveColor{Light: "#C27C0E", Dark: "#F39C12"}
	colorError   = lipgloss.AdaptiveColor{Light: "#C0392B", Dark: "#E74C3C"}
)

// serviceColors colors the chart bars, cycling by service position.
var serviceColors = []lipgloss.Color{
	"#6C63FF", "#2EC4B6", "#FF6B6B", "#F39C12", "#2ECC71", "#9B59B6", "#3498DB", "#E74C3C",
}

func serviceColor(i int) lipgloss.Color {
	return serviceColors[i%len(serviceColors)]
}

var (
	brandStyle = lipgloss.NewStyle().Bold(true).Foreground(colorBrand)

	activeTabStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorBrand).
			Border(lipgloss.NormalBorder(), false, false, true, false).
			BorderForeground(colorBrand).
			Padding(0, 2)
	inactiveTabStyle = lipgloss.NewStyle().Foreground(colorDim).Padding(0, 2)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(1, 2)
	// activePanelStyle frames forms, pickers and the running timer.
	activePanelStyle = panelStyle.BorderForeground(colorBrand)

	idleClockStyle    = lipgloss.NewStyle().Bold(true).Foreground(colorBrand).Align(lipgloss.Center)
	runningClockStyle = idleClockStyle.Foreground(colorRunning)
	runningStyle      = lipgloss.NewStyle().Foreground(colorRunning)

	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(colorText)
	mutedStyle = lipgloss.NewStyle().Foreground(colorDim)
	errorStyle = lipgloss.NewStyle().Foreground(colorError)
	moneyStyle = lipgloss.NewStyle().Foreground(colorMoney)
	hoursStyle = lipgloss.NewStyle().Foreground(colorHours)

	headerStyle = lipgloss.NewStyle().Padding(0, 1)
	footerStyle = lipgloss.NewStyle().Foreground(colorDim).Padding(0, 1)

	selectedItemStyle = lipgloss.NewStyle().Bold(true).Foreground(colorBrand)
	normalItemStyle   = lipgloss.NewStyle().Foreground(colorText)
	markedItemStyle   = lipgloss.NewStyle().Foreground(colorMarked)
)
