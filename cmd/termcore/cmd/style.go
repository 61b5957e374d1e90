package cmd

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/msto63/termcore/foundation/term/command"
)

// Color palette
var (
	ColorPrimary = lipgloss.Color("#8B5CF6") // Violet
	ColorSuccess = lipgloss.Color("#10B981") // Emerald
	ColorWarning = lipgloss.Color("#F59E0B") // Amber
	ColorError   = lipgloss.Color("#EF4444") // Red
	ColorInfo    = lipgloss.Color("#06B6D4") // Cyan
	ColorMuted   = lipgloss.Color("#6B7280") // Gray
)

var (
	HeaderStyle = lipgloss.NewStyle().
			Foreground(ColorPrimary).
			Bold(true)

	MutedStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	PromptStyle = lipgloss.NewStyle().
			Foreground(ColorPrimary).
			Bold(true)

	statusStyles = map[command.Status]lipgloss.Style{
		command.StatusSuccess: lipgloss.NewStyle().Foreground(ColorSuccess),
		command.StatusWarning: lipgloss.NewStyle().Foreground(ColorWarning),
		command.StatusError:   lipgloss.NewStyle().Foreground(ColorError).Bold(true),
		command.StatusInfo:    lipgloss.NewStyle().Foreground(ColorInfo),
	}
)

// renderResult styles the output of r by status; successful output is
// printed unstyled so it stays pipe friendly
func renderResult(r command.Result) string {
	if r.Output == "" {
		return ""
	}
	if r.Status == command.StatusSuccess {
		return r.Output
	}
	style, ok := statusStyles[r.Status]
	if !ok {
		return r.Output
	}
	lines := strings.Split(r.Output, "\n")
	for i, l := range lines {
		lines[i] = style.Render(l)
	}
	return strings.Join(lines, "\n")
}
