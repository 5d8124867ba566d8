package home

import (
	"charm.land/lipgloss/v2"

	"github.com/studyquest/studyquest/internal/ui/theme"
)

const bannerArt = `
 ┌─┐┌┬┐┬ ┬┌┬┐┬ ┬┌─┐ ┬ ┬┌─┐┌─┐┌┬┐
 └─┐ │ │ │ ││└┬┘│─┼┐│ │├┤ └─┐ │
 └─┘ ┴ └─┘─┴┘ ┴ └─┘└└─┘└─┘└─┘ ┴ `

const bannerCompact = "S T U D Y Q U E S T"

// renderBanner uses a compact fallback for terminals narrower than 40
// columns.
func renderBanner(width int) string {
	style := lipgloss.NewStyle().
		Foreground(theme.Primary).
		Bold(true)

	if width < 40 {
		return style.Render(bannerCompact)
	}
	return style.Render(bannerArt)
}
