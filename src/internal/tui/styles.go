// Package tui renders the boxes and tables shown by the noderuntime CLI
// (help, version, info). Plain status lines go through internal/ui instead.
package tui

import (
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Styles are built on first use; lipgloss terminal detection is slow
var (
	initOnce sync.Once

	colorPrimary   lipgloss.Color
	colorSecondary lipgloss.Color
	colorSuccess   lipgloss.Color
	colorError     lipgloss.Color
	colorMuted     lipgloss.Color

	StyleTitle   lipgloss.Style
	StyleVersion lipgloss.Style
	StyleMuted   lipgloss.Style

	StyleBox     lipgloss.Style
	StyleInfoBox lipgloss.Style

	StyleTableHeader      lipgloss.Style
	StyleTableCell        lipgloss.Style
	StyleTableHighlighted lipgloss.Style
	StyleTableBorder      lipgloss.Style

	CheckMark string
	CrossMark string
)

func initStyles() {
	initOnce.Do(func() {
		// Skip terminal capability probing
		lipgloss.SetColorProfile(termenv.TrueColor)

		colorPrimary = lipgloss.Color("39")    // cyan
		colorSecondary = lipgloss.Color("213") // magenta
		colorSuccess = lipgloss.Color("42")    // green
		colorError = lipgloss.Color("196")     // red
		colorMuted = lipgloss.Color("245")     // gray

		StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorPrimary)
		StyleVersion = lipgloss.NewStyle().Bold(true).Foreground(colorSecondary)
		StyleMuted = lipgloss.NewStyle().Foreground(colorMuted)

		box := lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
		StyleBox = box.BorderForeground(colorMuted)
		StyleInfoBox = box.BorderForeground(colorPrimary)

		StyleTableHeader = lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).PaddingRight(2)
		StyleTableCell = lipgloss.NewStyle().PaddingRight(2)
		StyleTableHighlighted = StyleTableCell.Foreground(colorSuccess)
		StyleTableBorder = StyleBox

		CheckMark = lipgloss.NewStyle().Foreground(colorSuccess).Render("✓")
		CrossMark = lipgloss.NewStyle().Foreground(colorError).Render("✗")
	})
}

// RenderTitle renders a bold heading.
func RenderTitle(text string) string {
	initStyles()
	return StyleTitle.Render(text)
}

// RenderVersion renders a version string.
func RenderVersion(version string) string {
	initStyles()
	return StyleVersion.Render(version)
}

// RenderMuted renders secondary text.
func RenderMuted(text string) string {
	initStyles()
	return StyleMuted.Render(text)
}

// RenderInfoBox renders content in a cyan rounded box.
func RenderInfoBox(content string) string {
	initStyles()
	return StyleInfoBox.Render(content)
}

// RenderStatus prefixes text with a check mark or a cross.
func RenderStatus(ok bool, text string) string {
	initStyles()
	if ok {
		return CheckMark + " " + text
	}
	return CrossMark + " " + text
}
