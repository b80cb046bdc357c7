// Package ui provides styling and the terminal preview for the wayosk CLI
package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Color palette - consistent across the application
var (
	ColorPrimary   = lipgloss.Color("39")  // Bright blue
	ColorSecondary = lipgloss.Color("205") // Pink/magenta
	ColorSuccess   = lipgloss.Color("82")  // Green
	ColorWarning   = lipgloss.Color("214") // Orange
	ColorError     = lipgloss.Color("196") // Red
	ColorInfo      = lipgloss.Color("86")  // Cyan

	ColorText      = lipgloss.Color("252") // Light gray
	ColorSubtle    = lipgloss.Color("241") // Medium gray
	ColorMuted     = lipgloss.Color("238") // Dark gray
	ColorHighlight = lipgloss.Color("255") // White
)

// Base styles
var (
	TextStyle   = lipgloss.NewStyle().Foreground(ColorText)
	SubtleStyle = lipgloss.NewStyle().Foreground(ColorSubtle)
	BoldStyle   = lipgloss.NewStyle().Bold(true)

	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary).
			MarginBottom(1)

	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary).
			Background(ColorMuted).
			Padding(0, 1)

	SuccessStyle = lipgloss.NewStyle().Foreground(ColorSuccess)
	WarningStyle = lipgloss.NewStyle().Foreground(ColorWarning)
	ErrorStyle   = lipgloss.NewStyle().Foreground(ColorError)
	InfoStyle    = lipgloss.NewStyle().Foreground(ColorInfo)

	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorSubtle).
			Padding(0, 1)

	LabelStyle = lipgloss.NewStyle().
			Foreground(ColorSubtle).
			Width(14)
)

// Key styles used by the preview grid.
var (
	KeyStyle = lipgloss.NewStyle().
			Foreground(ColorText)

	KeyPressedStyle = lipgloss.NewStyle().
			Foreground(ColorHighlight).
			Background(ColorPrimary).
			Bold(true)

	KeyLockedStyle = lipgloss.NewStyle().
			Foreground(ColorSecondary).
			Bold(true)

	KeyBorderStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)
)

// Icons
var (
	IconSuccess = "✓"
	IconError   = "✗"
	IconWarning = "!"
	IconOn      = "●"
	IconOff     = "○"
)

// FormatControl renders a key binding hint.
func FormatControl(key, desc string) string {
	return BoldStyle.Foreground(ColorPrimary).Render(key) + " - " + TextStyle.Render(desc)
}

// FormatIndicator renders an on/off dot followed by text.
func FormatIndicator(on bool, text string) string {
	if on {
		return SuccessStyle.Render(IconOn) + " " + text
	}
	return SubtleStyle.Render(IconOff) + " " + text
}

// FormatField renders an aligned "label value" line.
func FormatField(label, value string) string {
	if value == "" {
		value = SubtleStyle.Render("-")
	}
	return LabelStyle.Render(label) + value
}

// CreateSeparator creates a horizontal line separator
func CreateSeparator(width int, char string) string {
	if width <= 0 {
		width = 50
	}
	if char == "" {
		char = "─"
	}
	return SubtleStyle.Render(strings.Repeat(char, width))
}
