package output

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Color palette. Never use inline lipgloss.Color literals elsewhere.
var (
	// ColorCyan is used for identifiable nouns: record names, identifiers, paths.
	ColorCyan = lipgloss.Color("14")

	// colorGreen is used for the "indexed" status.
	colorGreen = lipgloss.Color("82")

	// ColorYellow is used for the "skipped" status.
	ColorYellow = lipgloss.Color("220")

	// colorRed is used for removed lines in diffs.
	colorRed = lipgloss.Color("196")

	// colorBoldRed is used for the "failed" status (matches ERROR level).
	colorBoldRed = lipgloss.Color("204")

	// colorGreenCheck is used for the completion checkmark.
	colorGreenCheck = lipgloss.Color("10")

	// ColorDimGray is used for borders and other structural chrome.
	ColorDimGray = lipgloss.Color("240")
)

// Semantic styles.
var (
	// StyleNoun styles identifiable nouns.
	StyleNoun = lipgloss.NewStyle().Foreground(ColorCyan)

	// StyleDim styles structural chrome.
	StyleDim = lipgloss.NewStyle().Faint(true)

	// StyleSummary styles completion and summary lines.
	StyleSummary = lipgloss.NewStyle().Bold(true)
)

// Record status constants.
const (
	StatusIndexed  = "indexed"
	StatusSkipped  = "skipped"
	StatusExported = "exported"
	statusFailed   = "failed"
)

// StatusFailed is the status reported for records that could not be transformed.
const StatusFailed = statusFailed

// statusStyle returns the lipgloss style for a record status.
// Unknown statuses return an unstyled default.
func statusStyle(status string) lipgloss.Style {
	switch status {
	case StatusIndexed, StatusExported:
		return lipgloss.NewStyle().Foreground(colorGreen)
	case StatusSkipped:
		return lipgloss.NewStyle().Foreground(ColorYellow)
	case statusFailed:
		return lipgloss.NewStyle().Bold(true).Foreground(colorBoldRed)
	default:
		return lipgloss.NewStyle()
	}
}

// minRecordColumnWidth keeps status words aligned for typical record names.
const minRecordColumnWidth = 48

// FormatRecordLine renders a record with a right-aligned, color-coded status.
//
// Format: d:<type>/<name>  <status>
func FormatRecordLine(dcatType, name, status string) string {
	path := name
	if dcatType != "" {
		path = fmt.Sprintf("%s/%s", dcatType, name)
	}

	padding := minRecordColumnWidth - len(path)
	if padding < 2 {
		padding = 2
	}

	return StyleDim.Render("d:") + StyleNoun.Render(path) + strings.Repeat(" ", padding) + statusStyle(status).Render(status)
}

// FormatCheckmark renders a green checkmark with a message for stdout output.
func FormatCheckmark(msg string) string {
	check := lipgloss.NewStyle().Foreground(colorGreenCheck).Render("✔")
	return check + " " + msg
}
