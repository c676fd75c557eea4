package theme

import (
	"image/color"

	"charm.land/lipgloss/v2"
)

// Color palette, warm trail colours on a night background
var (
	Primary   = lipgloss.Color("#8B5CF6") // Violet
	Secondary = lipgloss.Color("#14B8A6") // Teal
	Accent    = lipgloss.Color("#F97316") // Orange
	Success   = lipgloss.Color("#22C55E") // Green
	Error     = lipgloss.Color("#F43F5E") // Rose
	Text      = lipgloss.Color("#F8FAFC") // White
	TextDim   = lipgloss.Color("#94A3B8") // Slate
	BgCard    = lipgloss.Color("#1E293B") // Dark Slate
	Border    = lipgloss.Color("#334155") // Slate
)

// accents maps milestone accent keys to palette colours.
var accents = map[string]color.Color{
	"violet": Primary,
	"teal":   Secondary,
	"orange": Accent,
	"rose":   Error,
	"green":  Success,
	"slate":  TextDim,
}

// AccentColor returns the colour for an accent key, falling back to Text.
func AccentColor(key string) color.Color {
	if c, ok := accents[key]; ok {
		return c
	}
	return Text
}

// Typography
var (
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary)

	Subtitle = lipgloss.NewStyle().
			Foreground(TextDim)

	Body = lipgloss.NewStyle().
		Foreground(Text)

	Hint = lipgloss.NewStyle().
		Foreground(TextDim).
		Italic(true)
)

// Layout
var (
	Card = lipgloss.NewStyle().
		Background(BgCard).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Border).
		Padding(1, 2)
)

// States
var (
	Selected = lipgloss.NewStyle().
			Foreground(Primary).
			Bold(true)

	Done = lipgloss.NewStyle().
		Foreground(Success).
		Bold(true)

	Warning = lipgloss.NewStyle().
		Foreground(Error).
		Bold(true)
)
