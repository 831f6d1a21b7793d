package ui

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme names the colors of the dashboard. Empty fields fall back to the terminal default.
type Theme struct {
	Accent  lipgloss.Color
	Success lipgloss.Color
	Failure lipgloss.Color
	Notice  lipgloss.Color
	Muted   lipgloss.Color
}

// SpotifyTheme uses Spotify's green as the accent.
var SpotifyTheme = Theme{
	Accent:  "#1DB954",
	Success: "#04B575",
	Failure: "#FF0000",
	Notice:  "#FFA500",
	Muted:   "#626262",
}

var styles = newPalette(SpotifyTheme)

// palette is the set of rendered styles the views draw with.
type palette struct {
	title lipgloss.Style
	track lipgloss.Style
	ok    lipgloss.Style
	err   lipgloss.Style
	warn  lipgloss.Style
	help  lipgloss.Style
}

func newPalette(th Theme) palette {
	fg := func(c lipgloss.Color) lipgloss.Style { return lipgloss.NewStyle().Foreground(c) }
	return palette{
		title: fg(th.Accent).Bold(true).MarginBottom(1),
		track: fg(th.Accent).Bold(true),
		ok:    fg(th.Success).Bold(true),
		err:   fg(th.Failure).Bold(true),
		warn:  fg(th.Notice),
		help:  fg(th.Muted).Italic(true),
	}
}
