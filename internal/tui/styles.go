package tui

import (
	"github.com/charmbracelet/lipgloss"

	"evodash/internal/store"
)

// ---------------------------------------------------------------------------
// Palettes: Catppuccin Mocha (dark) and Latte (light)
// https://catppuccin.com/palette
// ---------------------------------------------------------------------------

type palette struct {
	base    lipgloss.Color
	surface lipgloss.Color
	text    lipgloss.Color
	subtext lipgloss.Color
	accent  lipgloss.Color
	focus   lipgloss.Color
	success lipgloss.Color
	error   lipgloss.Color
	warning lipgloss.Color
	info    lipgloss.Color
}

var mocha = palette{
	base:    "#1e1e2e",
	surface: "#313244",
	text:    "#cdd6f4",
	subtext: "#a6adc8",
	accent:  "#f5c2e7",
	focus:   "#b4befe",
	success: "#a6e3a1",
	error:   "#f38ba8",
	warning: "#f9e2af",
	info:    "#94e2d5",
}

var latte = palette{
	base:    "#eff1f5",
	surface: "#ccd0da",
	text:    "#4c4f69",
	subtext: "#6c6f85",
	accent:  "#ea76cb",
	focus:   "#7287fd",
	success: "#40a02b",
	error:   "#d20f39",
	warning: "#df8e1d",
	info:    "#179299",
}

func paletteFor(t store.Theme) palette {
	if t == store.ThemeLight {
		return latte
	}
	return mocha
}

// styles are rebuilt whenever the theme flips.
type styles struct {
	title     lipgloss.Style
	tabActive lipgloss.Style
	tabIdle   lipgloss.Style
	pane      lipgloss.Style
	label     lipgloss.Style
	value     lipgloss.Style
	selected  lipgloss.Style
	muted     lipgloss.Style
	errText   lipgloss.Style
	footer    lipgloss.Style
	toast     map[store.Severity]lipgloss.Style
}

func newStyles(p palette) styles {
	toastBase := lipgloss.NewStyle().Padding(0, 1).Bold(true)
	return styles{
		title:     lipgloss.NewStyle().Bold(true).Foreground(p.accent),
		tabActive: lipgloss.NewStyle().Bold(true).Foreground(p.base).Background(p.accent).Padding(0, 1),
		tabIdle:   lipgloss.NewStyle().Foreground(p.subtext).Padding(0, 1),
		pane:      lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(p.surface).Padding(0, 1),
		label:     lipgloss.NewStyle().Foreground(p.subtext),
		value:     lipgloss.NewStyle().Foreground(p.text),
		selected:  lipgloss.NewStyle().Bold(true).Foreground(p.focus),
		muted:     lipgloss.NewStyle().Foreground(p.subtext).Faint(true),
		errText:   lipgloss.NewStyle().Foreground(p.error),
		footer:    lipgloss.NewStyle().Foreground(p.subtext).Faint(true),
		toast: map[store.Severity]lipgloss.Style{
			store.SeveritySuccess: toastBase.Foreground(p.base).Background(p.success),
			store.SeverityError:   toastBase.Foreground(p.base).Background(p.error),
			store.SeverityWarning: toastBase.Foreground(p.base).Background(p.warning),
			store.SeverityInfo:    toastBase.Foreground(p.base).Background(p.info),
		},
	}
}

func statusColor(p palette, status string) lipgloss.Color {
	switch status {
	case "running":
		return p.success
	case "paused":
		return p.warning
	case "failed":
		return p.error
	default:
		return p.subtext
	}
}
