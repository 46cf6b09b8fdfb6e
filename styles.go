package main

import "github.com/charmbracelet/lipgloss"

type colors struct {
	text, textMuted, border, selection lipgloss.AdaptiveColor
	accent, warn, danger, ok           lipgloss.AdaptiveColor
	surface, surfaceElevated           lipgloss.AdaptiveColor
}

var palette = colors{
	text:            lipgloss.AdaptiveColor{Light: "#1F2328", Dark: "#E6EDF3"},
	textMuted:       lipgloss.AdaptiveColor{Light: "#656D76", Dark: "#8B949E"},
	border:          lipgloss.AdaptiveColor{Light: "#D0D7DE", Dark: "#30363D"},
	selection:       lipgloss.AdaptiveColor{Light: "#DDF4FF", Dark: "#1F3A5F"},
	accent:          lipgloss.AdaptiveColor{Light: "#0969DA", Dark: "#58A6FF"},
	warn:            lipgloss.AdaptiveColor{Light: "#9A6700", Dark: "#D29922"},
	danger:          lipgloss.AdaptiveColor{Light: "#CF222E", Dark: "#F85149"},
	ok:              lipgloss.AdaptiveColor{Light: "#1A7F37", Dark: "#3FB950"},
	surface:         lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#0D1117"},
	surfaceElevated: lipgloss.AdaptiveColor{Light: "#F6F8FA", Dark: "#161B22"},
}

type styles struct {
	app, topBar                      lipgloss.Style
	columnTitle                      lipgloss.Style
	panel, panelFocused              lipgloss.Style
	label, value, muted              lipgloss.Style
	warning, errorText, okText       lipgloss.Style
	statusBar, statusSeg, statusHint lipgloss.Style
	cmdOverlay, cmdPrompt, cmdHint   lipgloss.Style
	scrollTrack, scrollThumb         lipgloss.Style
}

func newStyles() styles {
	base := lipgloss.NewStyle()
	panelBorder := lipgloss.NormalBorder()
	focusedBorder := lipgloss.DoubleBorder()

	return styles{
		app:          base,
		topBar:       base.Copy().Bold(true).Padding(0, 1).Foreground(palette.accent),
		columnTitle:  base.Copy().Bold(true).Padding(0, 1),
		panel:        base.Copy().BorderStyle(panelBorder).BorderForeground(palette.border),
		panelFocused: base.Copy().BorderStyle(focusedBorder).BorderForeground(palette.accent),
		label:        base.Copy().Foreground(palette.textMuted).Padding(0, 1),
		value:        base.Copy().Foreground(palette.text),
		muted:        base.Copy().Foreground(palette.textMuted),
		warning:      base.Copy().Bold(true).Foreground(palette.warn).Padding(0, 1),
		errorText:    base.Copy().Bold(true).Foreground(palette.danger),
		okText:       base.Copy().Bold(true).Foreground(palette.ok),
		statusBar:    base.Copy().Padding(0, 1).Background(palette.surfaceElevated),
		statusSeg:    base.Copy().Padding(0, 1).MarginRight(1),
		statusHint:   base.Copy().Faint(true),
		cmdOverlay:   base.Copy().Border(lipgloss.RoundedBorder()).BorderForeground(palette.danger).Padding(1, 2),
		cmdPrompt:    base.Copy().Bold(true),
		cmdHint:      base.Copy().Faint(true),
		scrollTrack:  base.Copy().Foreground(palette.border),
		scrollThumb:  base.Copy().Foreground(palette.accent),
	}
}
