package ui

import (
	"sort"

	"github.com/charmbracelet/lipgloss"
)

type palette struct {
	Text    lipgloss.Color
	Muted   lipgloss.Color
	Accent  lipgloss.Color
	Border  lipgloss.Color
	Success lipgloss.Color
	Warning lipgloss.Color
	Danger  lipgloss.Color
}

var palettes = map[string]palette{
	"terminal_green": {
		Text:    lipgloss.Color("#1aff80"),
		Muted:   lipgloss.Color("#0e9a4e"),
		Accent:  lipgloss.Color("#7dffb8"),
		Border:  lipgloss.Color("#0e6b3a"),
		Success: lipgloss.Color("#7dffb8"),
		Warning: lipgloss.Color("#ffd750"),
		Danger:  lipgloss.Color("#ff5f56"),
	},
	"amber": {
		Text:    lipgloss.Color("#ffb000"),
		Muted:   lipgloss.Color("#b57c00"),
		Accent:  lipgloss.Color("#ffd750"),
		Border:  lipgloss.Color("#8a6100"),
		Success: lipgloss.Color("#a8ff60"),
		Warning: lipgloss.Color("#ffd750"),
		Danger:  lipgloss.Color("#ff5f56"),
	},
	"mono": {
		Text:    lipgloss.Color("#d0d0d0"),
		Muted:   lipgloss.Color("#808080"),
		Accent:  lipgloss.Color("#ffffff"),
		Border:  lipgloss.Color("#585858"),
		Success: lipgloss.Color("#c0c0c0"),
		Warning: lipgloss.Color("#e0e0e0"),
		Danger:  lipgloss.Color("#f0f0f0"),
	},
}

func paletteFor(name string) palette {
	if p, ok := palettes[name]; ok {
		return p
	}
	return palettes["terminal_green"]
}

func themeNames() []string {
	names := make([]string, 0, len(palettes))
	for k := range palettes {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func nextThemeName(current string, step int) string {
	names := themeNames()
	if len(names) == 0 {
		return current
	}
	idx := 0
	for i, name := range names {
		if name == current {
			idx = i
			break
		}
	}
	idx = (idx + step) % len(names)
	if idx < 0 {
		idx += len(names)
	}
	return names[idx]
}

type styles struct {
	title  lipgloss.Style
	label  lipgloss.Style
	muted  lipgloss.Style
	accent lipgloss.Style
	warn   lipgloss.Style
	danger lipgloss.Style
	box    lipgloss.Style
}

func newStyles(p palette) styles {
	return styles{
		title:  lipgloss.NewStyle().Bold(true).Foreground(p.Accent),
		label:  lipgloss.NewStyle().Foreground(p.Text),
		muted:  lipgloss.NewStyle().Foreground(p.Muted),
		accent: lipgloss.NewStyle().Foreground(p.Accent),
		warn:   lipgloss.NewStyle().Foreground(p.Warning),
		danger: lipgloss.NewStyle().Foreground(p.Danger),
		box:    lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(p.Border).Padding(0, 1),
	}
}
