package main

import "github.com/charmbracelet/lipgloss"

var styles = struct {
	OK    lipgloss.Style
	Error lipgloss.Style
	Label lipgloss.Style
	Dim   lipgloss.Style
}{
	OK:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00ff9f")),
	Error: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ff5f5f")),
	Label: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00ff9f")),
	Dim:   lipgloss.NewStyle().Foreground(lipgloss.Color("#6e7681")),
}
