package theme

import "github.com/charmbracelet/lipgloss"

// Styles describes reusable Lip Gloss styles shared across the UI.
type Styles struct {
	TabActive         *lipgloss.Style
	TabInactive       *lipgloss.Style
	TabDirty          *lipgloss.Style
	Text              *lipgloss.Style
	Selection         *lipgloss.Style
	CursorCell        *lipgloss.Style
	LineNumber        *lipgloss.Style
	StatusBar         *lipgloss.Style
	StatusError       *lipgloss.Style
	StatusInfo        *lipgloss.Style
	PickerItem        *lipgloss.Style
	PickerCurrent     *lipgloss.Style
	PickerHint        *lipgloss.Style
	Filter            *lipgloss.Style
	FilterPrompt      *lipgloss.Style
	FilterPlaceholder *lipgloss.Style
	FormTitle         *lipgloss.Style
	Loading           *lipgloss.Style
	PreviewTitle      *lipgloss.Style
	PreviewBody       *lipgloss.Style
	PreviewError      *lipgloss.Style
}

var defaultStyles = Styles{
	TabActive: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("255")).Background(lipgloss.Color("238")).Bold(true),
	),
	TabInactive: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
	),
	TabDirty: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
	),
	Text: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("250")),
	),
	Selection: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("255")).Background(lipgloss.Color("24")),
	),
	CursorCell: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("33")),
	),
	LineNumber: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
	),
	StatusBar: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("249")).Background(lipgloss.Color("236")),
	),
	StatusError: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
	),
	StatusInfo: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("249")),
	),
	PickerItem: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("249")),
	),
	PickerCurrent: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("255")).Background(lipgloss.Color("238")).Bold(true),
	),
	PickerHint: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
	),
	Filter: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("249")),
	),
	FilterPrompt: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("34")).Bold(true),
	),
	FilterPlaceholder: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
	),
	FormTitle: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Bold(true),
	),
	Loading: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("33")).Italic(true),
	),
	PreviewTitle: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("250")).Bold(true),
	),
	PreviewBody: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("247")),
	),
	PreviewError: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
	),
}

// Default exposes the standard style set used across the application.
func Default() *Styles {
	return &defaultStyles
}

func ptr(style lipgloss.Style) *lipgloss.Style {
	return &style
}
