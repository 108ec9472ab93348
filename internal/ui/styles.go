package ui

import "github.com/charmbracelet/lipgloss"

// Colors used in the status display.
var (
	colorPrimary   = lipgloss.Color("62")  // Purple
	colorSecondary = lipgloss.Color("241") // Gray
	colorMuted     = lipgloss.Color("240") // Darker gray
	colorGood      = lipgloss.Color("78")  // Green
	colorWarn      = lipgloss.Color("214") // Orange
	colorBad       = lipgloss.Color("196") // Red
	colorSpelling  = lipgloss.Color("203") // Soft red
	colorGrammar   = lipgloss.Color("75")  // Soft blue
)

// Title style for the header line.
var Title = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("255")).
	Background(colorPrimary).
	Padding(0, 1)

// SectionHeader style for panel labels.
var SectionHeader = lipgloss.NewStyle().
	Bold(true).
	Foreground(colorPrimary).
	MarginTop(1)

// StateReady style for a healthy engine.
var StateReady = lipgloss.NewStyle().
	Foreground(colorGood).
	Bold(true)

// StateDegraded style for a retrying engine.
var StateDegraded = lipgloss.NewStyle().
	Foreground(colorWarn).
	Bold(true)

// StateFailed style for a permanently failed engine.
var StateFailed = lipgloss.NewStyle().
	Foreground(colorBad).
	Bold(true)

// SpellingBadge style for spelling annotation markers.
var SpellingBadge = lipgloss.NewStyle().
	Foreground(colorSpelling)

// GrammarBadge style for grammar annotation markers.
var GrammarBadge = lipgloss.NewStyle().
	Foreground(colorGrammar)

// FeedLine style for event feed rows.
var FeedLine = lipgloss.NewStyle().
	Foreground(colorSecondary)

// StatusBar style for the bottom key-hint bar.
var StatusBar = lipgloss.NewStyle().
	Foreground(lipgloss.Color("255")).
	Background(lipgloss.Color("236")).
	Padding(0, 1)

// StatusBarKey style for key hints in the status bar.
var StatusBarKey = lipgloss.NewStyle().
	Foreground(lipgloss.Color("212")).
	Bold(true)

// MutedText style for secondary detail lines.
var MutedText = lipgloss.NewStyle().
	Foreground(colorMuted)
