package ui

import (
	"fmt"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	dark "github.com/thiagokokada/dark-mode-go"
)

// Theme represents the current color scheme
type Theme string

const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"
)

// currentTheme holds the active theme (set at init)
var currentTheme Theme = ThemeDark

// Dark Theme - Tokyo Night
var darkColors = struct {
	Bg, Surface, Border, Text, TextDim lipgloss.Color
	Accent, Cyan, Green, Yellow, Red   lipgloss.Color
	Comment                            lipgloss.Color
}{
	Bg:      lipgloss.Color("#1a1b26"),
	Surface: lipgloss.Color("#24283b"),
	Border:  lipgloss.Color("#414868"),
	Text:    lipgloss.Color("#c0caf5"),
	TextDim: lipgloss.Color("#787fa0"),
	Accent:  lipgloss.Color("#7aa2f7"),
	Cyan:    lipgloss.Color("#7dcfff"),
	Green:   lipgloss.Color("#9ece6a"),
	Yellow:  lipgloss.Color("#e0af68"),
	Red:     lipgloss.Color("#f7768e"),
	Comment: lipgloss.Color("#787fa0"),
}

// Light Theme - Tokyo Night Light variant
var lightColors = struct {
	Bg, Surface, Border, Text, TextDim lipgloss.Color
	Accent, Cyan, Green, Yellow, Red   lipgloss.Color
	Comment                            lipgloss.Color
}{
	Bg:      lipgloss.Color("#d5d6db"),
	Surface: lipgloss.Color("#e9e9ec"),
	Border:  lipgloss.Color("#9699a3"),
	Text:    lipgloss.Color("#343b58"),
	TextDim: lipgloss.Color("#6a6d7c"),
	Accent:  lipgloss.Color("#34548a"),
	Cyan:    lipgloss.Color("#166775"),
	Green:   lipgloss.Color("#485e30"),
	Yellow:  lipgloss.Color("#8f5e15"),
	Red:     lipgloss.Color("#8c4351"),
	Comment: lipgloss.Color("#6a6d7c"),
}

// Active color variables (set by InitTheme)
var (
	ColorBg      lipgloss.Color
	ColorSurface lipgloss.Color
	ColorBorder  lipgloss.Color
	ColorText    lipgloss.Color
	ColorTextDim lipgloss.Color
	ColorAccent  lipgloss.Color
	ColorCyan    lipgloss.Color
	ColorGreen   lipgloss.Color
	ColorYellow  lipgloss.Color
	ColorRed     lipgloss.Color
	ColorComment lipgloss.Color
)

// themeMu protects global color/style variables during live theme switches.
var themeMu sync.RWMutex

// InitTheme sets the active color palette based on theme name
// Must be called before any UI rendering
func InitTheme(theme string) {
	themeMu.Lock()
	defer themeMu.Unlock()
	if theme == "light" {
		currentTheme = ThemeLight
		ColorBg = lightColors.Bg
		ColorSurface = lightColors.Surface
		ColorBorder = lightColors.Border
		ColorText = lightColors.Text
		ColorTextDim = lightColors.TextDim
		ColorAccent = lightColors.Accent
		ColorCyan = lightColors.Cyan
		ColorGreen = lightColors.Green
		ColorYellow = lightColors.Yellow
		ColorRed = lightColors.Red
		ColorComment = lightColors.Comment
	} else {
		currentTheme = ThemeDark
		ColorBg = darkColors.Bg
		ColorSurface = darkColors.Surface
		ColorBorder = darkColors.Border
		ColorText = darkColors.Text
		ColorTextDim = darkColors.TextDim
		ColorAccent = darkColors.Accent
		ColorCyan = darkColors.Cyan
		ColorGreen = darkColors.Green
		ColorYellow = darkColors.Yellow
		ColorRed = darkColors.Red
		ColorComment = darkColors.Comment
	}
	// Reinitialize styles with new colors
	initStyles()
}

// GetCurrentTheme returns the active theme
func GetCurrentTheme() Theme {
	return currentTheme
}

// ResolveTheme resolves the configured theme to "dark" or "light".
// "system" detects the OS dark mode setting, falling back to dark.
func ResolveTheme(configured string) string {
	if configured != "system" && configured != "" {
		return configured
	}
	isDark, err := dark.IsDarkMode()
	if err != nil || isDark {
		return "dark"
	}
	return "light"
}

func init() {
	// Default to dark theme at package init
	InitTheme("dark")
}

// Base Styles
var (
	TitleStyle     lipgloss.Style
	PanelStyle     lipgloss.Style
	HighlightStyle lipgloss.Style
	DimStyle       lipgloss.Style
	ErrorStyle     lipgloss.Style
	SuccessStyle   lipgloss.Style
	WarningStyle   lipgloss.Style
	InfoStyle      lipgloss.Style
	SubtitleStyle  lipgloss.Style
)

// Menu Bar Styles
var (
	MenuBarStyle       lipgloss.Style
	MenuKeyStyle       lipgloss.Style
	MenuDescStyle      lipgloss.Style
	MenuSeparatorStyle lipgloss.Style
)

// List Item Styles
var (
	ListItemStyle       lipgloss.Style
	ListItemActiveStyle lipgloss.Style
)

// Dialog Styles
var (
	DialogBoxStyle   lipgloss.Style
	DialogTitleStyle lipgloss.Style
)

// Tool Icons
const (
	IconZoom         = "📹"
	IconOBS          = "🎬"
	IconMediaManager = "🖼️"
	IconMessage      = "📋"
)

// initStyles initializes all style variables with current theme colors
// Called by InitTheme after color variables are set
func initStyles() {
	TitleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorAccent).
		Background(ColorSurface).
		Padding(0, 1)

	PanelStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorBorder).
		Padding(0, 1)

	HighlightStyle = lipgloss.NewStyle().
		Foreground(ColorBg).
		Background(ColorAccent).
		Bold(true)

	DimStyle = lipgloss.NewStyle().
		Foreground(ColorComment)

	ErrorStyle = lipgloss.NewStyle().
		Foreground(ColorRed).
		Bold(true)

	SuccessStyle = lipgloss.NewStyle().
		Foreground(ColorGreen).
		Bold(true)

	WarningStyle = lipgloss.NewStyle().
		Foreground(ColorYellow).
		Bold(true)

	InfoStyle = lipgloss.NewStyle().
		Foreground(ColorCyan)

	SubtitleStyle = lipgloss.NewStyle().
		Foreground(ColorComment).
		Italic(true)

	MenuBarStyle = lipgloss.NewStyle().
		Background(ColorSurface).
		Foreground(ColorText).
		Padding(0, 1)

	MenuKeyStyle = lipgloss.NewStyle().
		Foreground(ColorAccent).
		Bold(true)

	MenuDescStyle = lipgloss.NewStyle().
		Foreground(ColorText)

	MenuSeparatorStyle = lipgloss.NewStyle().
		Foreground(ColorBorder)

	ListItemStyle = lipgloss.NewStyle().
		Foreground(ColorText).
		PaddingLeft(2)

	ListItemActiveStyle = lipgloss.NewStyle().
		Foreground(ColorAccent).
		Bold(true).
		PaddingLeft(2)

	DialogBoxStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorCyan).
		Background(ColorSurface).
		Padding(1, 2)

	DialogTitleStyle = lipgloss.NewStyle().
		Foreground(ColorCyan).
		Bold(true).
		Align(lipgloss.Center)
}

// Helper Functions

// MenuKey creates a formatted menu item with key and description
func MenuKey(key, description string) string {
	return fmt.Sprintf("%s %s %s",
		MenuKeyStyle.Render(key),
		MenuSeparatorStyle.Render("•"),
		MenuDescStyle.Render(description),
	)
}

// StatusIndicator returns a styled step-outcome indicator.
// Standard symbols: ● success, ✕ failure, ◐ running, ○ pending
func StatusIndicator(status string) string {
	themeMu.RLock()
	defer themeMu.RUnlock()
	switch status {
	case "success":
		return SuccessStyle.Render("●")
	case "failure":
		return ErrorStyle.Render("✕")
	case "running":
		return WarningStyle.Render("◐")
	default:
		return DimStyle.Render("○")
	}
}

// Truncate shortens s to the given display width, appending an ellipsis.
// Width-aware so wide runes don't overflow panel borders.
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= width {
		return s
	}
	if width <= 1 {
		return "…"
	}
	return runewidth.Truncate(s, width-1, "") + "…"
}
