package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInitThemeSwitchesPalette(t *testing.T) {
	defer InitTheme("dark")

	InitTheme("dark")
	darkBg := ColorBg
	assert.Equal(t, ThemeDark, GetCurrentTheme())

	InitTheme("light")
	assert.Equal(t, ThemeLight, GetCurrentTheme())
	assert.NotEqual(t, darkBg, ColorBg)
}

func TestInitThemeUnknownFallsBackToDark(t *testing.T) {
	defer InitTheme("dark")

	InitTheme("solarized")
	assert.Equal(t, ThemeDark, GetCurrentTheme())
}

func TestResolveThemeExplicitValuesPassThrough(t *testing.T) {
	assert.Equal(t, "dark", ResolveTheme("dark"))
	assert.Equal(t, "light", ResolveTheme("light"))
}

func TestResolveThemeSystemReturnsKnownValue(t *testing.T) {
	resolved := ResolveTheme("system")
	assert.Contains(t, []string{"dark", "light"}, resolved)
	assert.Equal(t, resolved, ResolveTheme(""))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "exact", Truncate("exact", 5))
	assert.Equal(t, "long…", Truncate("longer text", 5))
	assert.Equal(t, "…", Truncate("anything", 1))
	assert.Equal(t, "", Truncate("anything", 0))
}

func TestStatusIndicator(t *testing.T) {
	assert.Contains(t, StatusIndicator("success"), "●")
	assert.Contains(t, StatusIndicator("failure"), "✕")
	assert.Contains(t, StatusIndicator("running"), "◐")
	assert.Contains(t, StatusIndicator("pending"), "○")
}

func TestMenuKeyContainsKeyAndDescription(t *testing.T) {
	rendered := MenuKey("q", "quit")
	assert.Contains(t, rendered, "q")
	assert.Contains(t, rendered, "quit")
}
