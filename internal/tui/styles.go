package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// Palette mirrors the light and dark colors of the web pages.
var (
	LightForeground = lipgloss.Color("#1f2933")
	LightPrimary    = lipgloss.Color("#2563eb")
	LightMuted      = lipgloss.Color("#9aa5b1")
	LightSelected   = lipgloss.Color("#dbeafe")

	DarkForeground = lipgloss.Color("#e4e7eb")
	DarkPrimary    = lipgloss.Color("#60a5fa")
	DarkMuted      = lipgloss.Color("#616e7c")
	DarkSelected   = lipgloss.Color("#1e3a5f")

	ErrorColor = lipgloss.Color("#e53935")
)

// Theme is the color scheme of the browser.
type Theme struct {
	Name       string
	Foreground lipgloss.Color
	Primary    lipgloss.Color
	Muted      lipgloss.Color
	Selected   lipgloss.Color
	IsDark     bool
}

func LightTheme() Theme {
	return Theme{
		Name:       "light",
		Foreground: LightForeground,
		Primary:    LightPrimary,
		Muted:      LightMuted,
		Selected:   LightSelected,
	}
}

func DarkTheme() Theme {
	return Theme{
		Name:       "dark",
		Foreground: DarkForeground,
		Primary:    DarkPrimary,
		Muted:      DarkMuted,
		Selected:   DarkSelected,
		IsDark:     true,
	}
}

// ParseTheme accepts "light" or "dark"; empty means light.
func ParseTheme(name string) (Theme, error) {
	switch name {
	case "", "light":
		return LightTheme(), nil
	case "dark":
		return DarkTheme(), nil
	default:
		return Theme{}, fmt.Errorf("unknown theme %q", name)
	}
}

// Toggled returns the opposite theme.
func (t Theme) Toggled() Theme {
	if t.IsDark {
		return LightTheme()
	}
	return DarkTheme()
}

// ToggleLabel names the mode the toggle switches to.
func (t Theme) ToggleLabel() string {
	if t.IsDark {
		return "Light Mode"
	}
	return "Dark Mode"
}

// Styles holds the rendered components for one theme.
type Styles struct {
	Theme Theme

	Header   lipgloss.Style
	Title    lipgloss.Style
	Body     lipgloss.Style
	Muted    lipgloss.Style
	Selected lipgloss.Style
	Error    lipgloss.Style
	Spinner  lipgloss.Style
	Footer   lipgloss.Style
	Label    lipgloss.Style
}

func NewStyles(theme Theme) Styles {
	return Styles{
		Theme: theme,

		Header: lipgloss.NewStyle().
			Foreground(theme.Primary).
			Bold(true).
			MarginBottom(1),

		Title: lipgloss.NewStyle().
			Foreground(theme.Primary).
			Bold(true),

		Body: lipgloss.NewStyle().
			Foreground(theme.Foreground),

		Muted: lipgloss.NewStyle().
			Foreground(theme.Muted),

		Selected: lipgloss.NewStyle().
			Foreground(theme.Foreground).
			Background(theme.Selected).
			Bold(true),

		Error: lipgloss.NewStyle().
			Foreground(ErrorColor).
			Bold(true),

		Spinner: lipgloss.NewStyle().
			Foreground(theme.Primary),

		Footer: lipgloss.NewStyle().
			Foreground(theme.Muted).
			MarginTop(1),

		Label: lipgloss.NewStyle().
			Foreground(theme.Muted).
			Width(10),
	}
}
