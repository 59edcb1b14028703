// SPDX-License-Identifier: MPL-2.0

package tui

import (
	"io"
	"os"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"
)

// Theme represents the visual theme for prompts.
type Theme string

const (
	// ThemeDefault uses the base huh theme.
	ThemeDefault Theme = "default"
	// ThemeCharm uses the Charm theme.
	ThemeCharm Theme = "charm"
	// ThemeDracula uses the Dracula theme.
	ThemeDracula Theme = "dracula"
	// ThemeCatppuccin uses the Catppuccin theme.
	ThemeCatppuccin Theme = "catppuccin"
	// ThemeBase16 uses the Base16 theme.
	ThemeBase16 Theme = "base16"
)

// Config holds common configuration for prompts.
type Config struct {
	Theme Theme
	// Accessible replaces the full-screen form with numbered line prompts.
	Accessible bool
	Output     io.Writer
	Input      io.Reader
}

// NewConfig returns the configuration for prompts reading in and drawing on
// out. Accessible mode is used when in is not a terminal or the ACCESSIBLE
// environment variable is set, so piped answers and screen readers both work.
func NewConfig(in io.Reader, out io.Writer) Config {
	return Config{
		Theme:      ThemeCharm,
		Accessible: !isTerminal(in) || os.Getenv("ACCESSIBLE") != "",
		Output:     out,
		Input:      in,
	}
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// newForm wraps fields in a single-group form configured from cfg.
func newForm(cfg Config, fields ...huh.Field) *huh.Form {
	form := huh.NewForm(huh.NewGroup(fields...)).
		WithTheme(getHuhTheme(cfg.Theme)).
		WithAccessible(cfg.Accessible)
	if cfg.Output != nil {
		form = form.WithOutput(cfg.Output)
	}
	if cfg.Input != nil {
		form = form.WithInput(cfg.Input)
	}
	return form
}

// getHuhTheme converts a Theme to a huh.Theme.
func getHuhTheme(t Theme) *huh.Theme {
	switch t {
	case ThemeCharm:
		return huh.ThemeCharm()
	case ThemeDracula:
		return huh.ThemeDracula()
	case ThemeCatppuccin:
		return huh.ThemeCatppuccin()
	case ThemeBase16:
		return huh.ThemeBase16()
	default:
		return huh.ThemeBase()
	}
}
