// Package ui holds the per-session view state behind the site's pages:
// session resolution with staleness guards, the profile editor's
// dirty-field tracking, the notes widget with optimistic updates, and
// the navbar identity. Every object here is scoped to one viewer
// session; there is no global mutable state.
package ui

import (
	"sync"

	"github.com/awelch/personal-site/internal/model"
)

// ResolveTheme maps a stored preference to the effective theme. The
// system preference defers to the viewer's reported scheme.
func ResolveTheme(pref model.Theme, systemPrefersDark bool) model.Theme {
	switch pref {
	case model.ThemeLight:
		return model.ThemeLight
	case model.ThemeDark:
		return model.ThemeDark
	default:
		if systemPrefersDark {
			return model.ThemeDark
		}
		return model.ThemeLight
	}
}

// ThemeController carries one session's theme preference.
type ThemeController struct {
	mu                sync.Mutex
	pref              model.Theme
	systemPrefersDark bool
}

func NewThemeController() *ThemeController {
	return &ThemeController{pref: model.ThemeSystem}
}

func (c *ThemeController) SetPreference(pref model.Theme) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !model.ValidTheme(pref) {
		pref = model.ThemeSystem
	}
	c.pref = pref
}

func (c *ThemeController) SetSystemPrefersDark(dark bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.systemPrefersDark = dark
}

func (c *ThemeController) Preference() model.Theme {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pref
}

// Effective resolves the preference to light or dark.
func (c *ThemeController) Effective() model.Theme {
	c.mu.Lock()
	defer c.mu.Unlock()
	return ResolveTheme(c.pref, c.systemPrefersDark)
}
