package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/awelch/personal-site/internal/model"
)

func TestResolveTheme(t *testing.T) {
	tests := []struct {
		name              string
		pref              model.Theme
		systemPrefersDark bool
		want              model.Theme
	}{
		{"explicit light", model.ThemeLight, true, model.ThemeLight},
		{"explicit dark", model.ThemeDark, false, model.ThemeDark},
		{"system light", model.ThemeSystem, false, model.ThemeLight},
		{"system dark", model.ThemeSystem, true, model.ThemeDark},
		{"unknown falls back to system", model.Theme("sepia"), true, model.ThemeDark},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveTheme(tt.pref, tt.systemPrefersDark))
		})
	}
}

func TestThemeController(t *testing.T) {
	c := NewThemeController()
	assert.Equal(t, model.ThemeLight, c.Effective())

	c.SetSystemPrefersDark(true)
	assert.Equal(t, model.ThemeDark, c.Effective())

	c.SetPreference(model.ThemeLight)
	assert.Equal(t, model.ThemeLight, c.Effective())

	c.SetPreference("bogus")
	assert.Equal(t, model.ThemeSystem, c.Preference())
}
