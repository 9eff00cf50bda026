package controller

import (
	"github.com/legadomuebles/legado/internal/persist"
	"github.com/legadomuebles/legado/internal/store"
	"github.com/legadomuebles/legado/internal/uistate"
)

// Meta theme-color values per theme.
const (
	metaColorDark  = "#0F1412"
	metaColorLight = "#F5F7F6"
)

// MetaColor returns the browser chrome colour for mode.
func MetaColor(mode uistate.ThemeMode) string {
	if mode == uistate.ThemeDark {
		return metaColorDark
	}
	return metaColorLight
}

// Theme switches between light and dark and remembers an explicit choice.
type Theme struct {
	store   *store.Store
	storage persist.Storage
}

func NewTheme(s *store.Store, storage persist.Storage) *Theme {
	return &Theme{store: s, storage: storage}
}

// Load applies the saved theme, or the system preference when nothing is
// saved. It does not save.
func (t *Theme) Load(systemDark bool) uistate.ThemeMode {
	mode, ok := t.Saved()
	if !ok {
		mode = uistate.ThemeLight
		if systemDark {
			mode = uistate.ThemeDark
		}
	}
	t.SetTheme(mode, false)
	return mode
}

// Saved returns the stored choice, if there is a valid one.
func (t *Theme) Saved() (uistate.ThemeMode, bool) {
	var mode uistate.ThemeMode
	if !t.storage.Get(persist.KeyTheme, &mode) || !mode.Valid() {
		return "", false
	}
	return mode, true
}

// SetTheme writes mode to the state and, when save is set, to storage.
func (t *Theme) SetTheme(mode uistate.ThemeMode, save bool) {
	if save {
		t.storage.Set(persist.KeyTheme, mode)
	}
	uistate.Theme.Set(t.store, mode)
}

// Toggle flips the theme and saves the choice.
func (t *Theme) Toggle() uistate.ThemeMode {
	next := uistate.Theme.Get(t.store).Opposite()
	t.SetTheme(next, true)
	return next
}

// SystemChanged follows the operating system preference unless the user
// picked a theme.
func (t *Theme) SystemChanged(dark bool) {
	if _, ok := t.Saved(); ok {
		return
	}
	mode := uistate.ThemeLight
	if dark {
		mode = uistate.ThemeDark
	}
	t.SetTheme(mode, false)
}

// MetaColor returns the chrome colour of the current theme.
func (t *Theme) MetaColor() string {
	return MetaColor(uistate.Theme.Get(t.store))
}
