package store

import "sync"

// Theme is the two-valued presentation preference.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// ThemeStore holds the preference other modules read. Nothing clever.
type ThemeStore struct {
	mu    sync.Mutex
	theme Theme
}

func NewThemeStore(initial Theme) *ThemeStore {
	if initial != ThemeLight && initial != ThemeDark {
		initial = ThemeDark
	}
	return &ThemeStore{theme: initial}
}

// Current returns the active theme.
func (s *ThemeStore) Current() Theme {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.theme
}

// Set replaces the theme; unknown values are ignored.
func (s *ThemeStore) Set(t Theme) {
	if t != ThemeLight && t != ThemeDark {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.theme = t
}

// Toggle flips between light and dark.
func (s *ThemeStore) Toggle() Theme {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.theme == ThemeDark {
		s.theme = ThemeLight
	} else {
		s.theme = ThemeDark
	}
	return s.theme
}
