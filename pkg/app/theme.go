package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/charlie0129/bmi/pkg/storage"
)

// ThemeKey is the storage key of the theme preference.
const ThemeKey = "theme"

type Theme string

const (
	Light Theme = "light"
	Dark  Theme = "dark"

	DefaultTheme = Dark
)

func ParseTheme(s string) (Theme, error) {
	switch t := Theme(s); t {
	case Light, Dark:
		return t, nil
	default:
		return "", fmt.Errorf("invalid theme %q: must be %s or %s", s, Light, Dark)
	}
}

// Icon is what the toggle button shows: the theme it switches to.
func (t Theme) Icon() string {
	if t == Light {
		return "🌙"
	}
	return "☀️"
}

func (t Theme) Toggle() Theme {
	if t == Light {
		return Dark
	}
	return Light
}

// Theme returns the persisted theme, or the default when none is stored.
func (s *State) Theme(ctx context.Context) Theme {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.theme(ctx)
}

func (s *State) theme(ctx context.Context) Theme {
	v, err := s.prefs.Get(ctx, ThemeKey)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			logrus.Warnf("failed to read theme: %v", err)
		}
		return DefaultTheme
	}
	t, err := ParseTheme(v)
	if err != nil {
		return DefaultTheme
	}
	return t
}

func (s *State) SetTheme(ctx context.Context, t Theme) error {
	if _, err := ParseTheme(string(t)); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.prefs.Set(ctx, ThemeKey, string(t))
}

// ToggleTheme flips between light and dark and returns the new theme.
func (s *State) ToggleTheme(ctx context.Context) (Theme, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.theme(ctx).Toggle()
	if err := s.prefs.Set(ctx, ThemeKey, string(next)); err != nil {
		return s.theme(ctx), err
	}
	return next, nil
}
