package usecases

import (
	"context"
	"fmt"
	"strings"

	"github.com/wanderguide/wanderguide/internal/core/domain"
	"github.com/wanderguide/wanderguide/internal/core/ports"
)

// PreferenceService stores per-client UI preferences. The default theme is
// injected so nothing reads it from global state.
type PreferenceService struct {
	store        ports.KeyValueStore
	defaultTheme domain.Theme
}

// NewPreferenceService creates a new PreferenceService. store may be nil, in
// which case every client sees the default and writes fail.
func NewPreferenceService(store ports.KeyValueStore, defaultTheme domain.Theme) *PreferenceService {
	return &PreferenceService{store: store, defaultTheme: defaultTheme}
}

func preferenceKey(clientID string) string { return "prefs:" + clientID + ":theme" }

// Get returns the client's preferences, falling back to the default theme.
func (s *PreferenceService) Get(ctx context.Context, clientID string) (*domain.Preferences, error) {
	if err := validClientID(clientID); err != nil {
		return nil, err
	}

	prefs := &domain.Preferences{ClientID: clientID, Theme: s.defaultTheme}
	if s.store == nil {
		return prefs, nil
	}
	if data, err := s.store.Get(ctx, preferenceKey(clientID)); err == nil {
		if theme, err := domain.ParseTheme(string(data)); err == nil {
			prefs.Theme = theme
		}
	}
	return prefs, nil
}

// SetTheme persists the client's theme.
func (s *PreferenceService) SetTheme(ctx context.Context, clientID string, theme domain.Theme) (*domain.Preferences, error) {
	if err := validClientID(clientID); err != nil {
		return nil, err
	}
	if _, err := domain.ParseTheme(string(theme)); err != nil {
		return nil, fmt.Errorf("%w: theme must be light or dark", domain.ErrInvalidInput)
	}
	if s.store == nil {
		return nil, domain.ErrUnavailable
	}
	if err := s.store.Set(ctx, preferenceKey(clientID), []byte(theme), 0); err != nil {
		return nil, fmt.Errorf("store theme: %w", err)
	}
	return &domain.Preferences{ClientID: clientID, Theme: theme}, nil
}

func validClientID(id string) error {
	if id == "" || len(id) > 64 || strings.ContainsAny(id, ": \t\n") {
		return fmt.Errorf("%w: client id must be 1-64 characters without spaces or colons", domain.ErrInvalidInput)
	}
	return nil
}
