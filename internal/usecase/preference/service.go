// Package preference owns the theme and language choices.
package preference

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/simaogato/wealthflow-dashboard/internal/domain"
	"github.com/simaogato/wealthflow-dashboard/internal/usecase/entitystore"
)

// PreferenceService handles the persisted UI preferences.
// Only explicit choices are stored; the OS color scheme is observed live.
type PreferenceService struct {
	theme    *entitystore.Value[domain.ThemePreference]
	language *entitystore.Value[domain.LanguagePreference]
	osScheme domain.Theme
}

// NewPreferenceService creates a new PreferenceService instance
func NewPreferenceService(store domain.RecordStore, log *zerolog.Logger) *PreferenceService {
	return &PreferenceService{
		theme: entitystore.NewValue(store, domain.KeyThemePreference, func() domain.ThemePreference {
			return domain.ThemePreference{Theme: domain.ThemeSystem}
		}, log),
		language: entitystore.NewValue(store, domain.KeyLanguagePreference, func() domain.LanguagePreference {
			return domain.LanguagePreference{Language: domain.LanguageEnglish}
		}, log),
		osScheme: domain.ThemeLight,
	}
}

// Load reads both preferences. A failure to read one does not prevent reading the other.
func (s *PreferenceService) Load(ctx context.Context) error {
	_, themeErr := s.theme.Load(ctx)
	_, langErr := s.language.Load(ctx)
	return errors.Join(themeErr, langErr)
}

// Theme returns the stored choice (light, dark or system).
func (s *PreferenceService) Theme() domain.Theme { return s.theme.Get().Theme }

// ResolvedTheme is the concrete theme to render with.
func (s *PreferenceService) ResolvedTheme() domain.Theme {
	return s.Theme().Resolve(s.osScheme)
}

// SetTheme stores an explicit choice and returns the resolved theme.
func (s *PreferenceService) SetTheme(ctx context.Context, t domain.Theme) (domain.Theme, error) {
	err := s.theme.Set(ctx, domain.ThemePreference{Theme: t})
	return s.ResolvedTheme(), err
}

// ObserveOSScheme records the scheme the OS reports and returns the resolved theme.
// Nothing is persisted.
func (s *PreferenceService) ObserveOSScheme(scheme domain.Theme) domain.Theme {
	if scheme == domain.ThemeDark || scheme == domain.ThemeLight {
		s.osScheme = scheme
	}
	return s.ResolvedTheme()
}

// Language returns the UI language.
func (s *PreferenceService) Language() domain.Language { return s.language.Get().Language }

// SetLanguage stores the UI language.
func (s *PreferenceService) SetLanguage(ctx context.Context, l domain.Language) error {
	return s.language.Set(ctx, domain.LanguagePreference{Language: l})
}
