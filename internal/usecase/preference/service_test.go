package preference

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simaogato/wealthflow-dashboard/internal/adapter/repository/memory"
	"github.com/simaogato/wealthflow-dashboard/internal/domain"
	"github.com/simaogato/wealthflow-dashboard/internal/logger"
)

func newService(t *testing.T, store *memory.Store) *PreferenceService {
	t.Helper()
	nop := logger.Nop()
	svc := NewPreferenceService(store, &nop)
	require.NoError(t, svc.Load(context.Background()))
	return svc
}

func TestDefaults(t *testing.T) {
	svc := newService(t, memory.NewStore())

	assert.Equal(t, domain.ThemeSystem, svc.Theme())
	assert.Equal(t, domain.ThemeLight, svc.ResolvedTheme())
	assert.Equal(t, domain.LanguageEnglish, svc.Language())
}

func TestThemeResolution(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	svc := newService(t, store)

	tests := []struct {
		name   string
		choice domain.Theme
		os     domain.Theme
		want   domain.Theme
	}{
		{"System follows dark OS", domain.ThemeSystem, domain.ThemeDark, domain.ThemeDark},
		{"System follows light OS", domain.ThemeSystem, domain.ThemeLight, domain.ThemeLight},
		{"Explicit dark ignores OS", domain.ThemeDark, domain.ThemeLight, domain.ThemeDark},
		{"Explicit light ignores OS", domain.ThemeLight, domain.ThemeDark, domain.ThemeLight},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.SetTheme(ctx, tt.choice)
			require.NoError(t, err)
			assert.Equal(t, tt.want, svc.ObserveOSScheme(tt.os))
		})
	}
}

func TestOSSchemeIsNotPersisted(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	svc := newService(t, store)

	svc.ObserveOSScheme(domain.ThemeDark)
	assert.Zero(t, store.Saves())

	_, err := svc.SetTheme(ctx, domain.ThemeSystem)
	require.NoError(t, err)
	assert.Equal(t, []string{domain.KeyThemePreference}, store.Keys())

	reloaded := newService(t, store)
	assert.Equal(t, domain.ThemeSystem, reloaded.Theme())
	assert.Equal(t, domain.ThemeLight, reloaded.ResolvedTheme())
}

func TestLanguage(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	svc := newService(t, store)

	require.NoError(t, svc.SetLanguage(ctx, domain.LanguagePortuguese))
	assert.ErrorIs(t, svc.SetLanguage(ctx, "de"), domain.ErrValidation)
	assert.ErrorIs(t, func() error { _, err := svc.SetTheme(ctx, "sepia"); return err }(), domain.ErrValidation)

	reloaded := newService(t, store)
	assert.Equal(t, domain.LanguagePortuguese, reloaded.Language())
}
