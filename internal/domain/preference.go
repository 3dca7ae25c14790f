package domain

// Theme is the persisted appearance choice
type Theme string

const (
	ThemeLight  Theme = "light"
	ThemeDark   Theme = "dark"
	ThemeSystem Theme = "system"
)

// Valid reports whether t is a known theme preference.
func (t Theme) Valid() bool {
	return t == ThemeLight || t == ThemeDark || t == ThemeSystem
}

// Resolve returns the concrete theme given the OS-reported scheme.
// osScheme is ignored unless t is ThemeSystem; an unknown scheme falls back to light.
func (t Theme) Resolve(osScheme Theme) Theme {
	if t != ThemeSystem {
		return t
	}
	if osScheme == ThemeDark {
		return ThemeDark
	}
	return ThemeLight
}

// Language is the persisted UI language
type Language string

const (
	LanguageEnglish    Language = "en"
	LanguagePortuguese Language = "pt"
	LanguageSpanish    Language = "es"
	LanguageFrench     Language = "fr"
)

// Valid reports whether l is a supported language.
func (l Language) Valid() bool {
	switch l {
	case LanguageEnglish, LanguagePortuguese, LanguageSpanish, LanguageFrench:
		return true
	}
	return false
}

// ThemePreference is the snapshot stored under KeyThemePreference
type ThemePreference struct {
	Theme Theme `json:"theme"`
}

// Validate implements the snapshot shape check
func (p ThemePreference) Validate() error {
	if !p.Theme.Valid() {
		return invalid("unknown theme %q", p.Theme)
	}
	return nil
}

// LanguagePreference is the snapshot stored under KeyLanguagePreference
type LanguagePreference struct {
	Language Language `json:"language"`
}

// Validate implements the snapshot shape check
func (p LanguagePreference) Validate() error {
	if !p.Language.Valid() {
		return invalid("unsupported language %q", p.Language)
	}
	return nil
}
