package services

import (
	"context"
	"fmt"
	"sync"

	"emoheal/internal/database"
	"emoheal/internal/logger"
)

// ThemePreference reports the host's light/dark preference.
type ThemePreference interface {
	PrefersDark() bool
}

// StaticPreference is a fixed ThemePreference.
type StaticPreference bool

func (p StaticPreference) PrefersDark() bool { return bool(p) }

// Appearance is the resolved, render-ready form of Settings.
type Appearance struct {
	Dark       bool `json:"dark"`
	FontSizePx int  `json:"fontSizePx"`
	Animations bool `json:"animations"`
}

type SettingsService struct {
	mu         sync.RWMutex
	store      database.BlobStore
	log        *logger.Logger
	preference ThemePreference

	settings database.Settings
}

func NewSettingsService(store database.BlobStore, log *logger.Logger, preference ThemePreference) *SettingsService {
	if preference == nil {
		preference = StaticPreference(false)
	}
	return &SettingsService{
		store:      store,
		log:        log.With("store", "settings"),
		preference: preference,
		settings:   database.DefaultSettings(),
	}
}

func (s *SettingsService) Load(ctx context.Context) error {
	settings := database.DefaultSettings()
	found, err := database.LoadJSON(ctx, s.store, database.KeySettings, &settings)
	if err != nil && !found {
		return err
	}
	if err != nil {
		s.log.Warn("malformed settings blob, using defaults", "error", err)
		settings = database.DefaultSettings()
	}

	s.mu.Lock()
	s.settings = settings
	s.mu.Unlock()
	return nil
}

func (s *SettingsService) Get() database.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

func (s *SettingsService) UpdateTheme(ctx context.Context, theme database.Theme) (database.Settings, error) {
	if err := validateTheme(theme); err != nil {
		return s.Get(), err
	}
	return s.update(ctx, func(st *database.Settings) { st.Theme = theme })
}

func (s *SettingsService) ToggleNotifications(ctx context.Context) (database.Settings, error) {
	return s.update(ctx, func(st *database.Settings) { st.Notifications = !st.Notifications })
}

func (s *SettingsService) ToggleSoundEffects(ctx context.Context) (database.Settings, error) {
	return s.update(ctx, func(st *database.Settings) { st.SoundEffects = !st.SoundEffects })
}

func (s *SettingsService) UpdateLanguage(ctx context.Context, language database.Language) (database.Settings, error) {
	if err := validateLanguage(language); err != nil {
		return s.Get(), err
	}
	return s.update(ctx, func(st *database.Settings) { st.Language = language })
}

func (s *SettingsService) UpdateFontSize(ctx context.Context, size database.FontSize) (database.Settings, error) {
	if err := validateFontSize(size); err != nil {
		return s.Get(), err
	}
	return s.update(ctx, func(st *database.Settings) { st.FontSize = size })
}

func (s *SettingsService) ToggleAnimations(ctx context.Context) (database.Settings, error) {
	return s.update(ctx, func(st *database.Settings) { st.AnimationsEnabled = !st.AnimationsEnabled })
}

// SettingsPatch carries optional field updates. Nil fields are left as is.
type SettingsPatch struct {
	Theme             *database.Theme    `json:"theme"`
	Language          *database.Language `json:"language"`
	FontSize          *database.FontSize `json:"fontSize"`
	Notifications     *bool              `json:"notifications"`
	SoundEffects      *bool              `json:"soundEffects"`
	AnimationsEnabled *bool              `json:"animationsEnabled"`
}

// Update validates every field of patch and then saves once, so a
// rejected patch changes nothing.
func (s *SettingsService) Update(ctx context.Context, patch SettingsPatch) (database.Settings, error) {
	if patch.Theme != nil {
		if err := validateTheme(*patch.Theme); err != nil {
			return s.Get(), err
		}
	}
	if patch.Language != nil {
		if err := validateLanguage(*patch.Language); err != nil {
			return s.Get(), err
		}
	}
	if patch.FontSize != nil {
		if err := validateFontSize(*patch.FontSize); err != nil {
			return s.Get(), err
		}
	}
	return s.update(ctx, func(st *database.Settings) {
		if patch.Theme != nil {
			st.Theme = *patch.Theme
		}
		if patch.Language != nil {
			st.Language = *patch.Language
		}
		if patch.FontSize != nil {
			st.FontSize = *patch.FontSize
		}
		if patch.Notifications != nil {
			st.Notifications = *patch.Notifications
		}
		if patch.SoundEffects != nil {
			st.SoundEffects = *patch.SoundEffects
		}
		if patch.AnimationsEnabled != nil {
			st.AnimationsEnabled = *patch.AnimationsEnabled
		}
	})
}

// Apply resolves the current settings. The system theme is asked of the
// preference collaborator on every call.
func (s *SettingsService) Apply() Appearance {
	st := s.Get()

	dark := st.Theme == database.ThemeDark
	if st.Theme == database.ThemeSystem {
		dark = s.preference.PrefersDark()
	}

	px := 16
	switch st.FontSize {
	case database.FontSmall:
		px = 14
	case database.FontLarge:
		px = 18
	}

	return Appearance{Dark: dark, FontSizePx: px, Animations: st.AnimationsEnabled}
}

func (s *SettingsService) update(ctx context.Context, mutate func(*database.Settings)) (database.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.settings
	mutate(&next)
	if err := database.SaveJSON(ctx, s.store, database.KeySettings, next); err != nil {
		return s.settings, err
	}
	s.settings = next
	return next, nil
}

func validateTheme(theme database.Theme) error {
	switch theme {
	case database.ThemeLight, database.ThemeDark, database.ThemeSystem:
		return nil
	}
	return fmt.Errorf("theme %q: %w", theme, ErrInvalidSetting)
}

func validateLanguage(language database.Language) error {
	switch language {
	case database.LanguageEN, database.LanguageES, database.LanguageFR, database.LanguageDE:
		return nil
	}
	return fmt.Errorf("language %q: %w", language, ErrInvalidSetting)
}

func validateFontSize(size database.FontSize) error {
	switch size {
	case database.FontSmall, database.FontMedium, database.FontLarge:
		return nil
	}
	return fmt.Errorf("font size %q: %w", size, ErrInvalidSetting)
}
