package services

import (
	"context"
	"errors"
	"testing"

	"emoheal/internal/database"
	"emoheal/internal/logger"
)

type switchPreference struct{ dark bool }

func (p *switchPreference) PrefersDark() bool { return p.dark }

func TestSettingsDefaults(t *testing.T) {
	s := NewSettingsService(database.NewMemoryStore(), logger.Nop(), nil)
	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := s.Get(); got != database.DefaultSettings() {
		t.Fatalf("expected defaults, got %+v", got)
	}
	if got := s.Apply(); got != (Appearance{Dark: false, FontSizePx: 16, Animations: true}) {
		t.Fatalf("unexpected appearance %+v", got)
	}
}

func TestSettingsUpdatesPersist(t *testing.T) {
	ctx := context.Background()
	store := database.NewMemoryStore()
	s := NewSettingsService(store, logger.Nop(), nil)

	steps := []func() (database.Settings, error){
		func() (database.Settings, error) { return s.UpdateTheme(ctx, database.ThemeDark) },
		func() (database.Settings, error) { return s.ToggleNotifications(ctx) },
		func() (database.Settings, error) { return s.ToggleSoundEffects(ctx) },
		func() (database.Settings, error) { return s.UpdateLanguage(ctx, database.LanguageFR) },
		func() (database.Settings, error) { return s.UpdateFontSize(ctx, database.FontLarge) },
		func() (database.Settings, error) { return s.ToggleAnimations(ctx) },
	}
	for i, step := range steps {
		if _, err := step(); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
	}

	want := database.Settings{
		Theme:             database.ThemeDark,
		Notifications:     false,
		SoundEffects:      false,
		Language:          database.LanguageFR,
		FontSize:          database.FontLarge,
		AnimationsEnabled: false,
	}
	reloaded := NewSettingsService(store, logger.Nop(), nil)
	if err := reloaded.Load(ctx); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := reloaded.Get(); got != want {
		t.Fatalf("reloaded %+v, want %+v", got, want)
	}
	if got := reloaded.Apply(); got != (Appearance{Dark: true, FontSizePx: 18, Animations: false}) {
		t.Fatalf("unexpected appearance %+v", got)
	}
}

func TestSettingsRejectInvalidValues(t *testing.T) {
	ctx := context.Background()
	s := NewSettingsService(database.NewMemoryStore(), logger.Nop(), nil)

	if _, err := s.UpdateTheme(ctx, database.Theme("neon")); !errors.Is(err, ErrInvalidSetting) {
		t.Errorf("theme: expected ErrInvalidSetting, got %v", err)
	}
	if _, err := s.UpdateLanguage(ctx, database.Language("xx")); !errors.Is(err, ErrInvalidSetting) {
		t.Errorf("language: expected ErrInvalidSetting, got %v", err)
	}
	if _, err := s.UpdateFontSize(ctx, database.FontSize("huge")); !errors.Is(err, ErrInvalidSetting) {
		t.Errorf("font size: expected ErrInvalidSetting, got %v", err)
	}
	if s.Get() != database.DefaultSettings() {
		t.Fatal("rejected updates must not change settings")
	}
}

func TestApplySystemThemeFollowsPreference(t *testing.T) {
	ctx := context.Background()
	pref := &switchPreference{}
	s := NewSettingsService(database.NewMemoryStore(), logger.Nop(), pref)
	if _, err := s.UpdateTheme(ctx, database.ThemeSystem); err != nil {
		t.Fatalf("UpdateTheme: %v", err)
	}
	if s.Apply().Dark {
		t.Fatal("expected light while the host prefers light")
	}
	pref.dark = true
	if !s.Apply().Dark {
		t.Fatal("expected dark once the host prefers dark")
	}
}

func TestSettingsMalformedBlobUsesDefaults(t *testing.T) {
	ctx := context.Background()
	store := database.NewMemoryStore()
	if err := store.Put(ctx, database.KeySettings, "{"); err != nil {
		t.Fatalf("Put: %v", err)
	}
	s := NewSettingsService(store, logger.Nop(), nil)
	if err := s.Load(ctx); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Get() != database.DefaultSettings() {
		t.Fatalf("expected defaults, got %+v", s.Get())
	}
}

func TestSettingsUpdateIsAllOrNothing(t *testing.T) {
	ctx := context.Background()
	store := database.NewMemoryStore()
	s := NewSettingsService(store, logger.Nop(), nil)

	dark := database.ThemeDark
	bad := database.Language("klingon")
	if _, err := s.Update(ctx, SettingsPatch{Theme: &dark, Language: &bad}); !errors.Is(err, ErrInvalidSetting) {
		t.Fatalf("expected ErrInvalidSetting, got %v", err)
	}
	if got := s.Get(); got != database.DefaultSettings() {
		t.Fatalf("rejected patch changed settings: %+v", got)
	}
	if _, err := store.Get(ctx, database.KeySettings); !errors.Is(err, database.ErrNotFound) {
		t.Fatalf("rejected patch was persisted: %v", err)
	}

	fr := database.LanguageFR
	off := false
	got, err := s.Update(ctx, SettingsPatch{Theme: &dark, Language: &fr, AnimationsEnabled: &off})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	want := database.DefaultSettings()
	want.Theme, want.Language, want.AnimationsEnabled = dark, fr, false
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}
