package prefs

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// Wallpaper themes the dashboard offers. DefaultTheme renders the plain
// background.
const (
	DefaultTheme = "none"
	ThemeOcean   = "ocean"
	ThemeSakura  = "sakura"
	ThemeNature  = "nature"
)

var knownThemes = map[string]struct{}{
	DefaultTheme: {},
	ThemeOcean:   {},
	ThemeSakura:  {},
	ThemeNature:  {},
}

// KnownTheme reports whether theme is one the dashboard can render.
func KnownTheme(theme string) bool {
	_, ok := knownThemes[theme]
	return ok
}

// Themes lists the selectable themes in display order.
func Themes() []string {
	return []string{DefaultTheme, ThemeOcean, ThemeSakura, ThemeNature}
}

// Store persists per-doctor display preferences in Redis. Preferences
// have no TTL; they live until the doctor changes them.
type Store struct {
	redis  *redis.Client
	tracer trace.Tracer
}

func NewStore(rdb *redis.Client) *Store {
	if rdb == nil {
		panic("prefs: redis client cannot be nil")
	}
	return &Store{
		redis:  rdb,
		tracer: otel.Tracer("mapleime.prefs"),
	}
}

// Wallpaper returns the doctor's saved theme, or DefaultTheme when unset.
// An unknown persisted value also falls back to the default so a removed
// theme never breaks rendering.
func (s *Store) Wallpaper(ctx context.Context, doctorID string) (string, error) {
	ctx, span := s.tracer.Start(ctx, "prefs.wallpaper")
	defer span.End()

	theme, err := s.redis.Get(ctx, wallpaperKey(doctorID)).Result()
	if err != nil {
		if err == redis.Nil {
			return DefaultTheme, nil
		}
		span.RecordError(err)
		return DefaultTheme, fmt.Errorf("prefs: load wallpaper: %w", err)
	}
	if !KnownTheme(theme) {
		return DefaultTheme, nil
	}
	return theme, nil
}

// SetWallpaper saves the doctor's theme choice.
func (s *Store) SetWallpaper(ctx context.Context, doctorID, theme string) error {
	ctx, span := s.tracer.Start(ctx, "prefs.set_wallpaper")
	defer span.End()

	if !KnownTheme(theme) {
		return fmt.Errorf("prefs: unknown theme %q", theme)
	}
	if err := s.redis.Set(ctx, wallpaperKey(doctorID), theme, 0).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("prefs: persist wallpaper: %w", err)
	}
	return nil
}

func wallpaperKey(doctorID string) string {
	return "wallpaper:" + doctorID
}
