package prefs

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/mapleime/doctor-portal/internal/http/middleware"
)

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewStore(rdb), mr
}

func TestWallpaperDefault(t *testing.T) {
	store, _ := newTestStore(t)
	theme, err := store.Wallpaper(context.Background(), "doc-1")
	if err != nil {
		t.Fatalf("Wallpaper: %v", err)
	}
	if theme != DefaultTheme {
		t.Errorf("unset preference defaults to %q, got %q", DefaultTheme, theme)
	}
}

func TestWallpaperRoundTrip(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	if err := store.SetWallpaper(ctx, "doc-1", ThemeOcean); err != nil {
		t.Fatalf("SetWallpaper: %v", err)
	}
	theme, err := store.Wallpaper(ctx, "doc-1")
	if err != nil {
		t.Fatalf("Wallpaper: %v", err)
	}
	if theme != ThemeOcean {
		t.Errorf("expected %q, got %q", ThemeOcean, theme)
	}

	// Other doctors keep their own preference.
	other, err := store.Wallpaper(ctx, "doc-2")
	if err != nil {
		t.Fatalf("Wallpaper: %v", err)
	}
	if other != DefaultTheme {
		t.Errorf("preferences must not leak across doctors, got %q", other)
	}
}

func TestSetWallpaperRejectsUnknownTheme(t *testing.T) {
	store, _ := newTestStore(t)
	if err := store.SetWallpaper(context.Background(), "doc-1", "lava"); err == nil {
		t.Fatal("expected error for unknown theme")
	}
}

func TestWallpaperUnknownPersistedValue(t *testing.T) {
	store, mr := newTestStore(t)
	mr.Set("wallpaper:doc-1", "retired-theme")

	theme, err := store.Wallpaper(context.Background(), "doc-1")
	if err != nil {
		t.Fatalf("Wallpaper: %v", err)
	}
	if theme != DefaultTheme {
		t.Errorf("retired theme falls back to default, got %q", theme)
	}
}

func sessionRequest(method, target, body string) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	return req.WithContext(middleware.ContextWithSession(req.Context(), middleware.SessionClaims{
		MapleIMEReferenceID: "doc-1",
	}))
}

func TestHandlerRoundTrip(t *testing.T) {
	store, _ := newTestStore(t)
	h := NewHandler(store, nil)

	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, sessionRequest(http.MethodPut, "/wallpaper", `{"theme":"sakura"}`))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, sessionRequest(http.MethodGet, "/wallpaper", ""))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp wallpaperResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Theme != ThemeSakura {
		t.Errorf("expected sakura, got %q", resp.Theme)
	}
	if len(resp.Themes) != 4 {
		t.Errorf("expected 4 selectable themes, got %v", resp.Themes)
	}
}

func TestHandlerRejectsUnknownTheme(t *testing.T) {
	store, _ := newTestStore(t)
	h := NewHandler(store, nil)

	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, sessionRequest(http.MethodPut, "/wallpaper", `{"theme":"lava"}`))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}
