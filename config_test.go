package pubsite

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if !reflect.DeepEqual(cfg.Locales, []string{"sv", "en"}) {
		t.Errorf("Locales = %v", cfg.Locales)
	}
	if cfg.FallbackLocale != "sv" {
		t.Errorf("FallbackLocale = %q", cfg.FallbackLocale)
	}
	if cfg.PostCacheTTL != 5*time.Minute {
		t.Errorf("PostCacheTTL = %v", cfg.PostCacheTTL)
	}
	if !reflect.DeepEqual(cfg.GonePaths, []string{"/app"}) {
		t.Errorf("GonePaths = %v", cfg.GonePaths)
	}
}

func TestLoadConfigDotenvAndEnvironment(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, ".env")
	dotenv := "SITE_NAME=Dotenv Site\nCONTACT_RATE_LIMIT=9\nGONE_PATHS=/app,/beta\n"
	if err := os.WriteFile(file, []byte(dotenv), 0o600); err != nil {
		t.Fatal(err)
	}
	// The real environment wins over the file.
	t.Setenv("SITE_NAME", "Env Site")
	t.Setenv("CONTACT_RATE_WINDOW", "10m")
	t.Setenv("CONTACT_RATE_LIMIT", "")
	os.Unsetenv("CONTACT_RATE_LIMIT")
	t.Setenv("GONE_PATHS", "")
	os.Unsetenv("GONE_PATHS")

	cfg, err := LoadConfig(file)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Name != "Env Site" {
		t.Errorf("Name = %q", cfg.Name)
	}
	if cfg.ContactRateLimit != 9 {
		t.Errorf("ContactRateLimit = %d", cfg.ContactRateLimit)
	}
	if cfg.ContactRateWindow != 10*time.Minute {
		t.Errorf("ContactRateWindow = %v", cfg.ContactRateWindow)
	}
	if !reflect.DeepEqual(cfg.GonePaths, []string{"/app", "/beta"}) {
		t.Errorf("GonePaths = %v", cfg.GonePaths)
	}
}

func TestLoadConfigRejectsBadValues(t *testing.T) {
	t.Setenv("POST_CACHE_TTL", "soon")
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "none.env")); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestLoadConfigRejectsNonPositiveRateLimits(t *testing.T) {
	tests := map[string]string{
		"CONTACT_RATE_LIMIT":  "-1",
		"CONTACT_RATE_WINDOW": "-5m",
		"POST_CACHE_TTL":      "-1s",
	}
	for name, value := range tests {
		t.Run(name, func(t *testing.T) {
			t.Setenv(name, value)
			_, err := LoadConfig(filepath.Join(t.TempDir(), "none.env"))
			if err == nil || !strings.Contains(err.Error(), name) {
				t.Fatalf("LoadConfig error = %v, want one naming %s", err, name)
			}
		})
	}

	t.Run("explicit zero limit", func(t *testing.T) {
		t.Setenv("CONTACT_RATE_LIMIT", "0")
		if _, err := LoadConfig(filepath.Join(t.TempDir(), "none.env")); err == nil {
			t.Fatal("expected zero CONTACT_RATE_LIMIT to be rejected")
		}
	})
}

func TestValidateAcceptsDefaults(t *testing.T) {
	var cfg SiteConfig
	cfg.setDefaults()
	if err := cfg.validate(); err != nil {
		t.Fatalf("validate defaults: %v", err)
	}
	cfg.ContactRateWindow = -time.Minute
	if err := cfg.validate(); err == nil {
		t.Fatal("expected negative window to be rejected")
	}
}

func TestSetDefaultsFallbackFollowsFirstLocale(t *testing.T) {
	cfg := SiteConfig{Locales: []string{"en", "sv"}}
	cfg.setDefaults()
	if cfg.FallbackLocale != "en" {
		t.Errorf("FallbackLocale = %q, want en", cfg.FallbackLocale)
	}
	if cfg.ContactRateLimit != 5 || cfg.ContactRateWindow != time.Hour {
		t.Errorf("rate limit defaults = %d per %v", cfg.ContactRateLimit, cfg.ContactRateWindow)
	}
}

func TestContactRules(t *testing.T) {
	if rules := (SiteConfig{}).contactRules(); len(rules.Subjects) != 0 {
		t.Errorf("subject should be optional by default, got %v", rules.Subjects)
	}
	if rules := (SiteConfig{ContactRequireSubject: true}).contactRules(); len(rules.Subjects) == 0 {
		t.Error("ContactRequireSubject should restrict subjects")
	}
}
