package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestConfigParsing(t *testing.T) {
	configContent := `# Global options
api-base-url https://ads.example.com
language Hindi

[chat]
download-dir /tmp/posters

[login]
auth true`

	config, err := LoadFromReader(strings.NewReader(configContent))
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if value, ok := config.GetGlobalOption("api-base-url"); !ok || value != "https://ads.example.com" {
		t.Errorf("Expected api-base-url=https://ads.example.com, got %s (exists: %v)", value, ok)
	}

	if value, ok := config.GetGlobalOption("language"); !ok || value != "Hindi" {
		t.Errorf("Expected language=Hindi, got %s (exists: %v)", value, ok)
	}

	if value, ok := config.GetCommandOption("chat", "download-dir"); !ok || value != "/tmp/posters" {
		t.Errorf("Expected chat.download-dir=/tmp/posters, got %s (exists: %v)", value, ok)
	}

	// Command options fall back to global options.
	if value, ok := config.GetCommandOption("chat", "language"); !ok || value != "Hindi" {
		t.Errorf("Expected chat.language=Hindi (fallback), got %s (exists: %v)", value, ok)
	}

	if value, ok := config.GetCommandOption("nonexistent", "option"); ok {
		t.Errorf("Expected nonexistent option to not exist, but got %s", value)
	}
}

func TestEmptyConfig(t *testing.T) {
	config, err := LoadFromReader(strings.NewReader(""))
	if err != nil {
		t.Fatalf("Failed to load empty config: %v", err)
	}
	if len(config.Global) != 0 || len(config.Commands) != 0 {
		t.Error("Expected empty config to have no options")
	}
}

func TestValueWithSpaces(t *testing.T) {
	config, err := LoadFromReader(strings.NewReader("download-dir /home/u/My Posters\n"))
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if value, _ := config.GetGlobalOption("download-dir"); value != "/home/u/My Posters" {
		t.Errorf("Expected value with spaces preserved, got %q", value)
	}
}

func TestLoadFromPathMissingFile(t *testing.T) {
	config, err := LoadFromPath(filepath.Join(t.TempDir(), "no-such-config"))
	if err != nil {
		t.Fatalf("Missing config should not be an error: %v", err)
	}
	if config == nil {
		t.Fatal("Expected empty config for missing file")
	}
}

func TestLoadFromPathRejectsSymlink(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "real")
	link := filepath.Join(dir, "link")
	if err := os.WriteFile(target, []byte("language Tamil\n"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if err := os.Symlink(target, link); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	if _, err := LoadFromPath(link); err == nil {
		t.Error("Expected symlinked config path to be rejected")
	}
}

func TestSettingsDefaults(t *testing.T) {
	s := NewConfig().Settings()

	if s.APIBaseURL != DefaultAPIBaseURL {
		t.Errorf("Expected default base URL, got %q", s.APIBaseURL)
	}
	if !s.AuthRequired {
		t.Error("Expected auth to default to required")
	}
	if s.Language != "English" {
		t.Errorf("Expected default language English, got %q", s.Language)
	}
	if s.PosterFormat != "Square" {
		t.Errorf("Expected default poster format Square, got %q", s.PosterFormat)
	}
	if s.DictationURL != "" {
		t.Errorf("Expected dictation disabled by default, got %q", s.DictationURL)
	}
}

func TestSettingsFromFileAndEnv(t *testing.T) {
	config, err := LoadFromReader(strings.NewReader(`api-base-url https://file.example.com
auth false
dictation-url ws://localhost:2700
`))
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	// Environment overrides the file.
	t.Setenv("ADSCRIBE_API_BASE_URL", "https://env.example.com")

	s := config.Settings()
	if s.APIBaseURL != "https://env.example.com" {
		t.Errorf("Expected env to win, got %q", s.APIBaseURL)
	}
	if s.AuthRequired {
		t.Error("Expected auth false from file")
	}
	if s.DictationURL != "ws://localhost:2700" {
		t.Errorf("Expected dictation URL from file, got %q", s.DictationURL)
	}
}

func TestParseBool(t *testing.T) {
	truthy := []string{"true", "1", "yes", "on", "TRUE", "Yes"}
	falsy := []string{"false", "0", "no", "off", "FALSE", "No"}

	for _, v := range truthy {
		if b, err := parseBool(v); err != nil || !b {
			t.Errorf("parseBool(%q) = %v, %v; want true", v, b, err)
		}
	}
	for _, v := range falsy {
		if b, err := parseBool(v); err != nil || b {
			t.Errorf("parseBool(%q) = %v, %v; want false", v, b, err)
		}
	}
	if _, err := parseBool("maybe"); err == nil {
		t.Error("Expected error for invalid boolean")
	}
}
