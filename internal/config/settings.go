package config

import (
	"os"
)

// Default values for every setting; a missing config file still yields a
// working client pointed at a local backend.
const (
	DefaultAPIBaseURL   = "http://127.0.0.1:5001"
	DefaultLanguage     = "English"
	DefaultPosterFormat = "Square"
)

// Settings is the resolved, typed view of the options the client cares
// about. Resolution order per key: environment variable, then config file,
// then default.
type Settings struct {
	// APIBaseURL is the base URL of the remote generation service.
	APIBaseURL string
	// AuthRequired controls whether the request gateway attaches tokens and
	// intercepts authorization failures. When false the gateway degrades to
	// a pass-through and the login surface is never shown.
	AuthRequired bool
	// Language is the default generation/dictation language.
	Language string
	// PosterFormat is the default poster format sent with poster requests.
	PosterFormat string
	// DictationURL is the websocket address of a local speech-to-text
	// server. Empty means dictation is unavailable.
	DictationURL string
	// DownloadDir is where poster images are saved. Empty means the
	// working directory.
	DownloadDir string
}

// Settings resolves the typed settings from this configuration plus the
// process environment.
func (c *Config) Settings() Settings {
	s := Settings{
		APIBaseURL:   DefaultAPIBaseURL,
		AuthRequired: true,
		Language:     DefaultLanguage,
		PosterFormat: DefaultPosterFormat,
	}

	if v, ok := c.resolve("api-base-url", "ADSCRIBE_API_BASE_URL"); ok {
		s.APIBaseURL = v
	}
	if v, ok := c.resolve("auth", "ADSCRIBE_AUTH"); ok {
		if b, err := parseBool(v); err == nil {
			s.AuthRequired = b
		}
	}
	if v, ok := c.resolve("language", "ADSCRIBE_LANGUAGE"); ok {
		s.Language = v
	}
	if v, ok := c.resolve("poster-format", "ADSCRIBE_POSTER_FORMAT"); ok {
		s.PosterFormat = v
	}
	if v, ok := c.resolve("dictation-url", "ADSCRIBE_DICTATION_URL"); ok {
		s.DictationURL = v
	}
	if v, ok := c.resolve("download-dir", "ADSCRIBE_DOWNLOAD_DIR"); ok {
		s.DownloadDir = v
	}

	return s
}

// resolve looks up a setting by environment variable first, then the global
// config section.
func (c *Config) resolve(key, envVar string) (string, bool) {
	if v := os.Getenv(envVar); v != "" {
		return v, true
	}
	return c.GetGlobalOption(key)
}
