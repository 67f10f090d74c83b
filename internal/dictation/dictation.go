// Package dictation captures voice-to-text transcripts from a local
// speech-to-text server over a websocket. The capability is optional: the
// adapter is only constructed when a server address is configured, and its
// absence means the mic affordance is never shown.
package dictation

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// localeByLanguage maps a generation language to its recognizer locale.
var localeByLanguage = map[string]string{
	"English": "en-US",
	"Hindi":   "hi-IN",
	"Spanish": "es-ES",
	"French":  "fr-FR",
	"German":  "de-DE",
	"Tamil":   "ta-IN",
	"Marathi": "mr-IN",
}

// DefaultLocale is used when the selected language has no mapping.
const DefaultLocale = "en-US"

// LocaleFor resolves the recognizer locale for a language, falling back to
// DefaultLocale for anything unrecognized or unset.
func LocaleFor(language string) string {
	if locale, ok := localeByLanguage[language]; ok {
		return locale
	}
	return DefaultLocale
}

// ErrStopped is returned by Capture when Stop ends the capture before a
// finalized transcript arrives. Callers treat it as a silent cancel.
var ErrStopped = errors.New("dictation: capture stopped")

// startRequest is the first message sent after connecting.
type startRequest struct {
	Locale string `json:"locale"`
}

// transcriptMessage is what the server streams back. Non-final messages are
// interim hypotheses and are ignored.
type transcriptMessage struct {
	Text  string `json:"text"`
	Final bool   `json:"final"`
}

// Adapter captures one utterance at a time from a speech-to-text server.
type Adapter struct {
	url    string
	dialer *websocket.Dialer
	logger *slog.Logger

	mu   sync.Mutex
	conn *websocket.Conn // non-nil while capturing
}

// New creates an adapter for the server at url (ws:// or wss://).
func New(url string) *Adapter {
	return &Adapter{
		url: url,
		dialer: &websocket.Dialer{
			HandshakeTimeout: 5 * time.Second,
		},
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// SetLogger replaces the adapter logger.
func (a *Adapter) SetLogger(l *slog.Logger) {
	a.logger = l
}

// Capturing reports whether a capture is in progress.
func (a *Adapter) Capturing() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.conn != nil
}

// Capture performs one single-shot capture: connect, announce the locale
// resolved from language, then block until the server sends a finalized
// transcript. Only one capture may be active; a second call while capturing
// fails immediately.
func (a *Adapter) Capture(ctx context.Context, language string) (string, error) {
	locale := LocaleFor(language)

	conn, _, err := a.dialer.DialContext(ctx, a.url, nil)
	if err != nil {
		return "", fmt.Errorf("dictation: connecting to %s: %w", a.url, err)
	}

	a.mu.Lock()
	if a.conn != nil {
		a.mu.Unlock()
		conn.Close()
		return "", errors.New("dictation: capture already in progress")
	}
	a.conn = conn
	a.mu.Unlock()

	defer func() {
		a.mu.Lock()
		if a.conn == conn {
			a.conn = nil
		}
		a.mu.Unlock()
		conn.Close()
	}()

	if err := conn.WriteJSON(startRequest{Locale: locale}); err != nil {
		return "", fmt.Errorf("dictation: sending locale: %w", err)
	}
	a.logger.Debug("capture started", "locale", locale)

	for {
		var msg transcriptMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if !a.stillCapturing(conn) {
				return "", ErrStopped
			}
			return "", fmt.Errorf("dictation: reading transcript: %w", err)
		}
		if msg.Final {
			a.logger.Debug("capture finalized", "length", len(msg.Text))
			return msg.Text, nil
		}
	}
}

// Stop ends the active capture, if any. The blocked Capture call returns
// ErrStopped. Stopping when idle is a no-op.
func (a *Adapter) Stop() {
	a.mu.Lock()
	conn := a.conn
	a.conn = nil
	a.mu.Unlock()

	if conn != nil {
		conn.Close()
	}
}

func (a *Adapter) stillCapturing(conn *websocket.Conn) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.conn == conn
}

// AppendTranscript merges a finalized transcript into existing field
// content: appended space-separated when the field already has text,
// replacing it when empty.
func AppendTranscript(existing, transcript string) string {
	if existing == "" {
		return transcript
	}
	return existing + " " + transcript
}
