package chat

import (
	"context"
	"fmt"
	"io"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/joeycumines/adscribe/internal/api"
	"github.com/joeycumines/adscribe/internal/config"
	"github.com/joeycumines/adscribe/internal/dictation"
	"github.com/joeycumines/adscribe/internal/session"
)

type fakeGenerator struct {
	auth bool

	loginCalls   int
	loginErr     error
	analyzeCalls int
	analysis     *api.AnalysisResult
	analyzeErr   error
	sloganCalls  int
	slogan       *api.SloganResult
	sloganErr    error
	posterCalls  int
	poster       *api.PosterResult
	posterErr    error
}

func (f *fakeGenerator) Login(ctx context.Context, username, password string) error {
	f.loginCalls++
	return f.loginErr
}

func (f *fakeGenerator) AnalyzeImage(ctx context.Context, filename string, r io.Reader) (*api.AnalysisResult, error) {
	f.analyzeCalls++
	return f.analysis, f.analyzeErr
}

func (f *fakeGenerator) GenerateSlogan(ctx context.Context, req api.GenerationRequest) (*api.SloganResult, error) {
	f.sloganCalls++
	return f.slogan, f.sloganErr
}

func (f *fakeGenerator) GeneratePoster(ctx context.Context, req api.GenerationRequest) (*api.PosterResult, error) {
	f.posterCalls++
	return f.poster, f.posterErr
}

func (f *fakeGenerator) RequiresAuth() bool { return f.auth }

func newTestModel(t *testing.T, gen generator, token string) Model {
	t.Helper()
	store := session.NewMemoryStore()
	if token != "" {
		if err := store.Set(token); err != nil {
			t.Fatal(err)
		}
	}
	m := New(gen, store, nil, config.Settings{
		Language:     DefaultLanguage,
		PosterFormat: "Square",
	})
	return apply(t, m, tea.WindowSizeMsg{Width: 100, Height: 40})
}

func apply(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	out, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T, want chat.Model", next)
	}
	return out
}

func press(t *testing.T, m Model, key tea.KeyMsg) Model {
	t.Helper()
	return apply(t, m, key)
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// openManual drives a fresh model to the manual form.
func openManual(t *testing.T, m Model) Model {
	t.Helper()
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m = press(t, m, runes("m"))
	if m.CurrentMode() != ModeManual {
		t.Fatalf("mode = %v, want ModeManual", m.CurrentMode())
	}
	return m
}

func lastEntries(m Model, n int) []Entry {
	entries := m.Transcript().Entries()
	if len(entries) < n {
		return entries
	}
	return entries[len(entries)-n:]
}

func TestLoginOverlayVisibility(t *testing.T) {
	t.Run("shown when auth required and no session", func(t *testing.T) {
		m := newTestModel(t, &fakeGenerator{auth: true}, "")
		if !m.LoginVisible() {
			t.Error("login overlay should be visible")
		}
	})
	t.Run("hidden when a session exists", func(t *testing.T) {
		m := newTestModel(t, &fakeGenerator{auth: true}, "tok-1")
		if m.LoginVisible() {
			t.Error("login overlay should not be visible")
		}
	})
	t.Run("hidden when auth disabled", func(t *testing.T) {
		m := newTestModel(t, &fakeGenerator{auth: false}, "")
		if m.LoginVisible() {
			t.Error("login overlay should not be visible")
		}
	})
}

func TestLoginSubmitRejectsEmptyFields(t *testing.T) {
	gen := &fakeGenerator{auth: true}
	m := newTestModel(t, gen, "")

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(Model)
	if cmd != nil {
		t.Error("empty login produced a command")
	}
	if gen.loginCalls != 0 {
		t.Errorf("loginCalls = %d, want 0", gen.loginCalls)
	}
	if m.loginErr == "" {
		t.Error("expected a validation message")
	}
}

func TestLoginCompletion(t *testing.T) {
	t.Run("success hides overlay", func(t *testing.T) {
		m := newTestModel(t, &fakeGenerator{auth: true}, "")
		m.loginBusy = true
		m = apply(t, m, loginDoneMsg{})
		if m.LoginVisible() {
			t.Error("overlay still visible after successful login")
		}
	})
	t.Run("service error shown verbatim", func(t *testing.T) {
		m := newTestModel(t, &fakeGenerator{auth: true}, "")
		m = apply(t, m, loginDoneMsg{err: &api.APIError{Message: "Invalid Credentials"}})
		if m.loginErr != "❌ Invalid Credentials" {
			t.Errorf("loginErr = %q", m.loginErr)
		}
		if !m.LoginVisible() {
			t.Error("overlay should remain visible")
		}
	})
	t.Run("transport failure shows connection message", func(t *testing.T) {
		m := newTestModel(t, &fakeGenerator{auth: true}, "")
		m = apply(t, m, loginDoneMsg{err: fmt.Errorf("%w: refused", api.ErrNetwork)})
		if m.loginErr != msgLoginNetwork {
			t.Errorf("loginErr = %q, want %q", m.loginErr, msgLoginNetwork)
		}
	})
}

func TestOpenChatShowsGreetingAndDefaultLanguage(t *testing.T) {
	m := newTestModel(t, &fakeGenerator{}, "")
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	if m.CurrentMode() != ModeChoosing {
		t.Fatalf("mode = %v, want ModeChoosing", m.CurrentMode())
	}
	entries := m.Transcript().Entries()
	if len(entries) != 1 || entries[0].Content != greeting {
		t.Errorf("transcript = %+v, want single greeting", entries)
	}
	if m.Language() != "English" {
		t.Errorf("Language() = %q, want English", m.Language())
	}
}

func TestLanguageSelectorCyclesAndWraps(t *testing.T) {
	m := newTestModel(t, &fakeGenerator{}, "")
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	m = press(t, m, tea.KeyMsg{Type: tea.KeyRight})
	if m.Language() != "Hindi" {
		t.Errorf("after right: %q, want Hindi", m.Language())
	}
	m = press(t, m, tea.KeyMsg{Type: tea.KeyLeft})
	m = press(t, m, tea.KeyMsg{Type: tea.KeyLeft})
	if m.Language() != "Marathi" {
		t.Errorf("after wrap left: %q, want Marathi", m.Language())
	}
}

func TestManualModeSelectionAppendsEntries(t *testing.T) {
	m := newTestModel(t, &fakeGenerator{}, "")
	m = openManual(t, m)

	got := lastEntries(m, 2)
	if got[0].Content != "✍️ Manual Mode selected (English)." || got[0].Role != RoleUser {
		t.Errorf("entry = %+v", got[0])
	}
	if got[1].Content != "Okay! Fill in the form below." || got[1].Role != RoleBot {
		t.Errorf("entry = %+v", got[1])
	}
}

func TestValidationBlocksSubmission(t *testing.T) {
	gen := &fakeGenerator{}
	m := newTestModel(t, gen, "")
	m = openManual(t, m)
	m.business.SetValue("   ")

	before := m.Transcript().Len()
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlG})
	m = next.(Model)

	if cmd != nil {
		t.Error("invalid form produced a command")
	}
	if gen.sloganCalls != 0 {
		t.Errorf("sloganCalls = %d, want 0", gen.sloganCalls)
	}
	if m.notice != msgValidation {
		t.Errorf("notice = %q, want %q", m.notice, msgValidation)
	}
	if m.CurrentMode() != ModeManual {
		t.Errorf("mode changed to %v", m.CurrentMode())
	}
	if m.Transcript().Len() != before {
		t.Error("validation failure appended transcript entries")
	}
}

func TestSloganSubmissionAndResult(t *testing.T) {
	m := newTestModel(t, &fakeGenerator{}, "")
	m = openManual(t, m)
	m.business.SetValue("Cafe")
	m.desc.SetValue("A cozy coffee shop")

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlG})
	m = next.(Model)
	if cmd == nil {
		t.Fatal("valid submission produced no command")
	}
	if m.CurrentMode() != ModeAwaiting {
		t.Errorf("mode = %v, want ModeAwaiting", m.CurrentMode())
	}
	if got := lastEntries(m, 1)[0]; got.Content != "📝 Generating English slogan..." {
		t.Errorf("request entry = %q", got.Content)
	}

	m = apply(t, m, sloganDoneMsg{result: &api.SloganResult{Slogan: "Brew Happiness"}})
	if m.CurrentMode() != ModeManual {
		t.Errorf("mode after result = %v, want ModeManual", m.CurrentMode())
	}
	if got := lastEntries(m, 1)[0]; got.Content != `✨ "Brew Happiness"` {
		t.Errorf("result entry = %q", got.Content)
	}
}

func TestPosterResultEntryOrdering(t *testing.T) {
	m := newTestModel(t, &fakeGenerator{}, "")
	m = openManual(t, m)
	m.posterBusy = true

	m = apply(t, m, posterDoneMsg{result: &api.PosterResult{
		ImageURL: "https://cdn.example.com/poster.jpg",
		Slogan:   "Brew Happiness",
	}})

	got := lastEntries(m, 3)
	if got[0].Content != "✨ Poster Ready!" {
		t.Errorf("entry 0 = %q", got[0].Content)
	}
	if got[1].Kind != KindImage || got[1].Content != "https://cdn.example.com/poster.jpg" {
		t.Errorf("entry 1 = %+v, want image entry", got[1])
	}
	if got[2].Content != `Slogan: "Brew Happiness"` {
		t.Errorf("entry 2 = %q", got[2].Content)
	}
}

func TestServiceErrorRenderedVerbatim(t *testing.T) {
	m := newTestModel(t, &fakeGenerator{}, "")
	m = openManual(t, m)
	m.sloganBusy = true

	m = apply(t, m, sloganDoneMsg{err: &api.APIError{Message: "Rate limit exceeded"}})
	if got := lastEntries(m, 1)[0]; got.Content != "❌ Error: Rate limit exceeded" {
		t.Errorf("entry = %q", got.Content)
	}
}

func TestNetworkFailureRenderedGenerically(t *testing.T) {
	m := newTestModel(t, &fakeGenerator{}, "")
	m = openManual(t, m)
	m.posterBusy = true

	m = apply(t, m, posterDoneMsg{err: fmt.Errorf("%w: connection refused", api.ErrNetwork)})
	if got := lastEntries(m, 1)[0]; got.Content != msgNetworkError {
		t.Errorf("entry = %q, want %q", got.Content, msgNetworkError)
	}
}

func TestAuthExpiryShowsSingleNoticeAndLogin(t *testing.T) {
	m := newTestModel(t, &fakeGenerator{auth: true}, "tok-1")
	m = openManual(t, m)
	m.sloganBusy = true

	m = apply(t, m, sloganDoneMsg{err: fmt.Errorf("%w", api.ErrUnauthorized)})

	if !m.LoginVisible() {
		t.Fatal("login overlay should be visible after auth expiry")
	}
	if m.loginErr != msgSessionExpired {
		t.Errorf("loginErr = %q, want %q", m.loginErr, msgSessionExpired)
	}
	var notices int
	for _, e := range m.Transcript().Entries() {
		if e.Content == msgSessionExpired {
			notices++
		}
	}
	if notices != 1 {
		t.Errorf("session-expired entries = %d, want exactly 1", notices)
	}
}

func TestAnalysisSuccessAutofillsForm(t *testing.T) {
	m := newTestModel(t, &fakeGenerator{}, "")
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m = press(t, m, runes("u"))
	m.analysisBusy = true

	m = apply(t, m, analysisDoneMsg{result: &api.AnalysisResult{
		BusinessType: "Cafe",
		Description:  "A cozy coffee shop",
	}})

	if m.CurrentMode() != ModeManual {
		t.Fatalf("mode = %v, want ModeManual", m.CurrentMode())
	}
	if m.business.Value() != "Cafe" {
		t.Errorf("business = %q, want Cafe", m.business.Value())
	}
	if m.desc.Value() != "A cozy coffee shop" {
		t.Errorf("description = %q", m.desc.Value())
	}
	got := lastEntries(m, 2)
	if got[0].Content != `I see: "A cozy coffee shop".` {
		t.Errorf("entry = %q", got[0].Content)
	}
}

func TestAnalysisFailureStillRevealsForm(t *testing.T) {
	m := newTestModel(t, &fakeGenerator{}, "")
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m = press(t, m, runes("u"))
	m.analysisBusy = true
	m.business.SetValue("Prefilled")

	m = apply(t, m, analysisDoneMsg{err: &api.APIError{Message: "Could not read image"}})

	if m.CurrentMode() != ModeManual {
		t.Errorf("mode = %v, want ModeManual", m.CurrentMode())
	}
	if got := lastEntries(m, 1)[0]; got.Content != "❌ Analysis failed: Could not read image" {
		t.Errorf("entry = %q", got.Content)
	}
	if m.business.Value() != "Prefilled" {
		t.Errorf("existing field was clobbered: %q", m.business.Value())
	}
}

func TestReopenResetsTranscriptAndLanguage(t *testing.T) {
	m := newTestModel(t, &fakeGenerator{}, "")
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m = press(t, m, tea.KeyMsg{Type: tea.KeyRight}) // Hindi
	m = press(t, m, runes("m"))
	if m.Transcript().Len() < 3 {
		t.Fatal("expected entries before close")
	}

	m = press(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.CurrentMode() != ModeIdle {
		t.Fatalf("mode = %v, want ModeIdle", m.CurrentMode())
	}

	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.CurrentMode() != ModeChoosing {
		t.Fatalf("mode = %v, want ModeChoosing", m.CurrentMode())
	}
	if m.Transcript().Len() != 1 {
		t.Errorf("transcript len = %d, want 1 (fresh greeting)", m.Transcript().Len())
	}
	if m.Language() != "English" {
		t.Errorf("Language() = %q, want selector reset to English", m.Language())
	}
}

func TestDictationTranscriptAppendsToDescription(t *testing.T) {
	m := newTestModel(t, &fakeGenerator{}, "")
	m = openManual(t, m)
	m.desc.SetValue("Good coffee")
	m.capturing = true
	m.desc.Placeholder = descListening

	m = apply(t, m, dictationDoneMsg{text: "fresh beans"})

	if m.desc.Value() != "Good coffee fresh beans" {
		t.Errorf("description = %q", m.desc.Value())
	}
	if m.capturing {
		t.Error("still capturing after completion")
	}
	if m.desc.Placeholder != descPlaceholder {
		t.Errorf("placeholder = %q, want restored", m.desc.Placeholder)
	}
}

func TestDictationStopIsSilent(t *testing.T) {
	m := newTestModel(t, &fakeGenerator{}, "")
	m = openManual(t, m)
	m.desc.SetValue("Keep me")
	m.capturing = true

	before := m.Transcript().Len()
	m = apply(t, m, dictationDoneMsg{err: dictation.ErrStopped})

	if m.desc.Value() != "Keep me" {
		t.Errorf("description = %q, want unchanged", m.desc.Value())
	}
	if m.Transcript().Len() != before {
		t.Error("stop appended transcript entries")
	}
	if m.notice != "" {
		t.Errorf("notice = %q, want none", m.notice)
	}
}

func TestSaveWithoutPoster(t *testing.T) {
	m := newTestModel(t, &fakeGenerator{}, "")
	m = openManual(t, m)

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlD})
	m = next.(Model)
	if cmd != nil {
		t.Error("save with no poster produced a command")
	}
	if m.notice != "No poster to save yet." {
		t.Errorf("notice = %q", m.notice)
	}
}

func TestSaveCompletionEntries(t *testing.T) {
	m := newTestModel(t, &fakeGenerator{}, "")
	m = openManual(t, m)
	m.saveBusy = true

	m = apply(t, m, saveDoneMsg{path: "/downloads/AdScribe_1.jpg"})
	if got := lastEntries(m, 1)[0]; got.Content != "Poster saved to /downloads/AdScribe_1.jpg." {
		t.Errorf("entry = %q", got.Content)
	}

	m.saveBusy = true
	m = apply(t, m, saveDoneMsg{err: fmt.Errorf("disk full")})
	if got := lastEntries(m, 1)[0]; got.Content != "❌ Could not save poster: disk full" {
		t.Errorf("entry = %q", got.Content)
	}
}

func TestDictationHiddenWithoutAdapter(t *testing.T) {
	m := newTestModel(t, &fakeGenerator{}, "")
	m = openManual(t, m)

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlR})
	m = next.(Model)
	if cmd != nil {
		t.Error("mic toggle produced a command with no adapter configured")
	}
	if m.capturing {
		t.Error("capturing without an adapter")
	}
}
