// Package chat implements the interactive chat surface: a finite set of
// input modes over one append-only transcript, backed by the api client.
// All state lives in the Model; the view is a pure projection of it.
package chat

import (
	"context"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/joeycumines/adscribe/internal/api"
	"github.com/joeycumines/adscribe/internal/config"
	"github.com/joeycumines/adscribe/internal/dictation"
	"github.com/joeycumines/adscribe/internal/session"
)

// Mode is the active input state of the chat surface. Exactly one mode is
// active; transitions happen only on user actions or request completions.
type Mode int

const (
	// ModeIdle: the chat surface is closed.
	ModeIdle Mode = iota
	// ModeChoosing: language selector plus the two entry affordances.
	ModeChoosing
	// ModeManual: the structured form is visible.
	ModeManual
	// ModeUpload: the file picker is open.
	ModeUpload
	// ModeAwaiting: at least one generation or analysis request is in
	// flight. The form stays visible; the triggering control is disabled.
	ModeAwaiting
)

const (
	greeting        = "Hi! Pick a language & start!"
	descPlaceholder = "Describe product details..."
	descListening   = "Listening... Speak now!"

	msgValidation     = "Please enter a Business Name and Product Description!"
	msgNetworkError   = "❌ Network Error."
	msgSessionExpired = "❌ Session expired. Please login again."
	msgLoginNetwork   = "❌ Connection Error. Is Backend Running?"
)

// generator is the slice of the api client the chat surface uses. It exists
// so tests can substitute a fake service.
type generator interface {
	Login(ctx context.Context, username, password string) error
	AnalyzeImage(ctx context.Context, filename string, r io.Reader) (*api.AnalysisResult, error)
	GenerateSlogan(ctx context.Context, req api.GenerationRequest) (*api.SloganResult, error)
	GeneratePoster(ctx context.Context, req api.GenerationRequest) (*api.PosterResult, error)
	RequiresAuth() bool
}

// form focus positions, in tab order.
const (
	focusBusiness = iota
	focusAdType
	focusDesc
	focusFormat
	focusCount
)

// login focus positions.
const (
	loginFocusUser = iota
	loginFocusPass
)

// Model is the bubbletea model for the chat surface.
type Model struct {
	client   generator
	store    session.Store
	dict     *dictation.Adapter // nil when the capability is unavailable
	settings config.Settings

	mode       Mode
	transcript *Transcript
	notice     string // synchronous validation notice, cleared on next action

	// chooser state
	langIndex int

	// form state
	business    textinput.Model
	desc        textarea.Model
	adTypeIndex int
	formatIndex int
	focus       int

	// per-control busy flags; a disabled control ignores its trigger
	sloganBusy   bool
	posterBusy   bool
	analysisBusy bool
	saveBusy     bool

	// dictation state
	capturing bool

	// login overlay state
	loginVisible bool
	loginBusy    bool
	loginErr     string
	loginUser    textinput.Model
	loginPass    textinput.Model
	loginFocus   int

	picker   filepicker.Model
	vp       viewport.Model
	spin     spinner.Model
	width    int
	height   int
	sized    bool
	quitting bool
}

// New builds the chat surface model. dict may be nil, in which case the mic
// affordance is never shown.
func New(client generator, store session.Store, dict *dictation.Adapter, settings config.Settings) Model {
	business := textinput.New()
	business.Placeholder = "Business name"
	business.CharLimit = 120
	business.Width = 40

	desc := textarea.New()
	desc.Placeholder = descPlaceholder
	desc.ShowLineNumbers = false
	desc.SetHeight(3)
	desc.SetWidth(60)

	loginUser := textinput.New()
	loginUser.Placeholder = "Username"
	loginUser.Width = 32

	loginPass := textinput.New()
	loginPass.Placeholder = "Password"
	loginPass.Width = 32
	loginPass.EchoMode = textinput.EchoPassword

	picker := filepicker.New()
	picker.AllowedTypes = []string{".jpg", ".jpeg", ".png", ".webp"}
	if home, err := os.UserHomeDir(); err == nil {
		picker.CurrentDirectory = home
	}

	spin := spinner.New()
	spin.Spinner = spinner.Dot

	m := Model{
		client:      client,
		store:       store,
		dict:        dict,
		settings:    settings,
		mode:        ModeIdle,
		transcript:  NewTranscript(),
		langIndex:   indexOf(Languages, settings.Language),
		business:    business,
		desc:        desc,
		formatIndex: indexOf(PosterFormats, settings.PosterFormat),
		loginUser:   loginUser,
		loginPass:   loginPass,
		picker:      picker,
		vp:          viewport.New(80, 20),
		spin:        spin,
	}

	// An existing persisted session skips the login surface entirely.
	if client.RequiresAuth() {
		if _, ok := store.Token(); !ok {
			m.showLogin("")
		}
	}

	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	if m.loginVisible {
		return m.loginUser.Focus()
	}
	return nil
}

// Language returns the currently selected language.
func (m Model) Language() string {
	return Languages[m.langIndex]
}

// CurrentMode reports the active mode, folding the busy flags into
// ModeAwaiting so the form modes and the in-flight state stay one variable.
func (m Model) CurrentMode() Mode {
	if (m.mode == ModeManual || m.mode == ModeUpload) && (m.sloganBusy || m.posterBusy || m.analysisBusy) {
		return ModeAwaiting
	}
	return m.mode
}

// Transcript exposes the transcript for rendering and tests.
func (m Model) Transcript() *Transcript {
	return m.transcript
}

// LoginVisible reports whether the login overlay is shown.
func (m Model) LoginVisible() bool {
	return m.loginVisible
}

// showLogin reveals the login overlay with an optional error line.
func (m *Model) showLogin(errLine string) {
	m.loginVisible = true
	m.loginErr = errLine
	m.loginUser.SetValue("")
	m.loginPass.SetValue("")
	m.loginFocus = loginFocusUser
	m.loginUser.Focus()
	m.loginPass.Blur()
}

// openChat resets the surface: fresh greeting, fresh language selector
// defaulted from settings, chooser visible. Reopening never preserves the
// previously selected language.
func (m *Model) openChat() {
	m.mode = ModeChoosing
	m.transcript.Reset(greeting)
	m.langIndex = indexOf(Languages, m.settings.Language)
	m.notice = ""
	m.syncViewport()
}

// closeChat hides the surface. In-flight requests are not aborted; their
// completions still append to the (hidden) transcript.
func (m *Model) closeChat() {
	m.mode = ModeIdle
	m.blurForm()
}

// enterManual reveals the structured form.
func (m *Model) enterManual() tea.Cmd {
	m.mode = ModeManual
	m.focus = focusBusiness
	m.blurForm()
	return m.business.Focus()
}

// generationRequest assembles the outbound payload from the current form
// and selector state.
func (m *Model) generationRequest(withFormat bool) api.GenerationRequest {
	req := api.GenerationRequest{
		BusinessType:       m.business.Value(),
		AdType:             AdTypes[m.adTypeIndex],
		ProductDescription: m.desc.Value(),
		Language:           m.Language(),
	}
	if withFormat {
		req.Format = PosterFormats[m.formatIndex]
	}
	return req
}

func (m *Model) blurForm() {
	m.business.Blur()
	m.desc.Blur()
}

// appendEntry appends to the transcript and keeps the viewport pinned to
// the latest entry. Appending while the surface is hidden is safe; the
// viewport is refreshed again when it is reopened.
func (m *Model) appendEntry(e Entry) {
	m.transcript.Append(e)
	m.syncViewport()
}

func (m *Model) appendText(role Role, content string) {
	m.appendEntry(Entry{Role: role, Kind: KindText, Content: content})
}

func (m *Model) syncViewport() {
	m.vp.SetContent(m.renderTranscript())
	m.vp.GotoBottom()
}

// handleAuthExpired is the single place an authorization failure surfaces
// in the UI: one session-expired notice, login overlay shown. The session
// itself was already cleared by the gateway. Callers must not append their
// own error entry for the same failure.
func (m *Model) handleAuthExpired() {
	m.appendText(RoleBot, msgSessionExpired)
	m.showLogin(msgSessionExpired)
}

// dictationAvailable reports whether the mic affordance should exist at
// all. No adapter means the control is hidden, not wired to a dead action.
func (m Model) dictationAvailable() bool {
	return m.dict != nil
}

// defaultHTTPClient is used for poster downloads.
var defaultHTTPClient = &http.Client{}
