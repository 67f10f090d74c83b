package chat

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/joeycumines/adscribe/internal/api"
	"github.com/joeycumines/adscribe/internal/dictation"
)

// Update implements tea.Model. Completion messages are handled before key
// routing so that results arriving while the surface is hidden still append
// to the transcript.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.sized = true
		m.vp.Width = msg.Width - 4
		m.vp.Height = msg.Height - 14
		if m.vp.Height < 3 {
			m.vp.Height = 3
		}
		m.business.Width = min(60, msg.Width-20)
		m.desc.SetWidth(min(80, msg.Width-10))
		m.picker.Height = max(5, msg.Height-10)
		m.syncViewport()
		return m, nil

	case spinner.TickMsg:
		if m.anyBusy() {
			var cmd tea.Cmd
			m.spin, cmd = m.spin.Update(msg)
			return m, cmd
		}
		return m, nil

	case loginDoneMsg:
		return m.handleLoginDone(msg)
	case analysisDoneMsg:
		return m.handleAnalysisDone(msg)
	case sloganDoneMsg:
		return m.handleSloganDone(msg)
	case posterDoneMsg:
		return m.handlePosterDone(msg)
	case dictationDoneMsg:
		return m.handleDictationDone(msg)
	case saveDoneMsg:
		return m.handleSaveDone(msg)

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.quitting = true
			return m, tea.Quit
		}
		if m.loginVisible {
			return m.updateLogin(msg)
		}
		switch m.mode {
		case ModeIdle:
			return m.updateIdle(msg)
		case ModeChoosing:
			return m.updateChoosing(msg)
		case ModeUpload:
			return m.updateUpload(msg)
		default:
			return m.updateManual(msg)
		}
	}

	// The file picker drives itself with internal messages (directory
	// reads) that must keep flowing while it is open.
	if m.mode == ModeUpload && !m.loginVisible {
		var cmd tea.Cmd
		m.picker, cmd = m.picker.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m Model) anyBusy() bool {
	return m.sloganBusy || m.posterBusy || m.analysisBusy || m.loginBusy
}

// --- login overlay ---

func (m Model) updateLogin(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.quitting = true
		return m, tea.Quit

	case "tab", "shift+tab", "up", "down":
		if m.loginFocus == loginFocusUser {
			m.loginFocus = loginFocusPass
			m.loginUser.Blur()
			return m, m.loginPass.Focus()
		}
		m.loginFocus = loginFocusUser
		m.loginPass.Blur()
		return m, m.loginUser.Focus()

	case "enter":
		if m.loginBusy {
			return m, nil
		}
		username := strings.TrimSpace(m.loginUser.Value())
		password := strings.TrimSpace(m.loginPass.Value())
		if username == "" || password == "" {
			// Rejected statically; no call is made.
			m.loginErr = "❌ Username and password are required."
			return m, nil
		}
		m.loginBusy = true
		m.loginErr = ""
		return m, tea.Batch(m.loginCmd(username, password), m.spin.Tick)
	}

	var cmd tea.Cmd
	if m.loginFocus == loginFocusPass {
		m.loginPass, cmd = m.loginPass.Update(msg)
	} else {
		m.loginUser, cmd = m.loginUser.Update(msg)
	}
	return m, cmd
}

func (m Model) handleLoginDone(msg loginDoneMsg) (tea.Model, tea.Cmd) {
	m.loginBusy = false

	var apiErr *api.APIError
	switch {
	case msg.err == nil:
		m.loginVisible = false
		m.loginErr = ""
		return m, nil
	case errors.As(msg.err, &apiErr):
		m.loginErr = "❌ " + apiErr.Message
	default:
		m.loginErr = msgLoginNetwork
	}
	return m, nil
}

// --- idle (surface closed) ---

func (m Model) updateIdle(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter", "o":
		m.openChat()
		return m, nil
	case "q", "esc":
		m.quitting = true
		return m, tea.Quit
	}
	return m, nil
}

// --- choosing input ---

func (m Model) updateChoosing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.closeChat()
		return m, nil

	case "left", "h":
		m.langIndex = (m.langIndex + len(Languages) - 1) % len(Languages)
		return m, nil
	case "right", "l":
		m.langIndex = (m.langIndex + 1) % len(Languages)
		return m, nil

	case "m", "enter":
		m.appendText(RoleUser, fmt.Sprintf("✍️ Manual Mode selected (%s).", m.Language()))
		m.appendText(RoleBot, "Okay! Fill in the form below.")
		return m, m.enterManual()

	case "u":
		// No transcript change until a file is actually chosen.
		m.mode = ModeUpload
		return m, m.picker.Init()
	}

	var cmd tea.Cmd
	m.vp, cmd = m.vp.Update(msg)
	return m, cmd
}

// --- image upload ---

func (m Model) updateUpload(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "esc" {
		m.mode = ModeChoosing
		return m, nil
	}

	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)

	if didSelect, path := m.picker.DidSelectFile(msg); didSelect {
		return m.beginAnalysis(path, cmd)
	}
	return m, cmd
}

func (m *Model) beginAnalysis(path string, prior tea.Cmd) (tea.Model, tea.Cmd) {
	m.appendText(RoleUser, "📸 Uploading image...")
	m.appendText(RoleBot, "Analyzing image details... 🧠")
	m.analysisBusy = true
	return *m, tea.Batch(prior, m.analyzeCmd(path), m.spin.Tick)
}

func (m Model) handleAnalysisDone(msg analysisDoneMsg) (tea.Model, tea.Cmd) {
	m.analysisBusy = false

	// Whatever the outcome, the form is revealed: on failure the user may
	// proceed manually, and partially-populated fields are left alone.
	focusCmd := m.enterManual()

	var apiErr *api.APIError
	switch {
	case errors.Is(msg.err, api.ErrUnauthorized):
		m.handleAuthExpired()
	case errors.As(msg.err, &apiErr):
		m.appendText(RoleBot, "❌ Analysis failed: "+apiErr.Message)
	case msg.err != nil:
		m.appendText(RoleBot, msgNetworkError)
	default:
		m.business.SetValue(msg.result.BusinessType)
		m.desc.SetValue(msg.result.Description)
		m.appendText(RoleBot, fmt.Sprintf("I see: %q.", msg.result.Description))
		m.appendText(RoleBot, fmt.Sprintf("Form auto-filled! Ready to generate in %s?", m.Language()))
	}
	return m, focusCmd
}

// --- manual entry and awaiting result ---

func (m Model) updateManual(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.closeChat()
		return m, nil

	case "tab":
		return m.cycleFocus(1)
	case "shift+tab":
		return m.cycleFocus(-1)

	case "left", "right":
		if m.focus == focusAdType || m.focus == focusFormat {
			m.cycleSelector(msg.String() == "right")
			return m, nil
		}

	case "pgup", "pgdown":
		var cmd tea.Cmd
		m.vp, cmd = m.vp.Update(msg)
		return m, cmd

	case "ctrl+g":
		return m.submitSlogan()
	case "ctrl+p":
		return m.submitPoster()
	case "ctrl+r":
		return m.toggleDictation()
	case "ctrl+d":
		return m.saveLastPoster()
	}

	var cmd tea.Cmd
	switch m.focus {
	case focusBusiness:
		m.business, cmd = m.business.Update(msg)
	case focusDesc:
		m.desc, cmd = m.desc.Update(msg)
	}
	return m, cmd
}

func (m Model) cycleFocus(dir int) (tea.Model, tea.Cmd) {
	m.focus = (m.focus + dir + focusCount) % focusCount
	m.blurForm()
	switch m.focus {
	case focusBusiness:
		return m, m.business.Focus()
	case focusDesc:
		return m, m.desc.Focus()
	}
	return m, nil
}

func (m *Model) cycleSelector(forward bool) {
	dir := 1
	if !forward {
		dir = -1
	}
	switch m.focus {
	case focusAdType:
		m.adTypeIndex = (m.adTypeIndex + dir + len(AdTypes)) % len(AdTypes)
	case focusFormat:
		m.formatIndex = (m.formatIndex + dir + len(PosterFormats)) % len(PosterFormats)
	}
}

// validateForm applies the synchronous validation gate: both required
// fields non-empty after trimming, or a blocking notice and no call.
func (m *Model) validateForm() bool {
	if strings.TrimSpace(m.business.Value()) == "" || strings.TrimSpace(m.desc.Value()) == "" {
		m.notice = msgValidation
		return false
	}
	m.notice = ""
	return true
}

func (m Model) submitSlogan() (tea.Model, tea.Cmd) {
	if m.sloganBusy {
		return m, nil // control disabled while its request is in flight
	}
	if !m.validateForm() {
		return m, nil
	}

	req := m.generationRequest(false)
	m.appendText(RoleUser, fmt.Sprintf("📝 Generating %s slogan...", req.Language))
	m.sloganBusy = true
	return m, tea.Batch(m.sloganCmd(req), m.spin.Tick)
}

func (m Model) submitPoster() (tea.Model, tea.Cmd) {
	if m.posterBusy {
		return m, nil
	}
	if !m.validateForm() {
		return m, nil
	}

	req := m.generationRequest(true)
	m.appendText(RoleUser, fmt.Sprintf("🎬 Designing %s ad...", req.Format))
	m.posterBusy = true
	return m, tea.Batch(m.posterCmd(req), m.spin.Tick)
}

func (m Model) handleSloganDone(msg sloganDoneMsg) (tea.Model, tea.Cmd) {
	m.sloganBusy = false

	var apiErr *api.APIError
	switch {
	case errors.Is(msg.err, api.ErrUnauthorized):
		m.handleAuthExpired()
	case errors.As(msg.err, &apiErr):
		m.appendText(RoleBot, "❌ Error: "+apiErr.Message)
	case msg.err != nil:
		m.appendText(RoleBot, msgNetworkError)
	default:
		m.appendText(RoleBot, fmt.Sprintf("✨ %q", msg.result.Slogan))
	}
	return m, nil
}

func (m Model) handlePosterDone(msg posterDoneMsg) (tea.Model, tea.Cmd) {
	m.posterBusy = false

	var apiErr *api.APIError
	switch {
	case errors.Is(msg.err, api.ErrUnauthorized):
		m.handleAuthExpired()
	case errors.As(msg.err, &apiErr):
		m.appendText(RoleBot, "❌ Error: "+apiErr.Message)
	case msg.err != nil:
		m.appendText(RoleBot, msgNetworkError)
	default:
		m.appendText(RoleBot, "✨ Poster Ready!")
		m.appendEntry(Entry{Role: RoleBot, Kind: KindImage, Content: msg.result.ImageURL})
		m.appendText(RoleBot, fmt.Sprintf("Slogan: %q", msg.result.Slogan))
	}
	return m, nil
}

// --- dictation ---

func (m Model) toggleDictation() (tea.Model, tea.Cmd) {
	if !m.dictationAvailable() {
		return m, nil
	}
	if m.capturing {
		m.dict.Stop()
		m.capturing = false
		m.desc.Placeholder = descPlaceholder
		return m, nil
	}

	m.capturing = true
	m.desc.Placeholder = descListening
	return m, m.dictationCmd(m.Language())
}

func (m Model) handleDictationDone(msg dictationDoneMsg) (tea.Model, tea.Cmd) {
	m.capturing = false
	m.desc.Placeholder = descPlaceholder

	switch {
	case errors.Is(msg.err, dictation.ErrStopped):
		// User toggled capture off; nothing to apply.
	case msg.err != nil:
		m.notice = fmt.Sprintf("Dictation failed: %v", msg.err)
	default:
		m.desc.SetValue(dictation.AppendTranscript(m.desc.Value(), msg.text))
	}
	return m, nil
}

// --- poster download ---

func (m Model) saveLastPoster() (tea.Model, tea.Cmd) {
	if m.saveBusy {
		return m, nil
	}
	url, ok := m.transcript.LastImageURL()
	if !ok {
		m.notice = "No poster to save yet."
		return m, nil
	}
	m.notice = ""
	m.saveBusy = true
	return m, m.saveImageCmd(url)
}

func (m Model) handleSaveDone(msg saveDoneMsg) (tea.Model, tea.Cmd) {
	m.saveBusy = false
	if msg.err != nil {
		m.appendText(RoleBot, fmt.Sprintf("❌ Could not save poster: %v", msg.err))
	} else {
		m.appendText(RoleBot, fmt.Sprintf("Poster saved to %s.", msg.path))
	}
	return m, nil
}
