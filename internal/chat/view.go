package chat

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	userStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true)
	botStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	imageStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("212"))
	labelStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	focusedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	noticeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	borderStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	selectorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.sized {
		return "Loading..."
	}
	if m.loginVisible {
		return m.viewLogin()
	}

	switch m.mode {
	case ModeIdle:
		return m.viewIdle()
	case ModeChoosing:
		return m.viewChoosing()
	case ModeUpload:
		return m.viewUpload()
	default:
		return m.viewManual()
	}
}

func (m Model) viewLogin() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("AdScribe Login"))
	b.WriteString("\n\n")
	if m.loginErr != "" {
		b.WriteString(noticeStyle.Render(m.loginErr))
		b.WriteString("\n\n")
	}
	b.WriteString(m.fieldLabel("Username", m.loginFocus == loginFocusUser))
	b.WriteString("\n")
	b.WriteString(m.loginUser.View())
	b.WriteString("\n\n")
	b.WriteString(m.fieldLabel("Password", m.loginFocus == loginFocusPass))
	b.WriteString("\n")
	b.WriteString(m.loginPass.View())
	b.WriteString("\n\n")
	if m.loginBusy {
		b.WriteString(m.spin.View() + " Logging in...\n\n")
	}
	b.WriteString(helpStyle.Render("enter login · tab switch field · esc quit"))
	return borderStyle.Render(b.String())
}

func (m Model) viewIdle() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("AdScribe"))
	b.WriteString("\n\n")
	b.WriteString(botStyle.Render("Conversational ad generation for your business."))
	b.WriteString("\n\n")
	b.WriteString(helpStyle.Render("enter open chat · q quit"))
	return b.String()
}

func (m Model) viewChoosing() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("AdScribe"))
	b.WriteString("\n")
	b.WriteString(m.vp.View())
	b.WriteString("\n\n")
	b.WriteString(labelStyle.Render("Language: "))
	b.WriteString(selectorStyle.Render(fmt.Sprintf("◀ %s ▶", m.Language())))
	b.WriteString("\n\n")
	b.WriteString(helpStyle.Render("←/→ language · m manual entry · u upload image · esc close"))
	return b.String()
}

func (m Model) viewUpload() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("AdScribe"))
	b.WriteString("\n")
	b.WriteString(m.vp.View())
	b.WriteString("\n\n")
	if m.analysisBusy {
		b.WriteString(m.spin.View() + " Analyzing image...\n\n")
		b.WriteString(helpStyle.Render("esc back"))
		return b.String()
	}
	b.WriteString(labelStyle.Render("Pick a product image:"))
	b.WriteString("\n")
	b.WriteString(m.picker.View())
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("enter select · esc back"))
	return b.String()
}

func (m Model) viewManual() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("AdScribe"))
	b.WriteString("\n")
	b.WriteString(m.vp.View())
	b.WriteString("\n\n")

	b.WriteString(m.fieldLabel("Business Name", m.focus == focusBusiness))
	b.WriteString("\n")
	b.WriteString(m.business.View())
	b.WriteString("\n\n")

	b.WriteString(m.fieldLabel("Ad Type", m.focus == focusAdType))
	b.WriteString("  ")
	b.WriteString(selectorStyle.Render(fmt.Sprintf("◀ %s ▶", AdTypes[m.adTypeIndex])))
	b.WriteString("\n\n")

	b.WriteString(m.fieldLabel("Product Description", m.focus == focusDesc))
	if m.capturing {
		b.WriteString("  " + noticeStyle.Render("● recording"))
	}
	b.WriteString("\n")
	b.WriteString(m.desc.View())
	b.WriteString("\n\n")

	b.WriteString(m.fieldLabel("Poster Format", m.focus == focusFormat))
	b.WriteString("  ")
	b.WriteString(selectorStyle.Render(fmt.Sprintf("◀ %s ▶", PosterFormats[m.formatIndex])))
	b.WriteString("\n")

	if m.notice != "" {
		b.WriteString("\n")
		b.WriteString(noticeStyle.Render(m.notice))
		b.WriteString("\n")
	}
	if m.sloganBusy {
		b.WriteString("\n" + m.spin.View() + " Generating slogan...")
	}
	if m.posterBusy {
		b.WriteString("\n" + m.spin.View() + " Designing poster...")
	}
	if m.saveBusy {
		b.WriteString("\n" + m.spin.View() + " Saving poster...")
	}

	b.WriteString("\n\n")
	help := "tab next field · ctrl+g slogan · ctrl+p poster"
	if m.dictationAvailable() {
		help += " · ctrl+r mic"
	}
	help += " · ctrl+d save poster · esc close"
	b.WriteString(helpStyle.Render(help))
	return b.String()
}

func (m Model) fieldLabel(name string, focused bool) string {
	if focused {
		return focusedStyle.Render("▸ " + name)
	}
	return labelStyle.Render("  " + name)
}

// renderTranscript flattens the transcript for the viewport. Image entries
// show a shortened reference; inline base64 payloads would otherwise swamp
// the terminal.
func (m Model) renderTranscript() string {
	var b strings.Builder
	for i, e := range m.transcript.Entries() {
		if i > 0 {
			b.WriteString("\n")
		}
		switch {
		case e.Kind == KindImage:
			b.WriteString(imageStyle.Render("🖼 poster: " + shortenURL(e.Content)))
		case e.Role == RoleUser:
			b.WriteString(userStyle.Render("You: ") + e.Content)
		default:
			b.WriteString(botStyle.Render("Bot: " + e.Content))
		}
	}
	return b.String()
}

func shortenURL(url string) string {
	if strings.HasPrefix(url, "data:") {
		return "(inline image data)"
	}
	if len(url) > 72 {
		return url[:69] + "..."
	}
	return url
}
