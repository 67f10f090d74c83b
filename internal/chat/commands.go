package chat

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/joeycumines/adscribe/internal/api"
)

// Completion messages. Each in-flight request resolves to exactly one of
// these; the err field carries the gateway's taxonomy (ErrUnauthorized,
// ErrNetwork wrap, *APIError) unchanged.
type (
	loginDoneMsg    struct{ err error }
	analysisDoneMsg struct {
		result *api.AnalysisResult
		err    error
	}
	sloganDoneMsg struct {
		result *api.SloganResult
		err    error
	}
	posterDoneMsg struct {
		result *api.PosterResult
		err    error
	}
	dictationDoneMsg struct {
		text string
		err  error
	}
	saveDoneMsg struct {
		path string
		err  error
	}
)

func (m Model) loginCmd(username, password string) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		return loginDoneMsg{err: client.Login(context.Background(), username, password)}
	}
}

func (m Model) analyzeCmd(path string) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		f, err := os.Open(path)
		if err != nil {
			return analysisDoneMsg{err: fmt.Errorf("opening image: %w", err)}
		}
		defer f.Close()

		result, err := client.AnalyzeImage(context.Background(), filepath.Base(path), f)
		return analysisDoneMsg{result: result, err: err}
	}
}

func (m Model) sloganCmd(req api.GenerationRequest) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		result, err := client.GenerateSlogan(context.Background(), req)
		return sloganDoneMsg{result: result, err: err}
	}
}

func (m Model) posterCmd(req api.GenerationRequest) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		result, err := client.GeneratePoster(context.Background(), req)
		return posterDoneMsg{result: result, err: err}
	}
}

func (m Model) dictationCmd(language string) tea.Cmd {
	dict := m.dict
	return func() tea.Msg {
		text, err := dict.Capture(context.Background(), language)
		return dictationDoneMsg{text: text, err: err}
	}
}

func (m Model) saveImageCmd(url string) tea.Cmd {
	dir := m.settings.DownloadDir
	return func() tea.Msg {
		filename := SuggestedFilename(time.Now())
		path, err := SaveImage(context.Background(), defaultHTTPClient, url, dir, filename)
		return saveDoneMsg{path: path, err: err}
	}
}
