// Package chat provides the interactive TUI for the mentor counsellor.
// The chat functionality is split across files:
//   - model.go: Types, Init, Update loop (this file)
//   - view.go: Rendering functions
//   - session.go: Wiring and program launch
package chat

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"go.uber.org/zap"

	"mentor/cmd/mentor/ui"
	"mentor/internal/chatlog"
	"mentor/internal/extract"
	"mentor/internal/orchestrator"
	"mentor/internal/speech"
)

// submitTimeout bounds a single turn's gateway round trip from the UI.
const submitTimeout = 2 * time.Minute

// Model is the main model for the interactive chat interface.
type Model struct {
	// UI Components
	textinput textinput.Model
	viewport  viewport.Model
	spinner   spinner.Model
	styles    ui.Styles
	renderer  *glamour.TermRenderer

	// State
	isLoading bool
	degraded  bool // session creation failed; input disabled
	narrating bool
	err       error
	width     int
	height    int
	ready     bool

	// Backend
	orch    *orchestrator.Orchestrator
	updates <-chan struct{}
	speech  *speech.Queue
	log     *zap.Logger
}

// Messages for tea updates
type (
	// transcriptMsg signals the transcript or typing indicator changed.
	transcriptMsg struct{}

	// sessionReadyMsg reports the outcome of session creation.
	sessionReadyMsg struct{ err error }

	// submitDoneMsg reports that a turn finished processing.
	submitDoneMsg struct{ err error }
)

// Init starts the session and the transcript listener.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		m.spinner.Tick,
		m.startSession(),
		m.waitForUpdates(),
	)
}

// waitForUpdates bridges the reveal queue's update channel into the tea
// event loop. Re-armed after every transcriptMsg.
func (m Model) waitForUpdates() tea.Cmd {
	return func() tea.Msg {
		<-m.updates
		return transcriptMsg{}
	}
}

func (m Model) startSession() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), submitTimeout)
		defer cancel()
		return sessionReadyMsg{err: m.orch.Start(ctx)}
	}
}

func (m Model) restartSession() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), submitTimeout)
		defer cancel()
		return sessionReadyMsg{err: m.orch.Restart(ctx)}
	}
}

func (m Model) submitTurn(text string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), submitTimeout)
		defer cancel()
		return submitDoneMsg{err: m.orch.Submit(ctx, text)}
	}
}

func (m Model) chooseDomain(domain string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), submitTimeout)
		defer cancel()
		return submitDoneMsg{err: m.orch.ChooseDomain(ctx, domain)}
	}
}

// shutdown stops the narration worker before the program exits.
func (m Model) shutdown() {
	if m.speech != nil {
		m.speech.Close()
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var tiCmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.shutdown()
			return m, tea.Quit

		case tea.KeyCtrlR:
			m.isLoading = true
			m.degraded = false
			m.err = nil
			return m, tea.Batch(m.restartSession(), m.spinner.Tick)

		case tea.KeyCtrlT:
			m.narrating = !m.narrating
			m.orch.SetNarration(m.narrating)
			return m, nil

		case tea.KeyEnter:
			if !m.isLoading && !m.degraded {
				return m.handleSubmit()
			}
			return m, nil
		}

		if !m.isLoading && !m.degraded {
			m.textinput, tiCmd = m.textinput.Update(msg)
		}
		return m, tiCmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		headerHeight := 3
		footerHeight := 2
		inputHeight := 3

		chatWidth := msg.Width - 4
		if chatWidth < 1 {
			chatWidth = 1
		}
		calcHeight := msg.Height - headerHeight - footerHeight - inputHeight - 2
		if calcHeight < 1 {
			calcHeight = 1
		}

		if !m.ready {
			m.viewport = viewport.New(chatWidth, calcHeight)
			m.ready = true
		} else {
			m.viewport.Width = chatWidth
			m.viewport.Height = calcHeight
		}
		m.textinput.Width = chatWidth - 6

		// Re-wrap rendered markdown to the new width.
		m.renderer, _ = glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(chatWidth-4),
		)
		m.viewport.SetContent(m.renderTranscript())
		m.viewport.GotoBottom()
		return m, nil

	case spinner.TickMsg:
		if m.isLoading || m.orch.Typing() {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil

	case transcriptMsg:
		m.viewport.SetContent(m.renderTranscript())
		m.viewport.GotoBottom()
		cmds := []tea.Cmd{m.waitForUpdates()}
		if m.orch.Typing() {
			cmds = append(cmds, m.spinner.Tick)
		}
		return m, tea.Batch(cmds...)

	case sessionReadyMsg:
		m.isLoading = false
		if msg.err != nil {
			// Read-only until the user restarts with Ctrl+R.
			m.degraded = true
			m.err = msg.err
			m.log.Warn("session unavailable", zap.Error(msg.err))
		}
		return m, nil

	case submitDoneMsg:
		m.isLoading = false
		if msg.err != nil && msg.err != orchestrator.ErrEmptyInput {
			m.err = msg.err
		}
		// Replies may still be landing in the typed lane.
		return m, m.spinner.Tick
	}

	return m, nil
}

// handleSubmit dispatches the input box content as a user turn. While a
// domain offer is open a bare option number selects that domain.
func (m Model) handleSubmit() (tea.Model, tea.Cmd) {
	input := strings.TrimSpace(m.textinput.Value())
	if input == "" {
		return m, nil
	}
	m.textinput.Reset()
	m.isLoading = true
	m.err = nil

	if m.domainOfferOpen() {
		if n, err := strconv.Atoi(input); err == nil && n >= 1 && n <= len(extract.Catalog) {
			return m, tea.Batch(m.chooseDomain(extract.Catalog[n-1]), m.spinner.Tick)
		}
	}
	return m, tea.Batch(m.submitTurn(input), m.spinner.Tick)
}

// domainOfferOpen reports whether the latest assistant entry presents
// the domain options.
func (m Model) domainOfferOpen() bool {
	entries := m.orch.Transcript()
	for i := len(entries) - 1; i >= 0; i-- {
		if entries[i].Sender == chatlog.SenderAssistant {
			return entries[i].Kind == chatlog.KindDomainOffer
		}
	}
	return false
}
