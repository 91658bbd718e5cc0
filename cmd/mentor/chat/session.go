// Package chat provides the interactive TUI for the mentor counsellor.
// This file wires the backend components and launches the program.
package chat

import (
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"go.uber.org/zap"

	"mentor/cmd/mentor/ui"
	"mentor/internal/chatlog"
	"mentor/internal/config"
	"mentor/internal/gateway"
	"mentor/internal/orchestrator"
	"mentor/internal/reveal"
	"mentor/internal/speech"
)

// InitChat assembles the full client stack behind the TUI model.
func InitChat(cfg *config.Config, log *zap.Logger) (Model, error) {
	if log == nil {
		log = zap.NewNop()
	}

	gw := gateway.NewHTTPClient(cfg.Server.BaseURL, cfg.GetServerTimeout(), log)

	transcript := chatlog.New()
	queue := reveal.NewQueue(reveal.SystemClock(), transcript)

	speaker := speech.DetectSpeaker()
	speechQ := speech.NewQueue(speaker, speech.Options{
		Rate:   cfg.Speech.Rate,
		Pitch:  cfg.Speech.Pitch,
		Volume: cfg.Speech.Volume,
	}, log)

	orch := orchestrator.New(gw, transcript, queue, speechQ, orchestrator.Delays{
		Typing: cfg.GetTypedDelay(),
		Gap:    cfg.GetChainGap(),
	}, cfg.Speech.Enabled, log)

	ti := textinput.New()
	ti.Placeholder = "Type your answer... (Enter to send, Ctrl+C to exit)"
	ti.Focus()
	ti.CharLimit = 2000

	styles := ui.NewStyles(ui.DetectTheme())

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.Spinner

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return Model{}, fmt.Errorf("failed to create markdown renderer: %w", err)
	}

	return Model{
		textinput: ti,
		spinner:   sp,
		styles:    styles,
		renderer:  renderer,
		narrating: cfg.Speech.Enabled,
		orch:      orch,
		updates:   queue.Updates(),
		speech:    speechQ,
		log:       log.Named("tui"),
	}, nil
}

// Run blocks until the user exits the chat.
func Run(m Model) error {
	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("chat interface error: %w", err)
	}
	return nil
}
