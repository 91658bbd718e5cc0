// Package chat provides the interactive TUI for the mentor counsellor.
// This file contains view rendering functions.
package chat

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"mentor/internal/chatlog"
	"mentor/internal/extract"
	"mentor/internal/gateway"
)

func (m Model) renderTranscript() string {
	var sb strings.Builder

	for _, e := range m.orch.Transcript() {
		switch e.Sender {
		case chatlog.SenderUser:
			userStyle := m.styles.Bold.
				Foreground(m.styles.Theme.Primary).
				MarginTop(1)
			sb.WriteString(userStyle.Render("You") + "\n")
			sb.WriteString(m.styles.UserInput.Render(e.Content))
			sb.WriteString("\n\n")

		default:
			assistantStyle := m.styles.Bold.
				Foreground(m.styles.Theme.Accent).
				MarginTop(1)
			sb.WriteString(assistantStyle.Render("Mentor") + "\n")
			sb.WriteString(m.renderAssistantEntry(e))
			sb.WriteString("\n")
		}
	}

	return sb.String()
}

func (m Model) renderAssistantEntry(e chatlog.Entry) string {
	switch e.Kind {
	case chatlog.KindAssessmentResult:
		if rec, ok := e.Payload.(*gateway.Recommendations); ok && rec != nil {
			return m.renderAssessmentCard(rec)
		}
	case chatlog.KindRoadmapDetail:
		if rm, ok := e.Payload.(*gateway.DetailedRoadmap); ok && rm != nil {
			return m.renderRoadmap(rm)
		}
	case chatlog.KindDocLinks:
		if docs, ok := e.Payload.([]gateway.DocLink); ok {
			return m.renderDocLinks(docs)
		}
	case chatlog.KindDomainOffer:
		return m.safeRenderMarkdown(e.Content) + m.renderDomainOptions()
	}
	return m.safeRenderMarkdown(e.Content)
}

// renderAssessmentCard formats the post-assessment result summary.
func (m Model) renderAssessmentCard(rec *gateway.Recommendations) string {
	var sb strings.Builder

	title := m.styles.Title.Render(fmt.Sprintf("Assessment Result: %s", rec.Domain))
	sb.WriteString(title + "\n")
	sb.WriteString(m.styles.Bold.Render("Level: ") + m.styles.Body.Render(rec.Level) + "\n")
	if rec.Score != "" {
		sb.WriteString(m.styles.Bold.Render("Score: ") + m.styles.Body.Render(fmt.Sprintf("%s (%s)", rec.Score, rec.Percentage)) + "\n")
	}
	if rec.LevelDescription != "" {
		sb.WriteString(m.styles.Muted.Render(rec.LevelDescription) + "\n")
	}
	if rec.Explanation != "" {
		sb.WriteString("\n" + m.styles.Body.Render(rec.Explanation) + "\n")
	}

	if len(rec.AreasToImprove) > 0 {
		sb.WriteString("\n" + m.styles.Bold.Render("Areas to improve") + "\n")
		for _, a := range rec.AreasToImprove {
			sb.WriteString("  " + m.styles.Warning.Render("•") + " " + m.styles.Body.Render(a.Question) + "\n")
			if a.Explanation != "" {
				sb.WriteString("    " + m.styles.Muted.Render(a.Explanation) + "\n")
			}
		}
	}
	if len(rec.Topics) > 0 {
		sb.WriteString("\n" + m.styles.Bold.Render("Topics to study") + "\n")
		for _, t := range rec.Topics {
			sb.WriteString("  • " + m.styles.Body.Render(t) + "\n")
		}
	}
	if len(rec.Projects) > 0 {
		sb.WriteString("\n" + m.styles.Bold.Render("Suggested projects") + "\n")
		for _, p := range rec.Projects {
			sb.WriteString("  • " + m.styles.Body.Render(p) + "\n")
		}
	}

	return m.styles.Card.Width(m.viewport.Width - 4).Render(sb.String()) + "\n"
}

// renderRoadmap formats a detailed step-by-step roadmap.
func (m Model) renderRoadmap(rm *gateway.DetailedRoadmap) string {
	var sb strings.Builder

	sb.WriteString("# " + rm.Title + "\n\n")
	if rm.Description != "" {
		sb.WriteString(rm.Description + "\n\n")
	}
	if rm.Prerequisites != "" {
		sb.WriteString("**Prerequisites:** " + rm.Prerequisites + "\n\n")
	}
	if rm.Duration != "" {
		sb.WriteString("**Estimated duration:** " + rm.Duration + "\n\n")
	}

	for _, step := range rm.Steps {
		sb.WriteString(fmt.Sprintf("## Step %d: %s", step.Step, step.Title))
		if step.Duration != "" {
			sb.WriteString(fmt.Sprintf(" (%s)", step.Duration))
		}
		sb.WriteString("\n\n")
		for _, t := range step.Topics {
			sb.WriteString("- " + t + "\n")
		}
		if len(step.Resources) > 0 {
			sb.WriteString("\nResources:\n")
			for _, r := range step.Resources {
				sb.WriteString(fmt.Sprintf("- [%s](%s)\n", r.Title, r.URL))
			}
		}
		if len(step.Projects) > 0 {
			sb.WriteString("\nProjects:\n")
			for _, p := range step.Projects {
				sb.WriteString("- " + p + "\n")
			}
		}
		sb.WriteString("\n")
	}

	if len(rm.CareerPaths) > 0 {
		sb.WriteString("## Career paths\n\n")
		for _, c := range rm.CareerPaths {
			sb.WriteString("- " + c + "\n")
		}
		sb.WriteString("\n")
	}
	if len(rm.Tips) > 0 {
		sb.WriteString("## Tips\n\n")
		for _, t := range rm.Tips {
			sb.WriteString("- " + t + "\n")
		}
	}

	return m.safeRenderMarkdown(sb.String())
}

func (m Model) renderDocLinks(docs []gateway.DocLink) string {
	var sb strings.Builder
	sb.WriteString(m.styles.Bold.Render("Helpful resources") + "\n")
	for _, d := range docs {
		sb.WriteString("  " + m.styles.Info.Render("→") + " " + m.styles.Body.Render(d.Title) + " " + m.styles.Muted.Render(d.URL) + "\n")
	}
	return sb.String()
}

// renderDomainOptions lists the selectable domains with their pick
// numbers.
func (m Model) renderDomainOptions() string {
	var opts []string
	for i, d := range extract.Catalog {
		opts = append(opts, m.styles.Option.Render(fmt.Sprintf("%d. %s", i+1, d)))
	}

	var sb strings.Builder
	sb.WriteString("\n")
	for i := 0; i < len(opts); i += 4 {
		end := i + 4
		if end > len(opts) {
			end = len(opts)
		}
		sb.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, opts[i:end]...) + "\n")
	}
	sb.WriteString(m.styles.Muted.Render("Type a number or the domain name") + "\n")
	return sb.String()
}

// safeRenderMarkdown renders markdown with panic recovery.
func (m Model) safeRenderMarkdown(content string) (result string) {
	defer func() {
		if r := recover(); r != nil {
			result = content
		}
	}()

	if m.renderer != nil && content != "" {
		rendered, err := m.renderer.Render(content)
		if err == nil {
			return rendered
		}
	}
	return content
}

func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	header := m.renderHeader()
	chatView := m.styles.Content.Render(m.viewport.View())

	inputStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(m.styles.Theme.Accent).
		Padding(0, 1)
	inputArea := inputStyle.Render(m.textinput.View())

	footer := m.renderFooter()

	return lipgloss.JoinVertical(
		lipgloss.Left,
		header,
		chatView,
		inputArea,
		footer,
	)
}

func (m Model) renderHeader() string {
	title := m.styles.Header.Render(" Mentor ")

	var status string
	switch {
	case m.degraded:
		status = m.styles.Error.Render("Offline")
	case m.isLoading:
		status = lipgloss.JoinHorizontal(lipgloss.Center, m.spinner.View(), " ", m.styles.Badge.Render("Thinking..."))
	case m.orch.Typing():
		status = lipgloss.JoinHorizontal(lipgloss.Center, m.spinner.View(), " ", m.styles.Muted.Render("Mentor is typing..."))
	default:
		status = m.styles.Success.Render("Ready")
	}

	headerLine := lipgloss.JoinHorizontal(lipgloss.Center, title, "  ", status)

	return lipgloss.JoinVertical(
		lipgloss.Left,
		headerLine,
		m.styles.RenderDivider(m.width),
	)
}

func (m Model) renderFooter() string {
	narration := "off"
	if m.narrating {
		narration = "on"
	}

	errPart := ""
	if m.err != nil && m.degraded {
		errPart = " | " + m.styles.Error.Render("backend unreachable")
	}

	timestamp := time.Now().Format("15:04")
	help := m.styles.Muted.Render(fmt.Sprintf(
		"Enter: send | Ctrl+R: restart | Ctrl+T: speech (%s) | Ctrl+C: quit%s | %s",
		narration, errPart, timestamp))
	return lipgloss.NewStyle().MarginTop(1).Render(help)
}
