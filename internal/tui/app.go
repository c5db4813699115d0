package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pmehra/habitmind/internal/service"
)

// App is the interactive chat surface over the assistant pipeline.
type App struct {
	ctx      context.Context
	pipeline *service.Pipeline
	userID   int64

	turns   []turn
	input   string
	status  string
	width   int
	height  int
	waiting bool
}

type turn struct {
	user      string
	assistant string
}

type replyMsg struct {
	resp service.Response
	text string
}

var (
	userStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	assistantStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	statusStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Italic(true)
	promptStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("13")).Bold(true)
)

func New(ctx context.Context, pipeline *service.Pipeline, userID int64) *App {
	return &App{
		ctx:      ctx,
		pipeline: pipeline,
		userID:   userID,
		status:   "Type a command or just chat. Try 'help'. Esc or Ctrl+C to quit.",
	}
}

func (a *App) Init() tea.Cmd {
	return nil
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = msg.Width, msg.Height
		return a, nil

	case replyMsg:
		a.waiting = false
		a.turns = append(a.turns, turn{user: msg.text, assistant: msg.resp.Reply})
		a.status = directiveStatus(msg.resp)
		return a, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return a, tea.Quit
		case tea.KeyEnter:
			if a.waiting || strings.TrimSpace(a.input) == "" {
				return a, nil
			}
			text := a.input
			a.input = ""
			a.waiting = true
			a.status = "thinking..."
			return a, a.send(text)
		case tea.KeyBackspace:
			if len(a.input) > 0 {
				a.input = a.input[:len(a.input)-1]
			}
			return a, nil
		case tea.KeySpace:
			a.input += " "
			return a, nil
		case tea.KeyRunes:
			a.input += string(msg.Runes)
			return a, nil
		}
	}
	return a, nil
}

func (a *App) send(text string) tea.Cmd {
	return func() tea.Msg {
		resp := a.pipeline.ProcessText(a.ctx, text, a.userID)
		return replyMsg{resp: resp, text: text}
	}
}

func (a *App) View() string {
	var b strings.Builder

	b.WriteString(promptStyle.Render("habitmind") + "\n\n")

	turns := a.turns
	if max := visibleTurns(a.height); len(turns) > max {
		turns = turns[len(turns)-max:]
	}
	for _, t := range turns {
		b.WriteString(userStyle.Render("you: ") + t.user + "\n")
		b.WriteString(assistantStyle.Render(wrap(t.assistant, a.width)) + "\n\n")
	}

	if a.waiting {
		b.WriteString(statusStyle.Render("...") + "\n")
	}
	b.WriteString("\n" + promptStyle.Render("> ") + a.input + "█\n")
	b.WriteString(statusStyle.Render(a.status) + "\n")
	return b.String()
}

func directiveStatus(resp service.Response) string {
	if resp.Frontend == nil {
		return ""
	}
	switch resp.Frontend.Type {
	case service.FrontendNavigate:
		return fmt.Sprintf("[navigate: %s]", resp.Frontend.Navigate)
	case service.FrontendRefreshHabits:
		return "[habits refreshed]"
	case service.FrontendRefresh:
		return "[refreshed]"
	case service.FrontendLogout:
		return "[logged out]"
	}
	return ""
}

func visibleTurns(height int) int {
	if height <= 0 {
		return 8
	}
	n := (height - 6) / 4
	if n < 1 {
		n = 1
	}
	return n
}

func wrap(s string, width int) string {
	if width <= 0 {
		width = 80
	}
	var b strings.Builder
	line := 0
	for _, word := range strings.Fields(s) {
		if line > 0 && line+len(word)+1 > width {
			b.WriteString("\n")
			line = 0
		} else if line > 0 {
			b.WriteString(" ")
			line++
		}
		b.WriteString(word)
		line += len(word)
	}
	return b.String()
}
