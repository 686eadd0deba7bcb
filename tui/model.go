package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/siherrmann/nutricoach/label"
	"github.com/siherrmann/nutricoach/model"
)

// LabelQuery is sent when a label is attached without a typed question
const LabelQuery = "Analyze the ingredient label"

// Suggestions are the follow-up questions offered after every answer
var Suggestions = []string{
	"Is this safe for kids?",
	"What should I be cautious about?",
	"Is there a healthier alternative?",
}

// Analyzer is the TUI-facing subset of the server client.
type Analyzer interface {
	Analyze(ctx context.Context, q model.Query) (model.StructuredAnswer, error)
}

// LabelReader extracts the text of a label file
type LabelReader func(path string) (string, error)

type answerMsg struct {
	answer model.StructuredAnswer
	err    error
}

// Model is the Bubble Tea model of the chat client.
type Model struct {
	analyzer   Analyzer
	readLabel  LabelReader
	input      textinput.Model
	viewport   viewport.Model
	transcript []string
	status     string
	ready      bool
	waiting    bool
	// currentQuery is the primary question follow-ups refer to
	currentQuery string
	remaining    []string
	cursor       int
	labelText    string
}

// New creates a new TUI model instance. labelText is an already attached label, may be empty.
func New(analyzer Analyzer, labelText string) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Paste ingredients, ask a question, or /label <file>"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	m := Model{
		analyzer:  analyzer,
		readLabel: label.ExtractText,
		input:     ti,
		viewport:  vp,
		status:    "Type a question and press Enter. Tab selects a follow-up.",
		remaining: append([]string(nil), Suggestions...),
		cursor:    -1,
		labelText: labelText,
	}
	if labelText != "" {
		m.transcript = append(m.transcript, mutedStyle.Render("Attached label"))
	}
	return m
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key, answer and window events.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, qh := queryBoxStyle.GetFrameSize()
		_, ch := chatBoxStyle.GetFrameSize()
		reserved := 1 + 1 + qh + 1 + ch // header, suggestions, input box, status
		m.viewport.Width = max(20, msg.Width-2)
		m.viewport.Height = max(3, msg.Height-reserved)
		m.refresh()
		return m, nil
	case answerMsg:
		m.waiting = false
		if msg.err != nil {
			m.status = "Error: " + msg.err.Error()
			m.transcript = append(m.transcript, errorStyle.Render("Backend error: "+msg.err.Error()))
		} else {
			m.status = "Answered."
			m.transcript = append(m.transcript, renderAnswer(msg.answer))
		}
		m.refresh()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		switch msg.Type {
		case tea.KeyTab:
			if len(m.remaining) > 0 {
				m.cursor = (m.cursor + 1) % len(m.remaining)
			}
			return m, nil
		case tea.KeyShiftTab:
			if len(m.remaining) == 0 {
				return m, nil
			}
			if m.cursor < 0 {
				m.cursor = len(m.remaining) - 1
			} else {
				m.cursor = (m.cursor - 1 + len(m.remaining)) % len(m.remaining)
			}
			return m, nil
		case tea.KeyEsc:
			m.cursor = -1
			return m, nil
		case tea.KeyEnter:
			return m.submit()
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	if m.waiting {
		return m, nil
	}
	typed := strings.TrimSpace(m.input.Value())

	if path, ok := strings.CutPrefix(typed, "/label "); ok {
		text, err := m.readLabel(strings.TrimSpace(path))
		if err != nil {
			m.status = "Error: " + err.Error()
		} else {
			m.labelText = text
			m.status = "Label attached. Press Enter to analyze it."
			m.transcript = append(m.transcript, mutedStyle.Render("Attached: "+strings.TrimSpace(path)))
		}
		m.input.SetValue("")
		m.refresh()
		return m, nil
	}

	if typed == "" && m.cursor >= 0 && m.cursor < len(m.remaining) {
		return m.followUp()
	}
	if typed == "" && m.labelText == "" {
		return m, nil
	}

	// A new primary question resets the follow-ups
	m.remaining = append([]string(nil), Suggestions...)
	m.cursor = -1

	q := model.Query{Query: typed}
	shown := typed
	if m.labelText != "" {
		// The label drives retrieval, the typed text is the question
		if typed == "" {
			q.Query = LabelQuery
			shown = "[Label uploaded]"
		}
		q.ParentQuery = m.labelText
		m.currentQuery = m.labelText
		m.labelText = ""
	} else {
		m.currentQuery = typed
	}

	m.transcript = append(m.transcript, youStyle.Render("You: ")+shown)
	m.input.SetValue("")
	return m.send(q)
}

func (m Model) followUp() (tea.Model, tea.Cmd) {
	if m.currentQuery == "" {
		m.status = "Ask a question first, follow-ups refer to it."
		return m, nil
	}
	question := m.remaining[m.cursor]
	m.remaining = append(m.remaining[:m.cursor:m.cursor], m.remaining[m.cursor+1:]...)
	m.cursor = -1

	m.transcript = append(m.transcript, youStyle.Render("You: ")+question+mutedStyle.Render(fmt.Sprintf(" (about %s)", shorten(m.currentQuery, 60))))
	return m.send(model.Query{Query: question, ParentQuery: m.currentQuery})
}

func (m Model) send(q model.Query) (tea.Model, tea.Cmd) {
	m.waiting = true
	m.status = "Thinking..."
	m.refresh()

	analyzer := m.analyzer
	return m, func() tea.Msg {
		answer, err := analyzer.Analyze(context.Background(), q)
		return answerMsg{answer: answer, err: err}
	}
}

func (m *Model) refresh() {
	m.viewport.SetContent(strings.Join(m.transcript, "\n\n"))
	m.viewport.GotoBottom()
}

// View renders the chat, the follow-up suggestions and the input.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := headerStyle.Render("NutriCoach")
	chat := chatBoxStyle.Render(m.viewport.View())
	input := queryBoxStyle.Render(m.input.View())
	status := statusStyle.Render(m.status)
	return header + "\n" + chat + "\n" + m.renderSuggestions() + "\n" + input + "\n" + status
}

func (m Model) renderSuggestions() string {
	if m.currentQuery == "" || len(m.remaining) == 0 {
		return ""
	}
	parts := make([]string, len(m.remaining))
	for i, s := range m.remaining {
		if i == m.cursor {
			parts[i] = selectedStyle.Render(s)
		} else {
			parts[i] = suggestionStyle.Render(s)
		}
	}
	return strings.Join(parts, "  ")
}

func renderAnswer(a model.StructuredAnswer) string {
	return strings.Join([]string{
		headerStyle.Render("AI Co-Pilot"),
		sectionStyle.Render("Summary"),
		a.Summary,
		sectionStyle.Render("Details"),
		a.Details,
		sectionStyle.Render("Uncertainty"),
		a.Uncertainty,
	}, "\n")
}

func shorten(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

// Remaining returns the follow-up questions not asked yet
func (m Model) Remaining() []string {
	return append([]string(nil), m.remaining...)
}

// CurrentQuery returns the primary question follow-ups refer to
func (m Model) CurrentQuery() string {
	return m.currentQuery
}

var (
	headerStyle     = lipgloss.NewStyle().Bold(true)
	sectionStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))
	youStyle        = lipgloss.NewStyle().Bold(true)
	mutedStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	errorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	statusStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	suggestionStyle = lipgloss.NewStyle().Padding(0, 1).Background(lipgloss.Color("#4a90e2")).Foreground(lipgloss.Color("15"))
	selectedStyle   = suggestionStyle.Bold(true).Underline(true)
	chatBoxStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)
