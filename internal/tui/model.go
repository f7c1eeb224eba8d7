package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pratham/chatterm/internal/chat"
	apierrors "github.com/pratham/chatterm/internal/errors"
	"github.com/pratham/chatterm/internal/models"
)

// mode is the input mode of the TUI.
type mode int

const (
	modeCompose mode = iota // typing a new message
	modeSelect              // cursor over the transcript for edit/delete/retry
	modeEdit                // editing a selected message in place
)

// Message types for the TUI
type (
	// hydratedMsg is sent when the initial fetch from the persistence
	// service completes.
	hydratedMsg struct {
		err error
	}
	// turnResolvedMsg is sent when a send's async half finishes.
	turnResolvedMsg struct {
		err error
	}
	// retryDoneMsg is sent when a retry finishes.
	retryDoneMsg struct {
		err error
	}
	// editDispatchedMsg is sent once an edit has been applied and its
	// update request dispatched.
	editDispatchedMsg struct{}
	// deleteDispatchedMsg is sent once a delete has been applied.
	deleteDispatchedMsg struct{}
)

// Model represents the TUI state
type Model struct {
	controller *chat.Controller

	// UI components
	viewport viewport.Model
	textarea textarea.Model
	spinner  spinner.Model

	// State
	mode     mode
	messages []models.Message
	cursor   int // transcript cursor in modeSelect
	editID   string
	loading  bool
	ready    bool
	err      error

	// Dimensions
	width  int
	height int
}

// NewModel creates the chat TUI model around a controller.
func NewModel(controller *chat.Controller) Model {
	ta := textarea.New()
	ta.Placeholder = "Your question"
	ta.CharLimit = 4000
	ta.ShowLineNumbers = false
	ta.SetHeight(2)
	ta.Focus()

	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.FocusedStyle.Base = lipgloss.NewStyle().Foreground(colorText)
	ta.FocusedStyle.Placeholder = lipgloss.NewStyle().Foreground(colorTextDim)
	ta.BlurredStyle = ta.FocusedStyle

	s := spinner.New()
	s.Spinner = spinner.Points
	s.Style = loadingStyle

	return Model{
		controller: controller,
		textarea:   ta,
		spinner:    s,
	}
}

// Init hydrates the conversation from the persistence service.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		textarea.Blink,
		m.spinner.Tick,
		m.hydrate(),
	)
}

// hydrate returns a command that loads the stored conversation.
func (m Model) hydrate() tea.Cmd {
	return func() tea.Msg {
		return hydratedMsg{err: m.controller.Refresh(context.Background())}
	}
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		headerHeight := 3
		inputHeight := 4
		statusHeight := 1
		padding := 2

		vpHeight := m.height - headerHeight - inputHeight - statusHeight - padding
		if vpHeight < 5 {
			vpHeight = 5
		}

		contentWidth := m.width - 4

		if !m.ready {
			m.viewport = viewport.New(contentWidth, vpHeight)
			m.textarea.SetWidth(contentWidth - 4)
			m.ready = true
		} else {
			m.viewport.Width = contentWidth
			m.viewport.Height = vpHeight
			m.textarea.SetWidth(contentWidth - 4)
		}
		m.refreshTranscript()

	case tea.KeyMsg:
		switch m.mode {
		case modeSelect:
			return m.updateSelect(msg)
		case modeEdit:
			return m.updateEdit(msg)
		}

		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit

		case "ctrl+e":
			if len(m.messages) > 0 {
				m.mode = modeSelect
				m.cursor = len(m.messages) - 1
				m.refreshTranscript()
			}

		case "enter":
			turn, err := m.controller.BeginSend(m.textarea.Value())
			switch {
			case err == nil:
				m.textarea.Reset()
				m.loading = true
				m.err = nil
				m.refreshTranscript()
				m.viewport.GotoBottom()
				return m, tea.Batch(m.resolveTurn(turn), m.spinner.Tick)
			case err == apierrors.ErrEmptyInput:
				// Silently ignored.
			case err == apierrors.ErrTurnInFlight:
				// The input stays; the turn in flight resolves first.
			default:
				m.err = err
			}
		}

	case hydratedMsg:
		// A failed hydration leaves an empty local conversation, which is
		// still usable; the error is shown once.
		m.err = msg.err
		m.refreshTranscript()
		m.viewport.GotoBottom()

	case turnResolvedMsg:
		m.loading = false
		m.err = msg.err
		m.refreshTranscript()
		m.viewport.GotoBottom()

	case retryDoneMsg:
		m.loading = false
		m.err = msg.err
		m.refreshTranscript()

	case editDispatchedMsg, deleteDispatchedMsg:
		m.refreshTranscript()

	case spinner.TickMsg:
		if m.loading {
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	if m.mode == modeCompose && !m.loading {
		if _, ok := msg.(tea.KeyMsg); ok {
			m.textarea, cmd = m.textarea.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// updateSelect handles keys while the transcript cursor is active.
func (m Model) updateSelect(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit

	case "esc":
		m.mode = modeCompose
		m.refreshTranscript()

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
			m.refreshTranscript()
		}

	case "down", "j":
		if m.cursor < len(m.messages)-1 {
			m.cursor++
			m.refreshTranscript()
		}

	case "e", "enter":
		if m.cursor < len(m.messages) {
			target := m.messages[m.cursor]
			if target.IsPlaceholder() {
				break
			}
			draft, ok := m.controller.StartEdit(target.ID)
			if !ok {
				break
			}
			m.mode = modeEdit
			m.editID = target.ID
			m.textarea.SetValue(draft)
			m.textarea.Focus()
		}

	case "d":
		if m.cursor < len(m.messages) {
			id := m.messages[m.cursor].ID
			m.mode = modeCompose
			return m, m.deleteMessage(id)
		}

	case "r":
		if m.cursor < len(m.messages) {
			target := m.messages[m.cursor]
			if target.Status == models.StatusErrored {
				m.mode = modeCompose
				m.loading = true
				return m, tea.Batch(m.retry(target.ID), m.spinner.Tick)
			}
		}
	}

	return m, nil
}

// updateEdit handles keys while editing a message in place. A single Enter
// confirms; Esc abandons the draft.
func (m Model) updateEdit(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit

	case "esc":
		m.controller.CancelEdit()
		m.mode = modeCompose
		m.editID = ""
		m.textarea.Reset()
		m.refreshTranscript()
		return m, nil

	case "enter":
		id := m.editID
		content := strings.TrimRight(m.textarea.Value(), "\n")
		m.mode = modeCompose
		m.editID = ""
		m.textarea.Reset()
		return m, m.confirmEdit(id, content)
	}

	var cmd tea.Cmd
	m.textarea, cmd = m.textarea.Update(msg)
	return m, cmd
}

// resolveTurn runs the blocking half of a send off the UI loop.
func (m Model) resolveTurn(turn chat.Turn) tea.Cmd {
	return func() tea.Msg {
		return turnResolvedMsg{err: m.controller.ResolveTurn(context.Background(), turn)}
	}
}

func (m Model) retry(botID string) tea.Cmd {
	return func() tea.Msg {
		return retryDoneMsg{err: m.controller.Retry(context.Background(), botID)}
	}
}

func (m Model) confirmEdit(id, content string) tea.Cmd {
	return func() tea.Msg {
		m.controller.ConfirmEdit(context.Background(), id, content)
		return editDispatchedMsg{}
	}
}

func (m Model) deleteMessage(id string) tea.Cmd {
	return func() tea.Msg {
		m.controller.Delete(context.Background(), id)
		return deleteDispatchedMsg{}
	}
}

// View renders the TUI
func (m Model) View() string {
	if !m.ready {
		return loadingStyle.Render("  Loading conversation...")
	}

	var sections []string
	contentWidth := m.width - 4

	header := headerStyle.Width(contentWidth).Render(
		lipgloss.JoinHorizontal(
			lipgloss.Center,
			titleStyle.Render("✦ chatterm"),
			hintStyle.Render("  •  "),
			subtitleStyle.Render(m.modeLabel()),
		),
	)
	sections = append(sections, header)

	var transcript string
	if len(m.messages) == 0 {
		transcript = m.renderWelcome()
	} else {
		transcript = m.viewport.View()
	}
	sections = append(sections, messagesAreaStyle.
		Width(contentWidth).
		Height(m.viewport.Height).
		Render(transcript))

	var inputContent string
	switch {
	case m.loading:
		inputContent = fmt.Sprintf("%s %s", m.spinner.View(),
			pendingStyle.Render("waiting for reply"))
	case m.mode == modeEdit:
		inputContent = lipgloss.JoinVertical(
			lipgloss.Left,
			editLabelStyle.Render("Editing"),
			m.textarea.View(),
		)
	default:
		inputContent = lipgloss.JoinVertical(
			lipgloss.Left,
			inputLabelStyle.Render("You"),
			m.textarea.View(),
		)
	}
	sections = append(sections, inputPanelStyle.Width(contentWidth).Render(inputContent))

	sections = append(sections, m.renderStatusBar(contentWidth))

	if m.err != nil {
		sections = append(sections, errorStyle.Render(fmt.Sprintf("⚠ %v", m.err)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) modeLabel() string {
	switch m.mode {
	case modeSelect:
		return "select a message"
	case modeEdit:
		return "editing"
	default:
		return "conversation"
	}
}

// renderWelcome renders the empty-conversation screen.
func (m Model) renderWelcome() string {
	width := m.viewport.Width - 4
	height := m.viewport.Height

	content := lipgloss.JoinVertical(
		lipgloss.Center,
		"",
		welcomeTitleStyle.Width(width).Render("Welcome to chatterm"),
		"",
		welcomeStyle.Width(width).Render("Start a conversation by typing a message below"),
		"",
	)

	topPadding := (height - lipgloss.Height(content)) / 2
	if topPadding < 0 {
		topPadding = 0
	}

	return strings.Repeat("\n", topPadding) + content
}

// renderStatusBar renders the bottom shortcut bar.
func (m Model) renderStatusBar(width int) string {
	var shortcuts []struct {
		key  string
		desc string
	}

	switch m.mode {
	case modeSelect:
		shortcuts = []struct{ key, desc string }{
			{"↑↓", "Move"},
			{"e", "Edit"},
			{"d", "Delete"},
			{"r", "Retry"},
			{"Esc", "Back"},
		}
	case modeEdit:
		shortcuts = []struct{ key, desc string }{
			{"Enter", "Confirm"},
			{"Esc", "Cancel"},
		}
	default:
		shortcuts = []struct{ key, desc string }{
			{"Enter", "Send"},
			{"Ctrl+E", "Edit/Delete"},
			{"Esc", "Quit"},
		}
	}

	var items []string
	for _, s := range shortcuts {
		items = append(items, statusKeyStyle.Render(s.key)+statusDescStyle.Render(" "+s.desc))
	}

	bar := strings.Join(items, "  │  ")
	return statusBarStyle.Width(width).Align(lipgloss.Center).Render(bar)
}

// refreshTranscript re-snapshots the store and rebuilds the viewport.
func (m *Model) refreshTranscript() {
	m.messages = m.controller.Messages()
	if m.cursor >= len(m.messages) {
		m.cursor = len(m.messages) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	if !m.ready {
		return
	}

	var content strings.Builder
	bubbleWidth := m.viewport.Width - 6

	for i, msg := range m.messages {
		if i > 0 {
			content.WriteString("\n")
		}

		prefix := "  "
		if m.mode == modeSelect && i == m.cursor {
			prefix = cursorStyle.Render("▸ ")
		}

		var label, bubble string
		if msg.Sender == models.SenderUser {
			label = userLabelStyle.Render("⬤ You")
			bubble = userBubbleStyle.Width(bubbleWidth).Render(msg.Content)
		} else {
			label = botLabelStyle.Render("✦ Bot")
			switch msg.Status {
			case models.StatusPending:
				bubble = pendingStyle.Width(bubbleWidth).Render(msg.Content)
			case models.StatusErrored:
				bubble = erroredStyle.Width(bubbleWidth).
					Render(msg.Content + "  (no reply — press Ctrl+E then r to retry)")
			default:
				bubble = botBubbleStyle.Width(bubbleWidth).Render(msg.Content)
			}
		}

		content.WriteString(prefix + label + "\n" + bubble + "\n")
	}

	m.viewport.SetContent(content.String())
}

// Run starts the chat TUI.
func Run(controller *chat.Controller) error {
	p := tea.NewProgram(
		NewModel(controller),
		tea.WithAltScreen(),
	)

	_, err := p.Run()
	return err
}
