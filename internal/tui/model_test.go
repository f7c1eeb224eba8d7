package tui

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/pratham/chatterm/internal/chat"
	"github.com/pratham/chatterm/internal/ident"
	"github.com/pratham/chatterm/internal/models"
)

// stubSyncer serves a fixed conversation and accepts all writes.
type stubSyncer struct {
	remote []models.Message
}

func (s *stubSyncer) FetchAll(ctx context.Context) ([]models.Message, error) {
	return s.remote, nil
}
func (s *stubSyncer) Create(ctx context.Context, content string, sender models.Sender) error {
	return nil
}
func (s *stubSyncer) Update(ctx context.Context, id, newContent string, sender models.Sender) error {
	return nil
}
func (s *stubSyncer) Delete(ctx context.Context, id string) error { return nil }

type stubResponder struct{ reply string }

func (s *stubResponder) Generate(ctx context.Context, history []models.Message, userText string) (string, error) {
	return s.reply, nil
}

func newTestModel(remote []models.Message) Model {
	controller := chat.NewController(
		&stubSyncer{remote: remote},
		&stubResponder{reply: "ok"},
		&ident.SequenceGenerator{},
		zap.NewNop(),
	)
	_ = controller.Refresh(context.Background())
	return NewModel(controller)
}

func sized(m Model) Model {
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return updated.(Model)
}

func TestModelStartsUnready(t *testing.T) {
	m := newTestModel(nil)

	if m.ready {
		t.Error("model should not be ready before the first WindowSizeMsg")
	}
	if got := m.View(); !strings.Contains(got, "Loading") {
		t.Errorf("unready view = %q", got)
	}
}

func TestWindowSizeReadiesModel(t *testing.T) {
	m := sized(newTestModel(nil))

	if !m.ready {
		t.Error("model should be ready after WindowSizeMsg")
	}
	if got := m.View(); !strings.Contains(got, "chatterm") {
		t.Error("ready view missing header")
	}
}

func TestEmptyConversationShowsWelcome(t *testing.T) {
	m := sized(newTestModel(nil))

	if got := m.View(); !strings.Contains(got, "Welcome") {
		t.Error("empty conversation should render the welcome screen")
	}
}

func TestTranscriptShowsMessages(t *testing.T) {
	m := sized(newTestModel([]models.Message{
		{ID: "1", Sender: models.SenderUser, Content: "hello there"},
		{ID: "2", Sender: models.SenderBot, Content: "general reply"},
	}))
	m.refreshTranscript()

	view := m.viewport.View()
	if !strings.Contains(view, "hello there") {
		t.Error("transcript missing user message")
	}
	if !strings.Contains(view, "general reply") {
		t.Error("transcript missing bot message")
	}
}

func TestEnterWithEmptyInputDoesNothing(t *testing.T) {
	m := sized(newTestModel(nil))

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(Model)

	if m.loading {
		t.Error("empty input must not start a turn")
	}
	if m.err != nil {
		t.Errorf("empty input must be silently ignored, got %v", m.err)
	}
}

func TestEnterSendsTypedInput(t *testing.T) {
	m := sized(newTestModel(nil))
	m.textarea.SetValue("hello")

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(Model)

	if !m.loading {
		t.Error("send should enter the loading state")
	}
	if cmd == nil {
		t.Error("send should schedule the async resolution")
	}
	if m.textarea.Value() != "" {
		t.Error("input should clear immediately on send")
	}

	// The optimistic pair is already visible.
	if len(m.messages) != 2 {
		t.Fatalf("transcript has %d messages, want optimistic pair", len(m.messages))
	}
	if m.messages[1].Content != models.PendingContent {
		t.Errorf("placeholder content = %q", m.messages[1].Content)
	}
}

func TestSelectModeCursor(t *testing.T) {
	m := sized(newTestModel([]models.Message{
		{ID: "1", Sender: models.SenderUser, Content: "a"},
		{ID: "2", Sender: models.SenderBot, Content: "b"},
	}))
	m.refreshTranscript()

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyCtrlE})
	m = updated.(Model)

	if m.mode != modeSelect {
		t.Fatal("ctrl+e should enter select mode")
	}
	if m.cursor != 1 {
		t.Errorf("cursor = %d, want last message", m.cursor)
	}

	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyUp})
	m = updated.(Model)
	if m.cursor != 0 {
		t.Errorf("cursor = %d after up, want 0", m.cursor)
	}

	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = updated.(Model)
	if m.mode != modeCompose {
		t.Error("esc should leave select mode")
	}
}

func TestEditFlow(t *testing.T) {
	m := sized(newTestModel([]models.Message{
		{ID: "5", Sender: models.SenderUser, Content: "foo"},
	}))
	m.refreshTranscript()

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyCtrlE})
	m = updated.(Model)
	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("e")})
	m = updated.(Model)

	if m.mode != modeEdit {
		t.Fatal("e should enter edit mode on the selected message")
	}
	if m.textarea.Value() != "foo" {
		t.Errorf("edit field = %q, want seeded with current content", m.textarea.Value())
	}

	m.textarea.SetValue("bar")
	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(Model)

	if m.mode != modeCompose {
		t.Error("enter should leave edit mode")
	}
	if cmd == nil {
		t.Fatal("confirm should dispatch the edit")
	}

	// Run the dispatched command synchronously, as bubbletea would.
	if msg := cmd(); msg == nil {
		t.Error("edit command returned no message")
	}

	got := m.controller.Messages()
	if len(got) != 1 || got[0].Content != "bar" {
		t.Errorf("messages after edit = %+v", got)
	}
}

func TestDeleteFlow(t *testing.T) {
	m := sized(newTestModel([]models.Message{
		{ID: "5", Sender: models.SenderUser, Content: "foo"},
	}))
	m.refreshTranscript()

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyCtrlE})
	m = updated.(Model)
	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("d")})
	m = updated.(Model)

	if cmd == nil {
		t.Fatal("d should dispatch the delete")
	}
	cmd()

	if len(m.controller.Messages()) != 0 {
		t.Error("message should be removed")
	}
}

func TestStatusBarFollowsMode(t *testing.T) {
	m := sized(newTestModel([]models.Message{
		{ID: "1", Sender: models.SenderUser, Content: "a"},
	}))
	m.refreshTranscript()

	if got := m.renderStatusBar(80); !strings.Contains(got, "Send") {
		t.Error("compose status bar missing Send hint")
	}

	m.mode = modeSelect
	if got := m.renderStatusBar(80); !strings.Contains(got, "Delete") {
		t.Error("select status bar missing Delete hint")
	}

	m.mode = modeEdit
	if got := m.renderStatusBar(80); !strings.Contains(got, "Confirm") {
		t.Error("edit status bar missing Confirm hint")
	}
}
