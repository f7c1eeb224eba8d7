// Package chat implements the conversation state machine.
//
// The Controller orchestrates user actions against the message store and the
// two gateways. Local state is the source of truth for the active session:
// every action mutates the store optimistically first, then calls out, and a
// failed call never rolls the local view back. Gateway failures are logged
// and, where the user should see them, surfaced as an errored placeholder.
package chat

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"

	apierrors "github.com/pratham/chatterm/internal/errors"
	"github.com/pratham/chatterm/internal/ident"
	"github.com/pratham/chatterm/internal/models"
	"github.com/pratham/chatterm/internal/sanitize"
	"github.com/pratham/chatterm/internal/store"
)

// Syncer is the persistence service contract.
type Syncer interface {
	FetchAll(ctx context.Context) ([]models.Message, error)
	Create(ctx context.Context, content string, sender models.Sender) error
	Update(ctx context.Context, id, newContent string, sender models.Sender) error
	Delete(ctx context.Context, id string) error
}

// Responder is the response generation service contract.
type Responder interface {
	Generate(ctx context.Context, history []models.Message, userText string) (string, error)
}

// Turn identifies one in-flight send: the optimistic user message and its
// bot placeholder.
type Turn struct {
	UserID string
	BotID  string
	Text   string
}

// Controller owns the conversation for one session.
type Controller struct {
	store  *store.Store
	sync   Syncer
	gen    Responder
	ids    ident.Generator
	logger *zap.Logger

	mu        sync.Mutex
	inFlight  bool
	editingID string
	draft     string
}

// NewController creates a controller over an empty store.
func NewController(syncer Syncer, gen Responder, ids ident.Generator, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{
		store:  store.New(),
		sync:   syncer,
		gen:    gen,
		ids:    ids,
		logger: logger,
	}
}

// Messages returns a snapshot of the conversation.
func (c *Controller) Messages() []models.Message {
	return c.store.Messages()
}

// Busy reports whether a turn is awaiting response or persistence.
func (c *Controller) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inFlight
}

// BeginSend validates the input and applies the optimistic mutation: the
// trimmed user message and the "…" bot placeholder are appended as one
// observable step. At most one turn may be in flight; a second send is
// rejected with ErrTurnInFlight until ResolveTurn finishes.
func (c *Controller) BeginSend(input string) (Turn, error) {
	text := strings.TrimSpace(input)
	if text == "" {
		return Turn{}, apierrors.ErrEmptyInput
	}

	c.mu.Lock()
	if c.inFlight {
		c.mu.Unlock()
		return Turn{}, apierrors.ErrTurnInFlight
	}
	c.inFlight = true
	c.mu.Unlock()

	turn := Turn{
		UserID: c.ids.Next(),
		BotID:  c.ids.Next(),
		Text:   text,
	}

	c.store.AppendTurn(
		models.Message{ID: turn.UserID, Sender: models.SenderUser, Content: text},
		models.Message{ID: turn.BotID, Sender: models.SenderBot, Content: models.PendingContent, Status: models.StatusPending},
	)

	return turn, nil
}

// ResolveTurn runs the blocking half of the send protocol: generate the
// reply, settle or mark the placeholder, persist user then bot, and refresh
// from the service so locally-minted ids give way to server ids.
//
// The returned error is the generation failure, if any; persistence and
// refresh failures are logged only.
func (c *Controller) ResolveTurn(ctx context.Context, turn Turn) error {
	defer func() {
		c.mu.Lock()
		c.inFlight = false
		c.mu.Unlock()
	}()

	// History is the conversation before this turn; the optimistic pair is
	// excluded so the utterance is not fed to the generator twice.
	var history []models.Message
	for _, m := range c.store.Messages() {
		if m.ID == turn.UserID || m.ID == turn.BotID {
			continue
		}
		history = append(history, m)
	}

	reply, genErr := c.gen.Generate(ctx, history, turn.Text)
	if genErr != nil {
		c.logger.Warn("response generation failed",
			zap.String("botID", turn.BotID),
			zap.Error(genErr))
		c.store.SetStatus(turn.BotID, models.StatusErrored)
	} else {
		c.store.UpdateContent(turn.BotID, sanitize.Clean(reply))
	}

	// Persist user before bot so the backend's own ordering matches the
	// conversation order. Creates are best-effort; the refresh below is the
	// reconciliation point, not these acks.
	if err := c.sync.Create(ctx, turn.Text, models.SenderUser); err != nil {
		c.logger.Warn("failed to persist user message",
			zap.String("userID", turn.UserID),
			zap.Error(err))
	}

	// An errored placeholder is not settled: its record is created when a
	// retry succeeds, and the destructive refresh is held off so the retry
	// affordance survives on screen.
	if genErr != nil {
		return genErr
	}

	if bot, ok := c.store.Get(turn.BotID); ok {
		if err := c.sync.Create(ctx, bot.Content, models.SenderBot); err != nil {
			c.logger.Warn("failed to persist bot message",
				zap.String("botID", turn.BotID),
				zap.Error(err))
		}
	}

	if err := c.Refresh(ctx); err != nil {
		c.logger.Warn("refresh after persist failed", zap.Error(err))
	}

	return nil
}

// Retry re-runs generation for an errored placeholder. On success the
// placeholder settles, its record is created in the persistence service
// (the failed turn persisted only the user message), and the conversation
// refreshes to pick up server ids.
func (c *Controller) Retry(ctx context.Context, botID string) error {
	bot, ok := c.store.Get(botID)
	if !ok || bot.Status != models.StatusErrored {
		return apierrors.ErrNotFound
	}

	history, text, ok := c.turnContext(botID)
	if !ok {
		return apierrors.ErrNotFound
	}

	c.mu.Lock()
	if c.inFlight {
		c.mu.Unlock()
		return apierrors.ErrTurnInFlight
	}
	c.inFlight = true
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		c.inFlight = false
		c.mu.Unlock()
	}()

	c.store.SetStatus(botID, models.StatusPending)

	reply, err := c.gen.Generate(ctx, history, text)
	if err != nil {
		c.logger.Warn("retry generation failed",
			zap.String("botID", botID),
			zap.Error(err))
		c.store.SetStatus(botID, models.StatusErrored)
		return err
	}

	content := sanitize.Clean(reply)
	c.store.UpdateContent(botID, content)

	if err := c.sync.Create(ctx, content, models.SenderBot); err != nil {
		c.logger.Warn("failed to persist retried reply",
			zap.String("botID", botID),
			zap.Error(err))
	}

	if err := c.Refresh(ctx); err != nil {
		c.logger.Warn("refresh after retry failed", zap.Error(err))
	}

	return nil
}

// turnContext finds the user utterance a placeholder is answering (the
// nearest user message preceding it) and the conversation before that
// utterance.
func (c *Controller) turnContext(botID string) ([]models.Message, string, bool) {
	messages := c.store.Messages()
	for i, m := range messages {
		if m.ID != botID {
			continue
		}
		for j := i - 1; j >= 0; j-- {
			if messages[j].Sender == models.SenderUser {
				return messages[:j], messages[j].Content, true
			}
		}
		return nil, "", false
	}
	return nil, "", false
}

// StartEdit records the edit target and seeds the draft with its current
// content. Starting an edit on another message abandons any unconfirmed one.
func (c *Controller) StartEdit(id string) (string, bool) {
	msg, ok := c.store.Get(id)
	if !ok {
		return "", false
	}

	c.mu.Lock()
	c.editingID = id
	c.draft = msg.Content
	c.mu.Unlock()

	return msg.Content, true
}

// EditingID returns the id of the message being edited, or "".
func (c *Controller) EditingID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.editingID
}

// Draft returns the draft content recorded when the edit started.
func (c *Controller) Draft() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draft
}

// CancelEdit abandons an unconfirmed edit.
func (c *Controller) CancelEdit() {
	c.mu.Lock()
	c.editingID = ""
	c.draft = ""
	c.mu.Unlock()
}

// ConfirmEdit applies the edited content locally and dispatches the update
// to the persistence service. Edit state clears on dispatch regardless of
// the network result; failures are logged only. Absent targets and unchanged
// content are no-ops.
func (c *Controller) ConfirmEdit(ctx context.Context, id, content string) {
	c.CancelEdit()

	msg, ok := c.store.Get(id)
	if !ok || msg.Content == content {
		return
	}

	c.store.UpdateContent(id, content)

	if err := c.sync.Update(ctx, id, content, msg.Sender); err != nil {
		c.logger.Warn("failed to persist edit",
			zap.String("id", id),
			zap.Error(err))
	}
}

// Delete removes the message locally and dispatches the remote delete. The
// local removal is final even if the remote call fails.
func (c *Controller) Delete(ctx context.Context, id string) {
	if _, ok := c.store.Get(id); !ok {
		return
	}

	c.store.Remove(id)

	if err := c.sync.Delete(ctx, id); err != nil {
		c.logger.Warn("failed to delete message remotely",
			zap.String("id", id),
			zap.Error(err))
	}
}

// Refresh replaces the conversation wholesale with server truth. An edit in
// progress survives only if its target id still exists afterwards.
func (c *Controller) Refresh(ctx context.Context) error {
	messages, err := c.sync.FetchAll(ctx)
	if err != nil {
		return err
	}

	c.store.ReplaceAll(messages)

	c.mu.Lock()
	editing := c.editingID
	c.mu.Unlock()
	if editing != "" {
		if _, ok := c.store.Get(editing); !ok {
			c.CancelEdit()
		}
	}

	return nil
}
