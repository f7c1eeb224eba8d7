// Package store holds the ordered conversation and its mutation primitives.
//
// The store is the reconciliation core: every user action and every gateway
// response lands here as one of a small set of mutations, applied in the
// order the controller issues them. Reads hand out copied snapshots, so an
// observer never sees a half-applied multi-step mutation.
package store

import (
	"sync"

	"github.com/pratham/chatterm/internal/models"
)

// Store is an in-memory ordered collection of messages.
type Store struct {
	mu       sync.RWMutex
	messages []models.Message
}

// New creates an empty store.
func New() *Store {
	return &Store{messages: []models.Message{}}
}

// ReplaceAll discards the current contents and installs server truth
// wholesale. There is no merge logic.
func (s *Store) ReplaceAll(messages []models.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.messages = make([]models.Message, len(messages))
	copy(s.messages, messages)
}

// Append inserts a message at the tail.
func (s *Store) Append(msg models.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.messages = append(s.messages, msg)
}

// AppendTurn inserts the optimistic user message and its bot placeholder as
// one observable step, so no snapshot ever shows the user message without
// its placeholder.
func (s *Store) AppendTurn(user, bot models.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.messages = append(s.messages, user, bot)
}

// UpdateContent replaces the content of the message with the given id and
// marks it settled. No-op if the id is absent.
func (s *Store) UpdateContent(id, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.messages {
		if s.messages[i].ID == id {
			s.messages[i].Content = content
			s.messages[i].Status = models.StatusSettled
			return
		}
	}
}

// SetStatus updates the lifecycle status of the message with the given id.
// No-op if the id is absent.
func (s *Store) SetStatus(id string, status models.Status) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.messages {
		if s.messages[i].ID == id {
			s.messages[i].Status = status
			return
		}
	}
}

// Remove deletes the message with the given id without reordering the
// remainder. No-op if the id is absent.
func (s *Store) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.messages {
		if s.messages[i].ID == id {
			s.messages = append(s.messages[:i], s.messages[i+1:]...)
			return
		}
	}
}

// Messages returns a snapshot of the conversation in insertion order.
func (s *Store) Messages() []models.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot := make([]models.Message, len(s.messages))
	copy(snapshot, s.messages)
	return snapshot
}

// Get returns the message with the given id.
func (s *Store) Get(id string) (models.Message, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, m := range s.messages {
		if m.ID == id {
			return m, true
		}
	}
	return models.Message{}, false
}

// Len returns the number of messages.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.messages)
}
