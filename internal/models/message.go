// Package models defines the chat data types shared across chatterm.
package models

// Sender identifies who authored a message.
type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// Status tracks the local lifecycle of a message. It is never sent to the
// persistence service.
type Status int

const (
	// StatusSettled is the resting state: content is final.
	StatusSettled Status = iota
	// StatusPending marks a bot placeholder whose generation call is in flight.
	StatusPending
	// StatusErrored marks a bot placeholder whose generation call failed.
	// The content stays at PendingContent until a retry succeeds.
	StatusErrored
)

// PendingContent is the sentinel shown for a bot placeholder until the
// generated reply arrives.
const PendingContent = "…"

// Message is a single conversation entry. IDs live in two spaces: ids minted
// locally by ident.Generator before server confirmation, and ids assigned by
// the persistence service and picked up on refresh. Both are opaque strings
// compared only for equality.
type Message struct {
	ID      string `json:"id"`
	Sender  Sender `json:"sender"`
	Content string `json:"content"`
	Status  Status `json:"-"`
}

// IsPlaceholder reports whether the message is an unresolved bot placeholder.
func (m Message) IsPlaceholder() bool {
	return m.Sender == SenderBot && (m.Status == StatusPending || m.Status == StatusErrored)
}
