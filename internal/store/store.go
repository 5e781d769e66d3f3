// Package store holds the simulator's mutable state: the contact table and the chat table.
package store

import (
	"wasim/internal/models"
)

// ContactStore is a read view over the contact table. Iteration order is insertion order.
type ContactStore interface {
	Contacts() []models.Contact
	Contact(resourceName string) (models.Contact, bool)
}

// ChatStore owns chats and their messages
type ChatStore interface {
	Get(chatJID string) (*models.Chat, bool)
	Chats() []*models.Chat
	GetOrCreate(chatJID string, isGroup bool, name string) (*models.Chat, bool, error)
	AppendMessage(chatJID string, msg models.Message) bool
}

// WriteOp names a mutation for write filters
type WriteOp string

const (
	OpCreateChat    WriteOp = "create_chat"
	OpAppendMessage WriteOp = "append_message"
)

// WriteFilter can veto a mutation. A non-nil error makes the write fail without changing state.
type WriteFilter func(op WriteOp, chatJID string) error
