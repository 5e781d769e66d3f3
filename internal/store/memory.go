package store

import (
	"fmt"
	"sync"

	"wasim/internal/models"
)

// orderedMap keeps insertion order. Replacing a key keeps its original position.
type orderedMap[T any] struct {
	keys  []string
	items map[string]T
}

func newOrderedMap[T any]() orderedMap[T] {
	return orderedMap[T]{items: make(map[string]T)}
}

func (m *orderedMap[T]) get(key string) (T, bool) {
	v, ok := m.items[key]
	return v, ok
}

func (m *orderedMap[T]) put(key string, v T) {
	if _, exists := m.items[key]; !exists {
		m.keys = append(m.keys, key)
	}
	m.items[key] = v
}

func (m *orderedMap[T]) values() []T {
	out := make([]T, 0, len(m.keys))
	for _, k := range m.keys {
		out = append(out, m.items[k])
	}
	return out
}

func (m *orderedMap[T]) len() int {
	return len(m.keys)
}

// Memory is the in-process store. Every read returns copies, so callers never hold
// references into stored state.
type Memory struct {
	mu             sync.RWMutex
	currentUserJID string
	contacts       orderedMap[models.Contact]
	chats          orderedMap[*models.Chat]
	writeFilter    WriteFilter
}

var (
	_ ContactStore = (*Memory)(nil)
	_ ChatStore    = (*Memory)(nil)
)

// NewMemory creates an empty store
func NewMemory() *Memory {
	return &Memory{
		contacts: newOrderedMap[models.Contact](),
		chats:    newOrderedMap[*models.Chat](),
	}
}

// CurrentUserJID returns the JID of the simulated account owner
func (m *Memory) CurrentUserJID() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.currentUserJID
}

// SetCurrentUserJID sets the JID of the simulated account owner
func (m *Memory) SetCurrentUserJID(jid string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.currentUserJID = jid
}

// SetWriteFilter installs a filter consulted before every chat mutation. Pass nil to remove it.
func (m *Memory) SetWriteFilter(filter WriteFilter) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writeFilter = filter
}

// Reset drops all contacts and chats
func (m *Memory) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.currentUserJID = ""
	m.contacts = newOrderedMap[models.Contact]()
	m.chats = newOrderedMap[*models.Chat]()
}

// PutContact inserts or replaces a contact keyed by its resource name
func (m *Memory) PutContact(contact models.Contact) error {
	if contact.ResourceName == "" {
		return fmt.Errorf("contact resource name is required")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.contacts.put(contact.ResourceName, cloneContact(contact))
	return nil
}

// Contacts returns all contacts in insertion order
func (m *Memory) Contacts() []models.Contact {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := m.contacts.values()
	for i := range out {
		out[i] = cloneContact(out[i])
	}
	return out
}

// Contact looks up a contact by resource name
func (m *Memory) Contact(resourceName string) (models.Contact, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.contacts.get(resourceName)
	if !ok {
		return models.Contact{}, false
	}
	return cloneContact(c), true
}

// PutChat inserts or replaces a chat with its messages. Timestamps are stored in UTC.
func (m *Memory) PutChat(chat models.Chat) error {
	if chat.ChatJID == "" {
		return fmt.Errorf("chat JID is required")
	}
	stored := chat.Clone()
	normalizeChat(stored)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.chats.put(stored.ChatJID, stored)
	return nil
}

// Get returns a copy of the chat
func (m *Memory) Get(chatJID string) (*models.Chat, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	chat, ok := m.chats.get(chatJID)
	if !ok {
		return nil, false
	}
	return chat.Clone(), true
}

// Chats returns copies of all chats in insertion order
func (m *Memory) Chats() []*models.Chat {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := m.chats.values()
	for i := range out {
		out[i] = out[i].Clone()
	}
	return out
}

// ChatCount returns the number of chats
func (m *Memory) ChatCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.chats.len()
}

// GetOrCreate returns the chat, creating an empty one on first access.
// The second result reports whether the chat was created.
func (m *Memory) GetOrCreate(chatJID string, isGroup bool, name string) (*models.Chat, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if chat, ok := m.chats.get(chatJID); ok {
		return chat.Clone(), false, nil
	}
	if m.writeFilter != nil {
		if err := m.writeFilter(OpCreateChat, chatJID); err != nil {
			return nil, false, err
		}
	}

	chat := &models.Chat{
		ChatJID:  chatJID,
		Name:     name,
		IsGroup:  isGroup,
		Messages: []models.Message{},
	}
	m.chats.put(chatJID, chat)
	return chat.Clone(), true, nil
}

// AppendMessage adds msg to the chat and moves the chat's last active timestamp to the
// message timestamp, even when that is earlier than the previous value. It returns false
// when the chat does not exist, the message id is already used in the chat, or the write
// filter rejects the write.
func (m *Memory) AppendMessage(chatJID string, msg models.Message) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	chat, ok := m.chats.get(chatJID)
	if !ok || msg.MessageID == "" {
		return false
	}
	if chat.FindMessage(msg.MessageID) >= 0 {
		return false
	}
	if m.writeFilter != nil {
		if err := m.writeFilter(OpAppendMessage, chatJID); err != nil {
			return false
		}
	}

	stored := msg.Clone()
	stored.ChatJID = chatJID
	stored.Timestamp = stored.Timestamp.UTC()
	chat.Messages = append(chat.Messages, stored)
	ts := stored.Timestamp
	chat.LastActiveTimestamp = &ts
	return true
}

func normalizeChat(chat *models.Chat) {
	if chat.Messages == nil {
		chat.Messages = []models.Message{}
	}
	if chat.LastActiveTimestamp != nil {
		ts := chat.LastActiveTimestamp.UTC()
		chat.LastActiveTimestamp = &ts
	}
	for i := range chat.Messages {
		chat.Messages[i].Timestamp = chat.Messages[i].Timestamp.UTC()
		if chat.Messages[i].ChatJID == "" {
			chat.Messages[i].ChatJID = chat.ChatJID
		}
	}
}

func cloneContact(c models.Contact) models.Contact {
	c.Names = append([]models.Name(nil), c.Names...)
	c.PhoneNumbers = append([]models.PhoneNumber(nil), c.PhoneNumbers...)
	if c.WhatsApp != nil {
		wa := *c.WhatsApp
		c.WhatsApp = &wa
	}
	return c
}
