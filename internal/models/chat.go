package models

import (
	"sort"
	"time"
)

// GroupParticipant is a member of a group chat
type GroupParticipant struct {
	JID         string `json:"jid"`
	ProfileName string `json:"profile_name,omitempty"`
	IsAdmin     bool   `json:"is_admin"`
}

// GroupMetadata is only present on group chats
type GroupMetadata struct {
	GroupDescription  string             `json:"group_description,omitempty"`
	CreationTimestamp *time.Time         `json:"creation_timestamp,omitempty"`
	OwnerJID          string             `json:"owner_jid,omitempty"`
	ParticipantsCount int                `json:"participants_count"`
	Participants      []GroupParticipant `json:"participants"`
}

// HasParticipant reports whether jid is listed as a group member
func (g *GroupMetadata) HasParticipant(jid string) bool {
	if g == nil {
		return false
	}
	for _, p := range g.Participants {
		if p.JID == jid {
			return true
		}
	}
	return false
}

// Chat is a conversation addressed by a single JID ("<id>@s.whatsapp.net" or "<id>@g.us").
// LastActiveTimestamp tracks the timestamp of the most recently appended message.
type Chat struct {
	ChatJID             string         `json:"chat_jid"`
	Name                string         `json:"name,omitempty"`
	IsGroup             bool           `json:"is_group"`
	LastActiveTimestamp *time.Time     `json:"last_active_timestamp,omitempty"`
	UnreadCount         int            `json:"unread_count"`
	IsArchived          bool           `json:"is_archived"`
	IsPinned            bool           `json:"is_pinned"`
	IsMutedUntil        string         `json:"is_muted_until,omitempty"` // ISO-8601 or "indefinitely"
	GroupMetadata       *GroupMetadata `json:"group_metadata,omitempty"`
	Messages            []Message      `json:"messages"`
}

// SortedMessages returns a copy of the message list ordered by timestamp. The sort is
// stable, so an already chronological list keeps its order.
func (c *Chat) SortedMessages() []Message {
	sorted := make([]Message, len(c.Messages))
	copy(sorted, c.Messages)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})
	return sorted
}

// LatestMessage returns the message with the greatest timestamp. Ties go to the one
// appended last.
func (c *Chat) LatestMessage() (Message, bool) {
	if len(c.Messages) == 0 {
		return Message{}, false
	}
	latest := c.Messages[0]
	for _, m := range c.Messages[1:] {
		if !m.Timestamp.Before(latest.Timestamp) {
			latest = m
		}
	}
	return latest, true
}

// FindMessage returns the index of the message with the given id in storage order
func (c *Chat) FindMessage(messageID string) int {
	for i := range c.Messages {
		if c.Messages[i].MessageID == messageID {
			return i
		}
	}
	return -1
}

// Clone copies the chat including its message list
func (c *Chat) Clone() *Chat {
	out := *c
	if c.LastActiveTimestamp != nil {
		ts := *c.LastActiveTimestamp
		out.LastActiveTimestamp = &ts
	}
	if c.GroupMetadata != nil {
		meta := *c.GroupMetadata
		meta.Participants = append([]GroupParticipant(nil), c.GroupMetadata.Participants...)
		out.GroupMetadata = &meta
	}
	out.Messages = make([]Message, len(c.Messages))
	for i, m := range c.Messages {
		out.Messages[i] = m.Clone()
	}
	return &out
}

// LastMessagePreview is derived on read from a chat's latest message; it is never stored
type LastMessagePreview struct {
	MessageID   string    `json:"message_id"`
	TextSnippet string    `json:"text_snippet,omitempty"`
	SenderName  string    `json:"sender_name,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
	IsOutgoing  bool      `json:"is_outgoing"`
}

// ChatSummary is one entry of list_chats and get_contact_chats
type ChatSummary struct {
	ChatJID             string              `json:"chat_jid"`
	Name                string              `json:"name,omitempty"`
	IsGroup             bool                `json:"is_group"`
	LastActiveTimestamp *time.Time          `json:"last_active_timestamp"`
	UnreadCount         int                 `json:"unread_count"`
	IsArchived          bool                `json:"is_archived"`
	IsPinned            bool                `json:"is_pinned"`
	LastMessagePreview  *LastMessagePreview `json:"last_message_preview"`
}

// ChatDetails is returned by get_chat
type ChatDetails struct {
	ChatJID       string         `json:"chat_jid"`
	Name          string         `json:"name,omitempty"`
	IsGroup       bool           `json:"is_group"`
	GroupMetadata *GroupMetadata `json:"group_metadata"`
	UnreadCount   int            `json:"unread_count"`
	IsArchived    bool           `json:"is_archived"`
	IsMutedUntil  string         `json:"is_muted_until,omitempty"`
	LastMessage   *Message       `json:"last_message"`
}

// DirectChatMetadata is returned by get_direct_chat_by_contact
type DirectChatMetadata struct {
	ChatJID      string   `json:"chat_jid"`
	ContactJID   string   `json:"contact_jid"`
	Name         string   `json:"name,omitempty"`
	IsGroup      bool     `json:"is_group"`
	UnreadCount  int      `json:"unread_count"`
	IsArchived   bool     `json:"is_archived"`
	IsMutedUntil string   `json:"is_muted_until,omitempty"`
	LastMessage  *Message `json:"last_message"`
}
