package models

import (
	"time"
)

type MessageStatus string

const (
	MessageStatusSent      MessageStatus = "sent"
	MessageStatusDelivered MessageStatus = "delivered"
	MessageStatusRead      MessageStatus = "read"
	MessageStatusFailed    MessageStatus = "failed"
)

type MediaType string

const (
	MediaTypeImage    MediaType = "image"
	MediaTypeVideo    MediaType = "video"
	MediaTypeAudio    MediaType = "audio"
	MediaTypeDocument MediaType = "document"
	MediaTypeSticker  MediaType = "sticker"
)

// Placeholder returns the preview text shown for media without text or caption
func (t MediaType) Placeholder() string {
	switch t {
	case MediaTypeImage:
		return "Photo"
	case MediaTypeVideo:
		return "Video"
	case MediaTypeAudio:
		return "Audio"
	case MediaTypeDocument:
		return "Document"
	case MediaTypeSticker:
		return "Sticker"
	default:
		return "Media"
	}
}

type MediaInfo struct {
	MediaType              MediaType `json:"media_type"`
	FileName               string    `json:"file_name,omitempty"`
	Caption                string    `json:"caption,omitempty"`
	MimeType               string    `json:"mime_type,omitempty"`
	SimulatedLocalPath     string    `json:"simulated_local_path,omitempty"`
	SimulatedFileSizeBytes int64     `json:"simulated_file_size_bytes,omitempty"`
}

// QuotedMessageInfo is a snapshot of the replied-to message taken when the reply is
// created. It is never refreshed from the original.
type QuotedMessageInfo struct {
	QuotedMessageID   string `json:"quoted_message_id"`
	QuotedSenderJID   string `json:"quoted_sender_jid"`
	QuotedTextPreview string `json:"quoted_text_preview,omitempty"`
}

// Message is immutable once appended to a chat
type Message struct {
	MessageID         string             `json:"message_id"`
	ChatJID           string             `json:"chat_jid"`
	SenderJID         string             `json:"sender_jid"`
	SenderName        string             `json:"sender_name,omitempty"`
	Timestamp         time.Time          `json:"timestamp"`
	TextContent       string             `json:"text_content,omitempty"`
	IsOutgoing        bool               `json:"is_outgoing"`
	MediaInfo         *MediaInfo         `json:"media_info,omitempty"`
	QuotedMessageInfo *QuotedMessageInfo `json:"quoted_message_info,omitempty"`
	Reaction          string             `json:"reaction,omitempty"`
	Status            MessageStatus      `json:"status,omitempty"`
	Forwarded         *bool              `json:"forwarded,omitempty"`
}

// Clone returns a deep copy so callers cannot mutate stored messages
func (m Message) Clone() Message {
	if m.MediaInfo != nil {
		media := *m.MediaInfo
		m.MediaInfo = &media
	}
	if m.QuotedMessageInfo != nil {
		quoted := *m.QuotedMessageInfo
		m.QuotedMessageInfo = &quoted
	}
	if m.Forwarded != nil {
		forwarded := *m.Forwarded
		m.Forwarded = &forwarded
	}
	return m
}

// MessageWithContext is a list_messages result carrying same-chat neighbours
type MessageWithContext struct {
	MatchedMessage Message   `json:"matched_message"`
	ContextBefore  []Message `json:"context_before"`
	ContextAfter   []Message `json:"context_after"`
}

// ContextMessage is the flattened record returned by get_message_context
type ContextMessage struct {
	ID                 string `json:"id"`
	Timestamp          int64  `json:"timestamp"`
	SenderID           string `json:"sender_id"`
	ChatID             string `json:"chat_id"`
	ContentType        string `json:"content_type"`
	TextContent        string `json:"text_content,omitempty"`
	MediaCaption       string `json:"media_caption,omitempty"`
	IsSentByMe         bool   `json:"is_sent_by_me"`
	Status             string `json:"status"`
	RepliedToMessageID string `json:"replied_to_message_id,omitempty"`
	Forwarded          *bool  `json:"forwarded,omitempty"`
}

// FormatTimestamp renders a timestamp in the wire form: UTC, ISO-8601, literal Z suffix
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
