package models

import "encoding/json"

// SendMessageResponse is returned by send_message, send_file and send_audio_message
type SendMessageResponse struct {
	Success       bool   `json:"success"`
	MessageID     string `json:"message_id"`
	Timestamp     string `json:"timestamp"`
	StatusMessage string `json:"status_message"`
}

// MessageResult is one list_messages entry: a bare message when context was not
// requested, otherwise the message with its neighbours.
type MessageResult struct {
	Message     *Message
	WithContext *MessageWithContext
}

func (r MessageResult) MarshalJSON() ([]byte, error) {
	if r.WithContext != nil {
		return json.Marshal(r.WithContext)
	}
	return json.Marshal(r.Message)
}

// Matched returns the matched message regardless of the result shape
func (r MessageResult) Matched() Message {
	if r.WithContext != nil {
		return r.WithContext.MatchedMessage
	}
	if r.Message != nil {
		return *r.Message
	}
	return Message{}
}

type ListMessagesResponse struct {
	Results      []MessageResult `json:"results"`
	TotalMatches int             `json:"total_matches"`
	Page         int             `json:"page"`
	Limit        int             `json:"limit"`
}

type MessageContextResponse struct {
	TargetMessage  ContextMessage   `json:"target_message"`
	MessagesBefore []ContextMessage `json:"messages_before"`
	MessagesAfter  []ContextMessage `json:"messages_after"`
}

type ListChatsResponse struct {
	Chats      []ChatSummary `json:"chats"`
	TotalChats int           `json:"total_chats"`
	Page       int           `json:"page"`
	Limit      int           `json:"limit"`
}

type SearchContactsResponse struct {
	Contacts []ContactSummary `json:"contacts"`
}
