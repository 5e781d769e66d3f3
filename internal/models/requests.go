package models

import "wasim/internal/constants"

// SendMessageRequest carries send_message arguments
type SendMessageRequest struct {
	Recipient        string  `json:"recipient"`
	Message          string  `json:"message"`
	ReplyToMessageID *string `json:"reply_to_message_id,omitempty"`
}

// SendFileRequest carries send_file arguments
type SendFileRequest struct {
	Recipient string  `json:"recipient"`
	MediaPath string  `json:"media_path"`
	Caption   *string `json:"caption,omitempty"`
}

// SendAudioRequest carries send_audio_message arguments
type SendAudioRequest struct {
	Recipient string `json:"recipient"`
	MediaPath string `json:"media_path"`
}

// ListMessagesRequest carries list_messages arguments
type ListMessagesRequest struct {
	After             *string `json:"after,omitempty"`
	Before            *string `json:"before,omitempty"`
	SenderPhoneNumber *string `json:"sender_phone_number,omitempty"`
	ChatJID           *string `json:"chat_jid,omitempty"`
	Query             *string `json:"query,omitempty"`
	Limit             int     `json:"limit"`
	Page              int     `json:"page"`
	IncludeContext    bool    `json:"include_context"`
	ContextBefore     int     `json:"context_before"`
	ContextAfter      int     `json:"context_after"`
}

// NewListMessagesRequest returns a request holding the documented defaults
func NewListMessagesRequest() ListMessagesRequest {
	return ListMessagesRequest{
		Limit:          constants.DefaultPageLimit,
		IncludeContext: true,
		ContextBefore:  constants.DefaultContextBefore,
		ContextAfter:   constants.DefaultContextAfter,
	}
}

// GetMessageContextRequest carries get_message_context arguments
type GetMessageContextRequest struct {
	MessageID string `json:"message_id"`
	Before    int    `json:"before"`
	After     int    `json:"after"`
}

func NewGetMessageContextRequest() GetMessageContextRequest {
	return GetMessageContextRequest{
		Before: constants.DefaultContextBefore,
		After:  constants.DefaultContextAfter,
	}
}

// ListChatsRequest carries list_chats arguments
type ListChatsRequest struct {
	Query              *string `json:"query,omitempty"`
	SortBy             string  `json:"sort_by"`
	Limit              int     `json:"limit"`
	Page               int     `json:"page"`
	IncludeLastMessage bool    `json:"include_last_message"`
}

func NewListChatsRequest() ListChatsRequest {
	return ListChatsRequest{
		SortBy:             constants.DefaultChatSortBy,
		Limit:              constants.DefaultPageLimit,
		IncludeLastMessage: true,
	}
}

// GetContactChatsRequest carries get_contact_chats arguments
type GetContactChatsRequest struct {
	JID   string `json:"jid"`
	Limit int    `json:"limit"`
	Page  int    `json:"page"`
}

func NewGetContactChatsRequest() GetContactChatsRequest {
	return GetContactChatsRequest{Limit: constants.DefaultPageLimit}
}

// GetChatRequest carries get_chat arguments
type GetChatRequest struct {
	ChatJID            string `json:"chat_jid"`
	IncludeLastMessage bool   `json:"include_last_message"`
}

func NewGetChatRequest() GetChatRequest {
	return GetChatRequest{IncludeLastMessage: true}
}

// GetLastInteractionRequest carries get_last_interaction arguments
type GetLastInteractionRequest struct {
	JID string `json:"jid"`
}

// GetDirectChatRequest carries get_direct_chat_by_contact arguments
type GetDirectChatRequest struct {
	SenderPhoneNumber string `json:"sender_phone_number"`
}

// SearchContactsRequest carries search_contacts arguments
type SearchContactsRequest struct {
	Query string `json:"query"`
}
