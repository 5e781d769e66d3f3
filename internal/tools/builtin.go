package tools

import (
	"context"

	"wasim/internal/constants"
	"wasim/internal/models"
)

// Simulator is the set of operations exposed as tools
type Simulator interface {
	SendMessage(ctx context.Context, req models.SendMessageRequest) (*models.SendMessageResponse, error)
	SendFile(ctx context.Context, req models.SendFileRequest) (*models.SendMessageResponse, error)
	SendAudioMessage(ctx context.Context, req models.SendAudioRequest) (*models.SendMessageResponse, error)
	ListMessages(ctx context.Context, req models.ListMessagesRequest) (*models.ListMessagesResponse, error)
	GetMessageContext(ctx context.Context, req models.GetMessageContextRequest) (*models.MessageContextResponse, error)
	ListChats(ctx context.Context, req models.ListChatsRequest) (*models.ListChatsResponse, error)
	GetContactChats(ctx context.Context, req models.GetContactChatsRequest) (*models.ListChatsResponse, error)
	GetChat(ctx context.Context, req models.GetChatRequest) (*models.ChatDetails, error)
	GetLastInteraction(ctx context.Context, req models.GetLastInteractionRequest) (*models.Message, error)
	GetDirectChatByContact(ctx context.Context, req models.GetDirectChatRequest) (*models.DirectChatMetadata, error)
	SearchContacts(ctx context.Context, req models.SearchContactsRequest) (*models.SearchContactsResponse, error)
}

// RegisterSimulator registers every simulator operation under its function-call name
func RegisterSimulator(r *Registry, sim Simulator) error {
	for _, tool := range simulatorTools(sim) {
		if err := r.Register(tool); err != nil {
			return err
		}
	}
	return nil
}

func simulatorTools(sim Simulator) []Tool {
	return []Tool{
		{
			Name:        "send_message",
			Description: "Send a text message to a person or group, optionally as a reply to a message in the same chat",
			InputSchema: object(map[string]interface{}{
				"recipient":           stringProp("Phone number, person JID or group JID"),
				"message":             stringProp("Message text"),
				"reply_to_message_id": stringProp("ID of the message to reply to"),
			}, "recipient", "message"),
			Execute: typed([]string{"recipient", "message"}, noDefaults[models.SendMessageRequest](), sim.SendMessage),
		},
		{
			Name:        "send_file",
			Description: "Send an image, video, audio or document file",
			InputSchema: object(map[string]interface{}{
				"recipient":  stringProp("Phone number, person JID or group JID"),
				"media_path": stringProp("Path of the file to send"),
				"caption":    stringProp("Optional caption"),
			}, "recipient", "media_path"),
			Execute: typed([]string{"recipient", "media_path"}, noDefaults[models.SendFileRequest](), sim.SendFile),
		},
		{
			Name:        "send_audio_message",
			Description: "Send an audio file as a voice message",
			InputSchema: object(map[string]interface{}{
				"recipient":  stringProp("Phone number, person JID or group JID"),
				"media_path": stringProp("Path of the audio file"),
			}, "recipient", "media_path"),
			Execute: typed([]string{"recipient", "media_path"}, noDefaults[models.SendAudioRequest](), sim.SendAudioMessage),
		},
		{
			Name:        "list_messages",
			Description: "Search messages by time range, sender, chat and text, with surrounding context",
			InputSchema: object(map[string]interface{}{
				"after":               stringProp("ISO-8601 lower bound, inclusive"),
				"before":              stringProp("ISO-8601 upper bound, inclusive"),
				"sender_phone_number": stringProp("Only messages sent by this phone number"),
				"chat_jid":            stringProp("Only messages in this chat"),
				"query":               stringProp("Case-insensitive text to search for"),
				"limit":               intProp("Page size", constants.DefaultPageLimit),
				"page":                intProp("Zero-based page number", 0),
				"include_context":     boolProp("Include neighbouring messages", true),
				"context_before":      intProp("Messages before each match", constants.DefaultContextBefore),
				"context_after":       intProp("Messages after each match", constants.DefaultContextAfter),
			}),
			Execute: typed(nil, models.NewListMessagesRequest, sim.ListMessages),
		},
		{
			Name:        "get_message_context",
			Description: "Get the messages around a specific message",
			InputSchema: object(map[string]interface{}{
				"message_id": stringProp("Target message ID"),
				"before":     intProp("Messages before the target", constants.DefaultContextBefore),
				"after":      intProp("Messages after the target", constants.DefaultContextAfter),
			}, "message_id"),
			Execute: typed([]string{"message_id"}, models.NewGetMessageContextRequest, sim.GetMessageContext),
		},
		{
			Name:        "list_chats",
			Description: "List chats filtered by name or JID and sorted by activity or name",
			InputSchema: object(map[string]interface{}{
				"query":                stringProp("Case-insensitive text matched against chat name and JID"),
				"sort_by":              enumProp("Sort order", constants.DefaultChatSortBy, constants.SortByLastActive, constants.SortByName),
				"limit":                intProp("Page size", constants.DefaultPageLimit),
				"page":                 intProp("Zero-based page number", 0),
				"include_last_message": boolProp("Include a preview of the latest message", true),
			}),
			Execute: typed(nil, models.NewListChatsRequest, sim.ListChats),
		},
		{
			Name:        "get_contact_chats",
			Description: "List the chats a contact takes part in",
			InputSchema: object(map[string]interface{}{
				"jid":   stringProp("Contact JID"),
				"limit": intProp("Page size", constants.DefaultPageLimit),
				"page":  intProp("Zero-based page number", 0),
			}, "jid"),
			Execute: typed([]string{"jid"}, models.NewGetContactChatsRequest, sim.GetContactChats),
		},
		{
			Name:        "get_chat",
			Description: "Get chat details including group metadata",
			InputSchema: object(map[string]interface{}{
				"chat_jid":             stringProp("Chat JID"),
				"include_last_message": boolProp("Include the latest message", true),
			}, "chat_jid"),
			Execute: typed([]string{"chat_jid"}, models.NewGetChatRequest, sim.GetChat),
		},
		{
			Name:        "get_last_interaction",
			Description: "Get the most recent message exchanged with a contact",
			InputSchema: object(map[string]interface{}{
				"jid": stringProp("Contact JID"),
			}, "jid"),
			Execute: typed([]string{"jid"}, noDefaults[models.GetLastInteractionRequest](), sim.GetLastInteraction),
		},
		{
			Name:        "get_direct_chat_by_contact",
			Description: "Find the direct chat with the contact owning a phone number",
			InputSchema: object(map[string]interface{}{
				"sender_phone_number": stringProp("Contact phone number"),
			}, "sender_phone_number"),
			Execute: typed([]string{"sender_phone_number"}, noDefaults[models.GetDirectChatRequest](), sim.GetDirectChatByContact),
		},
		{
			Name:        "search_contacts",
			Description: "Search WhatsApp contacts by name or phone number",
			InputSchema: object(map[string]interface{}{
				"query": stringProp("Name fragment or phone digits"),
			}, "query"),
			Execute: typed([]string{"query"}, noDefaults[models.SearchContactsRequest](), sim.SearchContacts),
		},
	}
}

func object(properties map[string]interface{}, required ...string) map[string]interface{} {
	schema := map[string]interface{}{
		"type":                 "object",
		"properties":           properties,
		"additionalProperties": false,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

func stringProp(description string) map[string]interface{} {
	return map[string]interface{}{"type": "string", "description": description}
}

func intProp(description string, def int) map[string]interface{} {
	return map[string]interface{}{"type": "integer", "description": description, "default": def, "minimum": 0}
}

func boolProp(description string, def bool) map[string]interface{} {
	return map[string]interface{}{"type": "boolean", "description": description, "default": def}
}

func enumProp(description, def string, values ...string) map[string]interface{} {
	return map[string]interface{}{"type": "string", "description": description, "default": def, "enum": values}
}
