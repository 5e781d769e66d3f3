package service

import (
	"context"
	"sort"
	"strings"

	"wasim/internal/constants"
	"wasim/internal/contacts"
	"wasim/internal/errors"
	"wasim/internal/models"
	"wasim/internal/validation"

	"github.com/sirupsen/logrus"
)

// ListChats filters, sorts and pages the chat table
func (s *Simulator) ListChats(ctx context.Context, req models.ListChatsRequest) (*models.ListChatsResponse, error) {
	if req.SortBy != constants.SortByLastActive && req.SortBy != constants.SortByName {
		return nil, errors.NewInvalidSortByError(req.SortBy)
	}
	if err := validation.ValidateNonNegative(
		validation.Field{Name: "limit", Value: req.Limit},
		validation.Field{Name: "page", Value: req.Page},
	); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	query := strings.ToLower(deref(req.Query))
	var chats []*models.Chat
	for _, chat := range s.store.Chats() {
		if query != "" &&
			!strings.Contains(strings.ToLower(chat.Name), query) &&
			!strings.Contains(strings.ToLower(chat.ChatJID), query) {
			continue
		}
		chats = append(chats, chat)
	}

	if req.SortBy == constants.SortByName {
		sortByName(chats)
	} else {
		sortByLastActive(chats)
	}

	start, end, err := pageBounds(len(chats), req.Page, req.Limit)
	if err != nil {
		return nil, err
	}

	summaries := make([]models.ChatSummary, 0, end-start)
	for _, chat := range chats[start:end] {
		summary := summarizeChat(chat)
		if req.IncludeLastMessage {
			summary.LastMessagePreview = s.lastMessagePreview(chat, 0)
		}
		summaries = append(summaries, summary)
	}

	LogWithContext(ctx, s.logger, "list_chats", logrus.Fields{
		LogFieldSortBy: req.SortBy,
		LogFieldCount:  len(chats),
		LogFieldPage:   req.Page,
	}).Debug("Listed chats")

	return &models.ListChatsResponse{
		Chats:      summaries,
		TotalChats: len(chats),
		Page:       req.Page,
		Limit:      req.Limit,
	}, nil
}

// GetContactChats lists the direct chat with a contact and every group chat the contact
// has posted in or is a listed participant of, most recently active first.
func (s *Simulator) GetContactChats(ctx context.Context, req models.GetContactChatsRequest) (*models.ListChatsResponse, error) {
	jid := strings.TrimSpace(req.JID)
	if jid == "" {
		return nil, errors.NewValidationError("jid", "")
	}
	if err := validation.ValidateNonNegative(
		validation.Field{Name: "limit", Value: req.Limit},
		validation.Field{Name: "page", Value: req.Page},
	); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.directory.FindByJID(jid); !ok {
		return nil, errors.NewContactNotFoundError(jid)
	}

	var chats []*models.Chat
	for _, chat := range s.store.Chats() {
		if participated(chat, jid) {
			chats = append(chats, chat)
		}
	}
	sortByLastActive(chats)

	start, end, err := pageBounds(len(chats), req.Page, req.Limit)
	if err != nil {
		return nil, err
	}

	summaries := make([]models.ChatSummary, 0, end-start)
	for _, chat := range chats[start:end] {
		summary := summarizeChat(chat)
		summary.LastMessagePreview = s.lastMessagePreview(chat, constants.PreviewSnippetMaxLength)
		summaries = append(summaries, summary)
	}

	LogWithContext(ctx, s.logger, "get_contact_chats", logrus.Fields{
		LogFieldJID:   jid,
		LogFieldCount: len(chats),
	}).Debug("Listed contact chats")

	return &models.ListChatsResponse{
		Chats:      summaries,
		TotalChats: len(chats),
		Page:       req.Page,
		Limit:      req.Limit,
	}, nil
}

// GetChat returns one chat's metadata and, optionally, its latest message
func (s *Simulator) GetChat(ctx context.Context, req models.GetChatRequest) (*models.ChatDetails, error) {
	jid := strings.TrimSpace(req.ChatJID)
	if jid == "" {
		return nil, errors.NewValidationError("chat_jid", "")
	}
	if !validation.IsJID(jid) {
		return nil, errors.NewInvalidJIDError(jid)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	chat, ok := s.store.Get(jid)
	if !ok {
		return nil, errors.NewChatNotFoundError(jid)
	}

	details := &models.ChatDetails{
		ChatJID:      chat.ChatJID,
		Name:         chat.Name,
		IsGroup:      chat.IsGroup,
		UnreadCount:  chat.UnreadCount,
		IsArchived:   chat.IsArchived,
		IsMutedUntil: chat.IsMutedUntil,
	}
	if chat.IsGroup {
		details.GroupMetadata = chat.GroupMetadata
	}
	if req.IncludeLastMessage {
		if latest, ok := chat.LatestMessage(); ok {
			details.LastMessage = &latest
		}
	}
	return details, nil
}

// GetLastInteraction returns the most recent message sent to or received from a contact,
// or nil when they never interacted.
func (s *Simulator) GetLastInteraction(ctx context.Context, req models.GetLastInteractionRequest) (*models.Message, error) {
	jid := strings.TrimSpace(req.JID)
	if jid == "" {
		return nil, errors.NewValidationError("jid", "JID cannot be empty.")
	}
	if !validation.IsJID(jid) {
		return nil, errors.NewInvalidJIDError(jid)
	}
	if validation.IsGroupJID(jid) {
		return nil, errors.NewContactNotFoundError(jid)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.directory.FindByJID(jid); !ok {
		return nil, errors.NewContactNotFoundError(jid)
	}

	var latest *models.Message
	for _, chat := range s.store.Chats() {
		for i := range chat.Messages {
			m := &chat.Messages[i]
			relevant := (m.IsOutgoing && m.ChatJID == jid) || (!m.IsOutgoing && m.SenderJID == jid)
			if relevant && (latest == nil || m.Timestamp.After(latest.Timestamp)) {
				latest = m
			}
		}
	}
	return latest, nil
}

// GetDirectChatByContact returns the one-to-one chat with the WhatsApp user owning phone
func (s *Simulator) GetDirectChatByContact(ctx context.Context, req models.GetDirectChatRequest) (*models.DirectChatMetadata, error) {
	normalized, err := validation.NormalizePhoneNumber(req.SenderPhoneNumber)
	if err != nil {
		return nil, errors.NewInvalidPhoneNumberError("The provided phone number has an invalid format.")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	contact := s.contactForPhone(normalized)
	if contact == nil {
		return nil, errors.NewContactNotFoundError(req.SenderPhoneNumber)
	}
	if !contact.IsWhatsAppUser() {
		return nil, errors.NewInvalidPhoneNumberError("The provided phone number does not belong to a WhatsApp user.")
	}

	chatJID := contact.JID()
	if chatJID == "" {
		chatJID = validation.PhoneDigits(normalized) + constants.IndividualJIDSuffix
	}
	chat, ok := s.store.Get(chatJID)
	if !ok || chat.IsGroup {
		return nil, errors.NewContactNotFoundError(req.SenderPhoneNumber).
			WithUserMessage("No direct chat found for the specified contact.")
	}

	meta := &models.DirectChatMetadata{
		ChatJID:      chatJID,
		ContactJID:   chatJID,
		Name:         contacts.ContactName(contact),
		UnreadCount:  chat.UnreadCount,
		IsArchived:   chat.IsArchived,
		IsMutedUntil: chat.IsMutedUntil,
	}
	if latest, ok := chat.LatestMessage(); ok {
		meta.LastMessage = &latest
	}
	return meta, nil
}

// contactForPhone prefers a linked WhatsApp user, then any linked contact, then the
// contact keyed by the JID derived from the number's digits.
func (s *Simulator) contactForPhone(normalized string) *models.Contact {
	matches := s.directory.FindAllByPhone(normalized)
	for i := range matches {
		if matches[i].JID() != "" && matches[i].IsWhatsAppUser() {
			return &matches[i]
		}
	}
	for i := range matches {
		if matches[i].JID() != "" {
			return &matches[i]
		}
	}
	if c, ok := s.directory.FindByJID(validation.PhoneDigits(normalized) + constants.IndividualJIDSuffix); ok {
		return c
	}
	return nil
}

func participated(chat *models.Chat, jid string) bool {
	if !chat.IsGroup {
		return chat.ChatJID == jid
	}
	if chat.GroupMetadata.HasParticipant(jid) {
		return true
	}
	for _, m := range chat.Messages {
		if m.SenderJID == jid {
			return true
		}
	}
	return false
}

// sortByLastActive orders most recent first; chats that were never active go last
func sortByLastActive(chats []*models.Chat) {
	sort.SliceStable(chats, func(i, j int) bool {
		a, b := chats[i].LastActiveTimestamp, chats[j].LastActiveTimestamp
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.After(*b)
		}
	})
}

// sortByName orders case-insensitively; unnamed chats sort first
func sortByName(chats []*models.Chat) {
	sort.SliceStable(chats, func(i, j int) bool {
		return strings.ToLower(chats[i].Name) < strings.ToLower(chats[j].Name)
	})
}
