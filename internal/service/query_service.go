package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"wasim/internal/errors"
	"wasim/internal/models"
	"wasim/internal/validation"

	"github.com/sirupsen/logrus"
)

// candidate is a filtered message plus where it sits in its chat's chronological list
type candidate struct {
	chatIdx int
	pos     int
}

// ListMessages filters messages across chats, orders them globally by timestamp and
// returns one page, each entry optionally with its same-chat neighbours.
func (s *Simulator) ListMessages(ctx context.Context, req models.ListMessagesRequest) (*models.ListMessagesResponse, error) {
	if err := validation.ValidateNonNegative(
		validation.Field{Name: "limit", Value: req.Limit},
		validation.Field{Name: "page", Value: req.Page},
		validation.Field{Name: "context_before", Value: req.ContextBefore},
		validation.Field{Name: "context_after", Value: req.ContextAfter},
	); err != nil {
		return nil, err
	}

	after, err := validation.ParseTimestamp(deref(req.After), "after")
	if err != nil {
		return nil, err
	}
	before, err := validation.ParseTimestamp(deref(req.Before), "before")
	if err != nil {
		return nil, err
	}
	if after != nil && before != nil && before.Before(*after) {
		return nil, errors.NewInvalidParameterError("before", "'before' date cannot be earlier than 'after' date.")
	}

	chatJID := deref(req.ChatJID)
	if req.ChatJID != nil && !strings.Contains(chatJID, "@") {
		return nil, errors.NewInvalidParameterError("chat_jid", fmt.Sprintf("Invalid chat_jid format: %s", chatJID))
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var senders map[string]struct{}
	if phone := deref(req.SenderPhoneNumber); phone != "" {
		senders, err = s.resolver.SenderJIDs(phone)
		if err != nil {
			return nil, errors.NewInvalidParameterError("sender_phone_number",
				fmt.Sprintf("Invalid sender_phone_number format: %s", phone))
		}
	}
	query := strings.ToLower(deref(req.Query))

	chats := s.store.Chats()
	sortedByChat := make([][]models.Message, len(chats))
	var matches []candidate
	for ci, chat := range chats {
		if req.ChatJID != nil && chat.ChatJID != chatJID {
			continue
		}
		sortedByChat[ci] = chat.SortedMessages()
		for pos, m := range sortedByChat[ci] {
			if !inRange(m.Timestamp, after, before) {
				continue
			}
			if senders != nil {
				if _, ok := senders[m.SenderJID]; !ok {
					continue
				}
			}
			if query != "" && !strings.Contains(strings.ToLower(m.TextContent), query) {
				continue
			}
			matches = append(matches, candidate{chatIdx: ci, pos: pos})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		a := sortedByChat[matches[i].chatIdx][matches[i].pos]
		b := sortedByChat[matches[j].chatIdx][matches[j].pos]
		return a.Timestamp.Before(b.Timestamp)
	})

	start, end, err := pageBounds(len(matches), req.Page, req.Limit)
	if err != nil {
		return nil, err
	}

	results := make([]models.MessageResult, 0, end-start)
	for _, c := range matches[start:end] {
		chatMsgs := sortedByChat[c.chatIdx]
		matched := s.resolveSenderName(chatMsgs[c.pos])
		if !req.IncludeContext {
			results = append(results, models.MessageResult{Message: &matched})
			continue
		}
		results = append(results, models.MessageResult{WithContext: &models.MessageWithContext{
			MatchedMessage: matched,
			ContextBefore:  s.resolveSenderNames(windowBefore(chatMsgs, c.pos, req.ContextBefore)),
			ContextAfter:   s.resolveSenderNames(windowAfter(chatMsgs, c.pos, req.ContextAfter)),
		}})
	}

	LogWithContext(ctx, s.logger, "list_messages", logrus.Fields{
		LogFieldTotalMatches: len(matches),
		LogFieldPage:         req.Page,
		LogFieldLimit:        req.Limit,
	}).Debug("Listed messages")

	return &models.ListMessagesResponse{
		Results:      results,
		TotalMatches: len(matches),
		Page:         req.Page,
		Limit:        req.Limit,
	}, nil
}

// GetMessageContext finds a message by id across all chats and returns its neighbours in
// the owning chat. Lookup is a linear scan over every stored message.
func (s *Simulator) GetMessageContext(ctx context.Context, req models.GetMessageContextRequest) (*models.MessageContextResponse, error) {
	if err := validation.ValidateMessageID(req.MessageID); err != nil {
		return nil, err
	}
	if err := validation.ValidateNumericRange(req.Before, "before", 0, s.maxContext); err != nil {
		return nil, err
	}
	if err := validation.ValidateNumericRange(req.After, "after", 0, s.maxContext); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	currentUser := s.store.CurrentUserJID()
	for _, chat := range s.store.Chats() {
		if chat.FindMessage(req.MessageID) < 0 {
			continue
		}
		sorted := chat.SortedMessages()
		pos := indexOf(sorted, req.MessageID)

		resp := &models.MessageContextResponse{
			TargetMessage:  toContextMessage(sorted[pos], chat.ChatJID, currentUser),
			MessagesBefore: toContextMessages(windowBefore(sorted, pos, req.Before), chat.ChatJID, currentUser),
			MessagesAfter:  toContextMessages(windowAfter(sorted, pos, req.After), chat.ChatJID, currentUser),
		}
		LogWithContext(ctx, s.logger, "get_message_context", logrus.Fields{
			LogFieldChatJID:   chat.ChatJID,
			LogFieldMessageID: req.MessageID,
		}).Debug("Found message context")
		return resp, nil
	}

	return nil, errors.NewMessageNotFoundError(
		fmt.Sprintf("Message with ID %s not found.", req.MessageID)).
		WithContext(LogFieldMessageID, req.MessageID)
}

func inRange(ts time.Time, after, before *time.Time) bool {
	if after != nil && ts.Before(*after) {
		return false
	}
	if before != nil && ts.After(*before) {
		return false
	}
	return true
}

// windowBefore returns up to n messages preceding pos, clamped at the start
func windowBefore(msgs []models.Message, pos, n int) []models.Message {
	return append([]models.Message{}, msgs[max(0, pos-n):pos]...)
}

// windowAfter returns up to n messages following pos, clamped at the end
func windowAfter(msgs []models.Message, pos, n int) []models.Message {
	end := len(msgs)
	if n < end-pos-1 {
		end = pos + 1 + n
	}
	return append([]models.Message{}, msgs[pos+1:end]...)
}

func indexOf(msgs []models.Message, messageID string) int {
	for i := range msgs {
		if msgs[i].MessageID == messageID {
			return i
		}
	}
	return -1
}

func toContextMessage(m models.Message, chatJID, currentUser string) models.ContextMessage {
	out := models.ContextMessage{
		ID:          m.MessageID,
		Timestamp:   m.Timestamp.Unix(),
		SenderID:    m.SenderJID,
		ChatID:      chatJID,
		ContentType: "text",
		TextContent: m.TextContent,
		IsSentByMe:  currentUser != "" && m.SenderJID == currentUser,
		Status:      string(m.Status),
		Forwarded:   m.Forwarded,
	}
	if m.MediaInfo != nil && m.MediaInfo.MediaType != "" {
		out.ContentType = string(m.MediaInfo.MediaType)
		out.MediaCaption = m.MediaInfo.Caption
	}
	if out.Status == "" {
		out.Status = "unknown"
	}
	if m.QuotedMessageInfo != nil {
		out.RepliedToMessageID = m.QuotedMessageInfo.QuotedMessageID
	}
	return out
}

func toContextMessages(msgs []models.Message, chatJID, currentUser string) []models.ContextMessage {
	out := make([]models.ContextMessage, len(msgs))
	for i, m := range msgs {
		out[i] = toContextMessage(m, chatJID, currentUser)
	}
	return out
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
