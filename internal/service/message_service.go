package service

import (
	"context"
	"fmt"
	"strings"

	"wasim/internal/constants"
	"wasim/internal/contacts"
	"wasim/internal/errors"
	"wasim/internal/models"

	"github.com/sirupsen/logrus"
)

const msgSentSuccessfully = "Message sent successfully."

// outgoing describes the message being sent, before it has an id and a timestamp
type outgoing struct {
	recipient        string
	textContent      string
	mediaInfo        *models.MediaInfo
	replyToMessageID string
}

// SendMessage sends a text message, optionally as a reply to a message in the same chat
func (s *Simulator) SendMessage(ctx context.Context, req models.SendMessageRequest) (*models.SendMessageResponse, error) {
	out := outgoing{recipient: req.Recipient, textContent: req.Message}
	if req.ReplyToMessageID != nil {
		out.replyToMessageID = strings.TrimSpace(*req.ReplyToMessageID)
	}
	return s.send(ctx, "send_message", out)
}

// SendFile sends a media message. The media type comes from the file extension.
func (s *Simulator) SendFile(ctx context.Context, req models.SendFileRequest) (*models.SendMessageResponse, error) {
	if strings.TrimSpace(req.Recipient) == "" {
		return nil, emptyRecipientError()
	}
	if strings.TrimSpace(req.MediaPath) == "" {
		return nil, errors.NewValidationError("media_path", "")
	}
	media, err := describeMedia(req.MediaPath)
	if err != nil {
		return nil, err
	}
	if req.Caption != nil {
		media.Caption = *req.Caption
	}
	return s.send(ctx, "send_file", outgoing{recipient: req.Recipient, mediaInfo: media})
}

// SendAudioMessage sends a voice message
func (s *Simulator) SendAudioMessage(ctx context.Context, req models.SendAudioRequest) (*models.SendMessageResponse, error) {
	if strings.TrimSpace(req.Recipient) == "" {
		return nil, emptyRecipientError()
	}
	if strings.TrimSpace(req.MediaPath) == "" {
		return nil, errors.NewValidationError("media_path", "")
	}
	return s.send(ctx, "send_audio_message", outgoing{recipient: req.Recipient, mediaInfo: describeAudio(req.MediaPath)})
}

func (s *Simulator) send(ctx context.Context, operation string, out outgoing) (*models.SendMessageResponse, error) {
	recipient := strings.TrimSpace(out.recipient)
	if recipient == "" {
		return nil, emptyRecipientError()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	currentUser := s.store.CurrentUserJID()
	if currentUser == "" {
		return nil, errors.New(errors.ErrCodeInvalidJID, "Cannot send message: Current user JID is not configured.")
	}

	res, err := s.resolver.Resolve(recipient)
	if err != nil {
		return nil, err
	}

	var quoted *models.QuotedMessageInfo
	if out.replyToMessageID != "" {
		quoted, err = s.quote(res.ChatJID, out.replyToMessageID)
		if err != nil {
			return nil, err
		}
	}

	chatName := ""
	if !res.IsGroup {
		chatName = contacts.DisplayName(res.Contact, res.ChatJID)
	}
	_, created, err := s.store.GetOrCreate(res.ChatJID, res.IsGroup, chatName)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeMessageSendFailed,
			fmt.Sprintf("Failed to create new chat with %s.", recipient))
	}

	msg := models.Message{
		MessageID:         s.newID(),
		ChatJID:           res.ChatJID,
		SenderJID:         currentUser,
		SenderName:        s.ownSenderName(currentUser),
		Timestamp:         s.now().UTC(),
		TextContent:       out.textContent,
		IsOutgoing:        true,
		MediaInfo:         out.mediaInfo,
		QuotedMessageInfo: quoted,
		Status:            models.MessageStatusSent,
	}

	if !s.store.AppendMessage(res.ChatJID, msg) {
		return nil, errors.NewMessageSendFailedError(
			fmt.Sprintf("Failed to store message %s in chat %s.", msg.MessageID, res.ChatJID)).
			WithContext(LogFieldMessageID, msg.MessageID).
			WithContext(LogFieldChatJID, res.ChatJID)
	}

	fields := logrus.Fields{
		LogFieldChatJID:     res.ChatJID,
		LogFieldMessageID:   msg.MessageID,
		LogFieldIsGroup:     res.IsGroup,
		LogFieldChatCreated: created,
	}
	if out.mediaInfo != nil {
		fields[LogFieldMediaType] = string(out.mediaInfo.MediaType)
	}
	LogWithContext(ctx, s.logger, operation, fields).Info("Message sent")

	return &models.SendMessageResponse{
		Success:       true,
		MessageID:     msg.MessageID,
		Timestamp:     models.FormatTimestamp(msg.Timestamp),
		StatusMessage: msgSentSuccessfully,
	}, nil
}

func emptyRecipientError() error {
	return errors.NewInvalidRecipientError("Recipient ID cannot be empty.")
}

// quote snapshots the replied-to message. Only the destination chat is searched.
func (s *Simulator) quote(chatJID, messageID string) (*models.QuotedMessageInfo, error) {
	chat, ok := s.store.Get(chatJID)
	if !ok {
		return nil, errors.NewMessageNotFoundError(
			fmt.Sprintf("Message with ID %s not found in chat %s.", messageID, chatJID))
	}
	idx := chat.FindMessage(messageID)
	if idx < 0 {
		return nil, errors.NewMessageNotFoundError(
			fmt.Sprintf("Message with ID %s not found in chat %s.", messageID, chatJID))
	}

	target := chat.Messages[idx]
	if strings.TrimSpace(target.SenderJID) == "" {
		return nil, errors.NewMessageNotFoundError(
			fmt.Sprintf("Message with ID %s is malformed and lacks a valid sender_jid. Cannot create reply.", messageID))
	}

	return &models.QuotedMessageInfo{
		QuotedMessageID:   target.MessageID,
		QuotedSenderJID:   target.SenderJID,
		QuotedTextPreview: target.TextContent,
	}, nil
}

// ownSenderName is the current user's profile name, else their full name, else "Me"
func (s *Simulator) ownSenderName(currentUser string) string {
	c, ok := s.directory.FindByJID(currentUser)
	if !ok {
		return constants.DefaultSelfSenderName
	}
	if c.WhatsApp != nil && c.WhatsApp.ProfileName != "" {
		return c.WhatsApp.ProfileName
	}
	if name := c.FullName(); name != "" {
		return name
	}
	return constants.DefaultSelfSenderName
}
