package service

import (
	"encoding/hex"
	"sync"
	"time"

	"wasim/internal/constants"
	"wasim/internal/contacts"
	"wasim/internal/errors"
	"wasim/internal/models"
	"wasim/internal/resolver"
	"wasim/internal/store"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Store is everything the simulator needs from the state holder
type Store interface {
	store.ContactStore
	store.ChatStore
	CurrentUserJID() string
}

// Simulator implements the WhatsApp tools over an injected store. Writes (resolve,
// create chat, append) run under one write lock; queries share the read lock.
type Simulator struct {
	logger     *logrus.Logger
	store      Store
	directory  *contacts.Directory
	resolver   *resolver.Resolver
	now        func() time.Time
	newID      func() string
	maxContext int
	mu         sync.RWMutex
}

// Option configures a Simulator
type Option func(*Simulator)

// WithLogger sets the logger
func WithLogger(logger *logrus.Logger) Option {
	return func(s *Simulator) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock replaces time.Now, for deterministic timestamps
func WithClock(now func() time.Time) Option {
	return func(s *Simulator) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator replaces the message id generator
func WithIDGenerator(newID func() string) Option {
	return func(s *Simulator) {
		if newID != nil {
			s.newID = newID
		}
	}
}

// WithMaxContextMessages caps the before/after window of get_message_context
func WithMaxContextMessages(max int) Option {
	return func(s *Simulator) {
		if max > 0 {
			s.maxContext = max
		}
	}
}

// NewSimulator wires the directory and resolver over st
func NewSimulator(st Store, opts ...Option) *Simulator {
	directory := contacts.NewDirectory(st)
	s := &Simulator{
		logger:     logrus.New(),
		store:      st,
		directory:  directory,
		resolver:   resolver.New(directory, st, st.CurrentUserJID),
		now:        time.Now,
		newID:      newMessageID,
		maxContext: constants.DefaultMaxContextMessages,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// newMessageID returns the hex form of a random UUID
func newMessageID() string {
	id := uuid.New()
	return hex.EncodeToString(id[:])
}

// pageBounds returns the slice window for page. A page starting at or past the end of a
// non-empty result is an error; any page of an empty result, and any page of size zero,
// is an empty window.
func pageBounds(total, page, limit int) (int, int, error) {
	start := page * limit
	if total > 0 && start >= total {
		return 0, 0, errors.NewPaginationError(page, limit, total)
	}
	if total == 0 || limit == 0 {
		return 0, 0, nil
	}
	return start, min(start+limit, total), nil
}

// resolveSenderName keeps a stored sender name, else looks the sender up in the directory
func (s *Simulator) resolveSenderName(msg models.Message) models.Message {
	if msg.SenderName == "" {
		msg.SenderName = s.directory.NameForJID(msg.SenderJID)
	}
	return msg
}

func (s *Simulator) resolveSenderNames(msgs []models.Message) []models.Message {
	out := make([]models.Message, len(msgs))
	for i, m := range msgs {
		out[i] = s.resolveSenderName(m)
	}
	return out
}

// lastMessagePreview summarizes a chat's latest message. maxLen > 0 truncates the snippet.
func (s *Simulator) lastMessagePreview(chat *models.Chat, maxLen int) *models.LastMessagePreview {
	latest, ok := chat.LatestMessage()
	if !ok {
		return nil
	}

	snippet := latest.TextContent
	if snippet == "" && latest.MediaInfo != nil {
		snippet = latest.MediaInfo.Caption
		if snippet == "" {
			snippet = latest.MediaInfo.MediaType.Placeholder()
		}
	}
	if maxLen > 0 {
		if runes := []rune(snippet); len(runes) > maxLen {
			snippet = string(runes[:constants.PreviewSnippetCutLength]) + constants.PreviewEllipsis
		}
	}

	return &models.LastMessagePreview{
		MessageID:   latest.MessageID,
		TextSnippet: snippet,
		SenderName:  s.resolveSenderName(latest).SenderName,
		Timestamp:   latest.Timestamp,
		IsOutgoing:  latest.IsOutgoing,
	}
}

func summarizeChat(chat *models.Chat) models.ChatSummary {
	return models.ChatSummary{
		ChatJID:             chat.ChatJID,
		Name:                chat.Name,
		IsGroup:             chat.IsGroup,
		LastActiveTimestamp: chat.LastActiveTimestamp,
		UnreadCount:         chat.UnreadCount,
		IsArchived:          chat.IsArchived,
		IsPinned:            chat.IsPinned,
	}
}
