// Package resolver turns a recipient expression (person JID, group JID or phone number)
// into the JID of the chat a message should go to.
package resolver

import (
	"fmt"
	"strings"

	"wasim/internal/contacts"
	"wasim/internal/errors"
	"wasim/internal/models"
	"wasim/internal/store"
	"wasim/internal/validation"
)

// Resolution is the outcome of resolving a recipient
type Resolution struct {
	ChatJID string
	IsGroup bool
	// Contact is set for individual recipients when an address book entry matched
	Contact *models.Contact
}

// Resolver resolves recipients against the contact directory and the chat table
type Resolver struct {
	directory      *contacts.Directory
	chats          store.ChatStore
	currentUserJID func() string
}

// New creates a resolver. currentUserJID is read on every call so a reloaded state is
// picked up without rebuilding the resolver.
func New(directory *contacts.Directory, chats store.ChatStore, currentUserJID func() string) *Resolver {
	return &Resolver{
		directory:      directory,
		chats:          chats,
		currentUserJID: currentUserJID,
	}
}

// Resolve classifies recipient and resolves it. Groups must already exist; individuals
// must be WhatsApp users known to the directory, or the current user for a self-chat.
func (r *Resolver) Resolve(recipient string) (Resolution, error) {
	recipient = strings.TrimSpace(recipient)
	if recipient == "" {
		return Resolution{}, errors.NewValidationError("recipient", "")
	}

	if strings.Contains(recipient, "@") {
		return r.resolveJID(recipient)
	}
	return r.resolvePhone(recipient)
}

func (r *Resolver) resolveJID(jid string) (Resolution, error) {
	switch {
	case validation.IsGroupJID(jid):
		chat, ok := r.chats.Get(jid)
		if !ok || !chat.IsGroup {
			return Resolution{}, errors.NewInvalidRecipientError(
				fmt.Sprintf("Recipient group chat '%s' not found.", jid)).WithContext("recipient", jid)
		}
		return Resolution{ChatJID: jid, IsGroup: true}, nil

	case validation.IsIndividualJID(jid):
		contact, found := r.directory.FindByJID(jid)
		if found && contact.IsWhatsAppUser() {
			return Resolution{ChatJID: jid, Contact: contact}, nil
		}
		if r.currentUserJID != nil && jid == r.currentUserJID() {
			return Resolution{ChatJID: jid, Contact: contact}, nil
		}
		return Resolution{}, notWhatsAppUser(jid)

	default:
		return Resolution{}, errors.NewInvalidRecipientError(
			fmt.Sprintf("Invalid JID format: '%s'.", jid)).WithContext("recipient", jid)
	}
}

func (r *Resolver) resolvePhone(phone string) (Resolution, error) {
	normalized, err := validation.NormalizePhoneNumber(phone)
	if err != nil {
		return Resolution{}, errors.NewInvalidRecipientError(
			fmt.Sprintf("Invalid phone number format: %s", phone)).WithContext("recipient", phone)
	}

	matches := r.directory.FindAllByPhone(normalized)
	anyLinked := false
	for i := range matches {
		c := &matches[i]
		if c.JID() == "" {
			continue
		}
		anyLinked = true
		if c.IsWhatsAppUser() {
			return Resolution{ChatJID: c.JID(), Contact: c}, nil
		}
	}

	if !anyLinked {
		if jid, ok := r.senderJIDForPhone(validation.PhoneDigits(normalized)); ok {
			res := Resolution{ChatJID: jid}
			if len(matches) > 0 {
				res.Contact = &matches[0]
			}
			return res, nil
		}
	}

	return Resolution{}, notWhatsAppUser(phone)
}

func notWhatsAppUser(recipient string) error {
	return errors.NewInvalidRecipientError(
		fmt.Sprintf("Recipient '%s' not found or is not a WhatsApp user.", recipient)).
		WithContext("recipient", recipient)
}

// senderJIDForPhone finds a person JID already seen as a message sender whose user part
// equals digits. Contacts imported without WhatsApp linkage are reached this way.
func (r *Resolver) senderJIDForPhone(digits string) (string, bool) {
	for _, chat := range r.chats.Chats() {
		for _, m := range chat.Messages {
			if validation.IsIndividualJID(m.SenderJID) && validation.JIDLocalPart(m.SenderJID) == digits {
				return m.SenderJID, true
			}
		}
	}
	return "", false
}

// SenderJIDs returns the JIDs a sender phone number stands for: the linked JID of every
// contact carrying the number. When a matching contact has no WhatsApp linkage, message
// senders whose user part equals the number's digits are included too.
func (r *Resolver) SenderJIDs(phone string) (map[string]struct{}, error) {
	normalized, err := validation.NormalizePhoneNumber(phone)
	if err != nil {
		return nil, err
	}

	jids := make(map[string]struct{})
	matchByDigits := false
	for _, c := range r.directory.FindAllByPhone(normalized) {
		if jid := c.JID(); jid != "" {
			jids[jid] = struct{}{}
		} else {
			matchByDigits = true
		}
	}

	if matchByDigits {
		digits := validation.PhoneDigits(normalized)
		for _, chat := range r.chats.Chats() {
			for _, m := range chat.Messages {
				if validation.JIDLocalPart(m.SenderJID) == digits {
					jids[m.SenderJID] = struct{}{}
				}
			}
		}
	}
	return jids, nil
}
