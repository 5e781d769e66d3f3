// Package contacts is the read-only view the simulator has over the address book.
package contacts

import (
	"strings"

	"wasim/internal/constants"
	"wasim/internal/models"
	"wasim/internal/store"
	"wasim/internal/validation"
)

// Directory looks contacts up by JID or phone number. Where several contacts match,
// the first in table insertion order wins.
type Directory struct {
	store store.ContactStore
}

func NewDirectory(s store.ContactStore) *Directory {
	return &Directory{store: s}
}

// FindByJID returns the contact keyed "people/<jid>", else the first contact whose
// whatsapp.jid equals jid.
func (d *Directory) FindByJID(jid string) (*models.Contact, bool) {
	if jid == "" {
		return nil, false
	}
	if c, ok := d.store.Contact(constants.ResourceNamePrefix + jid); ok {
		return &c, true
	}
	for _, c := range d.store.Contacts() {
		if c.JID() == jid {
			return &c, true
		}
	}
	return nil, false
}

// FindByPhone returns the first contact carrying the phone number in any of its phone fields
func (d *Directory) FindByPhone(phone string) (*models.Contact, bool) {
	matches := d.FindAllByPhone(phone)
	if len(matches) == 0 {
		return nil, false
	}
	return &matches[0], true
}

// FindAllByPhone returns every contact carrying the phone number, in insertion order.
// Numbers are compared by their digits, so formatting differences do not matter.
func (d *Directory) FindAllByPhone(phone string) []models.Contact {
	digits := validation.PhoneDigits(phone)
	if digits == "" {
		return nil
	}
	var matches []models.Contact
	for _, c := range d.store.Contacts() {
		for _, value := range c.PhoneValues() {
			if validation.PhoneDigits(value) == digits {
				matches = append(matches, c)
				break
			}
		}
	}
	return matches
}

// DisplayName picks the first non-empty of: address book name, WhatsApp profile name,
// structured full name, fallback.
func DisplayName(c *models.Contact, fallback string) string {
	if name := ContactName(c); name != "" {
		return name
	}
	return fallback
}

// ContactName is DisplayName without a fallback
func ContactName(c *models.Contact) string {
	if c == nil {
		return ""
	}
	if c.WhatsApp != nil {
		if c.WhatsApp.NameInAddressBook != "" {
			return c.WhatsApp.NameInAddressBook
		}
		if c.WhatsApp.ProfileName != "" {
			return c.WhatsApp.ProfileName
		}
	}
	return c.FullName()
}

// NameForJID resolves a sender JID to a display name, or "" when no contact matches
func (d *Directory) NameForJID(jid string) string {
	c, ok := d.FindByJID(jid)
	if !ok {
		return ""
	}
	return ContactName(c)
}

// Search returns WhatsApp contacts whose names contain query (case-insensitive) or whose
// phone digits contain the query's digits.
func (d *Directory) Search(query string) []models.ContactSummary {
	results := []models.ContactSummary{}
	if strings.TrimSpace(query) == "" {
		return results
	}

	q := strings.ToLower(query)
	qDigits := validation.PhoneDigits(query)

	for _, c := range d.store.Contacts() {
		wa := c.WhatsApp
		if wa == nil {
			continue
		}
		if matchesName(&c, q) || (qDigits != "" && matchesPhone(&c, qDigits)) {
			results = append(results, models.ContactSummary{
				JID:               wa.JID,
				NameInAddressBook: wa.NameInAddressBook,
				ProfileName:       wa.ProfileName,
				PhoneNumber:       wa.PhoneNumber,
				IsWhatsAppUser:    wa.IsWhatsAppUser,
			})
		}
	}
	return results
}

func matchesName(c *models.Contact, q string) bool {
	if strings.Contains(strings.ToLower(c.WhatsApp.NameInAddressBook), q) ||
		strings.Contains(strings.ToLower(c.WhatsApp.ProfileName), q) {
		return true
	}
	for _, n := range c.Names {
		if strings.Contains(strings.ToLower(n.GivenName), q) || strings.Contains(strings.ToLower(n.FamilyName), q) {
			return true
		}
	}
	return false
}

func matchesPhone(c *models.Contact, qDigits string) bool {
	for _, value := range c.PhoneValues() {
		if strings.Contains(validation.PhoneDigits(value), qDigits) {
			return true
		}
	}
	return false
}
