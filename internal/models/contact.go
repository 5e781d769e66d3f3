package models

import "strings"

// Name is one entry of a contact's structured names list
type Name struct {
	GivenName  string `json:"givenName,omitempty"`
	FamilyName string `json:"familyName,omitempty"`
}

// PhoneNumber is one entry of a contact's phone numbers list
type PhoneNumber struct {
	Value   string `json:"value"`
	Type    string `json:"type,omitempty"`
	Primary bool   `json:"primary,omitempty"`
}

// WhatsAppInfo links a contact to its WhatsApp identity
type WhatsAppInfo struct {
	JID               string `json:"jid,omitempty"`          // "14155552671@s.whatsapp.net"
	NameInAddressBook string `json:"name_in_address_book,omitempty"`
	ProfileName       string `json:"profile_name,omitempty"`
	PhoneNumber       string `json:"phone_number,omitempty"`
	IsWhatsAppUser    bool   `json:"is_whatsapp_user"`
}

// Contact is an address book entry owned by the contacts subsystem.
// The WhatsApp simulator only reads it.
type Contact struct {
	ResourceName string        `json:"resourceName"` // "people/<id>"
	Names        []Name        `json:"names,omitempty"`
	PhoneNumbers []PhoneNumber `json:"phoneNumbers,omitempty"`
	WhatsApp     *WhatsAppInfo `json:"whatsapp,omitempty"`
}

// JID returns the linked WhatsApp JID, or "" when the contact has no WhatsApp linkage
func (c *Contact) JID() string {
	if c == nil || c.WhatsApp == nil {
		return ""
	}
	return c.WhatsApp.JID
}

// IsWhatsAppUser reports whether the contact is a reachable WhatsApp user
func (c *Contact) IsWhatsAppUser() bool {
	return c != nil && c.WhatsApp != nil && c.WhatsApp.IsWhatsAppUser
}

// FullName joins the first structured name, or returns ""
func (c *Contact) FullName() string {
	if c == nil || len(c.Names) == 0 {
		return ""
	}
	return strings.TrimSpace(c.Names[0].GivenName + " " + c.Names[0].FamilyName)
}

// PhoneValues returns every raw phone representation the contact carries,
// including the WhatsApp phone number.
func (c *Contact) PhoneValues() []string {
	if c == nil {
		return nil
	}
	values := make([]string, 0, len(c.PhoneNumbers)+1)
	for _, p := range c.PhoneNumbers {
		if p.Value != "" {
			values = append(values, p.Value)
		}
	}
	if c.WhatsApp != nil && c.WhatsApp.PhoneNumber != "" {
		values = append(values, c.WhatsApp.PhoneNumber)
	}
	return values
}

// ContactSummary is the flattened WhatsApp view returned by contact searches
type ContactSummary struct {
	JID               string `json:"jid,omitempty"`
	NameInAddressBook string `json:"name_in_address_book,omitempty"`
	ProfileName       string `json:"profile_name,omitempty"`
	PhoneNumber       string `json:"phone_number,omitempty"`
	IsWhatsAppUser    bool   `json:"is_whatsapp_user"`
}
