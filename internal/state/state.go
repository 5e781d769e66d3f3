// Package state moves the simulator's tables in and out of the JSON database file.
// Object key order in the file is the table insertion order and is preserved both ways.
package state

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"wasim/internal/constants"
	"wasim/internal/errors"
	"wasim/internal/models"
	"wasim/internal/security"
	"wasim/internal/store"
)

// Snapshot is the full simulator state in table order
type Snapshot struct {
	CurrentUserJID string
	Contacts       []models.Contact
	Chats          []models.Chat
}

// LoadFile reads a JSON database file
func LoadFile(path string) (*Snapshot, error) {
	if err := security.ValidateFilePath(path); err != nil {
		return nil, errors.NewValidationError("path", fmt.Sprintf("invalid state path: %v", err))
	}
	f, err := os.Open(path) // #nosec G304 - Path validated by security.ValidateFilePath above
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Decode(f)
}

// SaveFile writes snap to path, replacing the file atomically
func SaveFile(path string, snap *Snapshot) error {
	if err := security.ValidateFilePath(path); err != nil {
		return errors.NewValidationError("path", fmt.Sprintf("invalid state path: %v", err))
	}

	var buf bytes.Buffer
	if err := Encode(&buf, snap); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".wasim-state-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(constants.DefaultFilePermissions); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// Decode parses the database document
//
//	{"current_user_jid": "...", "contacts": {"people/..": {...}}, "chats": {"..@s.whatsapp.net": {...}}}
//
// Unknown top-level keys are skipped.
func Decode(r io.Reader) (*Snapshot, error) {
	dec := json.NewDecoder(r)
	if err := expectDelim(dec, '{'); err != nil {
		return nil, err
	}

	snap := &Snapshot{}
	for dec.More() {
		key, err := nextKey(dec)
		if err != nil {
			return nil, err
		}
		switch key {
		case "current_user_jid":
			var jid *string
			if err := dec.Decode(&jid); err != nil {
				return nil, malformed("current_user_jid", err)
			}
			if jid != nil {
				snap.CurrentUserJID = *jid
			}
		case "contacts":
			err = decodeTable(dec, "contacts", func(key string, raw json.RawMessage) error {
				var c models.Contact
				if err := json.Unmarshal(raw, &c); err != nil {
					return malformed("contacts."+key, err)
				}
				if c.ResourceName == "" {
					c.ResourceName = key
				}
				snap.Contacts = append(snap.Contacts, c)
				return nil
			})
		case "chats":
			err = decodeTable(dec, "chats", func(key string, raw json.RawMessage) error {
				var c models.Chat
				if err := json.Unmarshal(raw, &c); err != nil {
					return malformed("chats."+key, err)
				}
				if c.ChatJID == "" {
					c.ChatJID = key
				}
				snap.Chats = append(snap.Chats, c)
				return nil
			})
		default:
			var skip json.RawMessage
			err = dec.Decode(&skip)
		}
		if err != nil {
			return nil, err
		}
	}
	if err := expectDelim(dec, '}'); err != nil {
		return nil, err
	}

	if err := Validate(snap); err != nil {
		return nil, err
	}
	return snap, nil
}

// decodeTable walks a JSON object (or null) entry by entry, in document order
func decodeTable(dec *json.Decoder, name string, fn func(key string, raw json.RawMessage) error) error {
	tok, err := dec.Token()
	if err != nil {
		return malformed(name, err)
	}
	if tok == nil {
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return errors.NewValidationError(name, fmt.Sprintf("%s must be an object", name))
	}
	for dec.More() {
		key, err := nextKey(dec)
		if err != nil {
			return err
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return malformed(name+"."+key, err)
		}
		if err := fn(key, raw); err != nil {
			return err
		}
	}
	return expectDelim(dec, '}')
}

func nextKey(dec *json.Decoder) (string, error) {
	tok, err := dec.Token()
	if err != nil {
		return "", malformed("", err)
	}
	key, ok := tok.(string)
	if !ok {
		return "", errors.NewValidationError("", fmt.Sprintf("expected object key, got %v", tok))
	}
	return key, nil
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return malformed("", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return errors.NewValidationError("", fmt.Sprintf("expected %q, got %v", want, tok))
	}
	return nil
}

func malformed(field string, err error) error {
	return errors.Wrap(err, errors.ErrCodeValidationFailed, "malformed state document").
		WithContext("field", field)
}

// Validate checks the invariants the simulator relies on: unique keys, a message id and a
// timestamp on every message, no duplicate message ids within a chat.
func Validate(snap *Snapshot) error {
	seenContacts := make(map[string]struct{}, len(snap.Contacts))
	for _, c := range snap.Contacts {
		if c.ResourceName == "" {
			return errors.NewValidationError("contacts", "contact without resourceName")
		}
		if _, dup := seenContacts[c.ResourceName]; dup {
			return errors.NewValidationError("contacts", fmt.Sprintf("duplicate contact %s", c.ResourceName))
		}
		seenContacts[c.ResourceName] = struct{}{}
	}

	seenChats := make(map[string]struct{}, len(snap.Chats))
	for _, chat := range snap.Chats {
		if _, dup := seenChats[chat.ChatJID]; dup {
			return errors.NewValidationError("chats", fmt.Sprintf("duplicate chat %s", chat.ChatJID))
		}
		seenChats[chat.ChatJID] = struct{}{}

		ids := make(map[string]struct{}, len(chat.Messages))
		for i, m := range chat.Messages {
			field := fmt.Sprintf("chats.%s.messages[%d]", chat.ChatJID, i)
			if m.MessageID == "" {
				return errors.NewValidationError(field, "message without message_id")
			}
			if m.Timestamp.IsZero() {
				return errors.NewValidationError(field, "message without timestamp")
			}
			if _, dup := ids[m.MessageID]; dup {
				return errors.NewValidationError(field, fmt.Sprintf("duplicate message id %s", m.MessageID))
			}
			ids[m.MessageID] = struct{}{}
		}
	}
	return nil
}

// Encode writes snap as an indented database document with keys in table order
func Encode(w io.Writer, snap *Snapshot) error {
	var buf bytes.Buffer
	buf.WriteByte('{')

	writeKey(&buf, "current_user_jid")
	if err := writeValue(&buf, snap.CurrentUserJID); err != nil {
		return err
	}

	buf.WriteByte(',')
	writeKey(&buf, "contacts")
	buf.WriteByte('{')
	for i, c := range snap.Contacts {
		if i > 0 {
			buf.WriteByte(',')
		}
		writeKey(&buf, c.ResourceName)
		if err := writeValue(&buf, c); err != nil {
			return err
		}
	}
	buf.WriteByte('}')

	buf.WriteByte(',')
	writeKey(&buf, "chats")
	buf.WriteByte('{')
	for i, c := range snap.Chats {
		if i > 0 {
			buf.WriteByte(',')
		}
		writeKey(&buf, c.ChatJID)
		if err := writeValue(&buf, c); err != nil {
			return err
		}
	}
	buf.WriteString("}}")

	var out bytes.Buffer
	if err := json.Indent(&out, buf.Bytes(), "", "  "); err != nil {
		return err
	}
	out.WriteByte('\n')
	_, err := w.Write(out.Bytes())
	return err
}

func writeKey(buf *bytes.Buffer, key string) {
	b, _ := json.Marshal(key)
	buf.Write(b)
	buf.WriteByte(':')
}

func writeValue(buf *bytes.Buffer, v interface{}) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	buf.Write(b)
	return nil
}

// Apply replaces the store's contents with snap
func Apply(snap *Snapshot, m *store.Memory) error {
	if err := Validate(snap); err != nil {
		return err
	}
	m.Reset()
	m.SetCurrentUserJID(snap.CurrentUserJID)
	for _, c := range snap.Contacts {
		if err := m.PutContact(c); err != nil {
			return errors.NewValidationError("contacts", err.Error())
		}
	}
	for _, c := range snap.Chats {
		if err := m.PutChat(c); err != nil {
			return errors.NewValidationError("chats", err.Error())
		}
	}
	return nil
}

// Capture copies the store's contents into a snapshot
func Capture(m *store.Memory) *Snapshot {
	snap := &Snapshot{
		CurrentUserJID: m.CurrentUserJID(),
		Contacts:       m.Contacts(),
	}
	for _, c := range m.Chats() {
		snap.Chats = append(snap.Chats, *c)
	}
	return snap
}
