package state

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"wasim/internal/errors"
	"wasim/internal/models"
	"wasim/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const seedDoc = `{
  "current_user_jid": "0000000000@s.whatsapp.net",
  "actions": [],
  "contacts": {
    "people/zeta": {
      "resourceName": "people/zeta",
      "names": [{"givenName": "Zeta"}],
      "phoneNumbers": [{"value": "+14155552671", "type": "mobile", "primary": true}],
      "whatsapp": {"jid": "14155552671@s.whatsapp.net", "is_whatsapp_user": true}
    },
    "people/alpha": {
      "names": [{"givenName": "Alpha"}],
      "phoneNumbers": [{"value": "+14155552671"}],
      "whatsapp": {"jid": "14155559999@s.whatsapp.net", "is_whatsapp_user": true}
    }
  },
  "chats": {
    "14155552671@s.whatsapp.net": {
      "name": "Zeta",
      "is_group": false,
      "last_active_timestamp": "2023-01-01T10:00:00Z",
      "unread_count": 0,
      "is_muted_until": null,
      "messages": [
        {"message_id": "m1", "sender_jid": "14155552671@s.whatsapp.net", "timestamp": "2023-01-01T10:00:00+02:00", "text_content": "hi", "is_outgoing": false}
      ]
    },
    "123@g.us": {"chat_jid": "123@g.us", "name": "Group", "is_group": true, "messages": []}
  }
}`

func TestDecode_PreservesOrderAndFillsKeys(t *testing.T) {
	snap, err := Decode(strings.NewReader(seedDoc))
	require.NoError(t, err)

	assert.Equal(t, "0000000000@s.whatsapp.net", snap.CurrentUserJID)
	require.Len(t, snap.Contacts, 2)
	assert.Equal(t, "people/zeta", snap.Contacts[0].ResourceName)
	assert.Equal(t, "people/alpha", snap.Contacts[1].ResourceName)

	require.Len(t, snap.Chats, 2)
	assert.Equal(t, "14155552671@s.whatsapp.net", snap.Chats[0].ChatJID)
	assert.Equal(t, "123@g.us", snap.Chats[1].ChatJID)
	assert.Empty(t, snap.Chats[0].IsMutedUntil)
}

func TestDecode_Rejections(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"not an object", `[]`},
		{"contacts not an object", `{"contacts": []}`},
		{"bad timestamp", `{"chats": {"1@s.whatsapp.net": {"messages": [{"message_id": "m", "timestamp": "yesterday"}]}}}`},
		{"message without id", `{"chats": {"1@s.whatsapp.net": {"messages": [{"timestamp": "2023-01-01T10:00:00Z"}]}}}`},
		{"message without timestamp", `{"chats": {"1@s.whatsapp.net": {"messages": [{"message_id": "m"}]}}}`},
		{"duplicate message id", `{"chats": {"1@s.whatsapp.net": {"messages": [
			{"message_id": "m", "timestamp": "2023-01-01T10:00:00Z"},
			{"message_id": "m", "timestamp": "2023-01-01T10:01:00Z"}]}}}`},
		{"truncated", `{"contacts": {"people/a": `},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tt.doc))
			require.Error(t, err)
			assert.Equal(t, errors.ErrCodeValidationFailed, errors.GetCode(err))
		})
	}
}

func TestDecode_NullTables(t *testing.T) {
	snap, err := Decode(strings.NewReader(`{"current_user_jid": null, "contacts": null, "chats": {}}`))
	require.NoError(t, err)
	assert.Empty(t, snap.CurrentUserJID)
	assert.Empty(t, snap.Contacts)
	assert.Empty(t, snap.Chats)
}

func TestSaveAndLoadFile(t *testing.T) {
	original, err := Decode(strings.NewReader(seedDoc))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "whatsapp.json")
	require.NoError(t, SaveFile(path, original))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	loaded, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, original.CurrentUserJID, loaded.CurrentUserJID)
	assert.Equal(t, []string{"people/zeta", "people/alpha"}, []string{loaded.Contacts[0].ResourceName, loaded.Contacts[1].ResourceName})
	require.Len(t, loaded.Chats[0].Messages, 1)
	assert.True(t, original.Chats[0].Messages[0].Timestamp.Equal(loaded.Chats[0].Messages[0].Timestamp))
}

func TestEncode_KeyOrder(t *testing.T) {
	snap := &Snapshot{
		Contacts: []models.Contact{{ResourceName: "people/b"}, {ResourceName: "people/a"}},
		Chats:    []models.Chat{{ChatJID: "2@s.whatsapp.net"}, {ChatJID: "1@s.whatsapp.net"}},
	}

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, snap))
	out := buf.String()

	assert.Less(t, strings.Index(out, `"people/b"`), strings.Index(out, `"people/a"`))
	assert.Less(t, strings.Index(out, `"2@s.whatsapp.net"`), strings.Index(out, `"1@s.whatsapp.net"`))
}

func TestLoadFile_RejectsTraversal(t *testing.T) {
	_, err := LoadFile("../../etc/passwd")
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeValidationFailed, errors.GetCode(err))
}

func TestApplyAndCapture(t *testing.T) {
	snap, err := Decode(strings.NewReader(seedDoc))
	require.NoError(t, err)

	mem := store.NewMemory()
	require.NoError(t, mem.PutContact(models.Contact{ResourceName: "people/stale"}))
	require.NoError(t, Apply(snap, mem))

	assert.Equal(t, "0000000000@s.whatsapp.net", mem.CurrentUserJID())
	_, stale := mem.Contact("people/stale")
	assert.False(t, stale)

	chat, ok := mem.Get("14155552671@s.whatsapp.net")
	require.True(t, ok)
	assert.Equal(t, time.UTC, chat.Messages[0].Timestamp.Location())
	assert.Equal(t, 8, chat.Messages[0].Timestamp.Hour())
	assert.Equal(t, "14155552671@s.whatsapp.net", chat.Messages[0].ChatJID)

	captured := Capture(mem)
	assert.Equal(t, snap.CurrentUserJID, captured.CurrentUserJID)
	assert.Len(t, captured.Contacts, 2)
	require.Len(t, captured.Chats, 2)
	assert.Equal(t, "123@g.us", captured.Chats[1].ChatJID)
}
