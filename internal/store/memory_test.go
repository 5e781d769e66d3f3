package store

import (
	"errors"
	"testing"
	"time"

	"wasim/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(sec int) time.Time {
	return time.Date(2024, 3, 15, 10, 0, sec, 0, time.UTC)
}

func TestMemory_ContactsKeepInsertionOrder(t *testing.T) {
	m := NewMemory()
	for _, rn := range []string{"people/c", "people/a", "people/b"} {
		require.NoError(t, m.PutContact(models.Contact{ResourceName: rn}))
	}
	require.NoError(t, m.PutContact(models.Contact{ResourceName: "people/a", Names: []models.Name{{GivenName: "Ann"}}}))

	contacts := m.Contacts()
	require.Len(t, contacts, 3)
	assert.Equal(t, "people/c", contacts[0].ResourceName)
	assert.Equal(t, "people/a", contacts[1].ResourceName)
	assert.Equal(t, "Ann", contacts[1].FullName(), "replacing keeps position")
	assert.Equal(t, "people/b", contacts[2].ResourceName)

	assert.Error(t, m.PutContact(models.Contact{}))
}

func TestMemory_ContactReturnsCopy(t *testing.T) {
	m := NewMemory()
	require.NoError(t, m.PutContact(models.Contact{
		ResourceName: "people/x",
		WhatsApp:     &models.WhatsAppInfo{JID: "1@s.whatsapp.net"},
	}))

	c, ok := m.Contact("people/x")
	require.True(t, ok)
	c.WhatsApp.JID = "changed"

	again, _ := m.Contact("people/x")
	assert.Equal(t, "1@s.whatsapp.net", again.JID())

	_, ok = m.Contact("people/missing")
	assert.False(t, ok)
}

func TestMemory_GetOrCreate(t *testing.T) {
	m := NewMemory()

	chat, created, err := m.GetOrCreate("1@s.whatsapp.net", false, "Ada")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "Ada", chat.Name)
	assert.NotNil(t, chat.Messages)
	assert.Empty(t, chat.Messages)
	assert.Zero(t, chat.UnreadCount)
	assert.False(t, chat.IsArchived)
	assert.False(t, chat.IsPinned)
	assert.Nil(t, chat.LastActiveTimestamp)

	again, created, err := m.GetOrCreate("1@s.whatsapp.net", false, "Other")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, "Ada", again.Name, "existing chat is returned unchanged")
	assert.Equal(t, 1, m.ChatCount())
}

func TestMemory_AppendMessage(t *testing.T) {
	m := NewMemory()
	_, _, err := m.GetOrCreate("1@s.whatsapp.net", false, "")
	require.NoError(t, err)

	cet := time.FixedZone("CET", 3600)
	ok := m.AppendMessage("1@s.whatsapp.net", models.Message{MessageID: "m1", Timestamp: at(5).In(cet)})
	require.True(t, ok)

	chat, _ := m.Get("1@s.whatsapp.net")
	require.Len(t, chat.Messages, 1)
	assert.Equal(t, "1@s.whatsapp.net", chat.Messages[0].ChatJID)
	assert.Equal(t, time.UTC, chat.Messages[0].Timestamp.Location())
	require.NotNil(t, chat.LastActiveTimestamp)
	assert.True(t, at(5).Equal(*chat.LastActiveTimestamp))

	t.Run("duplicate id in the same chat is rejected", func(t *testing.T) {
		assert.False(t, m.AppendMessage("1@s.whatsapp.net", models.Message{MessageID: "m1", Timestamp: at(6)}))
	})

	t.Run("missing chat is rejected", func(t *testing.T) {
		assert.False(t, m.AppendMessage("2@s.whatsapp.net", models.Message{MessageID: "m1", Timestamp: at(6)}))
	})

	t.Run("earlier timestamp regresses last active", func(t *testing.T) {
		require.True(t, m.AppendMessage("1@s.whatsapp.net", models.Message{MessageID: "m0", Timestamp: at(1)}))
		chat, _ := m.Get("1@s.whatsapp.net")
		assert.True(t, at(1).Equal(*chat.LastActiveTimestamp))
	})
}

func TestMemory_WriteFilter(t *testing.T) {
	m := NewMemory()
	failed := errors.New("disk full")
	m.SetWriteFilter(func(op WriteOp, chatJID string) error {
		if op == OpAppendMessage {
			return failed
		}
		return nil
	})

	_, _, err := m.GetOrCreate("1@s.whatsapp.net", false, "")
	require.NoError(t, err)
	assert.False(t, m.AppendMessage("1@s.whatsapp.net", models.Message{MessageID: "m1", Timestamp: at(1)}))

	chat, _ := m.Get("1@s.whatsapp.net")
	assert.Empty(t, chat.Messages)
	assert.Nil(t, chat.LastActiveTimestamp)

	m.SetWriteFilter(func(op WriteOp, chatJID string) error { return failed })
	_, _, err = m.GetOrCreate("2@s.whatsapp.net", false, "")
	assert.ErrorIs(t, err, failed)
	_, ok := m.Get("2@s.whatsapp.net")
	assert.False(t, ok)
}

func TestMemory_ChatsAreCopies(t *testing.T) {
	m := NewMemory()
	require.NoError(t, m.PutChat(models.Chat{ChatJID: "g1@g.us", IsGroup: true}))
	require.NoError(t, m.PutChat(models.Chat{ChatJID: "1@s.whatsapp.net"}))

	chats := m.Chats()
	require.Len(t, chats, 2)
	assert.Equal(t, "g1@g.us", chats[0].ChatJID)
	assert.NotNil(t, chats[1].Messages)

	chats[0].Name = "mutated"
	again, _ := m.Get("g1@g.us")
	assert.Empty(t, again.Name)

	assert.Error(t, m.PutChat(models.Chat{}))
}

func TestMemory_Reset(t *testing.T) {
	m := NewMemory()
	m.SetCurrentUserJID("me@s.whatsapp.net")
	require.NoError(t, m.PutContact(models.Contact{ResourceName: "people/x"}))
	require.NoError(t, m.PutChat(models.Chat{ChatJID: "g1@g.us"}))

	m.Reset()

	assert.Empty(t, m.CurrentUserJID())
	assert.Empty(t, m.Contacts())
	assert.Zero(t, m.ChatCount())
}
