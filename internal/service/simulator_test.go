package service

import (
	"fmt"
	"io"
	"testing"
	"time"

	"wasim/internal/errors"
	"wasim/internal/models"
	"wasim/internal/store"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	selfJID  = "10000000000@s.whatsapp.net"
	aliceJID = "14155552671@s.whatsapp.net"
	bobJID   = "14155550000@s.whatsapp.net"
	danJID   = "15550001111@s.whatsapp.net"
	groupJID = "120363041234567890@g.us"
	quietJID = "19998887777@s.whatsapp.net"
)

var fixedNow = time.Date(2024, 3, 20, 12, 0, 0, 0, time.UTC)

func at(minute int) time.Time {
	return time.Date(2024, 3, 15, 10, minute, 0, 0, time.UTC)
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("gen-%d", n)
	}
}

// seedStore builds the shared fixture:
//
//	alice chat: m1 (alice, t1) m2 (me, t2) m3 (alice, t3)
//	family group: g1 (bob, t4) g2 (me, image, t5)
//	quiet chat: no messages, no name
func seedStore(t *testing.T) *store.Memory {
	t.Helper()
	st := store.NewMemory()
	st.SetCurrentUserJID(selfJID)

	contactsList := []models.Contact{
		{
			ResourceName: "people/me",
			Names:        []models.Name{{GivenName: "Sam", FamilyName: "Owner"}},
			PhoneNumbers: []models.PhoneNumber{{Value: "+10000000000"}},
			WhatsApp:     &models.WhatsAppInfo{JID: selfJID, ProfileName: "Sam", IsWhatsAppUser: true},
		},
		{
			ResourceName: "people/c1",
			Names:        []models.Name{{GivenName: "Alice", FamilyName: "Smith"}},
			PhoneNumbers: []models.PhoneNumber{{Value: "+1 415 555 2671"}},
			WhatsApp: &models.WhatsAppInfo{
				JID:               aliceJID,
				NameInAddressBook: "Alice",
				ProfileName:       "Ali",
				PhoneNumber:       "+14155552671",
				IsWhatsAppUser:    true,
			},
		},
		{
			ResourceName: "people/c2",
			Names:        []models.Name{{GivenName: "Robert"}},
			PhoneNumbers: []models.PhoneNumber{{Value: "+1 (415) 555-0000"}},
			WhatsApp:     &models.WhatsAppInfo{JID: bobJID, ProfileName: "Bobby", IsWhatsAppUser: true},
		},
		{
			ResourceName: "people/c3",
			Names:        []models.Name{{GivenName: "Carol"}},
			PhoneNumbers: []models.PhoneNumber{{Value: "+44 20 7123 4567"}},
		},
		{
			ResourceName: "people/c4",
			Names:        []models.Name{{GivenName: "Dan"}},
			PhoneNumbers: []models.PhoneNumber{{Value: "+15550001111"}},
			WhatsApp:     &models.WhatsAppInfo{JID: danJID, IsWhatsAppUser: false},
		},
	}
	for _, c := range contactsList {
		require.NoError(t, st.PutContact(c))
	}

	t3, t5 := at(3), at(5)
	require.NoError(t, st.PutChat(models.Chat{
		ChatJID:             aliceJID,
		Name:                "Alice",
		LastActiveTimestamp: &t3,
		UnreadCount:         1,
		Messages: []models.Message{
			{MessageID: "m1", SenderJID: aliceJID, Timestamp: at(1), TextContent: "hello there"},
			{MessageID: "m2", SenderJID: selfJID, SenderName: "Sam", Timestamp: at(2), TextContent: "Pineapple on pizza?", IsOutgoing: true, Status: models.MessageStatusRead},
			{MessageID: "m3", SenderJID: aliceJID, Timestamp: at(3), TextContent: "sure"},
		},
	}))
	require.NoError(t, st.PutChat(models.Chat{
		ChatJID:             groupJID,
		Name:                "Family",
		IsGroup:             true,
		LastActiveTimestamp: &t5,
		GroupMetadata: &models.GroupMetadata{
			ParticipantsCount: 2,
			Participants:      []models.GroupParticipant{{JID: aliceJID}, {JID: selfJID, IsAdmin: true}},
		},
		Messages: []models.Message{
			{MessageID: "g1", SenderJID: bobJID, Timestamp: at(4), TextContent: "group hi"},
			{MessageID: "g2", SenderJID: selfJID, Timestamp: at(5), IsOutgoing: true,
				MediaInfo: &models.MediaInfo{MediaType: models.MediaTypeImage, Caption: "look"}},
		},
	}))
	require.NoError(t, st.PutChat(models.Chat{ChatJID: quietJID}))
	return st
}

func newTestSimulator(t *testing.T) (*Simulator, *store.Memory) {
	t.Helper()
	st := seedStore(t)
	sim := NewSimulator(st,
		WithLogger(testLogger()),
		WithClock(func() time.Time { return fixedNow }),
		WithIDGenerator(sequentialIDs()),
		WithMaxContextMessages(10),
	)
	return sim, st
}

func assertCode(t *testing.T, err error, code errors.ErrorCode) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, code, errors.GetCode(err), err.Error())
}

func TestPageBounds(t *testing.T) {
	tests := []struct {
		name       string
		total      int
		page       int
		limit      int
		start, end int
		wantErr    bool
	}{
		{"empty result any page", 0, 7, 20, 0, 0, false},
		{"first page", 5, 0, 2, 0, 2, false},
		{"last partial page", 5, 2, 2, 4, 5, false},
		{"page past end", 5, 3, 2, 0, 0, true},
		{"page exactly at end", 4, 2, 2, 0, 0, true},
		{"zero limit with results", 3, 0, 0, 0, 0, false},
		{"zero limit on a later page", 3, 4, 0, 0, 0, false},
		{"zero limit without results", 0, 0, 0, 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end, err := pageBounds(tt.total, tt.page, tt.limit)
			if tt.wantErr {
				assertCode(t, err, errors.ErrCodePagination)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.start, start)
			assert.Equal(t, tt.end, end)
		})
	}
}

func TestNewMessageID(t *testing.T) {
	a, b := newMessageID(), newMessageID()
	assert.Len(t, a, 32)
	assert.NotEqual(t, a, b)
}

func TestLastMessagePreview(t *testing.T) {
	sim, _ := newTestSimulator(t)

	t.Run("no messages", func(t *testing.T) {
		assert.Nil(t, sim.lastMessagePreview(&models.Chat{}, 0))
	})

	t.Run("placeholder for media without caption", func(t *testing.T) {
		chat := &models.Chat{Messages: []models.Message{
			{MessageID: "v", Timestamp: at(1), MediaInfo: &models.MediaInfo{MediaType: models.MediaTypeVideo}},
		}}
		preview := sim.lastMessagePreview(chat, 0)
		require.NotNil(t, preview)
		assert.Equal(t, "Video", preview.TextSnippet)
	})

	t.Run("truncates long text", func(t *testing.T) {
		long := "abcdefghijklmnopqrstuvwxyzabcdefghijklmnopqrstuvwxyz"
		chat := &models.Chat{Messages: []models.Message{{MessageID: "x", Timestamp: at(1), TextContent: long}}}

		preview := sim.lastMessagePreview(chat, 50)
		assert.Equal(t, long[:47]+"...", preview.TextSnippet)

		untruncated := sim.lastMessagePreview(chat, 0)
		assert.Equal(t, long, untruncated.TextSnippet)
	})

	t.Run("sender name resolved from directory", func(t *testing.T) {
		chat := &models.Chat{Messages: []models.Message{{MessageID: "x", SenderJID: aliceJID, Timestamp: at(1), TextContent: "hi"}}}
		assert.Equal(t, "Alice", sim.lastMessagePreview(chat, 0).SenderName)
	})
}
