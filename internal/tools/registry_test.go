package tools

import (
	"context"
	"encoding/json"
	"io"
	"strings"
	"testing"
	"time"

	"wasim/internal/errors"
	"wasim/internal/metrics"
	"wasim/internal/models"
	"wasim/internal/service"
	"wasim/internal/state"
	"wasim/internal/store"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fixture = `{
  "current_user_jid": "10000000000@s.whatsapp.net",
  "contacts": {
    "people/c1": {
      "names": [{"givenName": "Alice", "familyName": "Ng"}],
      "phoneNumbers": [{"value": "+1 415 555 2671"}],
      "whatsapp": {"jid": "14155552671@s.whatsapp.net", "is_whatsapp_user": true}
    }
  },
  "chats": {
    "14155552671@s.whatsapp.net": {
      "name": "Alice",
      "is_group": false,
      "last_active_timestamp": "2024-03-01T09:00:00Z",
      "messages": [
        {"message_id": "m1", "sender_jid": "14155552671@s.whatsapp.net", "timestamp": "2024-03-01T09:00:00Z", "text_content": "lunch?", "is_outgoing": false}
      ]
    }
  }
}`

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()

	snap, err := state.Decode(strings.NewReader(fixture))
	require.NoError(t, err)
	mem := store.NewMemory()
	require.NoError(t, state.Apply(snap, mem))

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	sim := service.NewSimulator(mem,
		service.WithLogger(logger),
		service.WithClock(func() time.Time { return time.Date(2024, 3, 20, 12, 0, 0, 0, time.UTC) }),
	)

	registry := NewRegistry(logger)
	registry.metrics = metrics.NewRegistry()
	require.NoError(t, RegisterSimulator(registry, sim))
	return registry
}

func assertCode(t *testing.T, err error, code errors.ErrorCode) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, code, errors.GetCode(err), err.Error())
}

func TestRegisterSimulator_ListsEveryTool(t *testing.T) {
	registry := newTestRegistry(t)

	var names []string
	for _, tool := range registry.List() {
		names = append(names, tool.Name)
		assert.Equal(t, "object", tool.InputSchema["type"])
	}
	assert.Equal(t, []string{
		"get_chat", "get_contact_chats", "get_direct_chat_by_contact", "get_last_interaction",
		"get_message_context", "list_chats", "list_messages", "search_contacts",
		"send_audio_message", "send_file", "send_message",
	}, names)

	assert.Error(t, registry.Register(Tool{Name: "list_chats", Execute: func(context.Context, json.RawMessage) (interface{}, error) { return nil, nil }}))
	assert.Error(t, registry.Register(Tool{Name: "nameless"}))
}

func TestExecute_AppliesDefaults(t *testing.T) {
	registry := newTestRegistry(t)

	for _, args := range []string{``, `null`, `{}`} {
		result, err := registry.Execute(context.Background(), "list_chats", json.RawMessage(args))
		require.NoError(t, err, args)

		resp := result.(*models.ListChatsResponse)
		require.Len(t, resp.Chats, 1)
		assert.NotNil(t, resp.Chats[0].LastMessagePreview, "include_last_message defaults to true")
	}
}

func TestExecute_ArgumentShapeErrors(t *testing.T) {
	registry := newTestRegistry(t)

	tests := []struct {
		name string
		tool string
		args string
	}{
		{name: "unknown field", tool: "list_chats", args: `{"sort": "name"}`},
		{name: "wrong type", tool: "list_chats", args: `{"limit": "ten"}`},
		{name: "non-string recipient", tool: "send_message", args: `{"recipient": 14155552671, "message": "hi"}`},
		{name: "missing required", tool: "send_message", args: `{"recipient": "14155552671@s.whatsapp.net"}`},
		{name: "null required", tool: "get_chat", args: `{"chat_jid": null}`},
		{name: "not an object", tool: "search_contacts", args: `["alice"]`},
		{name: "trailing garbage", tool: "search_contacts", args: `{"query": "a"} {}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := registry.Execute(context.Background(), tt.tool, json.RawMessage(tt.args))
			assertCode(t, err, errors.ErrCodeValidationFailed)
			assert.Equal(t, "Input validation failed.", err.(*errors.AppError).Message)
		})
	}
}

func TestExecute_PassesThroughOperationErrors(t *testing.T) {
	registry := newTestRegistry(t)

	_, err := registry.Execute(context.Background(), "get_chat", json.RawMessage(`{"chat_jid": "19999999999@s.whatsapp.net"}`))
	assertCode(t, err, errors.ErrCodeChatNotFound)

	_, err = registry.Execute(context.Background(), "send_message", json.RawMessage(`{"recipient": "", "message": "hi"}`))
	assertCode(t, err, errors.ErrCodeInvalidRecipient)

	_, err = registry.Execute(context.Background(), "no_such_tool", nil)
	assertCode(t, err, errors.ErrCodeNotFound)

	snap := registry.metrics.GetAllMetrics()
	assert.Equal(t, 1.0, snap.Counters["tool_calls_total_outcome:CHAT_NOT_FOUND_tool:get_chat"].Value)
	assert.Equal(t, 1.0, snap.Counters["tool_calls_total_outcome:INVALID_RECIPIENT_tool:send_message"].Value)
}

func TestExecute_SendThenQuery(t *testing.T) {
	registry := newTestRegistry(t)
	ctx := context.Background()

	result, err := registry.Execute(ctx, "send_message", json.RawMessage(
		`{"recipient": "+1 (415) 555-2671", "message": "yes, noon", "reply_to_message_id": "m1"}`))
	require.NoError(t, err)
	sent := result.(*models.SendMessageResponse)
	assert.True(t, sent.Success)

	result, err = registry.Execute(ctx, "list_messages", json.RawMessage(`{"query": "noon", "include_context": false}`))
	require.NoError(t, err)
	listed := result.(*models.ListMessagesResponse)
	require.Equal(t, 1, listed.TotalMatches)
	assert.Equal(t, sent.MessageID, listed.Results[0].Matched().MessageID)

	snap := registry.metrics.GetAllMetrics()
	assert.Equal(t, 1.0, snap.Counters["tool_calls_total_outcome:ok_tool:send_message"].Value)
	assert.EqualValues(t, 1, snap.Timers["tool_call_duration_tool:list_messages"].Count)
}

func TestExecute_LastInteractionFollowsSends(t *testing.T) {
	registry := newTestRegistry(t)
	ctx := context.Background()
	args := json.RawMessage(`{"jid": "14155552671@s.whatsapp.net"}`)

	result, err := registry.Execute(ctx, "get_last_interaction", args)
	require.NoError(t, err)
	assert.Equal(t, "m1", result.(*models.Message).MessageID)

	sent, err := registry.Execute(ctx, "send_message",
		json.RawMessage(`{"recipient": "14155552671@s.whatsapp.net", "message": "ping"}`))
	require.NoError(t, err)

	result, err = registry.Execute(ctx, "get_last_interaction", args)
	require.NoError(t, err)
	assert.Equal(t, sent.(*models.SendMessageResponse).MessageID, result.(*models.Message).MessageID)
}

func TestExecute_EmptySearchEncodesEmptyList(t *testing.T) {
	registry := newTestRegistry(t)

	result, err := registry.Execute(context.Background(), "search_contacts", json.RawMessage(`{"query": "zzz"}`))
	require.NoError(t, err)
	encoded, err := json.Marshal(result)
	require.NoError(t, err)
	assert.JSONEq(t, `{"contacts": []}`, string(encoded))
}

func TestDecodeArgs_KeepsDefaultsForAbsentKeys(t *testing.T) {
	req := models.NewListMessagesRequest()
	require.NoError(t, decodeArgs(json.RawMessage(`{"limit": 3, "include_context": false}`), &req, nil))

	assert.Equal(t, 3, req.Limit)
	assert.False(t, req.IncludeContext)
	assert.Equal(t, 5, req.ContextBefore)
	assert.Nil(t, req.Query)
}
