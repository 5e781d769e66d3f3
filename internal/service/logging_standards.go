package service

// Standard field names used by simulator logging. Fields named after identifiers are
// masked by privacy.MaskSensitiveFields unless verbose logging is on.
const (
	// Core identifiers
	LogFieldMessageID      = "message_id"
	LogFieldChatJID        = "chat_jid"
	LogFieldSenderJID      = "sender_jid"
	LogFieldRecipient      = "recipient"
	LogFieldJID            = "jid"
	LogFieldPhoneNumber    = "phone_number"
	LogFieldReplyToMessage = "reply_to_message_id"

	// Operation fields
	LogFieldOperation = "operation"
	LogFieldComponent = "component"
	LogFieldTool      = "tool"

	// Query fields
	LogFieldQuery        = "query"
	LogFieldPage         = "page"
	LogFieldLimit        = "limit"
	LogFieldSortBy       = "sort_by"
	LogFieldTotalMatches = "total_matches"
	LogFieldCount        = "count"

	// Chat state
	LogFieldChatCreated = "chat_created"
	LogFieldIsGroup     = "is_group"

	// File and media
	LogFieldMediaPath = "media_path"
	LogFieldMediaType = "media_type"
	LogFieldFileSize  = "file_size"

	// HTTP request fields
	LogFieldRequestID  = "request_id"
	LogFieldTraceID    = "trace_id"
	LogFieldMethod     = "method"
	LogFieldURL        = "url"
	LogFieldStatusCode = "status_code"
	LogFieldRemoteIP   = "remote_ip"
	LogFieldUserAgent  = "user_agent"
	LogFieldSize       = "size_bytes"

	// Performance and errors
	LogFieldDuration  = "duration_ms"
	LogFieldErrorCode = "error_code"
)

// Log Level Usage
//
// DEBUG: query shapes and result counts.
// INFO: state changes (message appended, chat created, state loaded or saved).
// WARN: rejected tool calls caused by the caller (bad arguments, unknown ids).
// ERROR: failed writes and internal consistency failures.

// Message patterns
//
// Completed operations: "Message sent" / "Chat created"
// Failed operations: "Failed to [operation]"
// Configuration: "Loaded [config type] configuration" / "Using default [setting]"
