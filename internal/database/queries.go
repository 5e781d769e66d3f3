package database

// Snapshot write queries
const (
	DeleteMessagesQuery = `DELETE FROM messages`
	DeleteChatsQuery    = `DELETE FROM chats`
	DeleteContactsQuery = `DELETE FROM contacts`
	DeleteMetaQuery     = `DELETE FROM meta`

	InsertMetaQuery = `INSERT INTO meta (key, value) VALUES (?, ?)`

	InsertContactQuery = `
		INSERT INTO contacts (position, resource_name, payload)
		VALUES (?, ?, ?)
	`

	InsertChatQuery = `
		INSERT INTO chats (position, chat_jid, payload)
		VALUES (?, ?, ?)
	`

	InsertMessageQuery = `
		INSERT INTO messages (chat_position, position, message_id, payload)
		VALUES (?, ?, ?, ?)
	`

	InsertSnapshotQuery = `
		INSERT INTO snapshots (saved_at, chat_count, message_count)
		VALUES (?, ?, ?)
	`
)

// Snapshot read queries
const (
	SelectMetaQuery = `SELECT value FROM meta WHERE key = ?`

	SelectContactsQuery = `
		SELECT payload FROM contacts
		ORDER BY position
	`

	SelectChatsQuery = `
		SELECT position, payload FROM chats
		ORDER BY position
	`

	SelectMessagesQuery = `
		SELECT chat_position, payload FROM messages
		ORDER BY chat_position, position
	`

	SelectLatestSnapshotQuery = `
		SELECT saved_at, chat_count, message_count FROM snapshots
		ORDER BY id DESC
		LIMIT 1
	`
)

const metaCurrentUserJID = "current_user_jid"
