package constants

// Default query values of the message and chat tools
const (
	DefaultPageLimit          = 20
	DefaultContextBefore      = 5
	DefaultContextAfter       = 5
	DefaultMaxContextMessages = 10000
	DefaultChatSortBy         = "last_active"
)

// Chat sort keys
const (
	SortByLastActive = "last_active"
	SortByName       = "name"
)

// Phone number bounds, counted in digits after formatting is stripped
const (
	MinPhoneDigits = 7
	MaxPhoneDigits = 15
)

// Preview and identifier settings
const (
	PreviewSnippetMaxLength = 50
	PreviewSnippetCutLength = 47
	PreviewEllipsis         = "..."
	MaxMessageIDLength      = 256
	DefaultSelfSenderName   = "Me"
	ResourceNamePrefix      = "people/"
)

// JID suffix of person chats
const (
	IndividualJIDSuffix = "@s.whatsapp.net"
)

// Default server values
const (
	DefaultServerPort            = 8085
	DefaultServerReadTimeoutSec  = 15
	DefaultServerWriteTimeoutSec = 15
	DefaultServerIdleTimeoutSec  = 60
	DefaultGracefulShutdownSec   = 30
	DefaultMaxRequestBodyBytes   = 1 << 20
)

// Default storage values
const (
	DefaultDatabasePath         = "wasim.db"
	DefaultFilePermissions      = 0600
	DefaultDirectoryPermissions = 0750
)

// Privacy settings
const (
	DefaultPhoneMaskLength = 4
	DefaultMessageIDLength = 8
)

// Snapshot encryption
const (
	EncryptionSalt       = "wasim-snapshot-v1"
	EncryptionLookupSalt = "wasim-lookup-v1"
	MinEncryptionSecret  = 32
	EnvEnableEncryption  = "WASIM_ENABLE_ENCRYPTION"
	EnvEncryptionSecret  = "WASIM_ENCRYPTION_SECRET"
)

// Database retry settings
const (
	DefaultDatabaseRetryAttempts = 3
	DefaultRetryBackoffMs        = 50
	DefaultMaxBackoffMs          = 500
)
