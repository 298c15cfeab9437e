package config

import (
	"io/fs"
	"time"
)

// -----------------------------------------------------------------------------
// Build Information
// -----------------------------------------------------------------------------

// Build variables are injected via -ldflags.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// UserAgent identifies the HTTP client.
var UserAgent = "Go-Celebrations/" + Version

// -----------------------------------------------------------------------------
// Application Constants
// -----------------------------------------------------------------------------

const (
	AppName           = "Go Celebrations"
	AppID             = "com.github.tartampluch.go-celebrations"
	KeyringService    = "com.github.tartampluch.go-celebrations"
	KeyringUser       = "chat-api-token"
	LocalhostBindAddr = "127.0.0.1"
	LogFileName       = "app.log"
	EnvFileName       = ".env"
)

// -----------------------------------------------------------------------------
// Exit Codes
// -----------------------------------------------------------------------------

const (
	ExitCodeSuccess = 0
	ExitCodeError   = 1
)

// -----------------------------------------------------------------------------
// System & File Permissions
// -----------------------------------------------------------------------------

const (
	// FilePermUserRW represents -rw------- (Read/Write for owner only).
	FilePermUserRW fs.FileMode = 0600

	// DirPermUserRWX represents drwx------ (Read/Write/Exec for owner only).
	DirPermUserRWX fs.FileMode = 0700

	// ChannelBufferSize defines the standard buffer size for internal signaling channels.
	ChannelBufferSize = 1
)

// -----------------------------------------------------------------------------
// CLI Commands & Flags
// -----------------------------------------------------------------------------

const (
	CmdRoot          = "go-celebrations"
	CmdRun           = "run"
	CmdServe         = "serve"
	CmdDescRoot      = "Post today's birthday and anniversary notices to chat"
	CmdDescRun       = "Run the notification pipeline once and exit"
	CmdDescServe     = "Run the pipeline on a schedule and serve the latest digest"
	FlagDebug        = "debug"
	FlagConfig       = "config"
	FlagDryRun       = "dry-run"
	FlagDescDebug    = "Enable debug logging to stdout"
	FlagDescConfig   = "Optional configuration file (yaml, json or toml)"
	FlagDescDryRun   = "Render notices without posting them to chat"
	MsgVersionOutput = "%s version %s (commit %s, built %s, %s/%s)\n"
)

// -----------------------------------------------------------------------------
// Settings Keys (environment variables)
// -----------------------------------------------------------------------------

const (
	KeyAnniversaryFeedURL = "ANNIVERSARY_FEED_URL"
	KeyBirthdayFeedURL    = "BIRTHDAY_FEED_URL"
	KeyFeedUsername       = "FEED_USERNAME"
	KeyFeedPassword       = "FEED_PASSWORD"
	KeyChatAPIToken       = "CHAT_API_TOKEN"
	KeyChatAPIURL         = "CHAT_API_URL"
	KeyNotifyChannel      = "NOTIFY_CHANNEL"
	KeyRosterChannel      = "ROSTER_CHANNEL"
	KeyTargetOffsetDays   = "TARGET_DATE_OFFSET_DAYS"
	KeyDirectoryMode      = "DIRECTORY_MODE"
	KeyDirectoryDomains   = "DIRECTORY_DOMAINS"
	KeyGoogleCredentials  = "GOOGLE_CREDENTIALS_FILE"
	KeyDirectorySubject   = "DIRECTORY_ADMIN_SUBJECT"
	KeyDirectoryVCardPath = "DIRECTORY_VCARD_PATH"
	KeyDirectoryVCardURL  = "DIRECTORY_VCARD_URL"
	KeyNoticeLanguage     = "NOTICE_LANGUAGE"
	KeyIncludeDuration    = "INCLUDE_DURATION"
	KeyStrictSummaries    = "STRICT_SUMMARIES"
	KeyBotUsername        = "BOT_USERNAME"
	KeyRunSchedule        = "RUN_SCHEDULE"
	KeyServerPort         = "SERVER_PORT"

	ListSeparator = ","
)

// -----------------------------------------------------------------------------
// Default Values & Business Logic
// -----------------------------------------------------------------------------

const (
	DirectoryModeGoogle = "google"
	DirectoryModeVCard  = "vcard"

	DefaultOffsetDays    = 0
	DefaultDirectoryMode = DirectoryModeGoogle
	DefaultLanguage      = "en"
	DefaultBotUsername   = "Celebrations Notifier"
	DefaultRunSchedule   = "0 9 * * *"
	DefaultPort          = "18081"

	// Google Admin Directory listing parameters.
	DirectoryOrderBy    = "email"
	DirectoryViewType   = "domain_public"
	DirectoryPageSize   = 500
	SlackUsersPageLimit = 200

	// Summary delimiters used by the HR feed.
	DelimAnniversaryOpen  = "("
	DelimAnniversaryClose = ")"
	DelimBirthday         = "-"
	TokenYearShort        = "yr"
	TokenYearLong         = "year"

)

// SupportedLanguages defines the notice template languages shipped (ISO 639-1).
var SupportedLanguages = []string{"en", "fr"}

// -----------------------------------------------------------------------------
// Translation Keys (I18n)
// -----------------------------------------------------------------------------

const (
	TKeyAnniversary                = "notice_anniversary"
	TKeyAnniversaryMention         = "notice_anniversary_mention"
	TKeyAnniversaryDuration        = "notice_anniversary_duration"
	TKeyAnniversaryDurationMention = "notice_anniversary_duration_mention"
	TKeyBirthday                   = "notice_birthday"
	TKeyBirthdayMention            = "notice_birthday_mention"
	TKeyNoNotices                  = "notice_none"

	// Template data fields.
	TDataName     = "Name"
	TDataHandle   = "Handle"
	TDataDuration = "Duration"
)

// -----------------------------------------------------------------------------
// Standards: iCalendar & vCard
// -----------------------------------------------------------------------------

const (
	VCardFN    = "FN"
	VCardEmail = "EMAIL"

	DateFormatDay = "2006-01-02"
)

// -----------------------------------------------------------------------------
// Network & Timeouts
// -----------------------------------------------------------------------------

const (
	HTTPTimeout         = 30 * time.Second
	ShutdownTimeout     = 5 * time.Second
	ServerReadTimeout   = 10 * time.Second
	ServerWriteTimeout  = 30 * time.Second
	ServerIdleTimeout   = 60 * time.Second
	RetryAfterSeconds   = "60"
	AllowedMethods      = "GET, HEAD"
	MaxHTTPResponseSize = 32 * 1024 * 1024 // 32MB
	SchemeHTTP          = "http"
	SchemeHTTPS         = "https"
	RouteRoot           = "/"
)

// -----------------------------------------------------------------------------
// HTTP Headers & MIME Types
// -----------------------------------------------------------------------------

const (
	HeaderContentType     = "Content-Type"
	HeaderCacheControl    = "Cache-Control"
	HeaderETag            = "ETag"
	HeaderLastModified    = "Last-Modified"
	HeaderRetryAfter      = "Retry-After"
	HeaderAllow           = "Allow"
	HeaderXContentType    = "X-Content-Type-Options"
	HeaderUserAgent       = "User-Agent"
	HeaderIfNoneMatch     = "If-None-Match"
	HeaderIfModifiedSince = "If-Modified-Since"

	MimeTextPlain       = "text/plain; charset=utf-8"
	MimeNoSniff         = "nosniff"
	CacheControlPrivate = "private, no-cache"

	// FormatETag expects a string argument.
	FormatETag = `"%s"`
)

// -----------------------------------------------------------------------------
// Error Messages (Technical/Logs)
// -----------------------------------------------------------------------------

const (
	ErrFeedUnavailable      = "feed unavailable"
	ErrMalformedSummary     = "malformed summary"
	ErrDirectoryUnavailable = "directory unavailable"
	ErrRosterUnavailable    = "roster unavailable"
	ErrDeliveryFailed       = "delivery failed"
	ErrFeedDecode           = "failed to decode iCalendar feed"
	ErrFetcherMissing       = "internal error: feed fetcher is not initialized"
	ErrSourceMissing        = "internal error: collaborator is not initialized"
	ErrLocalPathEmpty       = "configuration error: vCard path and URL are both empty"
	ErrCredentialsRead      = "failed to read Google credentials"
	ErrCredentialsParse     = "failed to parse Google credentials"
	ErrDirectoryClient      = "failed to create directory client"
	ErrSettingRequired      = "is required"
	ErrSettingNumber        = "must be a non-negative integer"
	ErrSettingBool          = "must be true or false"
	ErrSettingMode          = "must be one of google, vcard"
	ErrSettingLanguage      = "has no notice templates"
	ErrConfigFile           = "failed to read configuration file"
	ErrEnvFile              = "failed to load .env file"
	ErrServerStartup        = "server startup failed"
	ErrServerShutdown       = "server shutdown failed"
	ErrPortRequired         = "server port is required"
	ErrScheduleInvalid      = "invalid run schedule"
	ErrInvalidURL           = "invalid URL structure"
	ErrProtocol             = "unsupported protocol scheme (http/https only)"
	ErrRequestBuild         = "failed to build request"
	ErrFetchNetwork         = "network error during fetch"
	ErrFetchStatus          = "unexpected HTTP status"
	ErrVCardDecode          = "failed to decode vCard export"
	ErrVCardEmpty           = "vCard export contains no card"
	ErrLogFile              = "failed to open log file"
	ErrCacheDir             = "could not determine user cache dir"
	ErrCreateDir            = "could not create app cache dir"
	ErrAppFailed            = "application failed unexpectedly"
	ErrLocalesAccess        = "failed to access embedded locales"
	ErrLocaleLoad           = "failed to load locale file"
	ErrRunFailed            = "scheduled run failed"
)

// -----------------------------------------------------------------------------
// HTTP Server Responses
// -----------------------------------------------------------------------------

const (
	HTTPMsgInitializing = "No run has completed yet, please try again later."
	HTTPMsgMethodNotAll = "Method Not Allowed"
)

// -----------------------------------------------------------------------------
// Fallbacks & Messages
// -----------------------------------------------------------------------------

const (
	// Used when the localizer is unavailable or a translation is missing.
	FallbackAnniversary                = "Happy anniversary %s!"
	FallbackAnniversaryMention         = "Happy anniversary %s (@%s)!"
	FallbackAnniversaryDuration        = "Happy anniversary %s (%s)!"
	FallbackAnniversaryDurationMention = "Happy anniversary %s (%s) (@%s)!"
	FallbackBirthday                   = "Happy birthday %s!"
	FallbackBirthdayMention            = "Happy birthday %s (@%s)!"
	FallbackNoNotices                  = "No notifications today!"

	MsgRunStarted      = "Pipeline run started"
	MsgRunFinished     = "Pipeline run finished"
	MsgFeedParsed      = "Feed parsed"
	MsgSkippedSummary  = "Skipping event with malformed summary"
	MsgSkippedVEvent   = "Skipping unreadable calendar entry"
	MsgDirectoryBuilt  = "Directory index built"
	MsgRosterBuilt     = "Roster index built"
	MsgNoDirectoryHit  = "No directory entry for name"
	MsgDeliveryFailed  = "Notice delivery failed, continuing"
	MsgNoticeSent      = "Notice delivered"
	MsgNoticeDryRun    = "Dry run, notice not delivered"
	MsgFetchStart      = "Fetching document"
	MsgFetchRejected   = "Document request rejected"
	MsgFetchOpened     = "Document stream opened"
	MsgDirectoryPage   = "Directory page fetched"
	MsgRosterFetched   = "Roster fetched"
	MsgAppStarting     = "Starting application"
	MsgAppStop         = "Application stopped gracefully"
	MsgServerListen    = "HTTP server listening"
	MsgServerStop      = "Shutting down HTTP server..."
	MsgDigestUpdated   = "Digest cache updated"
	MsgSchedulerStart  = "Scheduler started"
	MsgSchedulerStop   = "Scheduler stopped"
	MsgLocaleSkip      = "Skipping non-locale file"
	MsgLocaleLoaded    = "Locale loaded successfully"
	MsgTransMissing    = "Missing translation key"
	MsgKeyringFallback = "Chat token not in environment, using keyring"
	MsgEnvFileMissing  = "No .env file loaded"
	MsgLogWarning      = "Warning: %s at %s: %v\n"
)

// -----------------------------------------------------------------------------
// Structured Logging Keys (slog)
// -----------------------------------------------------------------------------

const (
	LogKeyComponent = "component"
	LogKeyError     = "error"
	LogKeyURL       = "url"
	LogKeyStatus    = "status_code"
	LogKeyLength    = "content_length"
	LogKeyAuth      = "basic_auth"
	LogKeyFile      = "file"
	LogKeyKey       = "key"
	LogKeyPort      = "port"
	LogKeyKind      = "kind"
	LogKeySummary   = "summary"
	LogKeyName      = "name"
	LogKeyChannel   = "channel"
	LogKeyTarget    = "target_date"
	LogKeyDomain    = "domain"
	LogKeyCount     = "count"
	LogKeyEvents    = "events"
	LogKeyNotices   = "notices"
	LogKeyFailed    = "failed"
	LogKeySchedule  = "schedule"
	LogKeySizeBytes = "size_bytes"
	LogKeyETag      = "etag"
	LogKeyDuration  = "duration_ms"

	// Startup Info Keys
	LogKeyBuild   = "build"
	LogKeyApp     = "app"
	LogKeyVersion = "version"
	LogKeyGoVer   = "go_version"
	LogKeyEnv     = "env"
	LogKeyOS      = "os"
	LogKeyArch    = "arch"
	LogKeyPID     = "pid"
)

// -----------------------------------------------------------------------------
// Log Components
// -----------------------------------------------------------------------------

const (
	CompEngine    = "engine"
	CompFetcher   = "fetcher"
	CompDirectory = "directory"
	CompChat      = "chat"
	CompServer    = "server"
	CompScheduler = "scheduler"
	CompConfig    = "config"
	CompMain      = "main"
	CompI18n      = "i18n"
)
