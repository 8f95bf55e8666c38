// Package key defines the canonical set of configuration identifiers used for centralized settings management.
package key

// Playback surface - these keys configure the external mpv processes that render video.
const (
	PlayerBinary          = "player.binary"
	PlayerLoop            = "player.loop"
	PlayerExtraArgs       = "player.extra_args"
	PlayerForceAudioCodec = "player.force_audio_codec"
	PlayerSocketRetries   = "player.socket_retries"
)

// Feed paging.
const (
	FeedPageSize  = "feed.page_size"
	FeedLookahead = "feed.lookahead"
)

// Network and credentials.
const (
	NetworkTimeout = "network.timeout_seconds"
	AuthUseKeyring = "auth.use_keyring"
)

// Iconography - these keys manage the visual rendering of UI symbols.
const (
	IconsVariant = "icons.variant"
)

// Terminal User Interface (TUI).
const (
	TUIShowURLs = "tui.show_urls"
)

// Logging Infrastructure - these keys manage the application's internal diagnostics.
const (
	LogsWrite      = "logs.write"
	LogsLevel      = "logs.level"
	LogsJson       = "logs.json"
	LogsMaxSize    = "logs.max_size_mb"
	LogsMaxBackups = "logs.max_backups"
)

// CLI Execution Environment - these flags and settings govern the non-TUI application behavior.
const (
	CliColored = "cli.colored"
)
