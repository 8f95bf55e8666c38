// Package constant defines immutable application-level identifiers and configuration defaults.
package constant

import _ "embed"

const (
	// App is the canonical application identifier used for filesystem paths and CLI branding.
	App = "jellytok"

	// ClientName is reported to the media server in the client identification header.
	ClientName = "JellyTok"

	// Version is the current application semantic version string.
	Version = "0.3.0"

	// MinServerVersion is the oldest server release the catalog client is tested against.
	MinServerVersion = "10.8.0"
)

// Build metadata, overridden with -ldflags at release time.
var (
	BuiltAt  = "unknown"
	BuiltBy  = "unknown"
	Revision = "unknown"
)

// AsciiArtLogo is printed above the root command's help.
//
//go:embed ascii.txt
var AsciiArtLogo string
