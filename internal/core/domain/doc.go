// Package domain defines the core entities for nowplaying.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - TokenRecord: The persisted access/refresh token pair and its expiry
//   - NowPlaying: One observation of the user's current playback
//   - QueueSnapshot: The optional "up next" entry
//   - PlaybackView: What the presentation layer renders
//   - Settings: Client identifier and redirect configuration
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
