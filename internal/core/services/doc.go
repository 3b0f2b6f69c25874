// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// The poller and the token manager are safe for concurrent use. The
// auth flow runs one login at a time.
package services
