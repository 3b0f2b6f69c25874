// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - TokenStore: Encrypted token record persistence
//   - Protector: Opaque per-user encrypt/decrypt
//   - ConfigStore: Application configuration
//   - AuthorizationServer: Authorize URL and token endpoint calls
//   - PlayerAPI: Current track and queue lookups
//   - CallbackListener: Transient loopback redirect receiver
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - BrowserLauncher: Without it the user navigates to the URL manually.
//   - TokenWatcher: Without it external logins are picked up on the next poll.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
