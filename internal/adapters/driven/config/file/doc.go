// Package file provides the TOML-backed configuration store.
//
// Keys are addressed in dot notation ("spotify.client_id") and written
// back as nested TOML tables:
//
//	[spotify]
//	client_id = "..."
//	redirect_uri = "http://127.0.0.1:5543/callback"
//
//	[poller]
//	show_queue = true
package file
