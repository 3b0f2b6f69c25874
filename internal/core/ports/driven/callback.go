package driven

import "context"

// CallbackParams are the query parameters of the authorization redirect.
type CallbackParams struct {
	Code             string
	State            string
	Error            string
	ErrorDescription string
}

// CallbackListener opens transient loopback HTTP listeners.
type CallbackListener interface {
	// Listen binds the address of redirectURI and starts accepting requests.
	Listen(redirectURI string) (CallbackSession, error)
}

// CallbackSession is one bound listener waiting for one redirect.
type CallbackSession interface {
	// Await blocks until the first redirect arrives or ctx is done.
	// judge decides the outcome; its error (or nil) selects the failure
	// or success page written back to the browser. The returned error
	// reports only ctx termination or listener failure, never the verdict.
	Await(ctx context.Context, judge func(CallbackParams) error) (CallbackParams, error)

	// Close shuts the listener down. Safe to call more than once.
	Close() error
}

// BrowserLauncher opens a URL in the user's default browser.
type BrowserLauncher interface {
	Open(url string) error
}
