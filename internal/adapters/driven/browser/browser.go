// Package browser opens URLs in the user's default browser.
package browser

import (
	"fmt"
	"os/exec"
	"runtime"

	"github.com/custodia-labs/nowplaying/internal/core/ports/driven"
)

// Ensure Launcher implements the interface.
var _ driven.BrowserLauncher = (*Launcher)(nil)

// Launcher starts the platform URL opener without waiting for it.
type Launcher struct {
	goos  string
	start func(name string, args ...string) error
}

// NewLauncher creates a launcher for the running platform.
func NewLauncher() *Launcher {
	return &Launcher{
		goos: runtime.GOOS,
		start: func(name string, args ...string) error {
			return exec.Command(name, args...).Start()
		},
	}
}

// Open opens the default browser to the given URL.
func (l *Launcher) Open(url string) error {
	name, args, err := command(l.goos, url)
	if err != nil {
		return err
	}
	return l.start(name, args...)
}

// command returns the opener invocation for goos.
func command(goos, url string) (string, []string, error) {
	switch goos {
	case "darwin":
		return "open", []string{url}, nil
	case "linux", "freebsd", "openbsd", "netbsd":
		return "xdg-open", []string{url}, nil
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", url}, nil
	default:
		return "", nil, fmt.Errorf("unsupported platform: %s", goos)
	}
}
