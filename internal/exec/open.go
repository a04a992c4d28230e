// Package exec handles launching external programs, currently just the
// system browser.
package exec

import (
	"fmt"
	"os/exec"
	"runtime"
)

// OpenURL opens a URL in the default browser. The process is detached and
// never waited on; azb only cares that the spawn itself succeeded.
func OpenURL(url string) error {
	name, args := openCommand(runtime.GOOS, url)
	if name == "" {
		return fmt.Errorf("don't know how to open a browser on %s", runtime.GOOS)
	}

	cmd := exec.Command(name, args...)
	cmd.Stdout = nil
	cmd.Stderr = nil
	cmd.Stdin = nil

	return cmd.Start()
}

// openCommand returns the platform's URL opener invocation.
func openCommand(goos, url string) (name string, args []string) {
	switch goos {
	case "darwin":
		return "open", []string{url}
	case "windows":
		return "cmd", []string{"/C", "start", "", url}
	case "linux", "freebsd", "openbsd", "netbsd":
		return "xdg-open", []string{url}
	default:
		return "", nil
	}
}
