// Package launcher opens a resolved path with the operating system's default
// application.
//
// The path is re-validated against the shared dangerous-path rule set before
// any command is built: the launcher does not trust its caller. The launch
// itself is fire-and-forget with respect to the opened viewer; only the
// spawning command is awaited.
package launcher

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	"github.com/starford/perthro/internal/apperr"
	"github.com/starford/perthro/internal/pathcheck"
)

// posixSpecial lists the characters escaped individually for POSIX shells:
// quotes, whitespace, backslash, parens, brackets, braces, glob characters,
// and shell punctuation.
const posixSpecial = "\"'` \t\n\\()[]{}*?~!#&|;<>$"

// runFunc executes a prepared command line. Swapped out in tests.
type runFunc func(ctx context.Context, name string, args ...string) error

// Launcher builds and executes the platform open command.
type Launcher struct {
	goos string
	run  runFunc
}

// New creates a Launcher for the current platform.
func New() *Launcher {
	return &Launcher{goos: runtime.GOOS, run: runCommand}
}

// Open launches the OS default handler for path and waits for the spawn
// command to complete. The opened application itself is never awaited or
// killed.
func (l *Launcher) Open(ctx context.Context, path string) error {
	if err := pathcheck.Validate(path); err != nil {
		return err
	}
	name, args := command(l.goos, path)
	if err := l.run(ctx, name, args...); err != nil {
		return classify(err)
	}
	return nil
}

// command selects the platform invocation for an already validated path.
// The closed set is windows/darwin/everything-else; xdg-open is the
// universal POSIX fallback.
func command(goos, path string) (string, []string) {
	switch goos {
	case "windows":
		// Empty quoted string suppresses start's window-title argument.
		return "cmd", []string{"/c", `start "" ` + escapeWindows(path)}
	case "darwin":
		return "sh", []string{"-c", "open " + escapePOSIX(path)}
	default:
		return "sh", []string{"-c", "xdg-open " + escapePOSIX(path)}
	}
}

// escapeWindows wraps the path in double quotes, doubling embedded quotes.
func escapeWindows(path string) string {
	return `"` + strings.ReplaceAll(path, `"`, `""`) + `"`
}

// escapePOSIX backslash-escapes each shell-special character individually.
func escapePOSIX(path string) string {
	var b strings.Builder
	b.Grow(len(path) * 2)
	for _, r := range path {
		if strings.ContainsRune(posixSpecial, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// classify maps a failed launch to the error taxonomy by inspecting the
// underlying OS error text.
func classify(err error) error {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "permission denied"),
		strings.Contains(msg, "access is denied"),
		strings.Contains(msg, "eacces"),
		strings.Contains(msg, "eperm"):
		return fmt.Errorf("launcher: %v: %w", err, apperr.ErrPermission)
	case strings.Contains(msg, "no such file"),
		strings.Contains(msg, "not found"),
		strings.Contains(msg, "cannot find"),
		strings.Contains(msg, "enoent"):
		return fmt.Errorf("launcher: %v: %w", err, apperr.ErrNotFound)
	default:
		return fmt.Errorf("launcher: %v: %w", err, apperr.ErrLaunch)
	}
}

// runCommand spawns the open command and waits for it to exit, folding any
// captured output into the returned error.
func runCommand(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		if trimmed := bytes.TrimSpace(out); len(trimmed) > 0 {
			return fmt.Errorf("%s: %w: %s", name, err, trimmed)
		}
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}
