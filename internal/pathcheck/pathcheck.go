// Package pathcheck holds the single-sourced dangerous-path rule set.
//
// Both the resolver and the launcher call Validate: the launcher must not
// trust its caller, but the rules themselves live only here so the two
// layers cannot drift apart. Parentheses, brackets, and braces are legal in
// file names and are not rejected; the launcher escapes them instead.
package pathcheck

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/starford/perthro/internal/apperr"
)

// MaxPathLen bounds a fully resolved path.
const MaxPathLen = 2000

// maxTraversals bounds the number of ".." occurrences in a path.
const maxTraversals = 10

var (
	shellMetaRe   = regexp.MustCompile("[;&|`$]")
	redirectionRe = regexp.MustCompile(`^\s*[<>]`)
	varExpandRe   = regexp.MustCompile(`\$\{[^}]*\}`)
	backtickRe    = regexp.MustCompile("`[^`]*`")
)

// Validate rejects paths that must never reach a shell or the filesystem.
func Validate(path string) error {
	if len(path) > MaxPathLen {
		return fmt.Errorf("pathcheck: %d chars exceeds %d: %w", len(path), MaxPathLen, apperr.ErrTooLong)
	}
	if strings.ContainsRune(path, 0) {
		return fmt.Errorf("pathcheck: %w", apperr.ErrNullByte)
	}
	if containsControl(path) {
		return fmt.Errorf("pathcheck: control character: %w", apperr.ErrDangerousPath)
	}
	if strings.Count(path, "..") > maxTraversals {
		return fmt.Errorf("pathcheck: excessive traversal: %w", apperr.ErrDangerousPath)
	}
	switch {
	case shellMetaRe.MatchString(path):
		return fmt.Errorf("pathcheck: shell metacharacter: %w", apperr.ErrDangerousPath)
	case redirectionRe.MatchString(path):
		return fmt.Errorf("pathcheck: redirection operator: %w", apperr.ErrDangerousPath)
	case varExpandRe.MatchString(path):
		return fmt.Errorf("pathcheck: variable expansion: %w", apperr.ErrDangerousPath)
	case backtickRe.MatchString(path):
		return fmt.Errorf("pathcheck: command substitution: %w", apperr.ErrDangerousPath)
	}
	return nil
}

// containsControl reports control characters in the ranges 0-8, 11, 12,
// 14-31, and 127. Tab, LF, and CR are handled earlier by trimming.
func containsControl(s string) bool {
	for _, r := range s {
		switch {
		case r <= 8:
			return true
		case r == 11 || r == 12:
			return true
		case r >= 14 && r <= 31:
			return true
		case r == 127:
			return true
		}
	}
	return false
}
