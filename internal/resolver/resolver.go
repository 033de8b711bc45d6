// Package resolver turns a raw image reference into a validated, existing,
// absolute filesystem path.
//
// A reference may arrive as a wikilink ([[photo.png]]), a vault-relative or
// absolute path, or a pseudo-URL (file://, the editor-internal app:// scheme,
// data:, blob:, http(s)://). Resolution is a straight pipeline: sanitize,
// classify, resolve against the vault root, validate, confirm existence.
// Every failure carries a distinct apperr sentinel.
package resolver

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/starford/perthro/internal/apperr"
	"github.com/starford/perthro/internal/pathcheck"
)

// MaxRefLen bounds the raw reference before any processing.
const MaxRefLen = 1000

// pseudoScheme is the editor-internal scheme used to address vault files
// inside the rendering layer (app://<authority>/<vault-relative-path>).
const pseudoScheme = "app://"

var (
	multiSlashRe = regexp.MustCompile(`/{2,}`)
	driveRe      = regexp.MustCompile(`^[A-Za-z]:(/|$)`)
	wikilinkRe   = regexp.MustCompile(`^\[\[(.+)\]\]$`)
)

// NameIndex looks up a vault-relative path for a bare file name, as used by
// wikilink references. An empty result with nil error means no match.
type NameIndex interface {
	LookupName(name string) (string, error)
}

// Resolver resolves references against a vault root.
type Resolver struct {
	root string // absolute vault root, forward slashes
	goos string
	idx  NameIndex
}

// New creates a Resolver rooted at the given vault directory. idx may be nil,
// in which case bare wikilink targets fall back to root-relative resolution.
func New(vaultRoot string, idx NameIndex) *Resolver {
	return &Resolver{
		root: filepath.ToSlash(filepath.Clean(vaultRoot)),
		goos: runtime.GOOS,
		idx:  idx,
	}
}

// Root returns the vault root the resolver was built with.
func (r *Resolver) Root() string {
	return r.root
}

// Resolve converts a raw reference into an absolute path to an existing
// regular file, or fails with a classified error.
func (r *Resolver) Resolve(raw string) (string, error) {
	s, err := Sanitize(raw)
	if err != nil {
		return "", err
	}

	if m := wikilinkRe.FindStringSubmatch(s); m != nil {
		s, err = r.resolveWikilink(m[1])
		if err != nil {
			return "", err
		}
	}

	// Validate before ".." segments are collapsed by cleaning, so excessive
	// traversal is rejected without ever touching the filesystem.
	if err := pathcheck.Validate(s); err != nil {
		return "", err
	}

	var abs string
	if isAbsolute(s, r.goos) {
		abs = path.Clean(s)
	} else {
		rel := strings.TrimPrefix(s, "./")
		abs = path.Clean(r.root + "/" + rel)
	}

	if err := pathcheck.Validate(abs); err != nil {
		return "", err
	}

	native := filepath.FromSlash(abs)
	info, err := os.Stat(native)
	if err != nil {
		if errors.Is(err, fs.ErrPermission) {
			return "", fmt.Errorf("resolver: stat %s: %w", native, apperr.ErrPermission)
		}
		// Any other filesystem error is reported as missing.
		return "", fmt.Errorf("resolver: stat %s: %w", native, apperr.ErrNotFound)
	}
	if !info.Mode().IsRegular() {
		return "", fmt.Errorf("resolver: %s is not a regular file: %w", native, apperr.ErrNotFound)
	}
	return native, nil
}

// resolveWikilink maps a wikilink target to a root-relative path. Targets
// with an alias ([[target|alias]]) use only the target. Targets without a
// path separator are looked up by file name in the index.
func (r *Resolver) resolveWikilink(inner string) (string, error) {
	target := inner
	if i := strings.Index(inner, "|"); i >= 0 {
		target = inner[:i]
	}
	target = strings.TrimSpace(target)
	if target == "" {
		return "", fmt.Errorf("resolver: empty wikilink target: %w", apperr.ErrInvalidFormat)
	}
	if strings.Contains(target, "/") || r.idx == nil {
		return target, nil
	}
	rel, err := r.idx.LookupName(target)
	if err != nil {
		return "", fmt.Errorf("resolver: wikilink lookup %q: %w", target, err)
	}
	if rel == "" {
		return "", fmt.Errorf("resolver: wikilink %q: %w", target, apperr.ErrNotFound)
	}
	return rel, nil
}

// Sanitize applies the input checks, Unicode and separator normalization,
// scheme handling, and query/fragment stripping that precede path
// resolution. The image extractor uses it to vet candidate attributes, so
// embedded and network schemes are classified here rather than in Resolve.
func Sanitize(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", apperr.ErrEmptyInput
	}
	if len(s) > MaxRefLen {
		return "", fmt.Errorf("resolver: %d chars exceeds %d: %w", len(s), MaxRefLen, apperr.ErrTooLong)
	}
	if strings.ContainsRune(s, 0) {
		return "", apperr.ErrNullByte
	}

	s = norm.NFC.String(s)

	s, err := stripScheme(s)
	if err != nil {
		return "", err
	}

	s = strings.ReplaceAll(s, `\`, "/")
	s = collapseSeparators(s)
	s = stripTrailingSeparator(s)

	// Drop query string and fragment.
	if i := strings.IndexByte(s, '?'); i >= 0 {
		s = s[:i]
	}
	if i := strings.IndexByte(s, '#'); i >= 0 {
		s = s[:i]
	}

	// Opportunistic percent-decode; keep the encoded form when decoding
	// fails or the decoded form trips the dangerous-pattern check.
	if strings.ContainsRune(s, '%') {
		if dec, decErr := url.PathUnescape(s); decErr == nil && pathcheck.Validate(dec) == nil {
			s = dec
		}
	}

	if s == "" || strings.Trim(s, "./") == "" {
		return "", fmt.Errorf("resolver: nothing left after sanitization: %w", apperr.ErrInvalidFormat)
	}
	return s, nil
}

// stripScheme classifies and removes URI schemes. data:/blob: and http(s)
// references are terminal conditions, not paths.
func stripScheme(s string) (string, error) {
	lower := strings.ToLower(s)
	switch {
	case strings.HasPrefix(lower, "data:"), strings.HasPrefix(lower, "blob:"):
		return "", apperr.ErrEmbeddedImage
	case strings.HasPrefix(lower, "http://"), strings.HasPrefix(lower, "https://"):
		return "", apperr.ErrNetworkImage
	case strings.HasPrefix(lower, "file://"):
		rest := s[len("file://"):]
		if dec, err := url.PathUnescape(rest); err == nil {
			rest = dec
		}
		// file:///C:/... carries a spurious leading slash before the drive.
		if len(rest) > 1 && rest[0] == '/' && driveRe.MatchString(rest[1:]) {
			rest = rest[1:]
		}
		return rest, nil
	case strings.HasPrefix(lower, pseudoScheme):
		rest := s[len(pseudoScheme):]
		if i := strings.IndexByte(rest, '/'); i >= 0 {
			rest = rest[i+1:]
		} else {
			rest = ""
		}
		if dec, err := url.PathUnescape(rest); err == nil {
			rest = dec
		}
		return rest, nil
	}
	return s, nil
}

// collapseSeparators squeezes runs of slashes, preserving a leading double
// slash so UNC paths survive normalization.
func collapseSeparators(s string) string {
	lead := ""
	if strings.HasPrefix(s, "//") {
		lead = "//"
		s = strings.TrimLeft(s, "/")
	}
	return lead + multiSlashRe.ReplaceAllString(s, "/")
}

// stripTrailingSeparator removes a single trailing slash unless the path is
// a filesystem root.
func stripTrailingSeparator(s string) string {
	if !strings.HasSuffix(s, "/") || s == "/" || driveRe.MatchString(s) && len(s) == 3 {
		return s
	}
	return strings.TrimSuffix(s, "/")
}

// isAbsolute classifies a slash-normalized path for the given platform:
// drive letter or UNC prefix on Windows, a leading slash elsewhere.
func isAbsolute(p, goos string) bool {
	if goos == "windows" {
		return driveRe.MatchString(p) || strings.HasPrefix(p, "//")
	}
	return strings.HasPrefix(p, "/")
}
