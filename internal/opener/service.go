package opener

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/starford/perthro/internal/apperr"
	"github.com/starford/perthro/internal/imageref"
	"github.com/starford/perthro/internal/resolver"
)

// ImageOpener hands a validated absolute path to the OS default viewer.
type ImageOpener interface {
	Open(ctx context.Context, path string) error
}

// NotifyPrefs controls which outcomes request an editor-side notice.
// Failures always notify; successes only when ShowSuccess is set. Debug
// additionally includes the resolved path in failure messages.
type NotifyPrefs struct {
	ShowSuccess bool
	Debug       bool
}

// Outcome is the terminal result of an open or resolve attempt. It is
// always produced, never an error: every failure mode maps to a stable
// Kind so editor-side handlers can switch on it.
type Outcome struct {
	Status  string `json:"status"` // "ok" or "error"
	Kind    string `json:"kind"`
	Path    string `json:"path,omitempty"` // resolved absolute path, when resolution got that far
	Message string `json:"message"`
	Notify  bool   `json:"notify"`
}

// Outcome kinds.
const (
	KindOpened        = "opened"
	KindNoReference   = "no_reference"
	KindEmptyInput    = "empty_input"
	KindTooLong       = "too_long"
	KindInvalidFormat = "invalid_format"
	KindEmbedded      = "embedded_image"
	KindNetwork       = "network_image"
	KindDangerous     = "dangerous_path"
	KindNotFound      = "not_found"
	KindPermission    = "permission_denied"
	KindLaunchFailed  = "launch_failed"
	KindInternal      = "internal_error"
)

// Service coordinates reference extraction, path resolution, and viewer
// launch into a single outcome per request.
type Service struct {
	resolver *resolver.Resolver
	launcher ImageOpener
	prefs    NotifyPrefs
	logger   *slog.Logger
}

// NewService creates a new opener service.
func NewService(r *resolver.Resolver, l ImageOpener, prefs NotifyPrefs, logger *slog.Logger) *Service {
	return &Service{resolver: r, launcher: l, prefs: prefs, logger: logger}
}

// OpenElement extracts an image reference from an HTML fragment (the
// element the user double-clicked) and opens it. A fragment with no
// usable reference is a no-op outcome, not an error.
func (s *Service) OpenElement(ctx context.Context, fragment string) (out Outcome) {
	defer s.recover(&out)

	node, err := imageref.ParseFragment(fragment)
	if err != nil {
		return s.failure(apperr.ErrNoReference, "")
	}
	if !imageref.IsImage(node) {
		return s.failure(apperr.ErrNoReference, "")
	}
	ref, err := imageref.Extract(node)
	if err != nil {
		return s.failure(err, "")
	}
	return s.OpenReference(ctx, ref)
}

// OpenReference resolves a raw image reference and opens the resulting
// file with the OS default viewer.
func (s *Service) OpenReference(ctx context.Context, ref string) (out Outcome) {
	defer s.recover(&out)

	abs, err := s.resolver.Resolve(ref)
	if err != nil {
		return s.failure(err, abs)
	}

	if err := s.launcher.Open(ctx, abs); err != nil {
		s.logger.Warn("opener: launch failed",
			slog.String("path", abs),
			slog.String("error", err.Error()))
		return s.failure(err, abs)
	}

	s.logger.Info("opener: opened", slog.String("path", abs))
	return Outcome{
		Status:  "ok",
		Kind:    KindOpened,
		Path:    abs,
		Message: "Opening image in default viewer",
		Notify:  s.prefs.ShowSuccess,
	}
}

// ResolveReference runs the resolution pipeline without launching
// anything. Used by dry-run requests and diagnostics.
func (s *Service) ResolveReference(ref string) (out Outcome) {
	defer s.recover(&out)

	abs, err := s.resolver.Resolve(ref)
	if err != nil {
		return s.failure(err, abs)
	}
	return Outcome{
		Status:  "ok",
		Kind:    KindOpened,
		Path:    abs,
		Message: "Reference resolves to an existing image",
		Notify:  false,
	}
}

// recover converts a panic anywhere in the pipeline into an
// internal_error outcome so a malformed input can never take the
// process down.
func (s *Service) recover(out *Outcome) {
	if r := recover(); r != nil {
		s.logger.Error("opener: panic recovered", slog.String("panic", fmt.Sprint(r)))
		*out = Outcome{
			Status:  "error",
			Kind:    KindInternal,
			Message: "Internal error while opening image",
			Notify:  true,
		}
	}
}

// failure maps a pipeline error to its outcome. path is included when
// resolution produced one before the failure.
func (s *Service) failure(err error, path string) Outcome {
	kind, msg, notify := classifyFailure(err)
	if s.prefs.Debug && path != "" {
		msg = fmt.Sprintf("%s (%s)", msg, path)
	}
	return Outcome{
		Status:  "error",
		Kind:    kind,
		Path:    path,
		Message: msg,
		Notify:  notify,
	}
}

func classifyFailure(err error) (kind, msg string, notify bool) {
	switch {
	case errors.Is(err, apperr.ErrNoReference):
		// Double-clicking a non-image element is routine; stay quiet.
		return KindNoReference, "No image reference found in element", false
	case errors.Is(err, apperr.ErrEmptyInput):
		return KindEmptyInput, "Image reference is empty", true
	case errors.Is(err, apperr.ErrTooLong):
		return KindTooLong, "Image reference is too long", true
	case errors.Is(err, apperr.ErrNullByte), errors.Is(err, apperr.ErrInvalidFormat):
		return KindInvalidFormat, "Image reference has an invalid format", true
	case errors.Is(err, apperr.ErrEmbeddedImage):
		return KindEmbedded, "Embedded images have no file to open; use export instead", true
	case errors.Is(err, apperr.ErrNetworkImage):
		return KindNetwork, "Network images cannot be opened locally", true
	case errors.Is(err, apperr.ErrDangerousPath):
		return KindDangerous, "Image path contains unsafe characters", true
	case errors.Is(err, apperr.ErrNotFound):
		return KindNotFound, "Image file not found", true
	case errors.Is(err, apperr.ErrPermission):
		return KindPermission, "No permission to open image file", true
	case errors.Is(err, apperr.ErrLaunch):
		return KindLaunchFailed, "Could not start the system image viewer", true
	default:
		return KindInternal, "Internal error while opening image", true
	}
}
