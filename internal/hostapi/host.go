// Package hostapi declares the narrow interface the action interpreter uses
// to talk back to the host text-services framework, decoupling C6 from the
// concrete COM-style sink objects the same way pkg/audio/webrtc decouples
// the engine from a concrete pion transport.
package hostapi

import (
	"context"

	"github.com/google/uuid"
)

// Cookie is an opaque subscription handle returned by [Host] advise-style
// calls, revoked in reverse order at deactivation.
type Cookie uint32

// Cookies is an ordered set of subscription cookies for one activation.
type Cookies []Cookie

// RevokeAll revokes every cookie in reverse-registration order via revoke,
// collecting (not aborting on) individual failures.
func (c Cookies) RevokeAll(revoke func(Cookie) error) error {
	var firstErr error
	for i := len(c) - 1; i >= 0; i-- {
		if err := revoke(c[i]); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// NewHandle mints a fresh opaque composition-region handle. The host
// framework's own token shape is not specified by the spec; a UUID is used
// here, matching the token style used for cookie-like values elsewhere in
// the corpus.
func NewHandle() string {
	return uuid.NewString()
}

// Host is the subset of the host text-services framework the interpreter
// calls into. It is implemented by the real TSF bridge in production and by
// [hostmock.Host] in tests.
type Host interface {
	// StartComposition asks the host to begin an underlined composition
	// region at the current caret and returns its handle.
	StartComposition(ctx context.Context) (handle string, err error)

	// EndComposition asks the host to commit and remove the composition
	// region identified by handle.
	EndComposition(ctx context.Context, handle string) error

	// SetText replaces the host-visible composition text with (text,
	// suffix), where suffix is the uncommitted tail rendered after text.
	SetText(ctx context.Context, handle string, text, suffix string) error

	// SetCaret moves the caret within the composition region by delta
	// characters. Reserved for MoveCursor; currently never called with a
	// non-zero effect since MoveCursor is a documented no-op.
	SetCaret(ctx context.Context, handle string, delta int) error

	// ShiftStart visually re-anchors the composition region's start to the
	// now-committed prefix boundary, used by ShrinkText.
	ShiftStart(ctx context.Context, handle string, committedChars int) error

	// RefreshLanguageBarIcon updates the language-bar icon to reflect mode.
	RefreshLanguageBarIcon(mode string)

	// SurroundingText returns the host's current surrounding-text hint, if
	// any, used as the advisory context sent to the backend on
	// StartComposition (supplemented feature: set_context).
	SurroundingText(ctx context.Context) string
}
