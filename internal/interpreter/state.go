package interpreter

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/sevenc-nanashi/azookey-go/internal/azktypes"
	"github.com/sevenc-nanashi/azookey-go/internal/hostapi"
	"github.com/sevenc-nanashi/azookey-go/internal/ipc"
)

// defaultReconnectCooldown is the minimum time between lazy-reconnect
// attempts once one has failed.
const defaultReconnectCooldown = 10 * time.Second

// IMEState is the process-wide state for one host-framework activation:
// input mode, the (possibly absent) IPC client, host subscription cookies,
// and the last-reconnect-failure timestamp used to throttle retries.
//
// The mutex guards InputMode/client/Cookies; critical sections never span
// an IPC or host-framework call (spec.md §5). lastFailNs is a
// standalone relaxed atomic, read outside the mutex by
// [IMEState.ShouldAttemptReconnect] so a reconnect decision never needs to
// take the lock twice.
type IMEState struct {
	mu         sync.Mutex
	inputMode  azktypes.InputMode
	client     ipc.Backend
	cookies    hostapi.Cookies
	cooldown   time.Duration
	lastFailNs atomic.Int64
}

// StateOption configures an [IMEState] at construction time.
type StateOption func(*IMEState)

// WithReconnectCooldown overrides the minimum time between failed
// lazy-reconnect attempts. Zero or negative values are ignored.
func WithReconnectCooldown(d time.Duration) StateOption {
	return func(s *IMEState) {
		if d > 0 {
			s.cooldown = d
		}
	}
}

// NewIMEState returns a fresh state with no client installed, Kana input
// mode, and no reconnect cooldown in effect.
func NewIMEState(opts ...StateOption) *IMEState {
	s := &IMEState{cooldown: defaultReconnectCooldown}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *IMEState) InputMode() azktypes.InputMode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inputMode
}

func (s *IMEState) SetInputMode(m azktypes.InputMode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inputMode = m
}

// Client returns the currently installed IPC client, or nil if offline.
func (s *IMEState) Client() ipc.Backend {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.client
}

// InstallClient installs client (possibly nil to go offline) and clears
// the reconnect cooldown on success.
func (s *IMEState) InstallClient(client ipc.Backend) {
	s.mu.Lock()
	s.client = client
	s.mu.Unlock()
	if client != nil {
		s.lastFailNs.Store(0)
	}
}

// MarkReconnectFailure records now as the last failed reconnect attempt,
// starting a new cooldown window.
func (s *IMEState) MarkReconnectFailure(now time.Time) {
	s.lastFailNs.Store(now.UnixNano())
}

// ShouldAttemptReconnect reports whether at least the reconnect cooldown
// has elapsed since the last failed attempt (or no attempt has ever failed).
func (s *IMEState) ShouldAttemptReconnect(now time.Time) bool {
	last := s.lastFailNs.Load()
	if last == 0 {
		return true
	}
	return now.Sub(time.Unix(0, last)) >= s.cooldown
}

// Cookies returns the current host subscription cookie set.
func (s *IMEState) Cookies() hostapi.Cookies {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cookies
}

// SetCookies replaces the subscription cookie set, e.g. after activation
// subscribes all sinks.
func (s *IMEState) SetCookies(c hostapi.Cookies) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cookies = c
}
