// Package textservice models the engine's side of the host framework's
// activation contract: one activation subscribes the key-event,
// thread-manager-event, and text-layout sinks, installs the language-bar
// item, and bootstraps the IPC client once; deactivation unwinds all of it
// in reverse. The concrete COM registration glue stays outside this module;
// the package deals only in the narrow [ThreadManager] and [hostapi.Host]
// interfaces so the lifecycle is testable without a real host.
package textservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sevenc-nanashi/azookey-go/internal/azktypes"
	"github.com/sevenc-nanashi/azookey-go/internal/engine"
	"github.com/sevenc-nanashi/azookey-go/internal/hostapi"
	"github.com/sevenc-nanashi/azookey-go/internal/interpreter"
)

// ErrAlreadyActivated is returned by [Service.Activate] when an activation
// is already in progress; the host must deactivate first.
var ErrAlreadyActivated = errors.New("textservice: already activated")

// ThreadManager is the subset of the host's thread manager the service
// needs for sink bookkeeping. The key-event sink is keyed by thread id
// rather than a cookie, mirroring the host API; every other subscription
// returns a [hostapi.Cookie] revoked at deactivation.
type ThreadManager interface {
	AdviseKeyEventSink(threadID uint32) error
	UnadviseKeyEventSink(threadID uint32) error

	AdviseThreadMgrEventSink() (hostapi.Cookie, error)
	AdviseTextLayoutSink() (hostapi.Cookie, error)
	UnadviseSink(c hostapi.Cookie) error

	AddLanguageBarItem(mode string) error
	RemoveLanguageBarItem() error
}

// Option configures a [Service].
type Option func(*Service)

// WithInterpreterOptions forwards opts to the interpreter constructed for
// each activation's engine.
func WithInterpreterOptions(opts ...interpreter.Option) Option {
	return func(s *Service) { s.interpOpts = opts }
}

// Service owns one text-service activation: the engine pipeline, the
// subscription cookies, and the (possibly absent) IPC client held in the
// shared IME state.
//
// The host framework drives Service from its own UI thread and never
// overlaps calls, so Service carries no internal locking of its own; the
// process-wide pieces it touches ([interpreter.IMEState]) synchronize
// themselves.
type Service struct {
	host       hostapi.Host
	state      *interpreter.IMEState
	dial       interpreter.Dialer
	interpOpts []interpreter.Option

	engine    *engine.Engine
	threadMgr ThreadManager
	threadID  uint32
}

// New constructs a Service. The engine pipeline is built lazily at
// [Service.Activate] so that each activation starts from an empty
// composition record.
func New(host hostapi.Host, state *interpreter.IMEState, dial interpreter.Dialer, opts ...Option) *Service {
	s := &Service{host: host, state: state, dial: dial}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Engine returns the engine built by the current activation, or nil when
// the service is not activated.
func (s *Service) Engine() *engine.Engine {
	return s.engine
}

// Activate subscribes all sinks, installs the language-bar item, and
// attempts the one-shot IPC bootstrap. IPC failure is logged and
// non-fatal: the interpreter reconnects lazily once the cooldown elapses.
// Sink subscription failure unwinds whatever was already subscribed and
// fails the activation.
func (s *Service) Activate(ctx context.Context, tm ThreadManager, threadID uint32) error {
	if s.threadMgr != nil {
		return ErrAlreadyActivated
	}

	s.bootstrapIPC(ctx)

	if err := tm.AdviseKeyEventSink(threadID); err != nil {
		return fmt.Errorf("textservice: advise key event sink: %w", err)
	}

	var cookies hostapi.Cookies
	unwind := func() {
		_ = cookies.RevokeAll(tm.UnadviseSink)
		_ = tm.UnadviseKeyEventSink(threadID)
	}

	cookie, err := tm.AdviseThreadMgrEventSink()
	if err != nil {
		unwind()
		return fmt.Errorf("textservice: advise thread manager event sink: %w", err)
	}
	cookies = append(cookies, cookie)

	// Japanese input must work immediately after switching to this IME.
	s.state.SetInputMode(azktypes.ModeKana)

	cookie, err = tm.AdviseTextLayoutSink()
	if err != nil {
		unwind()
		return fmt.Errorf("textservice: advise text layout sink: %w", err)
	}
	cookies = append(cookies, cookie)

	if err := tm.AddLanguageBarItem(s.state.InputMode().String()); err != nil {
		unwind()
		return fmt.Errorf("textservice: add language bar item: %w", err)
	}

	s.state.SetCookies(cookies)
	s.engine = engine.New(s.state, interpreter.New(s.host, s.state, s.dial, s.interpOpts...))
	s.threadMgr = tm
	s.threadID = threadID
	return nil
}

// bootstrapIPC dials the backend once and probes it with an empty
// append_text before installing it, so a half-dead backend (pipe accepts
// but conversion hangs) is treated the same as an unreachable one.
func (s *Service) bootstrapIPC(ctx context.Context) {
	client, err := s.dial(ctx)
	if err != nil {
		slog.Warn("textservice: ipc bootstrap failed, continuing offline", "error", err)
		s.state.MarkReconnectFailure(time.Now())
		return
	}
	if _, err := client.AppendText(ctx, ""); err != nil {
		slog.Warn("textservice: ipc probe failed, continuing offline", "error", err)
		client.Close()
		s.state.MarkReconnectFailure(time.Now())
		return
	}
	s.state.InstallClient(client)
}

// Deactivate ends any active composition, revokes every subscription in
// reverse order, removes the language-bar item, and drops the IPC client.
// If Activate never completed, Deactivate is a no-op. Individual teardown
// failures do not stop the rest of the teardown; they are joined into the
// returned error.
func (s *Service) Deactivate(ctx context.Context) error {
	tm := s.threadMgr
	if tm == nil {
		return nil
	}

	var errs []error
	if err := s.engine.HandleHostTerminated(ctx); err != nil {
		errs = append(errs, fmt.Errorf("end composition: %w", err))
	}

	if err := tm.UnadviseKeyEventSink(s.threadID); err != nil {
		errs = append(errs, fmt.Errorf("unadvise key event sink: %w", err))
	}
	if err := tm.RemoveLanguageBarItem(); err != nil {
		errs = append(errs, fmt.Errorf("remove language bar item: %w", err))
	}
	if err := s.state.Cookies().RevokeAll(tm.UnadviseSink); err != nil {
		errs = append(errs, fmt.Errorf("revoke sink cookies: %w", err))
	}
	s.state.SetCookies(nil)

	// Subscriptions are gone; only now is it safe to abandon the transport.
	if client := s.state.Client(); client != nil {
		if err := client.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close ipc client: %w", err))
		}
		s.state.InstallClient(nil)
	}

	s.engine = nil
	s.threadMgr = nil
	s.threadID = 0
	return errors.Join(errs...)
}

// ProcessKey forwards one key event from the host's key-event sink into
// the engine. It reports consumed=false when no activation is in effect so
// the key always reaches the application.
func (s *Service) ProcessKey(ctx context.Context, vkCode uint32, controlHeld bool) (consumed bool, err error) {
	if s.engine == nil {
		return false, nil
	}
	return s.engine.HandleKey(ctx, vkCode, controlHeld)
}

// OnCompositionTerminated is the composition sink's callback: the host
// ended the composition (the user clicked elsewhere), so the engine runs
// its termination hook.
func (s *Service) OnCompositionTerminated(ctx context.Context) error {
	if s.engine == nil {
		return nil
	}
	return s.engine.HandleHostTerminated(ctx)
}

// OnLayoutChange is the text-layout sink's callback: the composition
// region moved, so the candidate window follows it. Purely best-effort —
// a missing or unresponsive UI process never disturbs composition.
func (s *Service) OnLayoutChange(ctx context.Context, top, left, bottom, right int) {
	client := s.state.Client()
	if client == nil {
		return
	}
	if err := client.SetWindowPosition(ctx, top, left, bottom, right); err != nil {
		slog.Warn("textservice: set window position failed, ignoring", "error", err)
	}
}
