// Package interpreter implements the Action Interpreter (C6): it executes
// an ordered client-action list against shadow-copied composition fields,
// invoking the IPC client (C2) and the host framework as each action
// requires, then performs a single atomic write-back only once the whole
// list has succeeded.
package interpreter

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sevenc-nanashi/azookey-go/internal/azktypes"
	"github.com/sevenc-nanashi/azookey-go/internal/clientaction"
	"github.com/sevenc-nanashi/azookey-go/internal/hostapi"
	"github.com/sevenc-nanashi/azookey-go/internal/ipc"
	"github.com/sevenc-nanashi/azookey-go/internal/ipcerr"
	"github.com/sevenc-nanashi/azookey-go/internal/observe"
	"github.com/sevenc-nanashi/azookey-go/internal/texttransform"
	"github.com/sevenc-nanashi/azookey-go/internal/useraction"
)

// Dialer attempts to construct a fresh IPC client. It is called at most
// once per key event, gated by [IMEState.ShouldAttemptReconnect].
type Dialer func(ctx context.Context) (ipc.Backend, error)

// Option configures an [Interpreter].
type Option func(*Interpreter)

// WithMetrics attaches an observability sink; when omitted, metrics calls
// are no-ops.
func WithMetrics(m *observe.Metrics) Option {
	return func(i *Interpreter) { i.metrics = m }
}

// Interpreter executes client-action lists against one [azktypes.Composition]
// instance, a shared [IMEState], and the host framework.
type Interpreter struct {
	host    hostapi.Host
	state   *IMEState
	dial    Dialer
	metrics *observe.Metrics

	// offline mirrors the engine's current belief about backend
	// reachability so the gauge is only moved on an actual transition.
	// Touched only from the single interpreter goroutine.
	offline bool
}

// New constructs an Interpreter. dial is used whenever the IPC client is
// absent and the reconnect cooldown has elapsed.
func New(host hostapi.Host, state *IMEState, dial Dialer, opts ...Option) *Interpreter {
	i := &Interpreter{host: host, state: state, dial: dial}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Execute runs actions in order against comp, mutating comp only if every
// action succeeds. On failure, comp is left exactly as it was before the
// call (spec.md §4.6, §8 invariant 1) and the error is returned. nextState
// is the state the state machine computed for this transition; it is
// written back together with the other fields on success.
func (ip *Interpreter) Execute(ctx context.Context, comp *azktypes.Composition, actions []clientaction.Action, nextState azktypes.CompositionState) error {
	shadow := comp.Snapshot()

	for _, a := range actions {
		if err := ip.execOne(ctx, &shadow, a); err != nil {
			ip.recordAbort()
			return err
		}
	}

	shadow.State = nextState
	*comp = shadow
	return nil
}

func (ip *Interpreter) recordAbort() {
	if ip.metrics == nil {
		return
	}
	ip.metrics.RecordActionListAbort(context.Background())
}

func (ip *Interpreter) execOne(ctx context.Context, s *azktypes.Composition, a clientaction.Action) error {
	switch a.Kind {
	case clientaction.KindStartComposition:
		return ip.startComposition(ctx, s)
	case clientaction.KindEndComposition:
		return ip.endComposition(ctx, s)
	case clientaction.KindAppendText:
		return ip.appendText(ctx, s, a.Text)
	case clientaction.KindRemoveText:
		return ip.removeText(ctx, s)
	case clientaction.KindMoveCursor:
		return nil // reserved; no host mutation in this release (spec.md §9)
	case clientaction.KindSetIMEMode:
		return ip.setIMEMode(s, a.Mode)
	case clientaction.KindSetSelection:
		return ip.setSelection(ctx, s, a.Selection)
	case clientaction.KindShrinkText:
		return ip.shrinkText(ctx, s, a.Text)
	case clientaction.KindSetTextWithType:
		return ip.setTextWithType(ctx, s, a.TextKind)
	default:
		return fmt.Errorf("interpreter: unknown action kind %d", a.Kind)
	}
}

// ensureClient returns the installed IPC client, attempting a cooldown-gated
// lazy reconnect if none is installed (spec.md §4.2).
func (ip *Interpreter) ensureClient(ctx context.Context) ipc.Backend {
	if c := ip.state.Client(); c != nil {
		return c
	}
	now := time.Now()
	if !ip.state.ShouldAttemptReconnect(now) {
		return nil
	}
	client, err := ip.dial(ctx)
	if err != nil {
		ip.state.MarkReconnectFailure(now)
		ip.recordReconnect(ctx, false)
		slog.Warn("ipc: reconnect attempt failed", "error", err)
		return nil
	}
	ip.state.InstallClient(client)
	ip.recordReconnect(ctx, true)
	return client
}

func (ip *Interpreter) recordReconnect(ctx context.Context, success bool) {
	if ip.metrics == nil {
		ip.offline = !success
		return
	}
	ip.metrics.RecordReconnectAttempt(ctx, success)
	switch {
	case success && ip.offline:
		ip.metrics.SetOffline(ctx, -1)
	case !success && !ip.offline:
		ip.metrics.SetOffline(ctx, 1)
	}
	ip.offline = !success
}

func optional(err error, label string) error {
	if err != nil {
		slog.Warn("ipc: optional call failed, ignoring", "call", label, "error", err)
	}
	return nil
}

func shapeForMode(mode azktypes.InputMode, t string) string {
	if mode == azktypes.ModeKana {
		return texttransform.ToFullwidth(t, false)
	}
	return t
}

func (ip *Interpreter) startComposition(ctx context.Context, s *azktypes.Composition) error {
	handle, err := ip.host.StartComposition(ctx)
	if err != nil {
		return fmt.Errorf("%w: start composition: %v", ipcerr.ErrHostCallFailed, err)
	}
	s.HostHandle = azktypes.HostHandle(handle)

	if c := ip.ensureClient(ctx); c != nil {
		_ = optional(c.SetContext(ctx, ip.host.SurroundingText(ctx)), "set_context")
		_ = optional(c.ShowWindow(ctx), "show_window")
	}
	return nil
}

func (ip *Interpreter) endComposition(ctx context.Context, s *azktypes.Composition) error {
	if err := ip.host.EndComposition(ctx, string(s.HostHandle)); err != nil {
		return fmt.Errorf("%w: end composition: %v", ipcerr.ErrHostCallFailed, err)
	}

	if c := ip.state.Client(); c != nil {
		if len(s.Candidates) > 0 {
			_ = optional(c.LearnCandidate(ctx, s.SelectionIndex), "learn_candidate")
		}
		_ = optional(c.HideWindow(ctx), "hide_window")
		_ = optional(c.SetCandidates(ctx, nil), "set_candidates")
		_ = optional(c.ClearText(ctx), "clear_text")
	}

	s.Preview, s.Suffix, s.RawInput, s.RawHiragana = "", "", "", ""
	s.CorrespondingCount = 0
	s.Candidates = nil
	s.SelectionIndex = 0
	s.HostHandle = ""
	return nil
}

func (ip *Interpreter) appendText(ctx context.Context, s *azktypes.Composition, t string) error {
	mode := ip.state.InputMode()
	shaped := shapeForMode(mode, t)
	s.RawInput += shaped

	c := ip.ensureClient(ctx)
	if c == nil {
		s.RawHiragana += shaped
		s.Preview = s.RawHiragana
		s.Suffix = ""
		s.Candidates = nil
		s.SelectionIndex = 0
		s.CorrespondingCount = azktypes.CharCount(s.RawHiragana)
		return ip.pushHostText(ctx, s)
	}

	cands, err := c.AppendText(ctx, shaped)
	if err != nil {
		return fmt.Errorf("append_text: %w", err)
	}
	return ip.applyCandidates(ctx, s, c, cands, s.SelectionIndex)
}

func (ip *Interpreter) removeText(ctx context.Context, s *azktypes.Composition) error {
	c := ip.ensureClient(ctx)
	if c == nil {
		s.RawHiragana = dropLastRune(s.RawHiragana)
		s.RawInput = dropLastRune(s.RawInput)
		s.Preview = s.RawHiragana
		s.Suffix = ""
		s.CorrespondingCount = azktypes.CharCount(s.RawHiragana)
		return ip.pushHostText(ctx, s)
	}

	cands, err := c.RemoveText(ctx)
	if err != nil {
		return fmt.Errorf("remove_text: %w", err)
	}
	if err := ip.applyCandidates(ctx, s, c, cands, s.SelectionIndex); err != nil {
		return err
	}
	s.RawInput = truncateRunes(s.RawInput, s.CorrespondingCount)
	return nil
}

// applyCandidates reprojects preview/suffix/corresponding_count from the
// candidate at index (clamped into range), pushes the UI candidate list and
// selection (selection is a required call, per spec.md §4.2), and updates
// the host-visible text.
func (ip *Interpreter) applyCandidates(ctx context.Context, s *azktypes.Composition, c ipc.Backend, cands azktypes.Candidates, index int) error {
	s.Candidates = cands.Items
	s.RawHiragana = cands.Hiragana

	if index >= len(cands.Items) {
		index = 0
	}
	if index < 0 {
		index = 0
	}
	s.SelectionIndex = index

	if len(cands.Items) > 0 {
		cand := cands.Items[index]
		s.Preview = cand.Text
		s.Suffix = cand.SubText
		s.CorrespondingCount = cand.CorrespondingCount
	} else {
		s.Preview = ""
		s.Suffix = ""
		s.CorrespondingCount = 0
	}

	texts := make([]string, len(cands.Items))
	for i, cand := range cands.Items {
		texts[i] = cand.Text
	}
	_ = optional(c.SetCandidates(ctx, texts), "set_candidates")
	if err := c.SetSelection(ctx, s.SelectionIndex); err != nil {
		return fmt.Errorf("set_selection: %w", err)
	}

	return ip.pushHostText(ctx, s)
}

func (ip *Interpreter) pushHostText(ctx context.Context, s *azktypes.Composition) error {
	if err := ip.host.SetText(ctx, string(s.HostHandle), s.Preview, s.Suffix); err != nil {
		return fmt.Errorf("%w: set text: %v", ipcerr.ErrHostCallFailed, err)
	}
	return nil
}

func (ip *Interpreter) setIMEMode(s *azktypes.Composition, mode azktypes.InputMode) error {
	// Deliberately issues no IPC call of any kind, required or optional —
	// this omission is required for stability against an unresponsive
	// backend (spec.md §4.6, §9).
	ip.state.SetInputMode(mode)
	ip.host.RefreshLanguageBarIcon(mode.String())
	s.Preview, s.Suffix, s.RawInput, s.RawHiragana = "", "", "", ""
	s.CorrespondingCount = 0
	s.Candidates = nil
	s.SelectionIndex = 0
	s.HostHandle = ""
	return nil
}

func (ip *Interpreter) setSelection(ctx context.Context, s *azktypes.Composition, target clientaction.SelectionTarget) error {
	c := ip.ensureClient(ctx)
	if c == nil {
		return fmt.Errorf("set_selection: %w", ipcerr.ErrEndpointUnavailable)
	}

	var index int
	switch {
	case target.IsAbsolute:
		index = target.Absolute
	case target.Direction == useraction.NavUp:
		index = max(0, s.SelectionIndex-1)
	case target.Direction == useraction.NavDown:
		index = min(len(s.Candidates)-1, s.SelectionIndex+1)
	default:
		index = s.SelectionIndex
	}
	if index < 0 {
		index = 0
	}

	if err := c.SetSelection(ctx, index); err != nil {
		return fmt.Errorf("set_selection: %w", err)
	}
	s.SelectionIndex = index

	if index >= 0 && index < len(s.Candidates) {
		cand := s.Candidates[index]
		s.Preview = cand.Text
		s.Suffix = cand.SubText
		s.CorrespondingCount = cand.CorrespondingCount
	}
	return ip.pushHostText(ctx, s)
}

// shrinkText implements the ShrinkText client action. Call order is fixed:
// shrink_text, then append_text, never reordered (spec.md §9).
func (ip *Interpreter) shrinkText(ctx context.Context, s *azktypes.Composition, t string) error {
	mode := ip.state.InputMode()
	shaped := shapeForMode(mode, t)

	// The committed prefix leaves raw_input; only the uncommitted tail
	// (plus the new keystroke, unshaped) stays behind.
	s.RawInput = dropLeadingRunes(s.RawInput+t, s.CorrespondingCount)

	c := ip.ensureClient(ctx)
	if c == nil {
		return fmt.Errorf("shrink_text: %w", ipcerr.ErrEndpointUnavailable)
	}

	if _, err := c.ShrinkText(ctx, s.CorrespondingCount); err != nil {
		return fmt.Errorf("shrink_text: %w", err)
	}
	cands, err := c.AppendText(ctx, shaped)
	if err != nil {
		return fmt.Errorf("append_text: %w", err)
	}

	committed := s.CorrespondingCount
	if err := ip.applyCandidates(ctx, s, c, cands, 0); err != nil {
		return err
	}
	if err := ip.host.ShiftStart(ctx, string(s.HostHandle), committed); err != nil {
		return fmt.Errorf("%w: shift start: %v", ipcerr.ErrHostCallFailed, err)
	}
	return ip.host.SetCaret(ctx, string(s.HostHandle), 0)
}

func (ip *Interpreter) setTextWithType(ctx context.Context, s *azktypes.Composition, kind clientaction.TextKind) error {
	var replacement string
	switch kind {
	case clientaction.TextHiragana:
		replacement = s.RawHiragana
	case clientaction.TextKatakana:
		replacement = texttransform.ToKatakana(s.RawHiragana)
	case clientaction.TextHalfKatakana:
		replacement = texttransform.ToHalfKatakana(s.RawHiragana)
	case clientaction.TextFullLatin:
		replacement = texttransform.ToFullwidth(s.RawInput, true)
	case clientaction.TextHalfLatin:
		replacement = texttransform.ToHalfwidth(s.RawInput)
	default:
		return fmt.Errorf("interpreter: unknown text kind %d", kind)
	}

	if err := ip.host.SetText(ctx, string(s.HostHandle), replacement, ""); err != nil {
		return fmt.Errorf("%w: set text: %v", ipcerr.ErrHostCallFailed, err)
	}
	s.Preview = replacement
	s.Suffix = ""
	return nil
}

func dropLastRune(s string) string {
	runes := []rune(s)
	if len(runes) == 0 {
		return s
	}
	return string(runes[:len(runes)-1])
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if n < 0 {
		n = 0
	}
	if n > len(runes) {
		n = len(runes)
	}
	return string(runes[:n])
}

func dropLeadingRunes(s string, n int) string {
	runes := []rune(s)
	if n < 0 {
		n = 0
	}
	if n > len(runes) {
		n = len(runes)
	}
	return string(runes[n:])
}
