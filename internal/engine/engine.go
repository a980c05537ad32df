// Package engine wires the decoder (C4), the state machine (C5), and the
// action interpreter (C6) into the single per-activation pipeline the host
// framework's key-event sink drives: decode the key, run it through the
// transition table (except the 0x97/0x98 short-circuit, which bypasses the
// table entirely), execute the resulting action list, and report whether
// the key was consumed. This is the same "decide, then run an ordered list
// of steps against mutable state" shape internal/engine/cascade/cascade.go
// uses in the teacher repo, generalized from a prompt-building pipeline to
// a keystroke pipeline.
package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/sevenc-nanashi/azookey-go/internal/azktypes"
	"github.com/sevenc-nanashi/azookey-go/internal/clientaction"
	"github.com/sevenc-nanashi/azookey-go/internal/interpreter"
	"github.com/sevenc-nanashi/azookey-go/internal/ipcerr"
	"github.com/sevenc-nanashi/azookey-go/internal/statemachine"
	"github.com/sevenc-nanashi/azookey-go/internal/useraction"
)

// Engine owns one activation's composition record and drives it through
// the decode -> transition -> execute pipeline. It is not safe for
// concurrent use; the host framework calls it only from its own UI thread
// and never overlaps one key event's handling with the next (spec.md §5).
type Engine struct {
	Comp   *azktypes.Composition
	State  *interpreter.IMEState
	Interp *interpreter.Interpreter

	// busy guards against the host re-entering key handling from one of
	// its own callbacks while an action list is still executing. Not a
	// mutex: the host is single-threaded, reentrancy is the only hazard.
	busy bool
}

// New constructs an Engine over a fresh, empty composition record.
func New(state *interpreter.IMEState, interp *interpreter.Interpreter) *Engine {
	return &Engine{
		Comp:   &azktypes.Composition{},
		State:  state,
		Interp: interp,
	}
}

// HandleKey decodes vkCode and runs it through the engine. consumed
// reports whether the host should swallow the key (true) or let it reach
// the underlying application (false, spec.md §8 invariant: "not consumed"
// must always be reported back to the host). err is non-nil when the host
// re-enters key handling (ipcerr.ErrStateUnavailable, nothing is run) or
// when the action list aborted partway; in the latter case the composition
// record is left exactly as it was before the call, and a host call failure
// (ipcerr.ErrHostCallFailed) is reported as not consumed.
func (e *Engine) HandleKey(ctx context.Context, vkCode uint32, controlHeld bool) (consumed bool, err error) {
	if e.busy {
		return false, fmt.Errorf("engine: reentrant key event: %w", ipcerr.ErrStateUnavailable)
	}
	e.busy = true
	defer func() { e.busy = false }()

	action := useraction.Decode(vkCode, controlHeld)

	if action.Kind == useraction.KindForceIMEMode {
		return true, e.forceIMEMode(ctx, action.ForcedMode)
	}

	result := statemachine.Transition(e.Comp.State, e.State.InputMode(), action, e.Comp.Snapshot())
	if !result.Consumed {
		return false, nil
	}

	if err := e.Interp.Execute(ctx, e.Comp, result.Actions, result.NextState); err != nil {
		if errors.Is(err, ipcerr.ErrHostCallFailed) {
			return false, err
		}
		return true, err
	}
	return true, nil
}

// forceIMEMode implements the 0x97/0x98 short-circuit (spec.md §4.4):
// these codes never enter the state machine proper. If a composition is
// active it is ended first (mirroring the ToggleInputMode entry of the
// Composing/Previewing table), then the mode is forced to the explicit
// target carried by the decoded action — never toggled, since the helper
// that emits these codes has no way to know which mode is already active.
func (e *Engine) forceIMEMode(ctx context.Context, mode azktypes.InputMode) error {
	var actions []clientaction.Action
	if e.Comp.State != azktypes.StateNone {
		actions = append(actions, clientaction.EndComposition())
	}
	actions = append(actions, clientaction.SetIMEMode(mode))
	return e.Interp.Execute(ctx, e.Comp, actions, azktypes.StateNone)
}

// HandleHostTerminated implements the host-termination hook (spec.md
// §4.6): the host signaled "composition terminated" (e.g. the user clicked
// elsewhere), so the engine runs the single EndComposition action and
// forces the transition to None regardless of the prior state.
func (e *Engine) HandleHostTerminated(ctx context.Context) error {
	if e.busy {
		return fmt.Errorf("engine: reentrant termination callback: %w", ipcerr.ErrStateUnavailable)
	}
	e.busy = true
	defer func() { e.busy = false }()

	if e.Comp.State == azktypes.StateNone {
		return nil
	}
	return e.Interp.Execute(ctx, e.Comp, []clientaction.Action{clientaction.EndComposition()}, azktypes.StateNone)
}
