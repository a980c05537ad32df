// Package statemachine implements the pure composition state machine: a
// deterministic function from (state, input mode, user action, composition
// snapshot) to (next state, ordered client-action sequence). It never
// suspends and never mutates the composition it is given.
package statemachine

import (
	"github.com/sevenc-nanashi/azookey-go/internal/azktypes"
	"github.com/sevenc-nanashi/azookey-go/internal/clientaction"
	"github.com/sevenc-nanashi/azookey-go/internal/useraction"
)

// Result is the outcome of a single [Transition] call.
type Result struct {
	// Consumed is false when the (state, action) pair has no listed
	// transition; the caller must report the key as not consumed so it
	// reaches the host application, and NextState/Actions are meaningless.
	Consumed  bool
	NextState azktypes.CompositionState
	Actions   []clientaction.Action
}

func notConsumed() Result { return Result{Consumed: false} }

func consumed(next azktypes.CompositionState, actions ...clientaction.Action) Result {
	return Result{Consumed: true, NextState: next, Actions: actions}
}

// Transition computes the next state and client-action sequence for a
// single user action. comp is a read-only snapshot; Transition never
// mutates it. Any (state, action) pair not covered below returns
// Result{Consumed: false}, unchanged state.
func Transition(state azktypes.CompositionState, mode azktypes.InputMode, action useraction.UserAction, comp azktypes.Composition) Result {
	switch state {
	case azktypes.StateNone:
		return transitionNone(mode, action)
	case azktypes.StateComposing, azktypes.StatePreviewing:
		return transitionActive(state, action, comp)
	default:
		return notConsumed()
	}
}

func transitionNone(mode azktypes.InputMode, action useraction.UserAction) Result {
	switch action.Kind {
	case useraction.KindInput:
		if mode != azktypes.ModeKana {
			return notConsumed()
		}
		return consumed(azktypes.StateComposing,
			clientaction.StartComposition(),
			clientaction.AppendText(string(action.Char)),
		)
	case useraction.KindNumber:
		if mode != azktypes.ModeKana {
			return notConsumed()
		}
		return consumed(azktypes.StateComposing,
			clientaction.StartComposition(),
			clientaction.AppendText(digitString(action.Digit)),
		)
	case useraction.KindToggleInputMode:
		return consumed(azktypes.StateNone, clientaction.SetIMEMode(mode.Toggle()))
	default:
		return notConsumed()
	}
}

// transitionActive implements the single table shared by Composing and
// Previewing (the table duplication in the source is intentional — see
// DESIGN.md). Only Input/Number differ by current state.
func transitionActive(state azktypes.CompositionState, action useraction.UserAction, comp azktypes.Composition) Result {
	switch action.Kind {
	case useraction.KindInput:
		if state == azktypes.StatePreviewing {
			return consumed(azktypes.StateComposing, clientaction.ShrinkText(string(action.Char)))
		}
		return consumed(azktypes.StateComposing, clientaction.AppendText(string(action.Char)))

	case useraction.KindNumber:
		d := digitString(action.Digit)
		if state == azktypes.StatePreviewing {
			return consumed(azktypes.StateComposing, clientaction.ShrinkText(d))
		}
		return consumed(azktypes.StateComposing, clientaction.AppendText(d))

	case useraction.KindBackspace:
		if azktypes.CharCount(comp.Preview) == 1 {
			return consumed(azktypes.StateNone, clientaction.RemoveText(), clientaction.EndComposition())
		}
		return consumed(azktypes.StateComposing, clientaction.RemoveText())

	case useraction.KindEnter:
		if comp.Suffix == "" {
			return consumed(azktypes.StateNone, clientaction.EndComposition())
		}
		return consumed(azktypes.StateComposing, clientaction.ShrinkText(""))

	case useraction.KindEscape:
		return consumed(azktypes.StateNone, clientaction.RemoveText(), clientaction.EndComposition())

	case useraction.KindNavigation:
		switch action.Direction {
		case useraction.NavRight:
			return consumed(azktypes.StateComposing, clientaction.MoveCursor(1))
		case useraction.NavLeft:
			return consumed(azktypes.StateComposing, clientaction.MoveCursor(-1))
		case useraction.NavUp:
			return consumed(azktypes.StatePreviewing, clientaction.SetSelectionDir(useraction.NavUp))
		case useraction.NavDown:
			return consumed(azktypes.StatePreviewing, clientaction.SetSelectionDir(useraction.NavDown))
		default:
			return notConsumed()
		}

	case useraction.KindToggleInputMode:
		return consumed(azktypes.StateNone,
			clientaction.EndComposition(),
			clientaction.SetIMEMode(azktypes.ModeLatin),
		)

	case useraction.KindSpace, useraction.KindTab:
		return consumed(azktypes.StatePreviewing, clientaction.SetSelectionDir(useraction.NavDown))

	case useraction.KindFunction:
		switch action.Function {
		case useraction.FunctionSix:
			return consumed(azktypes.StatePreviewing, clientaction.SetTextWithType(clientaction.TextHiragana))
		case useraction.FunctionSeven:
			return consumed(azktypes.StatePreviewing, clientaction.SetTextWithType(clientaction.TextKatakana))
		case useraction.FunctionEight:
			return consumed(azktypes.StatePreviewing, clientaction.SetTextWithType(clientaction.TextHalfKatakana))
		case useraction.FunctionNine:
			return consumed(azktypes.StatePreviewing, clientaction.SetTextWithType(clientaction.TextFullLatin))
		case useraction.FunctionTen:
			return consumed(azktypes.StatePreviewing, clientaction.SetTextWithType(clientaction.TextHalfLatin))
		default:
			return notConsumed()
		}

	default:
		return notConsumed()
	}
}

func digitString(d int) string {
	return string(rune('0' + d))
}
