package statemachine_test

import (
	"testing"

	"github.com/sevenc-nanashi/azookey-go/internal/azktypes"
	"github.com/sevenc-nanashi/azookey-go/internal/clientaction"
	"github.com/sevenc-nanashi/azookey-go/internal/statemachine"
	"github.com/sevenc-nanashi/azookey-go/internal/useraction"
)

func TestTransition_NoneInputStartsComposing(t *testing.T) {
	action := useraction.UserAction{Kind: useraction.KindInput, Char: 'k'}
	result := statemachine.Transition(azktypes.StateNone, azktypes.ModeKana, action, azktypes.Composition{})

	if !result.Consumed {
		t.Fatal("expected consumed")
	}
	if result.NextState != azktypes.StateComposing {
		t.Errorf("next state = %v, want Composing", result.NextState)
	}
	if len(result.Actions) != 2 ||
		result.Actions[0].Kind != clientaction.KindStartComposition ||
		result.Actions[1].Kind != clientaction.KindAppendText {
		t.Errorf("actions = %+v, want [StartComposition, AppendText]", result.Actions)
	}
}

func TestTransition_NoneInputLatinModeNotConsumed(t *testing.T) {
	action := useraction.UserAction{Kind: useraction.KindInput, Char: 'k'}
	result := statemachine.Transition(azktypes.StateNone, azktypes.ModeLatin, action, azktypes.Composition{})
	if result.Consumed {
		t.Error("Latin-mode Input in None should not be consumed")
	}
}

func TestTransition_NoneToggleInputMode(t *testing.T) {
	action := useraction.ToggleInputMode
	result := statemachine.Transition(azktypes.StateNone, azktypes.ModeKana, action, azktypes.Composition{})
	if !result.Consumed || result.NextState != azktypes.StateNone {
		t.Fatalf("result = %+v", result)
	}
	if len(result.Actions) != 1 || result.Actions[0].Kind != clientaction.KindSetIMEMode || result.Actions[0].Mode != azktypes.ModeLatin {
		t.Errorf("actions = %+v, want SetIMEMode(Latin)", result.Actions)
	}
}

func TestTransition_UnmappedPairNotConsumed(t *testing.T) {
	action := useraction.UserAction{Kind: useraction.KindBackspace}
	result := statemachine.Transition(azktypes.StateNone, azktypes.ModeKana, action, azktypes.Composition{})
	if result.Consumed {
		t.Error("Backspace in None has no listed transition")
	}
}

func TestTransition_ComposingInputAppends(t *testing.T) {
	action := useraction.UserAction{Kind: useraction.KindInput, Char: 'a'}
	result := statemachine.Transition(azktypes.StateComposing, azktypes.ModeKana, action, azktypes.Composition{Preview: "あ"})
	if !result.Consumed || result.NextState != azktypes.StateComposing {
		t.Fatalf("result = %+v", result)
	}
	if result.Actions[0].Kind != clientaction.KindAppendText {
		t.Errorf("action = %+v, want AppendText", result.Actions[0])
	}
}

func TestTransition_PreviewingInputShrinks(t *testing.T) {
	action := useraction.UserAction{Kind: useraction.KindInput, Char: 'a'}
	result := statemachine.Transition(azktypes.StatePreviewing, azktypes.ModeKana, action, azktypes.Composition{Preview: "あ"})
	if !result.Consumed || result.NextState != azktypes.StateComposing {
		t.Fatalf("result = %+v", result)
	}
	if result.Actions[0].Kind != clientaction.KindShrinkText {
		t.Errorf("action = %+v, want ShrinkText", result.Actions[0])
	}
}

func TestTransition_BackspaceSingleCharEndsComposition(t *testing.T) {
	action := useraction.UserAction{Kind: useraction.KindBackspace}
	comp := azktypes.Composition{Preview: "あ"}
	result := statemachine.Transition(azktypes.StateComposing, azktypes.ModeKana, action, comp)
	if result.NextState != azktypes.StateNone {
		t.Errorf("next state = %v, want None", result.NextState)
	}
	if len(result.Actions) != 2 ||
		result.Actions[0].Kind != clientaction.KindRemoveText ||
		result.Actions[1].Kind != clientaction.KindEndComposition {
		t.Errorf("actions = %+v, want [RemoveText, EndComposition]", result.Actions)
	}
}

func TestTransition_BackspaceMultiCharStaysComposing(t *testing.T) {
	action := useraction.UserAction{Kind: useraction.KindBackspace}
	comp := azktypes.Composition{Preview: "あい"}
	result := statemachine.Transition(azktypes.StateComposing, azktypes.ModeKana, action, comp)
	if result.NextState != azktypes.StateComposing {
		t.Errorf("next state = %v, want Composing", result.NextState)
	}
	if len(result.Actions) != 1 || result.Actions[0].Kind != clientaction.KindRemoveText {
		t.Errorf("actions = %+v, want [RemoveText]", result.Actions)
	}
}

func TestTransition_EnterEmptySuffixEndsComposition(t *testing.T) {
	action := useraction.UserAction{Kind: useraction.KindEnter}
	comp := azktypes.Composition{Suffix: ""}
	result := statemachine.Transition(azktypes.StatePreviewing, azktypes.ModeKana, action, comp)
	if result.NextState != azktypes.StateNone {
		t.Errorf("next state = %v, want None", result.NextState)
	}
	if len(result.Actions) != 1 || result.Actions[0].Kind != clientaction.KindEndComposition {
		t.Errorf("actions = %+v, want [EndComposition] only, no ShrinkText", result.Actions)
	}
}

func TestTransition_EnterNonEmptySuffixShrinks(t *testing.T) {
	action := useraction.UserAction{Kind: useraction.KindEnter}
	comp := azktypes.Composition{Suffix: "い"}
	result := statemachine.Transition(azktypes.StatePreviewing, azktypes.ModeKana, action, comp)
	if result.NextState != azktypes.StateComposing {
		t.Errorf("next state = %v, want Composing", result.NextState)
	}
	if len(result.Actions) != 1 || result.Actions[0].Kind != clientaction.KindShrinkText {
		t.Errorf("actions = %+v, want [ShrinkText]", result.Actions)
	}
}

func TestTransition_EscapeAbandonsComposition(t *testing.T) {
	action := useraction.UserAction{Kind: useraction.KindEscape}
	result := statemachine.Transition(azktypes.StateComposing, azktypes.ModeKana, action, azktypes.Composition{Preview: "あ"})
	if result.NextState != azktypes.StateNone {
		t.Errorf("next state = %v, want None", result.NextState)
	}
	if len(result.Actions) != 2 ||
		result.Actions[0].Kind != clientaction.KindRemoveText ||
		result.Actions[1].Kind != clientaction.KindEndComposition {
		t.Errorf("actions = %+v, want [RemoveText, EndComposition]", result.Actions)
	}
}

func TestTransition_NavigationUpDownSetsSelection(t *testing.T) {
	up := statemachine.Transition(azktypes.StateComposing, azktypes.ModeKana,
		useraction.UserAction{Kind: useraction.KindNavigation, Direction: useraction.NavUp}, azktypes.Composition{})
	if up.NextState != azktypes.StatePreviewing || up.Actions[0].Kind != clientaction.KindSetSelection {
		t.Errorf("Up result = %+v", up)
	}
	down := statemachine.Transition(azktypes.StateComposing, azktypes.ModeKana,
		useraction.UserAction{Kind: useraction.KindNavigation, Direction: useraction.NavDown}, azktypes.Composition{})
	if down.NextState != azktypes.StatePreviewing || down.Actions[0].Kind != clientaction.KindSetSelection {
		t.Errorf("Down result = %+v", down)
	}
}

func TestTransition_NavigationLeftRightMovesCursor(t *testing.T) {
	right := statemachine.Transition(azktypes.StateComposing, azktypes.ModeKana,
		useraction.UserAction{Kind: useraction.KindNavigation, Direction: useraction.NavRight}, azktypes.Composition{})
	if right.NextState != azktypes.StateComposing || right.Actions[0].Kind != clientaction.KindMoveCursor || right.Actions[0].Delta != 1 {
		t.Errorf("Right result = %+v", right)
	}
	left := statemachine.Transition(azktypes.StateComposing, azktypes.ModeKana,
		useraction.UserAction{Kind: useraction.KindNavigation, Direction: useraction.NavLeft}, azktypes.Composition{})
	if left.NextState != azktypes.StateComposing || left.Actions[0].Kind != clientaction.KindMoveCursor || left.Actions[0].Delta != -1 {
		t.Errorf("Left result = %+v", left)
	}
}

func TestTransition_ActiveToggleInputModeEndsAndForcesLatin(t *testing.T) {
	result := statemachine.Transition(azktypes.StateComposing, azktypes.ModeKana, useraction.ToggleInputMode, azktypes.Composition{Preview: "あ"})
	if result.NextState != azktypes.StateNone {
		t.Errorf("next state = %v, want None", result.NextState)
	}
	if len(result.Actions) != 2 ||
		result.Actions[0].Kind != clientaction.KindEndComposition ||
		result.Actions[1].Kind != clientaction.KindSetIMEMode || result.Actions[1].Mode != azktypes.ModeLatin {
		t.Errorf("actions = %+v, want [EndComposition, SetIMEMode(Latin)]", result.Actions)
	}
}

func TestTransition_SpaceAndTabAdvanceSelection(t *testing.T) {
	for _, kind := range []useraction.Kind{useraction.KindSpace, useraction.KindTab} {
		result := statemachine.Transition(azktypes.StateComposing, azktypes.ModeKana, useraction.UserAction{Kind: kind}, azktypes.Composition{})
		if result.NextState != azktypes.StatePreviewing || result.Actions[0].Kind != clientaction.KindSetSelection {
			t.Errorf("kind=%v result = %+v", kind, result)
		}
	}
}

func TestTransition_FunctionKeysSetTextWithType(t *testing.T) {
	cases := map[useraction.FunctionKey]clientaction.TextKind{
		useraction.FunctionSix:   clientaction.TextHiragana,
		useraction.FunctionSeven: clientaction.TextKatakana,
		useraction.FunctionEight: clientaction.TextHalfKatakana,
		useraction.FunctionNine:  clientaction.TextFullLatin,
		useraction.FunctionTen:   clientaction.TextHalfLatin,
	}
	for fn, want := range cases {
		result := statemachine.Transition(azktypes.StateComposing, azktypes.ModeKana,
			useraction.UserAction{Kind: useraction.KindFunction, Function: fn}, azktypes.Composition{})
		if result.NextState != azktypes.StatePreviewing {
			t.Errorf("fn=%v next state = %v, want Previewing", fn, result.NextState)
		}
		if len(result.Actions) != 1 || result.Actions[0].Kind != clientaction.KindSetTextWithType || result.Actions[0].TextKind != want {
			t.Errorf("fn=%v actions = %+v, want SetTextWithType(%v)", fn, result.Actions, want)
		}
	}
}

func TestTransition_ComposingAndPreviewingShareTableExceptInputNumber(t *testing.T) {
	// Every action besides Input/Number must produce an identical result
	// regardless of whether the current state is Composing or Previewing.
	comp := azktypes.Composition{Preview: "あい", Suffix: "い"}
	actions := []useraction.UserAction{
		{Kind: useraction.KindBackspace},
		{Kind: useraction.KindEscape},
		{Kind: useraction.KindNavigation, Direction: useraction.NavRight},
		{Kind: useraction.KindSpace},
		{Kind: useraction.KindFunction, Function: useraction.FunctionSix},
	}
	for _, a := range actions {
		rc := statemachine.Transition(azktypes.StateComposing, azktypes.ModeKana, a, comp)
		rp := statemachine.Transition(azktypes.StatePreviewing, azktypes.ModeKana, a, comp)
		if rc.NextState != rp.NextState || len(rc.Actions) != len(rp.Actions) {
			t.Errorf("action=%+v diverges between Composing/Previewing: %+v vs %+v", a, rc, rp)
			continue
		}
		for i := range rc.Actions {
			if rc.Actions[i].Kind != rp.Actions[i].Kind {
				t.Errorf("action=%+v step %d kind diverges: %v vs %v", a, i, rc.Actions[i].Kind, rp.Actions[i].Kind)
			}
		}
	}
}

func TestTransition_UnknownStateNotConsumed(t *testing.T) {
	result := statemachine.Transition(azktypes.StateSelecting, azktypes.ModeKana, useraction.UserAction{Kind: useraction.KindInput, Char: 'a'}, azktypes.Composition{})
	if result.Consumed {
		t.Error("StateSelecting is reserved and unreachable; expected not consumed")
	}
}
