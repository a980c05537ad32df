// Package clientaction defines the ordered list of actions the state
// machine emits and the interpreter executes. It is the shared vocabulary
// between C5 (decides) and C6 (executes).
package clientaction

import (
	"github.com/sevenc-nanashi/azookey-go/internal/azktypes"
	"github.com/sevenc-nanashi/azookey-go/internal/useraction"
)

// Kind identifies which variant of [Action] is populated.
type Kind int

const (
	KindStartComposition Kind = iota
	KindEndComposition
	KindAppendText
	KindRemoveText
	KindMoveCursor
	KindSetIMEMode
	KindSetSelection
	KindShrinkText
	KindSetTextWithType
)

// TextKind selects the transform applied by SetTextWithType.
type TextKind int

const (
	TextHiragana TextKind = iota
	TextKatakana
	TextHalfKatakana
	TextFullLatin
	TextHalfLatin
)

// SelectionTarget is the argument to SetSelection: either a relative
// direction (Up/Down) or an absolute index (from a digit key).
type SelectionTarget struct {
	Direction  useraction.NavDirection
	Absolute   int
	IsAbsolute bool
}

// Action is one step of a client-action sequence. Exactly one field group
// is meaningful, selected by Kind.
type Action struct {
	Kind      Kind
	Text      string             // AppendText, ShrinkText
	Delta     int                // MoveCursor
	Mode      azktypes.InputMode // SetIMEMode
	Selection SelectionTarget    // SetSelection
	TextKind  TextKind           // SetTextWithType
}

func StartComposition() Action { return Action{Kind: KindStartComposition} }
func EndComposition() Action   { return Action{Kind: KindEndComposition} }

func AppendText(t string) Action { return Action{Kind: KindAppendText, Text: t} }
func RemoveText() Action         { return Action{Kind: KindRemoveText} }
func MoveCursor(delta int) Action {
	return Action{Kind: KindMoveCursor, Delta: delta}
}

func SetIMEMode(mode azktypes.InputMode) Action {
	return Action{Kind: KindSetIMEMode, Mode: mode}
}

func SetSelectionDir(dir useraction.NavDirection) Action {
	return Action{Kind: KindSetSelection, Selection: SelectionTarget{Direction: dir}}
}

func SetSelectionAbsolute(index int) Action {
	return Action{Kind: KindSetSelection, Selection: SelectionTarget{Absolute: index, IsAbsolute: true}}
}

func ShrinkText(t string) Action {
	return Action{Kind: KindShrinkText, Text: t}
}

func SetTextWithType(kind TextKind) Action {
	return Action{Kind: KindSetTextWithType, TextKind: kind}
}
