// Package useraction maps raw virtual-key codes delivered by the host
// framework into the closed set of logical [UserAction]s the state machine
// consumes.
package useraction

import "github.com/sevenc-nanashi/azookey-go/internal/azktypes"

// Kind identifies which variant of [UserAction] is populated.
type Kind int

const (
	KindUnhandled Kind = iota
	KindInput
	KindNumber
	KindNavigation
	KindFunction
	KindBackspace
	KindEnter
	KindEscape
	KindSpace
	KindTab
	KindToggleInputMode
	// KindForceIMEMode is produced only by the 0x97/0x98 helper codes. It
	// never enters the state machine proper (spec.md §4.4); the engine
	// short-circuits to EndComposition (only when a composition is active)
	// followed by SetIMEMode(ForcedMode).
	KindForceIMEMode
)

// NavDirection is the direction of a [KindNavigation] action.
type NavDirection int

const (
	NavLeft NavDirection = iota
	NavRight
	NavUp
	NavDown
)

// FunctionKey identifies one of the five forced-conversion function keys.
type FunctionKey int

const (
	FunctionSix FunctionKey = iota + 6
	FunctionSeven
	FunctionEight
	FunctionNine
	FunctionTen
)

// UserAction is the decoded, logical form of a single key event. Exactly
// one of the typed fields is meaningful, selected by Kind.
type UserAction struct {
	Kind       Kind
	Char       rune
	Digit      int
	Direction  NavDirection
	Function   FunctionKey
	ForcedMode azktypes.InputMode // KindForceIMEMode only
}

// Virtual-key codes for the IME-toggle helper signals. These are checked
// before any other decoding step, including the control-modifier gate.
const (
	vkForceLatin = 0x97
	vkForceKana  = 0x98
)

// Standard virtual-key codes this decoder recognizes. Values follow the
// conventional Win32 VK_* numbering used by the host framework.
const (
	vkBack   = 0x08
	vkTab    = 0x09
	vkReturn = 0x0D
	vkKanji  = 0x19
	vkEscape = 0x1B
	vkSpace  = 0x20
	vkLeft   = 0x25
	vkUp     = 0x26
	vkRight  = 0x27
	vkDown   = 0x28
	vkKey0   = 0x30
	vkKey9   = 0x39
	vkKeyA   = 0x41
	vkKeyZ   = 0x5A
	vkF6     = 0x75
	vkF7     = 0x76
	vkF8     = 0x77
	vkF9     = 0x78
	vkF10    = 0x79

	// Zenkaku/Hankaku arrives as VK_OEM_AUTO on key-down and VK_OEM_ENLW
	// with shift; both toggle the input mode, as does the Kanji key on JIS
	// keyboards.
	vkOemAuto = 0xF3
	vkOemEnlw = 0xF4
)

// Unhandled is the zero-value "not consumed" action, returned whenever a
// key code is outside the recognized set.
var Unhandled = UserAction{Kind: KindUnhandled}

// ToggleInputMode constructs the logical toggle action [Decode] returns for
// the Kanji and Zenkaku/Hankaku keys (distinct from the forced-mode short-circuit of
// 0x97/0x98, which carries an explicit [azktypes.InputMode] rather than
// toggling whatever mode happens to be active).
var ToggleInputMode = UserAction{Kind: KindToggleInputMode}

// Decode maps a single key event to its logical [UserAction].
//
// The special codes 0x97 ("force Latin") and 0x98 ("force Kana") are
// checked before any modifier filtering and always return a
// KindForceIMEMode action carrying the explicit target mode, even when
// controlHeld is true — they are delivered by an external helper, never by
// the user pressing Control together with an ordinary key, and must never
// be suppressed by the control gate below. Forcing the explicit mode
// (rather than toggling) matters because the helper has no way to know
// which mode is currently active; toggling here could flip the IME to the
// wrong mode if it was already in the requested one.
//
// If controlHeld is true for any other key, the event is not consumed (it
// falls through to the host application as a shortcut) — this check runs
// after the 0x97/0x98 short-circuit, never before it.
func Decode(vkCode uint32, controlHeld bool) UserAction {
	switch vkCode {
	case vkForceLatin:
		return UserAction{Kind: KindForceIMEMode, ForcedMode: azktypes.ModeLatin}
	case vkForceKana:
		return UserAction{Kind: KindForceIMEMode, ForcedMode: azktypes.ModeKana}
	}
	if controlHeld {
		return Unhandled
	}

	switch {
	case vkCode == vkBack:
		return UserAction{Kind: KindBackspace}
	case vkCode == vkTab:
		return UserAction{Kind: KindTab}
	case vkCode == vkReturn:
		return UserAction{Kind: KindEnter}
	case vkCode == vkEscape:
		return UserAction{Kind: KindEscape}
	case vkCode == vkKanji, vkCode == vkOemAuto, vkCode == vkOemEnlw:
		return ToggleInputMode
	case vkCode == vkSpace:
		return UserAction{Kind: KindSpace}
	case vkCode == vkLeft:
		return UserAction{Kind: KindNavigation, Direction: NavLeft}
	case vkCode == vkRight:
		return UserAction{Kind: KindNavigation, Direction: NavRight}
	case vkCode == vkUp:
		return UserAction{Kind: KindNavigation, Direction: NavUp}
	case vkCode == vkDown:
		return UserAction{Kind: KindNavigation, Direction: NavDown}
	case vkCode >= vkKey0 && vkCode <= vkKey9:
		return UserAction{Kind: KindNumber, Digit: int(vkCode - vkKey0)}
	case vkCode >= vkKeyA && vkCode <= vkKeyZ:
		return UserAction{Kind: KindInput, Char: rune('a' + (vkCode - vkKeyA))}
	case vkCode == vkF6:
		return UserAction{Kind: KindFunction, Function: FunctionSix}
	case vkCode == vkF7:
		return UserAction{Kind: KindFunction, Function: FunctionSeven}
	case vkCode == vkF8:
		return UserAction{Kind: KindFunction, Function: FunctionEight}
	case vkCode == vkF9:
		return UserAction{Kind: KindFunction, Function: FunctionNine}
	case vkCode == vkF10:
		return UserAction{Kind: KindFunction, Function: FunctionTen}
	default:
		return Unhandled
	}
}
