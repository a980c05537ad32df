package azktypes_test

import (
	"testing"

	"github.com/sevenc-nanashi/azookey-go/internal/azktypes"
)

func TestCheckInvariants_ZeroValueIsValid(t *testing.T) {
	var c azktypes.Composition
	if v := c.CheckInvariants(); len(v) != 0 {
		t.Errorf("zero value violations = %v, want none", v)
	}
}

func TestCheckInvariants_NoneWithHostHandleIsInvalid(t *testing.T) {
	c := azktypes.Composition{State: azktypes.StateNone, HostHandle: "h1"}
	v := c.CheckInvariants()
	if len(v) == 0 {
		t.Error("expected a violation for None state with a host handle set")
	}
}

func TestCheckInvariants_NoneWithNonEmptyTextIsInvalid(t *testing.T) {
	c := azktypes.Composition{State: azktypes.StateNone, Preview: "あ"}
	v := c.CheckInvariants()
	if len(v) == 0 {
		t.Error("expected a violation for None state with non-empty preview")
	}
}

func TestCheckInvariants_ActiveWithoutHostHandleIsInvalid(t *testing.T) {
	c := azktypes.Composition{State: azktypes.StateComposing, Preview: "あ"}
	v := c.CheckInvariants()
	if len(v) == 0 {
		t.Error("expected a violation for active state missing a host handle")
	}
}

func TestCheckInvariants_ActiveWithHostHandleIsValid(t *testing.T) {
	c := azktypes.Composition{State: azktypes.StateComposing, Preview: "あ", HostHandle: "h1"}
	if v := c.CheckInvariants(); len(v) != 0 {
		t.Errorf("violations = %v, want none", v)
	}
}

func TestCheckInvariants_SelectionIndexOutOfRange(t *testing.T) {
	c := azktypes.Composition{
		State:      azktypes.StatePreviewing,
		HostHandle: "h1",
		Candidates: []azktypes.Candidate{{Text: "a"}, {Text: "b"}},
		SelectionIndex: 5,
	}
	v := c.CheckInvariants()
	if len(v) == 0 {
		t.Error("expected a violation for out-of-range selection index")
	}
}

func TestCheckInvariants_SelectionIndexWithoutCandidatesIsInvalid(t *testing.T) {
	c := azktypes.Composition{
		State:          azktypes.StateComposing,
		HostHandle:     "h1",
		SelectionIndex: 1,
	}
	v := c.CheckInvariants()
	if len(v) == 0 {
		t.Error("expected a violation for non-zero selection index with no candidates")
	}
}

func TestCheckInvariants_CorrespondingCountOutOfRange(t *testing.T) {
	c := azktypes.Composition{
		State:              azktypes.StateComposing,
		HostHandle:         "h1",
		RawHiragana:        "あい",
		CorrespondingCount: 3,
	}
	v := c.CheckInvariants()
	if len(v) == 0 {
		t.Error("expected a violation for corresponding_count exceeding rune count")
	}
}

func TestCheckInvariants_NegativeCorrespondingCount(t *testing.T) {
	c := azktypes.Composition{
		State:              azktypes.StateComposing,
		HostHandle:         "h1",
		RawHiragana:        "あい",
		CorrespondingCount: -1,
	}
	v := c.CheckInvariants()
	if len(v) == 0 {
		t.Error("expected a violation for negative corresponding_count")
	}
}

func TestSnapshot_IsIndependentCopy(t *testing.T) {
	c := &azktypes.Composition{
		Preview:    "あ",
		Candidates: []azktypes.Candidate{{Text: "あ"}},
	}
	snap := c.Snapshot()
	c.Candidates[0].Text = "い"
	c.Preview = "い"

	if snap.Preview != "あ" {
		t.Errorf("snapshot preview mutated: got %q, want %q", snap.Preview, "あ")
	}
	if snap.Candidates[0].Text != "あ" {
		t.Errorf("snapshot candidates mutated: got %q, want %q", snap.Candidates[0].Text, "あ")
	}
}

func TestReset_ClearsToZeroValue(t *testing.T) {
	c := &azktypes.Composition{
		Preview:    "あ",
		State:      azktypes.StateComposing,
		HostHandle: "h1",
		Candidates: []azktypes.Candidate{{Text: "あ"}},
	}
	c.Reset()
	if v := c.CheckInvariants(); len(v) != 0 {
		t.Errorf("post-reset violations = %v, want none", v)
	}
	if c.State != azktypes.StateNone || c.Preview != "" || c.HostHandle != "" || len(c.Candidates) != 0 {
		t.Errorf("Reset did not clear fields: %+v", c)
	}
}

func TestCharCount_CountsRunesNotBytes(t *testing.T) {
	if got := azktypes.CharCount("あい"); got != 2 {
		t.Errorf("CharCount(%q) = %d, want 2", "あい", got)
	}
	if got := azktypes.CharCount("abc"); got != 3 {
		t.Errorf("CharCount(%q) = %d, want 3", "abc", got)
	}
}

func TestInputMode_ToggleAndString(t *testing.T) {
	if azktypes.ModeKana.Toggle() != azktypes.ModeLatin {
		t.Error("ModeKana.Toggle() should be ModeLatin")
	}
	if azktypes.ModeLatin.Toggle() != azktypes.ModeKana {
		t.Error("ModeLatin.Toggle() should be ModeKana")
	}
	if azktypes.ModeKana.String() != "Kana" || azktypes.ModeLatin.String() != "Latin" {
		t.Error("unexpected InputMode.String() values")
	}
}

func TestCompositionState_String(t *testing.T) {
	cases := map[azktypes.CompositionState]string{
		azktypes.StateNone:       "None",
		azktypes.StateComposing:  "Composing",
		azktypes.StatePreviewing: "Previewing",
		azktypes.StateSelecting:  "Selecting",
	}
	for state, want := range cases {
		if got := state.String(); got != want {
			t.Errorf("%v.String() = %q, want %q", int(state), got, want)
		}
	}
}
