package ipc

// messages.go declares the plain Go request/response shapes carried over
// the generic codec in codec.go. They mirror the backend RPC surface
// documented in spec.md §6, without any generated protobuf stubs.

// CandidateWire is the wire shape of one candidate entry.
type CandidateWire struct {
	Text               string `json:"text"`
	SubText            string `json:"subtext"`
	CorrespondingCount int    `json:"corresponding_count"`
}

// ComposingTextWire is the wire shape of a successful conversion response's
// payload. A response with a nil ComposingText violates the protocol
// (spec.md's BackendProtocolViolation).
type ComposingTextWire struct {
	Suggestions []CandidateWire `json:"suggestions"`
	Hiragana    string          `json:"hiragana"`
}

// ConversionReply wraps the optional composing_text payload.
type ConversionReply struct {
	ComposingText *ComposingTextWire `json:"composing_text,omitempty"`
}

type AppendTextRequest struct {
	TextToAppend string `json:"text_to_append"`
}

type RemoveTextRequest struct{}

type ShrinkTextRequest struct {
	Offset int32 `json:"offset"`
}

type ClearTextRequest struct{}

type SetContextRequest struct {
	Context string `json:"context"`
}

type LearnCandidateRequest struct {
	CandidateIndex int32 `json:"candidate_index"`
}

type Empty struct{}

type SetPositionRequest struct {
	Top    int32 `json:"top"`
	Left   int32 `json:"left"`
	Bottom int32 `json:"bottom"`
	Right  int32 `json:"right"`
}

type SetCandidateRequest struct {
	Candidates []string `json:"candidates"`
}

type SetSelectionRequest struct {
	Index int32 `json:"index"`
}

type SetInputModeRequest struct {
	Mode string `json:"mode"`
}

// Full gRPC method paths, mirroring the tonic service names visible in the
// original Rust client (conversion.proto / ui.proto service definitions).
const (
	methodAppendText     = "/azookey.Conversion/AppendText"
	methodRemoveText     = "/azookey.Conversion/RemoveText"
	methodShrinkText     = "/azookey.Conversion/ShrinkText"
	methodClearText      = "/azookey.Conversion/ClearText"
	methodSetContext     = "/azookey.Conversion/SetContext"
	methodLearnCandidate = "/azookey.Conversion/LearnCandidate"

	methodShowWindow        = "/azookey.UI/ShowWindow"
	methodHideWindow        = "/azookey.UI/HideWindow"
	methodSetWindowPosition = "/azookey.UI/SetWindowPosition"
	methodSetCandidates     = "/azookey.UI/SetCandidates"
	methodSetSelection      = "/azookey.UI/SetSelection"
	methodSetInputMode      = "/azookey.UI/SetInputMode"
)
