// Package hostmock provides an in-memory fake of [hostapi.Host] for tests,
// the same role pkg/audio/webrtc's mockTransport plays for PeerTransport.
package hostmock

import (
	"context"
	"errors"

	"github.com/sevenc-nanashi/azookey-go/internal/hostapi"
)

// Call records one invocation made against the mock, in order, for
// assertions that e.g. SetIMEMode issued zero host calls of a given kind.
type Call struct {
	Method string
	Args   []any
}

// Host is a fake [hostapi.Host] that records every call and lets tests
// inject a failure for the next call.
type Host struct {
	Calls       []Call
	Text        string
	Suffix      string
	NextErr     error
	LastMode    string
	Surrounding string
}

// FailNext arranges for the next Host method call to return err.
func (h *Host) FailNext(err error) { h.NextErr = err }

func (h *Host) takeErr() error {
	err := h.NextErr
	h.NextErr = nil
	return err
}

func (h *Host) record(method string, args ...any) {
	h.Calls = append(h.Calls, Call{Method: method, Args: args})
}

func (h *Host) StartComposition(_ context.Context) (string, error) {
	h.record("StartComposition")
	if err := h.takeErr(); err != nil {
		return "", err
	}
	return hostapi.NewHandle(), nil
}

func (h *Host) EndComposition(_ context.Context, handle string) error {
	h.record("EndComposition", handle)
	if err := h.takeErr(); err != nil {
		return err
	}
	h.Text, h.Suffix = "", ""
	return nil
}

func (h *Host) SetText(_ context.Context, handle string, text, suffix string) error {
	h.record("SetText", handle, text, suffix)
	if err := h.takeErr(); err != nil {
		return err
	}
	h.Text, h.Suffix = text, suffix
	return nil
}

func (h *Host) SetCaret(_ context.Context, handle string, delta int) error {
	h.record("SetCaret", handle, delta)
	return h.takeErr()
}

func (h *Host) ShiftStart(_ context.Context, handle string, committedChars int) error {
	h.record("ShiftStart", handle, committedChars)
	return h.takeErr()
}

func (h *Host) RefreshLanguageBarIcon(mode string) {
	h.record("RefreshLanguageBarIcon", mode)
	h.LastMode = mode
}

func (h *Host) SurroundingText(_ context.Context) string {
	h.record("SurroundingText")
	return h.Surrounding
}

// CallCount returns how many times method was invoked.
func (h *Host) CallCount(method string) int {
	n := 0
	for _, c := range h.Calls {
		if c.Method == method {
			n++
		}
	}
	return n
}

// ErrMock is a generic failure used by tests that only need any non-nil
// error from the mock.
var ErrMock = errors.New("hostmock: forced failure")
