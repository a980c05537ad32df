// Package ipcmock provides an in-memory fake backend implementing
// [ipc.Backend], standing in for the conversion/UI processes in tests —
// the same "record calls, let the test script the replies" shape as
// internal/mcp/mock in the teacher repo.
package ipcmock

import (
	"context"
	"errors"

	"github.com/sevenc-nanashi/azookey-go/internal/azktypes"
	"github.com/sevenc-nanashi/azookey-go/internal/ipc"
)

var _ ipc.Backend = (*Backend)(nil)

// Call records one invocation, in arrival order.
type Call struct {
	Method string
	Args   []any
}

// Backend is an in-memory fake conversion + UI backend. AppendFn/RemoveFn/
// ShrinkFn let a test script the candidate set returned by each call;
// FailNext forces the next call (of any method) to fail.
type Backend struct {
	Calls []Call

	AppendFn func(s string) (azktypes.Candidates, error)
	RemoveFn func() (azktypes.Candidates, error)
	ShrinkFn func(offset int) (azktypes.Candidates, error)

	SelectionIndex int
	InputMode      string
	Closed         bool

	nextErr error
}

// FailNext arranges for the very next call to return err instead of its
// normal result.
func (b *Backend) FailNext(err error) { b.nextErr = err }

func (b *Backend) takeErr() error {
	err := b.nextErr
	b.nextErr = nil
	return err
}

func (b *Backend) record(method string, args ...any) {
	b.Calls = append(b.Calls, Call{Method: method, Args: args})
}

// CallCount returns how many times method was invoked — used by tests that
// count the calls of one method (e.g. AppendText probes and appends).
func (b *Backend) CallCount(method string) int {
	n := 0
	for _, c := range b.Calls {
		if c.Method == method {
			n++
		}
	}
	return n
}

func (b *Backend) AppendText(_ context.Context, s string) (azktypes.Candidates, error) {
	b.record("AppendText", s)
	if err := b.takeErr(); err != nil {
		return azktypes.Candidates{}, err
	}
	if b.AppendFn != nil {
		return b.AppendFn(s)
	}
	return azktypes.Candidates{}, nil
}

func (b *Backend) RemoveText(_ context.Context) (azktypes.Candidates, error) {
	b.record("RemoveText")
	if err := b.takeErr(); err != nil {
		return azktypes.Candidates{}, err
	}
	if b.RemoveFn != nil {
		return b.RemoveFn()
	}
	return azktypes.Candidates{}, nil
}

func (b *Backend) ShrinkText(_ context.Context, offset int) (azktypes.Candidates, error) {
	b.record("ShrinkText", offset)
	if err := b.takeErr(); err != nil {
		return azktypes.Candidates{}, err
	}
	if b.ShrinkFn != nil {
		return b.ShrinkFn(offset)
	}
	return azktypes.Candidates{}, nil
}

func (b *Backend) ClearText(_ context.Context) error {
	b.record("ClearText")
	return b.takeErr()
}

func (b *Backend) SetContext(_ context.Context, s string) error {
	b.record("SetContext", s)
	return b.takeErr()
}

func (b *Backend) LearnCandidate(_ context.Context, index int) error {
	b.record("LearnCandidate", index)
	return b.takeErr()
}

func (b *Backend) ShowWindow(_ context.Context) error {
	b.record("ShowWindow")
	return b.takeErr()
}

func (b *Backend) HideWindow(_ context.Context) error {
	b.record("HideWindow")
	return b.takeErr()
}

func (b *Backend) SetWindowPosition(_ context.Context, top, left, bottom, right int) error {
	b.record("SetWindowPosition", top, left, bottom, right)
	return b.takeErr()
}

func (b *Backend) SetCandidates(_ context.Context, texts []string) error {
	b.record("SetCandidates", texts)
	return b.takeErr()
}

func (b *Backend) SetSelection(_ context.Context, index int) error {
	b.record("SetSelection", index)
	if err := b.takeErr(); err != nil {
		return err
	}
	b.SelectionIndex = index
	return nil
}

func (b *Backend) SetInputMode(_ context.Context, mode string) error {
	b.record("SetInputMode", mode)
	if err := b.takeErr(); err != nil {
		return err
	}
	b.InputMode = mode
	return nil
}

func (b *Backend) Close() error {
	b.Closed = true
	return nil
}

// ErrMock is a generic failure used by tests that only need any non-nil
// error from the mock.
var ErrMock = errors.New("ipcmock: forced failure")
