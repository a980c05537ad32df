// Package ipcerr defines the error taxonomy shared by transport, IPC
// client, and interpreter: sentinel errors wrapped with context at each
// boundary and classified with errors.Is/errors.As at call sites.
package ipcerr

import "errors"

var (
	// ErrEndpointUnavailable means the transport could not connect within
	// its retry budget (a not-found pipe retried 20 times by default). Any
	// other non-busy dial error is returned as it is, without this
	// sentinel. Surfaces to the interpreter as an IPC-absent state: offline
	// mode, or cooldown-gated retry later.
	ErrEndpointUnavailable = errors.New("ipc: endpoint unavailable")

	// ErrTimeout means an RPC exceeded its 5s wall-clock budget. Required
	// calls propagate this as a fatal action-list error; optional calls
	// swallow it.
	ErrTimeout = errors.New("ipc: call timed out")

	// ErrBackendProtocolViolation means a response was missing its
	// mandatory composing_text payload.
	ErrBackendProtocolViolation = errors.New("ipc: backend protocol violation")

	// ErrHostCallFailed means the host framework rejected a
	// composition/edit request. The caller reports "not consumed".
	ErrHostCallFailed = errors.New("ipc: host call failed")

	// ErrStateUnavailable means an interior-state borrow failed, e.g. a
	// reentrant call observed the composition or IME state already locked
	// by the same goroutine.
	ErrStateUnavailable = errors.New("ipc: state unavailable")
)
