// Package ipc implements the duplex named-pipe transport (C1) and the
// typed RPC facade (C2) over it: two independently-reconnectable sessions,
// Conversion and UI, with per-call timeouts and required-vs-optional call
// classification.
package ipc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/Microsoft/go-winio"

	"github.com/sevenc-nanashi/azookey-go/internal/ipcerr"
)

// Retry tuning, preserved exactly from original_source/ipc_service.rs
// (MAX_CONNECT_RETRIES, CONNECT_RETRY_DELAY).
const (
	connectRetryDelay = 100 * time.Millisecond
	maxConnectRetries = 20
)

// DialPipe opens a duplex byte stream to the named pipe at path, applying
// the bootstrap retry policy: busy retries indefinitely, not-found retries
// up to maxConnectRetries then fails with [ipcerr.ErrEndpointUnavailable],
// any other error fails immediately.
//
// ctx bounds the whole retry loop, not any single attempt; callers that
// want a bounded connect should pass a context with a deadline.
func DialPipe(ctx context.Context, path string) (net.Conn, error) {
	return dialPipe(ctx, path, maxConnectRetries)
}

func dialPipe(ctx context.Context, path string, maxRetries int) (net.Conn, error) {
	notFoundAttempts := 0
	for {
		conn, err := winio.DialPipeContext(ctx, path)
		if err == nil {
			return conn, nil
		}

		switch {
		case isBusy(err):
			if sleepErr := sleepOrCancel(ctx, connectRetryDelay); sleepErr != nil {
				return nil, sleepErr
			}
		case isNotFound(err):
			notFoundAttempts++
			if notFoundAttempts > maxRetries {
				return nil, fmt.Errorf("ipc: dial %q: %w", path, ipcerr.ErrEndpointUnavailable)
			}
			if sleepErr := sleepOrCancel(ctx, connectRetryDelay); sleepErr != nil {
				return nil, sleepErr
			}
		default:
			return nil, fmt.Errorf("ipc: dial %q: %w", path, err)
		}
	}
}

func sleepOrCancel(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func isBusy(err error) bool {
	return errors.Is(err, winio.ErrTimeout) || isPipeError(err, "busy")
}

func isNotFound(err error) bool {
	return errors.Is(err, winio.ErrFileClosed) || isPipeError(err, "cannot find") || isPipeError(err, "not found")
}

// isPipeError does a substring check against the underlying OS error text.
// go-winio surfaces Windows error codes as plain *os.SyscallError /
// *os.PathError values without a typed sentinel for every case, so this
// mirrors how error classification is done against opaque OS errors
// elsewhere in the corpus (e.g. internal/session/reconnect.go's
// classification of dial failures by inspecting the returned error).
func isPipeError(err error, substr string) bool {
	if err == nil {
		return false
	}
	return strings.Contains(strings.ToLower(err.Error()), substr)
}
