package ipc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/sevenc-nanashi/azookey-go/internal/azktypes"
	"github.com/sevenc-nanashi/azookey-go/internal/ipcerr"
	"github.com/sevenc-nanashi/azookey-go/internal/observe"
)

// Per-call wall clock budget (spec.md §4.2).
const CallTimeout = 5 * time.Second

const (
	// DefaultConversionPipe and DefaultUIPipe are the two named-pipe
	// endpoints the backend and candidate-window processes listen on
	// (spec.md §6).
	DefaultConversionPipe = `\\.\pipe\azookey_server`
	DefaultUIPipe         = `\\.\pipe\azookey_ui`
)

// Backend is the RPC surface the interpreter consumes. [*Client] implements
// it against real named pipes; [ipcmock.Backend] implements it in-memory
// for tests.
type Backend interface {
	AppendText(ctx context.Context, s string) (azktypes.Candidates, error)
	RemoveText(ctx context.Context) (azktypes.Candidates, error)
	ShrinkText(ctx context.Context, offset int) (azktypes.Candidates, error)
	ClearText(ctx context.Context) error
	SetContext(ctx context.Context, s string) error
	LearnCandidate(ctx context.Context, index int) error

	ShowWindow(ctx context.Context) error
	HideWindow(ctx context.Context) error
	SetWindowPosition(ctx context.Context, top, left, bottom, right int) error
	SetCandidates(ctx context.Context, texts []string) error
	SetSelection(ctx context.Context, index int) error
	SetInputMode(ctx context.Context, mode string) error

	Close() error
}

// Client is a duplex RPC facade over two independent named-pipe sessions:
// Conversion (required-capable) and UI (always best-effort). It is built
// once per activation and is safe only for sequential use by one
// goroutine at a time — the interpreter never issues two RPCs
// concurrently (spec.md §5's ordering guarantee).
type Client struct {
	conversionConn *grpc.ClientConn
	uiConn         *grpc.ClientConn

	callTimeout    time.Duration
	connectRetries int
	metrics        *observe.Metrics
}

// DialOption configures a [Client] before its sessions are dialed.
type DialOption func(*Client)

// WithCallTimeout overrides the per-RPC wall-clock budget. Zero or negative
// values are ignored.
func WithCallTimeout(d time.Duration) DialOption {
	return func(c *Client) {
		if d > 0 {
			c.callTimeout = d
		}
	}
}

// WithConnectRetries overrides how many times a not-found pipe is retried
// before the dial fails with [ipcerr.ErrEndpointUnavailable]. Negative
// values are ignored.
func WithConnectRetries(n int) DialOption {
	return func(c *Client) {
		if n >= 0 {
			c.connectRetries = n
		}
	}
}

// WithClientMetrics attaches an observability sink; each RPC records its
// latency against its method path. When omitted, nothing is recorded.
func WithClientMetrics(m *observe.Metrics) DialOption {
	return func(c *Client) { c.metrics = m }
}

// Dial constructs a [Client] with both the Conversion and UI sessions,
// set up concurrently under an [errgroup.Group] — the two pipes are
// independent endpoints and neither's setup should block the other's. The
// underlying transport connects lazily on the first RPC of each session,
// applying [DialPipe]'s retry policy then; a first call against an absent
// endpoint fails with the error gRPC reports for the failed connection
// (the dial error, such as [ipcerr.ErrEndpointUnavailable], appears only in
// its message and is not matchable with errors.Is), so callers that need to
// know the backend is live up front should probe with a cheap call (the
// activation path sends an empty append_text).
func Dial(ctx context.Context, conversionPipe, uiPipe string, opts ...DialOption) (*Client, error) {
	client := &Client{callTimeout: CallTimeout, connectRetries: maxConnectRetries}
	for _, opt := range opts {
		opt(client)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		c, err := dialGRPC(gctx, conversionPipe, client.connectRetries)
		if err != nil {
			return fmt.Errorf("ipc: dial conversion session: %w", err)
		}
		client.conversionConn = c
		return nil
	})
	g.Go(func() error {
		c, err := dialGRPC(gctx, uiPipe, client.connectRetries)
		if err != nil {
			return fmt.Errorf("ipc: dial ui session: %w", err)
		}
		client.uiConn = c
		return nil
	})
	if err := g.Wait(); err != nil {
		client.Close()
		return nil, err
	}
	return client, nil
}

func dialGRPC(ctx context.Context, pipe string, connectRetries int) (*grpc.ClientConn, error) {
	dialer := func(dialCtx context.Context, _ string) (net.Conn, error) {
		return dialPipe(dialCtx, pipe, connectRetries)
	}
	conn, err := grpc.NewClient("passthrough:///"+pipe,
		grpc.WithContextDialer(dialer),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(jsonCodecName)),
	)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// Close tears down both sessions. Safe to call on a nil *Client.
func (c *Client) Close() error {
	if c == nil {
		return nil
	}
	var errs []error
	if c.conversionConn != nil {
		errs = append(errs, c.conversionConn.Close())
	}
	if c.uiConn != nil {
		errs = append(errs, c.uiConn.Close())
	}
	return errors.Join(errs...)
}

func (c *Client) invoke(ctx context.Context, conn *grpc.ClientConn, method string, req, reply any) error {
	ctx, cancel := context.WithTimeout(ctx, c.callTimeout)
	defer cancel()

	start := time.Now()
	err := conn.Invoke(ctx, method, req, reply)
	if c.metrics != nil {
		c.metrics.RecordRPC(ctx, method, time.Since(start).Seconds())
	}
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("ipc: %s: %w", method, ipcerr.ErrTimeout)
		}
		return fmt.Errorf("ipc: %s: %w", method, err)
	}
	return nil
}

func toCandidates(r ConversionReply) (azktypes.Candidates, error) {
	if r.ComposingText == nil {
		return azktypes.Candidates{}, ipcerr.ErrBackendProtocolViolation
	}
	out := azktypes.Candidates{Hiragana: r.ComposingText.Hiragana}
	out.Items = make([]azktypes.Candidate, len(r.ComposingText.Suggestions))
	for i, s := range r.ComposingText.Suggestions {
		out.Items[i] = azktypes.Candidate{
			Text:               s.Text,
			SubText:            s.SubText,
			CorrespondingCount: s.CorrespondingCount,
		}
	}
	return out, nil
}

// --- Conversion session (required-capable calls) ---

// AppendText appends s to the backend's composing buffer and returns the
// new candidate set. Required when called while in conversion mode: its
// error aborts the action list (spec.md §4.2).
func (c *Client) AppendText(ctx context.Context, s string) (azktypes.Candidates, error) {
	var reply ConversionReply
	if err := c.invoke(ctx, c.conversionConn, methodAppendText, AppendTextRequest{TextToAppend: s}, &reply); err != nil {
		return azktypes.Candidates{}, err
	}
	return toCandidates(reply)
}

// RemoveText removes the last appended unit from the backend buffer and
// returns the new candidate set. Always required.
func (c *Client) RemoveText(ctx context.Context) (azktypes.Candidates, error) {
	var reply ConversionReply
	if err := c.invoke(ctx, c.conversionConn, methodRemoveText, RemoveTextRequest{}, &reply); err != nil {
		return azktypes.Candidates{}, err
	}
	return toCandidates(reply)
}

// ShrinkText commits the first offset hiragana characters as the chosen
// prefix and returns candidates for the remainder. Always required.
func (c *Client) ShrinkText(ctx context.Context, offset int) (azktypes.Candidates, error) {
	var reply ConversionReply
	if err := c.invoke(ctx, c.conversionConn, methodShrinkText, ShrinkTextRequest{Offset: int32(offset)}, &reply); err != nil {
		return azktypes.Candidates{}, err
	}
	return toCandidates(reply)
}

// ClearText resets the backend buffer. Optional — failures are swallowed
// by the caller.
func (c *Client) ClearText(ctx context.Context) error {
	var reply Empty
	return c.invoke(ctx, c.conversionConn, methodClearText, ClearTextRequest{}, &reply)
}

// SetContext sends an advisory surrounding-text hint. Optional.
func (c *Client) SetContext(ctx context.Context, s string) error {
	var reply Empty
	return c.invoke(ctx, c.conversionConn, methodSetContext, SetContextRequest{Context: s}, &reply)
}

// LearnCandidate asks the backend to reinforce candidate index of the most
// recent result. Optional.
func (c *Client) LearnCandidate(ctx context.Context, index int) error {
	var reply Empty
	return c.invoke(ctx, c.conversionConn, methodLearnCandidate, LearnCandidateRequest{CandidateIndex: int32(index)}, &reply)
}

// --- UI session (always best-effort, except SetSelection) ---

func (c *Client) ShowWindow(ctx context.Context) error {
	var reply Empty
	return c.invoke(ctx, c.uiConn, methodShowWindow, Empty{}, &reply)
}

func (c *Client) HideWindow(ctx context.Context) error {
	var reply Empty
	return c.invoke(ctx, c.uiConn, methodHideWindow, Empty{}, &reply)
}

func (c *Client) SetWindowPosition(ctx context.Context, top, left, bottom, right int) error {
	var reply Empty
	req := SetPositionRequest{Top: int32(top), Left: int32(left), Bottom: int32(bottom), Right: int32(right)}
	return c.invoke(ctx, c.uiConn, methodSetWindowPosition, req, &reply)
}

func (c *Client) SetCandidates(ctx context.Context, texts []string) error {
	var reply Empty
	return c.invoke(ctx, c.uiConn, methodSetCandidates, SetCandidateRequest{Candidates: texts}, &reply)
}

// SetSelection is listed as "required" in spec.md §4.2's call
// classification (unlike the rest of the UI surface), even though it
// targets the UI session.
func (c *Client) SetSelection(ctx context.Context, index int) error {
	var reply Empty
	return c.invoke(ctx, c.uiConn, methodSetSelection, SetSelectionRequest{Index: int32(index)}, &reply)
}

// SetInputMode is optional — spec.md §4.6 additionally forbids calling it
// at all from SetIMEMode; it remains available here for any other caller
// that legitimately wants to notify the UI of an input-mode change.
func (c *Client) SetInputMode(ctx context.Context, mode string) error {
	var reply Empty
	return c.invoke(ctx, c.uiConn, methodSetInputMode, SetInputModeRequest{Mode: mode}, &reply)
}

var _ Backend = (*Client)(nil)
