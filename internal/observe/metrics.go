// Package observe provides the engine's OpenTelemetry instrumentation:
// RPC latency, reconnect attempts, aborted action lists, and whether the
// engine is currently running offline. A package-level default [Metrics]
// instance ([DefaultMetrics]) is provided for convenience; tests should use
// [NewMetrics] with a custom [metric.MeterProvider] to avoid cross-test
// pollution.
package observe

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope name used for all engine metrics.
const meterName = "github.com/sevenc-nanashi/azookey-go"

// Metrics holds all OpenTelemetry metric instruments the engine records.
// All fields are safe for concurrent use — the underlying OTel types
// handle their own synchronisation.
type Metrics struct {
	// RPCDuration tracks per-call latency against the conversion/UI
	// sessions. Use with attribute.String("method", ...).
	RPCDuration metric.Float64Histogram

	// ReconnectAttempts counts dial attempts made by [interpreter.ensureClient]
	// after the cooldown window has elapsed. Use with
	// attribute.Bool("success", ...).
	ReconnectAttempts metric.Int64Counter

	// ActionListAbort counts action lists that aborted partway through
	// [interpreter.Interpreter.Execute] because a required call failed.
	ActionListAbort metric.Int64Counter

	// Offline tracks whether the engine currently believes the backend is
	// unreachable: 1 while offline, 0 while connected. An UpDownCounter
	// rather than a boolean gauge because the metric API has no native
	// gauge primitive for synchronous instruments.
	Offline metric.Int64UpDownCounter
}

// rpcLatencyBuckets defines histogram bucket boundaries (in seconds),
// tight around the 5s per-call budget (spec.md §4.2).
var rpcLatencyBuckets = []float64{
	0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5,
}

// NewMetrics creates a fully initialised [Metrics] struct using the given
// [metric.MeterProvider]. Returns an error if any instrument creation fails.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.RPCDuration, err = m.Float64Histogram("azookey.ipc.rpc.duration",
		metric.WithDescription("Latency of a single RPC call to the conversion or UI session."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(rpcLatencyBuckets...),
	); err != nil {
		return nil, err
	}

	if met.ReconnectAttempts, err = m.Int64Counter("azookey.ipc.reconnect_attempts",
		metric.WithDescription("Reconnect attempts made after the cooldown window elapsed, by outcome."),
	); err != nil {
		return nil, err
	}

	if met.ActionListAbort, err = m.Int64Counter("azookey.interpreter.action_list_aborts",
		metric.WithDescription("Action lists aborted partway through execution by a failed required call."),
	); err != nil {
		return nil, err
	}

	if met.Offline, err = m.Int64UpDownCounter("azookey.ipc.offline",
		metric.WithDescription("1 while the engine believes the backend is unreachable, 0 otherwise."),
	); err != nil {
		return nil, err
	}

	return met, nil
}

// defaultMetrics is the lazily-initialised package-level Metrics instance.
var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns the package-level [Metrics] instance, creating it
// on first call using [otel.GetMeterProvider]. Subsequent calls return the
// same pointer. Panics if instrument creation fails (should not happen
// with the global provider).
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		var err error
		defaultMetrics, err = NewMetrics(otel.GetMeterProvider())
		if err != nil {
			panic("observe: failed to create default metrics: " + err.Error())
		}
	})
	return defaultMetrics
}

// Attr is a convenience alias for [attribute.String] to reduce verbosity
// at call sites.
func Attr(key, value string) attribute.KeyValue {
	return attribute.String(key, value)
}

// RecordRPC records one RPC call's latency against method.
func (m *Metrics) RecordRPC(ctx context.Context, method string, seconds float64) {
	m.RPCDuration.Record(ctx, seconds, metric.WithAttributes(attribute.String("method", method)))
}

// RecordReconnectAttempt records one reconnect attempt and its outcome.
func (m *Metrics) RecordReconnectAttempt(ctx context.Context, success bool) {
	m.ReconnectAttempts.Add(ctx, 1, metric.WithAttributes(attribute.Bool("success", success)))
}

// RecordActionListAbort records one aborted action list.
func (m *Metrics) RecordActionListAbort(ctx context.Context) {
	m.ActionListAbort.Add(ctx, 1)
}

// SetOffline updates the offline gauge. delta is +1 when transitioning to
// offline and -1 when transitioning back to connected; callers that don't
// track the previous state should prefer idempotent call sites (the
// interpreter only calls this on an actual transition).
func (m *Metrics) SetOffline(ctx context.Context, delta int64) {
	m.Offline.Add(ctx, delta)
}
