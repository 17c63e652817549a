package api

import (
	"context"
	"log/slog"
)

// CallEvent records metadata about a single façade call.
type CallEvent struct {
	Method    string
	Endpoint  string
	Regime    Regime
	Attempts  int
	LatencyMs int64
	Success   bool
	Kind      Kind // empty on success
	Status    int
	Message   string
}

// Observer receives call events for logging and metrics.
type Observer interface {
	OnCallComplete(event CallEvent)
	// OnReadDegraded fires when a list read swallowed a failure and
	// returned an empty collection.
	OnReadDegraded(endpoint string, err *Error)
}

// LogObserver writes call events through slog. Business conflicts log at
// INFO, other failures at ERROR, successes at DEBUG.
type LogObserver struct {
	logger *slog.Logger
}

// NewLogObserver creates an Observer backed by logger.
func NewLogObserver(logger *slog.Logger) *LogObserver {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogObserver{logger: logger}
}

func (o *LogObserver) OnCallComplete(e CallEvent) {
	attrs := []any{
		"method", e.Method,
		"endpoint", e.Endpoint,
		"regime", string(e.Regime),
		"attempts", e.Attempts,
		"latency_ms", e.LatencyMs,
	}
	if e.Success {
		o.logger.Debug("api_call", attrs...)
		return
	}
	attrs = append(attrs, "kind", string(e.Kind), "status", e.Status, "error", e.Message)
	o.logger.Log(context.Background(), e.Kind.Severity(), "api_call", attrs...)
}

func (o *LogObserver) OnReadDegraded(endpoint string, err *Error) {
	o.logger.Warn("api_read_degraded", "endpoint", endpoint, "kind", string(err.Kind), "error", err.Message)
}

// NoopObserver discards all events. Useful for tests.
type NoopObserver struct{}

func (NoopObserver) OnCallComplete(CallEvent)      {}
func (NoopObserver) OnReadDegraded(string, *Error) {}
