// Package export pushes live session frames to metric backends so a dial
// run can be watched from Prometheus or InfluxDB. Only live telemetry is
// exported; nothing about the scan is persisted.
package export

import (
	"context"

	"github.com/rileyhilliard/adbdial/internal/config"
	"github.com/rileyhilliard/adbdial/internal/dial"
	"github.com/rileyhilliard/adbdial/internal/logger"
)

// Sink is a metric backend fed by the session reporter.
type Sink interface {
	// Name returns the backend name for logging.
	Name() string

	// Initialize sets up the backend connection or listener.
	Initialize(ctx context.Context) error

	// Write exports one frame.
	Write(ctx context.Context, f dial.Frame) error

	// Close cleanly shuts down the backend.
	Close() error
}

// FromConfig returns the sinks enabled in cfg, uninitialized.
func FromConfig(cfg config.MetricsConfig, log logger.Logger) []Sink {
	var sinks []Sink
	if cfg.Prometheus.Enabled {
		sinks = append(sinks, NewPrometheus(cfg.Prometheus, log))
	}
	if cfg.InfluxDB.Enabled {
		sinks = append(sinks, NewInfluxDB(cfg.InfluxDB, log))
	}
	return sinks
}

// InitializeAll initializes sinks in order. If one fails, the ones already
// started are closed and its error is returned.
func InitializeAll(ctx context.Context, sinks []Sink, log logger.Logger) error {
	for i, s := range sinks {
		if err := s.Initialize(ctx); err != nil {
			CloseAll(sinks[:i], log)
			return err
		}
	}
	return nil
}

// CloseAll closes every sink, logging failures.
func CloseAll(sinks []Sink, log logger.Logger) {
	for _, s := range sinks {
		if err := s.Close(); err != nil {
			log.Warn("closing %s: %v", s.Name(), err)
		}
	}
}

// FrameSinks adapts sinks for dial.WithSinks.
func FrameSinks(sinks []Sink) []dial.FrameSink {
	out := make([]dial.FrameSink, len(sinks))
	for i, s := range sinks {
		out[i] = s
	}
	return out
}
