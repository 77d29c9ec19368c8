package export

import (
	"context"
	"errors"
	"testing"

	"github.com/rileyhilliard/adbdial/internal/config"
	"github.com/rileyhilliard/adbdial/internal/dial"
	"github.com/rileyhilliard/adbdial/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSink struct {
	name    string
	initErr error
	inits   int
	closes  int
}

func (s *stubSink) Name() string                                  { return s.name }
func (s *stubSink) Initialize(ctx context.Context) error          { s.inits++; return s.initErr }
func (s *stubSink) Write(ctx context.Context, f dial.Frame) error { return nil }
func (s *stubSink) Close() error                                  { s.closes++; return errors.New("already closed") }

func TestFromConfig(t *testing.T) {
	cfg := config.DefaultConfig().Metrics
	assert.Empty(t, FromConfig(cfg, logger.Noop()))

	cfg.Prometheus.Enabled = true
	sinks := FromConfig(cfg, logger.Noop())
	require.Len(t, sinks, 1)
	assert.Equal(t, "prometheus", sinks[0].Name())

	cfg.InfluxDB.Enabled = true
	sinks = FromConfig(cfg, logger.Noop())
	require.Len(t, sinks, 2)
	assert.Equal(t, "influxdb", sinks[1].Name())
}

func TestInitializeAll_ClosesStartedOnFailure(t *testing.T) {
	a := &stubSink{name: "a"}
	b := &stubSink{name: "b", initErr: errors.New("boom")}
	c := &stubSink{name: "c"}
	log := logger.NewBufferLogger()

	err := InitializeAll(context.Background(), []Sink{a, b, c}, log)
	require.Error(t, err)

	assert.Equal(t, 1, a.inits)
	assert.Equal(t, 1, a.closes, "started sink should be closed")
	assert.Equal(t, 0, b.closes)
	assert.Equal(t, 0, c.inits, "later sinks should not start")
	assert.True(t, log.HasLevel("warn"), "close failure should be logged")
}

func TestFrameSinks(t *testing.T) {
	a := &stubSink{name: "a"}
	out := FrameSinks([]Sink{a})
	require.Len(t, out, 1)
	assert.Equal(t, "a", out[0].Name())
}
