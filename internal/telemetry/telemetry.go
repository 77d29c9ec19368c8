// Package telemetry reads local CPU, memory, and network counters for the
// governor and the status reporter.
package telemetry

import (
	"context"
	"time"
)

// Sample is one point-in-time reading of the local machine.
type Sample struct {
	// CPUPercent is busy CPU over the interval since the sampler's previous call.
	CPUPercent float64
	// MemPercent is the share of physical memory in use.
	MemPercent float64
	// BytesSent and BytesRecv are cumulative counters across all interfaces.
	BytesSent uint64
	BytesRecv uint64
	At        time.Time
}

// Sampler produces telemetry samples. Implementations that compute CPU from
// deltas keep per-instance state, so each loop should own its own Sampler.
type Sampler interface {
	Sample(ctx context.Context) (Sample, error)
}

// Factory builds a fresh Sampler.
type Factory func() Sampler

// Over reports whether either reading is at or above its threshold.
func (s Sample) Over(cpuMax, memMax float64) bool {
	return s.CPUPercent >= cpuMax || s.MemPercent >= memMax
}

// Delta returns bytes sent and received since prev. A counter that went
// backwards (interface reset) counts as zero.
func (s Sample) Delta(prev Sample) (sent, recv uint64) {
	if s.BytesSent > prev.BytesSent {
		sent = s.BytesSent - prev.BytesSent
	}
	if s.BytesRecv > prev.BytesRecv {
		recv = s.BytesRecv - prev.BytesRecv
	}
	return sent, recv
}
