// Package testing provides test doubles for the telemetry package.
package testing

import (
	"context"
	"sync"
	"time"

	"github.com/rileyhilliard/adbdial/internal/telemetry"
)

// FakeSampler returns scripted samples. Once the script runs out the last
// sample repeats. With an empty script it reports an idle machine.
type FakeSampler struct {
	mu      sync.Mutex
	samples []telemetry.Sample
	next    int
	err     error

	// Calls counts Sample invocations.
	Calls int
}

// NewFakeSampler creates a sampler that replays samples in order.
func NewFakeSampler(samples ...telemetry.Sample) *FakeSampler {
	return &FakeSampler{samples: samples}
}

// Idle returns a sampler reporting 5% CPU and 20% memory forever.
func Idle() *FakeSampler {
	return NewFakeSampler(telemetry.Sample{CPUPercent: 5, MemPercent: 20})
}

// Loaded returns a sampler reporting the given CPU and memory forever.
func Loaded(cpu, mem float64) *FakeSampler {
	return NewFakeSampler(telemetry.Sample{CPUPercent: cpu, MemPercent: mem})
}

// SetLoad replaces the script with a single repeating reading.
func (f *FakeSampler) SetLoad(cpu, mem float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.samples = []telemetry.Sample{{CPUPercent: cpu, MemPercent: mem}}
	f.next = 0
}

// SetError makes every following call fail with err (nil clears it).
func (f *FakeSampler) SetError(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

// CallCount returns how many times Sample was called.
func (f *FakeSampler) CallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Calls
}

// Sample implements telemetry.Sampler.
func (f *FakeSampler) Sample(ctx context.Context) (telemetry.Sample, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.Calls++
	if f.err != nil {
		return telemetry.Sample{}, f.err
	}

	var s telemetry.Sample
	switch {
	case len(f.samples) == 0:
		s = telemetry.Sample{CPUPercent: 5, MemPercent: 20}
	case f.next < len(f.samples):
		s = f.samples[f.next]
		f.next++
	default:
		s = f.samples[len(f.samples)-1]
	}
	if s.At.IsZero() {
		s.At = time.Now()
	}
	return s, nil
}

// Factory returns a telemetry.Factory that always hands out f.
func (f *FakeSampler) Factory() telemetry.Factory {
	return func() telemetry.Sampler { return f }
}
