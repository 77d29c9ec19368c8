package telemetry

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"
	psnet "github.com/shirou/gopsutil/v4/net"
)

// HostSampler reads the local machine through gopsutil.
//
// CPU percent is computed from cumulative CPU times against the previous
// call on the same sampler, so the first call reports the average since boot.
type HostSampler struct {
	mu   sync.Mutex
	prev cpuTimes
	now  func() time.Time
}

type cpuTimes struct {
	total float64
	busy  float64
}

// NewHostSampler creates a sampler for the local machine.
func NewHostSampler() *HostSampler {
	return &HostSampler{now: time.Now}
}

// HostFactory returns a Factory producing independent HostSamplers.
func HostFactory() Factory {
	return func() Sampler { return NewHostSampler() }
}

// Sample implements Sampler.
func (h *HostSampler) Sample(ctx context.Context) (Sample, error) {
	times, err := cpu.TimesWithContext(ctx, false)
	if err != nil {
		return Sample{}, fmt.Errorf("read cpu times: %w", err)
	}
	if len(times) == 0 {
		return Sample{}, fmt.Errorf("read cpu times: no data")
	}

	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return Sample{}, fmt.Errorf("read memory: %w", err)
	}

	counters, err := psnet.IOCountersWithContext(ctx, false)
	if err != nil {
		return Sample{}, fmt.Errorf("read network counters: %w", err)
	}

	s := Sample{
		CPUPercent: h.cpuPercent(splitTimes(times[0])),
		MemPercent: vm.UsedPercent,
		At:         h.now(),
	}
	for _, c := range counters {
		s.BytesSent += c.BytesSent
		s.BytesRecv += c.BytesRecv
	}
	return s, nil
}

func (h *HostSampler) cpuPercent(cur cpuTimes) float64 {
	h.mu.Lock()
	defer h.mu.Unlock()

	prev := h.prev
	h.prev = cur
	return busyPercent(prev, cur)
}

// splitTimes reduces gopsutil's CPU times to total and busy seconds.
// Guest time is already included in user time on Linux.
func splitTimes(t cpu.TimesStat) cpuTimes {
	total := t.User + t.System + t.Idle + t.Nice + t.Iowait + t.Irq + t.Softirq + t.Steal
	if runtime.GOOS != "linux" {
		total += t.Guest + t.GuestNice
	}
	return cpuTimes{total: total, busy: total - t.Idle - t.Iowait}
}

func busyPercent(prev, cur cpuTimes) float64 {
	dTotal := cur.total - prev.total
	dBusy := cur.busy - prev.busy
	if dBusy <= 0 {
		return 0
	}
	if dTotal <= 0 {
		return 100
	}
	return min(100, max(0, dBusy/dTotal*100))
}
