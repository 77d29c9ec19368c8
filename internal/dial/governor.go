package dial

import (
	"context"
	"time"

	"github.com/rileyhilliard/adbdial/internal/logger"
	"github.com/rileyhilliard/adbdial/internal/telemetry"
)

// Governor grows the worker pool while the machine has headroom. It never
// stops running workers; under load it simply spawns nothing.
type Governor struct {
	state     *State
	sampler   telemetry.Sampler
	pool      *Pool
	newWorker func(id int) *Worker

	interval time.Duration
	batch    int
	cpuMax   float64
	memMax   float64
	log      logger.Logger

	nextID int
}

// NewGovernor creates a governor that starts workers built by newWorker on pool.
func NewGovernor(state *State, sampler telemetry.Sampler, pool *Pool, newWorker func(id int) *Worker, s Settings, log logger.Logger) *Governor {
	return &Governor{
		state:     state,
		sampler:   sampler,
		pool:      pool,
		newWorker: newWorker,
		interval:  s.GovernorInterval,
		batch:     s.SpawnBatch,
		cpuMax:    s.CPUThreshold,
		memMax:    s.MemThreshold,
		log:       log,
	}
}

// Run evaluates load once per interval until the session stops.
func (g *Governor) Run(ctx context.Context) {
	ticker := time.NewTicker(g.interval)
	defer ticker.Stop()

	for {
		g.cycle(ctx)
		select {
		case <-g.state.Done():
			return
		case <-ticker.C:
		}
	}
}

// cycle takes one telemetry reading and spawns up to one batch of workers.
// It returns how many workers were started.
func (g *Governor) cycle(ctx context.Context) int {
	if g.state.Stopped() {
		return 0
	}

	s, err := g.sampler.Sample(ctx)
	if err != nil {
		g.log.Debug("telemetry unavailable, holding pool at %d: %v", g.state.Active(), err)
		g.state.SetThrottled(true)
		return 0
	}
	if s.Over(g.cpuMax, g.memMax) {
		g.state.SetThrottled(true)
		return 0
	}
	g.state.SetThrottled(false)

	n := g.state.Acquire(g.batch)
	for i := 0; i < n; i++ {
		g.nextID++
		w := g.newWorker(g.nextID)
		g.pool.Go(func() { w.Run(ctx) })
	}
	return n
}
