package dial

import (
	"context"
	"time"

	"github.com/rileyhilliard/adbdial/internal/logger"
)

// Worker repeatedly attempts the target until it sees success, the session
// stops, or its own time budget runs out.
type Worker struct {
	id       int
	exec     *Executor
	race     *Race
	state    *State
	budget   time.Duration
	pause    time.Duration
	classify Classifier // optional
	log      logger.Logger
}

// Classifier names why an attempt failed, e.g. "connection refused".
type Classifier func(output string, err error) string

// Run executes the attempt loop. The caller must have acquired a slot for
// this worker; Run releases it exactly once on return.
func (w *Worker) Run(ctx context.Context) {
	defer w.state.Release()

	start := time.Now()
	for !w.state.Stopped() && time.Since(start) < w.budget {
		res := w.exec.Attempt(ctx)

		matched, won := w.race.Observe(res)
		if matched {
			if won {
				w.log.Info("worker %d connected to %s: %s", w.id, res.Endpoint, res.Output)
			}
			return
		}
		if w.classify != nil {
			reason := w.classify(res.Output, res.Err)
			w.state.RecordFailure(reason)
			w.log.Debug("worker %d attempt failed after %.0fms: %s", w.id, res.LatencyMS(), reason)
		} else if res.Err != nil {
			w.log.Debug("worker %d attempt failed after %.0fms: %v", w.id, res.LatencyMS(), res.Err)
		}

		if w.pause > 0 {
			t := time.NewTimer(w.pause)
			select {
			case <-w.state.Done():
				t.Stop()
				return
			case <-t.C:
			}
		}
	}
}
