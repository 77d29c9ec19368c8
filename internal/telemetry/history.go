package telemetry

import "sync"

// DefaultHistorySize is the default number of data points kept per series.
const DefaultHistorySize = 60

// History is a fixed-size ring buffer of float64 readings, oldest dropped first.
// It backs the sparklines in the status display and is safe for concurrent use.
type History struct {
	mu    sync.RWMutex
	data  []float64
	head  int
	count int
}

// NewHistory creates a history holding at most size points.
func NewHistory(size int) *History {
	if size <= 0 {
		size = DefaultHistorySize
	}
	return &History{data: make([]float64, size)}
}

// Push appends a reading, overwriting the oldest once full.
func (h *History) Push(v float64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.data[h.head] = v
	h.head = (h.head + 1) % len(h.data)
	if h.count < len(h.data) {
		h.count++
	}
}

// Last returns up to n readings in chronological order (oldest first).
func (h *History) Last(n int) []float64 {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if n <= 0 || h.count == 0 {
		return nil
	}
	if n > h.count {
		n = h.count
	}

	size := len(h.data)
	out := make([]float64, n)
	// head is the next write slot, so the newest reading sits at head-1.
	start := (h.head - n + size) % size
	for i := 0; i < n; i++ {
		out[i] = h.data[(start+i)%size]
	}
	return out
}

// All returns every stored reading, oldest first.
func (h *History) All() []float64 {
	return h.Last(h.Len())
}

// Len returns the number of stored readings.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.count
}
