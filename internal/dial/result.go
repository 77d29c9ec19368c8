package dial

import "time"

// Result is the outcome of one `adb connect` attempt.
type Result struct {
	Endpoint string
	// Output is the trimmed stdout of the bridge command.
	Output string
	// Err is set when the bridge itself failed (timeout, launch failure).
	Err     error
	Latency time.Duration
	At      time.Time
}

// Text is what the race inspects: the command output, or the failure
// description when the bridge produced none.
func (r Result) Text() string {
	if r.Err != nil && r.Output == "" {
		return r.Err.Error()
	}
	return r.Output
}

// LatencyMS returns the latency in milliseconds with sub-millisecond precision.
func (r Result) LatencyMS() float64 {
	return float64(r.Latency) / float64(time.Millisecond)
}
