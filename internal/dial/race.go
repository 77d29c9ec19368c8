package dial

import "strings"

// IsSuccess reports whether attempt text contains marker, ignoring case.
// "already connected to ..." therefore also counts as success.
func IsSuccess(text, marker string) bool {
	if marker == "" {
		return false
	}
	return strings.Contains(strings.ToLower(text), strings.ToLower(marker))
}

// Race decides which attempt, if any, is the session's success.
type Race struct {
	state  *State
	marker string
}

// NewRace creates a race over state using marker as the success test.
func NewRace(state *State, marker string) *Race {
	return &Race{state: state, marker: marker}
}

// Observe inspects a result. matched means the output looked like success;
// won means this result was the first to claim it.
func (r *Race) Observe(res Result) (matched, won bool) {
	if !IsSuccess(res.Text(), r.marker) {
		return false, false
	}
	return true, r.state.Win(res.Endpoint)
}
