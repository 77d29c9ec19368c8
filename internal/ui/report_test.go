package ui

import (
	"testing"
	"time"

	"github.com/rileyhilliard/adbdial/internal/dial"
	"github.com/stretchr/testify/assert"
)

func TestRenderSuccess(t *testing.T) {
	out := RenderSuccess(dial.Outcome{
		Phase:    dial.Succeeded,
		Endpoint: "10.0.0.2:5555",
		Attempts: 1,
		Elapsed:  1234 * time.Millisecond,
	})

	assert.Contains(t, out, "Connected to 10.0.0.2:5555")
	assert.Contains(t, out, "1 attempt")
	assert.NotContains(t, out, "1 attempts")
}

func TestRenderFailureReport(t *testing.T) {
	out := RenderFailureReport(dial.Outcome{
		Phase:    dial.StoppedNoSuccess,
		Reason:   dial.ReasonDeadline,
		Attempts: 120,
		Spawned:  8,
		Elapsed:  30 * time.Second,
		Failures: map[string]int64{"connection refused": 100, "connection timed out": 20},
	}, "10.0.0.2:5555")

	assert.Contains(t, out, "Couldn't connect to 10.0.0.2:5555")
	assert.Contains(t, out, "120 attempts")
	assert.Contains(t, out, "connection refused (100 of 120)")
	for _, cause := range FailureCauses {
		assert.Contains(t, out, cause)
	}
	assert.NotContains(t, out, "No workers started")
}

func TestRenderFailureReport_Interrupted(t *testing.T) {
	out := RenderFailureReport(dial.Outcome{
		Phase:  dial.StoppedNoSuccess,
		Reason: dial.ReasonInterrupt,
	}, "10.0.0.2:5555")

	assert.Contains(t, out, "Stopped dialing 10.0.0.2:5555")
	assert.Contains(t, out, "No workers started")
	assert.NotContains(t, out, "Most attempts failed")
}

func TestRenderHeader(t *testing.T) {
	out := RenderHeader(HeaderInfo{
		Version:  "v1.2.0",
		Target:   "10.0.0.2:5555",
		Bridge:   "adb via lab-box",
		Deadline: 30 * time.Second,
	})

	assert.Contains(t, out, "v1.2.0")
	assert.Contains(t, out, "dialing 10.0.0.2:5555 with adb via lab-box for up to 30s")
}
