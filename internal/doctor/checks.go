// Package doctor runs preflight diagnostics for adbdial: config, adb,
// local load, the SSH relay, and metric exporters.
package doctor

import (
	"context"
	"fmt"
	"sync"
)

// CheckStatus represents the result status of a check.
type CheckStatus int

const (
	StatusPass CheckStatus = iota
	StatusWarn
	StatusFail
)

// String returns a human-readable status string.
func (s CheckStatus) String() string {
	switch s {
	case StatusPass:
		return "pass"
	case StatusWarn:
		return "warn"
	case StatusFail:
		return "fail"
	default:
		return "unknown"
	}
}

// Categories in display order.
const (
	CategoryConfig  = "CONFIG"
	CategoryBridge  = "ADB"
	CategorySystem  = "SYSTEM"
	CategoryRelay   = "RELAY"
	CategoryMetrics = "METRICS"
)

// CategoryOrder is the order categories are reported in.
var CategoryOrder = []string{CategoryConfig, CategoryBridge, CategorySystem, CategoryRelay, CategoryMetrics}

// CheckResult contains the outcome of running a check.
type CheckResult struct {
	Name       string      `json:"name"`
	Status     CheckStatus `json:"status"`
	Message    string      `json:"message"`
	Suggestion string      `json:"suggestion,omitempty"`
}

// Check defines the interface for diagnostic checks.
type Check interface {
	// Name returns the check's identifier.
	Name() string

	// Category returns one of the Category constants.
	Category() string

	// Run executes the check and returns the result.
	Run(ctx context.Context) CheckResult
}

// RunAll executes all checks in order and returns the results.
func RunAll(ctx context.Context, checks []Check) []CheckResult {
	results := make([]CheckResult, len(checks))
	for i, check := range checks {
		results[i] = check.Run(ctx)
	}
	return results
}

// RunAllParallel executes all checks concurrently. Results keep the order
// of checks.
func RunAllParallel(ctx context.Context, checks []Check) []CheckResult {
	results := make([]CheckResult, len(checks))
	var wg sync.WaitGroup

	for i, check := range checks {
		wg.Add(1)
		go func(idx int, c Check) {
			defer wg.Done()
			results[idx] = c.Run(ctx)
		}(i, check)
	}

	wg.Wait()
	return results
}

// GroupByCategory maps each category to the indices of its checks.
func GroupByCategory(checks []Check) map[string][]int {
	grouped := make(map[string][]int)
	for i, check := range checks {
		grouped[check.Category()] = append(grouped[check.Category()], i)
	}
	return grouped
}

// CountByStatus counts results by status.
func CountByStatus(results []CheckResult) map[CheckStatus]int {
	counts := make(map[CheckStatus]int)
	for _, r := range results {
		counts[r.Status]++
	}
	return counts
}

// HasFailures returns true if any result has a fail status.
func HasFailures(results []CheckResult) bool {
	for _, r := range results {
		if r.Status == StatusFail {
			return true
		}
	}
	return false
}

// HasIssues returns true if any result has a fail or warn status.
func HasIssues(results []CheckResult) bool {
	for _, r := range results {
		if r.Status == StatusFail || r.Status == StatusWarn {
			return true
		}
	}
	return false
}

// Summary returns a summary string of the check results.
func Summary(results []CheckResult) string {
	counts := CountByStatus(results)
	total := counts[StatusWarn] + counts[StatusFail]
	if total == 0 {
		return "Everything looks good"
	}
	return fmt.Sprintf("%d issue%s found", total, pluralize(total))
}

func pluralize(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
