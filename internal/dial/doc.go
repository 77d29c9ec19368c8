// Package dial runs a self-throttling swarm of `adb connect` attempts against
// one target until one succeeds, the session deadline passes, or the user
// interrupts.
//
// A Session wires four pieces around one shared State:
//
//   - Governor grows the worker pool in small batches while local CPU and
//     memory stay under their thresholds.
//   - Worker loops Executor attempts, handing every outcome to the Race.
//   - Race decides success and records the single winning endpoint.
//   - Reporter samples State and telemetry once per interval and renders a Frame.
//
// State is the only shared mutable data; one mutex guards its counters, the
// race outcome, and the active worker count.
package dial
