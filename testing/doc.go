// Package testing provides test utilities for the lapse library.
//
// This package offers helpers for exercising expiry controllers and the NATS
// transport in tests. It follows Go's convention of providing testing
// utilities in a dedicated package (similar to net/http/httptest).
//
// Key utilities:
//   - NewManualClock: Deterministic clock with explicit time advancement
//   - NewTestLogger: Logger writing through testing.T
//   - StartEmbeddedNATS: Single in-process NATS server with JetStream
//
// Example usage:
//
//	import (
//	    "testing"
//	    lapsetest "github.com/policyforge/lapse/testing"
//	)
//
//	func TestMyComponent(t *testing.T) {
//	    clk := lapsetest.NewManualClock(time.Now())
//	    // ... create a controller with lapse.WithClock(clk)
//	    clk.Advance(10 * time.Minute)
//	}
package testing
