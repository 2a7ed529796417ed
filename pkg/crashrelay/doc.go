// Package crashrelay provides lightweight, pluggable crash reporting for
// long-running Go services.
//
// When a panic or significant error surfaces, the report that reaches a
// backend should carry the error's true origin: a raw return-address trace
// captured at the throw site, not at whatever boundary happened to observe
// it. crashrelay owns the two pieces of that plumbing: extracting the raw
// trace plus exception metadata into a Report, and dispatching that Report
// to exactly one process-wide Handler.
//
// # Core Components
//
// The library is organized around these concepts:
//
//   - Report: The canonical crash representation with raw addresses, exception type, and message
//   - Registry: Process-wide single-slot owner of the active Handler and the interception routine
//   - Handler: Destination capability for crash reports (stderr, spool, http, multi, async, noop)
//   - Extract: Pure conversion from a thrown value to a Report
//
// # Quick Start
//
// Register a handler once at startup, then let the interception routine run
// at goroutine boundaries:
//
//	crashrelay.Setup(stderr.NewHandler(stderr.WithVerbose()))
//
//	go func() {
//	    defer crashrelay.Intercept()
//	    // work that may crash; the crash still propagates after reporting
//	}()
//
// Handled errors the application wants recorded without crashing go through
// the explicit path:
//
//	if err := doWork(); err != nil {
//	    crashrelay.ReportError(ctx, err)
//	}
//
// # Design Principles
//
//   - Reporting never alters program behavior: Intercept re-panics the original value
//   - Handler failures are contained: a handler that errors or panics cannot replace the crash
//   - Degraded trace capture is not an error: a value with no trace yields an empty address list
//   - External dependencies live in handler and relay packages, not in the intake path
package crashrelay
