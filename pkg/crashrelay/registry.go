// registry.go owns the process-wide handler slot and the interception
// routine that feeds it.

package crashrelay

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Registry is the process-wide single-slot owner of the active Handler.
//
// The slot holds at most one handler. Setup atomically replaces it
// (last-writer-wins); there is no removal operation, handlers are replaced
// for the life of the process. Reads and writes of the slot are a single
// atomic pointer swap, so interception on one goroutine always observes a
// fully written handler reference from Setup on another.
type Registry struct {
	slot atomic.Pointer[Handler]

	logger        zerolog.Logger
	scrubber      *Scrubber
	captureSystem bool
	start         time.Time
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithLogger sets the logger used to surface contained handler failures.
// If not provided, failures are silently swallowed.
func WithLogger(logger zerolog.Logger) RegistryOption {
	return func(r *Registry) {
		r.logger = logger
	}
}

// WithScrubber configures the registry with a custom scrubber configuration.
func WithScrubber(cfg ScrubberConfig) RegistryOption {
	return func(r *Registry) {
		r.scrubber = NewScrubber(cfg)
	}
}

// WithDefaultScrubbing enables scrubbing with production-safe defaults.
func WithDefaultScrubbing() RegistryOption {
	return func(r *Registry) {
		r.scrubber = NewScrubber(DefaultScrubberConfig())
	}
}

// WithoutSystemState disables the per-report system metrics snapshot.
func WithoutSystemState() RegistryOption {
	return func(r *Registry) {
		r.captureSystem = false
	}
}

// NewRegistry creates a Registry with an empty handler slot.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		logger:        zerolog.Nop(),
		captureSystem: true,
		start:         time.Now(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Setup atomically installs h as the active handler, replacing any previous
// one. Re-registering replaces, never duplicates delivery. A nil handler is
// ignored; expressing "no handler" is done by never calling Setup.
func (r *Registry) Setup(h Handler) {
	if h == nil {
		return
	}
	r.slot.Store(&h)
}

// Active reports whether a handler is currently installed.
func (r *Registry) Active() bool {
	return r.slot.Load() != nil
}

// Report records a handled error: a value caught deliberately by application
// code that should be recorded without crashing. The report is extracted,
// enriched, and delivered synchronously on the calling goroutine. With no
// handler installed this is a silent no-op; reports are never buffered for
// later delivery.
func (r *Registry) Report(ctx context.Context, v any) {
	r.deliver(ctx, Extract(v))
}

// Intercept is the interception routine. Defer it at goroutine boundaries;
// it fires once per uncaught panic, delivers the report synchronously, and
// then re-panics the original value so the process terminates exactly as it
// would have without crashrelay. It never swallows a crash.
//
//	go func() {
//	    defer registry.Intercept()
//	    // ...
//	}()
func (r *Registry) Intercept() {
	rec := recover()
	if rec == nil {
		return
	}
	r.reportPanic(context.Background(), rec)
	panic(rec)
}

// reportPanic builds and delivers the report for a recovered panic value.
// Must run while the panicking frames are still on the stack so the throw
// site is recoverable even when the value itself carried no trace.
func (r *Registry) reportPanic(ctx context.Context, rec any) {
	report := Extract(rec)
	if len(report.Addresses) == 0 {
		report.Addresses = capturePanicSite()
	}
	r.deliver(ctx, report)
}

// Recover is the boundary form of Intercept for callers that handle the
// panic instead of crashing: defer it to record an in-flight panic and
// swallow it. Like recover itself, it only takes effect when deferred
// directly; wrapping it in another function leaves the panic uncaught.
//
//	go func() {
//	    defer registry.Recover(ctx)
//	    // ...
//	}()
func (r *Registry) Recover(ctx context.Context) {
	if rec := recover(); rec != nil {
		r.reportPanic(ctx, rec)
	}
}

// Guard runs fn with the interception routine installed.
func (r *Registry) Guard(fn func()) {
	defer r.Intercept()
	fn()
}

// deliver enriches the report and hands it to the active handler. Handler
// errors and panics are contained here: a failing handler must not replace
// the original crash's diagnostics or re-trigger interception.
func (r *Registry) deliver(ctx context.Context, report Report) {
	hp := r.slot.Load()
	if hp == nil {
		return
	}
	h := *hp

	report = r.enrich(report)

	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error().Interface("panic", rec).
				Str("event_id", report.EventID).
				Msg("crash handler panicked")
		}
	}()

	if err := h.Handle(ctx, report); err != nil {
		r.logger.Error().Err(err).
			Str("event_id", report.EventID).
			Msg("crash handler failed")
	}
}

// enrich fills the identity and context fields the extractor leaves empty.
func (r *Registry) enrich(report Report) Report {
	if report.EventID == "" {
		report.EventID = uuid.NewString()
	}
	if report.Timestamp.IsZero() {
		report.Timestamp = time.Now()
	}

	if r.scrubber != nil {
		report.Message = r.scrubber.ScrubMessage(report.Message)
		report.Metadata = r.scrubber.ScrubMetadata(report.Metadata)
	}

	report.Fingerprint = Fingerprint(report)

	if r.captureSystem && report.System == nil {
		report.System = CaptureSystemState(r.start)
	}

	return report
}

// Default is the process-wide registry. A process has one crash surface, so
// most applications use this instance through the package-level functions.
var Default = NewRegistry()

// Setup installs h on the Default registry.
func Setup(h Handler) { Default.Setup(h) }

// ReportError records a handled error on the Default registry.
func ReportError(ctx context.Context, err error) { Default.Report(ctx, err) }

// Intercept is the Default registry's interception routine; defer it at
// goroutine boundaries. recover only observes a panic from a directly
// deferred function, so this cannot delegate to the method.
func Intercept() {
	rec := recover()
	if rec == nil {
		return
	}
	Default.reportPanic(context.Background(), rec)
	panic(rec)
}

// Recover records and swallows an in-flight panic on the Default registry.
// Defer it directly; see Registry.Recover.
func Recover(ctx context.Context) {
	if rec := recover(); rec != nil {
		Default.reportPanic(ctx, rec)
	}
}

// Guard runs fn with the Default registry's interception routine installed.
func Guard(fn func()) { Default.Guard(fn) }
