// extract.go converts thrown values into crash reports and captures raw
// return-address traces.

package crashrelay

import (
	"errors"
	"fmt"
	"reflect"
	"runtime"

	pkgerrors "github.com/pkg/errors"
)

// maxTraceDepth bounds the capture buffer so trace collection allocates a
// single fixed-size slice even inside an already-failing process.
const maxTraceDepth = 128

// pcCarrier is implemented by values that recorded raw program counters at
// creation time.
type pcCarrier interface {
	Callers() []uintptr
}

// stackTracer is the carrier interface implemented by github.com/pkg/errors
// values created with New, Errorf, WithStack, or Wrap.
type stackTracer interface {
	StackTrace() pkgerrors.StackTrace
}

// Extract converts a thrown value into a Report. It is a pure function of
// its input: it does not mutate the value, fills only the address, type, and
// message fields, and never fails. A value that carries no trace yields an
// empty address sequence, which is a valid degraded result.
func Extract(v any) Report {
	return Report{
		Addresses:     addressesOf(v),
		ExceptionType: exceptionType(v),
		Message:       messageOf(v),
	}
}

// Capture records the raw return addresses of the calling goroutine,
// most-recent-first. skip counts frames to omit above the caller of Capture;
// 0 starts at the caller itself.
func Capture(skip int) StackTrace {
	pcs := make([]uintptr, maxTraceDepth)
	// +2 skips runtime.Callers and Capture itself.
	n := runtime.Callers(skip+2, pcs)
	return StackTrace(pcs[:n:n])
}

// capturePanicSite records the stack inside a deferred interception routine
// while a panic is unwinding. The frames above and including runtime.gopanic
// belong to the interception machinery, not the throw site, so they are
// trimmed; the first remaining address is the panic site.
func capturePanicSite() StackTrace {
	pcs := make([]uintptr, maxTraceDepth)
	n := runtime.Callers(2, pcs)
	trace := pcs[:n:n]

	for i, pc := range trace {
		fn := runtime.FuncForPC(pc)
		if fn != nil && fn.Name() == "runtime.gopanic" {
			return StackTrace(trace[i+1:])
		}
	}
	// Not unwinding a panic (or the runtime hid gopanic); best effort.
	return StackTrace(trace)
}

// addressesOf introspects a thrown value for a recorded trace. For errors the
// whole Unwrap chain is walked and the deepest carrier wins, so the result
// reflects the original throw site rather than a wrapping layer.
func addressesOf(v any) StackTrace {
	if err, ok := v.(error); ok {
		return deepestTrace(err)
	}
	if c, ok := v.(pcCarrier); ok {
		return copyTrace(c.Callers())
	}
	return nil
}

func deepestTrace(err error) StackTrace {
	var trace StackTrace
	for err != nil {
		if c, ok := err.(pcCarrier); ok {
			trace = copyTrace(c.Callers())
		} else if st, ok := err.(stackTracer); ok {
			trace = fromFrames(st.StackTrace())
		}
		err = errors.Unwrap(err)
	}
	return trace
}

// fromFrames converts a pkg/errors trace to raw addresses. Frame is a
// program counter; values pass through untransformed.
func fromFrames(frames pkgerrors.StackTrace) StackTrace {
	if len(frames) == 0 {
		return nil
	}
	out := make(StackTrace, len(frames))
	for i, f := range frames {
		out[i] = uintptr(f)
	}
	return out
}

func copyTrace(pcs []uintptr) StackTrace {
	if len(pcs) == 0 {
		return nil
	}
	out := make(StackTrace, len(pcs))
	copy(out, pcs)
	return out
}

// exceptionType returns the fully-qualified runtime type name of a thrown
// value, e.g. "*github.com/strongdm/crash-relay/pkg/crashrelay.testError".
func exceptionType(v any) string {
	if v == nil {
		return "nil"
	}
	return qualifiedTypeName(reflect.TypeOf(v))
}

func qualifiedTypeName(t reflect.Type) string {
	stars := ""
	for t.Kind() == reflect.Pointer {
		stars += "*"
		t = t.Elem()
	}
	if pkg := t.PkgPath(); pkg != "" {
		return stars + pkg + "." + t.Name()
	}
	// Builtins and unnamed types have no package path.
	return stars + t.String()
}

// messageOf renders a thrown value's human-readable description. The result
// is always a string; a value with no description yields "".
func messageOf(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case error:
		return x.Error()
	case string:
		return x
	default:
		return fmt.Sprint(x)
	}
}
