package ahttp

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/samber/lo"
)

// Frame is one entry of a captured call trace, independent of the runtime's
// own representation so it can be filtered and rendered uniformly.
type Frame struct {
	Function string
	File     string
	Line     int
}

// Trace is a captured call trace with adapter-internal frames folded out.
type Trace []Frame

// traceDenyPrefixes lists function-name prefixes that are folded out of
// captured traces: this module's own frames and the transport machinery
// beneath it. User middleware and handlers keep their frames, including
// external test packages (their functions carry a "_test" package suffix
// that no prefix below matches).
var traceDenyPrefixes = []string{
	"github.com/advdv/ahttp.",
	"net/http.",
	"runtime.",
	"testing.",
}

// captureTrace records the current call stack, skipping skip frames on top
// of captureTrace itself, and applies the deny list.
func captureTrace(skip int) Trace {
	pcs := make([]uintptr, 64)
	n := runtime.Callers(skip+2, pcs)
	if n == 0 {
		return nil
	}

	trace := make(Trace, 0, n)
	frames := runtime.CallersFrames(pcs[:n])

	for {
		frame, more := frames.Next()
		if frame.Function != "" {
			trace = append(trace, Frame{
				Function: frame.Function,
				File:     frame.File,
				Line:     frame.Line,
			})
		}

		if !more {
			break
		}
	}

	return filterTrace(trace)
}

// filterTrace returns the frames not matched by the deny list.
func filterTrace(trace Trace) Trace {
	return lo.Filter(trace, func(frame Frame, _ int) bool {
		return !lo.SomeBy(traceDenyPrefixes, func(prefix string) bool {
			return strings.HasPrefix(frame.Function, prefix)
		})
	})
}

// String renders the trace as one indented "at" row per frame.
func (t Trace) String() string {
	var sb strings.Builder
	for _, frame := range t {
		fmt.Fprintf(&sb, "  at %s (%s:%d)\n", frame.Function, frame.File, frame.Line)
	}

	return sb.String()
}
