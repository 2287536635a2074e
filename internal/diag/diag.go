// Package diag centralizes the fatal-diagnostic path used by every
// compiler stage. Nothing in hwir, hwir/pass, rtl, frontend, or ssair
// recovers from an error: a violated invariant is always a terminated
// process, never a returned error value, so there is exactly one place
// that knows how to log and exit.
package diag

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/tebeka/atexit"
)

// exitFunc is swapped out in tests so that Fatalf can be exercised
// without killing the test binary.
var exitFunc = atexit.Exit

// Fatalf logs msg (formatted like fmt.Sprintf) at slog.Error level and
// terminates the process through atexit, so handlers registered with
// atexit.Register (e.g. flushing a partially-written RTL file) still run.
func Fatalf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	slog.Error(msg)
	if os.Getenv("HLSC_DIAG_TESTING") != "" {
		panic(fmt.Sprintf("diag.Fatalf exit(%d)", 1))
	}
	exitFunc(1)
}

// Require aborts with msg if cond is false. Kept separate from Fatalf so
// call sites read as an assertion rather than a formatted log line.
func Require(cond bool, format string, args ...interface{}) {
	if !cond {
		Fatalf(format, args...)
	}
}

// RegisterOutputCleanup arranges for f to run during a Fatalf-triggered
// exit, mirroring the teacher's use of atexit to flush state before
// process termination.
func RegisterOutputCleanup(name string, f func()) {
	atexit.Register(f)
	_ = name // name is only used for readability at call sites
}

func init() {
	if os.Getenv("HLSC_DIAG_TESTING") != "" {
		exitFunc = func(code int) { panic(fmt.Sprintf("diag.Fatalf exit(%d)", code)) }
	}
}
