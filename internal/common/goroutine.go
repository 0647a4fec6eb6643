package common

import (
	"context"
	"fmt"
	"os"
	"runtime"

	"github.com/ternarybob/arbor"
)

// SafeGo runs a function in a goroutine with panic recovery.
// Panics are logged but don't crash the service. Use this for async work
// like scheduled re-indexing where failure should not be fatal.
func SafeGo(logger arbor.ILogger, name string, fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				buf := make([]byte, 8192)
				n := runtime.Stack(buf, false)
				if logger != nil {
					logger.Error().
						Str("goroutine", name).
						Str("panic", fmt.Sprintf("%v", r)).
						Str("stack", string(buf[:n])).
						Msg("Goroutine panic recovered")
				} else {
					fmt.Fprintf(os.Stderr, "goroutine %s panic: %v\n%s\n", name, r, buf[:n])
				}
			}
		}()
		fn()
	}()
}

// SafeGoCtx runs a context-aware function in a goroutine with panic
// recovery.
func SafeGoCtx(ctx context.Context, logger arbor.ILogger, name string, fn func(context.Context)) {
	SafeGo(logger, name, func() {
		fn(ctx)
	})
}
