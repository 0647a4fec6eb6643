package common

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"
)

// crashLogDir is where crash files are written, set during startup.
var crashLogDir = "./logs"

// InstallCrashHandler sets up process-level crash protection. Call at the
// very start of main() together with a deferred HandleCrash().
func InstallCrashHandler(logDir string) {
	if logDir != "" {
		crashLogDir = logDir
	}
	if err := os.MkdirAll(crashLogDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "CRASH: Failed to create log directory: %v\n", err)
	}
}

// HandleCrash writes a crash file with the panic value and stack trace,
// then re-panics. Intended for use as `defer common.HandleCrash()`.
func HandleCrash() {
	r := recover()
	if r == nil {
		return
	}

	buf := make([]byte, 64*1024)
	n := runtime.Stack(buf, true)

	name := fmt.Sprintf("crash_%s.log", time.Now().Format("20060102_150405"))
	path := filepath.Join(crashLogDir, name)
	content := fmt.Sprintf("panic: %v\n\n%s\n", r, buf[:n])
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		fmt.Fprintf(os.Stderr, "CRASH: Failed to write crash file: %v\n", err)
	}

	fmt.Fprintf(os.Stderr, "CRASH: %v (details: %s)\n", r, path)
	panic(r)
}
