// Package emergency implements the fatal-error path: before an
// InvariantViolation or a terminating signal takes the process down, the
// in-memory board is written to a recovery file so the session's work
// survives the crash. Grounded on error.c's MyFatal -> EmergencySave ->
// exit(1) chain and its CatchSignal signal handler.
package emergency

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// SaveFunc writes the current board to path; the caller (cmd/pcb) wires
// this to boardfile.Write bound to the live board, keeping this package
// free of a dependency on the model and boardfile packages.
type SaveFunc func(path string) error

var (
	mu       sync.Mutex
	fired    bool
	saveFn   SaveFunc
	saveDir  = os.TempDir()
)

// Register installs the board-save callback. Call once at startup,
// before any signal handler is armed.
func Register(fn SaveFunc) {
	mu.Lock()
	defer mu.Unlock()
	saveFn = fn
}

// SetSaveDir overrides where the emergency file is written; defaults to
// the OS temp directory.
func SetSaveDir(dir string) {
	mu.Lock()
	defer mu.Unlock()
	saveDir = dir
}

// Save writes an emergency recovery file and reports its path. It is
// non-reentrant: a second call while the first is still running (e.g.
// from a signal arriving during the save) returns immediately with no
// effect, matching the source's single fire-then-exit behavior — there
// is no scenario where a second emergency save is more useful than the
// first.
func Save() (string, error) {
	mu.Lock()
	if fired {
		mu.Unlock()
		return "", nil
	}
	fired = true
	fn := saveFn
	dir := saveDir
	mu.Unlock()

	if fn == nil {
		return "", fmt.Errorf("emergency: no save function registered")
	}
	path := filepath.Join(dir, fmt.Sprintf("pcb_recovery_%d.pcb", time.Now().UnixNano()))
	if err := fn(path); err != nil {
		return "", err
	}
	return path, nil
}

// Fatal mirrors error.c's MyFatal: save, report, then exit(1). Its caller
// is the signal handler installed by CatchSignals.
func Fatal(format string, args ...any) {
	path, err := Save()
	msg := fmt.Sprintf(format, args...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %s (emergency save failed: %v)\n", msg, err)
	} else if path != "" {
		fmt.Fprintf(os.Stderr, "fatal: %s (recovery saved to %s)\n", msg, path)
	} else {
		fmt.Fprintf(os.Stderr, "fatal: %s\n", msg)
	}
	os.Exit(1)
}
