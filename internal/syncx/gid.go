// Package syncx holds the concurrency primitives the bundle and
// resolver need beyond what sync provides: a reentrant reader-writer
// lock and goroutine-local counters.
package syncx

import (
	"bytes"
	"runtime"
	"strconv"
)

// gid returns the current goroutine's id, parsed from the stack header
// "goroutine N [running]:". The header format is stable across Go
// releases; the parse is a few dozen nanoseconds and only happens on
// lock and guard boundaries, not in hot loops.
func gid() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	frame := buf[:n]
	frame = bytes.TrimPrefix(frame, []byte("goroutine "))
	if i := bytes.IndexByte(frame, ' '); i >= 0 {
		frame = frame[:i]
	}
	id, err := strconv.ParseUint(string(frame), 10, 64)
	if err != nil {
		return 0
	}
	return id
}
