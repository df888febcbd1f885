package syncx

import "sync"

// DepthCounter is a per-goroutine counter that survives across separate
// top-level calls on the same goroutine. It exists to stop a callback
// from re-entering its caller to bypass a per-call depth guard: the
// nested call sees the accumulated depth, not a fresh zero.
//
// Counters on different goroutines are independent. Enter and Leave
// must pair on every exit path; Leave removes the map slot when the
// counter drops to zero so idle goroutines leave nothing behind.
type DepthCounter struct {
	mu    sync.Mutex
	depth map[uint64]uint
}

// Enter increments the current goroutine's counter and returns the new
// depth, 1 for the outermost call.
func (c *DepthCounter) Enter() uint {
	id := gid()
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.depth == nil {
		c.depth = make(map[uint64]uint)
	}
	c.depth[id]++
	return c.depth[id]
}

// Leave decrements the current goroutine's counter. Unpaired calls are
// a programmer error and panic.
func (c *DepthCounter) Leave() {
	id := gid()
	c.mu.Lock()
	defer c.mu.Unlock()
	d, ok := c.depth[id]
	if !ok || d == 0 {
		panic("syncx: DepthCounter.Leave without matching Enter")
	}
	if d == 1 {
		delete(c.depth, id)
		return
	}
	c.depth[id] = d - 1
}

// Depth returns the current goroutine's depth without changing it.
func (c *DepthCounter) Depth() uint {
	id := gid()
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.depth[id]
}
