package schedule

import "sync"

// FrameThrottle coalesces requests until the next frame boundary.
// Any number of Request calls between two Flush calls apply once, with the
// latest value (trailing edge).
type FrameThrottle[T any] struct {
	mu      sync.Mutex
	pending bool
	latest  T
}

// Request records v to be applied at the next frame.
func (t *FrameThrottle[T]) Request(v T) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.latest = v
	t.pending = true
}

// Pending reports whether a request is waiting for the next frame.
func (t *FrameThrottle[T]) Pending() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pending
}

// Flush applies the latest request, if any. It is called once per frame tick
// and reports whether apply ran.
func (t *FrameThrottle[T]) Flush(apply func(T)) bool {
	t.mu.Lock()
	if !t.pending {
		t.mu.Unlock()
		return false
	}
	v := t.latest
	t.pending = false
	t.mu.Unlock()

	apply(v)
	return true
}
