// Package ring provides a bounded FIFO buffer used for the sampler's
// snapshot history. When the buffer is at capacity, pushing evicts the
// oldest entry; the newest entry is never dropped.
//
// The buffer is not safe for concurrent use; callers hold their own lock.
package ring

// Buffer is a FIFO ring over a circular slice. A capacity of 0 means
// unbounded: the buffer grows and never evicts.
type Buffer[T any] struct {
	items []T
	head  int // index of the oldest entry
	size  int
	cap   int // 0 = unbounded
}

// New returns a buffer bounded to the given capacity. capacity <= 0 yields
// an unbounded buffer.
func New[T any](capacity int) *Buffer[T] {
	b := &Buffer[T]{}
	if capacity > 0 {
		b.cap = capacity
		b.items = make([]T, capacity)
	}
	return b
}

// Push appends v, evicting the oldest entry first when the buffer is at
// capacity.
func (b *Buffer[T]) Push(v T) {
	if b.cap == 0 {
		b.items = append(b.items, v)
		b.size++
		return
	}
	if b.size == b.cap {
		// Overwrite the oldest slot and advance the head.
		b.items[b.head] = v
		b.head = (b.head + 1) % b.cap
		return
	}
	b.items[(b.head+b.size)%b.cap] = v
	b.size++
}

// Len returns the number of entries currently held.
func (b *Buffer[T]) Len() int {
	return b.size
}

// Items returns a copy of all entries in FIFO order (oldest first).
func (b *Buffer[T]) Items() []T {
	out := make([]T, 0, b.size)
	if b.cap == 0 {
		return append(out, b.items...)
	}
	for i := 0; i < b.size; i++ {
		out = append(out, b.items[(b.head+i)%b.cap])
	}
	return out
}

// Latest returns the most recently pushed entry, if any.
func (b *Buffer[T]) Latest() (T, bool) {
	var zero T
	if b.size == 0 {
		return zero, false
	}
	if b.cap == 0 {
		return b.items[len(b.items)-1], true
	}
	return b.items[(b.head+b.size-1)%b.cap], true
}
