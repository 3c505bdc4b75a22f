// Package dedup implements the bounded recency window used to suppress
// near-duplicate transactions.
//
// The window is an approximate dedup: once more than capacity distinct keys
// have been seen, the oldest keys are evicted and may be accepted again as
// new. That trade of memory for perfect recall is deliberate; what must
// hold exactly is that the membership set and the insertion-ordered ring
// always contain the same keys.
package dedup

// Key identifies a transaction for duplicate detection: the subject user
// and the creation timestamp truncated to minute granularity.
type Key struct {
	UserSeq int64
	Minute  string
}

// KeyFor builds a Key from a user sequence and a canonical create_dt
// ("YYYY-MM-DD HH:MM:SS" truncates to "YYYY-MM-DD HH:MM").
func KeyFor(userSeq int64, createDT string) Key {
	minute := createDT
	if len(minute) > 16 {
		minute = minute[:16]
	}
	return Key{UserSeq: userSeq, Minute: minute}
}

// Window is a bounded recency set of keys. It is mutated only by the
// single worker loop and needs no locking.
type Window struct {
	ring     []Key
	head     int
	count    int
	capacity int
	seen     map[Key]struct{}

	evictions uint64
}

// NewWindow creates a Window retaining at most capacity distinct keys.
func NewWindow(capacity int) *Window {
	if capacity <= 0 {
		capacity = 50000 // Default size
	}
	return &Window{
		ring:     make([]Key, capacity),
		capacity: capacity,
		seen:     make(map[Key]struct{}, capacity),
	}
}

// Observe reports whether key was seen within the retained window. A
// duplicate is not re-recorded; a new key is recorded, evicting the oldest
// key from both the ring and the membership set in the same step once the
// window is at capacity.
func (w *Window) Observe(key Key) bool {
	if _, ok := w.seen[key]; ok {
		return true
	}

	if w.count == w.capacity {
		delete(w.seen, w.ring[w.head])
		w.ring[w.head] = key
		w.head = (w.head + 1) % w.capacity
		w.evictions++
	} else {
		w.ring[(w.head+w.count)%w.capacity] = key
		w.count++
	}
	w.seen[key] = struct{}{}

	return false
}

// Contains reports whether key is currently retained, without recording it.
func (w *Window) Contains(key Key) bool {
	_, ok := w.seen[key]
	return ok
}

// Len returns the number of keys currently retained.
func (w *Window) Len() int {
	return w.count
}

// Cap returns the maximum number of keys the window retains.
func (w *Window) Cap() int {
	return w.capacity
}

// Evictions returns the number of keys evicted by capacity pressure.
func (w *Window) Evictions() uint64 {
	return w.evictions
}

// Keys returns the retained keys in insertion order, oldest first.
func (w *Window) Keys() []Key {
	out := make([]Key, 0, w.count)
	for i := 0; i < w.count; i++ {
		out = append(out, w.ring[(w.head+i)%w.capacity])
	}
	return out
}
