package telemetry

// ring keeps the last cap values; the oldest is overwritten first.
type ring[T any] struct {
	buf   []T
	next  int
	full  bool
	total uint64
}

func newRing[T any](capacity int) *ring[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &ring[T]{buf: make([]T, capacity)}
}

func (r *ring[T]) push(v T) {
	r.buf[r.next] = v
	r.next = (r.next + 1) % len(r.buf)
	if r.next == 0 {
		r.full = true
	}
	r.total++
}

func (r *ring[T]) len() int {
	if r.full {
		return len(r.buf)
	}
	return r.next
}

// items returns the retained values oldest first.
func (r *ring[T]) items() []T {
	n := r.len()
	out := make([]T, 0, n)
	start := 0
	if r.full {
		start = r.next
	}
	for i := range n {
		out = append(out, r.buf[(start+i)%len(r.buf)])
	}
	return out
}

func (r *ring[T]) reset() {
	clear(r.buf)
	r.next = 0
	r.full = false
}
