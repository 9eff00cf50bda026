package store

import "time"

// Record is one entry of the change history.
//
// Previous holds the value the key had before the change; it is nil when the
// key was absent.
type Record struct {
	Key       string    `json:"key"`
	Previous  any       `json:"previous"`
	Timestamp time.Time `json:"timestamp"`
}

// ring is a fixed-capacity buffer of records. Once full, pushing evicts the
// oldest record.
type ring struct {
	buf   []Record
	start int
	size  int
}

func newRing(capacity int) *ring {
	if capacity < 1 {
		capacity = 1
	}
	return &ring{buf: make([]Record, capacity)}
}

func (r *ring) push(rec Record) {
	end := (r.start + r.size) % len(r.buf)
	r.buf[end] = rec
	if r.size < len(r.buf) {
		r.size++
		return
	}
	r.start = (r.start + 1) % len(r.buf)
}

// records returns the buffered records in chronological order.
func (r *ring) records() []Record {
	out := make([]Record, r.size)
	for i := 0; i < r.size; i++ {
		out[i] = r.buf[(r.start+i)%len(r.buf)]
	}
	return out
}
