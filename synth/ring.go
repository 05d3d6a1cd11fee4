package synth

import "sync/atomic"

// EventRing is a lock-free single-producer single-consumer queue of events.
// The producer is a MIDI input goroutine; the consumer is the audio callback.
// Neither side ever blocks: a full ring drops the new event and counts it.
type EventRing struct {
	buf  []Event
	mask uint64

	head atomic.Uint64 // next slot to read, owned by consumer
	tail atomic.Uint64 // next slot to write, owned by producer

	dropped atomic.Uint64
}

// NewEventRing returns a ring holding at least size events. Size is rounded up
// to a power of two.
func NewEventRing(size int) *EventRing {
	n := 1
	for n < size {
		n <<= 1
	}
	return &EventRing{
		buf:  make([]Event, n),
		mask: uint64(n - 1),
	}
}

// Push enqueues ev. It reports false if the ring was full.
func (r *EventRing) Push(ev Event) bool {
	tail := r.tail.Load()
	if tail-r.head.Load() >= uint64(len(r.buf)) {
		r.dropped.Add(1)
		return false
	}
	r.buf[tail&r.mask] = ev
	r.tail.Store(tail + 1)
	return true
}

// PushMessage enqueues a raw MIDI message.
func (r *EventRing) PushMessage(msg []byte) bool {
	return r.Push(NewEvent(msg))
}

// Drain moves queued events into the spare capacity of dst and returns the
// extended slice. It never grows dst; events that do not fit stay queued for
// the next call.
func (r *EventRing) Drain(dst Events) Events {
	head := r.head.Load()
	tail := r.tail.Load()
	for ; head != tail && len(dst) < cap(dst); head++ {
		dst = append(dst, r.buf[head&r.mask])
	}
	r.head.Store(head)
	return dst
}

// Len returns the number of queued events.
func (r *EventRing) Len() int {
	return int(r.tail.Load() - r.head.Load())
}

// Dropped returns how many events were discarded because the ring was full.
func (r *EventRing) Dropped() uint64 { return r.dropped.Load() }
