package synth

// Event is one queued MIDI message. Only the first three bytes are kept;
// Size records the real length so longer messages still decode as ignored.
type Event struct {
	Time uint32 // frame offset within the block, informational
	Size int
	Data [3]byte
}

// NewEvent copies msg into an Event.
func NewEvent(msg []byte) Event {
	ev := Event{Size: len(msg)}
	copy(ev.Data[:], msg)
	return ev
}

// EventSource is the per-block MIDI input handed to Engine.Process. It mirrors
// a count/get style event port: Event reports false when an entry could not be
// read, and the engine skips it.
type EventSource interface {
	EventCount() int
	Event(i int) (Event, bool)
}

// Events is a slice-backed EventSource. Pass a *Events from the audio
// callback; boxing the slice value itself into the interface allocates.
type Events []Event

func (e Events) EventCount() int { return len(e) }

func (e Events) Event(i int) (Event, bool) {
	if i < 0 || i >= len(e) {
		return Event{}, false
	}
	return e[i], true
}
