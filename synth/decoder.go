package synth

// MIDI channel voice status bytes understood by the decoder. Only channel 1 is
// matched; other channels carry different low nibbles and are ignored.
const (
	StatusNoteOff = 0x80
	StatusNoteOn  = 0x90
)

// ActionKind says what a decoded message asks the engine to do.
type ActionKind uint8

const (
	ActionIgnore ActionKind = iota
	ActionNoteOn
	ActionNoteOff
)

func (k ActionKind) String() string {
	switch k {
	case ActionNoteOn:
		return "note-on"
	case ActionNoteOff:
		return "note-off"
	}
	return "ignore"
}

// Action is the result of decoding one MIDI message.
type Action struct {
	Kind ActionKind
	Note uint8
}

// Decode interprets one raw MIDI message. Only 3-byte messages with status
// 0x90 or 0x80 produce a note action; velocity is not inspected, so a note-on
// with velocity 0 stays a note-on. A note byte with its high bit set is not
// a note number and yields ActionIgnore.
func Decode(msg []byte) Action {
	if len(msg) != 3 || msg[1]&0x80 != 0 {
		return Action{}
	}
	switch msg[0] {
	case StatusNoteOn:
		return Action{Kind: ActionNoteOn, Note: msg[1]}
	case StatusNoteOff:
		return Action{Kind: ActionNoteOff, Note: msg[1]}
	}
	return Action{}
}

// DecodeEvent decodes a queued event.
func DecodeEvent(ev Event) Action {
	if ev.Size != 3 {
		return Action{}
	}
	return Decode(ev.Data[:])
}
