package synth

import (
	"testing"

	"gitlab.com/gomidi/midi/v2"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name string
		msg  []byte
		want Action
	}{
		{"note on", []byte{0x90, 60, 100}, Action{ActionNoteOn, 60}},
		{"note off", []byte{0x80, 60, 0}, Action{ActionNoteOff, 60}},
		{"note on velocity zero stays note on", []byte{0x90, 60, 0}, Action{ActionNoteOn, 60}},
		{"control change", []byte{0xB0, 7, 64}, Action{}},
		{"note on channel 2", []byte{0x91, 60, 100}, Action{}},
		{"two bytes", []byte{0x90, 60}, Action{}},
		{"program change", []byte{0xC0, 5}, Action{}},
		{"four bytes", []byte{0x90, 60, 100, 0}, Action{}},
		{"empty", nil, Action{}},
		{"bad data byte", []byte{0x90, 0xFF, 100}, Action{}},
		{"velocity byte not inspected", []byte{0x80, 60, 0x90}, Action{ActionNoteOff, 60}},
		{"note on velocity high bit", []byte{0x90, 60, 0x80}, Action{ActionNoteOn, 60}},
		{"note on velocity 0xFF", []byte{0x90, 60, 0xFF}, Action{ActionNoteOn, 60}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Decode(tt.msg); got != tt.want {
				t.Errorf("Decode(% X) = %+v, want %+v", tt.msg, got, tt.want)
			}
		})
	}
}

func TestDecodeGomidiMessages(t *testing.T) {
	tests := []struct {
		msg  midi.Message
		want Action
	}{
		{midi.NoteOn(0, 69, 127), Action{ActionNoteOn, 69}},
		{midi.NoteOff(0, 69), Action{ActionNoteOff, 69}},
		{midi.ControlChange(0, 7, 64), Action{}},
		{midi.Pitchbend(0, 100), Action{}},
	}
	for _, tt := range tests {
		if got := Decode(tt.msg); got != tt.want {
			t.Errorf("Decode(%s) = %+v, want %+v", tt.msg, got, tt.want)
		}
	}
}

func TestDecodeEventUsesSize(t *testing.T) {
	ev := NewEvent([]byte{0x90, 60, 100, 0x00})
	if ev.Size != 4 {
		t.Fatalf("Size = %d, want 4", ev.Size)
	}
	if got := DecodeEvent(ev); got.Kind != ActionIgnore {
		t.Errorf("DecodeEvent of 4-byte event = %+v, want ignore", got)
	}
	if got := DecodeEvent(NewEvent([]byte{0x90, 60, 100})); got != (Action{ActionNoteOn, 60}) {
		t.Errorf("DecodeEvent = %+v, want note-on 60", got)
	}
}
