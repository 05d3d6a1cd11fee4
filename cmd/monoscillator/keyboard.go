package main

import "github.com/chase3718/monoscillator/synth"

// keyRow maps the home and upper letter rows to one octave of semitones,
// piano style: a w s e d f t g y h u j k = C C# D D# E F F# G G# A A# B C.
var keyRow = map[rune]int{
	'a': 0, 'w': 1, 's': 2, 'e': 3, 'd': 4, 'f': 5, 't': 6,
	'g': 7, 'y': 8, 'h': 9, 'u': 10, 'j': 11, 'k': 12,
}

const (
	defaultOctave = 4
	minOctave     = -1
	maxOctave     = 9
)

// KeyboardState turns computer key presses into MIDI note events. Terminals
// do not report key releases, so each key latches: the first press sends a
// note-on, the next press of the same pitch sends the note-off.
//
// It is used only from the UI goroutine, which is the sole producer on ring.
type KeyboardState struct {
	ActiveNotes map[int]bool
	Octave      int

	ring *synth.EventRing
}

func NewKeyboardState(ring *synth.EventRing) *KeyboardState {
	return &KeyboardState{
		ActiveNotes: make(map[int]bool),
		Octave:      defaultOctave,
		ring:        ring,
	}
}

// Pitch returns the MIDI note for r at the current octave.
func (k *KeyboardState) Pitch(r rune) (int, bool) {
	semi, ok := keyRow[r]
	if !ok {
		return 0, false
	}
	pitch := (k.Octave+1)*12 + semi
	if pitch < 0 || pitch >= synth.NumNotes {
		return 0, false
	}
	return pitch, true
}

// Press toggles the note bound to r. It reports whether r was a note key.
func (k *KeyboardState) Press(r rune) bool {
	pitch, ok := k.Pitch(r)
	if !ok {
		return false
	}
	if k.ActiveNotes[pitch] {
		k.ApplyNoteOff(pitch)
	} else {
		k.ApplyNoteOn(pitch)
	}
	return true
}

func (k *KeyboardState) ApplyNoteOn(pitch int) {
	if k.ring.PushMessage([]byte{synth.StatusNoteOn, byte(pitch), 100}) {
		k.ActiveNotes[pitch] = true
		logger.Debug("keyboard: note on", "pitch", synth.NoteName(pitch))
	}
}

func (k *KeyboardState) ApplyNoteOff(pitch int) {
	if k.ring.PushMessage([]byte{synth.StatusNoteOff, byte(pitch), 0}) {
		delete(k.ActiveNotes, pitch)
		logger.Debug("keyboard: note off", "pitch", synth.NoteName(pitch))
	}
}

// ShiftOctave moves the keyboard up or down; latched notes keep sounding
// until pressed again at their own octave or cleared.
func (k *KeyboardState) ShiftOctave(delta int) {
	k.Octave = min(max(k.Octave+delta, minOctave), maxOctave)
}

// ReleaseAll queues a note-off for every latched note and forgets it. The
// note-offs travel behind any note-on still in the ring, so a panic cannot
// leave the engine holding a note the keyboard no longer shows. A note whose
// note-off does not fit stays latched.
func (k *KeyboardState) ReleaseAll() {
	for pitch := range k.ActiveNotes {
		k.ApplyNoteOff(pitch)
	}
}
