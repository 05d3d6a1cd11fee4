package synth

import "errors"

// StackCapacity is the most notes a NoteStack can hold at once.
const StackCapacity = NumNotes

// ErrStackFull is returned by Push when the stack already holds StackCapacity
// notes. It means the input sent more note-ons than there are keys.
var ErrStackFull = errors.New("note stack full")

// NoteStack is the ordered set of held notes, oldest first. It is backed by a
// fixed array so Push and Remove never allocate.
//
// The zero value is an empty stack. A NoteStack is not safe for concurrent
// use; the engine only touches it from the audio callback.
type NoteStack struct {
	notes [StackCapacity]uint8
	n     int
}

// Push appends note as the most recent one. A note already on the stack is
// moved to the top instead of being stored twice.
func (s *NoteStack) Push(note uint8) error {
	if s.n >= StackCapacity {
		return ErrStackFull
	}
	if i := s.index(note); i >= 0 {
		s.removeAt(i)
	}
	s.notes[s.n] = note
	s.n++
	return nil
}

// Remove deletes the oldest occurrence of note, shifting later entries down.
// It reports false and leaves the stack untouched if note is not held.
func (s *NoteStack) Remove(note uint8) bool {
	i := s.index(note)
	if i < 0 {
		return false
	}
	s.removeAt(i)
	return true
}

// Top returns the most recently pushed note still held.
func (s *NoteStack) Top() (uint8, bool) {
	if s.n == 0 {
		return 0, false
	}
	return s.notes[s.n-1], true
}

// Len returns the number of held notes.
func (s *NoteStack) Len() int { return s.n }

// Notes returns the held notes oldest first. The slice aliases the stack and
// is only valid until the next mutation.
func (s *NoteStack) Notes() []uint8 { return s.notes[:s.n] }

// Clear drops every held note.
func (s *NoteStack) Clear() { s.n = 0 }

func (s *NoteStack) index(note uint8) int {
	for i := 0; i < s.n; i++ {
		if s.notes[i] == note {
			return i
		}
	}
	return -1
}

func (s *NoteStack) removeAt(i int) {
	copy(s.notes[i:s.n-1], s.notes[i+1:s.n])
	s.n--
}
