package synth

import (
	"math"
	"testing"
)

func TestNoteFrequencyFormula(t *testing.T) {
	for n := 0; n < NumNotes; n++ {
		want := 440 * math.Pow(2, float64(n-69)/12)
		got := NoteFrequency(uint8(n))
		if math.Abs(got-want) > 1e-9*want {
			t.Errorf("NoteFrequency(%d) = %v, want %v", n, got, want)
		}
		if tbl := noteFreq(uint8(n)); tbl != got {
			t.Errorf("table[%d] = %v, want %v", n, tbl, got)
		}
	}
}

func TestNoteFrequencyMonotonic(t *testing.T) {
	prev := NoteFrequency(0)
	for n := 1; n < NumNotes; n++ {
		f := NoteFrequency(uint8(n))
		if f <= prev {
			t.Fatalf("NoteFrequency(%d) = %v not above NoteFrequency(%d) = %v", n, f, n-1, prev)
		}
		prev = f
	}
}

func TestNoteFrequencyReferencePoints(t *testing.T) {
	tests := []struct {
		note uint8
		want float64
	}{
		{69, 440},
		{57, 220},
		{81, 880},
		{60, 261.6255653005986},
	}
	for _, tt := range tests {
		if got := NoteFrequency(tt.note); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("NoteFrequency(%d) = %v, want %v", tt.note, got, tt.want)
		}
	}
}

func TestNoteName(t *testing.T) {
	tests := map[int]string{
		0:   "C-1",
		60:  "C4",
		61:  "C#4",
		69:  "A4",
		127: "G9",
		-1:  "?-1",
		128: "?128",
	}
	for note, want := range tests {
		if got := NoteName(note); got != want {
			t.Errorf("NoteName(%d) = %q, want %q", note, got, want)
		}
	}
}
