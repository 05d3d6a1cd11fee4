package synth

import (
	"fmt"
	"math"
)

// NumNotes is the size of the MIDI note range 0-127.
const NumNotes = 128

// noteFreqs holds NoteFrequency for every MIDI note so the audio path never
// calls math.Pow.
var noteFreqs [NumNotes]float64

func init() {
	for i := range noteFreqs {
		noteFreqs[i] = NoteFrequency(uint8(i))
	}
}

// NoteFrequency converts a MIDI note number to Hz in equal temperament with
// A4 (note 69) at 440 Hz.
func NoteFrequency(note uint8) float64 {
	return 440.0 * math.Pow(2, (float64(note)-69.0)/12.0)
}

// noteFreq is the table lookup used by Process. Notes are guaranteed < 128 by
// the decoder.
func noteFreq(note uint8) float64 {
	return noteFreqs[note&0x7f]
}

var noteNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// NoteName renders a note number in scientific pitch notation, e.g. 60 -> "C4".
func NoteName(note int) string {
	if note < 0 || note >= NumNotes {
		return fmt.Sprintf("?%d", note)
	}
	return fmt.Sprintf("%s%d", noteNames[note%12], (note/12)-1)
}
