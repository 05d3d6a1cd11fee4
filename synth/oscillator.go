package synth

import (
	"fmt"
	"math"
)

// PhaseMode selects how the oscillator derives the sine argument.
type PhaseMode uint8

const (
	// PhaseAbsolute computes the argument from the elapsed sample count:
	// sin(2π·f·offset/rate). Phase is continuous while the frequency holds
	// but jumps, and clicks, when the active note changes.
	PhaseAbsolute PhaseMode = iota
	// PhaseContinuous accumulates a phase angle sample by sample, so a note
	// change bends the waveform without a discontinuity.
	PhaseContinuous
)

func (m PhaseMode) String() string {
	switch m {
	case PhaseAbsolute:
		return "absolute"
	case PhaseContinuous:
		return "continuous"
	}
	return fmt.Sprintf("PhaseMode(%d)", m)
}

// ParsePhaseMode maps a flag value to a PhaseMode.
func ParsePhaseMode(s string) (PhaseMode, error) {
	switch s {
	case "absolute", "":
		return PhaseAbsolute, nil
	case "continuous":
		return PhaseContinuous, nil
	}
	return 0, fmt.Errorf("%w: unknown phase mode %q", ErrInvalidConfig, s)
}

const twoPi = 2 * math.Pi

// SineSample is the stateless oscillator formula:
// sin(2π·freq·offset/rate)·volume. A zero frequency yields exactly 0.
func SineSample(offset uint64, freq float64, rate uint32, volume float64) float64 {
	return math.Sin(twoPi*freq*float64(offset)/float64(rate)) * volume
}

// Oscillator produces one sine sample per call and owns the phase offset: the
// count of samples generated since it was created. The offset advances by one
// on every call regardless of frequency and is never reset.
type Oscillator struct {
	mode   PhaseMode
	offset uint64
	angle  float64 // PhaseContinuous only, kept in [0, 2π)
}

// NewOscillator returns an oscillator at offset 0.
func NewOscillator(mode PhaseMode) *Oscillator {
	return &Oscillator{mode: mode}
}

// Offset returns the number of samples generated so far.
func (o *Oscillator) Offset() uint64 { return o.offset }

// Next returns the sample for the current offset and advances it.
func (o *Oscillator) Next(freq float64, rate uint32, volume float64) float64 {
	var s float64
	switch o.mode {
	case PhaseContinuous:
		if freq == 0 {
			o.angle = 0
			break
		}
		s = math.Sin(o.angle) * volume
		o.angle += twoPi * freq / float64(rate)
		if o.angle >= twoPi {
			o.angle = math.Mod(o.angle, twoPi)
		}
	default:
		s = SineSample(o.offset, freq, rate, volume)
	}
	o.offset++
	return s
}
