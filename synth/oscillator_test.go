package synth

import (
	"math"
	"testing"
)

func TestOscillatorSilenceAtZeroFrequency(t *testing.T) {
	for _, mode := range []PhaseMode{PhaseAbsolute, PhaseContinuous} {
		o := NewOscillator(mode)
		for i := 0; i < 1000; i++ {
			if s := o.Next(0, 44100, 1.0); s != 0 {
				t.Fatalf("%v: sample %d = %v, want 0", mode, i, s)
			}
		}
		if o.Offset() != 1000 {
			t.Errorf("%v: Offset() = %d, want 1000", mode, o.Offset())
		}
	}
	for _, off := range []uint64{0, 1, 12345, math.MaxUint64} {
		if s := SineSample(off, 0, 48000, 0.8); s != 0 {
			t.Errorf("SineSample(%d, 0, ...) = %v, want 0", off, s)
		}
	}
}

func TestOscillatorStartsAtZero(t *testing.T) {
	o := NewOscillator(PhaseAbsolute)
	if s := o.Next(440, 44100, 1.0); s != 0 {
		t.Errorf("first sample = %v, want sin(0) = 0", s)
	}
}

func TestOscillatorPeriodic(t *testing.T) {
	const (
		rate = 44100
		freq = 440.0
		// 440 Hz repeats exactly every 2205 samples (22 cycles) at 44.1 kHz.
		span = 2205
	)
	o := NewOscillator(PhaseAbsolute)
	buf := make([]float64, 2*span)
	for i := range buf {
		buf[i] = o.Next(freq, rate, 1.0)
	}
	for i := 0; i < span; i++ {
		if d := math.Abs(buf[i] - buf[i+span]); d > 1e-9 {
			t.Fatalf("sample %d and %d differ by %v", i, i+span, d)
		}
	}

	// Period is 44100/440 ≈ 100.2 samples: two sign changes per cycle.
	crossings := 0
	for i := 1; i < span; i++ {
		if (buf[i-1] < 0) != (buf[i] < 0) {
			crossings++
		}
	}
	if crossings < 43 || crossings > 45 {
		t.Errorf("zero crossings over %d samples = %d, want ~44", span, crossings)
	}
}

func TestOscillatorScalesByVolume(t *testing.T) {
	o := NewOscillator(PhaseAbsolute)
	peak := 0.0
	for i := 0; i < 48000; i++ {
		peak = math.Max(peak, math.Abs(o.Next(1000, 48000, 0.25)))
	}
	if peak > 0.25+1e-12 || peak < 0.249 {
		t.Errorf("peak = %v, want ~0.25", peak)
	}
}

func TestOscillatorContinuousMatchesAbsoluteAtFixedFrequency(t *testing.T) {
	abs := NewOscillator(PhaseAbsolute)
	cont := NewOscillator(PhaseContinuous)
	for i := 0; i < 10000; i++ {
		a := abs.Next(523.25, 48000, 0.9)
		c := cont.Next(523.25, 48000, 0.9)
		if math.Abs(a-c) > 1e-6 {
			t.Fatalf("sample %d: absolute %v, continuous %v", i, a, c)
		}
	}
}

func TestOscillatorContinuousHasNoJumpOnNoteChange(t *testing.T) {
	const rate = 48000
	low, high := NoteFrequency(60), NoteFrequency(72)
	maxStep := 2 * math.Pi * high / rate // largest slope of sin at the higher pitch

	o := NewOscillator(PhaseContinuous)
	prev := 0.0
	for i := 0; i < 4000; i++ {
		f := low
		if (i/317)%2 == 1 {
			f = high
		}
		s := o.Next(f, rate, 1.0)
		if i > 0 && math.Abs(s-prev) > maxStep+1e-9 {
			t.Fatalf("sample %d jumps by %v, limit %v", i, math.Abs(s-prev), maxStep)
		}
		prev = s
	}
}

func TestParsePhaseMode(t *testing.T) {
	for in, want := range map[string]PhaseMode{"": PhaseAbsolute, "absolute": PhaseAbsolute, "continuous": PhaseContinuous} {
		got, err := ParsePhaseMode(in)
		if err != nil || got != want {
			t.Errorf("ParsePhaseMode(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParsePhaseMode("saw"); err == nil {
		t.Error("ParsePhaseMode(\"saw\") succeeded")
	}
}
