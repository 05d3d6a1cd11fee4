package main

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/chase3718/monoscillator/synth"
	"github.com/gopxl/beep/wav"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

// writeTestSMF builds a one-track file at the default 120 BPM, 960 ticks per
// quarter: rest one beat, then A4 for one beat.
func writeTestSMF(t *testing.T) []byte {
	t.Helper()
	s := smf.New()
	var tr smf.Track
	tr.Add(960, midi.NoteOn(0, 69, 100))
	tr.Add(960, midi.NoteOff(0, 69))
	tr.Close(0)
	if err := s.Add(tr); err != nil {
		t.Fatalf("smf add: %v", err)
	}
	var buf bytes.Buffer
	if _, err := s.WriteTo(&buf); err != nil {
		t.Fatalf("smf write: %v", err)
	}
	return buf.Bytes()
}

func TestLoadSMF(t *testing.T) {
	const rate = 8000
	events, err := loadSMF(bytes.NewReader(writeTestSMF(t)), rate)
	if err != nil {
		t.Fatalf("loadSMF: %v", err)
	}

	var notes []timedEvent
	for _, te := range events {
		if synth.DecodeEvent(te.ev).Kind != synth.ActionIgnore {
			notes = append(notes, te)
		}
	}
	if len(notes) != 2 {
		t.Fatalf("got %d note events, want 2", len(notes))
	}
	// one beat at 120 BPM is 0.5 s
	if notes[0].frame != rate/2 || notes[1].frame != rate {
		t.Errorf("note frames = %d, %d; want %d, %d", notes[0].frame, notes[1].frame, rate/2, rate)
	}
}

func TestRenderSMF(t *testing.T) {
	const rate = 8000
	cfg := synth.DefaultConfig()
	cfg.SampleRate = rate
	cfg.Volume = 1
	e, err := synth.NewEngine(cfg)
	if err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "out.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := renderSMF(e, bytes.NewReader(writeTestSMF(t)), f, 250*time.Millisecond); err != nil {
		t.Fatalf("renderSMF: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	in, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer in.Close()
	stream, format, err := wav.Decode(in)
	if err != nil {
		t.Fatalf("wav.Decode: %v", err)
	}
	defer stream.Close()

	if format.SampleRate != rate || format.NumChannels != 2 {
		t.Fatalf("format = %+v", format)
	}
	wantFrames := rate + rate/4 // last event at 1 s plus the tail
	if stream.Len() != wantFrames {
		t.Fatalf("rendered %d frames, want %d", stream.Len(), wantFrames)
	}

	samples := make([][2]float64, wantFrames)
	n := 0
	for n < wantFrames {
		got, ok := stream.Stream(samples[n:])
		n += got
		if !ok {
			break
		}
	}
	if n != wantFrames {
		t.Fatalf("decoded %d frames", n)
	}

	peak := func(from, to int) float64 {
		p := 0.0
		for _, s := range samples[from:to] {
			p = math.Max(p, math.Abs(s[0]))
		}
		return p
	}
	if p := peak(0, rate/2-renderBlock); p != 0 {
		t.Errorf("leading rest peak = %v, want silence", p)
	}
	if p := peak(rate/2+renderBlock, rate-renderBlock); p < 0.9 {
		t.Errorf("note peak = %v, want a full-scale tone", p)
	}
	if p := peak(rate+renderBlock, wantFrames); p != 0 {
		t.Errorf("tail peak = %v, want silence", p)
	}
	if e.ActiveNote() != -1 {
		t.Errorf("ActiveNote() after render = %d, want -1", e.ActiveNote())
	}
}

func TestRenderStreamEmpty(t *testing.T) {
	e, _ := synth.NewEngine(synth.DefaultConfig())
	rs := newRenderStream(e, nil, 0)
	n, ok := rs.Stream(make([][2]float64, 16))
	if n != 0 || ok {
		t.Errorf("Stream on empty render = %d, %v; want 0, false", n, ok)
	}
}
