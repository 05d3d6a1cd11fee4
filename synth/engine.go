package synth

import (
	"fmt"
	"math"
	"sync/atomic"
)

// Engine is the monophonic synthesizer. It owns the held-note stack and the
// oscillator, which only Process touches, plus a few atomics shared with the
// control context: volume, sample rate, the panic request, and the published
// active note.
//
// Process must be called from a single goroutine (the audio callback). All
// other methods are safe to call from any goroutine at any time and never
// block the callback.
type Engine struct {
	stack NoteStack
	osc   *Oscillator

	volume     Float64
	sampleRate atomic.Uint32
	panicReq   atomic.Bool
	active     atomic.Int32

	diag Diagnostics
}

// NewEngine builds an engine from cfg. It needs no audio device, so it can be
// created before (or without) a transport.
func NewEngine(cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	e := &Engine{osc: NewOscillator(cfg.Phase)}
	e.volume.Store(cfg.Volume)
	e.sampleRate.Store(cfg.SampleRate)
	e.active.Store(-1)
	return e, nil
}

// Process renders one block. It applies the block's MIDI events to the note
// stack in arrival order, picks the most recently pressed held note, and fills
// out with one sine sample per slot. It never blocks or allocates, and
// anomalies are counted in Diagnostics rather than returned.
func (e *Engine) Process(out []float64, events EventSource) {
	if e.panicReq.CompareAndSwap(true, false) {
		e.stack.Clear()
	}

	n := events.EventCount()
	for i := 0; i < n; i++ {
		ev, ok := events.Event(i)
		if !ok {
			continue
		}
		e.apply(DecodeEvent(ev))
	}

	freq := 0.0
	active := int32(-1)
	if note, ok := e.stack.Top(); ok {
		freq = noteFreq(note)
		active = int32(note)
	}

	volume := e.volume.Load()
	rate := e.sampleRate.Load()
	for i := range out {
		out[i] = e.osc.Next(freq, rate, volume)
	}

	e.active.Store(active)
	e.diag.blocks.Add(1)
}

func (e *Engine) apply(a Action) {
	switch a.Kind {
	case ActionNoteOn:
		if e.stack.Len() < StackCapacity && e.stack.index(a.Note) >= 0 {
			e.diag.retriggers.Add(1)
		}
		if err := e.stack.Push(a.Note); err != nil {
			e.diag.stackOverflows.Add(1)
			e.diag.lastOverflowNote.Store(uint32(a.Note))
		}
	case ActionNoteOff:
		if !e.stack.Remove(a.Note) {
			e.diag.unmatchedNoteOffs.Add(1)
			e.diag.lastUnmatchedNote.Store(uint32(a.Note))
		}
	}
}

// SetVolume stores a new gain for the next block. Values are clamped into
// [0, 1]; NaN becomes 0.
func (e *Engine) SetVolume(v float64) {
	switch {
	case math.IsNaN(v) || v < 0:
		v = 0
	case v > 1:
		v = 1
	}
	e.volume.Store(v)
}

// Volume returns the current gain.
func (e *Engine) Volume() float64 { return e.volume.Load() }

// SetSampleRate replaces the sample rate used from the next block on. The
// phase offset is not adjusted.
func (e *Engine) SetSampleRate(rate uint32) error {
	if rate == 0 {
		return fmt.Errorf("set sample rate: %w", ErrInvalidSampleRate)
	}
	e.sampleRate.Store(rate)
	return nil
}

// SampleRate returns the current sample rate.
func (e *Engine) SampleRate() uint32 { return e.sampleRate.Load() }

// Panic asks the next Process call to release every held note. Used when a
// MIDI source disappears and its note-offs will never arrive.
func (e *Engine) Panic() { e.panicReq.Store(true) }

// ActiveNote returns the note sounding after the last processed block, or -1
// for silence.
func (e *Engine) ActiveNote() int { return int(e.active.Load()) }

// Diagnostics returns the engine's anomaly counters.
func (e *Engine) Diagnostics() *Diagnostics { return &e.diag }

// Offset returns the oscillator phase offset. Only meaningful from the audio
// goroutine or after processing has stopped.
func (e *Engine) Offset() uint64 { return e.osc.Offset() }

// HeldNotes returns a copy of the held notes, oldest first. Like Offset it
// reads audio-owned state and is meant for tests and offline rendering.
func (e *Engine) HeldNotes() []uint8 {
	return append([]uint8(nil), e.stack.Notes()...)
}
