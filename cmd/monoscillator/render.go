package main

import (
	"cmp"
	"fmt"
	"io"
	"os"
	"slices"
	"time"

	"github.com/chase3718/monoscillator/synth"
	"github.com/gopxl/beep"
	"github.com/gopxl/beep/wav"
	"gitlab.com/gomidi/midi/v2/smf"
)

// renderBlock is the block size used offline. Events are applied at block
// starts, so it also bounds timing error (64 frames ≈ 1.3 ms at 48 kHz).
const renderBlock = 64

type timedEvent struct {
	frame uint64
	ev    synth.Event
}

// loadSMF reads every track of a Standard MIDI File and returns its messages
// as frame-stamped events, ordered by time. Meta events are kept; the
// decoder ignores them.
func loadSMF(r io.Reader, rate uint32) ([]timedEvent, error) {
	var out []timedEvent
	tr := smf.ReadTracksFrom(r).Do(func(te smf.TrackEvent) {
		frame := uint64(te.AbsMicroSeconds) * uint64(rate) / uint64(time.Second/time.Microsecond)
		out = append(out, timedEvent{frame: frame, ev: synth.NewEvent([]byte(te.Message))})
	})
	if err := tr.Error(); err != nil {
		return nil, fmt.Errorf("read smf: %w", err)
	}
	slices.SortStableFunc(out, func(a, b timedEvent) int {
		return cmp.Compare(a.frame, b.frame)
	})
	return out, nil
}

// renderStream drives the engine offline as a beep.Streamer that ends once
// the last event plus the tail has been rendered.
type renderStream struct {
	engine *synth.Engine
	events []timedEvent
	next   int
	pos    uint64
	end    uint64

	block synth.Events
	mono  []float64
}

func newRenderStream(e *synth.Engine, events []timedEvent, tail time.Duration) *renderStream {
	var last uint64
	if len(events) > 0 {
		last = events[len(events)-1].frame
	}
	tailFrames := uint64(beep.SampleRate(e.SampleRate()).N(tail))
	return &renderStream{
		engine: e,
		events: events,
		end:    last + tailFrames,
		block:  make(synth.Events, 0, maxEventsPerBlock),
		mono:   make([]float64, renderBlock),
	}
}

func (r *renderStream) Stream(samples [][2]float64) (n int, ok bool) {
	for n < len(samples) && r.pos < r.end {
		size := min(renderBlock, len(samples)-n, int(r.end-r.pos))

		r.block = r.block[:0]
		for r.next < len(r.events) && r.events[r.next].frame < r.pos+uint64(size) && len(r.block) < cap(r.block) {
			r.block = append(r.block, r.events[r.next].ev)
			r.next++
		}

		mono := r.mono[:size]
		r.engine.Process(mono, &r.block)
		for i, v := range mono {
			samples[n+i][0] = v
			samples[n+i][1] = v
		}
		n += size
		r.pos += uint64(size)
	}
	return n, n > 0
}

func (r *renderStream) Err() error { return nil }

// renderSMF synthesizes the MIDI file read from in and writes a 16-bit stereo
// WAV to out.
func renderSMF(e *synth.Engine, in io.Reader, out io.WriteSeeker, tail time.Duration) error {
	events, err := loadSMF(in, e.SampleRate())
	if err != nil {
		return err
	}
	rs := newRenderStream(e, events, tail)
	format := beep.Format{
		SampleRate:  beep.SampleRate(e.SampleRate()),
		NumChannels: 2,
		Precision:   2,
	}
	if err := wav.Encode(out, rs, format); err != nil {
		return fmt.Errorf("encode wav: %w", err)
	}
	logger.Info("render: done", "events", len(events), "frames", rs.pos,
		"duration", format.SampleRate.D(int(rs.pos)))
	return nil
}

// renderFile is the -render entry point.
func renderFile(e *synth.Engine, inPath, outPath string, tail time.Duration) error {
	in, err := os.Open(inPath)
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}
	defer in.Close()

	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}
	if err := renderSMF(e, in, out, tail); err != nil {
		out.Close()
		return fmt.Errorf("render %s: %w", inPath, err)
	}
	return out.Close()
}
