package main

import (
	"fmt"
	"time"

	"github.com/chase3718/monoscillator/synth"
	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
)

const maxEventsPerBlock = 1024

// speakerStream is the real-time callback: beep's speaker goroutine calls
// Stream once per buffer. Each call drains the MIDI rings, renders one mono
// block through the engine, and copies it to both channels.
type speakerStream struct {
	engine  *synth.Engine
	sources []*synth.EventRing

	events synth.Events
	mono   []float64

	now func() time.Time
}

func newSpeakerStream(e *synth.Engine, maxBlock int, sources ...*synth.EventRing) *speakerStream {
	return &speakerStream{
		engine:  e,
		sources: sources,
		events:  make(synth.Events, 0, maxEventsPerBlock),
		mono:    make([]float64, maxBlock),
		now:     time.Now,
	}
}

func (s *speakerStream) Stream(samples [][2]float64) (n int, ok bool) {
	start := s.now()

	s.events = s.events[:0]
	for _, r := range s.sources {
		s.events = r.Drain(s.events)
	}

	if len(samples) > cap(s.mono) {
		// only if the speaker hands over more than its configured buffer
		s.mono = make([]float64, len(samples))
	}
	mono := s.mono[:len(samples)]
	s.engine.Process(mono, &s.events)

	for i, v := range mono {
		samples[i][0] = v
		samples[i][1] = v
	}

	rate := beep.SampleRate(s.engine.SampleRate())
	if s.now().Sub(start) > rate.D(len(samples)) {
		s.engine.Diagnostics().RecordOverrun()
	}
	return len(samples), true
}

func (s *speakerStream) Err() error { return nil }

// startSpeaker opens the audio device and starts streaming the engine. The
// transport's rate is pushed to the engine before the first block.
func startSpeaker(e *synth.Engine, rate uint32, buffer time.Duration, sources ...*synth.EventRing) error {
	sr := beep.SampleRate(rate)
	bufSize := sr.N(buffer)
	if bufSize <= 0 {
		return fmt.Errorf("speaker: buffer %v too small at %d Hz", buffer, rate)
	}
	if err := speaker.Init(sr, bufSize); err != nil {
		return fmt.Errorf("speaker: init: %w", err)
	}
	if err := e.SetSampleRate(rate); err != nil {
		speaker.Close()
		return err
	}
	speaker.Play(newSpeakerStream(e, bufSize, sources...))
	logger.Info("speaker: started", "rate", rate, "buffer", buffer, "frames", bufSize)
	return nil
}

func stopSpeaker() {
	speaker.Clear()
	speaker.Close()
	logger.Info("speaker: closed")
}
