package synth

import "sync/atomic"

// Diagnostics counts anomalies seen by the audio callback. The callback only
// increments atomics; the control context polls Snapshot and does the logging.
type Diagnostics struct {
	stackOverflows    atomic.Uint64
	unmatchedNoteOffs atomic.Uint64
	retriggers        atomic.Uint64
	overruns          atomic.Uint64
	blocks            atomic.Uint64

	lastOverflowNote  atomic.Uint32
	lastUnmatchedNote atomic.Uint32
}

// DiagSnapshot is a point-in-time copy of Diagnostics.
type DiagSnapshot struct {
	Blocks            uint64
	StackOverflows    uint64
	UnmatchedNoteOffs uint64
	Retriggers        uint64
	Overruns          uint64
	LastOverflowNote  uint8
	LastUnmatchedNote uint8
}

func (d *Diagnostics) Snapshot() DiagSnapshot {
	return DiagSnapshot{
		Blocks:            d.blocks.Load(),
		StackOverflows:    d.stackOverflows.Load(),
		UnmatchedNoteOffs: d.unmatchedNoteOffs.Load(),
		Retriggers:        d.retriggers.Load(),
		Overruns:          d.overruns.Load(),
		LastOverflowNote:  uint8(d.lastOverflowNote.Load()),
		LastUnmatchedNote: uint8(d.lastUnmatchedNote.Load()),
	}
}

// RecordOverrun is called by the transport when a block took longer than its
// own duration to produce.
func (d *Diagnostics) RecordOverrun() { d.overruns.Add(1) }

// Sub returns the counter deltas since prev. Last-note fields are taken from s.
func (s DiagSnapshot) Sub(prev DiagSnapshot) DiagSnapshot {
	return DiagSnapshot{
		Blocks:            s.Blocks - prev.Blocks,
		StackOverflows:    s.StackOverflows - prev.StackOverflows,
		UnmatchedNoteOffs: s.UnmatchedNoteOffs - prev.UnmatchedNoteOffs,
		Retriggers:        s.Retriggers - prev.Retriggers,
		Overruns:          s.Overruns - prev.Overruns,
		LastOverflowNote:  s.LastOverflowNote,
		LastUnmatchedNote: s.LastUnmatchedNote,
	}
}
