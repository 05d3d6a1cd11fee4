package synth

import (
	"math"
	"sync/atomic"
)

// Float64 is a wait-free single-value handoff between the control context
// and the audio callback. Loads and stores are atomic so readers never see a
// torn value, and neither side can block the other.
type Float64 struct {
	bits atomic.Uint64
}

func (f *Float64) Load() float64 { return math.Float64frombits(f.bits.Load()) }

func (f *Float64) Store(v float64) { f.bits.Store(math.Float64bits(v)) }
