package synth

import (
	"errors"
	"fmt"
)

// Sentinel errors
var (
	ErrInvalidConfig     = errors.New("invalid synth config")
	ErrInvalidSampleRate = errors.New("sample rate must be positive")
)

// Config holds the engine settings known at startup.
type Config struct {
	SampleRate uint32
	Volume     float64 // 0.0-1.0
	Phase      PhaseMode
}

// DefaultConfig returns 48 kHz, half volume, absolute phase.
func DefaultConfig() Config {
	return Config{
		SampleRate: 48000,
		Volume:     0.5,
		Phase:      PhaseAbsolute,
	}
}

// Validate reports the first invalid field.
func (c Config) Validate() error {
	if c.SampleRate == 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, ErrInvalidSampleRate)
	}
	if c.Volume < 0 || c.Volume > 1 || c.Volume != c.Volume {
		return fmt.Errorf("%w: volume %v outside [0, 1]", ErrInvalidConfig, c.Volume)
	}
	if c.Phase > PhaseContinuous {
		return fmt.Errorf("%w: phase mode %v", ErrInvalidConfig, c.Phase)
	}
	return nil
}
