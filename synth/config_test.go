package synth

import (
	"errors"
	"math"
	"testing"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"default", func(*Config) {}, false},
		{"zero rate", func(c *Config) { c.SampleRate = 0 }, true},
		{"negative volume", func(c *Config) { c.Volume = -0.1 }, true},
		{"loud volume", func(c *Config) { c.Volume = 1.5 }, true},
		{"nan volume", func(c *Config) { c.Volume = math.NaN() }, true},
		{"continuous", func(c *Config) { c.Phase = PhaseContinuous }, false},
		{"unknown phase", func(c *Config) { c.Phase = 9 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("error %v does not wrap ErrInvalidConfig", err)
			}
		})
	}
}

func TestDiagSnapshotSub(t *testing.T) {
	prev := DiagSnapshot{Blocks: 10, UnmatchedNoteOffs: 2}
	cur := DiagSnapshot{Blocks: 15, UnmatchedNoteOffs: 3, LastUnmatchedNote: 61}
	d := cur.Sub(prev)
	if d.Blocks != 5 || d.UnmatchedNoteOffs != 1 || d.LastUnmatchedNote != 61 {
		t.Errorf("Sub = %+v", d)
	}
}
