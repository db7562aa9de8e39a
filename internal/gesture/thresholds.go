package gesture

import (
	"errors"
	"fmt"
)

// ErrInvalidThresholds is returned when classifier thresholds fail validation.
var ErrInvalidThresholds = errors.New("invalid thresholds")

// ClapMode selects how the clapping flag is signalled.
type ClapMode string

const (
	// ClapOneShot fires clapping once when the hands come together.
	ClapOneShot ClapMode = "one_shot"
	// ClapContinuous keeps clapping true for every frame the hands stay together.
	ClapContinuous ClapMode = "continuous"
)

// Default tuning constants, calibrated against a 640x480 webcam.
const (
	DefaultWaveDelta    = 0.05
	DefaultWaveCount    = 5
	DefaultClapDistance = 0.08
	DefaultPeaceSpread  = 0.1
	DefaultMaxHands     = 2
)

// Thresholds holds the tunable classifier constants.
// Distances are in normalized image units.
type Thresholds struct {
	// WaveDelta is the minimum wrist x movement between frames that counts toward a wave.
	WaveDelta float64 `json:"wave_delta"`
	// WaveCount is how many qualifying movements are tolerated before waving toggles.
	// The toggle happens on the movement that takes the counter past this value.
	WaveCount int `json:"wave_count"`
	// ClapDistance is the 3-D wrist distance under which two hands count as clapping.
	ClapDistance float64 `json:"clap_distance"`
	// PeaceSpread is the maximum 2-D index/middle tip distance for a peace sign.
	PeaceSpread float64 `json:"peace_spread"`
	// ClapMode selects one-shot or continuous clap signalling.
	ClapMode ClapMode `json:"clap_mode"`
	// MaxHands caps how many hands of a frame are classified; extra hands are ignored.
	MaxHands int `json:"max_hands"`
}

// DefaultThresholds returns the calibrated default thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{
		WaveDelta:    DefaultWaveDelta,
		WaveCount:    DefaultWaveCount,
		ClapDistance: DefaultClapDistance,
		PeaceSpread:  DefaultPeaceSpread,
		ClapMode:     ClapOneShot,
		MaxHands:     DefaultMaxHands,
	}
}

// Validate checks that every threshold is usable.
func (t Thresholds) Validate() error {
	if !(t.WaveDelta > 0) {
		return fmt.Errorf("%w: wave_delta must be positive, got %f", ErrInvalidThresholds, t.WaveDelta)
	}
	if t.WaveCount < 0 {
		return fmt.Errorf("%w: wave_count must not be negative, got %d", ErrInvalidThresholds, t.WaveCount)
	}
	if !(t.ClapDistance > 0) {
		return fmt.Errorf("%w: clap_distance must be positive, got %f", ErrInvalidThresholds, t.ClapDistance)
	}
	if !(t.PeaceSpread > 0) {
		return fmt.Errorf("%w: peace_spread must be positive, got %f", ErrInvalidThresholds, t.PeaceSpread)
	}
	switch t.ClapMode {
	case ClapOneShot, ClapContinuous:
	default:
		return fmt.Errorf("%w: unknown clap_mode %q", ErrInvalidThresholds, t.ClapMode)
	}
	if t.MaxHands < 2 {
		return fmt.Errorf("%w: max_hands must be at least 2, got %d", ErrInvalidThresholds, t.MaxHands)
	}
	return nil
}
