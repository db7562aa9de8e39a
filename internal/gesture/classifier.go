package gesture

import (
	"fmt"
	"math"
	"sync"

	"github.com/ayusman/mudra/internal/detector"
)

// Frame is the classifier input for one video frame.
type Frame struct {
	Hands []detector.HandLandmarks
}

// State is the classifier memory carried from one frame to the next.
// The zero value is the state of a freshly started stream.
type State struct {
	// HasPrevWrist reports whether PrevWristX holds last frame's wrist x.
	HasPrevWrist bool    `json:"has_prev_wrist"`
	PrevWristX   float64 `json:"prev_wrist_x"`
	// WaveCounter counts qualifying wrist movements since the last toggle.
	WaveCounter int  `json:"wave_counter"`
	Waving      bool `json:"waving"`

	// Raw classifications of the previous frame, used for edge detection.
	PrevThumbsUp  bool `json:"prev_thumbs_up"`
	PrevPeaceSign bool `json:"prev_peace_sign"`
	PrevClapping  bool `json:"prev_clapping"`
}

// Classify evaluates one frame against st and returns the frame's snapshot
// together with the state for the next frame. Frames must be fed in order.
//
// Algorithm:
// 1. Reject the frame if any classified hand is malformed (st is returned as is)
// 2. With exactly two hands, evaluate the clap and update PrevClapping
// 3. For each hand in detector order: count wrist movement toward the wave
//    toggle, then edge-trigger thumbs up and peace sign unless a clap fired
// 4. With no hands, forget the wrist and re-arm thumbs up and peace sign;
//    PrevClapping is kept so hand-count flicker cannot re-fire a clap
func Classify(th Thresholds, st State, f Frame) (Snapshot, State, error) {
	hands := f.Hands
	if len(hands) > th.MaxHands {
		hands = hands[:th.MaxHands]
	}
	for i := range hands {
		if err := hands[i].Validate(); err != nil {
			return Snapshot{}, st, fmt.Errorf("hand %d: %w", i, err)
		}
	}

	kinds := SignalKinds(th)
	next := st
	var snap Snapshot

	if len(hands) == 2 {
		raw := IsClapping(&hands[0], &hands[1], th.ClapDistance)
		snap.Clapping = trigger(kinds[Clapping], raw, next.PrevClapping)
		next.PrevClapping = raw
	}

	for i := range hands {
		h := &hands[i]

		next.trackWave(h.Point(detector.Wrist).X, th)

		thumb := IsThumbUp(h)
		if trigger(kinds[ThumbsUp], thumb, next.PrevThumbsUp) && !snap.suppressed(ThumbsUp) {
			snap.ThumbsUp = true
		}
		next.PrevThumbsUp = thumb

		peace := IsPeaceSign(h, th.PeaceSpread)
		if trigger(kinds[PeaceSign], peace, next.PrevPeaceSign) && !snap.suppressed(PeaceSign) {
			snap.PeaceSign = true
		}
		next.PrevPeaceSign = peace
	}

	if len(hands) == 0 {
		next.HasPrevWrist = false
		next.PrevWristX = 0
		next.PrevThumbsUp = false
		next.PrevPeaceSign = false
	}

	snap.Waving = next.Waving
	return snap, next, nil
}

// trackWave advances the wave debounce with this hand's wrist x.
func (s *State) trackWave(x float64, th Thresholds) {
	if s.HasPrevWrist && math.Abs(x-s.PrevWristX) > th.WaveDelta {
		s.WaveCounter++
		if s.WaveCounter > th.WaveCount {
			s.Waving = !s.Waving
			s.WaveCounter = 0
		}
	}
	s.PrevWristX = x
	s.HasPrevWrist = true
}

// Classifier owns the state of one observed subject and serialises
// classification so that state is read and written in frame order even when
// the host calls it from several goroutines.
type Classifier struct {
	thresholds Thresholds
	mu         sync.Mutex
	state      State
}

// NewClassifier creates a Classifier after validating th.
func NewClassifier(th Thresholds) (*Classifier, error) {
	if err := th.Validate(); err != nil {
		return nil, err
	}
	return &Classifier{thresholds: th}, nil
}

// Process classifies the next frame. On error the state is left untouched
// and the caller decides whether to skip the frame or stop.
func (c *Classifier) Process(f Frame) (Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap, next, err := Classify(c.thresholds, c.state, f)
	if err != nil {
		return Snapshot{}, err
	}
	c.state = next
	return snap, nil
}

// State returns a copy of the current state.
func (c *Classifier) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Thresholds returns the thresholds the classifier was built with.
func (c *Classifier) Thresholds() Thresholds {
	return c.thresholds
}
