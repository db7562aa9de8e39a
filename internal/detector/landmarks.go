// Package detector provides landmark types and the bridge to the external
// hand and body-pose landmark detector.
package detector

import (
	"errors"
	"fmt"
	"math"
)

// Hand landmark indices following MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
const (
	Wrist        = 0
	ThumbCMC     = 1
	ThumbMCP     = 2
	ThumbIP      = 3
	ThumbTip     = 4
	IndexMCP     = 5
	IndexPIP     = 6
	IndexDIP     = 7
	IndexTip     = 8
	MiddleMCP    = 9
	MiddlePIP    = 10
	MiddleDIP    = 11
	MiddleTip    = 12
	RingMCP      = 13
	RingPIP      = 14
	RingDIP      = 15
	RingTip      = 16
	PinkyMCP     = 17
	PinkyPIP     = 18
	PinkyDIP     = 19
	PinkyTip     = 20
	NumLandmarks = 21
)

var (
	// ErrIncompleteHand is returned when a hand carries fewer points than the topology defines.
	ErrIncompleteHand = errors.New("incomplete hand landmarks")
	// ErrInvalidCoordinate is returned when a landmark coordinate is NaN or infinite.
	ErrInvalidCoordinate = errors.New("invalid landmark coordinate")
)

// Point3D represents a landmark in normalized image coordinates.
// X and Y are roughly in [0,1] with Y growing downward; Z is relative depth.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

func (p Point3D) finite() bool {
	for _, v := range [3]float64{p.X, p.Y, p.Z} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// HandLandmarks represents one detected hand in the 21-point topology.
type HandLandmarks struct {
	Points     []Point3D `json:"points"`
	Handedness string    `json:"handedness"` // "Left" or "Right"
	Score      float64   `json:"score"`
}

// NewHandLandmarks returns a hand with all 21 points at the origin.
func NewHandLandmarks(handedness string, score float64) HandLandmarks {
	return HandLandmarks{
		Points:     make([]Point3D, NumLandmarks),
		Handedness: handedness,
		Score:      score,
	}
}

// Point returns the landmark at topology index i.
// Callers must Validate the hand first.
func (h *HandLandmarks) Point(i int) Point3D {
	return h.Points[i]
}

// Validate checks that the hand carries the full topology with finite coordinates.
func (h *HandLandmarks) Validate() error {
	if len(h.Points) < NumLandmarks {
		return fmt.Errorf("%w: got %d points, want %d", ErrIncompleteHand, len(h.Points), NumLandmarks)
	}
	for i := 0; i < NumLandmarks; i++ {
		if !h.Points[i].finite() {
			return fmt.Errorf("%w: point %d", ErrInvalidCoordinate, i)
		}
	}
	return nil
}

// Clone returns a deep copy of the hand.
func (h HandLandmarks) Clone() HandLandmarks {
	points := make([]Point3D, len(h.Points))
	copy(points, h.Points)
	h.Points = points
	return h
}

// WithWristAt returns a copy of the hand translated so its wrist lands on (x, y, z).
func (h HandLandmarks) WithWristAt(x, y, z float64) HandLandmarks {
	out := h.Clone()
	if len(out.Points) == 0 {
		return out
	}
	dx := x - out.Points[Wrist].X
	dy := y - out.Points[Wrist].Y
	dz := z - out.Points[Wrist].Z
	for i := range out.Points {
		out.Points[i].X += dx
		out.Points[i].Y += dy
		out.Points[i].Z += dz
	}
	return out
}
