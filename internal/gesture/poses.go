package gesture

import (
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ayusman/mudra/internal/detector"
)

// Raw pose classifiers. They read a single frame only and expect hands that
// have passed Validate. Image Y grows downward, so "above" means a smaller Y.

// extended reports whether the finger with the given tip and joint points up.
func extended(h *detector.HandLandmarks, tip, joint int) bool {
	return h.Point(tip).Y < h.Point(joint).Y
}

// folded reports whether the finger tip sits below its joint.
func folded(h *detector.HandLandmarks, tip, joint int) bool {
	return h.Point(tip).Y > h.Point(joint).Y
}

func fingersFolded(h *detector.HandLandmarks) bool {
	return folded(h, detector.IndexTip, detector.IndexPIP) &&
		folded(h, detector.MiddleTip, detector.MiddlePIP) &&
		folded(h, detector.RingTip, detector.RingPIP) &&
		folded(h, detector.PinkyTip, detector.PinkyPIP)
}

// IsThumbUp reports a raised thumb with the four other fingers folded.
func IsThumbUp(h *detector.HandLandmarks) bool {
	return extended(h, detector.ThumbTip, detector.ThumbIP) && fingersFolded(h)
}

// IsPeaceSign reports index and middle raised into a narrow V, with ring,
// pinky and thumb folded. spread is the maximum tip-to-tip distance, which
// rejects a fully open hand.
func IsPeaceSign(h *detector.HandLandmarks, spread float64) bool {
	if !extended(h, detector.IndexTip, detector.IndexPIP) ||
		!extended(h, detector.MiddleTip, detector.MiddlePIP) ||
		!folded(h, detector.RingTip, detector.RingPIP) ||
		!folded(h, detector.PinkyTip, detector.PinkyPIP) ||
		!folded(h, detector.ThumbTip, detector.ThumbIP) {
		return false
	}
	return distance2D(h.Point(detector.IndexTip), h.Point(detector.MiddleTip)) < spread
}

// IsClapping reports two wrists closer than dist in 3-D.
func IsClapping(a, b *detector.HandLandmarks, dist float64) bool {
	return distance3D(a.Point(detector.Wrist), b.Point(detector.Wrist)) < dist
}

func distance2D(a, b detector.Point3D) float64 {
	return r2.Norm(r2.Sub(r2.Vec{X: a.X, Y: a.Y}, r2.Vec{X: b.X, Y: b.Y}))
}

func distance3D(a, b detector.Point3D) float64 {
	return r3.Norm(r3.Sub(r3.Vec{X: a.X, Y: a.Y, Z: a.Z}, r3.Vec{X: b.X, Y: b.Y, Z: b.Z}))
}
