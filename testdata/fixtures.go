// Package testdata builds scripted detector results and blank camera frames
// for pipeline and end-to-end tests.
package testdata

import (
	"gocv.io/x/gocv"

	"github.com/ayusman/mudra/internal/detector"
)

// WaveXs is a wrist path whose six large swings toggle waving on its last
// frame under the default thresholds.
var WaveXs = []float64{0.30, 0.40, 0.30, 0.40, 0.30, 0.40, 0.30}

// Wave returns one open palm per wrist x position.
func Wave(xs ...float64) []detector.Result {
	results := make([]detector.Result, len(xs))
	for i, x := range xs {
		results[i] = detector.Result{Hands: []detector.HandLandmarks{
			detector.OpenPalmLandmarks().WithWristAt(x, 0.8, 0),
		}}
	}
	return results
}

// Clap returns n frames of two open palms whose wrists are dist apart.
func Clap(n int, dist float64) []detector.Result {
	results := make([]detector.Result, n)
	for i := range results {
		results[i] = detector.Result{Hands: []detector.HandLandmarks{
			detector.OpenPalmLandmarks().WithWristAt(0.5, 0.6, 0),
			detector.OpenPalmLandmarks().WithWristAt(0.5+dist, 0.6, 0),
		}}
	}
	return results
}

// Hold returns n frames showing the same single hand.
func Hold(n int, h detector.HandLandmarks) []detector.Result {
	results := make([]detector.Result, n)
	for i := range results {
		results[i] = detector.Result{Hands: []detector.HandLandmarks{h.Clone()}}
	}
	return results
}

// Empty returns n frames with no detections.
func Empty(n int) []detector.Result {
	return make([]detector.Result, n)
}

// WithPose attaches the standing pose fixture to every result.
func WithPose(results []detector.Result) []detector.Result {
	for i := range results {
		results[i].Pose = detector.StandingPoseLandmarks()
	}
	return results
}

// Concat joins scenario segments into one script.
func Concat(segments ...[]detector.Result) []detector.Result {
	var out []detector.Result
	for _, s := range segments {
		out = append(out, s...)
	}
	return out
}

// BlankFrames returns n black BGR frames of the given size. The caller must
// Close each Mat.
func BlankFrames(n, width, height int) []*gocv.Mat {
	frames := make([]*gocv.Mat, n)
	for i := range frames {
		m := gocv.NewMatWithSize(height, width, gocv.MatTypeCV8UC3)
		frames[i] = &m
	}
	return frames
}

// CloseFrames closes every Mat in frames.
func CloseFrames(frames []*gocv.Mat) {
	for _, f := range frames {
		f.Close()
	}
}
