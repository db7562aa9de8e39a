// Package render draws detector landmarks and the gesture snapshot onto
// camera frames for the preview stream.
package render

import (
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/gesture"
)

// Connection is a pair of landmark indices joined by a line.
type Connection [2]int

// HandConnections is the 21-point hand skeleton.
var HandConnections = []Connection{
	{detector.Wrist, detector.ThumbCMC}, {detector.ThumbCMC, detector.ThumbMCP},
	{detector.ThumbMCP, detector.ThumbIP}, {detector.ThumbIP, detector.ThumbTip},
	{detector.Wrist, detector.IndexMCP}, {detector.IndexMCP, detector.IndexPIP},
	{detector.IndexPIP, detector.IndexDIP}, {detector.IndexDIP, detector.IndexTip},
	{detector.IndexMCP, detector.MiddleMCP}, {detector.MiddleMCP, detector.MiddlePIP},
	{detector.MiddlePIP, detector.MiddleDIP}, {detector.MiddleDIP, detector.MiddleTip},
	{detector.MiddleMCP, detector.RingMCP}, {detector.RingMCP, detector.RingPIP},
	{detector.RingPIP, detector.RingDIP}, {detector.RingDIP, detector.RingTip},
	{detector.RingMCP, detector.PinkyMCP}, {detector.Wrist, detector.PinkyMCP},
	{detector.PinkyMCP, detector.PinkyPIP}, {detector.PinkyPIP, detector.PinkyDIP},
	{detector.PinkyDIP, detector.PinkyTip},
}

// PoseConnections is the upper-body subset of the 33-point pose skeleton.
var PoseConnections = []Connection{
	{detector.PoseLeftShoulder, detector.PoseRightShoulder},
	{detector.PoseLeftShoulder, detector.PoseLeftElbow},
	{detector.PoseLeftElbow, detector.PoseLeftWrist},
	{detector.PoseRightShoulder, detector.PoseRightElbow},
	{detector.PoseRightElbow, detector.PoseRightWrist},
	{detector.PoseLeftShoulder, detector.PoseLeftHip},
	{detector.PoseRightShoulder, detector.PoseRightHip},
	{detector.PoseLeftHip, detector.PoseRightHip},
}

var (
	handColor   = color.RGBA{R: 0, G: 255, B: 0, A: 255}
	jointColor  = color.RGBA{R: 255, G: 0, B: 0, A: 255}
	poseColor   = color.RGBA{R: 255, G: 255, B: 0, A: 255}
	activeColor = color.RGBA{R: 0, G: 255, B: 255, A: 255}
	idleColor   = color.RGBA{R: 128, G: 128, B: 128, A: 255}
)

// ToPixel maps a normalised landmark to pixel coordinates in a frame of size.
func ToPixel(p detector.Point3D, size image.Point) image.Point {
	return image.Pt(int(p.X*float64(size.X)), int(p.Y*float64(size.Y)))
}

// Annotate draws every hand and the pose skeleton from res, then a status
// line per gesture from snap. Malformed hands and short poses are skipped.
func Annotate(img *gocv.Mat, res detector.Result, snap gesture.Snapshot) {
	if img == nil || img.Empty() {
		return
	}
	size := image.Pt(img.Cols(), img.Rows())

	if res.Pose != nil && len(res.Pose.Points) >= detector.NumPoseLandmarks {
		drawSkeleton(img, res.Pose.Points, PoseConnections, size, poseColor)
	}

	for i := range res.Hands {
		h := &res.Hands[i]
		if h.Validate() != nil {
			continue
		}
		drawSkeleton(img, h.Points, HandConnections, size, handColor)
		for _, p := range h.Points {
			gocv.Circle(img, ToPixel(p, size), 3, jointColor, -1)
		}
	}

	drawStatus(img, snap)
}

func drawSkeleton(img *gocv.Mat, points []detector.Point3D, conns []Connection, size image.Point, c color.RGBA) {
	for _, conn := range conns {
		a, b := conn[0], conn[1]
		if a >= len(points) || b >= len(points) {
			continue
		}
		gocv.Line(img, ToPixel(points[a], size), ToPixel(points[b], size), c, 2)
	}
}

// StatusLines returns the overlay text for snap, one line per gesture.
func StatusLines(snap gesture.Snapshot) []string {
	lines := make([]string, 0, len(gesture.Names))
	for _, name := range gesture.Names {
		state := "off"
		if snap.Get(name) {
			state = "ON"
		}
		lines = append(lines, string(name)+": "+state)
	}
	return lines
}

func drawStatus(img *gocv.Mat, snap gesture.Snapshot) {
	for i, line := range StatusLines(snap) {
		c := idleColor
		if snap.Get(gesture.Names[i]) {
			c = activeColor
		}
		gocv.PutText(img, line, image.Pt(10, 25+i*22), gocv.FontHersheySimplex, 0.6, c, 2)
	}
}
