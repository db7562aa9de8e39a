package detector

// Body pose landmark indices following the MediaPipe 33-point pose topology.
// Only the indices the rest of the system reads are named.
const (
	PoseNose          = 0
	PoseLeftShoulder  = 11
	PoseRightShoulder = 12
	PoseLeftElbow     = 13
	PoseRightElbow    = 14
	PoseLeftWrist     = 15
	PoseRightWrist    = 16
	PoseLeftHip       = 23
	PoseRightHip      = 24
	NumPoseLandmarks  = 33
)

// Body landmark names published downstream.
const (
	BodyRightWrist = "right_wrist"
	BodyLeftWrist  = "left_wrist"
	BodyHead       = "head"
)

// PoseLandmarks is one detected body pose.
type PoseLandmarks struct {
	Points []Point3D `json:"points"`
}

// bodyIndex maps published names onto the pose topology.
var bodyIndex = map[string]int{
	BodyRightWrist: PoseRightWrist,
	BodyLeftWrist:  PoseLeftWrist,
	BodyHead:       PoseNose,
}

// ExtractBody picks the named body landmarks out of a pose result.
// It returns an empty map when no pose was detected or the pose is truncated.
func ExtractBody(pose *PoseLandmarks) map[string]Point3D {
	out := make(map[string]Point3D, len(bodyIndex))
	if pose == nil || len(pose.Points) < NumPoseLandmarks {
		return out
	}
	for name, idx := range bodyIndex {
		out[name] = pose.Points[idx]
	}
	return out
}
