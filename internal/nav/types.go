package nav

// Ticks is an integer sensor timestamp on the common log time base
// (nanosecond-scale). The loader must deliver all three streams on one
// base without pre-scaling; the core converts to seconds with a single
// fixed scale factor.
type Ticks int64

// DefaultTickScale converts raw integer timestamps to seconds.
// All three streams (prior states, IMU, depth) share this scale.
const DefaultTickScale = 1e-9

// Vec3 is a fixed-size vector in R^3.
type Vec3 [3]float64

// Add returns v + w.
func (v Vec3) Add(w Vec3) Vec3 {
	return Vec3{v[0] + w[0], v[1] + w[1], v[2] + w[2]}
}

// Sub returns v - w.
func (v Vec3) Sub(w Vec3) Vec3 {
	return Vec3{v[0] - w[0], v[1] - w[1], v[2] - w[2]}
}

// Scale returns s * v.
func (v Vec3) Scale(s float64) Vec3 {
	return Vec3{s * v[0], s * v[1], s * v[2]}
}

// ImuSample is one raw inertial measurement: body-frame angular rate
// (rad/s) and linear acceleration (m/s^2) stamped on the common time base.
type ImuSample struct {
	T           Ticks
	AngularRate Vec3
	LinearAccel Vec3
}

// DepthSample is one depth-sensor reading, positive down, stamped on the
// common time base.
type DepthSample struct {
	T     Ticks
	Depth float64
}

// BiasEstimate holds constant accelerometer and gyroscope biases for the
// duration of one run. There is no online bias re-estimation: the
// preintegrator owns the value and the graph builder seeds the single
// shared bias node from it once.
type BiasEstimate struct {
	Accel Vec3
	Gyro  Vec3
}

// Pose is a rigid transform: orientation in SO(3) plus position in R^3.
type Pose struct {
	Rot Rotation
	Pos Vec3
}

// NavigationState is one prior-estimator tick: pose plus body-frame
// velocity. Immutable once read from the state source.
type NavigationState struct {
	Pose Pose
	Vel  Vec3
}
