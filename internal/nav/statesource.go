package nav

import "fmt"

// StateSource exposes a prior trajectory as an ordered sequence of
// timestamped navigation states, one per discrete checkpoint index.
type StateSource interface {
	// StateAt returns the navigation state at the given checkpoint index.
	StateAt(index int) (NavigationState, error)

	// TimeAt returns the raw timestamp of the given checkpoint index.
	TimeAt(index int) (Ticks, error)

	// Count returns the number of available checkpoints.
	Count() int
}

// SliceStateSource adapts in-memory prior-estimator output (states plus
// matching timestamps) to the StateSource interface.
type SliceStateSource struct {
	States []NavigationState
	Times  []Ticks
}

// NewSliceStateSource builds a SliceStateSource. States and times must be
// the same length and times must be non-decreasing; duplicate ticks are
// allowed (the sequencer skips them).
func NewSliceStateSource(states []NavigationState, times []Ticks) (*SliceStateSource, error) {
	if len(states) != len(times) {
		return nil, fmt.Errorf("nav: %d states but %d timestamps", len(states), len(times))
	}
	return &SliceStateSource{States: states, Times: times}, nil
}

// StateAt implements StateSource.
func (s *SliceStateSource) StateAt(index int) (NavigationState, error) {
	if index < 0 || index >= len(s.States) {
		return NavigationState{}, fmt.Errorf("%w: state %d of %d", ErrIndexOutOfRange, index, len(s.States))
	}
	return s.States[index], nil
}

// TimeAt implements StateSource.
func (s *SliceStateSource) TimeAt(index int) (Ticks, error) {
	if index < 0 || index >= len(s.Times) {
		return 0, fmt.Errorf("%w: time %d of %d", ErrIndexOutOfRange, index, len(s.Times))
	}
	return s.Times[index], nil
}

// Count implements StateSource.
func (s *SliceStateSource) Count() int { return len(s.States) }

// StateFromEuler builds a NavigationState from prior-estimator channels:
// position, body velocity and roll/pitch/yaw angles. Orientation composes
// the three single-axis rotations in the fixed roll-pitch-yaw order (see
// RotationRPY).
func StateFromEuler(pos, vel Vec3, roll, pitch, yaw float64) NavigationState {
	return NavigationState{
		Pose: Pose{Rot: RotationRPY(roll, pitch, yaw), Pos: pos},
		Vel:  vel,
	}
}
