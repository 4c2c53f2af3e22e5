package nav

import (
	"fmt"

	"github.com/banshee-data/auvnav/internal/monitoring"
)

// EventKind tags which stream a merged sensor event came from.
type EventKind uint8

const (
	EventImu EventKind = iota
	EventDepth
)

func (k EventKind) String() string {
	if k == EventImu {
		return "imu"
	}
	return "depth"
}

// EventHandler receives merged sensor events, in chronological order, each
// exactly once. HandleImu gets the integration interval in seconds,
// already guaranteed positive.
type EventHandler interface {
	HandleImu(s ImuSample, dt float64) error
	HandleDepth(s DepthSample) error
}

// Sequencer merges the IMU and depth streams into one strictly
// time-ordered event sequence and dispatches each event once. It owns the
// read cursor into each stream; the prior-state stream is the caller's
// outer loop, advanced checkpoint by checkpoint through AdvanceTo.
type Sequencer struct {
	imu   []ImuSample
	depth []DepthSample
	scale float64 // ticks to seconds

	imuIdx   int
	depthIdx int

	lastImuT   Ticks
	hasLastImu bool
}

// NewSequencer builds a Sequencer over the two sensor streams. Both
// streams must be non-decreasing in timestamp on the common tick base;
// scale converts ticks to seconds (DefaultTickScale for nanoseconds).
func NewSequencer(imu []ImuSample, depth []DepthSample, scale float64) *Sequencer {
	if scale <= 0 {
		scale = DefaultTickScale
	}
	return &Sequencer{imu: imu, depth: depth, scale: scale}
}

// Consumed returns how many IMU and depth samples have been dispatched.
func (s *Sequencer) Consumed() (imu, depth int) {
	return s.imuIdx, s.depthIdx
}

// peek reports the next chronologically-smallest unread event without
// consuming it. Ties go to the IMU stream so the merge is deterministic.
// Either stream running dry ends the run: reading past a stream's end is
// never silently tolerated.
func (s *Sequencer) peek() (EventKind, Ticks, error) {
	if s.imuIdx >= len(s.imu) {
		return 0, 0, fmt.Errorf("%w: imu after %d samples (depth cursor %d)", ErrStreamExhausted, s.imuIdx, s.depthIdx)
	}
	if s.depthIdx >= len(s.depth) {
		return 0, 0, fmt.Errorf("%w: depth after %d samples (imu cursor %d)", ErrStreamExhausted, s.depthIdx, s.imuIdx)
	}
	imuT := s.imu[s.imuIdx].T
	depthT := s.depth[s.depthIdx].T
	if imuT <= depthT {
		return EventImu, imuT, nil
	}
	return EventDepth, depthT, nil
}

// AdvanceTo dispatches every unread sensor event strictly older than the
// checkpoint time through the handler, in merged chronological order.
// prev is the previous checkpoint's time, used to form the integration
// interval of the very first IMU sample of the run.
//
// IMU samples with a non-positive interval (duplicate timestamps) are
// consumed and skipped, never integrated. Errors from the handler and
// stream exhaustion propagate with event context attached.
func (s *Sequencer) AdvanceTo(prev, checkpoint Ticks, h EventHandler) error {
	for {
		kind, t, err := s.peek()
		if err != nil {
			return err
		}
		if t >= checkpoint {
			return nil
		}
		switch kind {
		case EventImu:
			sample := s.imu[s.imuIdx]
			s.imuIdx++
			var dt float64
			if s.hasLastImu {
				dt = s.scale * float64(sample.T-s.lastImuT)
			} else {
				dt = s.scale * float64(sample.T-prev)
			}
			s.lastImuT = sample.T
			s.hasLastImu = true
			if dt <= 0 {
				monitoring.Debugf("nav: skipping imu sample %d at t=%d, dt=%g", s.imuIdx-1, sample.T, dt)
				continue
			}
			if err := h.HandleImu(sample, dt); err != nil {
				return fmt.Errorf("imu event at t=%d: %w", sample.T, err)
			}
		case EventDepth:
			sample := s.depth[s.depthIdx]
			s.depthIdx++
			if err := h.HandleDepth(sample); err != nil {
				return fmt.Errorf("depth event at t=%d: %w", sample.T, err)
			}
		}
	}
}
