// Package sim generates mutually consistent synthetic AUV sensor streams
// for exercising the graph construction pipeline without recorded logs: a
// prior trajectory at checkpoint rate, IMU samples at high rate and depth
// readings at low rate, all on one integer tick base.
package sim

import (
	"math"

	"github.com/banshee-data/auvnav/internal/nav"
)

// DiveConfig describes a constant-rate turning descent. The vehicle holds
// a fixed forward speed and descent rate while yawing at a fixed rate;
// roll and pitch stay zero. All intervals are ticks on the common base.
type DiveConfig struct {
	Checkpoints        int       // number of prior-state ticks to emit
	StartTick          nav.Ticks // timestamp of checkpoint 0
	CheckpointInterval nav.Ticks // prior-state period
	ImuInterval        nav.Ticks // IMU period
	DepthInterval      nav.Ticks // depth-sensor period

	ForwardSpeed float64 // m/s, body x
	DescentRate  float64 // m/s along the pose z axis (deeper = larger z)
	TurnRate     float64 // rad/s yaw rate

	Gravity float64          // m/s^2, folded into simulated specific force
	Bias    nav.BiasEstimate // corrupts emitted IMU samples
	Scale   float64          // ticks to seconds; nav.DefaultTickScale if 0
}

// DefaultDiveConfig returns a short lawn-mower-style descent: 10 Hz prior
// states, 100 Hz IMU, 2 Hz depth.
func DefaultDiveConfig() DiveConfig {
	return DiveConfig{
		Checkpoints:        20,
		StartTick:          1_000_000_000,
		CheckpointInterval: 100_000_000,
		ImuInterval:        10_000_000,
		DepthInterval:      500_000_000,
		ForwardSpeed:       1.2,
		DescentRate:        0.3,
		TurnRate:           0.1,
		Gravity:            9.81,
		Scale:              nav.DefaultTickScale,
	}
}

// Streams is one generated dataset: the prior trajectory plus both sensor
// streams, each strictly increasing in timestamp.
type Streams struct {
	States     []nav.NavigationState
	StateTicks []nav.Ticks
	Imu        []nav.ImuSample
	Depth      []nav.DepthSample
}

// Dive generates the synthetic dataset for the given profile. The sensor
// streams run one guard sample past the final checkpoint so the sequencer
// never exhausts them mid-run. Output is deterministic.
func Dive(cfg DiveConfig) Streams {
	if cfg.Scale <= 0 {
		cfg.Scale = nav.DefaultTickScale
	}
	end := cfg.StartTick + nav.Ticks(cfg.Checkpoints)*cfg.CheckpointInterval

	var out Streams
	for i := 0; i < cfg.Checkpoints; i++ {
		tick := cfg.StartTick + nav.Ticks(i)*cfg.CheckpointInterval
		out.StateTicks = append(out.StateTicks, tick)
		out.States = append(out.States, cfg.stateAt(tick))
	}
	for tick := cfg.StartTick; tick <= end; tick += cfg.ImuInterval {
		out.Imu = append(out.Imu, cfg.imuAt(tick))
	}
	// One past end so the depth cursor cannot run dry before the final
	// checkpoint.
	for tick := cfg.StartTick + cfg.DepthInterval/2; tick <= end+cfg.DepthInterval; tick += cfg.DepthInterval {
		out.Depth = append(out.Depth, nav.DepthSample{T: tick, Depth: cfg.depthAt(tick)})
	}
	return out
}

// elapsed converts a tick to seconds since the start of the profile.
func (cfg DiveConfig) elapsed(tick nav.Ticks) float64 {
	return cfg.Scale * float64(tick-cfg.StartTick)
}

// stateAt returns the exact trajectory state at a tick. Body velocity is
// constant by construction; position integrates the turning motion in
// closed form.
func (cfg DiveConfig) stateAt(tick nav.Ticks) nav.NavigationState {
	t := cfg.elapsed(tick)
	yaw := cfg.TurnRate * t
	var x, y float64
	if cfg.TurnRate != 0 {
		x = cfg.ForwardSpeed / cfg.TurnRate * math.Sin(yaw)
		y = cfg.ForwardSpeed / cfg.TurnRate * (1 - math.Cos(yaw))
	} else {
		x = cfg.ForwardSpeed * t
	}
	pos := nav.Vec3{x, y, cfg.DescentRate * t}
	vel := nav.Vec3{cfg.ForwardSpeed, 0, cfg.DescentRate}
	return nav.StateFromEuler(pos, vel, 0, 0, yaw)
}

// imuAt returns the bias-corrupted inertial measurement at a tick. With
// constant body velocity the specific force is the centripetal term
// omega x v plus the gravity reaction along the body z axis.
func (cfg DiveConfig) imuAt(tick nav.Ticks) nav.ImuSample {
	omega := nav.Vec3{0, 0, cfg.TurnRate}
	vel := nav.Vec3{cfg.ForwardSpeed, 0, cfg.DescentRate}
	centripetal := nav.Vec3{
		omega[1]*vel[2] - omega[2]*vel[1],
		omega[2]*vel[0] - omega[0]*vel[2],
		omega[0]*vel[1] - omega[1]*vel[0],
	}
	accel := centripetal.Add(nav.Vec3{0, 0, cfg.Gravity})
	return nav.ImuSample{
		T:           tick,
		AngularRate: omega.Add(cfg.Bias.Gyro),
		LinearAccel: accel.Add(cfg.Bias.Accel),
	}
}

// depthAt returns the raw logged depth reading at a tick, following the
// positive-down convention the pipeline normalizes at graph build time.
func (cfg DiveConfig) depthAt(tick nav.Ticks) float64 {
	return cfg.DescentRate * cfg.elapsed(tick)
}
