// Package config loads run configuration for the graph construction
// pipeline from JSON files. All fields are pointers so a partial file can
// override just a few parameters; unset fields keep their defaults.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// RunConfig is the root configuration for one construction run.
type RunConfig struct {
	// Sensor model
	Gravity    *float64    `json:"gravity,omitempty"`     // m/s^2
	AccelBias  *[3]float64 `json:"accel_bias,omitempty"`  // m/s^2, body frame
	GyroBias   *[3]float64 `json:"gyro_bias,omitempty"`   // rad/s, body frame
	GyroSigma  *float64    `json:"gyro_sigma,omitempty"`  // rad/s/sqrt(Hz)
	AccelSigma *float64    `json:"accel_sigma,omitempty"` // m/s^2/sqrt(Hz)

	// Factor noise
	PriorPoseSigma     *float64 `json:"prior_pose_sigma,omitempty"`
	PriorVelocitySigma *float64 `json:"prior_velocity_sigma,omitempty"`
	DepthSigma         *float64 `json:"depth_sigma,omitempty"`

	// Depth sign convention: "positive_down" (default) or "positive_up"
	DepthConvention *string `json:"depth_convention,omitempty"`

	// Run shape
	MaxCheckpoints *int     `json:"max_checkpoints,omitempty"`
	TickScale      *float64 `json:"tick_scale,omitempty"` // ticks to seconds
	Streaming      *bool    `json:"streaming,omitempty"`  // solve per checkpoint
}

// Defaults returns the stock configuration the batch runs use.
func Defaults() *RunConfig {
	return &RunConfig{
		Gravity:            ptrFloat64(9.81),
		AccelBias:          &[3]float64{0.067, 0.115, 0.320},
		GyroBias:           &[3]float64{0.067, 0.115, 0.320},
		GyroSigma:          ptrFloat64(1e-3),
		AccelSigma:         ptrFloat64(1e-2),
		PriorPoseSigma:     ptrFloat64(0.1),
		PriorVelocitySigma: ptrFloat64(0.1),
		DepthSigma:         ptrFloat64(0.01),
		DepthConvention:    ptrString("positive_down"),
		MaxCheckpoints:     ptrInt(0),
		TickScale:          ptrFloat64(1e-9),
		Streaming:          ptrBool(false),
	}
}

func ptrFloat64(v float64) *float64 { return &v }
func ptrBool(v bool) *bool          { return &v }
func ptrString(v string) *string    { return &v }
func ptrInt(v int) *int             { return &v }

// Load reads a RunConfig from a JSON file. The file must have a .json
// extension; fields omitted from the file stay nil so partial configs are
// safe to merge over Defaults with Apply.
func Load(path string) (*RunConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}
	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg := &RunConfig{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Apply overlays the set fields of other onto c and returns c.
func (c *RunConfig) Apply(other *RunConfig) *RunConfig {
	if other == nil {
		return c
	}
	if other.Gravity != nil {
		c.Gravity = other.Gravity
	}
	if other.AccelBias != nil {
		c.AccelBias = other.AccelBias
	}
	if other.GyroBias != nil {
		c.GyroBias = other.GyroBias
	}
	if other.GyroSigma != nil {
		c.GyroSigma = other.GyroSigma
	}
	if other.AccelSigma != nil {
		c.AccelSigma = other.AccelSigma
	}
	if other.PriorPoseSigma != nil {
		c.PriorPoseSigma = other.PriorPoseSigma
	}
	if other.PriorVelocitySigma != nil {
		c.PriorVelocitySigma = other.PriorVelocitySigma
	}
	if other.DepthSigma != nil {
		c.DepthSigma = other.DepthSigma
	}
	if other.DepthConvention != nil {
		c.DepthConvention = other.DepthConvention
	}
	if other.MaxCheckpoints != nil {
		c.MaxCheckpoints = other.MaxCheckpoints
	}
	if other.TickScale != nil {
		c.TickScale = other.TickScale
	}
	if other.Streaming != nil {
		c.Streaming = other.Streaming
	}
	return c
}

// Validate checks the configuration values that have been set.
func (c *RunConfig) Validate() error {
	if c.Gravity != nil && *c.Gravity <= 0 {
		return fmt.Errorf("gravity must be positive, got %f", *c.Gravity)
	}
	if c.GyroSigma != nil && *c.GyroSigma <= 0 {
		return fmt.Errorf("gyro_sigma must be positive, got %f", *c.GyroSigma)
	}
	if c.AccelSigma != nil && *c.AccelSigma <= 0 {
		return fmt.Errorf("accel_sigma must be positive, got %f", *c.AccelSigma)
	}
	if c.PriorPoseSigma != nil && *c.PriorPoseSigma <= 0 {
		return fmt.Errorf("prior_pose_sigma must be positive, got %f", *c.PriorPoseSigma)
	}
	if c.PriorVelocitySigma != nil && *c.PriorVelocitySigma <= 0 {
		return fmt.Errorf("prior_velocity_sigma must be positive, got %f", *c.PriorVelocitySigma)
	}
	if c.DepthSigma != nil && *c.DepthSigma <= 0 {
		return fmt.Errorf("depth_sigma must be positive, got %f", *c.DepthSigma)
	}
	if c.DepthConvention != nil {
		switch *c.DepthConvention {
		case "positive_down", "positive_up":
		default:
			return fmt.Errorf("depth_convention must be positive_down or positive_up, got %q", *c.DepthConvention)
		}
	}
	if c.MaxCheckpoints != nil && *c.MaxCheckpoints < 0 {
		return fmt.Errorf("max_checkpoints must be non-negative, got %d", *c.MaxCheckpoints)
	}
	if c.TickScale != nil && *c.TickScale <= 0 {
		return fmt.Errorf("tick_scale must be positive, got %f", *c.TickScale)
	}
	return nil
}
