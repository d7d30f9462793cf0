package config

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig is wrapped by every validation failure so callers can
// distinguish construction errors from runtime ones.
var ErrInvalidConfig = errors.New("invalid config")

// Config holds every tunable of the detectors, the lifecycle tracker and
// the engine. The zero value is not usable; start from DefaultConfig.
type Config struct {
	// WindowSize is the finite-difference depth N. The stair detector
	// keeps N+1 prices, the spike detector N+2 plus N velocities.
	WindowSize int `yaml:"window_size" envconfig:"WINDOW_SIZE"`

	// Stair detector thresholds.
	VelocityThreshold     float64 `yaml:"velocity_threshold" envconfig:"VELOCITY_THRESHOLD"`
	AccelerationTolerance float64 `yaml:"acceleration_tolerance" envconfig:"ACCELERATION_TOLERANCE"`

	// Spike/trap detector thresholds. TrapAccelerationThreshold must be
	// negative: a trap is a spike with sharply negative deceleration.
	SpikeVelocityThreshold    float64 `yaml:"spike_velocity_threshold" envconfig:"SPIKE_VELOCITY_THRESHOLD"`
	TrapAccelerationThreshold float64 `yaml:"trap_acceleration_threshold" envconfig:"TRAP_ACCELERATION_THRESHOLD"`
	CooldownSeconds           float64 `yaml:"cooldown_seconds" envconfig:"COOLDOWN_SECONDS"`

	// Lifecycle tracker parameters.
	MaintainThreshold float64 `yaml:"maintain_threshold" envconfig:"MAINTAIN_THRESHOLD"`
	GoldenMinutes     float64 `yaml:"golden_minutes" envconfig:"GOLDEN_MINUTES"`

	// SustainRatioThreshold defaults to 1.2 even though the sustain ratio
	// is bounded to [0,1], so MAINTAIN is unreachable under defaults and
	// every instrument declines once the golden window closes. The value
	// ships as-is pending product clarification; Validate deliberately
	// accepts thresholds above 1.
	SustainRatioThreshold float64 `yaml:"sustain_ratio_threshold" envconfig:"SUSTAIN_RATIO_THRESHOLD"`

	// HistoryCapacity bounds the engine's retained snapshot history.
	HistoryCapacity int `yaml:"history_capacity" envconfig:"HISTORY_CAPACITY"`
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		WindowSize:                3,
		VelocityThreshold:         0.01,
		AccelerationTolerance:     0.005,
		SpikeVelocityThreshold:    0.02,
		TrapAccelerationThreshold: -0.015,
		CooldownSeconds:           60,
		MaintainThreshold:         0.98,
		GoldenMinutes:             3,
		SustainRatioThreshold:     1.2,
		HistoryCapacity:           100,
	}
}

// Validate checks that all numeric fields are within sensible bounds.
// It returns the first encountered error, allowing the caller to surface
// a clear configuration problem before any analysis starts.
func (c *Config) Validate() error {
	if c.WindowSize <= 0 {
		return fmt.Errorf("%w: WindowSize (%d) must be positive", ErrInvalidConfig, c.WindowSize)
	}
	if c.VelocityThreshold <= 0 {
		return fmt.Errorf("%w: VelocityThreshold (%f) must be positive", ErrInvalidConfig, c.VelocityThreshold)
	}
	if c.AccelerationTolerance <= 0 {
		return fmt.Errorf("%w: AccelerationTolerance (%f) must be positive", ErrInvalidConfig, c.AccelerationTolerance)
	}
	if c.SpikeVelocityThreshold <= 0 {
		return fmt.Errorf("%w: SpikeVelocityThreshold (%f) must be positive", ErrInvalidConfig, c.SpikeVelocityThreshold)
	}
	if c.TrapAccelerationThreshold >= 0 {
		return fmt.Errorf("%w: TrapAccelerationThreshold (%f) must be negative", ErrInvalidConfig, c.TrapAccelerationThreshold)
	}
	if c.CooldownSeconds <= 0 {
		return fmt.Errorf("%w: CooldownSeconds (%f) must be positive", ErrInvalidConfig, c.CooldownSeconds)
	}
	if c.MaintainThreshold <= 0 || c.MaintainThreshold > 1 {
		return fmt.Errorf("%w: MaintainThreshold (%f) must be in (0,1]", ErrInvalidConfig, c.MaintainThreshold)
	}
	if c.GoldenMinutes <= 0 {
		return fmt.Errorf("%w: GoldenMinutes (%f) must be positive", ErrInvalidConfig, c.GoldenMinutes)
	}
	// No upper bound: the shipped default is 1.2, above the reachable
	// range of the ratio. See the field comment.
	if c.SustainRatioThreshold <= 0 {
		return fmt.Errorf("%w: SustainRatioThreshold (%f) must be positive", ErrInvalidConfig, c.SustainRatioThreshold)
	}
	if c.HistoryCapacity <= 0 {
		return fmt.Errorf("%w: HistoryCapacity (%d) must be positive", ErrInvalidConfig, c.HistoryCapacity)
	}
	return nil
}

// GoldenWindowSeconds is the golden-window length in seconds.
func (c *Config) GoldenWindowSeconds() float64 {
	return c.GoldenMinutes * 60
}
