package types

import (
	"errors"
	"time"
)

// ErrNonFinitePrice is returned by update paths when a price or high is
// NaN or infinite.
var ErrNonFinitePrice = errors.New("non-finite price")

// Morphology tags the short-term price pattern a detector saw on the
// latest tick.
type Morphology string

const (
	Stair     Morphology = "STAIR"
	Spike     Morphology = "SPIKE"
	Trap      Morphology = "TRAP"
	Sustained Morphology = "SUSTAINED"
	Unknown   Morphology = "UNKNOWN"
)

// Phase is the lifecycle phase of an instrument after a burst has been
// registered.
type Phase string

const (
	Early    Phase = "EARLY"
	Maintain Phase = "MAINTAIN"
	Decline  Phase = "DECLINE"
)

// Recommendation is the action the engine suggests for the latest tick.
type Recommendation string

const (
	Avoid Recommendation = "avoid"
	Wait  Recommendation = "wait"
	Pass  Recommendation = "pass"
	Buy   Recommendation = "buy"
	Hold  Recommendation = "hold"
	Watch Recommendation = "watch"
)

// Sample is one tick of the feed: caller-supplied timestamp, last price
// and (optionally) the running intraday high.
type Sample struct {
	Timestamp time.Time
	Price     float64
	High      float64
}

// KineticSnapshot is the immutable per-update result of a detector.
// High here is the maximum price seen inside the detector's window, not
// the feed's intraday high.
type KineticSnapshot struct {
	Timestamp    time.Time
	Price        float64
	High         float64
	Velocity     float64
	Acceleration float64
	Morphology   Morphology
	Trap         bool
}

// LifecycleStatus is the immutable per-update result of the lifecycle
// tracker. BurstTimestamp is the zero time while no burst has been
// registered.
type LifecycleStatus struct {
	Symbol             string
	Phase              Phase
	MaintainCount      int
	SustainRatio       float64
	GoldenWindowPassed bool
	RemainingSeconds   float64
	BurstTimestamp     time.Time
}
