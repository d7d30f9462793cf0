package detector

import (
	"math"
	"sync"
	"time"

	"github.com/evdnx/gokin/config"
	"github.com/evdnx/gokin/logger"
	"github.com/evdnx/gokin/metrics"
	"github.com/evdnx/gokin/types"
)

// TrapStatistics is a point-in-time read of the spike/trap detector.
// InCooldown is evaluated against the timestamp of the last ingested
// sample, never the wall clock, so reads stay deterministic.
type TrapStatistics struct {
	TrapCount         int
	ConsecutiveSpikes int
	LastTrapAt        time.Time
	InCooldown        bool
}

// SpikeTrap classifies single-tick spikes and cooldown-gated traps. It
// keeps WindowSize+2 prices plus a WindowSize-length velocity history.
//
// A trap is a spike (velocity above SpikeVelocityThreshold) whose
// acceleration falls below TrapAccelerationThreshold, and the cooldown
// guarantees at most one trap flag per CooldownSeconds window. A spike
// suppressed by the cooldown still counts toward the consecutive-spike
// run and is tagged SPIKE.
type SpikeTrap struct {
	mu     sync.Mutex
	symbol string
	cfg    config.Config
	log    logger.Logger

	win        *window
	velocities *floatRing

	velocity     float64
	acceleration float64

	trapCount         int
	consecutiveSpikes int
	lastTrapAt        time.Time
	lastSeen          time.Time
}

// NewSpikeTrap validates the config and builds a detector for one
// symbol. A nil logger falls back to a no-op one.
func NewSpikeTrap(symbol string, cfg config.Config, log logger.Logger) (*SpikeTrap, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &SpikeTrap{
		symbol:     symbol,
		cfg:        cfg,
		log:        log,
		win:        newWindow(cfg.WindowSize + 2),
		velocities: newFloatRing(cfg.WindowSize),
	}, nil
}

// Update ingests one tick and returns the resulting snapshot, trap flag
// included.
func (s *SpikeTrap) Update(ts time.Time, price float64) (types.KineticSnapshot, error) {
	if math.IsNaN(price) || math.IsInf(price, 0) {
		return types.KineticSnapshot{}, types.ErrNonFinitePrice
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.win.push(ts, price)
	s.lastSeen = ts

	var v, a float64
	if s.win.len() >= 2 {
		v = s.win.last().price - s.win.prev().price
		s.velocities.push(v)
	}
	if s.velocities.len() >= 2 {
		a = s.velocities.last() - s.velocities.prev()
	}
	s.velocity, s.acceleration = v, a

	// Cooldown-gated trap check runs before the plain spike check.
	trap := false
	if v > s.cfg.SpikeVelocityThreshold && a < s.cfg.TrapAccelerationThreshold &&
		!s.inCooldownAt(ts) {
		trap = true
		s.trapCount++
		s.lastTrapAt = ts
		metrics.TrapsDetected.WithLabelValues(s.symbol).Inc()
		s.log.Warn("trap_detected",
			logger.String("symbol", s.symbol),
			logger.Float64("velocity", v),
			logger.Float64("acceleration", a),
			logger.Int("trap_count", s.trapCount),
		)
	}

	if v > s.cfg.SpikeVelocityThreshold {
		s.consecutiveSpikes++
	} else {
		s.consecutiveSpikes = 0
	}
	metrics.ConsecutiveSpikes.WithLabelValues(s.symbol).Set(float64(s.consecutiveSpikes))

	morph := types.Unknown
	switch {
	case trap:
		morph = types.Trap
	case v > s.cfg.SpikeVelocityThreshold:
		morph = types.Spike
	case v > 0 && math.Abs(a) <= s.cfg.AccelerationTolerance:
		morph = types.Sustained
	}

	return types.KineticSnapshot{
		Timestamp:    ts,
		Price:        price,
		High:         s.win.maxPrice(),
		Velocity:     v,
		Acceleration: a,
		Morphology:   morph,
		Trap:         trap,
	}, nil
}

// TrapStatistics returns the trap/spike counters. Pure read, no
// mutation.
func (s *SpikeTrap) TrapStatistics() TrapStatistics {
	s.mu.Lock()
	defer s.mu.Unlock()
	return TrapStatistics{
		TrapCount:         s.trapCount,
		ConsecutiveSpikes: s.consecutiveSpikes,
		LastTrapAt:        s.lastTrapAt,
		InCooldown:        s.inCooldownAt(s.lastSeen),
	}
}

// VelocityHistory returns a copy of the retained velocities, oldest
// first.
func (s *SpikeTrap) VelocityHistory() []float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.velocities.values()
}

// inCooldownAt reports whether ts falls inside the cooldown window of
// the last trap. A ts earlier than the last trap clamps to zero elapsed.
func (s *SpikeTrap) inCooldownAt(ts time.Time) bool {
	if s.lastTrapAt.IsZero() {
		return false
	}
	elapsed := ts.Sub(s.lastTrapAt).Seconds()
	if elapsed < 0 {
		elapsed = 0
	}
	return elapsed < s.cfg.CooldownSeconds
}
