package detector

import (
	"math"
	"sync"
	"time"

	"github.com/evdnx/gokin/config"
	"github.com/evdnx/gokin/logger"
	"github.com/evdnx/gokin/types"
)

// StairState is a point-in-time read of the stair detector.
type StairState struct {
	Velocity     float64
	Acceleration float64
	Prices       []float64
}

// Stair classifies sustained low-volatility upward drift from the
// velocity and acceleration of the last WindowSize+1 prices.
//
// A tick is STAIR when velocity clears VelocityThreshold while
// acceleration stays inside AccelerationTolerance. A rising tick whose
// acceleration drops below -2x the tolerance is tagged TRAP as a
// candidate only; confirmation (cooldown gating, trap counting) is the
// spike detector's job, so the snapshot's Trap flag stays false here.
type Stair struct {
	mu     sync.Mutex
	symbol string
	cfg    config.Config
	log    logger.Logger

	win          *window
	velocity     float64
	acceleration float64
	lastMorph    types.Morphology
}

// NewStair validates the config and builds a detector for one symbol.
// A nil logger falls back to a no-op one.
func NewStair(symbol string, cfg config.Config, log logger.Logger) (*Stair, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Stair{
		symbol:    symbol,
		cfg:       cfg,
		log:       log,
		win:       newWindow(cfg.WindowSize + 1),
		lastMorph: types.Unknown,
	}, nil
}

// Update ingests one tick and returns the resulting snapshot.
func (s *Stair) Update(ts time.Time, price float64) (types.KineticSnapshot, error) {
	if math.IsNaN(price) || math.IsInf(price, 0) {
		return types.KineticSnapshot{}, types.ErrNonFinitePrice
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.win.push(ts, price)

	// First differences; both default to 0 until enough history exists.
	var v, a float64
	if s.win.len() >= 2 {
		v = s.win.last().price - s.win.prev().price
	}
	if s.win.len() >= 3 {
		a = v - s.velocity
	}
	s.velocity, s.acceleration = v, a

	morph := types.Unknown
	switch {
	case v > s.cfg.VelocityThreshold && math.Abs(a) < s.cfg.AccelerationTolerance:
		morph = types.Stair
	case v > 0 && a < -2*s.cfg.AccelerationTolerance:
		morph = types.Trap
	}

	if morph != s.lastMorph {
		s.log.Info("stair_morphology_changed",
			logger.String("symbol", s.symbol),
			logger.String("from", string(s.lastMorph)),
			logger.String("to", string(morph)),
			logger.Float64("velocity", v),
			logger.Float64("acceleration", a),
		)
		s.lastMorph = morph
	}

	return types.KineticSnapshot{
		Timestamp:    ts,
		Price:        price,
		High:         s.win.maxPrice(),
		Velocity:     v,
		Acceleration: a,
		Morphology:   morph,
	}, nil
}

// CurrentState returns the cached last velocity/acceleration and a copy
// of the window contents. It is a pure read; repeated calls without an
// intervening Update return identical values.
func (s *Stair) CurrentState() StairState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return StairState{
		Velocity:     s.velocity,
		Acceleration: s.acceleration,
		Prices:       s.win.prices(),
	}
}
