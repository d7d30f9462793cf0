package lifecycle

import (
	"math"
	"sync"
	"time"

	"github.com/evdnx/gokin/config"
	"github.com/evdnx/gokin/logger"
	"github.com/evdnx/gokin/metrics"
	"github.com/evdnx/gokin/types"
)

// Tracker is the per-instrument phase state machine keyed to a
// registered burst. It is re-evaluated from scratch on every update and
// keeps no hysteresis, so the phase may oscillate between MAINTAIN and
// DECLINE tick-to-tick. That is intentional and must stay that way.
//
// Before a burst is registered the tracker reports EARLY with a failed
// golden-window check and the full window remaining, so the engine keeps
// answering "wait" until a breakout has actually been recorded.
type Tracker struct {
	mu     sync.Mutex
	symbol string
	cfg    config.Config
	log    logger.Logger

	hasBurst  bool
	burstAt   time.Time
	highWater float64

	maintainCount int
	sustainCount  int
	totalChecks   int

	lastPhase types.Phase
}

// NewTracker validates the config and builds a tracker for one symbol.
// A nil logger falls back to a no-op one.
func NewTracker(symbol string, cfg config.Config, log logger.Logger) (*Tracker, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Tracker{symbol: symbol, cfg: cfg, log: log, lastPhase: types.Early}, nil
}

// RecordBurst registers a breakout. It is the only reset operation:
// burst timestamp and high-water mark are (re)initialized and every
// counter is zeroed.
func (t *Tracker) RecordBurst(ts time.Time, price, high float64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if high <= 0 {
		high = price
	}
	t.hasBurst = true
	t.burstAt = ts
	t.highWater = high
	t.maintainCount = 0
	t.sustainCount = 0
	t.totalChecks = 0
	t.lastPhase = types.Early

	t.log.Info("burst_recorded",
		logger.String("symbol", t.symbol),
		logger.Time("burst_at", ts),
		logger.Float64("price", price),
		logger.Float64("high", high),
	)
}

// Update ingests one tick: the high-water mark ratchets up, the
// maintain band is checked, and the phase is re-derived from scratch.
func (t *Tracker) Update(ts time.Time, price, high float64) (types.LifecycleStatus, error) {
	if math.IsNaN(price) || math.IsInf(price, 0) ||
		math.IsNaN(high) || math.IsInf(high, 0) {
		return types.LifecycleStatus{}, types.ErrNonFinitePrice
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	if high > t.highWater {
		t.highWater = high
	}
	t.totalChecks++
	if t.highWater > 0 && price >= t.highWater*t.cfg.MaintainThreshold {
		t.maintainCount++
		t.sustainCount++
	}

	st := t.statusLocked(ts)
	metrics.LifecyclePhase.WithLabelValues(t.symbol).Set(phaseValue(st.Phase))
	if st.Phase != t.lastPhase {
		t.log.Info("lifecycle_phase_changed",
			logger.String("symbol", t.symbol),
			logger.String("from", string(t.lastPhase)),
			logger.String("to", string(st.Phase)),
			logger.Float64("sustain_ratio", st.SustainRatio),
		)
		t.lastPhase = st.Phase
	}
	return st, nil
}

// Status derives the status at ts without consuming a tick. Pure read.
func (t *Tracker) Status(ts time.Time) types.LifecycleStatus {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.statusLocked(ts)
}

// IsQualified is the convenience gate: golden-window check passed,
// sustain ratio at or above the threshold, and the phase is not
// DECLINE. The price argument mirrors the caller's tick and keeps the
// gate usable as a drop-in predicate; the verdict itself is derived
// from time and ratio only.
func (t *Tracker) IsQualified(ts time.Time, price float64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	st := t.statusLocked(ts)
	return st.GoldenWindowPassed &&
		st.SustainRatio >= t.cfg.SustainRatioThreshold &&
		st.Phase != types.Decline
}

// statusLocked re-derives the full status at ts. Caller holds the lock.
func (t *Tracker) statusLocked(ts time.Time) types.LifecycleStatus {
	ratio := 0.0
	if t.totalChecks > 0 {
		ratio = float64(t.sustainCount) / float64(t.totalChecks)
	}

	windowSec := t.cfg.GoldenWindowSeconds()
	elapsed := 0.0
	if t.hasBurst {
		elapsed = ts.Sub(t.burstAt).Seconds()
		if elapsed < 0 {
			// Out-of-order tick; clamp rather than reject.
			elapsed = 0
		}
	}
	inWindow := elapsed <= windowSec

	// Without a registered burst there is no window to pass; the check
	// stays failed so downstream gates keep answering "wait".
	passed := t.hasBurst
	if inWindow && ratio < t.cfg.SustainRatioThreshold {
		passed = false
	}

	phase := types.Decline
	switch {
	case inWindow:
		phase = types.Early
	case passed && ratio >= t.cfg.SustainRatioThreshold:
		phase = types.Maintain
	}

	remaining := windowSec - elapsed
	if remaining < 0 {
		remaining = 0
	}

	return types.LifecycleStatus{
		Symbol:             t.symbol,
		Phase:              phase,
		MaintainCount:      t.maintainCount,
		SustainRatio:       ratio,
		GoldenWindowPassed: passed,
		RemainingSeconds:   remaining,
		BurstTimestamp:     t.burstAt,
	}
}

func phaseValue(p types.Phase) float64 {
	switch p {
	case types.Maintain:
		return 1
	case types.Decline:
		return 2
	default:
		return 0
	}
}
