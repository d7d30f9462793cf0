package engine

import (
	"sync"
	"time"

	"github.com/evdnx/gokin/config"
	"github.com/evdnx/gokin/detector"
	"github.com/evdnx/gokin/lifecycle"
	"github.com/evdnx/gokin/logger"
	"github.com/evdnx/gokin/metrics"
	"github.com/evdnx/gokin/types"
)

// Verdict is what the engine hands back for every tick: the fused
// snapshot, the lifecycle status, the safety flag and the recommended
// action.
type Verdict struct {
	Snapshot       types.KineticSnapshot
	Lifecycle      types.LifecycleStatus
	IsSafe         bool
	Recommendation types.Recommendation
}

// Engine owns one stair detector, one spike/trap detector and one
// lifecycle tracker for a single instrument, fans every tick out to all
// three and fuses their verdicts. The symbol-to-engine mapping is the
// caller's concern; an Engine never sees more than one instrument.
type Engine struct {
	mu     sync.Mutex
	symbol string
	cfg    config.Config
	log    logger.Logger

	stair   *detector.Stair
	spike   *detector.SpikeTrap
	tracker *lifecycle.Tracker

	history []types.KineticSnapshot
}

// New builds an engine for one symbol. The config is validated once
// here and shared by the detectors. A nil logger falls back to a no-op
// one.
func New(symbol string, cfg config.Config, log logger.Logger) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.NewNop()
	}
	stair, err := detector.NewStair(symbol, cfg, log)
	if err != nil {
		return nil, err
	}
	spike, err := detector.NewSpikeTrap(symbol, cfg, log)
	if err != nil {
		return nil, err
	}
	tracker, err := lifecycle.NewTracker(symbol, cfg, log)
	if err != nil {
		return nil, err
	}
	return &Engine{
		symbol:  symbol,
		cfg:     cfg,
		log:     log,
		stair:   stair,
		spike:   spike,
		tracker: tracker,
		history: make([]types.KineticSnapshot, 0, cfg.HistoryCapacity),
	}, nil
}

// OnPriceUpdate fans one tick out to the three components and merges
// the results. Timestamps are assumed monotonic but not enforced; an
// out-of-order tick clamps any negative elapsed time to zero inside the
// components instead of failing.
func (e *Engine) OnPriceUpdate(ts time.Time, price, high float64) (Verdict, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	stairSnap, err := e.stair.Update(ts, price)
	if err != nil {
		return Verdict{}, err
	}
	spikeSnap, err := e.spike.Update(ts, price)
	if err != nil {
		return Verdict{}, err
	}
	status, err := e.tracker.Update(ts, price, high)
	if err != nil {
		return Verdict{}, err
	}
	metrics.SamplesProcessed.WithLabelValues(e.symbol).Inc()

	snap := mergeSnapshots(stairSnap, spikeSnap)
	e.appendHistory(snap)

	safe := snap.Morphology != types.Trap &&
		status.GoldenWindowPassed &&
		status.Phase != types.Decline

	rec := recommend(snap, status)
	metrics.Recommendations.WithLabelValues(e.symbol, string(rec)).Inc()

	if !safe {
		e.log.Warn("unsafe_tick",
			logger.String("symbol", e.symbol),
			logger.String("morphology", string(snap.Morphology)),
			logger.String("phase", string(status.Phase)),
			logger.String("recommendation", string(rec)),
		)
	}

	return Verdict{
		Snapshot:       snap,
		Lifecycle:      status,
		IsSafe:         safe,
		Recommendation: rec,
	}, nil
}

// RecordBurst delegates to the lifecycle tracker.
func (e *Engine) RecordBurst(ts time.Time, price, high float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.tracker.RecordBurst(ts, price, high)
}

// Status derives the lifecycle status at ts without consuming a tick.
func (e *Engine) Status(ts time.Time) types.LifecycleStatus {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tracker.Status(ts)
}

// TrapStatistics exposes the spike detector's counters.
func (e *Engine) TrapStatistics() detector.TrapStatistics {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.spike.TrapStatistics()
}

// StairState exposes the stair detector's cached state.
func (e *Engine) StairState() detector.StairState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stair.CurrentState()
}

// History returns a copy of the retained snapshots, oldest first.
func (e *Engine) History() []types.KineticSnapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]types.KineticSnapshot, len(e.history))
	copy(out, e.history)
	return out
}

// LastSnapshot returns the most recent snapshot, if any.
func (e *Engine) LastSnapshot() (types.KineticSnapshot, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.history) == 0 {
		return types.KineticSnapshot{}, false
	}
	return e.history[len(e.history)-1], true
}

// appendHistory keeps the bounded history, evicting the oldest snapshot
// on overflow. Caller holds the lock.
func (e *Engine) appendHistory(s types.KineticSnapshot) {
	if len(e.history) == e.cfg.HistoryCapacity {
		copy(e.history, e.history[1:])
		e.history = e.history[:len(e.history)-1]
	}
	e.history = append(e.history, s)
}

// mergeSnapshots fuses the two detector snapshots into one. The
// spike/trap snapshot wins (it carries the trap flag and the sharper
// thresholds); the stair verdict only upgrades an inconclusive
// SUSTAINED/UNKNOWN tick to STAIR. Priority: TRAP > SPIKE > STAIR >
// SUSTAINED > UNKNOWN.
func mergeSnapshots(stair, spike types.KineticSnapshot) types.KineticSnapshot {
	merged := spike
	if stair.Morphology == types.Stair &&
		(merged.Morphology == types.Sustained || merged.Morphology == types.Unknown) {
		merged.Morphology = types.Stair
	}
	return merged
}

// recommend walks the fixed decision table in order.
func recommend(snap types.KineticSnapshot, status types.LifecycleStatus) types.Recommendation {
	healthy := status.GoldenWindowPassed && status.Phase != types.Decline
	switch {
	case snap.Trap:
		return types.Avoid
	case !status.GoldenWindowPassed:
		return types.Wait
	case status.Phase == types.Decline:
		return types.Pass
	case snap.Morphology == types.Stair && healthy:
		return types.Buy
	case status.Phase == types.Maintain:
		return types.Hold
	default:
		return types.Watch
	}
}
