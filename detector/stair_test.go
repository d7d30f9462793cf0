package detector

import (
	"errors"
	"math"
	"reflect"
	"testing"
	"time"

	"github.com/evdnx/gokin/config"
	"github.com/evdnx/gokin/testutils"
	"github.com/evdnx/gokin/types"
)

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func buildStair(t *testing.T) *Stair {
	s, err := NewStair("TEST", config.DefaultConfig(), testutils.NewMockLogger())
	if err != nil {
		t.Fatalf("NewStair failed: %v", err)
	}
	return s
}

// feedStair pushes prices one second apart starting at t0 and returns
// the final snapshot.
func feedStair(t *testing.T, s *Stair, t0 time.Time, prices []float64) types.KineticSnapshot {
	var snap types.KineticSnapshot
	var err error
	for i, p := range prices {
		snap, err = s.Update(t0.Add(time.Duration(i)*time.Second), p)
		if err != nil {
			t.Fatalf("Update(%v) failed: %v", p, err)
		}
	}
	return snap
}

func TestStairSteadyClimb(t *testing.T) {
	// Constant +0.02 increments, one per second: velocity 0.02,
	// acceleration 0, STAIR on the final sample.
	s := buildStair(t)
	t0 := time.Unix(1_700_000_000, 0)
	snap := feedStair(t, s, t0, []float64{10.00, 10.02, 10.04, 10.06})

	if !near(snap.Velocity, 0.02) {
		t.Fatalf("expected velocity 0.02, got %v", snap.Velocity)
	}
	if !near(snap.Acceleration, 0) {
		t.Fatalf("expected acceleration 0, got %v", snap.Acceleration)
	}
	if snap.Morphology != types.Stair {
		t.Fatalf("expected STAIR, got %v", snap.Morphology)
	}
	if !near(snap.High, 10.06) {
		t.Fatalf("expected window high 10.06, got %v", snap.High)
	}
}

func TestStairHoldsAfterWindowFills(t *testing.T) {
	// Once the window is full every further constant-increment sample
	// stays STAIR.
	s := buildStair(t)
	t0 := time.Unix(1_700_000_000, 0)
	feedStair(t, s, t0, []float64{10.00, 10.02, 10.04, 10.06})
	price := 10.06
	for i := 4; i < 20; i++ {
		price += 0.02
		snap, err := s.Update(t0.Add(time.Duration(i)*time.Second), price)
		if err != nil {
			t.Fatalf("Update failed: %v", err)
		}
		if snap.Morphology != types.Stair {
			t.Fatalf("tick %d: expected STAIR, got %v", i, snap.Morphology)
		}
	}
}

func TestStairDefaultsBeforeHistory(t *testing.T) {
	s := buildStair(t)
	t0 := time.Unix(1_700_000_000, 0)
	snap, err := s.Update(t0, 10.00)
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if snap.Velocity != 0 || snap.Acceleration != 0 {
		t.Fatalf("expected zero derivatives on first sample, got v=%v a=%v",
			snap.Velocity, snap.Acceleration)
	}
	if snap.Morphology != types.Unknown {
		t.Fatalf("expected UNKNOWN, got %v", snap.Morphology)
	}
}

func TestStairTagsTrapCandidate(t *testing.T) {
	// Still rising but decelerating hard: velocity positive,
	// acceleration below -2x tolerance.
	s := buildStair(t)
	t0 := time.Unix(1_700_000_000, 0)
	snap := feedStair(t, s, t0, []float64{10.00, 10.40, 10.45})

	if snap.Morphology != types.Trap {
		t.Fatalf("expected TRAP candidate, got %v", snap.Morphology)
	}
	if snap.Trap {
		t.Fatal("stair detector must not confirm traps")
	}
}

func TestStairRejectsNonFinitePrice(t *testing.T) {
	s := buildStair(t)
	for _, bad := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		if _, err := s.Update(time.Unix(0, 0), bad); !errors.Is(err, types.ErrNonFinitePrice) {
			t.Fatalf("expected ErrNonFinitePrice for %v, got %v", bad, err)
		}
	}
}

func TestStairCurrentStateIsIdempotent(t *testing.T) {
	s := buildStair(t)
	t0 := time.Unix(1_700_000_000, 0)
	feedStair(t, s, t0, []float64{10.00, 10.02, 10.04})

	first := s.CurrentState()
	second := s.CurrentState()
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("state changed between reads: %+v vs %+v", first, second)
	}
	if !near(first.Velocity, 0.02) {
		t.Fatalf("expected cached velocity 0.02, got %v", first.Velocity)
	}
	if len(first.Prices) != 3 {
		t.Fatalf("expected 3 retained prices, got %d", len(first.Prices))
	}
}

func TestNewStairRejectsBadConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.WindowSize = 0
	if _, err := NewStair("TEST", cfg, nil); err == nil {
		t.Fatal("expected config validation error")
	}
}
