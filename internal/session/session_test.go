package session

import (
	"errors"
	"math/rand"
	"sync"
	"testing"

	"github.com/freeeve/stake-lattice/api/internal/scenario"
	"github.com/freeeve/stake-lattice/api/pkg/lattice"
)

func intp(n int) *int { return &n }

type countingAnalyzer struct {
	mu    sync.Mutex
	calls []Inputs
}

func (a *countingAnalyzer) Analyze(in Inputs, candidates []lattice.Point, move lattice.VoterMove) []lattice.TargetRecord {
	a.mu.Lock()
	a.calls = append(a.calls, in)
	a.mu.Unlock()
	return DirectAnalyzer{}.Analyze(in, candidates, move)
}

func TestNewSessionIsUninitialized(t *testing.T) {
	s := New(scenario.Default(), nil)
	snap := s.Snapshot()
	if snap.Initialized || snap.Applied {
		t.Error("new session should be neither initialized nor applied")
	}
	if len(snap.Lattice) != 0 || len(snap.Targets) != 0 || snap.Move != nil {
		t.Error("new session should have no analysis")
	}
	if snap.HasPendingEdits {
		t.Error("pending should start equal to confirmed")
	}
}

func TestInitializeComputesAnalysis(t *testing.T) {
	s := New(scenario.Default(), nil)
	s.Initialize()
	snap := s.Snapshot()
	if !snap.Initialized || snap.Applied {
		t.Errorf("expected initialized and not applied, got %+v", snap)
	}
	if len(snap.Lattice) != 68 {
		t.Errorf("expected 68 points, got %d", len(snap.Lattice))
	}
	if snap.Move == nil || snap.Move.DeltaX != 26 || snap.Move.DeltaY != 9 {
		t.Errorf("unexpected move %+v", snap.Move)
	}
	if len(snap.Targets) != 4 {
		t.Errorf("expected 4 strict targets, got %d", len(snap.Targets))
	}
}

func TestRelaxationRecomputes(t *testing.T) {
	s := New(scenario.Default(), nil)
	s.Initialize()
	s.SetAllowUnilateralIncrement(true)
	if n := len(s.Snapshot().Targets); n != 10 {
		t.Errorf("expected 10 relaxed targets, got %d", n)
	}
	s.SetAllowUnilateralIncrement(false)
	if n := len(s.Snapshot().Targets); n != 4 {
		t.Errorf("expected 4 strict targets, got %d", n)
	}
}

func TestPendingEditsConfirmAndDiscard(t *testing.T) {
	s := New(scenario.Default(), nil)
	s.Initialize()

	if err := s.SetPendingEntity(EntityPatch{X: intp(48), Y: intp(36)}); err != nil {
		t.Fatalf("set entity: %v", err)
	}
	if !s.HasPendingEdits() {
		t.Fatal("expected pending edits")
	}
	if s.Snapshot().Entity != (lattice.Coord{X: 52, Y: 39}) {
		t.Error("confirmed entity changed before Confirm")
	}

	s.Discard()
	if s.HasPendingEdits() {
		t.Error("discard should clear pending edits")
	}
	if s.Snapshot().PendingEntity != (lattice.Coord{X: 52, Y: 39}) {
		t.Error("discard should restore confirmed entity")
	}

	if err := s.SetPendingVoter(VoterPatch{ToX: intp(48), ToY: intp(36)}); err != nil {
		t.Fatalf("set voter: %v", err)
	}
	s.Confirm()
	snap := s.Snapshot()
	if !snap.Applied || snap.HasPendingEdits {
		t.Errorf("expected applied with no pending edits, got %+v", snap)
	}
	if snap.Voter.To != (lattice.Coord{X: 48, Y: 36}) || snap.Voter.From != (lattice.Coord{X: 18, Y: 24}) {
		t.Errorf("unexpected voter %+v", snap.Voter)
	}
	if snap.Move.DeltaX != 30 || snap.Move.DeltaY != 12 {
		t.Errorf("expected recomputed deltas (30,12), got (%d,%d)", snap.Move.DeltaX, snap.Move.DeltaY)
	}
}

func TestInitializeResetsApplied(t *testing.T) {
	s := New(scenario.Default(), nil)
	s.Initialize()
	s.Confirm()
	if !s.Snapshot().Applied {
		t.Fatal("expected applied")
	}
	s.Initialize()
	if s.Snapshot().Applied {
		t.Error("initialize should clear applied")
	}
}

func TestInvalidEdits(t *testing.T) {
	s := New(scenario.Default(), nil)
	if err := s.SetAxisLimit(0); !errors.Is(err, ErrInvalidAxisLimit) {
		t.Errorf("expected ErrInvalidAxisLimit, got %v", err)
	}
	if err := s.SetPendingEntity(EntityPatch{Y: intp(0)}); !errors.Is(err, ErrInvalidCoordinate) {
		t.Errorf("expected ErrInvalidCoordinate, got %v", err)
	}
	if err := s.SetPendingVoter(VoterPatch{FromX: intp(-2)}); !errors.Is(err, ErrInvalidCoordinate) {
		t.Errorf("expected ErrInvalidCoordinate, got %v", err)
	}
	if s.HasPendingEdits() {
		t.Error("rejected edits must not change pending state")
	}
}

func TestAxisLimitAppliesOnInitialize(t *testing.T) {
	s := New(scenario.Default(), nil)
	s.Initialize()
	if err := s.SetAxisLimit(30); err != nil {
		t.Fatalf("set axis limit: %v", err)
	}
	if n := len(s.Snapshot().Lattice); n != 68 {
		t.Errorf("lattice should keep 68 points until initialize, got %d", n)
	}
	for _, rec := range s.Snapshot().Targets {
		if rec.Target.X > 30 || rec.Target.Y > 30 {
			t.Errorf("target %v ranked beyond the new limit", rec.Target.Coord())
		}
	}
	s.Initialize()
	snap := s.Snapshot()
	if len(snap.Lattice) == 68 {
		t.Error("expected smaller lattice after initialize")
	}
	for _, p := range snap.Lattice {
		if p.X > 30 || p.Y > 30 {
			t.Fatalf("point %v outside new limit", p)
		}
	}
}

// fallbackBuy is what RandomVoterMove returns when sampling finds nothing.
var fallbackBuy = VoterBuy{From: lattice.Coord{X: 3, Y: 4}, To: lattice.Coord{X: 5, Y: 12}}

func TestRandomizeRespectsConstraints(t *testing.T) {
	s := New(scenario.Default(), nil)
	rng := rand.New(rand.NewSource(5))
	for i := 0; i < 50; i++ {
		s.RandomizeVoter(rng)
		snap := s.Snapshot()
		v, e := snap.PendingVoter, snap.PendingEntity
		if v != fallbackBuy && (v.To.X-v.From.X > e.X || v.To.Y-v.From.Y > e.Y) {
			t.Fatalf("voter %v exceeds entity %v", v, e)
		}

		s.RandomizeEntity(rng)
		snap = s.Snapshot()
		v, e = snap.PendingVoter, snap.PendingEntity
		if e.X < v.To.X-v.From.X || e.Y < v.To.Y-v.From.Y {
			t.Fatalf("entity %v below voter deltas %v", e, v)
		}
	}
	if snap := s.Snapshot(); snap.Voter != (VoterBuy{From: lattice.Coord{X: 18, Y: 24}, To: lattice.Coord{X: 44, Y: 33}}) {
		t.Error("randomize must only touch pending inputs")
	}
}

func TestAnalyzerReceivesInputs(t *testing.T) {
	a := &countingAnalyzer{}
	s := New(scenario.Default(), a)
	s.Initialize()
	s.SetAllowUnilateralIncrement(true)

	if len(a.calls) != 2 {
		t.Fatalf("expected 2 analyses, got %d", len(a.calls))
	}
	if a.calls[0].Key() == a.calls[1].Key() {
		t.Error("relaxation change should change the key")
	}
	if a.calls[1] != s.Inputs() {
		t.Errorf("expected last call with current inputs, got %+v", a.calls[1])
	}
}

func TestInputsKey(t *testing.T) {
	in := Inputs{
		AxisLimit:    60,
		LatticeLimit: 60,
		Voter:        VoterBuy{From: lattice.Coord{X: 18, Y: 24}, To: lattice.Coord{X: 44, Y: 33}},
		Entity:       lattice.Coord{X: 52, Y: 39},
	}
	if got, want := in.Key(), "L60:G60:v18,24-44,33:e52,39:ufalse"; got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestScenarioRoundTrip(t *testing.T) {
	sc := scenario.Default()
	sc.AllowUnilateralIncrement = true
	s := New(sc, nil)
	if s.Scenario() != sc {
		t.Errorf("expected %+v, got %+v", sc, s.Scenario())
	}
}

func TestConcurrentAccess(t *testing.T) {
	s := New(scenario.Default(), nil)
	s.Initialize()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				s.SetAllowUnilateralIncrement((i+j)%2 == 0)
				_ = s.Snapshot()
				_ = s.SetPendingEntity(EntityPatch{X: intp(40 + j)})
				s.Confirm()
			}
		}(i)
	}
	wg.Wait()
}
