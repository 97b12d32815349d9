// Package session holds the confirmed and pending inputs of a lattice
// analysis and recomputes the analysis whenever a confirmed input changes.
package session

import (
	"errors"
	"fmt"
	"math/rand"
	"sync"

	"github.com/freeeve/stake-lattice/api/internal/scenario"
	"github.com/freeeve/stake-lattice/api/pkg/lattice"
)

var (
	ErrInvalidAxisLimit  = errors.New("axis limit must be positive")
	ErrInvalidCoordinate = errors.New("coordinates must be positive")
)

// VoterBuy is the voter's acquisition move as entered.
type VoterBuy struct {
	From lattice.Coord `json:"from"`
	To   lattice.Coord `json:"to"`
}

// VoterPatch is a partial edit of a pending voter buy. Nil fields are kept.
type VoterPatch struct {
	FromX *int `json:"x1,omitempty"`
	FromY *int `json:"y1,omitempty"`
	ToX   *int `json:"x2,omitempty"`
	ToY   *int `json:"y2,omitempty"`
}

// EntityPatch is a partial edit of a pending entity position.
type EntityPatch struct {
	X *int `json:"x,omitempty"`
	Y *int `json:"y,omitempty"`
}

// Inputs is everything an analysis depends on.
type Inputs struct {
	AxisLimit                int
	LatticeLimit             int // axis limit the candidates were generated at, 0 before Initialize
	Voter                    VoterBuy
	Entity                   lattice.Coord
	AllowUnilateralIncrement bool
}

// Key renders the inputs as a stable memoization key.
func (in Inputs) Key() string {
	return fmt.Sprintf("L%d:G%d:v%d,%d-%d,%d:e%d,%d:u%t",
		in.AxisLimit, in.LatticeLimit,
		in.Voter.From.X, in.Voter.From.Y, in.Voter.To.X, in.Voter.To.Y,
		in.Entity.X, in.Entity.Y, in.AllowUnilateralIncrement)
}

// Analyzer ranks sell targets for a set of inputs.
type Analyzer interface {
	Analyze(in Inputs, candidates []lattice.Point, move lattice.VoterMove) []lattice.TargetRecord
}

// DirectAnalyzer evaluates every candidate with no memoization.
type DirectAnalyzer struct{}

func (DirectAnalyzer) Analyze(in Inputs, candidates []lattice.Point, move lattice.VoterMove) []lattice.TargetRecord {
	return lattice.RankTargets(candidates, in.Entity, move, in.AllowUnilateralIncrement, in.AxisLimit)
}

// Snapshot is a consistent copy of a session's state.
type Snapshot struct {
	AxisLimit                int
	Voter                    VoterBuy
	Entity                   lattice.Coord
	PendingVoter             VoterBuy
	PendingEntity            lattice.Coord
	AllowUnilateralIncrement bool
	Initialized              bool
	Applied                  bool
	HasPendingEdits          bool
	Lattice                  []lattice.Point
	Move                     *lattice.VoterMove
	Targets                  []lattice.TargetRecord
}

// Session is safe for concurrent use.
type Session struct {
	mu       sync.RWMutex
	analyzer Analyzer

	axisLimit    int
	latticeLimit int
	voter        VoterBuy
	entity       lattice.Coord
	pendVoter    VoterBuy
	pendEntity   lattice.Coord
	unilateral   bool
	initialized  bool
	applied      bool

	points  []lattice.Point
	move    *lattice.VoterMove
	targets []lattice.TargetRecord
}

// New creates a session from a scenario. A nil analyzer uses DirectAnalyzer.
// The lattice is not generated until Initialize.
func New(sc scenario.Scenario, analyzer Analyzer) *Session {
	if analyzer == nil {
		analyzer = DirectAnalyzer{}
	}
	voter := VoterBuy{From: sc.Voter.From.Coord(), To: sc.Voter.To.Coord()}
	entity := sc.Entity.Coord()
	return &Session{
		analyzer:   analyzer,
		axisLimit:  sc.AxisLimit,
		voter:      voter,
		entity:     entity,
		pendVoter:  voter,
		pendEntity: entity,
		unilateral: sc.AllowUnilateralIncrement,
		points:     []lattice.Point{},
		targets:    []lattice.TargetRecord{},
	}
}

// Scenario returns the confirmed inputs in scenario form.
func (s *Session) Scenario() scenario.Scenario {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return scenario.Scenario{
		AxisLimit:                s.axisLimit,
		AllowUnilateralIncrement: s.unilateral,
		Voter: scenario.Voter{
			From: scenario.Point{X: s.voter.From.X, Y: s.voter.From.Y},
			To:   scenario.Point{X: s.voter.To.X, Y: s.voter.To.Y},
		},
		Entity: scenario.Point{X: s.entity.X, Y: s.entity.Y},
	}
}

// SetAxisLimit changes the bound used for validity and recomputes. The
// lattice keeps its current points until Initialize.
func (s *Session) SetAxisLimit(limit int) error {
	if limit < 1 {
		return fmt.Errorf("%w: %d", ErrInvalidAxisLimit, limit)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.axisLimit = limit
	s.recomputeLocked()
	return nil
}

// Initialize regenerates the lattice for the current axis limit and
// recomputes. Confirmed voter and entity inputs must be applied again.
func (s *Session) Initialize() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.points = lattice.Generate(s.axisLimit)
	s.latticeLimit = s.axisLimit
	s.initialized = true
	s.applied = false
	s.recomputeLocked()
}

// SetAllowUnilateralIncrement applies the relaxation flag and recomputes.
func (s *Session) SetAllowUnilateralIncrement(allow bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.unilateral = allow
	s.recomputeLocked()
}

// SetPendingVoter edits the pending voter buy.
func (s *Session) SetPendingVoter(p VoterPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := s.pendVoter
	apply(&v.From.X, p.FromX)
	apply(&v.From.Y, p.FromY)
	apply(&v.To.X, p.ToX)
	apply(&v.To.Y, p.ToY)
	if !positive(v.From) || !positive(v.To) {
		return fmt.Errorf("%w: voter %v → %v", ErrInvalidCoordinate, v.From, v.To)
	}
	s.pendVoter = v
	return nil
}

// SetPendingEntity edits the pending entity position.
func (s *Session) SetPendingEntity(p EntityPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.pendEntity
	apply(&e.X, p.X)
	apply(&e.Y, p.Y)
	if !positive(e) {
		return fmt.Errorf("%w: entity %v", ErrInvalidCoordinate, e)
	}
	s.pendEntity = e
	return nil
}

// RandomizeVoter replaces the pending voter buy with a random move whose
// deltas fit the pending entity.
func (s *Session) RandomizeVoter(rng *rand.Rand) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entity := s.pendEntity
	from, to := lattice.RandomVoterMove(rng, s.axisLimit, &entity)
	s.pendVoter = VoterBuy{From: from, To: to}
}

// RandomizeEntity replaces the pending entity with a random lattice point no
// smaller than the pending voter's deltas.
func (s *Session) RandomizeEntity(rng *rand.Rand) {
	s.mu.Lock()
	defer s.mu.Unlock()
	minDelta := lattice.Coord{
		X: s.pendVoter.To.X - s.pendVoter.From.X,
		Y: s.pendVoter.To.Y - s.pendVoter.From.Y,
	}
	s.pendEntity = lattice.RandomEntityPosition(rng, s.axisLimit, minDelta)
}

// Confirm promotes the pending inputs and recomputes.
func (s *Session) Confirm() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.voter = s.pendVoter
	s.entity = s.pendEntity
	s.applied = true
	s.recomputeLocked()
}

// Discard resets the pending inputs to the confirmed ones.
func (s *Session) Discard() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pendVoter = s.voter
	s.pendEntity = s.entity
}

// HasPendingEdits reports whether the pending inputs differ from the
// confirmed ones.
func (s *Session) HasPendingEdits() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hasPendingLocked()
}

// Recompute reruns the analysis for the confirmed inputs.
func (s *Session) Recompute() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recomputeLocked()
}

// Inputs returns the confirmed inputs.
func (s *Session) Inputs() Inputs {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.inputsLocked()
}

// Snapshot returns a copy of the full state. Slices are shared and must not
// be modified; the session replaces rather than mutates them.
func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var move *lattice.VoterMove
	if s.move != nil {
		m := *s.move
		move = &m
	}
	return Snapshot{
		AxisLimit:                s.axisLimit,
		Voter:                    s.voter,
		Entity:                   s.entity,
		PendingVoter:             s.pendVoter,
		PendingEntity:            s.pendEntity,
		AllowUnilateralIncrement: s.unilateral,
		Initialized:              s.initialized,
		Applied:                  s.applied,
		HasPendingEdits:          s.hasPendingLocked(),
		Lattice:                  s.points,
		Move:                     move,
		Targets:                  s.targets,
	}
}

func (s *Session) inputsLocked() Inputs {
	return Inputs{
		AxisLimit:                s.axisLimit,
		LatticeLimit:             s.latticeLimit,
		Voter:                    s.voter,
		Entity:                   s.entity,
		AllowUnilateralIncrement: s.unilateral,
	}
}

func (s *Session) hasPendingLocked() bool {
	return s.voter != s.pendVoter || s.entity != s.pendEntity
}

func (s *Session) recomputeLocked() {
	move := lattice.ComputeMove(s.voter.From, s.voter.To)
	s.move = &move
	s.targets = s.analyzer.Analyze(s.inputsLocked(), s.points, move)
	if s.targets == nil {
		s.targets = []lattice.TargetRecord{}
	}
}

func apply(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func positive(c lattice.Coord) bool {
	return c.X >= 1 && c.Y >= 1
}
