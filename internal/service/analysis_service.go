package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/freeeve/stake-lattice/api/internal/model"
	"github.com/freeeve/stake-lattice/api/internal/repository"
	"github.com/freeeve/stake-lattice/api/internal/scenario"
	"github.com/freeeve/stake-lattice/api/internal/session"
	"github.com/freeeve/stake-lattice/api/pkg/lattice"
)

// DefaultSessionID is the single session served to the presentation client.
const DefaultSessionID = "default"

// MaxAxisLimit caps the lattice size a request may ask for.
const MaxAxisLimit = scenario.MaxAxisLimit

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrInvalidInput    = errors.New("invalid input")
)

// Randomize targets.
const (
	RandomizeVoter  = "voter"
	RandomizeEntity = "entity"
)

// AnalysisService owns lattice sessions and recomputes their analysis after
// every confirmed change.
type AnalysisService struct {
	store       repository.SessionStore
	analyzer    session.Analyzer
	broadcaster Broadcaster
	defaults    scenario.Scenario

	rngMu sync.Mutex
	rng   *rand.Rand // nil uses the global source
}

// NewAnalysisService creates an AnalysisService. New sessions start from
// defaults.
func NewAnalysisService(store repository.SessionStore, analyzer session.Analyzer, broadcaster Broadcaster, defaults scenario.Scenario) *AnalysisService {
	if broadcaster == nil {
		broadcaster = NoopBroadcaster{}
	}
	return &AnalysisService{store: store, analyzer: analyzer, broadcaster: broadcaster, defaults: defaults}
}

// Seed makes randomization reproducible.
func (s *AnalysisService) Seed(seed int64) {
	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	s.rng = rand.New(rand.NewSource(seed))
}

// Open returns the session under id, creating and initializing it from the
// defaults if it does not exist.
func (s *AnalysisService) Open(ctx context.Context, id string) (*model.Session, error) {
	sess, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		sess = session.New(s.defaults, s.analyzer)
		sess.Initialize()
		if err := s.store.Put(ctx, id, sess); err != nil {
			return nil, fmt.Errorf("store session: %w", err)
		}
		log.Info().Str("sessionId", id).Int("axisLimit", s.defaults.AxisLimit).Msg("Session created")
	}
	return toView(id, sess.Snapshot()), nil
}

// View returns the current state of a session.
func (s *AnalysisService) View(ctx context.Context, id string) (*model.Session, error) {
	sess, err := s.session(ctx, id)
	if err != nil {
		return nil, err
	}
	return toView(id, sess.Snapshot()), nil
}

// Scenario returns the confirmed inputs of a session.
func (s *AnalysisService) Scenario(ctx context.Context, id string) (scenario.Scenario, error) {
	sess, err := s.session(ctx, id)
	if err != nil {
		return scenario.Scenario{}, err
	}
	return sess.Scenario(), nil
}

// Lattice generates the points for an axis limit.
func (s *AnalysisService) Lattice(axisLimit int) (*model.Lattice, error) {
	if err := checkAxisLimit(axisLimit); err != nil {
		return nil, err
	}
	points := lattice.Generate(axisLimit)
	return &model.Lattice{AxisLimit: axisLimit, Count: len(points), Points: points}, nil
}

// UpdateSettings changes the axis limit and/or relaxation flag. A new axis
// limit regenerates the lattice as Initialize does; either change
// recomputes and broadcasts.
func (s *AnalysisService) UpdateSettings(ctx context.Context, id string, in model.Settings) (*model.Session, error) {
	sess, err := s.session(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.AxisLimit != nil {
		if err := checkAxisLimit(*in.AxisLimit); err != nil {
			return nil, err
		}
	}
	if in.AxisLimit == nil && in.AllowUnilateralIncrement == nil {
		return toView(id, sess.Snapshot()), nil
	}

	if in.AllowUnilateralIncrement != nil {
		sess.SetAllowUnilateralIncrement(*in.AllowUnilateralIncrement)
	}
	if in.AxisLimit != nil {
		if err := sess.SetAxisLimit(*in.AxisLimit); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		sess.Initialize()
		log.Info().Str("sessionId", id).Int("axisLimit", *in.AxisLimit).Msg("Lattice regenerated")
	}
	return s.publish(id, sess, EventAnalysisUpdated), nil
}

// Initialize regenerates the session lattice and recomputes.
func (s *AnalysisService) Initialize(ctx context.Context, id string) (*model.Session, error) {
	sess, err := s.session(ctx, id)
	if err != nil {
		return nil, err
	}
	sess.Initialize()
	return s.publish(id, sess, EventAnalysisUpdated), nil
}

// EditVoter edits the pending voter buy.
func (s *AnalysisService) EditVoter(ctx context.Context, id string, p session.VoterPatch) (*model.Session, error) {
	sess, err := s.session(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := sess.SetPendingVoter(p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return s.publish(id, sess, EventPendingChanged), nil
}

// EditEntity edits the pending entity position.
func (s *AnalysisService) EditEntity(ctx context.Context, id string, p session.EntityPatch) (*model.Session, error) {
	sess, err := s.session(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := sess.SetPendingEntity(p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return s.publish(id, sess, EventPendingChanged), nil
}

// Randomize replaces the pending voter buy or entity position (kind is
// RandomizeVoter or RandomizeEntity).
func (s *AnalysisService) Randomize(ctx context.Context, id, kind string) (*model.Session, error) {
	sess, err := s.session(ctx, id)
	if err != nil {
		return nil, err
	}

	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	switch kind {
	case RandomizeVoter:
		sess.RandomizeVoter(s.rng)
	case RandomizeEntity:
		sess.RandomizeEntity(s.rng)
	default:
		return nil, fmt.Errorf("%w: unknown randomize target %q", ErrInvalidInput, kind)
	}
	return s.publish(id, sess, EventPendingChanged), nil
}

// Confirm applies the pending inputs and recomputes.
func (s *AnalysisService) Confirm(ctx context.Context, id string) (*model.Session, error) {
	sess, err := s.session(ctx, id)
	if err != nil {
		return nil, err
	}
	sess.Confirm()
	view := s.publish(id, sess, EventAnalysisUpdated)
	log.Info().
		Str("sessionId", id).
		Int("targets", view.Analysis.TargetCount).
		Msg("Inputs confirmed")
	return view, nil
}

// Discard drops the pending inputs.
func (s *AnalysisService) Discard(ctx context.Context, id string) (*model.Session, error) {
	sess, err := s.session(ctx, id)
	if err != nil {
		return nil, err
	}
	sess.Discard()
	return s.publish(id, sess, EventPendingChanged), nil
}

// Evaluate checks a single sell target outside of any session.
func (s *AnalysisService) Evaluate(req model.EvaluateRequest) (*model.EvaluateResponse, error) {
	if err := checkAxisLimit(req.AxisLimit); err != nil {
		return nil, err
	}
	target := req.Target
	if target.Cost == 0 {
		target = lattice.NewPoint(target.X, target.Y)
	}
	move := lattice.ComputeMove(req.VoterFrom, req.VoterTo)

	err := lattice.CheckSellMove(target, req.Entity, move.Holdings(), req.AllowUnilateralIncrement, req.AxisLimit)
	if err != nil {
		var se *lattice.SellMoveError
		if !errors.As(err, &se) {
			return nil, err
		}
		return &model.EvaluateResponse{Clause: se.Clause.String(), Reason: se.Message}, nil
	}
	// The supplied cost passed the shape check; derive the rest from the
	// coordinates.
	rec := lattice.NewTargetRecord(lattice.NewPoint(target.X, target.Y), req.Entity, move)
	return &model.EvaluateResponse{Valid: true, Record: &rec}, nil
}

func (s *AnalysisService) session(ctx context.Context, id string) (*session.Session, error) {
	sess, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

func (s *AnalysisService) publish(id string, sess *session.Session, event string) *model.Session {
	view := toView(id, sess.Snapshot())
	s.broadcaster.BroadcastSessionEvent(id, event, view)
	return view
}

func checkAxisLimit(n int) error {
	if n < 1 || n > MaxAxisLimit {
		return fmt.Errorf("%w: axis limit must be within 1..%d, got %d", ErrInvalidInput, MaxAxisLimit, n)
	}
	return nil
}

func toView(id string, snap session.Snapshot) *model.Session {
	v := &model.Session{
		ID:                       id,
		AxisLimit:                snap.AxisLimit,
		AllowUnilateralIncrement: snap.AllowUnilateralIncrement,
		Initialized:              snap.Initialized,
		Applied:                  snap.Applied,
		HasPendingEdits:          snap.HasPendingEdits,
		Voter:                    toBuy(snap.Voter),
		Entity:                   snap.Entity.Point(),
		PendingVoter:             toBuy(snap.PendingVoter),
		PendingEntity:            snap.PendingEntity.Point(),
	}
	if snap.Move != nil {
		v.Analysis = &model.Analysis{
			Move:        *snap.Move,
			PointCount:  len(snap.Lattice),
			TargetCount: len(snap.Targets),
			Targets:     snap.Targets,
		}
	}
	return v
}

func toBuy(b session.VoterBuy) model.VoterBuy {
	return model.VoterBuy{From: b.From.Point(), To: b.To.Point()}
}
