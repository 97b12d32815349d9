package repository

import (
	"context"
	"time"

	"github.com/freeeve/stake-lattice/api/internal/session"
	"github.com/freeeve/stake-lattice/api/pkg/lattice"
)

// SessionStore holds live sessions in memory.
type SessionStore interface {
	Get(ctx context.Context, id string) (*session.Session, error)
	Put(ctx context.Context, id string, s *session.Session) error
	Delete(ctx context.Context, id string) error
}

// AnalysisCache memoizes ranked targets by the full input key. A miss
// returns nil with no error.
type AnalysisCache interface {
	GetTargets(ctx context.Context, key string) ([]lattice.TargetRecord, error)
	SetTargets(ctx context.Context, key string, targets []lattice.TargetRecord, ttl time.Duration) error
}

// NoopCache never stores anything.
type NoopCache struct{}

func (NoopCache) GetTargets(context.Context, string) ([]lattice.TargetRecord, error) {
	return nil, nil
}

func (NoopCache) SetTargets(context.Context, string, []lattice.TargetRecord, time.Duration) error {
	return nil
}
