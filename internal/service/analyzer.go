package service

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/freeeve/stake-lattice/api/internal/repository"
	"github.com/freeeve/stake-lattice/api/internal/session"
	"github.com/freeeve/stake-lattice/api/pkg/lattice"
)

// cacheTimeout bounds each cache round trip made during a recompute.
const cacheTimeout = 250 * time.Millisecond

// CachingAnalyzer memoizes rankings in an AnalysisCache keyed on the full
// session inputs. Cache failures fall back to computing directly.
type CachingAnalyzer struct {
	cache repository.AnalysisCache
	ttl   time.Duration
}

// NewCachingAnalyzer creates a CachingAnalyzer.
func NewCachingAnalyzer(cache repository.AnalysisCache, ttl time.Duration) *CachingAnalyzer {
	return &CachingAnalyzer{cache: cache, ttl: ttl}
}

// Analyze implements session.Analyzer.
func (a *CachingAnalyzer) Analyze(in session.Inputs, candidates []lattice.Point, move lattice.VoterMove) []lattice.TargetRecord {
	key := in.Key()

	ctx, cancel := context.WithTimeout(context.Background(), cacheTimeout)
	defer cancel()

	cached, err := a.cache.GetTargets(ctx, key)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Analysis cache read failed")
	}
	if cached != nil {
		log.Debug().Str("key", key).Int("targets", len(cached)).Msg("Analysis cache hit")
		return cached
	}

	targets := session.DirectAnalyzer{}.Analyze(in, candidates, move)
	if err := a.cache.SetTargets(ctx, key, targets, a.ttl); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Analysis cache write failed")
	}
	return targets
}
