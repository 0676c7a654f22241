// Package schedule decides which eligible prospect is acted on next and how
// long to pause beforehand. Selection is stateless across calls except for the
// shared rate limiter: callers re-fetch candidates each cycle so externally
// caused status changes are picked up immediately.
package schedule

import (
	"math/rand"
	"time"

	"github.com/AnandVadgama/Linkedin-Outreach-automation/internal/models"
	"github.com/AnandVadgama/Linkedin-Outreach-automation/internal/ratelimit"
)

// Pick is one scheduling decision: the chosen prospect and the pause to honor
// before acting on it.
type Pick struct {
	Prospect models.Prospect
	Wait     time.Duration
}

type Scheduler struct {
	limiter  *ratelimit.Limiter
	delayMin time.Duration
	delayMax time.Duration
	rng      *rand.Rand
}

// New builds a Scheduler with delays in [delayMin, delayMax]. Bounds come from
// config and are validated there (min > 0, max >= min).
func New(limiter *ratelimit.Limiter, delayMin, delayMax time.Duration) *Scheduler {
	return &Scheduler{
		limiter:  limiter,
		delayMin: delayMin,
		delayMax: delayMax,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// WithRand overrides the delay RNG. Test hook.
func (s *Scheduler) WithRand(rng *rand.Rand) *Scheduler {
	s.rng = rng
	return s
}

// NextAction returns the next single action to perform: the first candidate
// in input order (no reordering, keeping runs fair and deterministic) plus a
// uniformly random wait. ok is false when the pool is empty or the budget for
// kind is exhausted.
func (s *Scheduler) NextAction(candidates []models.Prospect, kind ratelimit.Kind) (pick Pick, ok bool) {
	if len(candidates) == 0 || s.limiter.IsExhausted(kind) {
		return Pick{}, false
	}
	return Pick{Prospect: candidates[0], Wait: s.wait()}, true
}

// Limiter exposes the shared rate limiter for callers that need to inspect
// remaining budget (dry runs, summaries).
func (s *Scheduler) Limiter() *ratelimit.Limiter {
	return s.limiter
}

func (s *Scheduler) wait() time.Duration {
	if s.delayMax <= s.delayMin {
		return s.delayMin
	}
	spread := s.delayMax - s.delayMin
	return s.delayMin + time.Duration(s.rng.Int63n(int64(spread)+1))
}
