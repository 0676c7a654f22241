// Package outreach drives one outreach run: it pulls eligible prospects from
// the store, asks the scheduler which prospect to act on next, performs the
// external action, applies the lifecycle transition and records the action
// against the daily budget. Actions are strictly sequential within a run; the
// external automation session is not safe for concurrent use.
package outreach

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/AnandVadgama/Linkedin-Outreach-automation/internal/lifecycle"
	"github.com/AnandVadgama/Linkedin-Outreach-automation/internal/logging"
	"github.com/AnandVadgama/Linkedin-Outreach-automation/internal/models"
	"github.com/AnandVadgama/Linkedin-Outreach-automation/internal/ratelimit"
	"github.com/AnandVadgama/Linkedin-Outreach-automation/internal/schedule"
)

// Store is the slice of prospect persistence the runner needs. Implemented by
// the sqlite store; tests supply fakes.
type Store interface {
	ListByStatus(ctx context.Context, status models.ProspectStatus, limit int) ([]models.Prospect, error)
	ListAwaitingFollowUp(ctx context.Context, limit int) ([]models.Prospect, error)
	RecordConnectionSent(ctx context.Context, prospectID int64, status models.ProspectStatus, note string) (models.ConnectionRequest, bool, error)
	RecordFollowUpSent(ctx context.Context, prospectID int64, content string) (models.Message, error)
}

// Automator is the external capability that talks to the platform's web UI.
type Automator interface {
	SendConnectionRequest(ctx context.Context, profileURL, note string) error
	SendMessage(ctx context.Context, profileURL, content string) error
}

// StopReason explains why a run ended. None of these are failures.
type StopReason string

const (
	ReasonPoolExhausted   StopReason = "pool exhausted"
	ReasonBudgetExhausted StopReason = "budget exhausted"
	ReasonLimitReached    StopReason = "limit reached"
	ReasonCancelled       StopReason = "cancelled"
)

// RunConfig parameterizes one run.
type RunConfig struct {
	Kind ratelimit.Kind
	// Limit caps successful actions this run; <= 0 means budget-bound only.
	Limit    int
	Template string
	DryRun   bool
	// ActionTimeout bounds each external automation call. A timed-out call is
	// a failure, never a success.
	ActionTimeout time.Duration
}

// Summary reports what a run did, regardless of how it ended. Partial
// progress is never discarded.
type Summary struct {
	Attempted int
	Succeeded int
	Skipped   int
	// Planned holds the prospects a dry run would have acted on.
	Planned []models.Prospect
	Reason  StopReason
}

type Runner struct {
	st    Store
	auto  Automator
	sched *schedule.Scheduler
	log   *logging.Logger
}

func NewRunner(st Store, auto Automator, sched *schedule.Scheduler, log *logging.Logger) *Runner {
	return &Runner{st: st, auto: auto, sched: sched, log: log.With("module", "outreach")}
}

// Run performs actions until the candidate pool drains, the budget runs out,
// the run limit is reached, or ctx is cancelled. Per-prospect failures are
// skipped; authentication and persistence failures abort the run.
func (r *Runner) Run(ctx context.Context, rc RunConfig) (Summary, error) {
	if rc.ActionTimeout <= 0 {
		rc.ActionTimeout = 2 * time.Minute
	}
	if rc.DryRun {
		return r.dryRun(ctx, rc)
	}

	var sum Summary
	visited := map[int64]bool{} // prospects already attempted this run
	for {
		if rc.Limit > 0 && sum.Succeeded >= rc.Limit {
			sum.Reason = ReasonLimitReached
			return sum, nil
		}
		// Re-fetch every cycle so externally caused status changes are
		// reflected immediately.
		candidates, err := r.fetch(ctx, rc.Kind)
		if err != nil {
			return sum, fmt.Errorf("fetch candidates: %w", err)
		}
		candidates = dropVisited(candidates, visited)

		pick, ok := r.sched.NextAction(candidates, rc.Kind)
		if !ok {
			if len(candidates) == 0 {
				sum.Reason = ReasonPoolExhausted
			} else {
				sum.Reason = ReasonBudgetExhausted
			}
			return sum, nil
		}

		r.log.Info("next action scheduled",
			"kind", string(rc.Kind), "prospect_id", pick.Prospect.ID,
			"url", pick.Prospect.LinkedInURL, "wait", pick.Wait.String())
		if err := sleepCtx(ctx, pick.Wait); err != nil {
			sum.Reason = ReasonCancelled
			return sum, nil
		}

		sum.Attempted++
		visited[pick.Prospect.ID] = true
		if err := r.performOne(ctx, rc, pick.Prospect); err != nil {
			var authErr *AuthError
			if errors.As(err, &authErr) {
				return sum, err
			}
			var viol *lifecycle.ViolationError
			var autoErr *AutomationError
			if errors.As(err, &viol) || errors.As(err, &autoErr) {
				sum.Skipped++
				r.log.Warn("skipping prospect",
					"prospect_id", pick.Prospect.ID, "kind", string(rc.Kind), "err", err)
				continue
			}
			// Persistence failure: the action's effects must not be
			// considered applied.
			return sum, err
		}
		sum.Succeeded++
		r.sched.Limiter().RecordAction(rc.Kind)
	}
}

func (r *Runner) fetch(ctx context.Context, kind ratelimit.Kind) ([]models.Prospect, error) {
	switch kind {
	case ratelimit.KindConnection:
		return r.st.ListByStatus(ctx, models.StatusNew, 0)
	case ratelimit.KindMessage:
		return r.st.ListAwaitingFollowUp(ctx, 0)
	default:
		return nil, fmt.Errorf("unknown action kind %q", kind)
	}
}

// performOne executes a single action end to end. The lifecycle transition is
// decided before the external call so an ineligible prospect is skipped
// without touching the platform.
func (r *Runner) performOne(ctx context.Context, rc RunConfig, p models.Prospect) error {
	actx, cancel := context.WithTimeout(ctx, rc.ActionTimeout)
	defer cancel()

	switch rc.Kind {
	case ratelimit.KindConnection:
		trans, err := lifecycle.Apply(p.Status, lifecycle.ConnectionRequested)
		if err != nil {
			return err
		}
		note := RenderTemplate(rc.Template, p)
		if err := r.auto.SendConnectionRequest(actx, p.LinkedInURL, note); err != nil {
			return classify(err, p, "send_connection")
		}
		if _, _, err := r.st.RecordConnectionSent(ctx, p.ID, trans.To, note); err != nil {
			// The platform accepted the action but we could not persist it:
			// external and internal state have diverged.
			r.log.Error("reconciliation hazard: connection sent but not persisted",
				"prospect_id", p.ID, "url", p.LinkedInURL, "err", err)
			return fmt.Errorf("persist connection for prospect %d after successful send: %w", p.ID, err)
		}
	case ratelimit.KindMessage:
		// Sending a follow-up does not move the funnel; eligibility (CONNECTED,
		// no follow-up yet) is enforced by the candidate fetch.
		content := RenderTemplate(rc.Template, p)
		if err := r.auto.SendMessage(actx, p.LinkedInURL, content); err != nil {
			return classify(err, p, "send_message")
		}
		if _, err := r.st.RecordFollowUpSent(ctx, p.ID, content); err != nil {
			r.log.Error("reconciliation hazard: message sent but not persisted",
				"prospect_id", p.ID, "url", p.LinkedInURL, "err", err)
			return fmt.Errorf("persist follow-up for prospect %d after successful send: %w", p.ID, err)
		}
	default:
		return fmt.Errorf("unknown action kind %q", rc.Kind)
	}
	return nil
}

// dryRun routes through the scheduler's selection so the report matches what
// a real run would attempt, without sleeping, invoking automation, or
// mutating store or limiter state. Stop checks run in the same order as the
// real loop, so the reported reason is the one a real run would end with: an
// empty pool wins over a spent budget, and a disabled limiter never reports
// budget exhaustion.
func (r *Runner) dryRun(ctx context.Context, rc RunConfig) (Summary, error) {
	var sum Summary
	candidates, err := r.fetch(ctx, rc.Kind)
	if err != nil {
		return sum, fmt.Errorf("fetch candidates: %w", err)
	}

	lim := r.sched.Limiter()
	remaining := lim.RemainingBudget(rc.Kind)

	rest := candidates
	for {
		if rc.Limit > 0 && len(sum.Planned) >= rc.Limit {
			sum.Reason = ReasonLimitReached
			break
		}
		if len(rest) == 0 {
			sum.Reason = ReasonPoolExhausted
			break
		}
		if lim.Enabled() && len(sum.Planned) >= remaining {
			sum.Reason = ReasonBudgetExhausted
			break
		}
		pick, ok := r.sched.NextAction(rest, rc.Kind)
		if !ok {
			// Budget was already spent before this run started.
			sum.Reason = ReasonBudgetExhausted
			break
		}
		sum.Planned = append(sum.Planned, pick.Prospect)
		rest = rest[1:]
	}
	sum.Attempted = len(sum.Planned)
	return sum, nil
}

// classify wraps automation failures so the loop can tell fatal auth errors
// from per-prospect skips. Timeouts count as automation failures.
func classify(err error, p models.Prospect, op string) error {
	var authErr *AuthError
	if errors.As(err, &authErr) {
		return err
	}
	var autoErr *AutomationError
	if errors.As(err, &autoErr) {
		return err
	}
	return &AutomationError{ProspectID: p.ID, ProfileURL: p.LinkedInURL, Op: op, Err: err}
}

func dropVisited(candidates []models.Prospect, visited map[int64]bool) []models.Prospect {
	if len(visited) == 0 {
		return candidates
	}
	out := candidates[:0]
	for _, c := range candidates {
		if !visited[c.ID] {
			out = append(out, c)
		}
	}
	return out
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
