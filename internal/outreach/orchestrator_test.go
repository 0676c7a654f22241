package outreach

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AnandVadgama/Linkedin-Outreach-automation/internal/logging"
	"github.com/AnandVadgama/Linkedin-Outreach-automation/internal/models"
	"github.com/AnandVadgama/Linkedin-Outreach-automation/internal/ratelimit"
	"github.com/AnandVadgama/Linkedin-Outreach-automation/internal/schedule"
)

// fakeStore keeps prospects in memory and records the persistence calls the
// runner makes.
type fakeStore struct {
	prospects []models.Prospect
	followups map[int64]bool

	connectionsSent int
	followUpsSent   int
	persistErr      error
}

func newFakeStore(ps ...models.Prospect) *fakeStore {
	return &fakeStore{prospects: ps, followups: map[int64]bool{}}
}

func (f *fakeStore) ListByStatus(_ context.Context, status models.ProspectStatus, _ int) ([]models.Prospect, error) {
	var out []models.Prospect
	for _, p := range f.prospects {
		if p.Status == status {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeStore) ListAwaitingFollowUp(_ context.Context, _ int) ([]models.Prospect, error) {
	var out []models.Prospect
	for _, p := range f.prospects {
		if p.Status == models.StatusConnected && !f.followups[p.ID] {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeStore) RecordConnectionSent(_ context.Context, prospectID int64, status models.ProspectStatus, note string) (models.ConnectionRequest, bool, error) {
	if f.persistErr != nil {
		return models.ConnectionRequest{}, false, f.persistErr
	}
	for i := range f.prospects {
		if f.prospects[i].ID == prospectID {
			f.prospects[i].Status = status
		}
	}
	f.connectionsSent++
	return models.ConnectionRequest{ProspectID: prospectID, Note: note, Status: models.ConnectionPending}, false, nil
}

func (f *fakeStore) RecordFollowUpSent(_ context.Context, prospectID int64, content string) (models.Message, error) {
	if f.persistErr != nil {
		return models.Message{}, f.persistErr
	}
	f.followups[prospectID] = true
	f.followUpsSent++
	return models.Message{ProspectID: prospectID, Content: content}, nil
}

// fakeAutomator succeeds unless a URL is marked to fail.
type fakeAutomator struct {
	sentConnections []string
	sentMessages    []string
	failURL         map[string]error
}

func newFakeAutomator() *fakeAutomator {
	return &fakeAutomator{failURL: map[string]error{}}
}

func (f *fakeAutomator) SendConnectionRequest(_ context.Context, profileURL, _ string) error {
	if err := f.failURL[profileURL]; err != nil {
		return err
	}
	f.sentConnections = append(f.sentConnections, profileURL)
	return nil
}

func (f *fakeAutomator) SendMessage(_ context.Context, profileURL, _ string) error {
	if err := f.failURL[profileURL]; err != nil {
		return err
	}
	f.sentMessages = append(f.sentMessages, profileURL)
	return nil
}

func newProspects(n int, status models.ProspectStatus) []models.Prospect {
	out := make([]models.Prospect, n)
	for i := range out {
		out[i] = models.Prospect{
			ID:          int64(i + 1),
			LinkedInURL: fmt.Sprintf("https://www.linkedin.com/in/prospect-%d", i+1),
			FullName:    fmt.Sprintf("Prospect %d", i+1),
			Status:      status,
		}
	}
	return out
}

func testRunner(t *testing.T, st Store, auto Automator, connBudget int) *Runner {
	t.Helper()
	lim, err := ratelimit.New(connBudget, connBudget, true)
	require.NoError(t, err)
	sched := schedule.New(lim, 0, 0) // no pauses in tests
	return NewRunner(st, auto, sched, logging.New("error"))
}

func TestRunStopsWhenBudgetExhausted(t *testing.T) {
	st := newFakeStore(newProspects(3, models.StatusNew)...)
	auto := newFakeAutomator()
	r := testRunner(t, st, auto, 2)

	sum, err := r.Run(context.Background(), RunConfig{Kind: ratelimit.KindConnection})
	require.NoError(t, err)

	assert.Equal(t, ReasonBudgetExhausted, sum.Reason)
	assert.Equal(t, 2, sum.Succeeded)
	assert.Equal(t, 2, sum.Attempted)
	assert.Equal(t, 0, sum.Skipped)
	assert.Len(t, auto.sentConnections, 2)
	assert.Equal(t, 2, st.connectionsSent)

	// The third prospect is untouched.
	fresh, _ := st.ListByStatus(context.Background(), models.StatusNew, 0)
	assert.Len(t, fresh, 1)
}

func TestRunStopsAtRunLimit(t *testing.T) {
	st := newFakeStore(newProspects(5, models.StatusNew)...)
	auto := newFakeAutomator()
	r := testRunner(t, st, auto, 10)

	sum, err := r.Run(context.Background(), RunConfig{Kind: ratelimit.KindConnection, Limit: 2})
	require.NoError(t, err)

	assert.Equal(t, ReasonLimitReached, sum.Reason)
	assert.Equal(t, 2, sum.Succeeded)
	assert.Len(t, auto.sentConnections, 2)
	// The run limit does not consume the daily budget beyond actual sends.
	assert.Equal(t, 8, r.sched.Limiter().RemainingBudget(ratelimit.KindConnection))
}

func TestRunStopsWhenPoolDrained(t *testing.T) {
	st := newFakeStore(newProspects(2, models.StatusNew)...)
	auto := newFakeAutomator()
	r := testRunner(t, st, auto, 10)

	sum, err := r.Run(context.Background(), RunConfig{Kind: ratelimit.KindConnection})
	require.NoError(t, err)

	assert.Equal(t, ReasonPoolExhausted, sum.Reason)
	assert.Equal(t, 2, sum.Succeeded)
}

func TestFailedActionDoesNotConsumeBudget(t *testing.T) {
	ps := newProspects(3, models.StatusNew)
	st := newFakeStore(ps...)
	auto := newFakeAutomator()
	auto.failURL[ps[1].LinkedInURL] = errors.New("connect button not found")
	r := testRunner(t, st, auto, 10)

	sum, err := r.Run(context.Background(), RunConfig{Kind: ratelimit.KindConnection})
	require.NoError(t, err)

	assert.Equal(t, 3, sum.Attempted)
	assert.Equal(t, 2, sum.Succeeded)
	assert.Equal(t, 1, sum.Skipped)
	// Only the two successes count against the daily budget.
	assert.Equal(t, 8, r.sched.Limiter().RemainingBudget(ratelimit.KindConnection))
}

func TestAuthErrorAbortsRun(t *testing.T) {
	ps := newProspects(3, models.StatusNew)
	st := newFakeStore(ps...)
	auto := newFakeAutomator()
	auto.failURL[ps[0].LinkedInURL] = &AuthError{Reason: "session expired"}
	r := testRunner(t, st, auto, 10)

	sum, err := r.Run(context.Background(), RunConfig{Kind: ratelimit.KindConnection})

	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, 0, sum.Succeeded)
	assert.Empty(t, auto.sentConnections)
}

func TestPersistFailureAbortsRun(t *testing.T) {
	st := newFakeStore(newProspects(3, models.StatusNew)...)
	st.persistErr = errors.New("disk I/O error")
	auto := newFakeAutomator()
	r := testRunner(t, st, auto, 10)

	sum, err := r.Run(context.Background(), RunConfig{Kind: ratelimit.KindConnection})
	require.Error(t, err)
	assert.Equal(t, 0, sum.Succeeded)
	assert.Equal(t, 1, sum.Attempted)
}

func TestIneligibleProspectSkippedWithoutSending(t *testing.T) {
	// A prospect that is not NEW anymore must never reach the automator, even
	// if the candidate fetch hands it over.
	ps := newProspects(2, models.StatusNew)
	st := &miscategorizingStore{fakeStore: *newFakeStore(ps...)}
	auto := newFakeAutomator()
	r := testRunner(t, st, auto, 10)

	sum, err := r.Run(context.Background(), RunConfig{Kind: ratelimit.KindConnection})
	require.NoError(t, err)

	assert.Equal(t, 1, sum.Skipped)
	assert.Equal(t, 1, sum.Succeeded)
	assert.NotContains(t, auto.sentConnections, ps[0].LinkedInURL)
}

// miscategorizingStore returns prospect 1 as a candidate despite a status
// that forbids the transition.
type miscategorizingStore struct{ fakeStore }

func (m *miscategorizingStore) ListByStatus(ctx context.Context, status models.ProspectStatus, limit int) ([]models.Prospect, error) {
	out, err := m.fakeStore.ListByStatus(ctx, status, limit)
	if err != nil {
		return nil, err
	}
	for i := range out {
		if out[i].ID == 1 {
			out[i].Status = models.StatusConverted
		}
	}
	return out, nil
}

func TestFollowUpRun(t *testing.T) {
	st := newFakeStore(newProspects(2, models.StatusConnected)...)
	auto := newFakeAutomator()
	r := testRunner(t, st, auto, 10)

	sum, err := r.Run(context.Background(), RunConfig{
		Kind:     ratelimit.KindMessage,
		Template: "Thanks for connecting, {{Name}}!",
	})
	require.NoError(t, err)

	assert.Equal(t, ReasonPoolExhausted, sum.Reason)
	assert.Equal(t, 2, sum.Succeeded)
	assert.Len(t, auto.sentMessages, 2)
	assert.Equal(t, 2, st.followUpsSent)
}

func TestDryRunMutatesNothing(t *testing.T) {
	st := newFakeStore(newProspects(5, models.StatusNew)...)
	auto := newFakeAutomator()
	r := testRunner(t, st, auto, 3)

	sum, err := r.Run(context.Background(), RunConfig{Kind: ratelimit.KindConnection, DryRun: true})
	require.NoError(t, err)

	assert.Equal(t, ReasonBudgetExhausted, sum.Reason)
	require.Len(t, sum.Planned, 3)
	assert.Equal(t, 3, sum.Attempted)
	assert.Equal(t, 0, sum.Succeeded)

	// Nothing was sent, persisted or counted.
	assert.Empty(t, auto.sentConnections)
	assert.Equal(t, 0, st.connectionsSent)
	assert.Equal(t, 3, r.sched.Limiter().RemainingBudget(ratelimit.KindConnection))
}

func TestDryRunHonorsRunLimit(t *testing.T) {
	st := newFakeStore(newProspects(5, models.StatusNew)...)
	r := testRunner(t, st, newFakeAutomator(), 10)

	sum, err := r.Run(context.Background(), RunConfig{Kind: ratelimit.KindConnection, DryRun: true, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, ReasonLimitReached, sum.Reason)
	assert.Len(t, sum.Planned, 2)
}

func TestDryRunReasonMatchesRealRunWhenBudgetEqualsPool(t *testing.T) {
	// Budget 3, pool 3: the pool drains exactly at the budget boundary. A live
	// run ends with the pool empty, so the dry run must report the same.
	st := newFakeStore(newProspects(3, models.StatusNew)...)
	auto := newFakeAutomator()
	r := testRunner(t, st, auto, 3)

	dry, err := r.Run(context.Background(), RunConfig{Kind: ratelimit.KindConnection, DryRun: true})
	require.NoError(t, err)
	require.Len(t, dry.Planned, 3)

	live, err := r.Run(context.Background(), RunConfig{Kind: ratelimit.KindConnection})
	require.NoError(t, err)

	assert.Equal(t, ReasonPoolExhausted, live.Reason)
	assert.Equal(t, live.Reason, dry.Reason)
	assert.Equal(t, live.Succeeded, len(dry.Planned))
}

func TestDryRunReasonWithRateLimitingDisabled(t *testing.T) {
	// With rate limiting off there is no budget to exhaust; both run modes end
	// on the drained pool.
	lim, err := ratelimit.New(1, 1, false)
	require.NoError(t, err)
	sched := schedule.New(lim, 0, 0)

	st := newFakeStore(newProspects(3, models.StatusNew)...)
	auto := newFakeAutomator()
	r := NewRunner(st, auto, sched, logging.New("error"))

	dry, err := r.Run(context.Background(), RunConfig{Kind: ratelimit.KindConnection, DryRun: true})
	require.NoError(t, err)
	assert.Equal(t, ReasonPoolExhausted, dry.Reason)
	assert.Len(t, dry.Planned, 3)

	live, err := r.Run(context.Background(), RunConfig{Kind: ratelimit.KindConnection})
	require.NoError(t, err)
	assert.Equal(t, ReasonPoolExhausted, live.Reason)
	assert.Equal(t, 3, live.Succeeded)
}

func TestDryRunSpentBudgetBeforeStart(t *testing.T) {
	st := newFakeStore(newProspects(3, models.StatusNew)...)
	r := testRunner(t, st, newFakeAutomator(), 2)
	r.sched.Limiter().Seed(ratelimit.KindConnection, 2)

	dry, err := r.Run(context.Background(), RunConfig{Kind: ratelimit.KindConnection, DryRun: true})
	require.NoError(t, err)
	assert.Equal(t, ReasonBudgetExhausted, dry.Reason)
	assert.Empty(t, dry.Planned)
}

func TestCancellationPreservesPartialProgress(t *testing.T) {
	st := newFakeStore(newProspects(3, models.StatusNew)...)
	auto := newFakeAutomator()
	r := testRunner(t, st, auto, 10)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sum, err := r.Run(ctx, RunConfig{Kind: ratelimit.KindConnection})
	require.NoError(t, err, "cancellation is an outcome, not an error")
	assert.Equal(t, ReasonCancelled, sum.Reason)
	assert.Equal(t, 0, sum.Succeeded)
	assert.Empty(t, auto.sentConnections)
}
