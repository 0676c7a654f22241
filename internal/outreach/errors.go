package outreach

import "fmt"

// AuthError reports a credential/session failure on the platform. Fatal to
// the current run, surfaced to the caller, never retried.
type AuthError struct {
	Reason string
	Err    error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("authentication failed: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("authentication failed: %s", e.Reason)
}

func (e *AuthError) Unwrap() error { return e.Err }

// AutomationError reports one failed external action: selector miss, timeout,
// platform rejection. The orchestrator skips the prospect and continues; the
// failure does not consume budget.
type AutomationError struct {
	ProspectID int64
	ProfileURL string
	Op         string
	Err        error
}

func (e *AutomationError) Error() string {
	return fmt.Sprintf("automation %s failed for prospect %d (%s): %v",
		e.Op, e.ProspectID, e.ProfileURL, e.Err)
}

func (e *AutomationError) Unwrap() error { return e.Err }
