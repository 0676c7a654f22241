// Package lifecycle governs prospect funnel transitions. It is a pure state
// machine: Apply decides the next status and the durable side effect a
// transition implies, while callers perform the side effect and persist.
package lifecycle

import (
	"fmt"

	"github.com/AnandVadgama/Linkedin-Outreach-automation/internal/models"
)

// Event is something that happened to a prospect.
type Event string

const (
	ConnectionRequested Event = "connection_requested"
	ConnectionAccepted  Event = "connection_accepted"
	ReplyReceived       Event = "reply_received"
	MarkedConverted     Event = "marked_converted"
	MarkedNotInterested Event = "marked_not_interested"
)

// Effect names the durable record change a transition implies.
type Effect int

const (
	EffectNone Effect = iota
	// EffectCreateConnectionRequest creates a PENDING connection request if
	// none is pending (idempotent at the store layer).
	EffectCreateConnectionRequest
	// EffectAcceptConnectionRequest marks the pending request ACCEPTED and
	// stamps its response time.
	EffectAcceptConnectionRequest
)

// Transition is the outcome of applying an event.
type Transition struct {
	To models.ProspectStatus
	// StampContacted is set on transitions into CONTACTED or CONNECTED; the
	// store must update last_contacted_at along with the status.
	StampContacted bool
	Effect         Effect
}

// ViolationError reports an event applied to a prospect whose status does not
// permit it. Callers treat it as a non-fatal skip.
type ViolationError struct {
	From  models.ProspectStatus
	Event Event
}

func (e *ViolationError) Error() string {
	return fmt.Sprintf("lifecycle: event %q not valid from status %q", e.Event, e.From)
}

// Apply returns the transition implied by event for a prospect currently in
// from, or a *ViolationError when the transition is invalid. The prospect's
// status is never changed implicitly.
func Apply(from models.ProspectStatus, event Event) (Transition, error) {
	switch event {
	case ConnectionRequested:
		if from == models.StatusNew {
			return Transition{
				To:             models.StatusContacted,
				StampContacted: true,
				Effect:         EffectCreateConnectionRequest,
			}, nil
		}
	case ConnectionAccepted:
		if from == models.StatusContacted {
			return Transition{
				To:             models.StatusConnected,
				StampContacted: true,
				Effect:         EffectAcceptConnectionRequest,
			}, nil
		}
	case ReplyReceived:
		if from == models.StatusContacted || from == models.StatusConnected {
			return Transition{To: models.StatusReplied}, nil
		}
	case MarkedConverted:
		if !from.Terminal() {
			return Transition{To: models.StatusConverted}, nil
		}
	case MarkedNotInterested:
		if !from.Terminal() {
			return Transition{To: models.StatusNotInterested}, nil
		}
	}
	return Transition{}, &ViolationError{From: from, Event: event}
}
