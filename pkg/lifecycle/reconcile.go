package lifecycle

import (
	"time"

	"github.com/Ramsey-B/fern/pkg/models"
)

// Decision messages surfaced to callers. Kept stable so clients and audit
// queries can match on them.
const (
	MsgAccepted        = "Event processed successfully."
	MsgRestartAfterEnd = "Start event that comes after the end event should be rejected."
	MsgStaleStart      = "Start event ignored: older or equal to existing start event."
	MsgEndWithoutStart = "End event without a start event should be rejected."
	MsgEndBeforeStart  = "End event cannot occur before start event."
	MsgStaleEnd        = "End event ignored: older or equal to existing end event."
)

// Decision is the outcome of reconciling one event against current state.
// Fields is only meaningful when Accepted is true.
type Decision struct {
	Accepted bool
	Message  string
	Fields   models.ComponentStateFields
}

func accept(fields models.ComponentStateFields) Decision {
	return Decision{Accepted: true, Message: MsgAccepted, Fields: fields}
}

func reject(message string) Decision {
	return Decision{Accepted: false, Message: message}
}

// Reconcile applies the ordering rules for one inbound event against the
// current component state. state is nil when no row exists yet. Two
// orderings are in play: submission order (created_at decides which event
// wins a field) and business order (end_date must not precede start_date).
// An earlier-dated but later-submitted start is a permitted correction.
func Reconcile(state *models.ComponentState, action EventAction, eventDate models.Date, createdAt time.Time) Decision {
	createdAt = createdAt.UTC()
	if action == ActionStart {
		return reconcileStart(state, eventDate, createdAt)
	}
	return reconcileEnd(state, eventDate, createdAt)
}

func reconcileStart(state *models.ComponentState, eventDate models.Date, createdAt time.Time) Decision {
	// A start submitted after the component was closed must not reopen it.
	// A start submitted before the recorded end is an earlier correction
	// and is allowed through to the next check.
	if state != nil && state.EndEventCreatedAt != nil {
		if createdAt.After(state.EndEventCreatedAt.UTC()) {
			return reject(MsgRestartAfterEnd)
		}
	}

	// Only a strictly newer submission may overwrite the start.
	if state != nil && state.StartEventCreatedAt != nil {
		if !createdAt.After(state.StartEventCreatedAt.UTC()) {
			return reject(MsgStaleStart)
		}
	}

	return accept(models.ComponentStateFields{
		StartDate:           &eventDate,
		StartEventCreatedAt: &createdAt,
	})
}

func reconcileEnd(state *models.ComponentState, eventDate models.Date, createdAt time.Time) Decision {
	if state == nil || state.StartEventCreatedAt == nil {
		return reject(MsgEndWithoutStart)
	}

	// Submission order: the end must have been submitted after the start.
	if !createdAt.After(state.StartEventCreatedAt.UTC()) {
		return reject(MsgEndBeforeStart)
	}

	// Only a strictly newer submission may overwrite the end.
	if state.EndEventCreatedAt != nil {
		if !createdAt.After(state.EndEventCreatedAt.UTC()) {
			return reject(MsgStaleEnd)
		}
	}

	// Business order: the window must not end before it starts.
	if state.StartDate != nil && eventDate.Before(*state.StartDate) {
		return reject(MsgEndBeforeStart)
	}

	return accept(models.ComponentStateFields{
		EndDate:           &eventDate,
		EndEventCreatedAt: &createdAt,
	})
}
